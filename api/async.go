package api

import (
	"context"

	"github.com/ubudget/ubudget/internal/budget"
)

// Asynchronous variants of the client operations. Each issues the operation
// without blocking the caller and invokes exactly one of the two callbacks
// exactly once: onSuccess with the decoded result, or onFailure with the
// human-readable message. Callbacks run on a separate goroutine; concurrent
// calls are independent.

// CreateUserAsync registers a new account in the background.
func (c *Client) CreateUserAsync(ctx context.Context, email, password string, onSuccess func(), onFailure func(message string)) {
	go func() {
		if err := c.CreateUser(ctx, email, password); err != nil {
			onFailure(err.Error())
			return
		}
		onSuccess()
	}()
}

// LogInAsync opens a session in the background.
func (c *Client) LogInAsync(ctx context.Context, email, password string, onSuccess func(), onFailure func(message string)) {
	go func() {
		if err := c.LogIn(ctx, email, password); err != nil {
			onFailure(err.Error())
			return
		}
		onSuccess()
	}()
}

// CreateBudgetAsync submits b for creation in the background. onSuccess
// receives the assigned server id.
func (c *Client) CreateBudgetAsync(ctx context.Context, b *budget.Budget, onSuccess func(id int64), onFailure func(message string)) {
	go func() {
		id, err := c.CreateBudget(ctx, b)
		if err != nil {
			onFailure(err.Error())
			return
		}
		onSuccess(id)
	}()
}

// CreateEntryAsync submits e for creation in the background. onSuccess
// receives the assigned server id.
func (c *Client) CreateEntryAsync(ctx context.Context, e *budget.Entry, onSuccess func(id int64), onFailure func(message string)) {
	go func() {
		id, err := c.CreateEntry(ctx, e)
		if err != nil {
			onFailure(err.Error())
			return
		}
		onSuccess(id)
	}()
}

// FetchBudgetsAsync retrieves all budgets in the background.
func (c *Client) FetchBudgetsAsync(ctx context.Context, onSuccess func(budgets []*budget.Budget), onFailure func(message string)) {
	go func() {
		budgets, err := c.FetchBudgets(ctx)
		if err != nil {
			onFailure(err.Error())
			return
		}
		onSuccess(budgets)
	}()
}

// FetchBudgetsAndEntriesAsync retrieves all budgets with their entries in
// the background.
func (c *Client) FetchBudgetsAndEntriesAsync(ctx context.Context, onSuccess func(budgets []*budget.Budget), onFailure func(message string)) {
	go func() {
		budgets, err := c.FetchBudgetsAndEntries(ctx)
		if err != nil {
			onFailure(err.Error())
			return
		}
		onSuccess(budgets)
	}()
}

// FetchEntriesAsync retrieves b's entries in the background.
func (c *Client) FetchEntriesAsync(ctx context.Context, b *budget.Budget, onSuccess func(entries []*budget.Entry), onFailure func(message string)) {
	go func() {
		entries, err := c.FetchEntries(ctx, b)
		if err != nil {
			onFailure(err.Error())
			return
		}
		onSuccess(entries)
	}()
}
