// Package api is the wire protocol of the budget service: the request and
// response shapes, the validating HTTP client, and the reference server
// handlers speaking the same protocol.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ubudget/ubudget/internal/budget"
)

// Client issues create/fetch operations against a budget server and decodes
// responses into validated domain objects. Every response is checked for the
// exact fields the protocol requires; a response that does not validate fails
// the whole operation with an *Error.
//
// The transport is a plain *http.Client and can be substituted for testing.
// The client holds no cross-call mutable state besides the session token, so
// concurrent operations are independent.
type Client struct {
	baseURL    string
	httpClient *http.Client
	registry   *budget.Registry

	mu    sync.Mutex
	token string
}

// NewClient creates a client for the server at baseURL. Budgets created or
// fetched through the client are registered into registry. A nil httpClient
// gets a default with a 30-second timeout.
func NewClient(baseURL string, registry *budget.Registry, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		registry:   registry,
	}
}

// Registry returns the budget registry this client populates.
func (c *Client) Registry() *budget.Registry {
	return c.registry
}

// SetToken replaces the session token sent in the Authorization header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current session token, empty before login.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// do sends one JSON request and returns the decoded-ready response body.
// Non-2xx statuses and transport failures become *Error values.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, *Error) {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, errorf("failed to encode request: %v", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errorf("failed to create request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errorf("failed to read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
	return respBody, nil
}

// CreateUser registers a new account. On success the session token from the
// confirmation, if any, is adopted for subsequent calls.
func (c *Client) CreateUser(ctx context.Context, email, password string) error {
	respBody, apiErr := c.do(ctx, http.MethodPost, "/api/register", RegisterRequest{
		Email:    email,
		Password: password,
	})
	if apiErr != nil {
		return apiErr
	}

	var resp struct {
		Message *string `json:"message"`
		Token   *string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return errorf("malformed registration response: %v", err)
	}
	if resp.Message == nil {
		return errorf("registration response: missing confirmation")
	}
	if resp.Token != nil && *resp.Token != "" {
		c.SetToken(*resp.Token)
	}
	return nil
}

// LogIn opens a session and stores its token for subsequent calls.
func (c *Client) LogIn(ctx context.Context, email, password string) error {
	respBody, apiErr := c.do(ctx, http.MethodPost, "/api/login", LoginRequest{
		Email:    email,
		Password: password,
	})
	if apiErr != nil {
		return apiErr
	}

	var resp struct {
		Token *string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return errorf("malformed login response: %v", err)
	}
	if resp.Token == nil || *resp.Token == "" {
		return errorf("login response: missing or invalid token")
	}
	c.SetToken(*resp.Token)
	return nil
}

// CreateBudget submits b for creation. On success b is assigned its
// server id — exactly once in its lifetime — and registered into the
// registry; on failure b is left untouched.
func (c *Client) CreateBudget(ctx context.Context, b *budget.Budget) (int64, error) {
	if b.ID != budget.NewID {
		return 0, errorf("budget %q already has server id %d", b.Name, b.ID)
	}

	respBody, apiErr := c.do(ctx, http.MethodPost, "/api/budgets", CreateBudgetRequest{
		BudgetName:         b.Name,
		Amount:             int64(b.Amount),
		Recur:              b.Recurring,
		StartDate:          b.StartDate.Format(DateLayout),
		RecurrenceDuration: string(b.Duration),
	})
	if apiErr != nil {
		return 0, apiErr
	}

	var resp struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil || resp.ID == nil {
		return 0, errorf("budget create response: missing or invalid id")
	}

	b.ID = *resp.ID
	if c.registry != nil {
		c.registry.Add(b)
	}
	return b.ID, nil
}

// CreateEntry submits e for creation against its owning budget. On success
// e is assigned its server id and timestamps and appended to the owning
// budget's entries; on failure e is left untouched.
func (c *Client) CreateEntry(ctx context.Context, e *budget.Entry) (int64, error) {
	if e.Budget == nil {
		return 0, errorf("entry has no owning budget")
	}
	if e.Budget.ID == budget.NewID {
		return 0, errorf("budget %q has not been created on the server yet", e.Budget.Name)
	}
	if e.ID != budget.NewID {
		return 0, errorf("entry already has server id %d", e.ID)
	}

	respBody, apiErr := c.do(ctx, http.MethodPost, "/api/entries", CreateEntryRequest{
		Amount:          int64(e.Amount),
		BudgetID:        e.Budget.ID,
		Notes:           e.Notes,
		ExpenditureDate: e.Date.Format(DateLayout),
	})
	if apiErr != nil {
		return 0, apiErr
	}

	var resp struct {
		ID        *int64  `json:"id"`
		CreatedAt *string `json:"created_at"`
		UpdatedAt *string `json:"updated_at"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return 0, errorf("malformed entry create response: %v", err)
	}
	switch {
	case resp.ID == nil:
		return 0, errorf("entry create response: missing or invalid id")
	case resp.CreatedAt == nil:
		return 0, errorf("entry create response: missing or invalid created_at")
	case resp.UpdatedAt == nil:
		return 0, errorf("entry create response: missing or invalid updated_at")
	}
	createdAt, err := time.ParseInLocation(TimestampLayout, *resp.CreatedAt, time.UTC)
	if err != nil {
		return 0, errorf("entry create response: unparseable created_at %q", *resp.CreatedAt)
	}
	updatedAt, err := time.ParseInLocation(TimestampLayout, *resp.UpdatedAt, time.UTC)
	if err != nil {
		return 0, errorf("entry create response: unparseable updated_at %q", *resp.UpdatedAt)
	}

	e.ID = *resp.ID
	e.CreatedAt = createdAt
	e.UpdatedAt = updatedAt
	e.Budget.AddEntry(e)
	return e.ID, nil
}

// FetchBudgets retrieves all budgets without entries, in server order. The
// fetch is all-or-nothing: one malformed element fails the whole batch and
// leaves the registry unchanged. On success the registry contents are
// replaced.
func (c *Client) FetchBudgets(ctx context.Context) ([]*budget.Budget, error) {
	return c.fetchBudgets(ctx, false)
}

// FetchBudgetsAndEntries is FetchBudgets with each budget's entries decoded
// from the nested entries array; a bad nested entry fails the whole call.
func (c *Client) FetchBudgetsAndEntries(ctx context.Context) ([]*budget.Budget, error) {
	return c.fetchBudgets(ctx, true)
}

func (c *Client) fetchBudgets(ctx context.Context, withEntries bool) ([]*budget.Budget, error) {
	path := "/api/budgets"
	if withEntries {
		path += "?include=entries"
	}
	respBody, apiErr := c.do(ctx, http.MethodGet, path, nil)
	if apiErr != nil {
		return nil, apiErr
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(respBody, &elements); err != nil {
		return nil, errorf("malformed budget fetch response: %v", err)
	}

	budgets := make([]*budget.Budget, 0, len(elements))
	for i, raw := range elements {
		b, err := decodeBudgetElement(raw, withEntries)
		if err != nil {
			return nil, errorf("budget fetch element %d: %v", i, err)
		}
		budgets = append(budgets, b)
	}
	if c.registry != nil {
		c.registry.Replace(budgets)
	}
	return budgets, nil
}

// FetchEntries retrieves b's entries in server order. The returned entries
// reference b but are not appended to it; the caller decides. All-or-nothing
// like the budget fetches.
func (c *Client) FetchEntries(ctx context.Context, b *budget.Budget) ([]*budget.Entry, error) {
	if b == nil {
		return nil, errorf("no budget given")
	}
	if b.ID == budget.NewID {
		return nil, errorf("budget %q has not been created on the server yet", b.Name)
	}

	respBody, apiErr := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/entries?budget_id=%d", b.ID), nil)
	if apiErr != nil {
		return nil, apiErr
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(respBody, &elements); err != nil {
		return nil, errorf("malformed entry fetch response: %v", err)
	}

	entries := make([]*budget.Entry, 0, len(elements))
	for i, raw := range elements {
		e, err := decodeEntryElement(raw, b)
		if err != nil {
			return nil, errorf("entry fetch element %d: %v", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
