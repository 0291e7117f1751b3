package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/0xcafe-io/iz"

	"github.com/ubudget/ubudget/internal/auth"
	"github.com/ubudget/ubudget/internal/budget"
	"github.com/ubudget/ubudget/internal/datemath"
	"github.com/ubudget/ubudget/internal/money"
	"github.com/ubudget/ubudget/logging"
)

// Api exposes the budget service over the wire protocol. It is the server
// counterpart of Client.
type Api struct {
	Service *budget.Service
}

func NewApi(service *budget.Service) *Api {
	return &Api{
		Service: service,
	}
}

func (api *Api) authorize(r *iz.Request) (string, iz.Responder) {
	token := r.Header.Get("Authorization")
	if token == "" {
		return "", iz.Respond().Status(401).Text("authorization failed: Authorization header is required.")
	}
	userID, err := api.Service.CheckSession(token)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return "", iz.Respond().Status(401).Text(msg)
	}
	return userID, nil
}

func (api *Api) RegisterUserHandler(r *iz.Request) iz.Responder {
	var registerReq RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	newUser := auth.NewUser{
		Email:         registerReq.Email,
		PasswordPlain: registerReq.Password,
	}

	token, err := api.Service.SaveUser(newUser)
	if err != nil {
		msg := fmt.Sprintf("registration failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := RegisterResponse{
		Message: "Registration Completed",
		Token:   token,
	}
	return iz.Respond().Status(201).JSON(resp)
}

func (api *Api) LoginUserHandler(r *iz.Request) iz.Responder {
	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	token, err := api.Service.GenerateSession(auth.Credentials{
		Email:         loginReq.Email,
		PasswordPlain: loginReq.Password,
	})
	if err != nil {
		msg := fmt.Sprintf("login failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := LoginResponse{
		Message: "Login Completed",
		Token:   token,
	}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) SaveBudgetHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	var createReq CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		logging.Logger.Errorf("Failed to parse save budget request: %v", err)
		msg := fmt.Sprintf("failed to parse save budget request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	duration, err := datemath.ParseDuration(createReq.RecurrenceDuration)
	if err != nil {
		msg := fmt.Sprintf("invalid recurrence_duration: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}
	startDate, err := time.ParseInLocation(DateLayout, createReq.StartDate, time.UTC)
	if err != nil {
		msg := fmt.Sprintf("invalid start_date: '%s', expected format %s", createReq.StartDate, DateLayout)
		return iz.Respond().Status(400).Text(msg)
	}

	id, err := api.Service.SaveBudget(userID, budget.BudgetRecord{
		Name:      createReq.BudgetName,
		Amount:    money.Money(createReq.Amount),
		Recurring: createReq.Recur,
		StartDate: startDate,
		Duration:  duration,
	})
	if err != nil {
		msg := fmt.Sprintf("failed to create budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	return iz.Respond().Status(201).JSON(CreateBudgetResponse{ID: id})
}

func (api *Api) SaveEntryHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	var createReq CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		logging.Logger.Errorf("Failed to parse save entry request: %v", err)
		msg := fmt.Sprintf("failed to parse save entry request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	date, err := time.ParseInLocation(DateLayout, createReq.ExpenditureDate, time.UTC)
	if err != nil {
		msg := fmt.Sprintf("invalid expenditure_date: '%s', expected format %s", createReq.ExpenditureDate, DateLayout)
		return iz.Respond().Status(400).Text(msg)
	}

	stored, err := api.Service.SaveEntry(userID, budget.EntryRecord{
		BudgetID: createReq.BudgetID,
		Amount:   money.Money(createReq.Amount),
		Notes:    createReq.Notes,
		Date:     date,
	})
	if err != nil {
		msg := fmt.Sprintf("failed to create entry: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	return iz.Respond().Status(201).JSON(CreateEntryResponse{
		ID:        stored.ID,
		CreatedAt: stored.CreatedAt.Format(TimestampLayout),
		UpdatedAt: stored.UpdatedAt.Format(TimestampLayout),
	})
}

func (api *Api) GetBudgetsHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	withEntries := r.URL.Query().Get("include") == "entries"

	budgets, err := api.Service.GetBudgets(userID)
	if err != nil {
		msg := fmt.Sprintf("failed to get budgets: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	items := make([]BudgetItem, 0, len(budgets))
	for _, rec := range budgets {
		item := BudgetToHttp(rec)
		if withEntries {
			entries, err := api.Service.GetEntries(userID, rec.ID)
			if err != nil {
				msg := fmt.Sprintf("failed to get entries of budget %d: %v", rec.ID, err)
				return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
			}
			item.Entries = make([]EntryItem, 0, len(entries))
			for _, e := range entries {
				item.Entries = append(item.Entries, EntryToHttp(e))
			}
		}
		items = append(items, item)
	}

	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) GetEntriesHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	budgetIDStr := r.URL.Query().Get("budget_id")
	budgetID, err := strconv.ParseInt(budgetIDStr, 10, 64)
	if err != nil {
		msg := fmt.Sprintf("invalid budget_id: '%s'", budgetIDStr)
		return iz.Respond().Status(400).Text(msg)
	}

	entries, err := api.Service.GetEntries(userID, budgetID)
	if err != nil {
		msg := fmt.Sprintf("failed to get entries: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	items := make([]EntryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, EntryToHttp(e))
	}
	return iz.Respond().Status(200).JSON(items)
}

func BudgetToHttp(rec budget.BudgetRecord) BudgetItem {
	return BudgetItem{
		BudgetName:         rec.Name,
		RecurrenceDuration: string(rec.Duration),
		Amount:             int64(rec.Amount),
		Recur:              rec.Recurring,
		StartDate:          rec.StartDate.Format(DateLayout),
		ID:                 rec.ID,
	}
}

func EntryToHttp(rec budget.EntryRecord) EntryItem {
	return EntryItem{
		ID:              rec.ID,
		Amount:          int64(rec.Amount),
		ExpenditureDate: rec.Date.Format(DateLayout),
		Notes:           rec.Notes,
		CreatedAt:       rec.CreatedAt.Format(TimestampLayout),
		UpdatedAt:       rec.UpdatedAt.Format(TimestampLayout),
	}
}
