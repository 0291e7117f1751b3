package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/ubudget/ubudget/apperrors"
	"github.com/ubudget/ubudget/internal/auth"
	"github.com/ubudget/ubudget/internal/budget"
)

// InMemoryStorage keeps all server state in process memory. It backs tests
// and single-process deployments where durability is not needed.
type InMemoryStorage struct {
	mu           sync.Mutex
	users        []auth.User
	sessions     []auth.Session
	budgets      []budget.BudgetRecord
	entries      []budget.EntryRecord
	nextBudgetID int64
	nextEntryID  int64
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		nextBudgetID: 1,
		nextEntryID:  1,
	}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

func (inMem *InMemoryStorage) SaveUser(newUser auth.User) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	for _, user := range inMem.users {
		if user.Email == newUser.Email {
			return fmt.Errorf("%w: this '%s' email is already registered", apperrors.ErrConflict, newUser.Email)
		}
	}
	inMem.users = append(inMem.users, newUser)
	return nil
}

func (inMem *InMemoryStorage) ValidateUser(creds auth.Credentials) (auth.User, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	for _, user := range inMem.users {
		if user.Email == creds.Email {
			if auth.ComparePasswords(user.PasswordHashed, creds.PasswordPlain) {
				return user, nil
			}
			return auth.User{}, fmt.Errorf("%w: password is wrong", apperrors.ErrAuth)
		}
	}
	return auth.User{}, fmt.Errorf("%w: user not found", apperrors.ErrAuth)
}

func (inMem *InMemoryStorage) SaveSession(session auth.Session) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	inMem.sessions = append(inMem.sessions, session)
	return nil
}

func (inMem *InMemoryStorage) CheckSession(token string) (string, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	for _, session := range inMem.sessions {
		if session.Token == token {
			if session.ExpireAt.After(time.Now()) {
				return session.UserID, nil
			}
			return "", fmt.Errorf("%w: session expired, login again", apperrors.ErrAuth)
		}
	}
	return "", fmt.Errorf("%w: session not found, login again", apperrors.ErrAuth)
}

func (inMem *InMemoryStorage) SaveBudget(rec budget.BudgetRecord) (int64, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	rec.ID = inMem.nextBudgetID
	inMem.nextBudgetID++
	inMem.budgets = append(inMem.budgets, rec)
	return rec.ID, nil
}

func (inMem *InMemoryStorage) GetBudgets(userID string) ([]budget.BudgetRecord, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	var result []budget.BudgetRecord
	for _, rec := range inMem.budgets {
		if rec.UserID == userID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (inMem *InMemoryStorage) GetBudgetByID(userID string, budgetID int64) (budget.BudgetRecord, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	for _, rec := range inMem.budgets {
		if rec.UserID == userID && rec.ID == budgetID {
			return rec, nil
		}
	}
	return budget.BudgetRecord{}, fmt.Errorf("%w: budget %d not found", apperrors.ErrNotFound, budgetID)
}

func (inMem *InMemoryStorage) SaveEntry(rec budget.EntryRecord) (budget.EntryRecord, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	rec.ID = inMem.nextEntryID
	inMem.nextEntryID++
	inMem.entries = append(inMem.entries, rec)
	return rec, nil
}

func (inMem *InMemoryStorage) GetEntries(userID string, budgetID int64) ([]budget.EntryRecord, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	var result []budget.EntryRecord
	for _, rec := range inMem.entries {
		if rec.UserID == userID && rec.BudgetID == budgetID {
			result = append(result, rec)
		}
	}
	return result, nil
}
