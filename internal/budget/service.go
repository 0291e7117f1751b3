package budget

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ubudget/ubudget/apperrors"
	"github.com/ubudget/ubudget/internal/auth"
	"github.com/ubudget/ubudget/internal/datemath"
	"github.com/ubudget/ubudget/internal/money"
)

const (
	MaxNameLength  = 255
	MaxNotesLength = 1000
)

// BudgetRecord is a budget as persisted by the reference server. Unlike the
// client-side Budget it carries its owner and server timestamps.
type BudgetRecord struct {
	ID        int64
	UserID    string
	Name      string
	Amount    money.Money
	Recurring bool
	StartDate time.Time
	Duration  datemath.Duration
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntryRecord is an expenditure as persisted by the reference server.
type EntryRecord struct {
	ID        int64
	BudgetID  int64
	UserID    string
	Amount    money.Money
	Notes     string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Storage is the persistence boundary of the reference server.
type Storage interface {
	SaveUser(user auth.User) error
	ValidateUser(creds auth.Credentials) (auth.User, error)
	SaveSession(session auth.Session) error
	CheckSession(token string) (userID string, err error)

	SaveBudget(rec BudgetRecord) (int64, error)
	GetBudgets(userID string) ([]BudgetRecord, error)
	GetBudgetByID(userID string, budgetID int64) (BudgetRecord, error)
	SaveEntry(rec EntryRecord) (EntryRecord, error)
	GetEntries(userID string, budgetID int64) ([]EntryRecord, error)

	GetStorageType() string
}

// Service carries the reference server's business rules over a Storage.
type Service struct {
	storage     Storage
	StorageType string
}

func NewService(s Storage) Service {
	return Service{
		storage:     s,
		StorageType: s.GetStorageType(),
	}
}

// SaveUser registers a user and opens a session for them, returning the
// session token.
func (s *Service) SaveUser(newUser auth.NewUser) (string, error) {
	if err := newUser.Validate(); err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}

	hashedPassword, err := auth.HashPassword(newUser.PasswordPlain)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := auth.User{
		ID:             uuid.New().String(),
		Email:          strings.ToLower(newUser.Email),
		PasswordHashed: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.storage.SaveUser(user); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.GenerateSession(auth.Credentials{
		Email:         newUser.Email,
		PasswordPlain: newUser.PasswordPlain,
	})
	if err != nil {
		return "", fmt.Errorf("registered but failed to open session: %w | try login", err)
	}
	return token, nil
}

// GenerateSession validates credentials and opens a new session, returning
// its token.
func (s *Service) GenerateSession(creds auth.Credentials) (string, error) {
	creds.Email = strings.ToLower(creds.Email)
	user, err := s.storage.ValidateUser(creds)
	if err != nil {
		return "", fmt.Errorf("%w", err)
	}

	tokenByte := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, tokenByte); err != nil {
		return "", fmt.Errorf("failed to generate new session: %w", err)
	}
	token := hex.EncodeToString(tokenByte)

	now := time.Now().UTC()
	session := auth.Session{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: now,
		ExpireAt:  now.AddDate(0, 3, 0),
		UserID:    user.ID,
	}

	if err := s.storage.SaveSession(session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// CheckSession resolves a session token to its user id.
func (s *Service) CheckSession(token string) (string, error) {
	userID, err := s.storage.CheckSession(token)
	if err != nil {
		return "", fmt.Errorf("failed to check session: %w", err)
	}
	return userID, nil
}

// SaveBudget validates and persists a budget for userID, returning the
// assigned id. Budget names are unique per user.
func (s *Service) SaveBudget(userID string, rec BudgetRecord) (int64, error) {
	if rec.Name == "" {
		return 0, fmt.Errorf("%w: budget name is empty", apperrors.ErrInvalidInput)
	}
	if len(rec.Name) > MaxNameLength {
		return 0, fmt.Errorf("%w: budget name is too long, the limit is: %d", apperrors.ErrInvalidInput, MaxNameLength)
	}
	if rec.Amount <= 0 {
		return 0, fmt.Errorf("%w: budget amount must be positive", apperrors.ErrInvalidInput)
	}
	if _, err := datemath.ParseDuration(string(rec.Duration)); err != nil {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}
	if rec.StartDate.IsZero() {
		return 0, fmt.Errorf("%w: budget start date is required", apperrors.ErrInvalidInput)
	}

	existing, err := s.storage.GetBudgets(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to check budget name availability: %w", err)
	}
	for _, b := range existing {
		if b.Name == rec.Name {
			return 0, fmt.Errorf("%w: a budget named '%s' already exists", apperrors.ErrConflict, rec.Name)
		}
	}

	now := time.Now().UTC()
	rec.UserID = userID
	rec.StartDate = datemath.Truncate(rec.StartDate)
	rec.CreatedAt = now
	rec.UpdatedAt = now

	id, err := s.storage.SaveBudget(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to save budget: %w", err)
	}
	return id, nil
}

// SaveEntry validates and persists an expenditure against one of userID's
// budgets, returning the stored record with id and timestamps assigned.
func (s *Service) SaveEntry(userID string, rec EntryRecord) (EntryRecord, error) {
	if rec.Amount <= 0 {
		return EntryRecord{}, fmt.Errorf("%w: entry amount must be positive", apperrors.ErrInvalidInput)
	}
	if len(rec.Notes) > MaxNotesLength {
		return EntryRecord{}, fmt.Errorf("%w: notes too long, maximum allowed length is: %d", apperrors.ErrInvalidInput, MaxNotesLength)
	}
	if rec.Date.IsZero() {
		return EntryRecord{}, fmt.Errorf("%w: expenditure date is required", apperrors.ErrInvalidInput)
	}
	if _, err := s.storage.GetBudgetByID(userID, rec.BudgetID); err != nil {
		return EntryRecord{}, fmt.Errorf("%w: budget %d: %s", apperrors.ErrNotFound, rec.BudgetID, err)
	}

	now := time.Now().UTC()
	rec.UserID = userID
	rec.Date = datemath.Truncate(rec.Date)
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored, err := s.storage.SaveEntry(rec)
	if err != nil {
		return EntryRecord{}, fmt.Errorf("failed to save entry: %w", err)
	}
	return stored, nil
}

// GetBudgets returns userID's budgets in creation order.
func (s *Service) GetBudgets(userID string) ([]BudgetRecord, error) {
	budgets, err := s.storage.GetBudgets(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets: %w", err)
	}
	return budgets, nil
}

// GetEntries returns the entries of one of userID's budgets in creation order.
func (s *Service) GetEntries(userID string, budgetID int64) ([]EntryRecord, error) {
	if _, err := s.storage.GetBudgetByID(userID, budgetID); err != nil {
		return nil, fmt.Errorf("%w: budget %d: %s", apperrors.ErrNotFound, budgetID, err)
	}
	entries, err := s.storage.GetEntries(userID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	return entries, nil
}
