package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ubudget/ubudget/apperrors"
	"github.com/ubudget/ubudget/internal/auth"
	"github.com/ubudget/ubudget/internal/budget"
	"github.com/ubudget/ubudget/internal/datemath"
	"github.com/ubudget/ubudget/internal/money"
	"github.com/ubudget/ubudget/logging"
)

// --- INIT START --- //

func Init() (*sql.DB, error) {
	var db *sql.DB
	var err error

	username := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	dbname := os.Getenv("DB_NAME")
	fullDsn := os.Getenv("FULL_DSN")

	if dbname == "" {
		dbname = "ubudget"
	}

	var adminDsn string
	if fullDsn != "" {
		parts := strings.Split(fullDsn, "/")
		adminDsn = strings.Join(parts[:len(parts)-1], "/") + "/"
	} else {
		if username == "" || password == "" || host == "" || port == "" {
			return nil, fmt.Errorf("missing required DB environment variables")
		}
		adminDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/?parseTime=true", username, password, host, port)
	}

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %v", err)
	}
	connected := false
	for i := 0; i < 15; i++ {
		if err := adminDb.Ping(); err == nil {
			connected = true
			break
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/15)", i+1)
		time.Sleep(3 * time.Second)
	}
	if !connected {
		adminDb.Close()
		return nil, fmt.Errorf("database unreachable after multiple attempts")
	}

	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err = adminDb.QueryRow(checkDbnameExistQuery, dbname).Scan(&dbnameExistence)

	if err == sql.ErrNoRows {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.Exec(createDbSql); err != nil {
			adminDb.Close()
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	} else if err != nil {
		adminDb.Close()
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	adminDb.Close()

	var finalDsn string
	if fullDsn != "" {
		finalDsn = fullDsn
	} else {
		finalDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", username, password, host, port, dbname)
	}

	logging.Logger.Info("Connecting to database...")
	db, err = sql.Open("mysql", finalDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %v", err)
	}

	logging.Logger.Info("Connected to database successfully")

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}

	return db, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS user (
		id CHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		hashed_password VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS session (
		id CHAR(36) PRIMARY KEY,
		token CHAR(32) NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		expire_at DATETIME NOT NULL,
		user_id CHAR(36) NOT NULL,
		FOREIGN KEY (user_id) REFERENCES user(id)
	);`,
	`CREATE TABLE IF NOT EXISTS budget (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		budget_name VARCHAR(255) NOT NULL,
		amount BIGINT NOT NULL,
		recur BOOLEAN NOT NULL,
		start_date DATE NOT NULL,
		recurrence_duration VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uniq_user_budget_name (user_id, budget_name),
		FOREIGN KEY (user_id) REFERENCES user(id)
	);`,
	`CREATE TABLE IF NOT EXISTS entry (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		budget_id BIGINT NOT NULL,
		user_id CHAR(36) NOT NULL,
		amount BIGINT NOT NULL,
		notes TEXT NOT NULL,
		expenditure_date DATE NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (budget_id) REFERENCES budget(id),
		FOREIGN KEY (user_id) REFERENCES user(id)
	);`,
}

func createSchema(db *sql.DB) error {
	for _, statement := range schemaStatements {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// --- INIT END --- //

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (mySql *MySQLStorage) GetStorageType() string {
	return "mysql"
}

func (mySql *MySQLStorage) SaveUser(user auth.User) error {
	query := "INSERT INTO user (id, email, hashed_password, created_at) VALUES (?, ?, ?, ?);"
	_, err := mySql.db.Exec(query, user.ID, user.Email, user.PasswordHashed, user.CreatedAt)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return fmt.Errorf("%w: this '%s' email is already registered", apperrors.ErrConflict, user.Email)
		}
		logging.Logger.Errorf("failed to save user in Storage.SaveUser(), error: %v", err)
		return fmt.Errorf("%w: registration failed, try again later", apperrors.ErrInternal)
	}
	return nil
}

func (mySql *MySQLStorage) ValidateUser(creds auth.Credentials) (auth.User, error) {
	query := "SELECT id, email, hashed_password, created_at FROM user WHERE email = ?"
	var user auth.User
	err := mySql.db.QueryRow(query, creds.Email).Scan(&user.ID, &user.Email, &user.PasswordHashed, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, fmt.Errorf("%w: user not found", apperrors.ErrAuth)
	}
	if err != nil {
		logging.Logger.Errorf("failed to load user in Storage.ValidateUser(), error: %v", err)
		return auth.User{}, fmt.Errorf("%w: login failed, try again later", apperrors.ErrInternal)
	}
	if !auth.ComparePasswords(user.PasswordHashed, creds.PasswordPlain) {
		return auth.User{}, fmt.Errorf("%w: password is wrong", apperrors.ErrAuth)
	}
	return user, nil
}

func (mySql *MySQLStorage) SaveSession(session auth.Session) error {
	query := "INSERT INTO session (id, token, created_at, expire_at, user_id) VALUES (?, ?, ?, ?, ?);"
	_, err := mySql.db.Exec(query, session.ID, session.Token, session.CreatedAt, session.ExpireAt, session.UserID)
	if err != nil {
		logging.Logger.Errorf("failed to save session in Storage.SaveSession(), error: %v", err)
		return fmt.Errorf("%w: failed to save session, try again later", apperrors.ErrInternal)
	}
	return nil
}

func (mySql *MySQLStorage) CheckSession(token string) (string, error) {
	query := "SELECT user_id, expire_at FROM session WHERE token = ?"
	var userID string
	var expireAt time.Time
	err := mySql.db.QueryRow(query, token).Scan(&userID, &expireAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: session not found, login again", apperrors.ErrAuth)
	}
	if err != nil {
		logging.Logger.Errorf("failed to check session in Storage.CheckSession(), error: %v", err)
		return "", fmt.Errorf("%w: failed to check session, try again later", apperrors.ErrInternal)
	}
	if !expireAt.After(time.Now()) {
		return "", fmt.Errorf("%w: session expired, login again", apperrors.ErrAuth)
	}
	return userID, nil
}

func (mySql *MySQLStorage) SaveBudget(rec budget.BudgetRecord) (int64, error) {
	query := `INSERT INTO budget
		(user_id, budget_name, amount, recur, start_date, recurrence_duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	res, err := mySql.db.Exec(query, rec.UserID, rec.Name, int64(rec.Amount), rec.Recurring,
		rec.StartDate, string(rec.Duration), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return 0, fmt.Errorf("%w: a budget named '%s' already exists", apperrors.ErrConflict, rec.Name)
		}
		logging.Logger.Errorf("failed to save budget in Storage.SaveBudget(), error: %v", err)
		return 0, fmt.Errorf("%w: failed to save the budget, try again later", apperrors.ErrInternal)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read assigned budget id", apperrors.ErrInternal)
	}
	return id, nil
}

func (mySql *MySQLStorage) GetBudgets(userID string) ([]budget.BudgetRecord, error) {
	query := `SELECT id, user_id, budget_name, amount, recur, start_date, recurrence_duration, created_at, updated_at
		FROM budget WHERE user_id = ? ORDER BY id;`
	rows, err := mySql.db.Query(query, userID)
	if err != nil {
		logging.Logger.Errorf("failed to get budgets in Storage.GetBudgets(), error: %v", err)
		return nil, fmt.Errorf("%w: failed to get budgets, try again later", apperrors.ErrInternal)
	}
	defer rows.Close()

	var result []budget.BudgetRecord
	for rows.Next() {
		var rec budget.BudgetRecord
		var amount int64
		var duration string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Name, &amount, &rec.Recurring,
			&rec.StartDate, &duration, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to read budget row", apperrors.ErrInternal)
		}
		rec.Amount = money.Money(amount)
		rec.Duration = datemath.Duration(duration)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read budget rows", apperrors.ErrInternal)
	}
	return result, nil
}

func (mySql *MySQLStorage) GetBudgetByID(userID string, budgetID int64) (budget.BudgetRecord, error) {
	query := `SELECT id, user_id, budget_name, amount, recur, start_date, recurrence_duration, created_at, updated_at
		FROM budget WHERE user_id = ? AND id = ?;`
	var rec budget.BudgetRecord
	var amount int64
	var duration string
	err := mySql.db.QueryRow(query, userID, budgetID).Scan(&rec.ID, &rec.UserID, &rec.Name, &amount,
		&rec.Recurring, &rec.StartDate, &duration, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return budget.BudgetRecord{}, fmt.Errorf("%w: budget %d not found", apperrors.ErrNotFound, budgetID)
	}
	if err != nil {
		logging.Logger.Errorf("failed to get budget in Storage.GetBudgetByID(), error: %v", err)
		return budget.BudgetRecord{}, fmt.Errorf("%w: failed to get budget, try again later", apperrors.ErrInternal)
	}
	rec.Amount = money.Money(amount)
	rec.Duration = datemath.Duration(duration)
	return rec, nil
}

func (mySql *MySQLStorage) SaveEntry(rec budget.EntryRecord) (budget.EntryRecord, error) {
	query := `INSERT INTO entry
		(budget_id, user_id, amount, notes, expenditure_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);`
	res, err := mySql.db.Exec(query, rec.BudgetID, rec.UserID, int64(rec.Amount), rec.Notes,
		rec.Date, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		logging.Logger.Errorf("failed to save entry in Storage.SaveEntry(), error: %v", err)
		return budget.EntryRecord{}, fmt.Errorf("%w: failed to save the entry, try again later", apperrors.ErrInternal)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return budget.EntryRecord{}, fmt.Errorf("%w: failed to read assigned entry id", apperrors.ErrInternal)
	}
	rec.ID = id
	return rec, nil
}

func (mySql *MySQLStorage) GetEntries(userID string, budgetID int64) ([]budget.EntryRecord, error) {
	query := `SELECT id, budget_id, user_id, amount, notes, expenditure_date, created_at, updated_at
		FROM entry WHERE user_id = ? AND budget_id = ? ORDER BY id;`
	rows, err := mySql.db.Query(query, userID, budgetID)
	if err != nil {
		logging.Logger.Errorf("failed to get entries in Storage.GetEntries(), error: %v", err)
		return nil, fmt.Errorf("%w: failed to get entries, try again later", apperrors.ErrInternal)
	}
	defer rows.Close()

	var result []budget.EntryRecord
	for rows.Next() {
		var rec budget.EntryRecord
		var amount int64
		if err := rows.Scan(&rec.ID, &rec.BudgetID, &rec.UserID, &amount, &rec.Notes,
			&rec.Date, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to read entry row", apperrors.ErrInternal)
		}
		rec.Amount = money.Money(amount)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read entry rows", apperrors.ErrInternal)
	}
	return result, nil
}
