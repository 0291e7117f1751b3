package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/0xcafe-io/iz"
	"github.com/rs/cors"
	"github.com/ubudget/ubudget/api"
	"github.com/ubudget/ubudget/internal/budget"
	"github.com/ubudget/ubudget/internal/money"
	"github.com/ubudget/ubudget/internal/storage"
	"github.com/ubudget/ubudget/logging"
)

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

func main() {
	if err := logging.Init(os.Getenv("LOG_LEVEL")); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		return
	}

	logging.Logger.Info("application starting...")

	if symbol := os.Getenv("CURRENCY_SYMBOL"); symbol != "" {
		money.SetSymbol(symbol)
	}

	var store budget.Storage
	switch backend := os.Getenv("STORAGE_BACKEND"); backend {
	case "", "mysql":
		db, err := storage.Init()
		if err != nil {
			logging.Logger.Errorf("failed to initialize database: %v", err)
			return
		}
		store = storage.NewMySQLStorage(db)
	case "memory":
		logging.Logger.Warn("using in-memory storage, all data is lost on shutdown")
		store = storage.NewInMemoryStorage()
	default:
		logging.Logger.Errorf("unknown STORAGE_BACKEND: %q", backend)
		return
	}

	service := budget.NewService(store)

	server := http.NewServeMux()
	api := api.NewApi(&service)

	// USER ENDPOINTS.
	server.HandleFunc("POST /api/register", iz.Bind(api.RegisterUserHandler)) // Create User
	server.HandleFunc("POST /api/login", iz.Bind(api.LoginUserHandler))       // Login User

	// BUDGET ENDPOINTS.
	server.HandleFunc("POST /api/budgets", iz.Bind(api.SaveBudgetHandler)) // Create Budget
	server.HandleFunc("GET /api/budgets", iz.Bind(api.GetBudgetsHandler))  // Get Budgets, ?include=entries nests entries

	// ENTRY ENDPOINTS.
	server.HandleFunc("POST /api/entries", iz.Bind(api.SaveEntryHandler)) // Create Entry
	server.HandleFunc("GET /api/entries", iz.Bind(api.GetEntriesHandler)) // Get Entries of one budget

	port := os.Getenv("APP_PORT")
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}
	fmt.Println("Starting server on port: ", port)
	handlerWithCors := corsConf.Handler(server)
	if err := http.ListenAndServe(":"+port, handlerWithCors); err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}
