package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ubudget/ubudget/internal/budget"
)

// collectOutcome waits for exactly one callback and then verifies no second
// one arrives.
func collectOutcome(t *testing.T, success <-chan struct{}, failure <-chan string) (ok bool, message string) {
	t.Helper()
	select {
	case <-success:
		ok = true
	case message = <-failure:
	case <-time.After(5 * time.Second):
		t.Fatal("no callback within 5s")
	}

	select {
	case <-success:
		t.Fatal("success callback fired twice or after failure")
	case msg := <-failure:
		t.Fatalf("failure callback fired twice or after success: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
	return ok, message
}

func TestCreateBudgetAsync_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]int64{"id": 100})
	}))
	defer server.Close()

	c := NewClient(server.URL, budget.NewRegistry(), server.Client())
	b := testClientBudget(t)

	success := make(chan struct{}, 2)
	failure := make(chan string, 2)
	c.CreateBudgetAsync(context.Background(), b,
		func(id int64) {
			if id != 100 {
				t.Errorf("expected id 100, got %d", id)
			}
			success <- struct{}{}
		},
		func(message string) { failure <- message },
	)

	ok, _ := collectOutcome(t, success, failure)
	require.True(t, ok)
	require.Equal(t, int64(100), b.ID)
}

func TestCreateBudgetAsync_FailureMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"not-id": "x"})
	}))
	defer server.Close()

	c := NewClient(server.URL, budget.NewRegistry(), server.Client())
	b := testClientBudget(t)

	success := make(chan struct{}, 2)
	failure := make(chan string, 2)
	c.CreateBudgetAsync(context.Background(), b,
		func(int64) { success <- struct{}{} },
		func(message string) { failure <- message },
	)

	ok, message := collectOutcome(t, success, failure)
	require.False(t, ok)
	require.NotEmpty(t, message)
	require.Contains(t, message, "missing or invalid id")
	require.Equal(t, budget.NewID, b.ID)
}

func TestFetchBudgetsAsync(t *testing.T) {
	items := []BudgetItem{budgetItemFixture(0), budgetItemFixture(1)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(items)
	}))
	defer server.Close()

	c := NewClient(server.URL, budget.NewRegistry(), server.Client())

	success := make(chan struct{}, 2)
	failure := make(chan string, 2)
	c.FetchBudgetsAsync(context.Background(),
		func(budgets []*budget.Budget) {
			if len(budgets) != 2 {
				t.Errorf("expected 2 budgets, got %d", len(budgets))
			}
			success <- struct{}{}
		},
		func(message string) { failure <- message },
	)

	ok, _ := collectOutcome(t, success, failure)
	require.True(t, ok)
	require.Equal(t, 2, c.Registry().Len())
}

func TestLogInAsync_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("login failed: password is wrong"))
	}))
	defer server.Close()

	c := NewClient(server.URL, budget.NewRegistry(), server.Client())

	success := make(chan struct{}, 2)
	failure := make(chan string, 2)
	c.LogInAsync(context.Background(), "john@example.com", "wrong",
		func() { success <- struct{}{} },
		func(message string) { failure <- message },
	)

	ok, message := collectOutcome(t, success, failure)
	require.False(t, ok)
	require.Contains(t, message, "password is wrong")
	require.Empty(t, c.Token())
}

// Concurrent async creates against a slow server must each resolve
// independently, exactly once.
func TestAsyncConcurrentOperations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]int64{"id": 1})
	}))
	defer server.Close()

	const n = 8
	done := make(chan bool, n)
	for i := 0; i < n; i++ {
		c := NewClient(server.URL, budget.NewRegistry(), server.Client())
		c.CreateBudgetAsync(context.Background(), testClientBudget(t),
			func(int64) { done <- true },
			func(string) { done <- false },
		)
	}

	for i := 0; i < n; i++ {
		select {
		case ok := <-done:
			require.True(t, ok)
		case <-time.After(5 * time.Second):
			t.Fatal("callback missing")
		}
	}
}
