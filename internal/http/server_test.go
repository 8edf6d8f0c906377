package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"plutus/internal/auth"
	"plutus/internal/cache"
	"plutus/internal/services"
	"plutus/internal/storage"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	authSvc := auth.NewService(repo, testJWTSecret, time.Hour)
	snapshots := cache.NewLRUCache[[]services.LeaderboardEntry](16, time.Minute)

	srv := NewServer("127.0.0.1:0", Deps{
		Auth:         authSvc,
		Resolver:     authSvc,
		Transactions: services.NewTransactionService(repo, nil),
		Budgets:      services.NewBudgetService(repo, repo),
		Allocations:  services.NewAllocationService(repo),
		Shares:       services.NewShareService(repo),
		Leaderboard:  services.NewLeaderboardService(repo, repo, snapshots),
		Users:        repo,
		Ready:        repo.Ping,
	})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return ts
}

// doJSON sends a request and decodes the JSON response into out when out is
// non-nil. It returns the status code.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, ts *httptest.Server, email, name string) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	status := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "displayName": name, "password": "valid-password",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register status = %d", status)
	}
	return resp.Token
}

func createTransaction(t *testing.T, ts *httptest.Server, token, amount, category, datetime, txType string) map[string]any {
	t.Helper()
	var tx map[string]any
	status := doJSON(t, ts, http.MethodPost, "/api/transactions", token, map[string]string{
		"amount": amount, "category": category, "datetime": datetime, "transactionType": txType,
	}, &tx)
	if status != http.StatusCreated {
		t.Fatalf("create transaction status = %d", status)
	}
	return tx
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	token := registerUser(t, ts, "ada@example.com", "Ada")
	if token == "" {
		t.Fatal("register returned empty token")
	}

	t.Run("duplicate email conflicts", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "ada@example.com", "displayName": "Ada", "password": "valid-password",
		}, nil)
		if status != http.StatusConflict {
			t.Errorf("status = %d, want 409", status)
		}
	})

	t.Run("login", func(t *testing.T) {
		var resp struct {
			Token string `json:"token"`
		}
		status := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ada@example.com", "password": "valid-password",
		}, &resp)
		if status != http.StatusOK || resp.Token == "" {
			t.Errorf("login status = %d, token empty = %v", status, resp.Token == "")
		}
	})

	t.Run("wrong password unauthorized", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ada@example.com", "password": "wrong-password",
		}, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("missing and garbage tokens rejected", func(t *testing.T) {
		if status := doJSON(t, ts, http.MethodGet, "/api/transactions", "", nil, nil); status != http.StatusUnauthorized {
			t.Errorf("no token status = %d, want 401", status)
		}
		if status := doJSON(t, ts, http.MethodGet, "/api/transactions", "not.a.token", nil, nil); status != http.StatusUnauthorized {
			t.Errorf("bad token status = %d, want 401", status)
		}
	})
}

func TestTransactionEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "ada@example.com", "Ada")

	tx := createTransaction(t, ts, token, "40", "Food", "2024-03-05T10:00:00.000Z", "expense")
	if tx["amount"] != "-40" {
		t.Errorf("stored amount = %v, want -40", tx["amount"])
	}
	createTransaction(t, ts, token, "10", "Food", "2024-03-10T10:00:00.000Z", "expense")
	createTransaction(t, ts, token, "2000", "", "2024-03-01T10:00:00.000Z", "income")

	t.Run("month-scoped list", func(t *testing.T) {
		var txs []map[string]any
		status := doJSON(t, ts, http.MethodGet, "/api/transactions?year=2024&month=2", token, nil, &txs)
		if status != http.StatusOK || len(txs) != 3 {
			t.Errorf("status = %d, transactions = %d, want 3", status, len(txs))
		}

		var empty []map[string]any
		doJSON(t, ts, http.MethodGet, "/api/transactions?year=2024&month=3", token, nil, &empty)
		if len(empty) != 0 {
			t.Errorf("april transactions = %d, want 0", len(empty))
		}
	})

	t.Run("monthly summary", func(t *testing.T) {
		var summary map[string]any
		status := doJSON(t, ts, http.MethodGet, "/api/summary?year=2024&month=2", token, nil, &summary)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if summary["totalExpenses"] != "50" || summary["totalIncome"] != "2000" {
			t.Errorf("summary = %v", summary)
		}
		if summary["remainder"] != "1950" || summary["status"] != "unbudgeted" {
			t.Errorf("remainder/status = %v/%v", summary["remainder"], summary["status"])
		}
	})

	t.Run("category summary buckets uncategorized", func(t *testing.T) {
		var summary struct {
			Categories []map[string]any `json:"categories"`
			TotalSpent string           `json:"totalSpent"`
		}
		doJSON(t, ts, http.MethodGet, "/api/summary/categories?year=2024&month=2&type=expense", token, nil, &summary)
		if len(summary.Categories) != 1 || summary.Categories[0]["category"] != "Food" {
			t.Errorf("categories = %v", summary.Categories)
		}
		if summary.TotalSpent != "50" {
			t.Errorf("totalSpent = %s", summary.TotalSpent)
		}
	})

	t.Run("invalid payload rejected", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/transactions", token, map[string]string{
			"amount": "abc", "datetime": "2024-03-05T10:00:00.000Z", "transactionType": "expense",
		}, nil)
		if status != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", status)
		}
	})

	t.Run("delete", func(t *testing.T) {
		id := tx["id"].(string)
		if status := doJSON(t, ts, http.MethodDelete, "/api/transactions/"+id, token, nil, nil); status != http.StatusNoContent {
			t.Errorf("delete status = %d, want 204", status)
		}
		if status := doJSON(t, ts, http.MethodDelete, "/api/transactions/"+id, token, nil, nil); status != http.StatusNotFound {
			t.Errorf("second delete status = %d, want 404", status)
		}
	})
}

func TestBudgetEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "ada@example.com", "Ada")

	createTransaction(t, ts, token, "50", "Food", "2024-03-05T10:00:00.000Z", "expense")
	createTransaction(t, ts, token, "20", "Taxi", "2024-03-06T10:00:00.000Z", "expense")

	var budget map[string]any
	status := doJSON(t, ts, http.MethodPost, "/api/budgets", token, map[string]any{
		"category": "Food", "amount": "100", "year": 2024, "month": 2,
	}, &budget)
	if status != http.StatusOK {
		t.Fatalf("upsert status = %d", status)
	}

	t.Run("progress splits budgeted and unbudgeted", func(t *testing.T) {
		var report struct {
			Budgets    []map[string]any `json:"budgets"`
			Unbudgeted []map[string]any `json:"unbudgeted"`
		}
		doJSON(t, ts, http.MethodGet, "/api/budgets/progress?year=2024&month=2", token, nil, &report)
		if len(report.Budgets) != 1 || report.Budgets[0]["spent"] != "50" || report.Budgets[0]["status"] != "within_budget" {
			t.Errorf("budgets = %v", report.Budgets)
		}
		if len(report.Unbudgeted) != 1 || report.Unbudgeted[0]["category"] != "Taxi" {
			t.Errorf("unbudgeted = %v", report.Unbudgeted)
		}
	})

	t.Run("summary totals include unbudgeted spending", func(t *testing.T) {
		var summary map[string]any
		doJSON(t, ts, http.MethodGet, "/api/budgets/summary?year=2024&month=2", token, nil, &summary)
		if summary["totalBudget"] != "100" || summary["totalSpent"] != "70" || summary["totalRemaining"] != "30" {
			t.Errorf("summary = %v", summary)
		}
	})

	t.Run("delete budget", func(t *testing.T) {
		id := budget["id"].(string)
		if status := doJSON(t, ts, http.MethodDelete, "/api/budgets/"+id, token, nil, nil); status != http.StatusNoContent {
			t.Errorf("delete status = %d", status)
		}
	})
}

func TestAllocationEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "ada@example.com", "Ada")

	var alloc map[string]any
	status := doJSON(t, ts, http.MethodPut, "/api/allocations", token, map[string]any{
		"category": "Rent", "type": "amount", "value": "600+105", "priority": 1,
	}, &alloc)
	if status != http.StatusOK || alloc["value"] != "705" {
		t.Errorf("status = %d, value = %v, want 705", status, alloc["value"])
	}

	status = doJSON(t, ts, http.MethodPut, "/api/allocations", token, map[string]any{
		"category": "Fun", "type": "percentage", "value": "120", "priority": 2,
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Errorf("over-100 percentage status = %d, want 422", status)
	}

	if status := doJSON(t, ts, http.MethodDelete, "/api/allocations?category=Rent", token, nil, nil); status != http.StatusNoContent {
		t.Errorf("delete status = %d", status)
	}
	if status := doJSON(t, ts, http.MethodDelete, "/api/allocations", token, nil, nil); status != http.StatusBadRequest {
		t.Errorf("missing category status = %d, want 400", status)
	}
}

func TestShareEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "ada@example.com", "Ada")
	createTransaction(t, ts, token, "40", "Food", "2024-03-05T10:00:00.000Z", "expense")

	var link map[string]any
	status := doJSON(t, ts, http.MethodPost, "/api/share", token, map[string]any{
		"year": 2024, "month": 2,
	}, &link)
	if status != http.StatusCreated {
		t.Fatalf("create share status = %d", status)
	}
	if link["permanent"] != true || link["expiresAtLabel"] != "Never" {
		t.Errorf("link = %v", link)
	}

	t.Run("shared view is unauthenticated", func(t *testing.T) {
		var view struct {
			DisplayName string         `json:"displayName"`
			Summary     map[string]any `json:"summary"`
		}
		shareID := link["shareId"].(string)
		status := doJSON(t, ts, http.MethodGet, "/api/shared/"+shareID, "", nil, &view)
		if status != http.StatusOK {
			t.Fatalf("shared view status = %d", status)
		}
		if view.DisplayName != "Ada" || view.Summary["totalExpenses"] != "40" {
			t.Errorf("view = %+v", view)
		}
	})

	t.Run("unknown token is a null 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/shared/no-such-token", nil)
		resp, err := ts.Client().Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
		if string(bytes.TrimSpace(body)) != "null" {
			t.Errorf("body = %q, want null", body)
		}
	})

	t.Run("delete all reports count", func(t *testing.T) {
		var resp struct {
			Deleted int64 `json:"deleted"`
		}
		status := doJSON(t, ts, http.MethodDelete, "/api/share", token, nil, &resp)
		if status != http.StatusOK || resp.Deleted != 1 {
			t.Errorf("status = %d, deleted = %d", status, resp.Deleted)
		}
	})
}

func TestLeaderboardEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ada := registerUser(t, ts, "ada@example.com", "Ada")
	grace := registerUser(t, ts, "grace@example.com", "Grace")

	createTransaction(t, ts, ada, "100", "", "2024-03-05T10:00:00.000Z", "savings")
	createTransaction(t, ts, grace, "250", "", "2024-03-05T10:00:00.000Z", "savings")

	var entries []map[string]any
	status := doJSON(t, ts, http.MethodGet, "/api/leaderboard?year=2024&month=2", ada, nil, &entries)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0]["displayName"] != "Grace" || entries[0]["netSavings"] != "250" {
		t.Errorf("first entry = %v", entries[0])
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := ts.Client().Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d", path, resp.StatusCode)
		}
	}
}

func TestMethodRouting(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "ada@example.com", "Ada")

	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/api/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status = %d, want 405", resp.StatusCode)
	}
}
