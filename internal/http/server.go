// Package http exposes the JSON API: auth, transactions, summaries,
// budgets, allocations, leaderboard and share links.
package http

import (
	"context"
	"net/http"
	"sync"

	"plutus/internal/auth"
	"plutus/internal/services"
	"plutus/internal/storage"
)

const requestsPerMinute = 60

// UserDirectory resolves owner IDs to accounts, used by the shared view to
// show the owner's display name.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (storage.User, error)
}

// Deps bundles everything the server needs. Readiness is a pluggable probe
// so tests can run without a live database check.
type Deps struct {
	Auth         *auth.Service
	Resolver     auth.OwnerResolver
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Allocations  *services.AllocationService
	Shares       *services.ShareService
	Leaderboard  *services.LeaderboardService
	Users        UserDirectory
	Ready        func(ctx context.Context) error
}

type Server struct {
	http.Server

	auth         *auth.Service
	resolver     auth.OwnerResolver
	transactions *services.TransactionService
	budgets      *services.BudgetService
	allocations  *services.AllocationService
	shares       *services.ShareService
	leaderboard  *services.LeaderboardService
	users        UserDirectory
	ready        func(ctx context.Context) error

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer wires all routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:         deps.Auth,
		resolver:     deps.Resolver,
		transactions: deps.Transactions,
		budgets:      deps.Budgets,
		allocations:  deps.Allocations,
		shares:       deps.Shares,
		leaderboard:  deps.Leaderboard,
		users:        deps.Users,
		ready:        deps.Ready,
		rateLimiter:  newRateLimiter(requestsPerMinute),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.wrap(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.wrap(s.handleLogin))

	mux.HandleFunc("GET /api/transactions", s.authed(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.authed(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.authed(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/summary", s.authed(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/summary/categories", s.authed(s.handleCategorySummary))
	mux.HandleFunc("GET /api/summary/savings", s.authed(s.handleSavingsSummary))

	mux.HandleFunc("GET /api/budgets", s.authed(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.authed(s.handleUpsertBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.authed(s.handleDeleteBudget))
	mux.HandleFunc("GET /api/budgets/progress", s.authed(s.handleBudgetProgress))
	mux.HandleFunc("GET /api/budgets/summary", s.authed(s.handleBudgetSummary))

	mux.HandleFunc("GET /api/allocations", s.authed(s.handleListAllocations))
	mux.HandleFunc("PUT /api/allocations", s.authed(s.handlePutAllocation))
	mux.HandleFunc("DELETE /api/allocations", s.authed(s.handleDeleteAllocation))

	mux.HandleFunc("GET /api/leaderboard", s.authed(s.handleLeaderboard))

	mux.HandleFunc("POST /api/share", s.authed(s.handleCreateShareLink))
	mux.HandleFunc("GET /api/share", s.authed(s.handleListShareLinks))
	mux.HandleFunc("DELETE /api/share/{id}", s.authed(s.handleDeleteShareLink))
	mux.HandleFunc("DELETE /api/share", s.authed(s.handleDeleteAllShareLinks))

	mux.HandleFunc("GET /api/shared/{shareId}", s.wrap(s.handleSharedView))

	return s
}

// Shutdown stops the server and its background goroutines, once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "not ready"})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
