// Package main runs the auth server without a database or SMTP server,
// using the in-memory credential store and a logging notifier. Useful for
// quick development, demos and learning the API. All data is lost when the
// server stops; for production use cmd/authserver with PostgreSQL.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/raghavverse/simple-auth/pkg/account"
	"github.com/raghavverse/simple-auth/pkg/account/api"
	"github.com/raghavverse/simple-auth/pkg/authn"
	"github.com/raghavverse/simple-auth/pkg/notification"
	"github.com/raghavverse/simple-auth/pkg/password"
	"github.com/raghavverse/simple-auth/pkg/token"
)

const (
	jwtSecret = "inmem-dev-secret-change-in-production"
	issuer    = "simple-auth-dev"
	addr      = ":4000"

	demoEmail    = "demo@example.com"
	demoPassword = "password123"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	repo := account.NewInMemoryRepository()
	hasher := password.NewBcryptHasher()
	seedDemoUser(repo, hasher)

	tokenService := token.NewService(jwtSecret, issuer)
	cookies := token.NewCookieSetter(false)
	accountService := account.NewService(repo, hasher, tokenService, notification.LogNotifier{})
	handler := api.NewHandler(accountService, cookies)
	authGate := authn.Middleware(tokenService, cookies)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(httplog.NewLogger("simple-auth-dev", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  true,
	})))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("API working"))
	})
	r.Mount("/api/auth", handler.AuthRoutes(authGate))
	r.Mount("/api/user", handler.UserRoutes(authGate))

	slog.Info("In-memory auth server ready (no database required)", "addr", addr)
	slog.Info("Demo credentials", "email", demoEmail, "password", demoPassword)
	slog.Info("OTP codes are printed to this log instead of being emailed")

	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}

func seedDemoUser(repo *account.InMemoryRepository, hasher password.Hasher) {
	hash, err := hasher.Hash(demoPassword)
	if err != nil {
		slog.Error("Failed to hash demo password", "err", err)
		os.Exit(1)
	}
	_, err = repo.Insert(context.Background(), &account.User{
		Email:        demoEmail,
		Name:         "Demo User",
		PasswordHash: hash,
	})
	if err != nil {
		slog.Error("Failed to seed demo user", "err", err)
		os.Exit(1)
	}
}
