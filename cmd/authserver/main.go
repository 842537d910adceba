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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jinzhu/copier"

	"github.com/raghavverse/simple-auth/pkg/account"
	"github.com/raghavverse/simple-auth/pkg/account/api"
	"github.com/raghavverse/simple-auth/pkg/authn"
	"github.com/raghavverse/simple-auth/pkg/config"
	"github.com/raghavverse/simple-auth/pkg/notification"
	"github.com/raghavverse/simple-auth/pkg/password"
	"github.com/raghavverse/simple-auth/pkg/token"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Db.URL())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.Db.Database, "host", cfg.Db.Host, "port", cfg.Db.Port, "user", cfg.Db.User, "err", err)
		os.Exit(1)
	}
	repo := account.NewPgRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		slog.Error("Failed to migrate users schema", "err", err)
		os.Exit(1)
	}

	var notifier notification.Notifier = notification.LogNotifier{}
	if cfg.Smtp.Host != "" {
		var smtpConfig notification.SMTPConfig
		copier.Copy(&smtpConfig, &cfg.Smtp)
		emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
		if err != nil {
			slog.Error("Failed to create email notifier", "host", cfg.Smtp.Host, "err", err)
			os.Exit(1)
		}
		notifier = emailNotifier
	} else {
		slog.Warn("SMTP_HOST not set, notifications will only be logged")
	}

	tokenService := token.NewService(cfg.Jwt.Secret, cfg.Jwt.Issuer)
	cookies := token.NewCookieSetter(cfg.Server.IsProduction())
	accountService := account.NewService(repo, password.NewBcryptHasher(), tokenService, notifier)
	handler := api.NewHandler(accountService, cookies)
	authGate := authn.Middleware(tokenService, cookies)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(httplog.NewLogger("simple-auth", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  true,
	})))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
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

	addr := cfg.Server.Addr()
	slog.Info("Server starting", "addr", addr, "env", cfg.Server.Env)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}
