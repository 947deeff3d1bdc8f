package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/tuvoto/auth"
	"github.com/danielhkuo/tuvoto/cliparse"
	"github.com/danielhkuo/tuvoto/db"
	"github.com/danielhkuo/tuvoto/guard"
	"github.com/danielhkuo/tuvoto/ledger"
	"github.com/danielhkuo/tuvoto/middleware"
	"github.com/danielhkuo/tuvoto/router"
	"github.com/danielhkuo/tuvoto/voting"
)

func main() {
	var err error

	// A missing .env is fine; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the store
	dbConn, dialect, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.TokenMaxAge)
	if err != nil {
		slog.Error("token service setup failed", "error", err)
		os.Exit(1)
	}
	if cfg.TokenMaxAge == 0 {
		slog.Warn("voting links never expire; set TOKEN_MAX_AGE to bound replay")
	}

	if cfg.WebhookAuthToken == "" {
		slog.Warn("webhook signatures not checked; set WEBHOOK_AUTH_TOKEN so only the messaging provider can request links")
	}
	if cfg.LinksAPIKey == "" {
		slog.Info("POST /links disabled; set LINKS_API_KEY to enable it")
	}

	reputation := guard.NewReputationClient(cfg.ReputationURL, cfg.ReputationAPIKey, cfg.ReputationTimeout)
	if !reputation.Enabled() {
		slog.Warn("reputation checks disabled; set REPUTATION_API_KEY to block proxies, VPNs and Tor")
	}

	limiter, closeLimiter, err := newLimiter(cfg, dbConn, dialect)
	if err != nil {
		slog.Error("rate limiter setup failed", "error", err)
		os.Exit(1)
	}
	defer closeLimiter()

	votes := ledger.New(dbConn, dialect)
	service := voting.NewService(tokens, votes, guard.New(reputation, limiter, votes), voting.Options{
		BaseURL:           cfg.PublicBaseURL,
		MaxVotesPerOrigin: cfg.MaxVotesPerOrigin,
		RateWindow:        cfg.RateWindow,
		LogSalt:           cfg.TokenSecret,
	})

	// Create router
	mux := router.NewRouter(service, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	// Start server
	slog.Info("Listening",
		"port", cfg.Port,
		"base_url", cfg.PublicBaseURL,
		"rate_window", cfg.RateWindow.String(),
		"max_votes_per_origin", cfg.MaxVotesPerOrigin,
		"trust_proxy", cfg.TrustProxy,
	)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// newLimiter picks Redis when configured so several instances share one
// window, otherwise the access log in the main store
func newLimiter(cfg cliparse.Config, conn *sql.DB, dialect db.Dialect) (guard.RateLimiter, func(), error) {
	if cfg.RedisURL == "" {
		return guard.NewSQLLimiter(conn, dialect, cfg.RateWindow), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}

	slog.Info("Rate limiter using redis", "addr", opts.Addr)
	return guard.NewRedisLimiter(client, cfg.RateWindow), func() { client.Close() }, nil
}
