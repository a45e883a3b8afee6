package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/db"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/router"
	"github.com/danielhkuo/polls/session"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect, verify and migrate
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		slog.Error("database setup failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if cfg.SessionPurgeInterval > 0 {
		go purgeSessions(ctx, session.NewStore(dbConn, cfg), cfg.SessionPurgeInterval)
	}

	mux := router.NewRouter(dbConn, cfg)

	server := http.Server{
		Handler:           middleware.Recover(middleware.CORS(mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func logLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// purgeSessions deletes expired sessions every interval until ctx is done.
func purgeSessions(ctx context.Context, sessions *session.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				slog.Error("session purge failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions purged", "count", n)
			}
		}
	}
}
