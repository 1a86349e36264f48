package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/cover"
	"bookshelf/internal/logger"
	"bookshelf/internal/platform/googleauth"
	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/session"
	"bookshelf/internal/user"
	"bookshelf/internal/web"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	dbTimeout              = 5 * time.Second
	sessionCleanupInterval = time.Hour
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg.DatabaseDSN, zlog)
	defer dbPool.Close()

	sessions, err := buildSessionStore(ctx, cfg, dbPool, zlog)
	if err != nil {
		zlog.Fatal("building session store", zap.Error(err))
	}

	olClient := openlibrary.NewClient(cfg.OpenLibraryAgent, cfg.OpenLibraryRPS)
	covers := cover.NewResolver(olClient, zlog)

	userRepo := user.NewPostgresRepo(dbPool, dbTimeout)
	users := user.NewService(userRepo, zlog)

	bookRepo := book.NewPostgresRepo(dbPool, dbTimeout)
	books := book.NewService(bookRepo, covers, zlog)

	opts := web.Options{
		Log:           zlog,
		Books:         books,
		Users:         users,
		Sessions:      sessions,
		Local:         auth.NewLocalProvider(users, zlog),
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
		Ready: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
			defer cancel()
			return dbPool.Ping(pingCtx)
		},
	}
	if cfg.GoogleEnabled() {
		gclient := googleauth.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		opts.GoogleAuth = gclient
		opts.Google = auth.NewGoogleProvider(gclient, users, zlog)
	} else {
		zlog.Info("google sign-in disabled: client credentials not configured")
	}

	srv := web.NewServer(opts)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("starting server", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildSessionStore(ctx context.Context, cfg config.Config, dbPool *pgxpool.Pool, zlog *zap.Logger) (session.Store, error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		zlog.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
		return session.NewRedisStore(client), nil
	default:
		store := session.NewPostgresStore(dbPool, dbTimeout)
		store.StartCleaner(ctx, sessionCleanupInterval, zlog)
		return store, nil
	}
}

func mustOpenDB(ctx context.Context, dsn string, zlog *zap.Logger) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		zlog.Fatal("cannot create db pool", zap.Error(err))
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		zlog.Fatal("cannot ping database", zap.String("dsn", redactDSN(dsn)), zap.Error(err))
	}
	zlog.Info("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
