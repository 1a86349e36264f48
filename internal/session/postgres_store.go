package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	const query = `
	INSERT INTO sessions (id, user_id, user_agent, ip_address, expires_at)
	VALUES (gen_random_uuid(), $1, $2, $3, $4)
	RETURNING id, created_at
	`
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.QueryRow(timeoutCtx, query,
		sess.UserID,
		sess.UserAgent,
		sess.IPAddress,
		sess.ExpiresAt,
	).Scan(&sess.ID, &sess.CreatedAt)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	const query = `
	SELECT id, user_id, user_agent, ip_address, expires_at, created_at
	FROM sessions
	WHERE id = $1 AND expires_at > now()
	LIMIT 1
	`
	var sess Session
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	err := s.db.QueryRow(timeoutCtx, query, id).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.UserAgent,
		&sess.IPAddress,
		&sess.ExpiresAt,
		&sess.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return sess, nil
}

func (s *PostgresStore) Destroy(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	result, err := s.db.Exec(timeoutCtx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) cleanupExpired(ctx context.Context) error {
	const query = `DELETE FROM sessions WHERE expires_at < now()`
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.Exec(timeoutCtx, query)
	return err
}

// StartCleaner sweeps expired rows in the background until ctx is cancelled.
// Redis expires keys natively; the Postgres store needs this sweep.
func (s *PostgresStore) StartCleaner(ctx context.Context, interval time.Duration, log *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.cleanupExpired(ctx); err != nil {
					log.Warn("session cleanup failed", zap.Error(err))
				}
			}
		}
	}()
}
