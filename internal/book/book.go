package book

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound covers both a missing row and a row owned by someone else;
// ownership-scoped queries cannot tell the two apart and must not.
var ErrNotFound = errors.New("book not found")

type Book struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	Username string     `json:"username,omitempty"` // owner, populated on public listings
	Title    string     `json:"title"`
	Author   string     `json:"author"`
	ISBN     string     `json:"isbn,omitempty"`
	Rating   int        `json:"rating"`
	Notes    string     `json:"notes"`
	DateRead *time.Time `json:"date_read,omitempty"`
	CoverURL string     `json:"cover_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Book, error)
	ListByUsername(ctx context.Context, username string) ([]Book, error)
	ListRecent(ctx context.Context, limit int) ([]Book, error)
	Get(ctx context.Context, id, userID string) (Book, error)
	Insert(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id, userID string) error
	UpdateCoverURL(ctx context.Context, id, coverURL string) error
}
