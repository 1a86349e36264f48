package book

import (
	"context"

	"bookshelf/internal/cover"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLookups bounds in-flight cover lookups for one listing.
const maxConcurrentLookups = 8

// CoverResolver yields a usable cover URL for an ISBN/title pair. It never
// fails; unresolvable covers come back as the default sentinel.
type CoverResolver interface {
	Resolve(ctx context.Context, isbn, title string) string
}

type Service struct {
	repo   Repository
	covers CoverResolver
	log    *zap.Logger
}

func NewService(repo Repository, covers CoverResolver, log *zap.Logger) *Service {
	return &Service{repo: repo, covers: covers, log: log}
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Book, error) {
	books, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.refreshCovers(ctx, books)
	return books, nil
}

func (s *Service) ListByUsername(ctx context.Context, username string) ([]Book, error) {
	books, err := s.repo.ListByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	s.refreshCovers(ctx, books)
	return books, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Book, error) {
	books, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.refreshCovers(ctx, books)
	return books, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (Book, error) {
	return s.repo.Get(ctx, id, userID)
}

// Create resolves the cover before persisting so a new book always carries a
// usable cover URL, sentinel included.
func (s *Service) Create(ctx context.Context, b *Book) error {
	b.CoverURL = s.covers.Resolve(ctx, b.ISBN, b.Title)
	return s.repo.Insert(ctx, b)
}

// Update re-resolves the cover (title or ISBN may have changed) and writes
// through the ownership-scoped statement.
func (s *Service) Update(ctx context.Context, b *Book) error {
	b.CoverURL = s.covers.Resolve(ctx, b.ISBN, b.Title)
	return s.repo.Update(ctx, b)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

// refreshCovers lazily re-resolves covers that are blank or still the default
// sentinel, one concurrent lookup per stale book. Each book's lookup is
// isolated: a slow or failing one settles to the sentinel without touching
// the rest, and the listing is returned only after all have settled.
func (s *Service) refreshCovers(ctx context.Context, books []Book) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	for i := range books {
		b := &books[i]
		if b.CoverURL != "" && b.CoverURL != cover.DefaultURL {
			continue
		}
		g.Go(func() error {
			url := s.covers.Resolve(ctx, b.ISBN, b.Title)
			b.CoverURL = url
			if url != cover.DefaultURL {
				if err := s.repo.UpdateCoverURL(ctx, b.ID, url); err != nil {
					s.log.Warn("persisting refreshed cover failed",
						zap.String("book_id", b.ID),
						zap.Error(err),
					)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
