// Package cover resolves display cover images from Open Library.
package cover

import (
	"context"
	"fmt"
	"strings"

	"bookshelf/internal/platform/openlibrary"

	"go.uber.org/zap"
)

// DefaultURL is the sentinel cover path used when no image can be resolved.
const DefaultURL = "/static/default-cover.svg"

const imageURLTemplate = "https://covers.openlibrary.org/b/id/%d-M.jpg"

// SearchClient is the slice of the Open Library client the resolver needs.
type SearchClient interface {
	SearchByISBN(ctx context.Context, isbn string) (*openlibrary.SearchResponse, error)
	SearchByTitle(ctx context.Context, title string) (*openlibrary.SearchResponse, error)
}

type Resolver struct {
	client SearchClient
	log    *zap.Logger
}

func NewResolver(client SearchClient, log *zap.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// Resolve returns a display cover URL for the given ISBN/title. It performs
// exactly one lookup, preferring ISBN over title, and falls back to
// DefaultURL on any failure. Failures are logged, never returned.
func (r *Resolver) Resolve(ctx context.Context, isbn, title string) string {
	var (
		res *openlibrary.SearchResponse
		err error
	)
	if strings.TrimSpace(isbn) != "" {
		res, err = r.client.SearchByISBN(ctx, isbn)
	} else {
		res, err = r.client.SearchByTitle(ctx, title)
	}
	if err != nil {
		r.log.Warn("cover lookup failed",
			zap.String("isbn", isbn),
			zap.String("title", title),
			zap.Error(err),
		)
		return DefaultURL
	}
	if len(res.Docs) == 0 || res.Docs[0].CoverID == 0 {
		return DefaultURL
	}
	return fmt.Sprintf(imageURLTemplate, res.Docs[0].CoverID)
}
