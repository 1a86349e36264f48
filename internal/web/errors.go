package web

import (
	"errors"
	"net/http"

	"bookshelf/internal/book"
	"bookshelf/internal/user"

	"go.uber.org/zap"
)

// handleError renders the page for a failed operation. Missing rows become a
// 404; everything else is logged and reported as a 500.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound), errors.Is(err, user.ErrNotFound):
		s.renderErrorPage(w, r, http.StatusNotFound)
	default:
		s.log.Error("request failed",
			zap.String("request_id", RequestIDFrom(r)),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.renderErrorPage(w, r, http.StatusInternalServerError)
	}
}
