package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleHome renders the landing page with the most recently added books
// across all shelves.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	books, err := s.books.Recent(r.Context(), recentShelfLimit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "home.tmpl", pageData{
		Title: "Bookshelf",
		Books: viewBooks(books),
	})
}

// handleShelf renders a user's public shelf.
func (s *Server) handleShelf(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	owner, err := s.users.GetByUsername(r.Context(), username)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	books, err := s.books.ListByUsername(r.Context(), owner.Username)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "shelf.tmpl", pageData{
		Title: owner.Username + "'s shelf",
		Owner: owner.Username,
		Books: viewBooks(books),
	})
}

// handleDashboard renders the signed-in user's own shelf with edit controls.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r)

	books, err := s.books.ListByUser(r.Context(), u.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.tmpl", pageData{
		Title: "Your shelf",
		Books: viewBooks(books),
	})
}
