package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleBookAddPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "book_form.tmpl", pageData{
		Title: "Add a book",
		Form:  bookForm{},
	})
}

func (s *Server) handleBookAdd(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r)

	form := parseBookForm(r)
	if err := s.validate.Struct(form); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "book_form.tmpl", pageData{
			Title:  "Add a book",
			Form:   form,
			Errors: fieldErrors(err),
		})
		return
	}

	b := form.toBook(u.ID)
	if err := s.books.Create(r.Context(), &b); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.setFlash(w, "Added \""+b.Title+"\" to your shelf.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleBookEditPage(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r)
	id := chi.URLParam(r, "id")

	b, err := s.books.Get(r.Context(), id, u.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	form := bookForm{
		Title:  b.Title,
		Author: b.Author,
		ISBN:   b.ISBN,
		Rating: b.Rating,
		Notes:  b.Notes,
	}
	if b.DateRead != nil {
		form.DateRead = b.DateRead.Format("2006-01-02")
	}
	s.render(w, r, http.StatusOK, "book_form.tmpl", pageData{
		Title:  "Edit book",
		Form:   form,
		EditID: b.ID,
	})
}

func (s *Server) handleBookEdit(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r)
	id := chi.URLParam(r, "id")

	form := parseBookForm(r)
	if err := s.validate.Struct(form); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "book_form.tmpl", pageData{
			Title:  "Edit book",
			Form:   form,
			Errors: fieldErrors(err),
			EditID: id,
		})
		return
	}

	b := form.toBook(u.ID)
	b.ID = id
	if err := s.books.Update(r.Context(), &b); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.setFlash(w, "Updated \""+b.Title+"\".")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleBookDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r)
	id := chi.URLParam(r, "id")

	if err := s.books.Delete(r.Context(), id, u.ID); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.setFlash(w, "Book removed.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
