package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"bookshelf/internal/book"
	"bookshelf/internal/marketplace"
	"bookshelf/internal/user"

	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplates = []string{
	"home.tmpl",
	"shelf.tmpl",
	"dashboard.tmpl",
	"book_form.tmpl",
	"login.tmpl",
	"register.tmpl",
	"error.tmpl",
}

func parseTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pageTemplates))
	for _, page := range pageTemplates {
		out[page] = template.Must(template.ParseFS(templateFS,
			"templates/layout.tmpl",
			"templates/"+page,
		))
	}
	return out
}

// bookView decorates a domain book with everything a template needs.
type bookView struct {
	book.Book
	MarketplaceURL string
}

func viewBooks(books []book.Book) []bookView {
	out := make([]bookView, 0, len(books))
	for _, b := range books {
		out = append(out, bookView{
			Book:           b,
			MarketplaceURL: marketplace.BuildLink(b.ISBN, b.Title),
		})
	}
	return out
}

type pageData struct {
	Title         string
	User          *user.User
	Flash         string
	Errors        map[string]string
	Form          any
	Books         []bookView
	Owner         string
	GoogleEnabled bool
	Status        int
	StatusText    string
	EditID        string
}

// render executes a page into a buffer first so a template failure can still
// become a clean error response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	if u, ok := UserFrom(r); ok {
		data.User = &u
	}
	if data.Flash == "" {
		data.Flash = s.popFlash(w, r)
	}
	data.GoogleEnabled = s.googleEnabled()

	tmpl, ok := s.templates[page]
	if !ok {
		s.log.Error("unknown template", zap.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error("template execution failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, status int) {
	s.render(w, r, status, "error.tmpl", pageData{
		Title:      http.StatusText(status),
		Status:     status,
		StatusText: http.StatusText(status),
	})
}
