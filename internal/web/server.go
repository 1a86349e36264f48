// Package web is the server-rendered HTTP surface: routing, sessions,
// templates, and the handlers behind every page.
package web

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/platform/googleauth"
	"bookshelf/internal/session"
	"bookshelf/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// recentShelfLimit caps the landing-page listing.
const recentShelfLimit = 12

type Server struct {
	log      *zap.Logger
	books    *book.Service
	users    *user.Service
	sessions session.Store

	local      auth.Provider
	google     auth.Provider
	googleAuth *googleauth.Client

	sessionSecret string
	sessionTTL    time.Duration
	secureCookies bool

	validate  *validator.Validate
	templates map[string]*template.Template
	ready     func(ctx context.Context) error
}

// Options carries everything a Server needs; Google fields may be nil when
// federated login is not configured.
type Options struct {
	Log      *zap.Logger
	Books    *book.Service
	Users    *user.Service
	Sessions session.Store

	Local      auth.Provider
	Google     auth.Provider
	GoogleAuth *googleauth.Client

	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool

	// Ready reports backing-store health for the readiness probe.
	Ready func(ctx context.Context) error
}

func NewServer(opts Options) *Server {
	return &Server{
		log:           opts.Log,
		books:         opts.Books,
		users:         opts.Users,
		sessions:      opts.Sessions,
		local:         opts.Local,
		google:        opts.Google,
		googleAuth:    opts.GoogleAuth,
		sessionSecret: opts.SessionSecret,
		sessionTTL:    opts.SessionTTL,
		secureCookies: opts.SecureCookies,
		validate:      newValidator(),
		templates:     parseTemplates(),
		ready:         opts.Ready,
	}
}

func (s *Server) googleEnabled() bool {
	return s.google != nil && s.googleAuth != nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.accessLogMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(s.withUser)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	staticRoot, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))))

	r.Get("/", s.handleHome)
	r.Get("/u/{username}", s.handleShelf)

	r.Get("/register", s.handleRegisterPage)
	r.Post("/register", s.handleRegister)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/auth/google", s.handleGoogleStart)
	r.Get("/auth/google/callback", s.handleGoogleCallback)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/books/add", s.handleBookAddPage)
		r.Post("/books/add", s.handleBookAdd)
		r.Get("/books/{id}/edit", s.handleBookEditPage)
		r.Post("/books/{id}/edit", s.handleBookEdit)
		r.Post("/books/{id}/delete", s.handleBookDelete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderErrorPage(w, r, http.StatusNotFound)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.log.Warn("readiness check failed", zap.Error(err))
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
