package web

import (
	"errors"
	"net/http"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/session"
	"bookshelf/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const oauthStateCookie = "bookshelf_oauth_state"

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFrom(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "register.tmpl", pageData{
		Title: "Create an account",
		Form:  registerForm{},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form := parseRegisterForm(r)
	if err := s.validate.Struct(form); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "register.tmpl", pageData{
			Title:  "Create an account",
			Form:   form,
			Errors: fieldErrors(err),
		})
		return
	}

	u, err := s.users.Register(r.Context(), user.RegisterParams{
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	if err != nil {
		if errors.Is(err, user.ErrConflict) {
			s.setFlash(w, "An account with that email or username already exists.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		s.handleError(w, r, err)
		return
	}

	s.startSession(w, r, u)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFrom(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.tmpl", pageData{
		Title: "Sign in",
		Form:  loginForm{},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := parseLoginForm(r)
	if err := s.validate.Struct(form); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "login.tmpl", pageData{
			Title:  "Sign in",
			Form:   form,
			Errors: fieldErrors(err),
		})
		return
	}

	u, err := s.local.Authenticate(r.Context(), auth.Credentials{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.render(w, r, http.StatusUnauthorized, "login.tmpl", pageData{
				Title: "Sign in",
				Form:  loginForm{Email: form.Email},
				Flash: "Invalid email or password.",
			})
			return
		}
		s.handleError(w, r, err)
		return
	}

	s.startSession(w, r, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id := SessionIDFrom(r); id != "" {
		if err := s.sessions.Destroy(r.Context(), id); err != nil && !errors.Is(err, session.ErrNotFound) {
			s.log.Warn("destroying session failed", zap.Error(err))
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGoogleStart(w http.ResponseWriter, r *http.Request) {
	if !s.googleEnabled() {
		s.renderErrorPage(w, r, http.StatusNotFound)
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.googleAuth.AuthCodeURL(state), http.StatusSeeOther)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !s.googleEnabled() {
		s.renderErrorPage(w, r, http.StatusNotFound)
		return
	}

	// The state round-trip ties the callback to the browser that started it.
	c, err := r.Cookie(oauthStateCookie)
	if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
		s.setFlash(w, "Google sign-in could not be completed. Please try again.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	u, err := s.google.Authenticate(r.Context(), auth.Credentials{Code: code})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.setFlash(w, "Google sign-in failed. Please try again.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		s.handleError(w, r, err)
		return
	}

	s.startSession(w, r, u)
}

// startSession persists a fresh session for the user, sets the signed cookie,
// and lands them on the dashboard.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u user.User) {
	sess := &session.Session{
		UserID:    u.ID,
		UserAgent: r.UserAgent(),
		IPAddress: r.RemoteAddr,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(r.Context(), sess); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.setSessionCookie(w, sess.ID, sess.ExpiresAt)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
