package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/isbn"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Accepts anything the normalizer can work with: 10 or 13 significant
	// characters after stripping separators.
	_ = v.RegisterValidation("isbn", func(fl validator.FieldLevel) bool {
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
				return r
			}
			return -1
		}, fl.Field().String())
		return len(cleaned) == 10 || len(cleaned) == 13
	})
	return v
}

type bookForm struct {
	Title    string `validate:"required,max=255"`
	Author   string `validate:"required,max=255"`
	ISBN     string `validate:"omitempty,isbn"`
	Rating   int    `validate:"required,min=1,max=5"`
	Notes    string `validate:"max=5000"`
	DateRead string `validate:"omitempty,datetime=2006-01-02"`
}

type registerForm struct {
	Username  string `validate:"required,min=3,max=30,alphanum"`
	Email     string `validate:"required,email,max=255"`
	Password  string `validate:"required,min=8,max=72"`
	FirstName string `validate:"required,max=50"`
	LastName  string `validate:"max=50"`
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func parseBookForm(r *http.Request) bookForm {
	rating, _ := strconv.Atoi(r.PostFormValue("rating"))
	return bookForm{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Author:   strings.TrimSpace(r.PostFormValue("author")),
		ISBN:     strings.TrimSpace(r.PostFormValue("isbn")),
		Rating:   rating,
		Notes:    strings.TrimSpace(r.PostFormValue("notes")),
		DateRead: strings.TrimSpace(r.PostFormValue("date_read")),
	}
}

func parseRegisterForm(r *http.Request) registerForm {
	return registerForm{
		Username:  strings.TrimSpace(strings.ToLower(r.PostFormValue("username"))),
		Email:     strings.TrimSpace(strings.ToLower(r.PostFormValue("email"))),
		Password:  r.PostFormValue("password"),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
	}
}

func parseLoginForm(r *http.Request) loginForm {
	return loginForm{
		Email:    strings.TrimSpace(strings.ToLower(r.PostFormValue("email"))),
		Password: r.PostFormValue("password"),
	}
}

// toBook maps a validated form onto a domain book. The stored ISBN is the
// normalized ten-digit form when one can be derived, otherwise the raw input.
func (f bookForm) toBook(userID string) book.Book {
	b := book.Book{
		UserID: userID,
		Title:  f.Title,
		Author: f.Author,
		ISBN:   f.ISBN,
		Rating: f.Rating,
		Notes:  f.Notes,
	}
	if normalized, err := isbn.Normalize(f.ISBN); err == nil {
		b.ISBN = normalized
	}
	if f.DateRead != "" {
		if d, err := time.Parse("2006-01-02", f.DateRead); err == nil {
			b.DateRead = &d
		}
	}
	return b
}

var fieldMessages = map[string]string{
	"Title":     "Title is required and must be at most 255 characters.",
	"Author":    "Author is required and must be at most 255 characters.",
	"ISBN":      "ISBN must have 10 or 13 digits.",
	"Rating":    "Rating must be between 1 and 5.",
	"Notes":     "Notes must be at most 5000 characters.",
	"DateRead":  "Date read must be a valid date (YYYY-MM-DD).",
	"Username":  "Username must be 3-30 letters or digits.",
	"Email":     "A valid email address is required.",
	"Password":  "Password must be 8-72 characters.",
	"FirstName": "First name is required.",
	"LastName":  "Last name must be at most 50 characters.",
}

// fieldErrors flattens validation failures into per-field messages for the
// template layer.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return out
	}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = "Invalid value."
		}
		out[fe.Field()] = msg
	}
	return out
}
