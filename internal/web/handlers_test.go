package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/mocks"
	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/testutil"
	"bookshelf/internal/user"
	"bookshelf/internal/web"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	handler  http.Handler
	userRepo *mocks.MockUserRepository
	bookRepo *mocks.MockBookRepository
	covers   *mocks.MockCoverResolver
	sessions *testutil.MemorySessionStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	userRepo := mocks.NewMockUserRepository(ctrl)
	bookRepo := mocks.NewMockBookRepository(ctrl)
	covers := mocks.NewMockCoverResolver(ctrl)
	sessions := testutil.NewMemorySessionStore()

	log := zap.NewNop()
	users := user.NewService(userRepo, log)
	books := book.NewService(bookRepo, covers, log)

	srv := web.NewServer(web.Options{
		Log:           log,
		Books:         books,
		Users:         users,
		Sessions:      sessions,
		Local:         auth.NewLocalProvider(users, log),
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	})
	return &testApp{
		handler:  srv.Routes(),
		userRepo: userRepo,
		bookRepo: bookRepo,
		covers:   covers,
		sessions: sessions,
	}
}

func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	return rec
}

// signIn runs the real login flow and returns the session cookie.
func (app *testApp) signIn(t *testing.T, u user.User, password string) *http.Cookie {
	t.Helper()

	app.userRepo.EXPECT().GetByEmail(gomock.Any(), u.Email).Return(u, nil)
	app.userRepo.EXPECT().GetByID(gomock.Any(), u.ID).Return(u, nil).AnyTimes()

	rec := app.do(testutil.PostForm("/login", url.Values{
		"email":    {u.Email},
		"password": {password},
	}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	for _, c := range rec.Result().Cookies() {
		if c.Name == "bookshelf_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set on login")
	return nil
}

func testUser(t *testing.T, password string) user.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)
	return user.User{
		ID:           "user-1",
		Username:     "janedoe",
		Email:        "jane@example.com",
		PasswordHash: hash,
		FirstName:    "Jane",
	}
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHome_ListsRecentBooks(t *testing.T) {
	app := newTestApp(t)

	app.bookRepo.EXPECT().ListRecent(gomock.Any(), gomock.Any()).Return([]book.Book{
		{
			ID:       "b1",
			Username: "janedoe",
			Title:    "Pride and Prejudice",
			Author:   "Jane Austen",
			ISBN:     "0141439513",
			CoverURL: "https://covers.openlibrary.org/b/id/1-M.jpg",
		},
	}, nil)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Pride and Prejudice")
	assert.Contains(t, body, "https://www.amazon.com/dp/0141439513")
	assert.Contains(t, body, `/u/janedoe`)
}

func TestShelf_ListsOwnersBooks(t *testing.T) {
	app := newTestApp(t)

	app.userRepo.EXPECT().
		GetByUsername(gomock.Any(), "janedoe").
		Return(user.User{ID: "user-1", Username: "janedoe"}, nil)
	app.bookRepo.EXPECT().
		ListByUsername(gomock.Any(), "janedoe").
		Return([]book.Book{
			{
				ID:       "b1",
				Username: "janedoe",
				Title:    "The Dispossessed",
				Author:   "Ursula K. Le Guin",
				Rating:   5,
				CoverURL: "https://covers.openlibrary.org/b/id/7-M.jpg",
			},
		}, nil)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/u/janedoe", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "janedoe&#39;s shelf")
	assert.Contains(t, body, "The Dispossessed")
}

func TestShelf_UnknownUserIs404(t *testing.T) {
	app := newTestApp(t)

	app.userRepo.EXPECT().
		GetByUsername(gomock.Any(), "ghost").
		Return(user.User{}, user.ErrNotFound)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/u/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard_RedirectsAnonymousToLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLogin_InvalidPasswordIsRejected(t *testing.T) {
	app := newTestApp(t)
	u := testUser(t, "correct-password")

	app.userRepo.EXPECT().GetByEmail(gomock.Any(), u.Email).Return(u, nil)

	rec := app.do(testutil.PostForm("/login", url.Values{
		"email":    {u.Email},
		"password": {"wrong-password"},
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")
	assert.Equal(t, 0, app.sessions.Len())
}

func TestRegister_DuplicateEmailFlashesAndRedirects(t *testing.T) {
	app := newTestApp(t)

	app.userRepo.EXPECT().
		GetByEmail(gomock.Any(), "jane@example.com").
		Return(user.User{ID: "user-1"}, nil)

	rec := app.do(testutil.PostForm("/register", url.Values{
		"username":   {"janedoe"},
		"email":      {"jane@example.com"},
		"password":   {"longenough"},
		"first_name": {"Jane"},
	}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get("Location"))

	var flashed bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "bookshelf_flash" && c.Value != "" {
			flashed = true
		}
	}
	assert.True(t, flashed, "expected a flash cookie")
}

func TestRegister_InvalidFormRendersErrors(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(testutil.PostForm("/register", url.Values{
		"username":   {"x"},
		"email":      {"not-an-email"},
		"password":   {"short"},
		"first_name": {""},
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "A valid email address is required.")
	assert.Contains(t, body, "Password must be 8-72 characters.")
}

func TestBookAdd_NormalizesISBNAndRedirects(t *testing.T) {
	app := newTestApp(t)
	u := testUser(t, "correct-password")
	cookie := app.signIn(t, u, "correct-password")

	app.covers.EXPECT().
		Resolve(gomock.Any(), "0141439513", "Pride and Prejudice").
		Return("https://covers.openlibrary.org/b/id/1-M.jpg")
	app.bookRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *book.Book) error {
			assert.Equal(t, "user-1", b.UserID)
			assert.Equal(t, "0141439513", b.ISBN)
			assert.Equal(t, "https://covers.openlibrary.org/b/id/1-M.jpg", b.CoverURL)
			b.ID = "b1"
			return nil
		})

	req := testutil.PostForm("/books/add", url.Values{
		"title":     {"Pride and Prejudice"},
		"author":    {"Jane Austen"},
		"isbn":      {"978-0-14-143951-8"},
		"rating":    {"5"},
		"date_read": {"2026-08-01"},
	})
	req.AddCookie(cookie)

	rec := app.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestBookAdd_InvalidRatingRendersErrors(t *testing.T) {
	app := newTestApp(t)
	u := testUser(t, "correct-password")
	cookie := app.signIn(t, u, "correct-password")

	req := testutil.PostForm("/books/add", url.Values{
		"title":  {"Dune"},
		"author": {"Frank Herbert"},
		"rating": {"9"},
	})
	req.AddCookie(cookie)

	rec := app.do(req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rating must be between 1 and 5.")
}

func TestBookEdit_ForeignBookIs404(t *testing.T) {
	app := newTestApp(t)
	u := testUser(t, "correct-password")
	cookie := app.signIn(t, u, "correct-password")

	app.bookRepo.EXPECT().
		Get(gomock.Any(), "b-foreign", "user-1").
		Return(book.Book{}, book.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/books/b-foreign/edit", nil)
	req.AddCookie(cookie)

	rec := app.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookDelete_RemovesOwnBook(t *testing.T) {
	app := newTestApp(t)
	u := testUser(t, "correct-password")
	cookie := app.signIn(t, u, "correct-password")

	app.bookRepo.EXPECT().
		Delete(gomock.Any(), "b1", "user-1").
		Return(nil)

	req := testutil.PostForm("/books/b1/delete", url.Values{})
	req.AddCookie(cookie)

	rec := app.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLogout_DestroysSession(t *testing.T) {
	app := newTestApp(t)
	u := testUser(t, "correct-password")
	cookie := app.signIn(t, u, "correct-password")
	require.Equal(t, 1, app.sessions.Len())

	req := testutil.PostForm("/logout", url.Values{})
	req.AddCookie(cookie)

	rec := app.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 0, app.sessions.Len())
}

func TestTamperedSessionCookieIsAnonymous(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "bookshelf_session", Value: "forged-id.deadbeef"})

	rec := app.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
