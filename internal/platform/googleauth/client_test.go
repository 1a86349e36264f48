package googleauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_AuthCodeURL(t *testing.T) {
	c := NewClient("client-id", "client-secret", "http://localhost:8080/auth/google/callback")

	raw := c.AuthCodeURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost:8080/auth/google/callback", q.Get("redirect_uri"))
}

func TestClient_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		_, _ = w.Write([]byte(`{"access_token":"token-abc","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	c := NewClient("id", "secret", "http://localhost/cb")
	c.tokenURL = srv.URL

	tok, err := c.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "token-abc", tok)
}

func TestClient_Exchange_RejectedCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c := NewClient("id", "secret", "http://localhost/cb")
	c.tokenURL = srv.URL

	_, err := c.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestClient_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"sub":"g-123","email":"jane@example.com","given_name":"Jane","family_name":"Doe","picture":"https://example.com/p.jpg"}`))
	}))
	defer srv.Close()

	c := NewClient("id", "secret", "http://localhost/cb")
	c.userinfoURL = srv.URL

	p, err := c.FetchProfile(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, "g-123", p.Sub)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Equal(t, "Jane", p.GivenName)
}

func TestClient_FetchProfile_MissingSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("id", "secret", "http://localhost/cb")
	c.userinfoURL = srv.URL

	_, err := c.FetchProfile(context.Background(), "token-abc")
	assert.Error(t, err)
}
