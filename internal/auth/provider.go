// Package auth turns login attempts into authenticated users.
package auth

import (
	"context"
	"errors"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/platform/googleauth"
	"bookshelf/internal/user"

	"go.uber.org/zap"
)

// ErrInvalidCredentials is the single failure surfaced for any bad login
// attempt. Callers never learn whether the account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is a real bcrypt digest compared against when the account does
// not exist or has no local password, so both paths cost one bcrypt check.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Credentials carries one login attempt. Local logins fill Email/Password;
// the federated callback fills Code.
type Credentials struct {
	Email    string
	Password string
	Code     string
}

// Provider authenticates one kind of credential.
type Provider interface {
	Authenticate(ctx context.Context, creds Credentials) (user.User, error)
}

// EmailDirectory is the slice of the user service local login needs.
type EmailDirectory interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type LocalProvider struct {
	users EmailDirectory
	log   *zap.Logger
}

func NewLocalProvider(users EmailDirectory, log *zap.Logger) *LocalProvider {
	return &LocalProvider{users: users, log: log}
}

func (p *LocalProvider) Authenticate(ctx context.Context, creds Credentials) (user.User, error) {
	u, err := p.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			crypto.VerifyPassword(dummyHash, creds.Password)
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}

	hash := u.PasswordHash
	if hash == "" {
		// Federated-only account; burn the comparison anyway.
		hash = dummyHash
	}
	if !crypto.VerifyPassword(hash, creds.Password) || u.PasswordHash == "" {
		return user.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// OAuthExchanger is the slice of the Google client the federated provider
// needs; tests substitute it.
type OAuthExchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (googleauth.Profile, error)
}

// FederatedDirectory resolves an asserted external identity to an account.
type FederatedDirectory interface {
	FederatedSignIn(ctx context.Context, p user.FederatedProfile) (user.User, error)
}

type GoogleProvider struct {
	oauth OAuthExchanger
	users FederatedDirectory
	log   *zap.Logger
}

func NewGoogleProvider(oauth OAuthExchanger, users FederatedDirectory, log *zap.Logger) *GoogleProvider {
	return &GoogleProvider{oauth: oauth, users: users, log: log}
}

func (p *GoogleProvider) Authenticate(ctx context.Context, creds Credentials) (user.User, error) {
	token, err := p.oauth.Exchange(ctx, creds.Code)
	if err != nil {
		p.log.Warn("oauth code exchange failed", zap.Error(err))
		return user.User{}, ErrInvalidCredentials
	}

	profile, err := p.oauth.FetchProfile(ctx, token)
	if err != nil {
		p.log.Warn("oauth profile fetch failed", zap.Error(err))
		return user.User{}, ErrInvalidCredentials
	}

	return p.users.FederatedSignIn(ctx, user.FederatedProfile{
		ProviderID: profile.Sub,
		Email:      profile.Email,
		FirstName:  profile.GivenName,
		LastName:   profile.FamilyName,
		Picture:    profile.Picture,
	})
}
