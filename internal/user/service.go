package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookshelf/internal/platform/crypto"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// usernameProbeLimit bounds the suffix search for federated signups before
// giving up with an error.
const usernameProbeLimit = 50

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a local-credentials account. A duplicate email or
// username yields ErrConflict; the pre-checks keep the common case friendly
// and the repository maps the unique violation for the race.
func (s *Service) Register(ctx context.Context, p RegisterParams) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, p.Email); err == nil {
		return User{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	if _, err := s.repo.GetByUsername(ctx, p.Username); err == nil {
		return User{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := crypto.HashPassword(p.Password)
	if err != nil {
		return User{}, err
	}

	u := &User{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// FederatedSignIn resolves a federated profile to a local account: by
// provider id first, then by email (linking the id on the way), provisioning
// a fresh account when neither matches.
func (s *Service) FederatedSignIn(ctx context.Context, p FederatedProfile) (User, error) {
	u, err := s.repo.GetByGoogleID(ctx, p.ProviderID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	u, err = s.repo.GetByEmail(ctx, p.Email)
	if err == nil {
		if err := s.repo.LinkGoogleID(ctx, u.ID, p.ProviderID, p.Picture); err != nil {
			return User{}, err
		}
		u.GoogleID = p.ProviderID
		if u.ProfilePicture == "" {
			u.ProfilePicture = p.Picture
		}
		s.log.Info("linked federated identity", zap.String("user_id", u.ID))
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	return s.provision(ctx, p)
}

func (s *Service) provision(ctx context.Context, p FederatedProfile) (User, error) {
	firstName := strings.TrimSpace(p.FirstName)
	if firstName == "" {
		firstName = "Reader"
	}

	username, err := s.uniqueUsername(ctx, p)
	if err != nil {
		return User{}, err
	}

	u := &User{
		Username:       username,
		Email:          p.Email,
		GoogleID:       p.ProviderID,
		FirstName:      firstName,
		LastName:       strings.TrimSpace(p.LastName),
		ProfilePicture: p.Picture,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	s.log.Info("provisioned federated user", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return *u, nil
}

// uniqueUsername derives a slug from the profile name (falling back to the
// email local part) and probes numeric suffixes until a free one is found.
func (s *Service) uniqueUsername(ctx context.Context, p FederatedProfile) (string, error) {
	base := slug.Make(strings.TrimSpace(p.FirstName + " " + p.LastName))
	if base == "" {
		local, _, _ := strings.Cut(p.Email, "@")
		base = slug.Make(local)
	}
	if base == "" {
		base = "reader"
	}

	candidate := base
	for i := 2; i <= usernameProbeLimit; i++ {
		_, err := s.repo.GetByUsername(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free username derived from %q", base)
}
