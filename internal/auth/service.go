package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/internal/users"
	pkgauth "github.com/rgastelum/supplyline-backend/pkg/auth"
	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
	"github.com/rgastelum/supplyline-backend/pkg/security"
)

// Service authenticates users and mints bearer tokens.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// LoginResult is returned on a successful credential check.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type service struct {
	users  users.Repository
	hasher *security.PasswordHasher
	issuer *pkgauth.TokenIssuer
	now    func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(repo users.Repository, hasher *security.PasswordHasher, issuer *pkgauth.TokenIssuer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if issuer == nil {
		return nil, fmt.Errorf("token issuer required")
	}
	return &service{
		users:  repo,
		hasher: hasher,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, expiresAt, err := s.issuer.Mint(user, s.now())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
