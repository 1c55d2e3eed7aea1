package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates the dashboard viewer account configured at startup.
type AuthService struct {
	username     string
	passwordHash []byte
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new authentication service from a username and a
// bcrypt hash of the viewer password.
func NewAuthService(username, passwordHash string) ports.AuthService {
	return &AuthService{
		username:     username,
		passwordHash: []byte(passwordHash),
	}
}

// Login authenticates the viewer with username and password
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Viewer, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	if s.username == "" || len(s.passwordHash) == 0 {
		return nil, apperrors.ErrInvalidCredentials
	}

	sameUser := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	// Always run the hash comparison so timing doesn't reveal the username
	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !sameUser {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &domain.Viewer{Username: s.username}, nil
}
