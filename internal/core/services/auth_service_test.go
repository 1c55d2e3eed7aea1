package services_test

import (
	"context"
	"testing"

	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := services.NewAuthService("gestor", string(hash))

	t.Run("success", func(t *testing.T) {
		viewer, err := svc.Login(ctx, "gestor", "Password123")

		require.NoError(t, err)
		assert.Equal(t, "gestor", viewer.Username)
	})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "gestor", "WrongPassword1"},
		{"wrong username", "admin", "Password123"},
		{"empty username", "", "Password123"},
		{"empty password", "gestor", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viewer, err := svc.Login(ctx, tt.username, tt.password)

			assert.Nil(t, viewer)
			assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		})
	}

	t.Run("no viewer configured", func(t *testing.T) {
		svc := services.NewAuthService("", "")

		_, err := svc.Login(ctx, "gestor", "Password123")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}
