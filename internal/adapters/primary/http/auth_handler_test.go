package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticket-metrics/internal/auth"
	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/core/mocks"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestAuthHandler_HandleLogin(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)

	tests := []struct {
		name       string
		body       string
		setup      func(svc *mocks.MockAuthService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "valid credentials",
			body: `{"username":"gestao","password":"s3cret"}`,
			setup: func(svc *mocks.MockAuthService) {
				svc.On("Login", mock.Anything, "gestao", "s3cret").Return(&domain.Viewer{Username: "gestao"}, nil)
			},
			wantStatus: stdhttp.StatusOK,
		},
		{
			name: "wrong password",
			body: `{"username":"gestao","password":"nope"}`,
			setup: func(svc *mocks.MockAuthService) {
				svc.On("Login", mock.Anything, "gestao", "nope").Return(nil, apperrors.ErrInvalidCredentials)
			},
			wantStatus: stdhttp.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
		{
			name:       "missing password",
			body:       `{"username":"gestao"}`,
			setup:      func(svc *mocks.MockAuthService) {},
			wantStatus: stdhttp.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "password too long",
			body:       `{"username":"gestao","password":"` + strings.Repeat("a", 73) + `"}`,
			setup:      func(svc *mocks.MockAuthService) {},
			wantStatus: stdhttp.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed json",
			body:       `{"username":`,
			setup:      func(svc *mocks.MockAuthService) {},
			wantStatus: stdhttp.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockAuthService()
			tt.setup(svc)

			handler := NewAuthHandler(svc, tm, NewErrorHandler(testLogger()), testLogger())
			r := chi.NewRouter()
			r.Route("/api/v1/auth", handler.RegisterRoutes)

			req := httptest.NewRequest(stdhttp.MethodPost, "/api/v1/auth/token", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := serve(r, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			body := decodeBody(t, rr)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
			}
			svc.AssertExpectations(t)

			if tt.wantStatus != stdhttp.StatusOK {
				return
			}
			assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
			assert.Equal(t, "Bearer", body["tokenType"])

			claims, err := tm.ValidateToken(body["accessToken"].(string))
			require.NoError(t, err)
			assert.Equal(t, "gestao", claims.Username())
		})
	}
}
