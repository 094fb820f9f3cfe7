package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/collab-api/internal/api/shared"
	"github.com/phrazzld/collab-api/internal/config"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/service"
	"github.com/phrazzld/collab-api/internal/service/auth"
)

func newTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	return jwtService
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestAuthHandlerRegister(t *testing.T) {
	userID := uuid.New()
	jwtService := newTestJWTService(t)

	tests := []struct {
		name                string
		requestBody         string
		registerFn          func(ctx context.Context, email, displayName, password string) (*domain.User, error)
		expectedStatusCode  int
		expectedErrContains string
	}{
		{
			name:        "success",
			requestBody: `{"email":"ana@example.com","display_name":"Ana","password":"correct-horse-battery"}`,
			registerFn: func(ctx context.Context, email, displayName, password string) (*domain.User, error) {
				assert.Equal(t, "ana@example.com", email)
				assert.Equal(t, "Ana", displayName)
				return &domain.User{ID: userID, Email: email, DisplayName: displayName}, nil
			},
			expectedStatusCode: http.StatusCreated,
		},
		{
			name:        "duplicate email",
			requestBody: `{"email":"ana@example.com","display_name":"Ana","password":"correct-horse-battery"}`,
			registerFn: func(ctx context.Context, email, displayName, password string) (*domain.User, error) {
				return nil, service.ErrEmailExists
			},
			expectedStatusCode:  http.StatusConflict,
			expectedErrContains: "Email already exists",
		},
		{
			name:                "password too short",
			requestBody:         `{"email":"ana@example.com","display_name":"Ana","password":"short"}`,
			expectedStatusCode:  http.StatusBadRequest,
			expectedErrContains: "Password",
		},
		{
			name:                "invalid email",
			requestBody:         `{"email":"not-an-email","display_name":"Ana","password":"correct-horse-battery"}`,
			expectedStatusCode:  http.StatusBadRequest,
			expectedErrContains: "Email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(
				&stubUserService{registerFn: tt.registerFn}, jwtService, discardLogger())

			rr := postJSON(t, handler.Register, "/auth/register", tt.requestBody)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)

			if tt.expectedStatusCode == http.StatusCreated {
				var resp AuthResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, userID, resp.UserID)
				assert.NotEmpty(t, resp.AccessToken)
				assert.NotEmpty(t, resp.RefreshToken)

				claims, err := jwtService.ValidateToken(context.Background(), resp.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, userID, claims.UserID)
			} else if tt.expectedErrContains != "" {
				var errResp shared.ErrorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
				assert.Contains(t, errResp.Error, tt.expectedErrContains)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	userID := uuid.New()
	jwtService := newTestJWTService(t)

	t.Run("success issues token pair", func(t *testing.T) {
		handler := NewAuthHandler(&stubUserService{
			authenticateFn: func(ctx context.Context, email, password string) (*domain.User, error) {
				assert.Equal(t, "ana@example.com", email)
				return &domain.User{ID: userID, Email: email}, nil
			},
		}, jwtService, discardLogger())

		rr := postJSON(t, handler.Login, "/auth/login",
			`{"email":"ana@example.com","password":"correct-horse-battery"}`)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, userID, resp.UserID)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		handler := NewAuthHandler(&stubUserService{
			authenticateFn: func(ctx context.Context, email, password string) (*domain.User, error) {
				return nil, service.ErrInvalidCredentials
			},
		}, jwtService, discardLogger())

		rr := postJSON(t, handler.Login, "/auth/login",
			`{"email":"ana@example.com","password":"wrong-password-entirely"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var errResp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
		assert.Equal(t, "Invalid credentials", errResp.Error)
	})
}

func TestAuthHandlerRefreshToken(t *testing.T) {
	userID := uuid.New()
	jwtService := newTestJWTService(t)
	handler := NewAuthHandler(&stubUserService{}, jwtService, discardLogger())

	t.Run("valid refresh token yields new pair", func(t *testing.T) {
		refreshToken, err := jwtService.GenerateRefreshToken(context.Background(), userID)
		require.NoError(t, err)

		rr := postJSON(t, handler.RefreshToken, "/auth/refresh",
			`{"refresh_token":"`+refreshToken+`"}`)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp RefreshTokenResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)

		claims, err := jwtService.ValidateToken(context.Background(), resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})

	t.Run("access token is rejected as refresh token", func(t *testing.T) {
		accessToken, err := jwtService.GenerateToken(context.Background(), userID)
		require.NoError(t, err)

		rr := postJSON(t, handler.RefreshToken, "/auth/refresh",
			`{"refresh_token":"`+accessToken+`"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := postJSON(t, handler.RefreshToken, "/auth/refresh",
			`{"refresh_token":"not.a.jwt"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
