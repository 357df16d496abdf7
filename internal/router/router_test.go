package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/utils"
)

const secret = "router-secret"

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	log := zap.NewNop()
	Register(e, Handlers{
		Auth:         handler.NewAuthHandler(configForTest(), nil, nil, nil, log),
		Reset:        handler.NewPasswordResetHandler(nil, log),
		Public:       handler.NewPublicHandler(nil, log),
		Admin:        handler.NewAdminHandler(nil, log),
		Reservations: handler.NewReservationHandler(nil, log),
		Profiles:     handler.NewProfileHandler(nil, log),
	}, Middlewares{}, secret)
	return e
}

func do(e *echo.Echo, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func token(t *testing.T, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, 1, role, 5)
	require.NoError(t, err)
	return at.Token
}

func TestHealth(t *testing.T) {
	assert.Equal(t, http.StatusOK, do(newEcho(), http.MethodGet, "/healthz", ""))
}

func TestProtectedRoutes(t *testing.T) {
	e := newEcho()
	customer := token(t, model.RoleCustomer)

	tests := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodPost, "/v1/reservations", "", http.StatusUnauthorized},
		{http.MethodGet, "/v1/my-reservations", "", http.StatusUnauthorized},
		{http.MethodGet, "/v1/me/profile", "", http.StatusUnauthorized},
		{http.MethodGet, "/v1/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/v1/admin/reservations", "", http.StatusUnauthorized},
		{http.MethodPost, "/v1/admin/categories", customer, http.StatusForbidden},
		{http.MethodDelete, "/v1/admin/destinations/1", customer, http.StatusForbidden},
		{http.MethodGet, "/v1/reservations/1", token(t, "GUEST"), http.StatusForbidden},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, do(e, tt.method, tt.path, tt.token), "%s %s", tt.method, tt.path)
	}
}

func TestWithDropsNil(t *testing.T) {
	noop := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	assert.Len(t, with(nil, noop, nil), 1)
	assert.Empty(t, with(nil))
}

func configForTest() config.Config {
	return config.Config{JWTSecret: secret, AccessTTLMin: 5, RefreshTTLDays: 1}
}
