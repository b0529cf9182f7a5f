package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberlane-studio/amberlane-backend-go/middleware"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/utils"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(okHandler)(c))
	return rec
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec := invoke(t, middleware.AuthMiddleware(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	rec := invoke(t, middleware.AuthMiddleware(), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	rec := invoke(t, middleware.AuthMiddleware(), "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := utils.GenerateSessionToken("507f1f77bcf86cd799439011", models.RoleCustomer)
	require.NoError(t, err)

	rec := invoke(t, middleware.AuthMiddleware(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_NoRole(t *testing.T) {
	rec := invoke(t, middleware.RequireAdmin(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_CustomerForbidden(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", models.RoleCustomer)

	require.NoError(t, middleware.RequireAdmin()(okHandler)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_AdminAndOwnerPass(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleOwner} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("role", role)

		require.NoError(t, middleware.RequireAdmin()(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code, string(role))
	}
}
