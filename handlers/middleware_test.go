package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-portal/models"
	"booking-portal/services"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireAuthRedirectsAnonymousToLogin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, RequireAuth(okHandler)(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuthPassesAuthenticatedUser(t *testing.T) {
	c, rec := userContext(http.MethodGet, "/profile")

	require.NoError(t, RequireAuth(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsRegularUser(t *testing.T) {
	c, rec := userContext(http.MethodGet, "/admin/dashboard")

	require.NoError(t, RequireAdmin(okHandler)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminPassesAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionContextKey, &services.Session{
		ID:    "sess-admin",
		Token: "token",
		User:  models.User{ID: "a1", Role: models.RoleAdmin},
	})

	require.NoError(t, RequireAdmin(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
