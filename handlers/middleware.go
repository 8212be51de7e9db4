package handlers

import (
	"errors"
	"net/http"

	"booking-portal/internal/gateway"
	"booking-portal/internal/status"
	"booking-portal/services"

	"github.com/labstack/echo/v5"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

// SessionMiddleware resolves the session cookie on every request and
// stashes the session in the request context. Absent or dead sessions
// leave the context empty; the auth guards decide what that means.
func SessionMiddleware(sessions *services.SessionService, cookieName string, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			session, err := sessions.Load(c.Request().Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, status.ErrUnauthorized) && !errors.Is(err, status.ErrSessionExpired) {
					log.Warn("session load failed", zap.Error(err))
				}
				clearSessionCookie(c, cookieName)
				return next(c)
			}

			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

// RequireAuth sends unauthenticated users to the login view.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !currentSession(c).Authenticated() {
			return c.Redirect(http.StatusFound, "/login")
		}
		return next(c)
	}
}

// RequireAdmin rejects non-admin users outright.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session := currentSession(c)
		if !session.Authenticated() {
			return c.Redirect(http.StatusFound, "/login")
		}
		if !session.Admin() {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "admin access required",
			})
		}
		return next(c)
	}
}

func currentSession(c echo.Context) *services.Session {
	session, _ := c.Get(sessionContextKey).(*services.Session)
	return session
}

func setSessionCookie(c echo.Context, name, id string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context, name string) {
	setSessionCookie(c, name, "", -1)
}

// respond maps service errors to the portal's error taxonomy:
// validation gets a per-field 422, a missing workflow prerequisite is
// a redirect home, remote trouble is a 502 that leaves the view
// untouched.
func respondError(c echo.Context, err error) error {
	var validation services.ValidationErrors
	if errors.As(err, &validation) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": validation,
		})
	}

	switch {
	case errors.Is(err, status.ErrMissingStep), errors.Is(err, status.ErrNotPaying):
		return c.Redirect(http.StatusFound, "/")
	case errors.Is(err, status.ErrUnauthorized), errors.Is(err, status.ErrSessionExpired):
		return c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, status.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
	case errors.Is(err, status.ErrSoldOut):
		return c.JSON(http.StatusConflict, map[string]string{"error": "event is sold out"})
	case errors.Is(err, status.ErrEventCancelled):
		return c.JSON(http.StatusConflict, map[string]string{"error": "event has been cancelled"})
	case errors.Is(err, status.ErrSubmitInFlight):
		return c.JSON(http.StatusConflict, map[string]string{"error": "a submission is already in progress"})
	case errors.Is(err, status.ErrInvalidTicket):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket"})
	case gateway.IsNotFound(err):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}

	return c.JSON(http.StatusBadGateway, map[string]string{
		"error": "the booking platform is temporarily unavailable",
	})
}
