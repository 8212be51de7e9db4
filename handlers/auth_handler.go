package handlers

import (
	"net/http"
	"time"

	"booking-portal/services"

	"github.com/labstack/echo/v5"
)

type AuthHandler struct {
	sessions   *services.SessionService
	cookieName string
	sessionTTL time.Duration
}

func NewAuthHandler(sessions *services.SessionService, cookieName string, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		sessions:   sessions,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
	}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	}

	setSessionCookie(c, h.cookieName, session.ID, int(h.sessionTTL.Seconds()))
	return c.JSON(http.StatusOK, map[string]any{"user": session.User})
}

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session, err := h.sessions.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	setSessionCookie(c, h.cookieName, session.ID, int(h.sessionTTL.Seconds()))
	return c.JSON(http.StatusCreated, map[string]any{"user": session.User})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if session := currentSession(c); session.Authenticated() {
		_ = h.sessions.Logout(c.Request().Context(), session)
	}
	clearSessionCookie(c, h.cookieName)
	return c.Redirect(http.StatusFound, "/")
}

// Me returns the signed-in user, for views that render the header.
func (h *AuthHandler) Me(c echo.Context) error {
	session := currentSession(c)
	if !session.Authenticated() {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not signed in"})
	}
	return c.JSON(http.StatusOK, map[string]any{"user": session.User})
}
