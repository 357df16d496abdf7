package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/service"
)

// PasswordResetter issues and redeems reset links.
type PasswordResetter interface {
	Request(ctx context.Context, email, origin string) error
	Confirm(ctx context.Context, uid, token, newPassword string) error
}

// PasswordResetHandler serves the two password reset endpoints.  Every
// response body is {"message": ...} on success or {"error": ...} otherwise.
type PasswordResetHandler struct {
	Svc PasswordResetter
	Log *zap.Logger
}

func NewPasswordResetHandler(svc PasswordResetter, log *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{Svc: svc, Log: log}
}

type resetRequestReq struct {
	Email string `json:"email" form:"email"`
}

type resetConfirmReq struct {
	NewPassword string `json:"new_password" form:"new_password"`
}

// Request handles POST /v1/auth/password-reset.
func (h *PasswordResetHandler) Request(c echo.Context) error {
	var req resetRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	origin := c.Scheme() + "://" + c.Request().Host
	err := h.Svc.Request(c.Request().Context(), req.Email, origin)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Se envió el correo de recuperación"})
	case errors.Is(err, service.ErrEmailRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email es requerido"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No existe un usuario con ese email"})
	}
	return writeError(c, h.Log, err)
}

// Confirm handles POST /v1/auth/password-reset-confirm/:uidb64/:token.
func (h *PasswordResetHandler) Confirm(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	err := h.Svc.Confirm(c.Request().Context(), c.Param("uidb64"), c.Param("token"), req.NewPassword)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Contraseña actualizada correctamente"})
	case errors.Is(err, service.ErrInvalidResetLink):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Token inválido"})
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Token inválido o expirado"})
	case errors.Is(err, service.ErrPasswordRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "La nueva contraseña es requerida"})
	}
	return writeError(c, h.Log, err)
}
