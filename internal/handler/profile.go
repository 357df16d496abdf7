package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/service"
)

type ProfileEditor interface {
	Get(ctx context.Context, userID uint64) (*model.Profile, error)
	Update(ctx context.Context, userID uint64, u service.ProfileUpdate) (*model.Profile, error)
}

type ProfileHandler struct {
	Svc ProfileEditor
	Log *zap.Logger
}

func NewProfileHandler(svc ProfileEditor, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Log: log}
}

type profileReq struct {
	Image     *string `json:"image" validate:"omitempty,max=200"`
	Address   *string `json:"address" validate:"omitempty,max=100"`
	Location  *string `json:"location" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=100"`
	Telephone *string `json:"telephone" validate:"omitempty,max=20"`
	DNI       *string `json:"dni" validate:"omitempty,max=20"`
}

func (h *ProfileHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := h.Svc.Get(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.Svc.Update(c.Request().Context(), uid, service.ProfileUpdate{
		Image:     req.Image,
		Address:   req.Address,
		Location:  req.Location,
		Email:     req.Email,
		Telephone: req.Telephone,
		DNI:       req.DNI,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}
