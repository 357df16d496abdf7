package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

// Reserver is the reservation engine as seen by the HTTP layer.
type Reserver interface {
	Create(ctx context.Context, in service.CreateReservationInput) (*model.Reservation, error)
	ListMine(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
	GetMine(ctx context.Context, id, userID uint64) (*repository.ReservationDetail, error)
	ListAll(ctx context.Context, f repository.ReservationFilter) ([]repository.ReservationDetail, int64, error)
}

type ReservationHandler struct {
	Svc Reserver
	Log *zap.Logger
}

func NewReservationHandler(svc Reserver, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{Svc: svc, Log: log}
}

// reservationReq keeps quantity raw: "3", 3 and "abc" must be told apart
// from a missing value.
type reservationReq struct {
	UserID          uint64          `json:"user_id"`
	DestinationID   uint64          `json:"destination_id"`
	PaymentMethodID uint64          `json:"payment_method_id"`
	Quantity        json.RawMessage `json:"quantity"`
}

// rawQuantity turns the JSON value into the string the engine parses.
func rawQuantity(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

type reservationView struct {
	ID              uint64       `json:"id"`
	Code            string       `json:"code"`
	UserID          uint64       `json:"user_id"`
	UserEmail       string       `json:"user_email,omitempty"`
	DestinationID   uint64       `json:"destination_id"`
	Destination     string       `json:"destination"`
	DepartsAt       time.Time    `json:"departs_at"`
	PaymentMethodID uint64       `json:"payment_method_id"`
	PaymentMethod   string       `json:"payment_method,omitempty"`
	Quantity        int64        `json:"quantity"`
	Price           model.Money  `json:"price"`
	Total           *model.Money `json:"total"`
	Remaining       int64        `json:"remaining"`
	CreatedAt       time.Time    `json:"created_at"`
}

func reservationOf(r *model.Reservation) reservationView {
	v := reservationView{
		ID:              r.ID,
		Code:            r.Code,
		UserID:          r.UserID,
		DestinationID:   r.DestinationID,
		PaymentMethodID: r.PaymentMethodID,
		Quantity:        r.Quantity,
		CreatedAt:       r.CreatedAt,
	}
	// A total that no longer fits after a price change is reported as null.
	if total, err := r.Total(); err == nil {
		v.Total = &total
	}
	if d := r.Destination; d != nil {
		v.Destination = d.Name
		v.DepartsAt = d.DepartsAt
		v.Price = d.Price
		v.Remaining = d.AvailableCount
	}
	return v
}

func detailOf(d *repository.ReservationDetail) reservationView {
	v := reservationOf(&d.Reservation)
	v.PaymentMethod = d.PaymentMethod
	v.UserEmail = d.UserEmail
	return v
}

func detailsOf(items []repository.ReservationDetail) []reservationView {
	out := make([]reservationView, 0, len(items))
	for i := range items {
		out = append(out, detailOf(&items[i]))
	}
	return out
}

// Create books slots for the authenticated user.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.create(c, uid, req)
}

// CreateForUser lets an admin book on behalf of user_id.
func (h *ReservationHandler) CreateForUser(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, model.NewValidationError("user_id", model.CodeRequired, "Debe seleccionar un usuario."))
	}
	return h.create(c, req.UserID, req)
}

func (h *ReservationHandler) create(c echo.Context, userID uint64, req reservationReq) error {
	res, err := h.Svc.Create(c.Request().Context(), service.CreateReservationInput{
		UserID:          userID,
		DestinationID:   req.DestinationID,
		PaymentMethodID: req.PaymentMethodID,
		Quantity:        rawQuantity(req.Quantity),
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, reservationOf(res))
}

func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": detailsOf(items)})
}

func (h *ReservationHandler) GetMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	d, err := h.Svc.GetMine(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, detailOf(d))
}

// ListAll handles GET /v1/admin/reservations with optional destination_id,
// payment_method_id and user_id filters.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	f := repository.ReservationFilter{
		DestinationID:   uintQuery(c, "destination_id"),
		PaymentMethodID: uintQuery(c, "payment_method_id"),
		UserID:          uintQuery(c, "user_id"),
	}
	f.Page, f.PageSize = pageParams(c)
	items, total, err := h.Svc.ListAll(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	c.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(http.StatusOK, echo.Map{
		"data":  detailsOf(items),
		"total": total,
	})
}
