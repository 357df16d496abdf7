package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// CatalogBrowser is the read side of the catalog.
type CatalogBrowser interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	SearchDestinations(ctx context.Context, q repository.DestinationSearchQuery) ([]model.Destination, int64, error)
	GetDestination(ctx context.Context, id uint64) (*model.Destination, error)
	ListTeam(ctx context.Context) ([]model.TeamMember, error)
}

// PublicHandler serves unauthenticated catalog endpoints.
type PublicHandler struct {
	Catalog CatalogBrowser
	Log     *zap.Logger
	Now     func() time.Time
}

func NewPublicHandler(catalog CatalogBrowser, log *zap.Logger) *PublicHandler {
	return &PublicHandler{Catalog: catalog, Log: log, Now: time.Now}
}

// destinationView adds the availability text shown next to a trip.
type destinationView struct {
	model.Destination
	Availability string `json:"availability"`
}

func viewOf(d model.Destination) destinationView {
	return destinationView{Destination: d, Availability: d.AvailabilityMessage()}
}

func (h *PublicHandler) ListCategories(c echo.Context) error {
	items, err := h.Catalog.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *PublicHandler) ListPaymentMethods(c echo.Context) error {
	items, err := h.Catalog.ListPaymentMethods(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// SearchDestinations handles GET /v1/destinations.
//
// Query parameters: q (text on name and description), category_id,
// from / to (RFC 3339 or YYYY-MM-DD), available_only (bool), time
// ("upcoming" default keeps departures from now on, "any" disables it),
// page, page_size.
func (h *PublicHandler) SearchDestinations(c echo.Context) error {
	q := repository.DestinationSearchQuery{
		Text:       strings.TrimSpace(c.QueryParam("q")),
		CategoryID: uintQuery(c, "category_id"),
	}
	q.Page, q.PageSize = pageParams(c)
	q.OnlyAvailable, _ = strconv.ParseBool(c.QueryParam("available_only"))

	var ok bool
	if q.From, ok = timeQuery(c, "from", false); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
	}
	if q.To, ok = timeQuery(c, "to", true); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
	}
	if q.From == nil && !strings.EqualFold(c.QueryParam("time"), "any") {
		now := h.Now().UTC()
		q.From = &now
	}

	items, total, err := h.Catalog.SearchDestinations(c.Request().Context(), q)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	data := make([]destinationView, 0, len(items))
	for _, d := range items {
		data = append(data, viewOf(d))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      data,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

func (h *PublicHandler) GetDestination(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid destination id"})
	}
	d, err := h.Catalog.GetDestination(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, viewOf(*d))
}

// About lists the team members.
func (h *PublicHandler) About(c echo.Context) error {
	items, err := h.Catalog.ListTeam(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// timeQuery parses an optional timestamp.  A bare date used as an upper
// bound covers the whole day.
func timeQuery(c echo.Context, name string, endOfDay bool) (*time.Time, bool) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, true
}
