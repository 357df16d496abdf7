package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
)

// CatalogManager is the write side of the catalog used by admins.
type CatalogManager interface {
	GetCategory(ctx context.Context, id uint64) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id uint64) error

	GetPaymentMethod(ctx context.Context, id uint64) (*model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, p *model.PaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, p *model.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id uint64) error

	GetDestination(ctx context.Context, id uint64) (*model.Destination, error)
	CreateDestination(ctx context.Context, d *model.Destination) error
	UpdateDestination(ctx context.Context, d *model.Destination) error
	UpdateDestinationDetails(ctx context.Context, d *model.Destination) error
	DeleteDestination(ctx context.Context, id uint64) error

	CreateTeamMember(ctx context.Context, m *model.TeamMember) error
	UpdateTeamMember(ctx context.Context, m *model.TeamMember) error
	DeleteTeamMember(ctx context.Context, id uint64) error
}

// AdminHandler exposes catalog management under /v1/admin.
type AdminHandler struct {
	Catalog CatalogManager
	Log     *zap.Logger
}

func NewAdminHandler(catalog CatalogManager, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Catalog: catalog, Log: log}
}

type nameReq struct {
	Name string `json:"name"`
}

// destinationReq is the body of create and update.  available_count may be
// omitted: create then applies the default stock and update keeps the
// stored one.
type destinationReq struct {
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	ImageURL        string       `json:"image_url"`
	Price           *model.Money `json:"price" validate:"required"`
	DepartsAt       time.Time    `json:"departs_at"`
	AvailableCount  *int64       `json:"available_count"`
	CategoryID      uint64       `json:"category_id"`
	PaymentMethodID uint64       `json:"payment_method_id"`
}

func (r destinationReq) toModel() *model.Destination {
	d := &model.Destination{
		Name:            r.Name,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		DepartsAt:       r.DepartsAt,
		AvailableCount:  model.DefaultAvailableCount,
		CategoryID:      r.CategoryID,
		PaymentMethodID: r.PaymentMethodID,
	}
	if r.Price != nil {
		d.Price = *r.Price
	}
	if r.AvailableCount != nil {
		d.AvailableCount = *r.AvailableCount
	}
	return d
}

type teamReq struct {
	FullName string `json:"full_name"`
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
	Image    string `json:"image"`
	Role     string `json:"role"`
}

func (r teamReq) toModel() *model.TeamMember {
	return &model.TeamMember{FullName: r.FullName, GitHub: r.GitHub, LinkedIn: r.LinkedIn, Image: r.Image, Role: r.Role}
}

// ----- categories -----

func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req nameReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	cat := &model.Category{Name: req.Name}
	if err := h.Catalog.CreateCategory(c.Request().Context(), cat); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *AdminHandler) GetCategory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.badID(c)
	}
	cat, err := h.Catalog.GetCategory(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *AdminHandler) UpdateCategory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.badID(c)
	}
	var req nameReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	cat := &model.Category{ID: id, Name: req.Name}
	if err := h.Catalog.UpdateCategory(c.Request().Context(), cat); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	return h.delete(c, h.Catalog.DeleteCategory)
}

// ----- payment methods -----

func (h *AdminHandler) CreatePaymentMethod(c echo.Context) error {
	var req nameReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	pm := &model.PaymentMethod{Name: req.Name}
	if err := h.Catalog.CreatePaymentMethod(c.Request().Context(), pm); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, pm)
}

func (h *AdminHandler) GetPaymentMethod(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.badID(c)
	}
	pm, err := h.Catalog.GetPaymentMethod(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, pm)
}

func (h *AdminHandler) UpdatePaymentMethod(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.badID(c)
	}
	var req nameReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	pm := &model.PaymentMethod{ID: id, Name: req.Name}
	if err := h.Catalog.UpdatePaymentMethod(c.Request().Context(), pm); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, pm)
}

func (h *AdminHandler) DeletePaymentMethod(c echo.Context) error {
	return h.delete(c, h.Catalog.DeletePaymentMethod)
}

// ----- destinations -----

func (h *AdminHandler) CreateDestination(c echo.Context) error {
	var req destinationReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	d := req.toModel()
	if err := h.Catalog.CreateDestination(c.Request().Context(), d); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, viewOf(*d))
}

func (h *AdminHandler) UpdateDestination(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.badID(c)
	}
	var req destinationReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	d := req.toModel()
	d.ID = id
	update := h.Catalog.UpdateDestination
	if req.AvailableCount == nil {
		// Omitted stock is left to the database row.
		update = h.Catalog.UpdateDestinationDetails
	}
	if err := update(c.Request().Context(), d); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, viewOf(*d))
}

func (h *AdminHandler) DeleteDestination(c echo.Context) error {
	return h.delete(c, h.Catalog.DeleteDestination)
}

// ----- team -----

func (h *AdminHandler) CreateTeamMember(c echo.Context) error {
	var req teamReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m := req.toModel()
	if err := h.Catalog.CreateTeamMember(c.Request().Context(), m); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *AdminHandler) UpdateTeamMember(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.badID(c)
	}
	var req teamReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m := req.toModel()
	m.ID = id
	if err := h.Catalog.UpdateTeamMember(c.Request().Context(), m); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *AdminHandler) DeleteTeamMember(c echo.Context) error {
	return h.delete(c, h.Catalog.DeleteTeamMember)
}

func (h *AdminHandler) delete(c echo.Context, del func(context.Context, uint64) error) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.badID(c)
	}
	if err := del(c.Request().Context(), id); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}
