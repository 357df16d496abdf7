package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

// fakeCatalog implements both CatalogBrowser and CatalogManager.
type fakeCatalog struct {
	query       repository.DestinationSearchQuery
	dests       []model.Destination
	created     *model.Destination
	updated     *model.Destination
	detailsOnly bool // stock column left alone
	// beforeWrite runs just before the row write, standing in for a booking
	// committed by another request.
	beforeWrite func()
	deleted     uint64
	err         error
}

func (f *fakeCatalog) ListCategories(context.Context) ([]model.Category, error) {
	return []model.Category{{ID: 1, Name: "Playa"}}, f.err
}

func (f *fakeCatalog) ListPaymentMethods(context.Context) ([]model.PaymentMethod, error) {
	return []model.PaymentMethod{{ID: 1, Name: "Efectivo"}}, f.err
}

func (f *fakeCatalog) SearchDestinations(_ context.Context, q repository.DestinationSearchQuery) ([]model.Destination, int64, error) {
	f.query = q
	return f.dests, int64(len(f.dests)), f.err
}

func (f *fakeCatalog) GetDestination(_ context.Context, id uint64) (*model.Destination, error) {
	for i := range f.dests {
		if f.dests[i].ID == id {
			return &f.dests[i], nil
		}
	}
	return nil, repository.ErrDestinationNotFound
}

func (f *fakeCatalog) ListTeam(context.Context) ([]model.TeamMember, error) { return nil, f.err }

func (f *fakeCatalog) GetCategory(context.Context, uint64) (*model.Category, error) {
	return nil, repository.ErrCategoryNotFound
}
func (f *fakeCatalog) CreateCategory(_ context.Context, c *model.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = 10
	return nil
}
func (f *fakeCatalog) UpdateCategory(context.Context, *model.Category) error { return f.err }
func (f *fakeCatalog) DeleteCategory(_ context.Context, id uint64) error {
	f.deleted = id
	return f.err
}

func (f *fakeCatalog) GetPaymentMethod(context.Context, uint64) (*model.PaymentMethod, error) {
	return nil, repository.ErrPaymentMethodNotFound
}
func (f *fakeCatalog) CreatePaymentMethod(context.Context, *model.PaymentMethod) error { return f.err }
func (f *fakeCatalog) UpdatePaymentMethod(context.Context, *model.PaymentMethod) error { return f.err }
func (f *fakeCatalog) DeletePaymentMethod(context.Context, uint64) error                { return f.err }

func (f *fakeCatalog) CreateDestination(_ context.Context, d *model.Destination) error {
	f.created = d
	d.ID = 99
	return f.err
}
func (f *fakeCatalog) UpdateDestination(_ context.Context, d *model.Destination) error {
	f.updated = d
	return f.err
}
func (f *fakeCatalog) UpdateDestinationDetails(_ context.Context, d *model.Destination) error {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
	f.updated, f.detailsOnly = d, true
	if f.err != nil {
		return f.err
	}
	for i := range f.dests {
		if f.dests[i].ID == d.ID {
			d.AvailableCount = f.dests[i].AvailableCount
			f.dests[i] = *d
			return nil
		}
	}
	return repository.ErrDestinationNotFound
}
func (f *fakeCatalog) DeleteDestination(context.Context, uint64) error { return f.err }

func (f *fakeCatalog) CreateTeamMember(context.Context, *model.TeamMember) error { return f.err }
func (f *fakeCatalog) UpdateTeamMember(context.Context, *model.TeamMember) error { return f.err }
func (f *fakeCatalog) DeleteTeamMember(context.Context, uint64) error            { return f.err }

func TestSearchDestinations_query(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := &fakeCatalog{dests: []model.Destination{{ID: 1, Name: "Mendoza", AvailableCount: 3}}}
	h := NewPublicHandler(fake, zap.NewNop())
	h.Now = func() time.Time { return now }

	c, rec := newCtx(t, http.MethodGet, "/v1/destinations?q=+mendoza+&category_id=2&available_only=true&page=1&page_size=5", "")
	require.NoError(t, h.SearchDestinations(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mendoza", fake.query.Text)
	assert.EqualValues(t, 2, fake.query.CategoryID)
	assert.True(t, fake.query.OnlyAvailable)
	require.NotNil(t, fake.query.From)
	assert.Equal(t, now, *fake.query.From)
	assert.Nil(t, fake.query.To)

	var body struct {
		Data []struct {
			Name         string `json:"name"`
			Availability string `json:"availability"`
		} `json:"data"`
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Últimos 3 cupos!", body.Data[0].Availability)
	assert.EqualValues(t, 1, body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 5, body.PageSize)
}

func TestSearchDestinations_reportsClampedPage(t *testing.T) {
	tests := []struct {
		query    string
		page     int
		pageSize int
	}{
		{query: "", page: 1, pageSize: service.DefaultPageSize},
		{query: "?page=0&page_size=500", page: 1, pageSize: service.MaxPageSize},
		{query: "?page=3&page_size=-4", page: 3, pageSize: service.DefaultPageSize},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			fake := &fakeCatalog{}
			h := NewPublicHandler(fake, zap.NewNop())

			c, rec := newCtx(t, http.MethodGet, "/v1/destinations"+tc.query, "")
			require.NoError(t, h.SearchDestinations(c))
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Page     int `json:"page"`
				PageSize int `json:"page_size"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.page, body.Page)
			assert.Equal(t, tc.pageSize, body.PageSize)
			assert.Equal(t, tc.pageSize, fake.query.PageSize)
		})
	}
}

func TestSearchDestinations_dateWindow(t *testing.T) {
	fake := &fakeCatalog{}
	h := NewPublicHandler(fake, zap.NewNop())

	c, rec := newCtx(t, http.MethodGet, "/v1/destinations?from=2026-01-01&to=2026-01-31", "")
	require.NoError(t, h.SearchDestinations(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *fake.query.From)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), *fake.query.To)

	c, _ = newCtx(t, http.MethodGet, "/v1/destinations?time=any", "")
	require.NoError(t, h.SearchDestinations(c))
	assert.Nil(t, fake.query.From)

	c, rec = newCtx(t, http.MethodGet, "/v1/destinations?from=yesterday", "")
	require.NoError(t, h.SearchDestinations(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDestination(t *testing.T) {
	fake := &fakeCatalog{dests: []model.Destination{{ID: 4, Name: "Ushuaia", AvailableCount: 0}}}
	h := NewPublicHandler(fake, zap.NewNop())

	c, rec := newCtx(t, http.MethodGet, "/v1/destinations/4", "", "id", "4")
	require.NoError(t, h.GetDestination(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"availability":"No hay cupos disponibles"`)

	c, rec = newCtx(t, http.MethodGet, "/v1/destinations/5", "", "id", "5")
	require.NoError(t, h.GetDestination(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"destination not found"}`, rec.Body.String())
}

func TestAdminCreateDestination(t *testing.T) {
	fake := &fakeCatalog{}
	h := NewAdminHandler(fake, zap.NewNop())

	body := `{"name":"Iguazú","description":"Cataratas","price":"150.50","departs_at":"2027-01-10T10:00:00Z","category_id":1,"payment_method_id":1}`
	c, rec := newCtx(t, http.MethodPost, "/v1/admin/destinations", body)
	require.NoError(t, h.CreateDestination(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, fake.created)
	assert.Equal(t, model.Money(15050), fake.created.Price)
	assert.EqualValues(t, model.DefaultAvailableCount, fake.created.AvailableCount)
	assert.Contains(t, rec.Body.String(), `"id":99`)
}

func TestAdminCreateDestination_missingPrice(t *testing.T) {
	fake := &fakeCatalog{}
	h := NewAdminHandler(fake, zap.NewNop())

	c, rec := newCtx(t, http.MethodPost, "/v1/admin/destinations", `{"name":"x"}`)
	require.NoError(t, h.CreateDestination(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"price":"Este campo es requerido."}}`, rec.Body.String())
	assert.Nil(t, fake.created)
}

func TestAdminUpdateDestination_keepsStock(t *testing.T) {
	fake := &fakeCatalog{dests: []model.Destination{{ID: 4, Name: "Ushuaia", AvailableCount: 12}}}
	fake.beforeWrite = func() { fake.dests[0].AvailableCount -= 5 }
	h := NewAdminHandler(fake, zap.NewNop())

	c, rec := newCtx(t, http.MethodPut, "/v1/admin/destinations/4", `{"name":"Ushuaia Austral","price":10}`, "id", "4")
	require.NoError(t, h.UpdateDestination(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.updated)
	assert.True(t, fake.detailsOnly)
	assert.EqualValues(t, 4, fake.updated.ID)
	assert.Equal(t, model.Money(1000), fake.updated.Price)
	assert.EqualValues(t, 7, fake.dests[0].AvailableCount)
	assert.Equal(t, "Ushuaia Austral", fake.dests[0].Name)
	assert.Contains(t, rec.Body.String(), `"available_count":7`)
}

func TestAdminUpdateDestination_setsStock(t *testing.T) {
	fake := &fakeCatalog{dests: []model.Destination{{ID: 4, AvailableCount: 12}}}
	h := NewAdminHandler(fake, zap.NewNop())

	c, rec := newCtx(t, http.MethodPut, "/v1/admin/destinations/4", `{"name":"Ushuaia","price":10,"available_count":30}`, "id", "4")
	require.NoError(t, h.UpdateDestination(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.updated)
	assert.False(t, fake.detailsOnly)
	assert.EqualValues(t, 30, fake.updated.AvailableCount)
}

func TestAdminCategory(t *testing.T) {
	fake := &fakeCatalog{}
	h := NewAdminHandler(fake, zap.NewNop())

	c, rec := newCtx(t, http.MethodPost, "/v1/admin/categories", `{"name":"  "}`)
	require.NoError(t, h.CreateCategory(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fields":{"name":`)

	c, rec = newCtx(t, http.MethodPost, "/v1/admin/categories", `{"name":"Montaña"}`)
	require.NoError(t, h.CreateCategory(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":10,"name":"Montaña"}`, rec.Body.String())

	c, rec = newCtx(t, http.MethodDelete, "/v1/admin/categories/3", "", "id", "3")
	require.NoError(t, h.DeleteCategory(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.EqualValues(t, 3, fake.deleted)

	fake.err = repository.ErrConflict
	c, rec = newCtx(t, http.MethodDelete, "/v1/admin/categories/3", "", "id", "3")
	require.NoError(t, h.DeleteCategory(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
