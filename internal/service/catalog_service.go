package service

import (
	"context"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// CatalogService runs model validation before every catalog write.
type CatalogService struct {
	categories   *repository.CategoryRepo
	payments     *repository.PaymentMethodRepo
	destinations *repository.DestinationRepo
	team         *repository.TeamRepo
	now          func() time.Time
}

func NewCatalogService(
	categories *repository.CategoryRepo,
	payments *repository.PaymentMethodRepo,
	destinations *repository.DestinationRepo,
	team *repository.TeamRepo,
) *CatalogService {
	return &CatalogService{
		categories:   categories,
		payments:     payments,
		destinations: destinations,
		team:         team,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint64) (*model.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *model.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.categories.Create(ctx, c)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, c *model.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.categories.Update(ctx, c)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint64) error {
	return s.categories.Delete(ctx, id)
}

// Payment methods

func (s *CatalogService) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return s.payments.List(ctx)
}

func (s *CatalogService) GetPaymentMethod(ctx context.Context, id uint64) (*model.PaymentMethod, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *CatalogService) CreatePaymentMethod(ctx context.Context, p *model.PaymentMethod) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.payments.Create(ctx, p)
}

func (s *CatalogService) UpdatePaymentMethod(ctx context.Context, p *model.PaymentMethod) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.payments.Update(ctx, p)
}

func (s *CatalogService) DeletePaymentMethod(ctx context.Context, id uint64) error {
	return s.payments.Delete(ctx, id)
}

// Destinations

// SearchDestinations clamps pagination and forwards the query.
func (s *CatalogService) SearchDestinations(ctx context.Context, q repository.DestinationSearchQuery) ([]model.Destination, int64, error) {
	q.Page, q.PageSize = NormalizePage(q.Page, q.PageSize)
	return s.destinations.Search(ctx, q)
}

func (s *CatalogService) GetDestination(ctx context.Context, id uint64) (*model.Destination, error) {
	return s.destinations.GetByID(ctx, id)
}

// CreateDestination rejects departures in the past.
func (s *CatalogService) CreateDestination(ctx context.Context, d *model.Destination) error {
	if err := d.Validate(s.now(), true); err != nil {
		return err
	}
	return s.destinations.Create(ctx, d)
}

// UpdateDestination keeps the departure rule of creation out: a trip whose
// date has passed can still be edited.
func (s *CatalogService) UpdateDestination(ctx context.Context, d *model.Destination) error {
	if err := d.Validate(s.now(), false); err != nil {
		return err
	}
	return s.destinations.Update(ctx, d)
}

// UpdateDestinationDetails edits a destination without touching its stock.
func (s *CatalogService) UpdateDestinationDetails(ctx context.Context, d *model.Destination) error {
	if err := d.Validate(s.now(), false); err != nil {
		return err
	}
	return s.destinations.UpdateDetails(ctx, d)
}

func (s *CatalogService) DeleteDestination(ctx context.Context, id uint64) error {
	return s.destinations.Delete(ctx, id)
}

// Team

func (s *CatalogService) ListTeam(ctx context.Context) ([]model.TeamMember, error) {
	return s.team.List(ctx)
}

func (s *CatalogService) CreateTeamMember(ctx context.Context, m *model.TeamMember) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.team.Create(ctx, m)
}

func (s *CatalogService) UpdateTeamMember(ctx context.Context, m *model.TeamMember) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.team.Update(ctx, m)
}

func (s *CatalogService) DeleteTeamMember(ctx context.Context, id uint64) error {
	return s.team.Delete(ctx, id)
}
