// Package service holds the business flows that span several repositories:
// the reservation engine, validated catalog management, profiles and the
// password reset gateway.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// EventPublisher receives reservation events after commit.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

// CreateReservationInput is the data a client submits to book a trip.
// Quantity is kept raw so that a missing value and a non-numeric value can
// be reported with different codes.
type CreateReservationInput struct {
	UserID          uint64
	DestinationID   uint64
	PaymentMethodID uint64
	Quantity        string
}

// ReservationService creates reservations and decrements destination stock
// in a single transaction.
type ReservationService struct {
	db           *sql.DB
	destinations *repository.DestinationRepo
	payments     *repository.PaymentMethodRepo
	reservations *repository.ReservationRepo
	events       EventPublisher
	log          *zap.Logger
	newCode      func() string
}

// NewReservationService wires the engine.  events may be nil.
func NewReservationService(
	db *sql.DB,
	destinations *repository.DestinationRepo,
	payments *repository.PaymentMethodRepo,
	reservations *repository.ReservationRepo,
	events EventPublisher,
	log *zap.Logger,
) *ReservationService {
	return &ReservationService{
		db:           db,
		destinations: destinations,
		payments:     payments,
		reservations: reservations,
		events:       events,
		log:          log,
		newCode:      uuid.NewString,
	}
}

// Create validates the request and, when it passes, books the slots.  The
// checks run in a fixed order and the first failure is returned as a
// *model.ValidationError:
//
//  1. quantity present and integral
//  2. destination present and existing
//  3. destination has slots left
//  4. quantity positive
//  5. quantity not above the remaining slots
//  6. payment method present and existing
//
// Stock checks run against the row locked with SELECT ... FOR UPDATE and the
// decrement is guarded, so concurrent bookings can never oversell.  The
// returned reservation has Destination set to the post-decrement state.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	qty, err := model.ParseQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	if in.DestinationID == 0 {
		return nil, destinationRequired()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	d, err := s.destinations.GetForUpdateTx(ctx, tx, in.DestinationID)
	if errors.Is(err, repository.ErrDestinationNotFound) {
		return nil, destinationRequired()
	}
	if err != nil {
		return nil, fmt.Errorf("lock destination: %w", err)
	}
	if err := model.CheckStock(d, qty); err != nil {
		return nil, err
	}
	if err := model.CheckTotal(d, qty); err != nil {
		return nil, err
	}

	if in.PaymentMethodID == 0 {
		return nil, paymentMethodRequired()
	}
	ok, err := s.payments.ExistsTx(ctx, tx, in.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("check payment method: %w", err)
	}
	if !ok {
		return nil, paymentMethodRequired()
	}

	decremented, err := s.destinations.DecrementStockTx(ctx, tx, d.ID, qty)
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	if !decremented {
		return nil, model.NewValidationError("quantity", model.CodeInsufficientStock,
			fmt.Sprintf("Solo quedan %d cupos disponibles.", d.AvailableCount))
	}

	res := &model.Reservation{
		Code:            s.newCode(),
		UserID:          in.UserID,
		DestinationID:   d.ID,
		PaymentMethodID: in.PaymentMethodID,
		Quantity:        qty,
	}
	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	d.AvailableCount -= qty
	res.Destination = d
	s.publishCreated(ctx, res)
	return res, nil
}

// ListMine returns the reservations of userID, newest first.
func (s *ReservationService) ListMine(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// GetMine returns repository.ErrReservationNotFound for reservations of
// other users.
func (s *ReservationService) GetMine(ctx context.Context, id, userID uint64) (*repository.ReservationDetail, error) {
	return s.reservations.GetByIDForUser(ctx, id, userID)
}

// ListAll is the admin listing across users.
func (s *ReservationService) ListAll(ctx context.Context, f repository.ReservationFilter) ([]repository.ReservationDetail, int64, error) {
	f.Page, f.PageSize = NormalizePage(f.Page, f.PageSize)
	return s.reservations.ListAll(ctx, f)
}

func (s *ReservationService) publishCreated(ctx context.Context, res *model.Reservation) {
	if s.events == nil {
		return
	}
	total, err := res.Total()
	if err != nil {
		s.log.Warn("reservation event not published", zap.Uint64("reservation_id", res.ID), zap.Error(err))
		return
	}
	ev := queue.ReservationCreatedEvent{
		ReservationID:   res.ID,
		Code:            res.Code,
		UserID:          res.UserID,
		DestinationID:   res.DestinationID,
		DestinationName: res.Destination.Name,
		PaymentMethodID: res.PaymentMethodID,
		Quantity:        res.Quantity,
		Total:           total.String(),
		Remaining:       res.Destination.AvailableCount,
		DepartsAt:       res.Destination.DepartsAt.UTC().Format(time.RFC3339),
		CreatedAt:       res.CreatedAt.UTC().Format(time.RFC3339),
	}
	// The request context may be cancelled once the response is written.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.events.PublishReservationCreated(pubCtx, ev); err != nil {
		s.log.Warn("reservation event not published", zap.Uint64("reservation_id", res.ID), zap.Error(err))
	}
}

func destinationRequired() error {
	return model.NewValidationError("destination_id", model.CodeDestinationRequired, "Debe seleccionar un destino válido.")
}

func paymentMethodRequired() error {
	return model.NewValidationError("payment_method_id", model.CodePaymentMethodRequired, "Debe seleccionar un método de pago válido.")
}

// Pagination defaults shared by listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage clamps a 1-based page and its size to the listing bounds.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
