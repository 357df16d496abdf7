package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
)

type fakePublisher struct {
	events []queue.ReservationCreatedEvent
	err    error
}

func (f *fakePublisher) PublishReservationCreated(_ context.Context, ev queue.ReservationCreatedEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

var (
	departs = time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)
	created = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
)

func newReservationService(t *testing.T) (*ReservationService, sqlmock.Sqlmock, *fakePublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	pub := &fakePublisher{}
	svc := NewReservationService(db,
		repository.NewDestinationRepo(db),
		repository.NewPaymentMethodRepo(db),
		repository.NewReservationRepo(db),
		pub, zap.NewNop())
	svc.newCode = func() string { return "code-1" }
	return svc, mock, pub
}

func lockedDestination(mock sqlmock.Sqlmock, id uint64, available int64) {
	cols := []string{"id", "name", "description", "image_url", "price_cents", "departs_at",
		"available_count", "category_id", "payment_method_id", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM destinations WHERE id = \? FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(id, "Bariloche", "Lagos", "", int64(10000), departs, available, 1, 2, created, created))
}

func paymentExists(mock sqlmock.Sqlmock, id uint64, n int) {
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payment_methods WHERE id = \?`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(n))
}

func requireValidation(t *testing.T, err error, code string) *model.ValidationError {
	t.Helper()
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	assert.Equal(t, code, ve.Code)
	return ve
}

func TestCreate_DecrementsStockAndComputesTotal(t *testing.T) {
	svc, mock, pub := newReservationService(t)

	mock.ExpectBegin()
	lockedDestination(mock, 1, 12)
	paymentExists(mock, 2, 1)
	mock.ExpectExec(`UPDATE destinations SET available_count = available_count - \? WHERE id = \? AND available_count >= \?`).
		WithArgs(int64(5), uint64(1), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs("code-1", uint64(3), uint64(1), uint64(2), int64(5)).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectQuery(`SELECT created_at FROM reservations WHERE id = \?`).
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	res, err := svc.Create(context.Background(), CreateReservationInput{
		UserID: 3, DestinationID: 1, PaymentMethodID: 2, Quantity: "5",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), res.ID)
	assert.Equal(t, int64(5), res.Quantity)
	assert.Equal(t, int64(7), res.Destination.AvailableCount)
	total, err := res.Total()
	require.NoError(t, err)
	assert.Equal(t, "500.00", total.String())

	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(7), pub.events[0].Remaining)
	assert.Equal(t, "500.00", pub.events[0].Total)
}

func TestCreate_InsufficientStockReportsRemaining(t *testing.T) {
	svc, mock, pub := newReservationService(t)

	mock.ExpectBegin()
	lockedDestination(mock, 1, 7)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateReservationInput{
		UserID: 3, DestinationID: 1, PaymentMethodID: 2, Quantity: "10",
	})
	ve := requireValidation(t, err, model.CodeInsufficientStock)
	assert.Equal(t, "Solo quedan 7 cupos disponibles.", ve.Message)
	assert.Empty(t, pub.events)
}

func TestCreate_ValidationBeforeDatabase(t *testing.T) {
	tests := []struct {
		name string
		in   CreateReservationInput
		code string
	}{
		{"missing quantity", CreateReservationInput{DestinationID: 1, Quantity: ""}, model.CodeQuantityRequired},
		{"non numeric quantity", CreateReservationInput{DestinationID: 1, Quantity: "abc"}, model.CodeInvalidQuantity},
		{"missing quantity wins over missing destination", CreateReservationInput{Quantity: " "}, model.CodeQuantityRequired},
		{"missing destination", CreateReservationInput{Quantity: "2"}, model.CodeDestinationRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newReservationService(t)
			_, err := svc.Create(context.Background(), tt.in)
			requireValidation(t, err, tt.code)
		})
	}
}

func TestCreate_LockedRowChecks(t *testing.T) {
	tests := []struct {
		name      string
		available int64
		quantity  string
		code      string
	}{
		{"out of stock", 0, "1", model.CodeOutOfStock},
		{"out of stock before quantity sign", 0, "-1", model.CodeOutOfStock},
		{"zero quantity", 12, "0", model.CodeInvalidQuantity},
		{"negative quantity", 12, "-3", model.CodeInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock, _ := newReservationService(t)
			mock.ExpectBegin()
			lockedDestination(mock, 1, tt.available)
			mock.ExpectRollback()

			_, err := svc.Create(context.Background(), CreateReservationInput{
				UserID: 3, DestinationID: 1, PaymentMethodID: 2, Quantity: tt.quantity,
			})
			requireValidation(t, err, tt.code)
		})
	}
}

func TestCreate_UnknownDestination(t *testing.T) {
	svc, mock, _ := newReservationService(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(9)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateReservationInput{DestinationID: 9, PaymentMethodID: 2, Quantity: "1"})
	requireValidation(t, err, model.CodeDestinationRequired)
}

func TestCreate_PaymentMethod(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		svc, mock, _ := newReservationService(t)
		mock.ExpectBegin()
		lockedDestination(mock, 1, 12)
		mock.ExpectRollback()

		_, err := svc.Create(context.Background(), CreateReservationInput{DestinationID: 1, Quantity: "1"})
		requireValidation(t, err, model.CodePaymentMethodRequired)
	})
	t.Run("unknown", func(t *testing.T) {
		svc, mock, _ := newReservationService(t)
		mock.ExpectBegin()
		lockedDestination(mock, 1, 12)
		paymentExists(mock, 8, 0)
		mock.ExpectRollback()

		_, err := svc.Create(context.Background(), CreateReservationInput{DestinationID: 1, PaymentMethodID: 8, Quantity: "1"})
		requireValidation(t, err, model.CodePaymentMethodRequired)
	})
}

func TestCreate_GuardRejectsDecrement(t *testing.T) {
	svc, mock, _ := newReservationService(t)
	mock.ExpectBegin()
	lockedDestination(mock, 1, 4)
	paymentExists(mock, 2, 1)
	mock.ExpectExec("UPDATE destinations SET available_count").
		WithArgs(int64(4), uint64(1), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateReservationInput{DestinationID: 1, PaymentMethodID: 2, Quantity: "4"})
	requireValidation(t, err, model.CodeInsufficientStock)
}

func TestCreate_InsertFailureRollsBack(t *testing.T) {
	svc, mock, pub := newReservationService(t)
	mock.ExpectBegin()
	lockedDestination(mock, 1, 12)
	paymentExists(mock, 2, 1)
	mock.ExpectExec("UPDATE destinations SET available_count").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateReservationInput{DestinationID: 1, PaymentMethodID: 2, Quantity: "2"})
	require.Error(t, err)
	var ve *model.ValidationError
	assert.False(t, errors.As(err, &ve))
	assert.Empty(t, pub.events)
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	svc, mock, pub := newReservationService(t)
	pub.err = errors.New("broker down")

	mock.ExpectBegin()
	lockedDestination(mock, 1, 12)
	paymentExists(mock, 2, 1)
	mock.ExpectExec("UPDATE destinations SET available_count").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reservations").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT created_at FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	core, logs := observer.New(zap.WarnLevel)
	svc.log = zap.New(core)

	res, err := svc.Create(context.Background(), CreateReservationInput{DestinationID: 1, PaymentMethodID: 2, Quantity: "1"})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), res.ID)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "reservation event not published", logs.All()[0].Message)
	assert.EqualValues(t, 11, logs.All()[0].ContextMap()["reservation_id"])
}

func TestCreate_RejectsTotalOverflow(t *testing.T) {
	svc, mock, pub := newReservationService(t)

	cols := []string{"id", "name", "description", "image_url", "price_cents", "departs_at",
		"available_count", "category_id", "payment_method_id", "created_at", "updated_at"}
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM destinations WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "Luna", "Viaje", "", int64(930000000000000000), departs, 5000, 1, 2, created, created))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateReservationInput{
		UserID: 3, DestinationID: 1, PaymentMethodID: 2, Quantity: "1000",
	})
	requireValidation(t, err, model.CodeInvalidQuantity)
	assert.Empty(t, pub.events)
}

func TestNormalizePage(t *testing.T) {
	p, s := NormalizePage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, DefaultPageSize, s)
	_, s = NormalizePage(3, 1000)
	assert.Equal(t, MaxPageSize, s)
}
