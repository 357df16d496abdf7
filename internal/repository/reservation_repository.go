package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ReservationRepo provides the queries on reservations.  Rows are only ever
// inserted; there is no update or cancel path.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationDetail is a reservation joined with the data shown on listings.
// Reservation.Destination is populated, so Total can be computed.
type ReservationDetail struct {
	model.Reservation
	PaymentMethod string
	UserEmail     string
}

// CreateTx inserts res inside tx and populates ID and CreatedAt.  The caller
// owns the transaction and must commit or rollback.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (code, user_id, destination_id, payment_method_id, quantity) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.Code, res.UserID, res.DestinationID, res.PaymentMethodID, res.Quantity)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return tx.QueryRowContext(ctx, "SELECT created_at FROM reservations WHERE id = ?", res.ID).Scan(&res.CreatedAt)
}

const reservationDetailSelect = `SELECT
		r.id, r.code, r.user_id, r.destination_id, r.payment_method_id, r.quantity, r.created_at,
		d.name, d.price_cents, d.departs_at, d.available_count,
		pm.name, u.email
	FROM reservations r
	JOIN destinations d     ON d.id = r.destination_id
	JOIN payment_methods pm ON pm.id = r.payment_method_id
	JOIN users u            ON u.id = r.user_id`

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		reservationDetailSelect+" WHERE r.user_id = ? ORDER BY r.created_at DESC, r.id DESC", userID)
	if err != nil {
		return nil, err
	}
	return collectReservationDetails(rows)
}

// GetByIDForUser returns ErrReservationNotFound when the reservation does not
// exist or belongs to another user.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*ReservationDetail, error) {
	row := r.db.QueryRowContext(ctx, reservationDetailSelect+" WHERE r.id = ? AND r.user_id = ?", id, userID)
	d, err := scanReservationDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ReservationFilter narrows the admin listing.  Zero values disable a filter.
type ReservationFilter struct {
	DestinationID   uint64
	PaymentMethodID uint64
	UserID          uint64
	Page            int
	PageSize        int
}

// ListAll returns one page of reservations across users, newest first,
// and the total number of matches.
func (r *ReservationRepo) ListAll(ctx context.Context, f ReservationFilter) ([]ReservationDetail, int64, error) {
	where := []string{}
	args := []any{}
	if f.DestinationID != 0 {
		where = append(where, "r.destination_id = ?")
		args = append(args, f.DestinationID)
	}
	if f.PaymentMethodID != 0 {
		where = append(where, "r.payment_method_id = ?")
		args = append(args, f.PaymentMethodID)
	}
	if f.UserID != 0 {
		where = append(where, "r.user_id = ?")
		args = append(args, f.UserID)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations r WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.PageSize
	argsData := append(append([]any{}, args...), f.PageSize, offset)
	rows, err := r.db.QueryContext(ctx,
		reservationDetailSelect+" WHERE "+cond+" ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?", argsData...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectReservationDetails(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func collectReservationDetails(rows *sql.Rows) ([]ReservationDetail, error) {
	defer rows.Close()
	out := []ReservationDetail{}
	for rows.Next() {
		d, err := scanReservationDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanReservationDetail(row scanner) (*ReservationDetail, error) {
	var (
		d     ReservationDetail
		dest  model.Destination
		cents int64
	)
	if err := row.Scan(
		&d.ID, &d.Code, &d.UserID, &d.DestinationID, &d.PaymentMethodID, &d.Quantity, &d.CreatedAt,
		&dest.Name, &cents, &dest.DepartsAt, &dest.AvailableCount,
		&d.PaymentMethod, &d.UserEmail,
	); err != nil {
		return nil, err
	}
	dest.ID = d.DestinationID
	dest.PaymentMethodID = d.PaymentMethodID
	dest.Price = model.Money(cents)
	d.Destination = &dest
	return &d, nil
}
