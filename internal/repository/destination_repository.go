package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/travel-booking/internal/model"
)

const destinationColumns = `id, name, description, image_url, price_cents, departs_at,
	available_count, category_id, payment_method_id, created_at, updated_at`

// DestinationRepo encapsulates all queries on the destinations table,
// including the row lock and guarded decrement used when booking.
type DestinationRepo struct {
	db *sql.DB
}

// NewDestinationRepo constructs a DestinationRepo with the provided DB handle.
func NewDestinationRepo(db *sql.DB) *DestinationRepo { return &DestinationRepo{db: db} }

// Create inserts the destination and reloads it so timestamps are populated.
// Unknown category or payment method ids yield ErrConflict.
func (r *DestinationRepo) Create(ctx context.Context, d *model.Destination) error {
	const q = `INSERT INTO destinations
		(name, description, image_url, price_cents, departs_at, available_count, category_id, payment_method_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		d.Name, d.Description, d.ImageURL, d.Price.Cents(), d.DepartsAt.UTC(),
		d.AvailableCount, d.CategoryID, d.PaymentMethodID)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*d = *created
	return nil
}

// GetByID returns ErrDestinationNotFound when no row matches.
func (r *DestinationRepo) GetByID(ctx context.Context, id uint64) (*model.Destination, error) {
	return getDestination(ctx, r.db, "SELECT "+destinationColumns+" FROM destinations WHERE id = ?", id)
}

// GetForUpdateTx reads the destination inside tx and holds an exclusive row
// lock on it until the transaction ends.
func (r *DestinationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Destination, error) {
	return getDestination(ctx, tx, "SELECT "+destinationColumns+" FROM destinations WHERE id = ? FOR UPDATE", id)
}

// DecrementStockTx subtracts qty from available_count unless that would
// make it negative.  It reports false, without error, when the guard fails.
func (r *DestinationRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty int64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE destinations SET available_count = available_count - ? WHERE id = ? AND available_count >= ?",
		qty, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Update overwrites every editable column, stock included.
func (r *DestinationRepo) Update(ctx context.Context, d *model.Destination) error {
	const q = `UPDATE destinations SET
		name = ?, description = ?, image_url = ?, price_cents = ?, departs_at = ?,
		available_count = ?, category_id = ?, payment_method_id = ?
		WHERE id = ?`
	return r.update(ctx, d, q,
		d.Name, d.Description, d.ImageURL, d.Price.Cents(), d.DepartsAt.UTC(),
		d.AvailableCount, d.CategoryID, d.PaymentMethodID, d.ID)
}

// UpdateDetails overwrites every editable column except available_count, so
// decrements committed by concurrent bookings survive.  d.AvailableCount is
// reloaded from the row.
func (r *DestinationRepo) UpdateDetails(ctx context.Context, d *model.Destination) error {
	const q = `UPDATE destinations SET
		name = ?, description = ?, image_url = ?, price_cents = ?, departs_at = ?,
		category_id = ?, payment_method_id = ?
		WHERE id = ?`
	return r.update(ctx, d, q,
		d.Name, d.Description, d.ImageURL, d.Price.Cents(), d.DepartsAt.UTC(),
		d.CategoryID, d.PaymentMethodID, d.ID)
}

func (r *DestinationRepo) update(ctx context.Context, d *model.Destination, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	if err := affectedOrNotFound(res, ErrDestinationNotFound); err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	*d = *updated
	return nil
}

// Delete removes the destination and, through the FK cascade, its
// reservations.
func (r *DestinationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM destinations WHERE id = ?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	return affectedOrNotFound(res, ErrDestinationNotFound)
}

func getDestination(ctx context.Context, q querier, query string, id uint64) (*model.Destination, error) {
	d, err := scanDestination(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDestinationNotFound
	}
	return d, err
}

func scanDestination(row scanner) (*model.Destination, error) {
	var (
		d     model.Destination
		cents int64
	)
	if err := row.Scan(
		&d.ID, &d.Name, &d.Description, &d.ImageURL, &cents, &d.DepartsAt,
		&d.AvailableCount, &d.CategoryID, &d.PaymentMethodID, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Price = model.Money(cents)
	return &d, nil
}
