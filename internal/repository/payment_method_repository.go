package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/travel-booking/internal/model"
)

// PaymentMethodRepo encapsulates all queries on the payment_methods table.
type PaymentMethodRepo struct {
	db *sql.DB
}

func NewPaymentMethodRepo(db *sql.DB) *PaymentMethodRepo { return &PaymentMethodRepo{db: db} }

// Create inserts a payment method and populates its ID.
func (r *PaymentMethodRepo) Create(ctx context.Context, p *model.PaymentMethod) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO payment_methods (name) VALUES (?)", p.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (r *PaymentMethodRepo) GetByID(ctx context.Context, id uint64) (*model.PaymentMethod, error) {
	var p model.PaymentMethod
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM payment_methods WHERE id = ?", id).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentMethodRepo) List(ctx context.Context) ([]model.PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM payment_methods ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PaymentMethod{}
	for rows.Next() {
		var p model.PaymentMethod
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PaymentMethodRepo) Update(ctx context.Context, p *model.PaymentMethod) error {
	res, err := r.db.ExecContext(ctx, "UPDATE payment_methods SET name = ? WHERE id = ?", p.Name, p.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, ErrPaymentMethodNotFound)
}

func (r *PaymentMethodRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM payment_methods WHERE id = ?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	return affectedOrNotFound(res, ErrPaymentMethodNotFound)
}

// ExistsTx reports whether the payment method exists, reading inside tx.
func (r *PaymentMethodRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM payment_methods WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
