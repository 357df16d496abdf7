package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ProfileRepo reads and writes the one-to-one profiles table.
type ProfileRepo struct{ db *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// CreateEmpty ensures a profile row exists for the user.  It is idempotent.
func (r *ProfileRepo) CreateEmpty(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "INSERT IGNORE INTO profiles (user_id) VALUES (?)", userID)
	return mapWriteErr(err)
}

// GetByUserID returns the profile of the user, creating an empty one first
// if the account predates profiles.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error) {
	if err := r.CreateEmpty(ctx, userID); err != nil {
		return nil, err
	}
	var (
		p                                   model.Profile
		address, location, mail, phone, dni sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, image, address, location, mail, telephone, dni, created_at, updated_at
		 FROM profiles WHERE user_id = ?`, userID).Scan(
		&p.ID, &p.UserID, &p.Image, &address, &location, &mail, &phone, &dni, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Address = nullToPtr(address)
	p.Location = nullToPtr(location)
	p.Email = nullToPtr(mail)
	p.Telephone = nullToPtr(phone)
	p.DNI = nullToPtr(dni)
	return &p, nil
}

// Update stores every editable column of p.
func (r *ProfileRepo) Update(ctx context.Context, p *model.Profile) error {
	if p.Image == "" {
		p.Image = model.DefaultProfileImage
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET image = ?, address = ?, location = ?, mail = ?, telephone = ?, dni = ?
		 WHERE user_id = ?`,
		p.Image, p.Address, p.Location, p.Email, p.Telephone, p.DNI, p.UserID)
	return err
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
