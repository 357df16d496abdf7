package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/travel-booking/internal/model"
)

// TeamRepo stores the members listed on the about page.
type TeamRepo struct{ db *sql.DB }

func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

const teamColumns = "id, full_name, github, linkedin, image, role"

func (r *TeamRepo) Create(ctx context.Context, m *model.TeamMember) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO team_members (full_name, github, linkedin, image, role) VALUES (?, ?, ?, ?, ?)",
		m.FullName, m.GitHub, m.LinkedIn, m.Image, m.Role)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

func (r *TeamRepo) GetByID(ctx context.Context, id uint64) (*model.TeamMember, error) {
	var m model.TeamMember
	err := r.db.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM team_members WHERE id = ?", id).
		Scan(&m.ID, &m.FullName, &m.GitHub, &m.LinkedIn, &m.Image, &m.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns the members in insertion order.
func (r *TeamRepo) List(ctx context.Context) ([]model.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+teamColumns+" FROM team_members ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TeamMember{}
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.ID, &m.FullName, &m.GitHub, &m.LinkedIn, &m.Image, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *TeamRepo) Update(ctx context.Context, m *model.TeamMember) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE team_members SET full_name = ?, github = ?, linkedin = ?, image = ?, role = ? WHERE id = ?",
		m.FullName, m.GitHub, m.LinkedIn, m.Image, m.Role, m.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, ErrTeamMemberNotFound)
}

func (r *TeamRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM team_members WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, ErrTeamMemberNotFound)
}
