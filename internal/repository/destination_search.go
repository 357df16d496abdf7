package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
)

// DestinationSearchQuery defines filters & pagination for listing
// destinations.  Zero values disable a filter.
type DestinationSearchQuery struct {
	Text          string
	CategoryID    uint64
	From          *time.Time
	To            *time.Time
	OnlyAvailable bool
	Page          int
	PageSize      int
}

// likeEscaper makes LIKE wildcards in user text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns one page of destinations ordered by departure, plus the
// total number of matching rows.
func (r *DestinationRepo) Search(ctx context.Context, q DestinationSearchQuery) ([]model.Destination, int64, error) {
	where := []string{}
	args := []any{}

	if q.Text != "" {
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')`)
		like := "%" + likeEscaper.Replace(strings.ToLower(q.Text)) + "%"
		args = append(args, like, like)
	}
	if q.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.From != nil {
		where = append(where, "departs_at >= ?")
		args = append(args, q.From.UTC())
	}
	if q.To != nil {
		where = append(where, "departs_at <= ?")
		args = append(args, q.To.UTC())
	}
	if q.OnlyAvailable {
		where = append(where, "available_count > 0")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM destinations WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := "SELECT " + destinationColumns + " FROM destinations WHERE " + cond +
		" ORDER BY departs_at ASC, id ASC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Destination, 0, limit)
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
