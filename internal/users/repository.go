package users

import (
	"context"
	"strings"

	"github.com/prastiyo12/userhub_api/internal/db"
)

type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

const (
	sqlUserInsert = `INSERT INTO users (id, email, name, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5, $6)`

	sqlUserGetByEmail = `SELECT id, email, name, password_hash, role, active, created_at
		FROM users
		WHERE email = $1`

	sqlUserGetByID = `SELECT id, email, name, password_hash, role, active, created_at
		FROM users
		WHERE id = $1`

	sqlUserListActiveBase = `SELECT id, email, name, password_hash, role, active, created_at
		FROM users
		WHERE active = TRUE AND (name ILIKE $1 OR email ILIKE $1)
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3`

	sqlUserCountActive = `SELECT COUNT(*)
		FROM users
		WHERE active = TRUE AND (name ILIKE $1 OR email ILIKE $1)`

	sqlOrdersCountByUser = `SELECT user_id, COUNT(*)
		FROM orders
		WHERE user_id = ANY($1)
		GROUP BY user_id`
)

func (r *Repository) Create(ctx context.Context, u *User) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	row := r.base.Q().QueryRow(ctx, sqlUserInsert+" RETURNING created_at", u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Active)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return err
	}
	return nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var u User
	err := r.base.Q().QueryRow(ctx, sqlUserGetByEmail, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt,
	)
	if IsNotFound(err) {
		return User{}, ErrNotFound
	}

	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var u User
	err := r.base.Q().QueryRow(ctx, sqlUserGetByID, id).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
	)

	if IsNotFound(err) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

// sortColumn maps the resolved sort field to a column name. Only allow-listed
// fields ever reach the ORDER BY clause.
func sortColumn(s SortField) string {
	switch s {
	case SortByName:
		return "name"
	case SortByEmail:
		return "email"
	default:
		return "created_at"
	}
}

func searchPattern(search string) string {
	if strings.TrimSpace(search) == "" {
		return "%"
	}
	search = strings.ReplaceAll(search, "\\", "\\\\")
	search = strings.ReplaceAll(search, "%", "\\%")
	search = strings.ReplaceAll(search, "_", "\\_")
	return "%" + search + "%"
}

func (r *Repository) ListActive(ctx context.Context, f ListFilter) ([]*User, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	limit := PageSize
	if f.Limit > 0 {
		limit = f.Limit
	}
	offset := 0
	if f.Offset > 0 {
		offset = f.Offset
	}

	query := strings.Replace(sqlUserListActiveBase, "%s", sortColumn(f.Sort), 1)

	rows, err := r.base.Q().Query(ctx, query, searchPattern(f.Search), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) CountActive(ctx context.Context, search string) (int64, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var total int64
	if err := r.base.Q().QueryRow(ctx, sqlUserCountActive, searchPattern(search)).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// OrdersCountByUser aggregates order counts for the given user ids in a
// single grouped query. Users without orders are absent from the result.
func (r *Repository) OrdersCountByUser(ctx context.Context, userIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	rows, err := r.base.Q().Query(ctx, sqlOrdersCountByUser, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
