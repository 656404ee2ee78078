package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	List(ctx context.Context, filter Filter) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

// zonesSubquery aggregates the user's zone memberships as JSON so a single
// scan returns the full account.
const zonesSubquery = `
	COALESCE(
		(
			SELECT json_agg(json_build_object('id', z.id, 'name', z.name))
			FROM public.zone_permissions zp
			JOIN public.zones z ON zp.zone_id = z.id
			WHERE zp.user_id = u.id AND z.is_active = true
		),
		'[]'::json
	)
`

func (r *pgxUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT
			u.id, u.email, u.password_hash, u.display_name,
			u.created_at, u.last_login_at, u.is_active, u.is_system_admin,
			` + zonesSubquery + ` AS zones
		FROM public.users u
		WHERE u.email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT
			u.id, u.email, u.password_hash, u.display_name,
			u.created_at, u.last_login_at, u.is_active, u.is_system_admin,
			` + zonesSubquery + ` AS zones
		FROM public.users u
		WHERE u.id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *pgxUserRepository) scanUser(row pgx.Row) (*User, error) {
	var u User
	var zonesJSON []byte

	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.CreatedAt,
		&u.LastLoginAt,
		&u.IsActive,
		&u.IsSystemAdmin,
		&zonesJSON,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user query failed: %w", err)
	}

	if len(zonesJSON) > 0 {
		if err := json.Unmarshal(zonesJSON, &u.Zones); err != nil {
			log.Printf("warning: failed to unmarshal zones for user %s: %v", u.ID, err)
		}
	}

	return &u, nil
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.users").
		Columns("email", "password_hash", "display_name", "is_active", "is_system_admin").
		Values(u.Email, u.PasswordHash, u.DisplayName, u.IsActive, u.IsSystemAdmin).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create user query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt)
}

func (r *pgxUserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	_, err := r.pool.Exec(ctx, "UPDATE public.users SET last_login_at = $1 WHERE id = $2", t, id)
	if err != nil {
		return fmt.Errorf("update last login failed: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"u.id", "u.email", "u.password_hash", "u.display_name",
		"u.created_at", "u.last_login_at", "u.is_active", "u.is_system_admin",
		zonesSubquery+" AS zones",
		"count(*) OVER() AS total_count",
	).From("public.users u")

	if filter.Email != "" {
		query = query.Where(squirrel.ILike{"u.email": "%" + filter.Email + "%"})
	}
	if filter.DisplayName != "" {
		query = query.Where(squirrel.ILike{"u.display_name": "%" + filter.DisplayName + "%"})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"u.is_active": *filter.IsActive})
	}

	orderBy := "u.created_at DESC"
	if filter.Sort != "" {
		orderBy = "u." + filter.Sort
	}
	query = query.OrderBy(orderBy)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	var total int

	for rows.Next() {
		var u User
		var zonesJSON []byte
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName,
			&u.CreatedAt, &u.LastLoginAt, &u.IsActive, &u.IsSystemAdmin,
			&zonesJSON, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user failed: %w", err)
		}
		if len(zonesJSON) > 0 {
			if err := json.Unmarshal(zonesJSON, &u.Zones); err != nil {
				log.Printf("warning: failed to unmarshal zones for user %s: %v", u.ID, err)
			}
		}
		users = append(users, &u)
	}

	return users, total, nil
}

func (r *pgxUserRepository) Update(ctx context.Context, u *User) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.users").
		Set("display_name", u.DisplayName).
		Set("is_active", u.IsActive).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
