package zone

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines storage access for zones and their memberships.
type Repository interface {
	Create(ctx context.Context, z *Zone) error
	GetByID(ctx context.Context, id string) (*Zone, error)
	List(ctx context.Context, filter Filter) ([]*Zone, int, error)
	Update(ctx context.Context, z *Zone) error
	Delete(ctx context.Context, id string) error

	GetMember(ctx context.Context, zoneID, userID string) (*Member, error)
	AddMember(ctx context.Context, zoneID, userID, role string) error
	RemoveMember(ctx context.Context, zoneID, userID string) error
	UpdateMemberRole(ctx context.Context, zoneID, userID, role string) error
	ListMembers(ctx context.Context, zoneID string, filter MemberFilter) ([]*Member, int, error)
	ListManagerIDs(ctx context.Context, zoneID string) ([]string, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a Repository backed by pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, z *Zone) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.zones").
		Columns("name", "region", "is_active").
		Values(z.Name, z.Region, z.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create zone query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&z.ID, &z.CreatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Zone, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "name", "region", "is_active", "created_at").
		From("public.zones").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get zone query failed: %w", err)
	}

	var z Zone
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&z.ID, &z.Name, &z.Region, &z.IsActive, &z.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get zone failed: %w", err)
	}
	return &z, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Zone, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "name", "region", "is_active", "created_at",
		"count(*) OVER() AS total_count").
		From("public.zones").
		OrderBy("name ASC")

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
		return nil, 0, fmt.Errorf("build list zones query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list zones failed: %w", err)
	}
	defer rows.Close()

	var zones []*Zone
	var total int
	for rows.Next() {
		var z Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Region, &z.IsActive, &z.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan zone failed: %w", err)
		}
		zones = append(zones, &z)
	}

	return zones, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, z *Zone) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.zones").
		Set("name", z.Name).
		Set("region", z.Region).
		Set("is_active", z.IsActive).
		Where(squirrel.Eq{"id": z.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update zone query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update zone failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, "DELETE FROM public.zones WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete zone failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) GetMember(ctx context.Context, zoneID, userID string) (*Member, error) {
	const query = `
		SELECT zp.user_id, u.email, u.display_name, zp.role
		FROM public.zone_permissions zp
		JOIN public.users u ON zp.user_id = u.id
		WHERE zp.zone_id = $1 AND zp.user_id = $2
	`

	var m Member
	if err := r.pool.QueryRow(ctx, query, zoneID, userID).
		Scan(&m.UserID, &m.Email, &m.DisplayName, &m.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("get zone member failed: %w", err)
	}
	return &m, nil
}

func (r *pgxRepository) AddMember(ctx context.Context, zoneID, userID, role string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.zone_permissions").
		Columns("zone_id", "user_id", "role").
		Values(zoneID, userID, role).
		ToSql()
	if err != nil {
		return fmt.Errorf("build add member query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrUserAlreadyMember
		}
		return fmt.Errorf("add zone member failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) RemoveMember(ctx context.Context, zoneID, userID string) error {
	ct, err := r.pool.Exec(ctx,
		"DELETE FROM public.zone_permissions WHERE zone_id = $1 AND user_id = $2", zoneID, userID)
	if err != nil {
		return fmt.Errorf("remove zone member failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *pgxRepository) UpdateMemberRole(ctx context.Context, zoneID, userID, role string) error {
	ct, err := r.pool.Exec(ctx,
		"UPDATE public.zone_permissions SET role = $1 WHERE zone_id = $2 AND user_id = $3",
		role, zoneID, userID)
	if err != nil {
		return fmt.Errorf("update zone member role failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *pgxRepository) ListMembers(ctx context.Context, zoneID string, filter MemberFilter) ([]*Member, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("zp.user_id", "u.email", "u.display_name", "zp.role",
		"count(*) OVER() AS total_count").
		From("public.zone_permissions zp").
		Join("public.users u ON zp.user_id = u.id").
		Where(squirrel.Eq{"zp.zone_id": zoneID}).
		OrderBy("zp.role ASC", "u.email ASC")

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
		return nil, 0, fmt.Errorf("build list members query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list zone members failed: %w", err)
	}
	defer rows.Close()

	var members []*Member
	var total int
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.DisplayName, &m.Role, &total); err != nil {
			return nil, 0, fmt.Errorf("scan zone member failed: %w", err)
		}
		members = append(members, &m)
	}

	return members, total, nil
}

func (r *pgxRepository) ListManagerIDs(ctx context.Context, zoneID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT user_id FROM public.zone_permissions WHERE zone_id = $1 AND role = $2",
		zoneID, RoleManager)
	if err != nil {
		return nil, fmt.Errorf("list zone managers failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan zone manager failed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
