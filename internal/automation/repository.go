package automation

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines storage access for automation settings.
type Repository interface {
	ListByZone(ctx context.Context, zoneID string) ([]*Setting, error)
	Upsert(ctx context.Context, s *Setting) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a Repository backed by pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) ListByZone(ctx context.Context, zoneID string) ([]*Setting, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("zone_id", "setting_type", "enabled", "updated_by", "updated_at").
		From("public.automation_settings").
		Where(squirrel.Eq{"zone_id": zoneID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list settings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list settings failed: %w", err)
	}
	defer rows.Close()

	var settings []*Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.ZoneID, &s.Type, &s.Enabled, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting failed: %w", err)
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

func (r *pgxRepository) Upsert(ctx context.Context, s *Setting) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.automation_settings").
		Columns("zone_id", "setting_type", "enabled", "updated_by").
		Values(s.ZoneID, s.Type, s.Enabled, s.UpdatedBy).
		Suffix(`ON CONFLICT (zone_id, setting_type)
			DO UPDATE SET enabled = EXCLUDED.enabled,
				updated_by = EXCLUDED.updated_by,
				updated_at = now()
			RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert setting query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt)
}
