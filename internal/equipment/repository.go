package equipment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines storage access for equipment items and their images.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, filter Filter) ([]*Item, int, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error

	CreateImage(ctx context.Context, img *Image) error
	GetImage(ctx context.Context, id string) (*Image, error)
	ListImages(ctx context.Context, equipmentID string) ([]*Image, error)
	DeleteImage(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a Repository backed by pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, item *Item) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.equipment_items").
		Columns("zone_id", "name", "category", "quantity", "daily_rate_cents",
			"bond_cents", "requires_trailer", "storage_location", "is_active").
		Values(item.ZoneID, item.Name, item.Category, item.Quantity, item.DailyRateCents,
			item.BondCents, item.RequiresTrailer, item.StorageLocation, item.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create equipment query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"e.id", "e.zone_id", "z.name", "e.name", "e.category", "e.quantity",
		"e.daily_rate_cents", "e.bond_cents", "e.requires_trailer",
		"e.storage_location", "e.is_active", "e.created_at", "e.updated_at",
	).
		From("public.equipment_items e").
		Join("public.zones z ON e.zone_id = z.id").
		Where(squirrel.Eq{"e.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get equipment query failed: %w", err)
	}

	var item Item
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&item.ID, &item.ZoneID, &item.ZoneName, &item.Name, &item.Category, &item.Quantity,
		&item.DailyRateCents, &item.BondCents, &item.RequiresTrailer,
		&item.StorageLocation, &item.IsActive, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get equipment failed: %w", err)
	}
	return &item, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Item, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"e.id", "e.zone_id", "z.name", "e.name", "e.category", "e.quantity",
		"e.daily_rate_cents", "e.bond_cents", "e.requires_trailer",
		"e.storage_location", "e.is_active", "e.created_at", "e.updated_at",
		"count(*) OVER() AS total_count",
	).
		From("public.equipment_items e").
		Join("public.zones z ON e.zone_id = z.id")

	if filter.ZoneID != "" {
		query = query.Where(squirrel.Eq{"e.zone_id": filter.ZoneID})
	}
	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"e.category": filter.Category})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"e.is_active": *filter.IsActive})
	}

	query = query.OrderBy("e.name ASC")

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
		return nil, 0, fmt.Errorf("build list equipment query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list equipment failed: %w", err)
	}
	defer rows.Close()

	var items []*Item
	var total int
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.ZoneID, &item.ZoneName, &item.Name, &item.Category, &item.Quantity,
			&item.DailyRateCents, &item.BondCents, &item.RequiresTrailer,
			&item.StorageLocation, &item.IsActive, &item.CreatedAt, &item.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan equipment failed: %w", err)
		}
		items = append(items, &item)
	}

	return items, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, item *Item) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.equipment_items").
		Set("name", item.Name).
		Set("category", item.Category).
		Set("quantity", item.Quantity).
		Set("daily_rate_cents", item.DailyRateCents).
		Set("bond_cents", item.BondCents).
		Set("requires_trailer", item.RequiresTrailer).
		Set("storage_location", item.StorageLocation).
		Set("is_active", item.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update equipment query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update equipment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, "DELETE FROM public.equipment_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete equipment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CreateImage(ctx context.Context, img *Image) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.equipment_images").
		Columns("id", "equipment_id", "uploaded_by", "filename", "storage_path",
			"thumbnail_path", "content_type", "size").
		Values(img.ID, img.EquipmentID, img.UploadedBy, img.Filename, img.StoragePath,
			img.ThumbnailPath, img.ContentType, img.Size).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create image query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&img.CreatedAt)
}

func (r *pgxRepository) GetImage(ctx context.Context, id string) (*Image, error) {
	const query = `
		SELECT id, equipment_id, uploaded_by, filename, storage_path,
		       thumbnail_path, content_type, size, created_at
		FROM public.equipment_images
		WHERE id = $1
	`

	var img Image
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&img.ID, &img.EquipmentID, &img.UploadedBy, &img.Filename, &img.StoragePath,
		&img.ThumbnailPath, &img.ContentType, &img.Size, &img.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("get equipment image failed: %w", err)
	}
	return &img, nil
}

func (r *pgxRepository) ListImages(ctx context.Context, equipmentID string) ([]*Image, error) {
	const query = `
		SELECT id, equipment_id, uploaded_by, filename, storage_path,
		       thumbnail_path, content_type, size, created_at
		FROM public.equipment_images
		WHERE equipment_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("list equipment images failed: %w", err)
	}
	defer rows.Close()

	var images []*Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(
			&img.ID, &img.EquipmentID, &img.UploadedBy, &img.Filename, &img.StoragePath,
			&img.ThumbnailPath, &img.ContentType, &img.Size, &img.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan equipment image failed: %w", err)
		}
		images = append(images, &img)
	}
	return images, nil
}

func (r *pgxRepository) DeleteImage(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, "DELETE FROM public.equipment_images WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete equipment image failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}
