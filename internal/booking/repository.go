package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// ListLiveByEquipment returns every non-cancelled booking for the item,
	// already sorted by the chain rule.
	ListLiveByEquipment(ctx context.Context, equipmentID string) ([]*Booking, error)

	// ListLiveOverlapping returns the non-cancelled bookings for the item
	// whose ranges intersect rng.
	ListLiveOverlapping(ctx context.Context, equipmentID string, rng DateRange) ([]*Booking, error)

	// CreateIfAvailable re-checks capacity and inserts inside one
	// serializable transaction. It returns the blocking bookings when the
	// range does not fit. Serialization failures surface as errors for the
	// caller to retry.
	CreateIfAvailable(ctx context.Context, b *Booking, quantity int) ([]*Booking, error)

	// UpdateStatus persists the lifecycle fields of b.
	UpdateStatus(ctx context.Context, b *Booking) error

	// ListUpcomingPickups returns live approved or confirmed bookings whose
	// pickup falls inside [from, to).
	ListUpcomingPickups(ctx context.Context, from, to time.Time) ([]*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// bookingColumns is the shared select list; every scan goes through scanBooking.
var bookingColumns = []string{
	"b.id", "b.reference", "b.equipment_id", "e.name", "e.zone_id", "z.name",
	"b.requester_id", "coalesce(u.display_name, u.email)",
	"b.pickup_at", "b.return_at", "b.status", "b.purpose",
	"b.auto_approved", "b.approved_by", "b.approved_at", "b.rejection_reason",
	"b.created_at", "b.updated_at",
}

func bookingSelect() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.equipment_items e ON b.equipment_id = e.id").
		Join("public.zones z ON e.zone_id = z.id").
		Join("public.users u ON b.requester_id = u.id")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.Reference, &b.EquipmentID, &b.EquipmentName, &b.ZoneID, &b.ZoneName,
		&b.RequesterID, &b.RequesterName,
		&b.PickupAt, &b.ReturnAt, &b.Status, &b.Purpose,
		&b.AutoApproved, &b.ApprovedBy, &b.ApprovedAt, &b.RejectionReason,
		&b.CreatedAt, &b.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := bookingSelect().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := bookingSelect().Column("count(*) OVER() AS total_count")

	if filter.RequesterID != "" {
		query = query.Where(squirrel.Eq{"b.requester_id": filter.RequesterID})
	}
	if filter.EquipmentID != "" {
		query = query.Where(squirrel.Eq{"b.equipment_id": filter.EquipmentID})
	}
	if filter.ZoneID != "" {
		query = query.Where(squirrel.Eq{"e.zone_id": filter.ZoneID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	// Window filtering: keep bookings intersecting [From, To].
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.return_at": filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.pickup_at": filter.To})
	}

	orderDir := "DESC"
	if filter.SortOrder == "asc" {
		orderDir = "ASC"
	}
	query = query.OrderBy("b.pickup_at "+orderDir, "b.reference ASC")

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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}

func (r *pgxRepository) ListLiveByEquipment(ctx context.Context, equipmentID string) ([]*Booking, error) {
	query, args, err := bookingSelect().
		Where(squirrel.Eq{"b.equipment_id": equipmentID}).
		Where(squirrel.NotEq{"b.status": StatusCancelled}).
		OrderBy("b.pickup_at ASC", "b.reference ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list live bookings query failed: %w", err)
	}
	return r.queryBookings(ctx, r.pool, query, args)
}

func (r *pgxRepository) ListLiveOverlapping(ctx context.Context, equipmentID string, rng DateRange) ([]*Booking, error) {
	query, args, err := liveOverlappingQuery(equipmentID, rng)
	if err != nil {
		return nil, err
	}
	return r.queryBookings(ctx, r.pool, query, args)
}

// liveOverlappingQuery matches the half-open overlap predicate:
// existing.pickup < requested.return AND existing.return > requested.pickup.
func liveOverlappingQuery(equipmentID string, rng DateRange) (string, []any, error) {
	query, args, err := bookingSelect().
		Where(squirrel.Eq{"b.equipment_id": equipmentID}).
		Where(squirrel.NotEq{"b.status": StatusCancelled}).
		Where(squirrel.Lt{"b.pickup_at": rng.ReturnAt}).
		Where(squirrel.Gt{"b.return_at": rng.PickupAt}).
		OrderBy("b.pickup_at ASC", "b.reference ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build overlap query failed: %w", err)
	}
	return query, args, nil
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *pgxRepository) queryBookings(ctx context.Context, q pgxQuerier, query string, args []any) ([]*Booking, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *pgxRepository) CreateIfAvailable(ctx context.Context, b *Booking, quantity int) ([]*Booking, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	overlapQuery, overlapArgs, err := liveOverlappingQuery(b.EquipmentID, b.Range())
	if err != nil {
		return nil, err
	}
	live, err := r.queryBookings(ctx, tx, overlapQuery, overlapArgs)
	if err != nil {
		return nil, err
	}

	if conflicts := conflictsFor(b.Range(), live, quantity); len(conflicts) > 0 {
		return conflicts, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("reference", "equipment_id", "requester_id", "pickup_at", "return_at",
			"status", "purpose", "auto_approved", "approved_by", "approved_at").
		Values(b.Reference, b.EquipmentID, b.RequesterID, b.PickupAt, b.ReturnAt,
			b.Status, b.Purpose, b.AutoApproved, b.ApprovedBy, b.ApprovedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create booking failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking failed: %w", err)
	}
	return nil, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("approved_by", b.ApprovedBy).
		Set("approved_at", b.ApprovedAt).
		Set("rejection_reason", b.RejectionReason).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListUpcomingPickups(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	query, args, err := bookingSelect().
		Where(squirrel.Eq{"b.status": []Status{StatusApproved, StatusConfirmed}}).
		Where(squirrel.GtOrEq{"b.pickup_at": from}).
		Where(squirrel.Lt{"b.pickup_at": to}).
		OrderBy("b.pickup_at ASC", "b.reference ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upcoming pickups query failed: %w", err)
	}
	return r.queryBookings(ctx, r.pool, query, args)
}

// IsSerializationFailure reports whether err is a Postgres serialization
// conflict, which a serializable create should retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure
}
