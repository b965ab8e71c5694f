package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const rentalTable = "rentals"

const rentalColumns = `id, car_id, request_id,
	to_char(start_date, 'YYYY-MM-DD') AS start_date, to_char(start_time, 'HH24:MI') AS start_time,
	to_char(end_date, 'YYYY-MM-DD') AS end_date, to_char(end_time, 'HH24:MI') AS end_time,
	COALESCE(customer_name, '') AS customer_name, COALESCE(customer_phone, '') AS customer_phone,
	price_per_day, subtotal, taxes_fees, additional_taxes, total_amount, rental_status, created_on, updated_on`

type rentalRepository struct {
	db *sqlx.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: wrapDB(db)}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (car_id, request_id, start_date, start_time, end_date, end_time, customer_name, customer_phone,
	          price_per_day, subtotal, taxes_fees, additional_taxes, total_amount, rental_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	now := time.Now().UTC()
	rt.CreatedOn = now
	rt.UpdatedOn = now

	logger.DatabaseCall("INSERT", "rentals.Create", "car_id", rt.CarID, "request_id", rt.RequestID)
	err := r.db.QueryRowContext(ctx, query, rt.CarID, rt.RequestID, rt.StartDate, rt.StartTime, rt.EndDate, rt.EndTime,
		rt.CustomerName, rt.CustomerPhone, rt.PricePerDay, rt.Subtotal, rt.TaxesFees, rt.AdditionalTaxes, rt.TotalAmount,
		rt.Status, rt.CreatedOn, rt.UpdatedOn).Scan(&rt.ID)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		if isUniqueViolation(err) {
			return domain.ErrRentalExists
		}
		return fmt.Errorf("failed to insert rental: %w", err)
	}
	logger.DatabaseResult("INSERT", 1, nil, "rental_id", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	rt := &domain.Rental{}
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	if err := r.db.GetContext(ctx, rt, query, id); err != nil {
		return nil, notFound(err, domain.ErrRentalNotFound)
	}
	return rt, nil
}

func (r *rentalRepository) GetByRequestID(ctx context.Context, requestID int32) (*domain.Rental, error) {
	rt := &domain.Rental{}
	// A request keeps at most one live rental; cancelled ones sort last.
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE request_id = $1
		ORDER BY (rental_status = 'CANCELLED'), id DESC LIMIT 1`
	if err := r.db.GetContext(ctx, rt, query, requestID); err != nil {
		return nil, notFound(err, domain.ErrRentalNotFound)
	}
	return rt, nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.RentalStatus) error {
	query := `UPDATE rentals SET rental_status = $1, updated_on = $2 WHERE id = $3 AND rental_status = $4`

	logger.DatabaseCall("UPDATE", "rentals.UpdateStatus", "rental_id", id, "from", from, "to", to)
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return fmt.Errorf("failed to update rental status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	logger.DatabaseResult("UPDATE", n, nil)
	if n == 0 {
		return fmt.Errorf("rental %d %s to %s: %w", id, from, to, domain.ErrInvalidStatusTransition)
	}
	return nil
}

func (r *rentalRepository) DeleteByRequestID(ctx context.Context, requestID int32) (int64, error) {
	logger.DatabaseCall("DELETE", "rentals.DeleteByRequestID", "request_id", requestID)
	statuses := pq.Array(rentalStatusStrings(domain.CancellableRentalStatuses))
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE request_id = $1 AND rental_status = ANY($2)`, requestID, statuses)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return 0, fmt.Errorf("failed to delete rental: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	logger.DatabaseResult("DELETE", n, nil)
	return n, nil
}

func (r *rentalRepository) FindOverlapping(ctx context.Context, carID int32, startDate, endDate string) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE car_id = $1 AND rental_status = ANY($2) AND start_date <= $3 AND end_date >= $4
	          ORDER BY start_date, start_time`
	statuses := pq.Array(rentalStatusStrings(domain.BlockingRentalStatuses))

	var rentals []domain.Rental
	if err := r.db.SelectContext(ctx, &rentals, query, carID, statuses, endDate, startDate); err != nil {
		return nil, fmt.Errorf("failed to find overlapping rentals: %w", err)
	}
	return rentals, nil
}

func (r *rentalRepository) FindEarliestStartAfter(ctx context.Context, carID int32, after string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE car_id = $1 AND rental_status = ANY($2) AND start_date > $3
	          ORDER BY start_date, start_time LIMIT 1`
	statuses := pq.Array(rentalStatusStrings(domain.BlockingRentalStatuses))

	rt := &domain.Rental{}
	err := r.db.GetContext(ctx, rt, query, carID, statuses, after)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find next rental: %w", err)
	}
	return rt, nil
}

func (r *rentalRepository) ListByStatus(ctx context.Context, statuses []domain.RentalStatus) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE rental_status = ANY($1) ORDER BY start_date, id`

	logger.DatabaseCall("SELECT", "rentals.ListByStatus", "statuses", statuses)
	var rentals []domain.Rental
	if err := r.db.SelectContext(ctx, &rentals, query, pq.Array(rentalStatusStrings(statuses))); err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, fmt.Errorf("failed to list rentals by status: %w", err)
	}
	logger.DatabaseResult("SELECT", int64(len(rentals)), nil)
	return rentals, nil
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	base := dialect.From(rentalTable).Prepared(true)
	if filter.CarID > 0 {
		base = base.Where(goqu.C("car_id").Eq(filter.CarID))
	}
	if len(filter.Statuses) > 0 {
		base = base.Where(goqu.C("rental_status").In(rentalStatusStrings(filter.Statuses)))
	}
	if filter.From != "" {
		base = base.Where(goqu.C("end_date").Gte(filter.From))
	}
	if filter.To != "" {
		base = base.Where(goqu.C("start_date").Lte(filter.To))
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var count int32
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count rentals: %w", err)
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	listSQL, listArgs, err := base.
		Select(goqu.L(rentalColumns)).
		Order(goqu.I("start_date").Asc(), goqu.I("id").Asc()).
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	var rentals []domain.Rental
	if err := r.db.SelectContext(ctx, &rentals, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list rentals: %w", err)
	}
	return rentals, count, nil
}
