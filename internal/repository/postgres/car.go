package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"

	"github.com/jmoiron/sqlx"
)

const carColumns = `id, make, model, COALESCE(name, '') AS name, year, seats,
	price_2_4_days, price_5_15_days, price_16_30_days, price_over_30_days,
	discount_percentage, status, created_on, updated_on`

type carRepository struct {
	db *sqlx.DB
}

func NewCarRepository(db *sql.DB) repository.CarRepository {
	return &carRepository{db: wrapDB(db)}
}

func (r *carRepository) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	c := &domain.Car{}
	var discount sql.NullFloat64
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Make, &c.Model, &c.Name, &c.Year, &c.Seats,
		&c.Price2To4Days, &c.Price5To15Days, &c.Price16To30Days, &c.PriceOver30Days,
		&discount, &c.Status, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		return nil, notFound(err, domain.ErrCarNotFound)
	}
	if discount.Valid {
		c.DiscountPercentage = &discount.Float64
	}
	return c, nil
}

func (r *carRepository) List(ctx context.Context, includeHidden bool) ([]domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE status <> $1`
	args := []interface{}{domain.CarStatusDeleted}
	if !includeHidden {
		query += ` AND status <> $2`
		args = append(args, domain.CarStatusHidden)
	}
	query += ` ORDER BY id`

	logger.DatabaseCall("SELECT", "cars.List", "include_hidden", includeHidden)
	var cars []domain.Car
	if err := r.db.SelectContext(ctx, &cars, query, args...); err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	logger.DatabaseResult("SELECT", int64(len(cars)), nil)
	return cars, nil
}
