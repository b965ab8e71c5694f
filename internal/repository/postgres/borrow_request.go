package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const requestTable = "borrow_requests"

const requestColumns = `id, user_id, car_id, customer_first_name, customer_last_name, customer_email,
	COALESCE(customer_phone, '') AS customer_phone,
	to_char(start_date, 'YYYY-MM-DD') AS start_date, to_char(start_time, 'HH24:MI') AS start_time,
	to_char(end_date, 'YYYY-MM-DD') AS end_date, to_char(end_time, 'HH24:MI') AS end_time,
	COALESCE(comment, '') AS comment, options, price_per_day, total_amount, status, requested_at, updated_at`

type borrowRequestRepository struct {
	db *sqlx.DB
}

func NewBorrowRequestRepository(db *sql.DB) repository.BorrowRequestRepository {
	return &borrowRequestRepository{db: wrapDB(db)}
}

func (r *borrowRequestRepository) Create(ctx context.Context, req *domain.BorrowRequest) error {
	query := `INSERT INTO borrow_requests (user_id, car_id, customer_first_name, customer_last_name, customer_email, customer_phone,
	          start_date, start_time, end_date, end_time, comment, options, price_per_day, total_amount, status, requested_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	now := time.Now().UTC()
	req.RequestedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	}

	logger.DatabaseCall("INSERT", "borrow_requests.Create", "car_id", req.CarID)
	err := r.db.QueryRowContext(ctx, query, req.UserID, req.CarID, req.CustomerFirstName, req.CustomerLastName,
		req.CustomerEmail, req.CustomerPhone, req.StartDate, req.StartTime, req.EndDate, req.EndTime, req.Comment,
		req.Options, req.PricePerDay, req.TotalAmount, req.Status, req.RequestedAt, req.UpdatedAt).Scan(&req.ID)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return fmt.Errorf("failed to insert borrow request: %w", err)
	}
	logger.DatabaseResult("INSERT", 1, nil, "request_id", req.ID)
	return nil
}

func (r *borrowRequestRepository) GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	req := &domain.BorrowRequest{}
	query := `SELECT ` + requestColumns + ` FROM borrow_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, req, query, id); err != nil {
		return nil, notFound(err, domain.ErrRequestNotFound)
	}
	return req, nil
}

func (r *borrowRequestRepository) TransitionStatus(ctx context.Context, id int32, from []domain.RequestStatus, to domain.RequestStatus) error {
	query := `UPDATE borrow_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = ANY($4)`

	logger.DatabaseCall("UPDATE", "borrow_requests.TransitionStatus", "request_id", id, "to", to)
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, pq.Array(requestStatusStrings(from)))
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return fmt.Errorf("failed to update request status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	logger.DatabaseResult("UPDATE", n, nil)
	if n == 0 {
		return fmt.Errorf("request %d to %s: %w", id, to, domain.ErrInvalidStatusTransition)
	}
	return nil
}

func (r *borrowRequestRepository) UpdateDetails(ctx context.Context, req *domain.BorrowRequest) error {
	query := `UPDATE borrow_requests SET start_date=$1, start_time=$2, end_date=$3, end_time=$4, total_amount=$5,
	          price_per_day=$6, options=$7, comment=$8, updated_at=$9 WHERE id=$10`
	req.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, req.StartDate, req.StartTime, req.EndDate, req.EndTime, req.TotalAmount,
		req.PricePerDay, req.Options, req.Comment, req.UpdatedAt, req.ID)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *borrowRequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.BorrowRequest, int32, error) {
	where := goqu.Ex{}
	if filter.Status != "" {
		where["status"] = string(filter.Status)
	}
	if filter.CarID > 0 {
		where["car_id"] = filter.CarID
	}
	if filter.CustomerEmail != "" {
		where["customer_email"] = filter.CustomerEmail
	}

	base := dialect.From(requestTable).Prepared(true)
	if len(where) > 0 {
		base = base.Where(where)
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var count int32
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	sortCol := string(filter.SortBy)
	switch filter.SortBy {
	case domain.RequestSortStartDate, domain.RequestSortTotalAmount, domain.RequestSortRequestedAt:
	default:
		sortCol = string(domain.RequestSortRequestedAt)
	}
	order := goqu.I(sortCol).Asc()
	if filter.Descending {
		order = goqu.I(sortCol).Desc()
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	listSQL, listArgs, err := base.
		Select(goqu.L(requestColumns)).
		Order(order, goqu.I("id").Asc()).
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	logger.DatabaseCall("SELECT", "borrow_requests.List", "status", filter.Status, "car_id", filter.CarID)
	var requests []domain.BorrowRequest
	if err := r.db.SelectContext(ctx, &requests, listSQL, listArgs...); err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	logger.DatabaseResult("SELECT", int64(len(requests)), nil)
	return requests, count, nil
}

func (r *borrowRequestRepository) CountRecentByEmail(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	query := `SELECT count(*) FROM borrow_requests WHERE customer_email = $1 AND requested_at >= $2`
	if err := r.db.QueryRowContext(ctx, query, email, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent requests: %w", err)
	}
	return count, nil
}
