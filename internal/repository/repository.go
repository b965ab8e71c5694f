package repository

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type CarRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Car, error)
	// List returns every car that is not deleted. Hidden cars are only included on request.
	List(ctx context.Context, includeHidden bool) ([]domain.Car, error)
}

type BorrowRequestRepository interface {
	Create(ctx context.Context, req *domain.BorrowRequest) error
	GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error)
	// TransitionStatus moves a request to status `to` only while it is in one of `from`.
	// It returns domain.ErrInvalidStatusTransition when no row matched.
	TransitionStatus(ctx context.Context, id int32, from []domain.RequestStatus, to domain.RequestStatus) error
	UpdateDetails(ctx context.Context, req *domain.BorrowRequest) error
	List(ctx context.Context, filter domain.RequestFilter) ([]domain.BorrowRequest, int32, error)
	CountRecentByEmail(ctx context.Context, email string, since time.Time) (int, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	GetByRequestID(ctx context.Context, requestID int32) (*domain.Rental, error)
	// UpdateStatus is a compare-and-set on rental_status.
	UpdateStatus(ctx context.Context, id int32, from, to domain.RentalStatus) error
	// DeleteByRequestID removes the request's rentals that are still APPROVED
	// or CONTRACT; ACTIVE and COMPLETED rentals are left in place.
	DeleteByRequestID(ctx context.Context, requestID int32) (int64, error)
	// FindOverlapping returns blocking rentals of the car whose [start_date, end_date]
	// intersects [startDate, endDate], both bounds inclusive.
	FindOverlapping(ctx context.Context, carID int32, startDate, endDate string) ([]domain.Rental, error)
	// FindEarliestStartAfter returns the first blocking rental starting strictly after
	// the given date, or nil when there is none.
	FindEarliestStartAfter(ctx context.Context, carID int32, after string) (*domain.Rental, error)
	ListByStatus(ctx context.Context, statuses []domain.RentalStatus) ([]domain.Rental, error)
	List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error)
}
