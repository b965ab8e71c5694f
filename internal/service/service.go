package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

// IdentityProvider resolves the logged-in user of a call. Guests are allowed.
type IdentityProvider interface {
	CurrentUserID(ctx context.Context) (int32, bool)
}

// LoginLimiter throttles repeated staff login attempts per email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	Reset(ctx context.Context, email string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	GetUser(ctx context.Context, userID int32) (*domain.User, error)
}

type AvailabilityService interface {
	IsDateUnavailable(ctx context.Context, date time.Time, carID int32) bool
	IsDateInActualApprovedRequest(ctx context.Context, day string, carID int32) bool
	GetEarliestFutureRentalStart(ctx context.Context, reference time.Time, carID int32) *time.Time
	CheckRangeAvailable(ctx context.Context, carID int32, startDate, endDate string) error
}

type BookingService interface {
	ListCars(ctx context.Context) ([]domain.Car, error)
	Quote(ctx context.Context, carID int32, r domain.DateRange, options map[string]bool) (*domain.PriceSummary, error)
	CreateUserBorrowRequest(ctx context.Context, draft *domain.BorrowRequestDraft) (int32, error)
	CreateAdminBorrowRequest(ctx context.Context, draft *domain.BorrowRequestDraft) (*domain.BorrowRequest, error)
}

type RequestService interface {
	GetRequest(ctx context.Context, requestID int32) (*domain.BorrowRequest, error)
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.BorrowRequest, int32, error)
	AcceptRequest(ctx context.Context, requestID int32) (*domain.Rental, error)
	RejectRequest(ctx context.Context, requestID int32, reason string) error
	UndoReject(ctx context.Context, requestID int32) error
	SetPending(ctx context.Context, requestID int32) error
	EditRequest(ctx context.Context, requestID int32, edit *domain.RequestEdit) (*domain.BorrowRequest, error)
	CancelRental(ctx context.Context, requestID int32) error
}

type RentalService interface {
	GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error)
	ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error)
	CreateManualRental(ctx context.Context, input *domain.ManualRentalInput) (*domain.Rental, error)
	IssueContract(ctx context.Context, rentalID int32) (*domain.ContractDocument, error)
}

type StatusService interface {
	RunTransitions(ctx context.Context, now time.Time) (*domain.TransitionReport, error)
}

type EmailService interface {
	SendRequestReceived(ctx context.Context, req *domain.BorrowRequest, car *domain.Car) error
	SendRequestAccepted(ctx context.Context, req *domain.BorrowRequest, rental *domain.Rental) error
	SendRequestRejected(ctx context.Context, req *domain.BorrowRequest, reason string) error
	SendRentalCancelled(ctx context.Context, req *domain.BorrowRequest) error
}

// BookingPolicy holds the tunables of request admission.
type BookingPolicy struct {
	RateLimitPerHour int
	MaxAdvanceMonths int
	Location         *time.Location
	FailOpen         bool
	Now              func() time.Time
}

func (p BookingPolicy) withDefaults() BookingPolicy {
	if p.RateLimitPerHour <= 0 {
		p.RateLimitPerHour = 3
	}
	if p.MaxAdvanceMonths <= 0 {
		p.MaxAdvanceMonths = 6
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return p
}
