package http

import (
	"context"
	"time"

	"carrental-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}
func (m *MockAuthService) GetUser(ctx context.Context, userID int32) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) ListCars(ctx context.Context) ([]domain.Car, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Car), args.Error(1)
}
func (m *MockBookingService) Quote(ctx context.Context, carID int32, r domain.DateRange, options map[string]bool) (*domain.PriceSummary, error) {
	args := m.Called(ctx, carID, r, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceSummary), args.Error(1)
}
func (m *MockBookingService) CreateUserBorrowRequest(ctx context.Context, draft *domain.BorrowRequestDraft) (int32, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockBookingService) CreateAdminBorrowRequest(ctx context.Context, draft *domain.BorrowRequestDraft) (*domain.BorrowRequest, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRequest), args.Error(1)
}

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) IsDateUnavailable(ctx context.Context, date time.Time, carID int32) bool {
	return m.Called(ctx, date, carID).Bool(0)
}
func (m *MockAvailabilityService) IsDateInActualApprovedRequest(ctx context.Context, day string, carID int32) bool {
	return m.Called(ctx, day, carID).Bool(0)
}
func (m *MockAvailabilityService) GetEarliestFutureRentalStart(ctx context.Context, reference time.Time, carID int32) *time.Time {
	args := m.Called(ctx, reference, carID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*time.Time)
}
func (m *MockAvailabilityService) CheckRangeAvailable(ctx context.Context, carID int32, startDate, endDate string) error {
	return m.Called(ctx, carID, startDate, endDate).Error(0)
}

type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) GetRequest(ctx context.Context, requestID int32) (*domain.BorrowRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRequest), args.Error(1)
}
func (m *MockRequestService) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.BorrowRequest, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.BorrowRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRequestService) AcceptRequest(ctx context.Context, requestID int32) (*domain.Rental, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRequestService) RejectRequest(ctx context.Context, requestID int32, reason string) error {
	return m.Called(ctx, requestID, reason).Error(0)
}
func (m *MockRequestService) UndoReject(ctx context.Context, requestID int32) error {
	return m.Called(ctx, requestID).Error(0)
}
func (m *MockRequestService) SetPending(ctx context.Context, requestID int32) error {
	return m.Called(ctx, requestID).Error(0)
}
func (m *MockRequestService) EditRequest(ctx context.Context, requestID int32, edit *domain.RequestEdit) (*domain.BorrowRequest, error) {
	args := m.Called(ctx, requestID, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRequest), args.Error(1)
}
func (m *MockRequestService) CancelRental(ctx context.Context, requestID int32) error {
	return m.Called(ctx, requestID).Error(0)
}

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalService) CreateManualRental(ctx context.Context, input *domain.ManualRentalInput) (*domain.Rental, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) IssueContract(ctx context.Context, rentalID int32) (*domain.ContractDocument, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContractDocument), args.Error(1)
}

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) RunStatusTransitionsNow(ctx context.Context) (*domain.TransitionReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionReport), args.Error(1)
}

type fakeRenderer struct {
	contracts []*domain.ContractDocument
	exported  [][]domain.Rental
}

func (f *fakeRenderer) Contract(doc *domain.ContractDocument) ([]byte, error) {
	f.contracts = append(f.contracts, doc)
	return []byte("%PDF-1.3 fake"), nil
}

func (f *fakeRenderer) Rentals(rentals []domain.Rental, cars map[int32]*domain.Car) ([]byte, error) {
	f.exported = append(f.exported, rentals)
	return []byte("PK fake"), nil
}
