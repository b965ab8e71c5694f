package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockCarRepo
type MockCarRepo struct {
	mock.Mock
}

func (m *MockCarRepo) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}
func (m *MockCarRepo) List(ctx context.Context, includeHidden bool) ([]domain.Car, error) {
	args := m.Called(ctx, includeHidden)
	return args.Get(0).([]domain.Car), args.Error(1)
}

// MockRequestRepo
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Create(ctx context.Context, req *domain.BorrowRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRequest), args.Error(1)
}
func (m *MockRequestRepo) TransitionStatus(ctx context.Context, id int32, from []domain.RequestStatus, to domain.RequestStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockRequestRepo) UpdateDetails(ctx context.Context, req *domain.BorrowRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) List(ctx context.Context, filter domain.RequestFilter) ([]domain.BorrowRequest, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.BorrowRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRequestRepo) CountRecentByEmail(ctx context.Context, email string, since time.Time) (int, error) {
	args := m.Called(ctx, email, since)
	return args.Int(0), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetByRequestID(ctx context.Context, requestID int32) (*domain.Rental, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) UpdateStatus(ctx context.Context, id int32, from, to domain.RentalStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockRentalRepo) DeleteByRequestID(ctx context.Context, requestID int32) (int64, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockRentalRepo) FindOverlapping(ctx context.Context, carID int32, startDate, endDate string) ([]domain.Rental, error) {
	args := m.Called(ctx, carID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) FindEarliestStartAfter(ctx context.Context, carID int32, after string) (*domain.Rental, error) {
	args := m.Called(ctx, carID, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByStatus(ctx context.Context, statuses []domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}

// MockAvailability
type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) IsDateUnavailable(ctx context.Context, date time.Time, carID int32) bool {
	return m.Called(ctx, date, carID).Bool(0)
}
func (m *MockAvailability) IsDateInActualApprovedRequest(ctx context.Context, day string, carID int32) bool {
	return m.Called(ctx, day, carID).Bool(0)
}
func (m *MockAvailability) GetEarliestFutureRentalStart(ctx context.Context, reference time.Time, carID int32) *time.Time {
	args := m.Called(ctx, reference, carID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*time.Time)
}
func (m *MockAvailability) CheckRangeAvailable(ctx context.Context, carID int32, startDate, endDate string) error {
	return m.Called(ctx, carID, startDate, endDate).Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRequestReceived(ctx context.Context, req *domain.BorrowRequest, car *domain.Car) error {
	return m.Called(ctx, req, car).Error(0)
}
func (m *MockEmailService) SendRequestAccepted(ctx context.Context, req *domain.BorrowRequest, rental *domain.Rental) error {
	return m.Called(ctx, req, rental).Error(0)
}
func (m *MockEmailService) SendRequestRejected(ctx context.Context, req *domain.BorrowRequest, reason string) error {
	return m.Called(ctx, req, reason).Error(0)
}
func (m *MockEmailService) SendRentalCancelled(ctx context.Context, req *domain.BorrowRequest) error {
	return m.Called(ctx, req).Error(0)
}

// MockLoginLimiter
type MockLoginLimiter struct {
	mock.Mock
}

func (m *MockLoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoginLimiter) Reset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type staticIdentity struct {
	id int32
}

func (s staticIdentity) CurrentUserID(ctx context.Context) (int32, bool) {
	return s.id, s.id != 0
}

func testCar() *domain.Car {
	return &domain.Car{
		ID:              5,
		Make:            "Toyota",
		Model:           "Corolla",
		Price2To4Days:   1000,
		Price5To15Days:  900,
		Price16To30Days: 800,
		PriceOver30Days: 700,
		Status:          domain.CarStatusAvailable,
	}
}
