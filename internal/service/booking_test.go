package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carrental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var bookingNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type bookingFixture struct {
	requestRepo  *MockRequestRepo
	carRepo      *MockCarRepo
	availability *MockAvailability
	emailSvc     *MockEmailService
	svc          BookingService
}

func newBookingFixture(identity IdentityProvider) *bookingFixture {
	f := &bookingFixture{
		requestRepo:  new(MockRequestRepo),
		carRepo:      new(MockCarRepo),
		availability: new(MockAvailability),
		emailSvc:     new(MockEmailService),
	}
	f.svc = NewBookingService(f.requestRepo, f.carRepo, f.availability, identity, f.emailSvc, BookingPolicy{
		Location: time.UTC,
		FailOpen: true,
		Now:      func() time.Time { return bookingNow },
	})
	return f
}

func validDraft() *domain.BorrowRequestDraft {
	return &domain.BorrowRequestDraft{
		CarID:     5,
		FirstName: " Jane ",
		LastName:  "O'Neil",
		Email:     "Jane@Example.com ",
		Phone:     "+1 555 123 4567",
		StartDate: "2025-06-10",
		StartTime: "10:00",
		EndDate:   "2025-06-13",
		EndTime:   "10:00",
		Comment:   "Please have it washed",
		Options:   map[string]bool{domain.OptionChildSeat: true},
	}
}

func TestBookingService_CreateUserBorrowRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture(staticIdentity{id: 9})
		car := testCar()

		f.requestRepo.On("CountRecentByEmail", ctx, "jane@example.com", bookingNow.Add(-time.Hour)).Return(0, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(car, nil)
		f.availability.On("CheckRangeAvailable", ctx, int32(5), "2025-06-10", "2025-06-13").Return(nil)
		f.requestRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.BorrowRequest) bool {
			return r.CustomerEmail == "jane@example.com" &&
				r.CustomerFirstName == "Jane" &&
				r.Status == domain.RequestStatusPending &&
				r.UserID != nil && *r.UserID == 9 &&
				r.PricePerDay == 1000 &&
				// 3 days at 1000 plus a child seat at 100 per day
				r.TotalAmount == 3300 &&
				r.Options.ChildSeat
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.BorrowRequest).ID = 42
		}).Return(nil)
		f.emailSvc.On("SendRequestReceived", ctx, mock.Anything, car).Return(nil)

		id, err := f.svc.CreateUserBorrowRequest(ctx, validDraft())
		require.NoError(t, err)
		assert.Equal(t, int32(42), id)
		f.requestRepo.AssertExpectations(t)
		f.emailSvc.AssertExpectations(t)
	})

	t.Run("Guest keeps submitted total and survives email failure", func(t *testing.T) {
		f := newBookingFixture(staticIdentity{})
		draft := validDraft()
		draft.TotalAmount = 2999.999

		f.requestRepo.On("CountRecentByEmail", ctx, "jane@example.com", mock.Anything).Return(2, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(testCar(), nil)
		f.availability.On("CheckRangeAvailable", ctx, int32(5), "2025-06-10", "2025-06-13").Return(nil)
		f.requestRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.BorrowRequest) bool {
			return r.UserID == nil && r.TotalAmount == 3000
		})).Return(nil)
		f.emailSvc.On("SendRequestReceived", ctx, mock.Anything, mock.Anything).Return(errors.New("sendgrid down"))

		_, err := f.svc.CreateUserBorrowRequest(ctx, draft)
		assert.NoError(t, err)
	})

	t.Run("Fourth request within the hour is refused", func(t *testing.T) {
		f := newBookingFixture(nil)
		f.requestRepo.On("CountRecentByEmail", ctx, "jane@example.com", mock.Anything).Return(3, nil)

		_, err := f.svc.CreateUserBorrowRequest(ctx, validDraft())
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		f.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Rate check failure", func(t *testing.T) {
		f := newBookingFixture(nil)
		f.requestRepo.On("CountRecentByEmail", ctx, mock.Anything, mock.Anything).Return(0, errors.New("db down"))

		_, err := f.svc.CreateUserBorrowRequest(ctx, validDraft())
		assert.Error(t, err)
		assert.False(t, domain.IsValidationError(err))
	})

	t.Run("Suspicious comment", func(t *testing.T) {
		f := newBookingFixture(nil)
		f.requestRepo.On("CountRecentByEmail", ctx, mock.Anything, mock.Anything).Return(0, nil)
		draft := validDraft()
		draft.Comment = "<script>alert(1)</script>"

		_, err := f.svc.CreateUserBorrowRequest(ctx, draft)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Equal(t, "invalid input detected", err.Error())
	})

	t.Run("Car already booked", func(t *testing.T) {
		f := newBookingFixture(nil)
		f.requestRepo.On("CountRecentByEmail", ctx, mock.Anything, mock.Anything).Return(0, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(testCar(), nil)
		f.availability.On("CheckRangeAvailable", ctx, int32(5), "2025-06-10", "2025-06-13").Return(domain.ErrCarUnavailable)

		_, err := f.svc.CreateUserBorrowRequest(ctx, validDraft())
		assert.ErrorIs(t, err, domain.ErrCarUnavailable)
		f.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Car in maintenance", func(t *testing.T) {
		f := newBookingFixture(nil)
		car := testCar()
		car.Status = domain.CarStatusMaintenance
		f.requestRepo.On("CountRecentByEmail", ctx, mock.Anything, mock.Anything).Return(0, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(car, nil)

		_, err := f.svc.CreateUserBorrowRequest(ctx, validDraft())
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("Unknown car", func(t *testing.T) {
		f := newBookingFixture(nil)
		f.requestRepo.On("CountRecentByEmail", ctx, mock.Anything, mock.Anything).Return(0, nil)
		f.carRepo.On("GetByID", ctx, int32(5)).Return(nil, domain.ErrCarNotFound)

		_, err := f.svc.CreateUserBorrowRequest(ctx, validDraft())
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestBookingService_CreateUserBorrowRequest_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(d *domain.BorrowRequestDraft)
		msg    string
	}{
		{"Missing email", func(d *domain.BorrowRequestDraft) { d.Email = "  " }, "missing customer information"},
		{"Missing last name", func(d *domain.BorrowRequestDraft) { d.LastName = "" }, "missing customer information"},
		{"Bad email", func(d *domain.BorrowRequestDraft) { d.Email = "jane.example.com" }, "invalid email address"},
		{"Digits in name", func(d *domain.BorrowRequestDraft) { d.FirstName = "J4ne" }, "names may only contain letters, spaces, hyphens and apostrophes"},
		{"One letter name", func(d *domain.BorrowRequestDraft) { d.LastName = "D" }, "names may only contain letters, spaces, hyphens and apostrophes"},
		{"Bad phone", func(d *domain.BorrowRequestDraft) { d.Phone = "call me" }, "invalid phone number"},
		{"Unknown option", func(d *domain.BorrowRequestDraft) { d.Options = map[string]bool{"jetpack": true} }, "unknown rental option: [jetpack]"},
		{"Malformed date", func(d *domain.BorrowRequestDraft) { d.StartDate = "10/06/2025" }, "invalid start date"},
		{"Start in the past", func(d *domain.BorrowRequestDraft) { d.StartDate = "2025-05-31" }, "start date cannot be in the past"},
		{"Too far ahead", func(d *domain.BorrowRequestDraft) { d.StartDate = "2025-12-02"; d.EndDate = "2025-12-05" }, "bookings can be made at most 6 months in advance"},
		{"End before start", func(d *domain.BorrowRequestDraft) { d.EndDate = "2025-06-09" }, "end date must be after start date"},
		{"Same day", func(d *domain.BorrowRequestDraft) { d.EndDate = d.StartDate; d.EndTime = "18:00" }, "end date must be after start date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(nil)
			draft := validDraft()
			tt.mutate(draft)

			_, err := f.svc.CreateUserBorrowRequest(ctx, draft)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
			assert.Equal(t, tt.msg, err.Error())
			f.requestRepo.AssertNotCalled(t, "CountRecentByEmail", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("Today is accepted", func(t *testing.T) {
		f := newBookingFixture(nil)
		draft := validDraft()
		draft.StartDate = "2025-06-01"
		f.requestRepo.On("CountRecentByEmail", ctx, mock.Anything, mock.Anything).Return(3, nil)

		_, err := f.svc.CreateUserBorrowRequest(ctx, draft)
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})
}

func TestBookingService_CreateAdminBorrowRequest(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(staticIdentity{id: 1})
	draft := validDraft()
	// Staff may record requests that already started and skip the heuristics.
	draft.StartDate = "2025-05-30"
	draft.Comment = "customer called -- wants blue"

	f.carRepo.On("GetByID", ctx, int32(5)).Return(testCar(), nil)
	f.requestRepo.On("Create", ctx, mock.AnythingOfType("*domain.BorrowRequest")).Return(nil)

	req, err := f.svc.CreateAdminBorrowRequest(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	// 2025-05-30 to 2025-06-13 is 14 days in the 5-15 bracket.
	assert.Equal(t, float64(900), req.PricePerDay)
	assert.Equal(t, float64(14*900+14*100), req.TotalAmount)
	f.requestRepo.AssertNotCalled(t, "CountRecentByEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_Quote(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(nil)
	f.carRepo.On("GetByID", ctx, int32(5)).Return(testCar(), nil)

	r := domain.DateRange{StartDate: "2025-06-10", StartTime: "10:00", EndDate: "2025-06-12", EndTime: "10:00"}
	summary, err := f.svc.Quote(ctx, 5, r, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(2000), summary.TotalPrice)

	_, err = f.svc.Quote(ctx, 5, domain.DateRange{StartDate: "2025-06-10"}, nil)
	assert.True(t, domain.IsValidationError(err))

	_, err = f.svc.Quote(ctx, 5, r, map[string]bool{"nitro": true})
	assert.True(t, domain.IsValidationError(err))
}
