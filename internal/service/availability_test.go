package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carrental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityService_IsDateUnavailable(t *testing.T) {
	ctx := context.Background()
	booked := []domain.Rental{{ID: 1, CarID: 5, StartDate: "2025-06-10", EndDate: "2025-06-12", Status: domain.RentalStatusApproved}}

	t.Run("Covered days are unavailable", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		svc := NewAvailabilityService(rentalRepo, time.UTC, true)

		for _, day := range []string{"2025-06-10", "2025-06-11", "2025-06-12"} {
			rentalRepo.On("FindOverlapping", ctx, int32(5), day, day).Return(booked, nil)
		}
		rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-09", "2025-06-09").Return([]domain.Rental{}, nil)
		rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-13", "2025-06-13").Return([]domain.Rental{}, nil)

		// Both inclusive bounds and any time of day on the last day.
		assert.False(t, svc.IsDateUnavailable(ctx, time.Date(2025, 6, 9, 23, 59, 59, 0, time.UTC), 5))
		assert.True(t, svc.IsDateUnavailable(ctx, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), 5))
		assert.True(t, svc.IsDateUnavailable(ctx, time.Date(2025, 6, 11, 13, 0, 0, 0, time.UTC), 5))
		assert.True(t, svc.IsDateUnavailable(ctx, time.Date(2025, 6, 12, 23, 59, 59, 0, time.UTC), 5))
		assert.False(t, svc.IsDateUnavailable(ctx, time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC), 5))
	})

	t.Run("Day is taken in the booking zone", func(t *testing.T) {
		loc, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)
		rentalRepo := new(MockRentalRepo)
		svc := NewAvailabilityService(rentalRepo, loc, true)

		// 16:00 UTC on the 9th is already the 10th in Tokyo.
		rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-10", "2025-06-10").Return(booked, nil)
		assert.True(t, svc.IsDateUnavailable(ctx, time.Date(2025, 6, 9, 16, 0, 0, 0, time.UTC), 5))
	})

	t.Run("Storage failure fails open", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		svc := NewAvailabilityService(rentalRepo, time.UTC, true)
		rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-10", "2025-06-10").Return(nil, errors.New("connection refused"))

		assert.False(t, svc.IsDateUnavailable(ctx, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), 5))
	})

	t.Run("Storage failure fails closed when configured", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		svc := NewAvailabilityService(rentalRepo, time.UTC, false)
		rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-10", "2025-06-10").Return(nil, errors.New("connection refused"))

		assert.True(t, svc.IsDateUnavailable(ctx, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), 5))
	})
}

func TestAvailabilityService_IsDateInActualApprovedRequest(t *testing.T) {
	ctx := context.Background()
	rentalRepo := new(MockRentalRepo)
	svc := NewAvailabilityService(rentalRepo, time.UTC, true)

	rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-11", "2025-06-11").
		Return([]domain.Rental{{ID: 1, StartDate: "2025-06-10", EndDate: "2025-06-12"}}, nil)

	assert.True(t, svc.IsDateInActualApprovedRequest(ctx, "2025-06-11", 5))
	assert.False(t, svc.IsDateInActualApprovedRequest(ctx, "11/06/2025", 5))
	rentalRepo.AssertNumberOfCalls(t, "FindOverlapping", 1)
}

func TestAvailabilityService_GetEarliestFutureRentalStart(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	t.Run("Next booking", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		svc := NewAvailabilityService(rentalRepo, time.UTC, true)
		rentalRepo.On("FindEarliestStartAfter", ctx, int32(5), "2025-06-01").
			Return(&domain.Rental{ID: 3, StartDate: "2025-06-20", StartTime: "10:00"}, nil)

		next := svc.GetEarliestFutureRentalStart(ctx, ref, 5)
		require.NotNil(t, next)
		assert.Equal(t, "2025-06-20", next.Format("2006-01-02"))
	})

	t.Run("Nothing booked", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		svc := NewAvailabilityService(rentalRepo, time.UTC, true)
		rentalRepo.On("FindEarliestStartAfter", ctx, int32(5), "2025-06-01").Return(nil, nil)

		assert.Nil(t, svc.GetEarliestFutureRentalStart(ctx, ref, 5))
	})

	t.Run("Storage failure", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		rentalRepo.On("FindEarliestStartAfter", ctx, int32(5), "2025-06-01").Return(nil, errors.New("timeout"))

		assert.Nil(t, NewAvailabilityService(rentalRepo, time.UTC, true).GetEarliestFutureRentalStart(ctx, ref, 5))

		closed := NewAvailabilityService(rentalRepo, time.UTC, false).GetEarliestFutureRentalStart(ctx, ref, 5)
		require.NotNil(t, closed)
		assert.True(t, closed.Equal(ref))
	})
}

func TestAvailabilityService_CheckRangeAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("Free range", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		svc := NewAvailabilityService(rentalRepo, time.UTC, true)
		rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-01", "2025-06-05").Return([]domain.Rental{}, nil)

		assert.NoError(t, svc.CheckRangeAvailable(ctx, 5, "2025-06-01", "2025-06-05"))
	})

	t.Run("Range spanning a later booking", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		svc := NewAvailabilityService(rentalRepo, time.UTC, true)
		rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-01", "2025-06-30").Return([]domain.Rental{
			{ID: 8, StartDate: "2025-06-20", EndDate: "2025-06-22"},
			{ID: 7, StartDate: "2025-06-10", EndDate: "2025-06-12"},
		}, nil)

		err := svc.CheckRangeAvailable(ctx, 5, "2025-06-01", "2025-06-30")
		assert.ErrorIs(t, err, domain.ErrCarUnavailable)
		assert.Contains(t, err.Error(), "booked from 2025-06-10 to 2025-06-12")
	})

	t.Run("Storage failure", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		rentalRepo.On("FindOverlapping", ctx, int32(5), "2025-06-01", "2025-06-05").Return(nil, errors.New("timeout"))

		assert.NoError(t, NewAvailabilityService(rentalRepo, time.UTC, true).CheckRangeAvailable(ctx, 5, "2025-06-01", "2025-06-05"))
		assert.Error(t, NewAvailabilityService(rentalRepo, time.UTC, false).CheckRangeAvailable(ctx, 5, "2025-06-01", "2025-06-05"))
	})
}
