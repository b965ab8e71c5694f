package service

import (
	"context"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

type availabilityService struct {
	rentalRepo repository.RentalRepository
	loc        *time.Location
	failOpen   bool
}

// NewAvailabilityService builds the calendar checks. With failOpen set a storage
// error reads as "available"; otherwise it reads as "booked".
func NewAvailabilityService(rentalRepo repository.RentalRepository, loc *time.Location, failOpen bool) AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	return &availabilityService{
		rentalRepo: rentalRepo,
		loc:        loc,
		failOpen:   failOpen,
	}
}

func (s *availabilityService) IsDateUnavailable(ctx context.Context, date time.Time, carID int32) bool {
	return s.dayBooked(ctx, date.In(s.loc).Format(utils.DateLayout), carID)
}

func (s *availabilityService) IsDateInActualApprovedRequest(ctx context.Context, day string, carID int32) bool {
	d, err := utils.ParseDate(day)
	if err != nil {
		logger.Debug("Ignoring malformed calendar day", "day", day, "car_id", carID)
		return false
	}
	return s.dayBooked(ctx, d.Format(utils.DateLayout), carID)
}

func (s *availabilityService) dayBooked(ctx context.Context, day string, carID int32) bool {
	rentals, err := s.rentalRepo.FindOverlapping(ctx, carID, day, day)
	if err != nil {
		logger.Warn("Availability lookup failed", "car_id", carID, "day", day, "fail_open", s.failOpen, "error", err)
		return !s.failOpen
	}
	return len(rentals) > 0
}

func (s *availabilityService) GetEarliestFutureRentalStart(ctx context.Context, reference time.Time, carID int32) *time.Time {
	ref := reference.In(s.loc)
	next, err := s.rentalRepo.FindEarliestStartAfter(ctx, carID, ref.Format(utils.DateLayout))
	if err != nil {
		logger.Warn("Earliest rental lookup failed", "car_id", carID, "fail_open", s.failOpen, "error", err)
		if s.failOpen {
			return nil
		}
		// Closed: treat the reference day itself as taken.
		return &ref
	}
	if next == nil {
		return nil
	}
	start, err := utils.ParseDate(next.StartDate)
	if err != nil {
		logger.Warn("Rental has malformed start date", "rental_id", next.ID, "start_date", next.StartDate)
		return nil
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.loc)
	return &start
}

func (s *availabilityService) CheckRangeAvailable(ctx context.Context, carID int32, startDate, endDate string) error {
	rentals, err := s.rentalRepo.FindOverlapping(ctx, carID, startDate, endDate)
	if err != nil {
		if s.failOpen {
			logger.Warn("Range availability lookup failed, allowing booking", "car_id", carID, "error", err)
			return nil
		}
		return fmt.Errorf("failed to check availability: %w", err)
	}
	if len(rentals) == 0 {
		return nil
	}
	first := rentals[0]
	for _, r := range rentals[1:] {
		if r.StartDate < first.StartDate {
			first = r
		}
	}
	return fmt.Errorf("%w: booked from %s to %s", domain.ErrCarUnavailable, first.StartDate, first.EndDate)
}
