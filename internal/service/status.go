package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

type statusService struct {
	rentalRepo repository.RentalRepository
	loc        *time.Location
}

func NewStatusService(rentalRepo repository.RentalRepository, loc *time.Location) StatusService {
	if loc == nil {
		loc = time.UTC
	}
	return &statusService{rentalRepo: rentalRepo, loc: loc}
}

// RunTransitions moves confirmed rentals along their timeline: to ACTIVE once
// pickup has passed and to COMPLETED once return has passed. A failing record
// is counted and skipped. Running it twice for the same instant changes nothing
// the second time.
func (s *statusService) RunTransitions(ctx context.Context, now time.Time) (*domain.TransitionReport, error) {
	rentals, err := s.rentalRepo.ListByStatus(ctx, domain.BlockingRentalStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load rentals: %w", err)
	}

	report := &domain.TransitionReport{Scanned: len(rentals)}
	for _, rt := range rentals {
		target, err := s.targetStatus(&rt, now)
		if err != nil {
			logger.Warn("Skipping rental with unreadable dates", "rental_id", rt.ID, "error", err)
			report.Failed++
			continue
		}
		if target == rt.Status {
			report.Unchanged++
			continue
		}

		if err := s.rentalRepo.UpdateStatus(ctx, rt.ID, rt.Status, target); err != nil {
			if errors.Is(err, domain.ErrInvalidStatusTransition) {
				// Moved by a concurrent sweep or by staff.
				report.Unchanged++
				continue
			}
			logger.Error("Failed to transition rental", "rental_id", rt.ID, "from", rt.Status, "to", target, "error", err)
			report.Failed++
			continue
		}

		logger.Debug("Rental transitioned", "rental_id", rt.ID, "from", rt.Status, "to", target)
		if target == domain.RentalStatusCompleted {
			report.Completed++
		} else {
			report.Executed++
		}
	}

	logger.Info("Status transitions finished",
		"scanned", report.Scanned,
		"executed", report.Executed,
		"completed", report.Completed,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *statusService) targetStatus(rt *domain.Rental, now time.Time) (domain.RentalStatus, error) {
	start, err := utils.ParseDateTime(rt.StartDate, rt.StartTime, s.loc)
	if err != nil {
		return rt.Status, err
	}
	end, err := utils.ReturnInstant(rt.EndDate, rt.EndTime, s.loc)
	if err != nil {
		return rt.Status, err
	}

	switch {
	case !now.Before(end):
		return domain.RentalStatusCompleted, nil
	case !now.Before(start):
		return domain.RentalStatusActive, nil
	default:
		return rt.Status, nil
	}
}
