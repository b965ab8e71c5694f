package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

type requestService struct {
	requestRepo  repository.BorrowRequestRepository
	rentalRepo   repository.RentalRepository
	carRepo      repository.CarRepository
	availability AvailabilityService
	emailSvc     EmailService
	loc          *time.Location
}

func NewRequestService(
	requestRepo repository.BorrowRequestRepository,
	rentalRepo repository.RentalRepository,
	carRepo repository.CarRepository,
	availability AvailabilityService,
	emailSvc EmailService,
	loc *time.Location,
) RequestService {
	if loc == nil {
		loc = time.UTC
	}
	return &requestService{
		requestRepo:  requestRepo,
		rentalRepo:   rentalRepo,
		carRepo:      carRepo,
		availability: availability,
		emailSvc:     emailSvc,
		loc:          loc,
	}
}

func (s *requestService) GetRequest(ctx context.Context, requestID int32) (*domain.BorrowRequest, error) {
	return s.requestRepo.GetByID(ctx, requestID)
}

func (s *requestService) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.BorrowRequest, int32, error) {
	return s.requestRepo.List(ctx, filter)
}

// AcceptRequest turns a pending request into an APPROVED rental. The rental is
// written first; if the request cannot then be marked approved the rental is
// kept and an *domain.InconsistencyError is returned.
func (s *requestService) AcceptRequest(ctx context.Context, requestID int32) (*domain.Rental, error) {
	logger.EnterMethod("requestService.AcceptRequest", "requestID", requestID)

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRequestNotPending
		}
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		return nil, domain.ErrRequestNotPending
	}

	if err := s.availability.CheckRangeAvailable(ctx, req.CarID, req.StartDate, req.EndDate); err != nil {
		logger.Warn("Cannot accept request, car unavailable", "request_id", requestID, "car_id", req.CarID, "error", err)
		return nil, err
	}

	rental := &domain.Rental{
		CarID:       req.CarID,
		RequestID:   &req.ID,
		StartDate:   req.StartDate,
		StartTime:   req.StartTime,
		EndDate:     req.EndDate,
		EndTime:     req.EndTime,
		PricePerDay: req.PricePerDay,
		Subtotal:    req.TotalAmount,
		TotalAmount: req.TotalAmount,
		Status:      domain.RentalStatusApproved,
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		logger.ExitMethodWithError("requestService.AcceptRequest", err, "requestID", requestID)
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	if err := s.requestRepo.TransitionStatus(ctx, requestID, []domain.RequestStatus{domain.RequestStatusPending}, domain.RequestStatusApproved); err != nil {
		logger.Error("Rental created but request not approved", "request_id", requestID, "rental_id", rental.ID, "error", err)
		return nil, &domain.InconsistencyError{
			Operation: "accept request",
			Completed: fmt.Sprintf("rental %d created", rental.ID),
			Failed:    "request status update",
			Err:       err,
		}
	}
	req.Status = domain.RequestStatusApproved

	if err := s.emailSvc.SendRequestAccepted(ctx, req, rental); err != nil {
		logger.Error("Failed to send acceptance email", "request_id", requestID, "error", err)
	}

	logger.ExitMethod("requestService.AcceptRequest", "rentalID", rental.ID)
	return rental, nil
}

// RejectRequest rejects a pending or approved request. An approved request's
// rental is cancelled first so the car is released.
func (s *requestService) RejectRequest(ctx context.Context, requestID int32, reason string) error {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.RequestStatusPending && req.Status != domain.RequestStatusApproved {
		return fmt.Errorf("%w: cannot reject a %s request", domain.ErrInvalidStatusTransition, req.Status)
	}

	released := false
	if req.Status == domain.RequestStatusApproved {
		released, err = s.releaseRental(ctx, requestID)
		if err != nil {
			return err
		}
	}

	from := []domain.RequestStatus{domain.RequestStatusPending, domain.RequestStatusApproved}
	if err := s.requestRepo.TransitionStatus(ctx, requestID, from, domain.RequestStatusRejected); err != nil {
		if released {
			return &domain.InconsistencyError{
				Operation: "reject request",
				Completed: "rental cancelled",
				Failed:    "request status update",
				Err:       err,
			}
		}
		return err
	}

	logger.Info("Request rejected", "request_id", requestID, "reason", reason)
	if err := s.emailSvc.SendRequestRejected(ctx, req, reason); err != nil {
		logger.Error("Failed to send rejection email", "request_id", requestID, "error", err)
	}
	return nil
}

// releaseRental marks the live rental of a request CANCELLED. It reports
// whether a rental was changed.
func (s *requestService) releaseRental(ctx context.Context, requestID int32) (bool, error) {
	rental, err := s.rentalRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load rental: %w", err)
	}
	switch rental.Status {
	case domain.RentalStatusApproved, domain.RentalStatusContract:
	case domain.RentalStatusActive:
		return false, fmt.Errorf("%w: rental %d is already in progress", domain.ErrInvalidStatusTransition, rental.ID)
	default:
		return false, nil
	}
	if err := s.rentalRepo.UpdateStatus(ctx, rental.ID, rental.Status, domain.RentalStatusCancelled); err != nil {
		return false, fmt.Errorf("failed to cancel rental: %w", err)
	}
	return true, nil
}

func (s *requestService) UndoReject(ctx context.Context, requestID int32) error {
	from := []domain.RequestStatus{domain.RequestStatusRejected}
	if err := s.requestRepo.TransitionStatus(ctx, requestID, from, domain.RequestStatusPending); err != nil {
		return fmt.Errorf("only rejected requests can be restored: %w", err)
	}
	logger.Info("Request restored to pending", "request_id", requestID)
	return nil
}

// SetPending moves an approved request back to PENDING. A request that still
// holds a live rental must go through CancelRental instead.
func (s *requestService) SetPending(ctx context.Context, requestID int32) error {
	rental, err := s.rentalRepo.GetByRequestID(ctx, requestID)
	switch {
	case err == nil && rental.Status.Blocking():
		return fmt.Errorf("%w: request %d has rental %d, cancel it instead", domain.ErrInvalidStatusTransition, requestID, rental.ID)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("failed to load rental: %w", err)
	}

	from := []domain.RequestStatus{domain.RequestStatusApproved}
	if err := s.requestRepo.TransitionStatus(ctx, requestID, from, domain.RequestStatusPending); err != nil {
		return fmt.Errorf("only approved requests can be set to pending: %w", err)
	}
	logger.Info("Request set to pending", "request_id", requestID)
	return nil
}

// EditRequest applies staff corrections. Customer identity is never editable.
func (s *requestService) EditRequest(ctx context.Context, requestID int32, edit *domain.RequestEdit) (*domain.BorrowRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.RequestStatusApproved {
		return nil, fmt.Errorf("%w: approved requests are locked, cancel the rental first", domain.ErrInvalidStatusTransition)
	}

	repriced := false
	if edit.StartDate != nil {
		req.StartDate = strings.TrimSpace(*edit.StartDate)
		repriced = true
	}
	if edit.StartTime != nil {
		req.StartTime = defaultTime(*edit.StartTime)
		repriced = true
	}
	if edit.EndDate != nil {
		req.EndDate = strings.TrimSpace(*edit.EndDate)
		repriced = true
	}
	if edit.EndTime != nil {
		req.EndTime = defaultTime(*edit.EndTime)
		repriced = true
	}
	if edit.Options != nil {
		sel, err := domain.ParseOptions(*edit.Options)
		if err != nil {
			return nil, err
		}
		req.Options = sel
		repriced = true
	}
	if edit.Comment != nil {
		req.Comment = truncate(strings.TrimSpace(*edit.Comment), maxCommentLength)
	}

	start, err := utils.ParseDateTime(req.StartDate, req.StartTime, s.loc)
	if err != nil {
		return nil, domain.NewValidationError("invalid start date or time")
	}
	end, err := utils.ParseDateTime(req.EndDate, req.EndTime, s.loc)
	if err != nil {
		return nil, domain.NewValidationError("invalid end date or time")
	}
	if !end.After(start) {
		return nil, domain.NewValidationError("end must be after start")
	}

	if repriced {
		car, err := s.carRepo.GetByID(ctx, req.CarID)
		if err != nil {
			return nil, fmt.Errorf("failed to load car: %w", err)
		}
		days, err := utils.CalculateRentalDays(req.StartDate, req.EndDate)
		if err != nil {
			return nil, domain.NewValidationError("invalid rental dates")
		}
		req.PricePerDay = utils.GetTierRate(days, car)
		if edit.TotalAmount == nil {
			summary := utils.CalculatePriceSummary(car, req.Range(), req.Options)
			if summary == nil {
				return nil, domain.NewValidationError("invalid rental period")
			}
			req.TotalAmount = utils.RoundMoney(summary.TotalPrice)
		}
	}
	if edit.TotalAmount != nil {
		if *edit.TotalAmount < 0 {
			return nil, domain.NewValidationError("total amount cannot be negative")
		}
		req.TotalAmount = utils.RoundMoney(*edit.TotalAmount)
	}

	if err := s.requestRepo.UpdateDetails(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}
	logger.Info("Request edited", "request_id", requestID, "repriced", repriced)
	return req, nil
}

// CancelRental deletes the rental of an accepted request and puts the request
// back to PENDING. Only APPROVED requests whose rental has not been handed
// over qualify. A failed delete aborts before the request is touched.
func (s *requestService) CancelRental(ctx context.Context, requestID int32) error {
	logger.EnterMethod("requestService.CancelRental", "requestID", requestID)

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		logger.ExitMethodWithError("requestService.CancelRental", err, "requestID", requestID)
		return err
	}
	if req.Status != domain.RequestStatusApproved {
		return fmt.Errorf("%w: request %d is %s, only approved requests can be cancelled",
			domain.ErrInvalidStatusTransition, requestID, req.Status)
	}

	rental, err := s.rentalRepo.GetByRequestID(ctx, requestID)
	switch {
	case err == nil && (rental.Status == domain.RentalStatusActive || rental.Status == domain.RentalStatusCompleted):
		return fmt.Errorf("%w: rental %d is %s and can no longer be cancelled",
			domain.ErrInvalidStatusTransition, rental.ID, rental.Status)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("failed to load rental: %w", err)
	}

	deleted, err := s.rentalRepo.DeleteByRequestID(ctx, requestID)
	if err != nil {
		logger.ExitMethodWithError("requestService.CancelRental", err, "requestID", requestID)
		return fmt.Errorf("failed to delete rental: %w", err)
	}

	from := []domain.RequestStatus{domain.RequestStatusApproved}
	if err := s.requestRepo.TransitionStatus(ctx, requestID, from, domain.RequestStatusPending); err != nil {
		if deleted > 0 {
			logger.Error("Rental deleted but request not reset", "request_id", requestID, "error", err)
			return &domain.InconsistencyError{
				Operation: "cancel rental",
				Completed: "rental deleted",
				Failed:    "request reset to pending",
				Err:       err,
			}
		}
		return err
	}

	req.Status = domain.RequestStatusPending
	if err := s.emailSvc.SendRentalCancelled(ctx, req); err != nil {
		logger.Error("Failed to send cancellation email", "request_id", requestID, "error", err)
	}

	logger.ExitMethod("requestService.CancelRental", "rentalsDeleted", deleted)
	return nil
}
