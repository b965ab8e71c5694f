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

type rentalService struct {
	rentalRepo   repository.RentalRepository
	requestRepo  repository.BorrowRequestRepository
	carRepo      repository.CarRepository
	availability AvailabilityService
	loc          *time.Location
	now          func() time.Time
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	requestRepo repository.BorrowRequestRepository,
	carRepo repository.CarRepository,
	availability AvailabilityService,
	loc *time.Location,
) RentalService {
	if loc == nil {
		loc = time.UTC
	}
	return &rentalService{
		rentalRepo:   rentalRepo,
		requestRepo:  requestRepo,
		carRepo:      carRepo,
		availability: availability,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *rentalService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	return s.rentalRepo.List(ctx, filter)
}

// CreateManualRental books a car directly for a walk-in or phone customer.
func (s *rentalService) CreateManualRental(ctx context.Context, input *domain.ManualRentalInput) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CreateManualRental", "carID", input.CarID)

	name := truncate(strings.TrimSpace(input.CustomerName), maxNameLength)
	if name == "" {
		return nil, domain.NewValidationError("customer name is required")
	}
	phone := truncate(strings.TrimSpace(input.CustomerPhone), maxPhoneLength)
	if phone != "" && !phonePattern.MatchString(strings.ReplaceAll(phone, " ", "")) {
		return nil, domain.NewValidationError("invalid phone number")
	}
	if input.TaxesFees < 0 || input.AdditionalTaxes < 0 {
		return nil, domain.NewValidationError("taxes cannot be negative")
	}

	r := input.Range()
	r.StartTime = defaultTime(r.StartTime)
	r.EndTime = defaultTime(r.EndTime)
	start, err := utils.ParseDateTime(r.StartDate, r.StartTime, s.loc)
	if err != nil {
		return nil, domain.NewValidationError("invalid start date or time")
	}
	end, err := utils.ParseDateTime(r.EndDate, r.EndTime, s.loc)
	if err != nil {
		return nil, domain.NewValidationError("invalid end date or time")
	}
	if !end.After(start) {
		return nil, domain.NewValidationError("end must be after start")
	}

	sel, err := domain.ParseOptions(input.Options)
	if err != nil {
		return nil, err
	}

	car, err := s.carRepo.GetByID(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	if !car.Bookable() {
		return nil, domain.NewValidationError("selected car is not available for booking")
	}

	if err := s.availability.CheckRangeAvailable(ctx, car.ID, r.StartDate, r.EndDate); err != nil {
		return nil, err
	}

	summary := utils.CalculatePriceSummary(car, r, sel)
	if summary == nil {
		return nil, domain.NewValidationError("invalid rental period")
	}
	subtotal := utils.RoundMoney(summary.TotalPrice)

	rental := &domain.Rental{
		CarID:           car.ID,
		StartDate:       r.StartDate,
		StartTime:       r.StartTime,
		EndDate:         r.EndDate,
		EndTime:         r.EndTime,
		CustomerName:    name,
		CustomerPhone:   phone,
		PricePerDay:     utils.RoundMoney(summary.PricePerDay),
		Subtotal:        subtotal,
		TaxesFees:       utils.RoundMoney(input.TaxesFees),
		AdditionalTaxes: utils.RoundMoney(input.AdditionalTaxes),
		TotalAmount:     utils.RoundMoney(subtotal + input.TaxesFees + input.AdditionalTaxes),
		Status:          domain.RentalStatusApproved,
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		logger.ExitMethodWithError("rentalService.CreateManualRental", err)
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	logger.ExitMethod("rentalService.CreateManualRental", "rentalID", rental.ID)
	return rental, nil
}

// IssueContract moves an APPROVED rental to CONTRACT and gathers what the
// contract prints. Reissuing for a CONTRACT or ACTIVE rental is allowed.
func (s *rentalService) IssueContract(ctx context.Context, rentalID int32) (*domain.ContractDocument, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	switch rental.Status {
	case domain.RentalStatusApproved:
		if err := s.rentalRepo.UpdateStatus(ctx, rental.ID, domain.RentalStatusApproved, domain.RentalStatusContract); err != nil {
			return nil, fmt.Errorf("failed to issue contract: %w", err)
		}
		rental.Status = domain.RentalStatusContract
		logger.Info("Contract issued", "rental_id", rental.ID)
	case domain.RentalStatusContract, domain.RentalStatusActive:
		logger.Debug("Reissuing contract", "rental_id", rental.ID, "status", rental.Status)
	default:
		return nil, fmt.Errorf("%w: no contract for a %s rental", domain.ErrInvalidStatusTransition, rental.Status)
	}

	car, err := s.carRepo.GetByID(ctx, rental.CarID)
	if err != nil {
		return nil, fmt.Errorf("failed to load car: %w", err)
	}

	doc := &domain.ContractDocument{
		Rental: rental,
		Car:    car,
		Issued: s.now().In(s.loc),
	}
	if rental.RequestID != nil {
		req, err := s.requestRepo.GetByID(ctx, *rental.RequestID)
		switch {
		case err == nil:
			doc.Request = req
			doc.Options = req.Options.SelectedOptions()
		case errors.Is(err, domain.ErrNotFound):
			logger.Warn("Rental references a missing request", "rental_id", rental.ID, "request_id", *rental.RequestID)
		default:
			return nil, fmt.Errorf("failed to load request: %w", err)
		}
	}
	return doc, nil
}
