package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

const (
	maxNameLength    = 100
	maxCommentLength = 100
	maxPhoneLength   = 20
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[A-Za-z\s\-']{2,50}$`)
	phonePattern = regexp.MustCompile(`^[+\d()\-.]{7,20}$`)

	suspiciousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on\w+=`),
		regexp.MustCompile(`\.\./`),
		regexp.MustCompile(`\.\.\\`),
		regexp.MustCompile(`(?i)union\s+select`),
		regexp.MustCompile(`(?i)drop\s+table`),
		regexp.MustCompile(`(?i)insert\s+into`),
		regexp.MustCompile(`(?i)delete\s+from`),
		regexp.MustCompile(`--`),
		regexp.MustCompile(`;--`),
		regexp.MustCompile(`(?i)'\s*or\s*'1'\s*=\s*'1`),
	}
)

type bookingService struct {
	requestRepo  repository.BorrowRequestRepository
	carRepo      repository.CarRepository
	availability AvailabilityService
	identity     IdentityProvider
	emailSvc     EmailService
	policy       BookingPolicy
}

func NewBookingService(
	requestRepo repository.BorrowRequestRepository,
	carRepo repository.CarRepository,
	availability AvailabilityService,
	identity IdentityProvider,
	emailSvc EmailService,
	policy BookingPolicy,
) BookingService {
	return &bookingService{
		requestRepo:  requestRepo,
		carRepo:      carRepo,
		availability: availability,
		identity:     identity,
		emailSvc:     emailSvc,
		policy:       policy.withDefaults(),
	}
}

func (s *bookingService) ListCars(ctx context.Context) ([]domain.Car, error) {
	cars, err := s.carRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	return cars, nil
}

func (s *bookingService) Quote(ctx context.Context, carID int32, r domain.DateRange, options map[string]bool) (*domain.PriceSummary, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	sel, err := domain.ParseOptions(options)
	if err != nil {
		return nil, err
	}
	summary := utils.CalculatePriceSummary(car, r, sel)
	if summary == nil {
		return nil, domain.NewValidationError("invalid rental period")
	}
	return summary, nil
}

// CreateUserBorrowRequest admits a customer booking request. Every rejection is
// returned as an error whose message is safe to show to the customer.
func (s *bookingService) CreateUserBorrowRequest(ctx context.Context, draft *domain.BorrowRequestDraft) (int32, error) {
	logger.EnterMethod("bookingService.CreateUserBorrowRequest", "carID", draft.CarID)

	// 1. Required fields
	if strings.TrimSpace(draft.Email) == "" || strings.TrimSpace(draft.FirstName) == "" || strings.TrimSpace(draft.LastName) == "" {
		return 0, domain.NewValidationError("missing customer information")
	}

	// 2. Sanitize
	clean := sanitizeDraft(draft)

	// 3. Formats
	if err := validateCustomer(clean); err != nil {
		return 0, err
	}
	sel, err := domain.ParseOptions(clean.Options)
	if err != nil {
		return 0, err
	}

	// 4. Dates
	now := s.policy.Now()
	if err := s.validateDates(clean.Range(), now, true); err != nil {
		return 0, err
	}

	// 5. Rate limit
	recent, err := s.requestRepo.CountRecentByEmail(ctx, clean.Email, now.Add(-time.Hour))
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateUserBorrowRequest", err)
		return 0, fmt.Errorf("failed to check request rate: %w", err)
	}
	if recent >= s.policy.RateLimitPerHour {
		logger.Warn("Booking request rate limited", "email", clean.Email, "recent", recent)
		return 0, domain.ErrRateLimited
	}

	// 6. Abuse heuristics
	if looksSuspicious(clean.Email, clean.FirstName, clean.LastName, clean.Comment) {
		logger.Warn("Rejected suspicious booking request", "email", clean.Email)
		return 0, domain.NewValidationError("invalid input detected")
	}

	// 7. Identity
	req := newRequestFromDraft(clean, sel)
	req.UserID = s.currentUser(ctx)

	// 8. Price
	car, err := s.priceRequest(ctx, req, clean.TotalAmount)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateUserBorrowRequest", err)
		return 0, err
	}
	if err := s.availability.CheckRangeAvailable(ctx, req.CarID, req.StartDate, req.EndDate); err != nil {
		return 0, err
	}

	// 9. Persist
	req.Status = domain.RequestStatusPending
	if err := s.requestRepo.Create(ctx, req); err != nil {
		logger.ExitMethodWithError("bookingService.CreateUserBorrowRequest", err)
		return 0, fmt.Errorf("failed to save booking request: %w", err)
	}

	if err := s.emailSvc.SendRequestReceived(ctx, req, car); err != nil {
		logger.Error("Failed to send request confirmation", "request_id", req.ID, "error", err)
	}

	logger.ExitMethod("bookingService.CreateUserBorrowRequest", "requestID", req.ID)
	return req.ID, nil
}

// CreateAdminBorrowRequest records a request taken by staff on behalf of a
// customer. It skips rate limiting and abuse heuristics.
func (s *bookingService) CreateAdminBorrowRequest(ctx context.Context, draft *domain.BorrowRequestDraft) (*domain.BorrowRequest, error) {
	if strings.TrimSpace(draft.Email) == "" || strings.TrimSpace(draft.FirstName) == "" || strings.TrimSpace(draft.LastName) == "" {
		return nil, domain.NewValidationError("missing customer information")
	}
	clean := sanitizeDraft(draft)
	if err := validateCustomer(clean); err != nil {
		return nil, err
	}
	sel, err := domain.ParseOptions(clean.Options)
	if err != nil {
		return nil, err
	}
	if err := s.validateDates(clean.Range(), s.policy.Now(), false); err != nil {
		return nil, err
	}

	req := newRequestFromDraft(clean, sel)
	req.UserID = s.currentUser(ctx)
	if _, err := s.priceRequest(ctx, req, clean.TotalAmount); err != nil {
		return nil, err
	}

	req.Status = domain.RequestStatusPending
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save booking request: %w", err)
	}
	logger.Info("Staff created booking request", "request_id", req.ID, "car_id", req.CarID)
	return req, nil
}

func (s *bookingService) currentUser(ctx context.Context) *int32 {
	if s.identity == nil {
		return nil
	}
	if uid, ok := s.identity.CurrentUserID(ctx); ok {
		return &uid
	}
	return nil
}

// priceRequest fills PricePerDay from the tier table and, when the caller sent
// no total, TotalAmount from the price summary.
func (s *bookingService) priceRequest(ctx context.Context, req *domain.BorrowRequest, submittedTotal float64) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, req.CarID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("selected car does not exist")
		}
		return nil, fmt.Errorf("failed to load car: %w", err)
	}
	if !car.Bookable() {
		return nil, domain.NewValidationError("selected car is not available for booking")
	}

	days, err := utils.CalculateRentalDays(req.StartDate, req.EndDate)
	if err != nil {
		return nil, domain.NewValidationError("invalid rental dates")
	}
	req.PricePerDay = utils.GetTierRate(days, car)

	switch {
	case submittedTotal < 0:
		return nil, domain.NewValidationError("total amount cannot be negative")
	case submittedTotal > 0:
		req.TotalAmount = utils.RoundMoney(submittedTotal)
	default:
		summary := utils.CalculatePriceSummary(car, req.Range(), req.Options)
		if summary == nil {
			return nil, domain.NewValidationError("invalid rental period")
		}
		req.TotalAmount = utils.RoundMoney(summary.TotalPrice)
	}
	return car, nil
}

func (s *bookingService) validateDates(r domain.DateRange, now time.Time, customer bool) error {
	start, err := utils.ParseDate(r.StartDate)
	if err != nil {
		return domain.NewValidationError("invalid start date")
	}
	end, err := utils.ParseDate(r.EndDate)
	if err != nil {
		return domain.NewValidationError("invalid end date")
	}
	if _, err := utils.ParseDateTime(r.StartDate, r.StartTime, s.policy.Location); err != nil {
		return domain.NewValidationError("invalid start time")
	}
	if _, err := utils.ParseDateTime(r.EndDate, r.EndTime, s.policy.Location); err != nil {
		return domain.NewValidationError("invalid end time")
	}
	if !end.After(start) {
		return domain.NewValidationError("end date must be after start date")
	}
	if !customer {
		return nil
	}

	local := now.In(s.policy.Location)
	today := local.Format(utils.DateLayout)
	latest := local.AddDate(0, s.policy.MaxAdvanceMonths, 0).Format(utils.DateLayout)
	startDay := start.Format(utils.DateLayout)
	if startDay < today {
		return domain.NewValidationError("start date cannot be in the past")
	}
	if startDay > latest {
		return domain.NewValidationError(fmt.Sprintf("bookings can be made at most %d months in advance", s.policy.MaxAdvanceMonths))
	}
	return nil
}

func sanitizeDraft(d *domain.BorrowRequestDraft) *domain.BorrowRequestDraft {
	out := *d
	out.FirstName = truncate(strings.TrimSpace(d.FirstName), maxNameLength)
	out.LastName = truncate(strings.TrimSpace(d.LastName), maxNameLength)
	out.Email = strings.ToLower(strings.TrimSpace(d.Email))
	out.Phone = truncate(strings.TrimSpace(d.Phone), maxPhoneLength)
	out.Comment = truncate(strings.TrimSpace(d.Comment), maxCommentLength)
	out.StartDate = strings.TrimSpace(d.StartDate)
	out.EndDate = strings.TrimSpace(d.EndDate)
	out.StartTime = defaultTime(d.StartTime)
	out.EndTime = defaultTime(d.EndTime)
	return &out
}

func defaultTime(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return utils.DefaultPickupTime
	}
	return t
}

func validateCustomer(d *domain.BorrowRequestDraft) error {
	if !emailPattern.MatchString(d.Email) {
		return domain.NewValidationError("invalid email address")
	}
	if !namePattern.MatchString(d.FirstName) || !namePattern.MatchString(d.LastName) {
		return domain.NewValidationError("names may only contain letters, spaces, hyphens and apostrophes")
	}
	if d.Phone != "" && !phonePattern.MatchString(strings.ReplaceAll(d.Phone, " ", "")) {
		return domain.NewValidationError("invalid phone number")
	}
	return nil
}

func looksSuspicious(fields ...string) bool {
	for _, f := range fields {
		for _, p := range suspiciousPatterns {
			if p.MatchString(f) {
				return true
			}
		}
	}
	return false
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func newRequestFromDraft(d *domain.BorrowRequestDraft, sel domain.OptionsSelection) *domain.BorrowRequest {
	return &domain.BorrowRequest{
		CarID:             d.CarID,
		CustomerFirstName: d.FirstName,
		CustomerLastName:  d.LastName,
		CustomerEmail:     d.Email,
		CustomerPhone:     d.Phone,
		StartDate:         d.StartDate,
		StartTime:         d.StartTime,
		EndDate:           d.EndDate,
		EndTime:           d.EndTime,
		Comment:           d.Comment,
		Options:           sel,
	}
}
