package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"carrental-backend/internal/domain"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = DateLayout + " " + TimeLayout

	// DefaultPickupTime is assumed when a range carries a date without a time.
	DefaultPickupTime = "10:00"
)

// ParseDate parses a yyyy-mm-dd date as a wall-clock date in UTC.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %q", dateStr)
	}
	return t, nil
}

// ParseDateTime combines a yyyy-mm-dd date and a HH:MM time in the given location.
// Seconds are accepted and ignored so values read back from TIME columns parse too.
func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	timeStr = normalizeTime(timeStr)
	t, err := time.ParseInLocation(DateTimeLayout, strings.TrimSpace(dateStr)+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", dateStr, timeStr, err)
	}
	return t, nil
}

func normalizeTime(timeStr string) string {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return DefaultPickupTime
	}
	if len(timeStr) > 5 {
		return timeStr[:5]
	}
	return timeStr
}

func isMidnight(timeStr string) bool {
	return normalizeTime(timeStr) == "00:00"
}

// ReturnInstant resolves the moment a rental ends. A 00:00 return time means
// "through the end of the previous calendar day".
func ReturnInstant(endDate, endTime string, loc *time.Location) (time.Time, error) {
	end, err := ParseDateTime(endDate, endTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	if isMidnight(endTime) {
		end = end.Add(-time.Millisecond)
	}
	return end, nil
}

// CalculateRentalDuration returns the elapsed days, remaining hours and total
// hours between pickup and return. A non-positive interval yields zeros.
func CalculateRentalDuration(startDate, startTime, endDate, endTime string) (domain.RentalDuration, error) {
	start, err := ParseDateTime(startDate, startTime, time.UTC)
	if err != nil {
		return domain.RentalDuration{}, err
	}
	end, err := ReturnInstant(endDate, endTime, time.UTC)
	if err != nil {
		return domain.RentalDuration{}, err
	}

	totalHours := end.Sub(start).Hours()
	if totalHours <= 0 {
		return domain.RentalDuration{}, nil
	}

	days := int(math.Floor(totalHours / 24))
	// hours may round up to 24; days stays floored so the tier bracket
	// follows the elapsed whole days.
	hours := int(math.Round(math.Mod(totalHours, 24)))
	return domain.RentalDuration{Days: days, Hours: hours, TotalHours: totalHours}, nil
}

// CalculateRentalDays returns the whole calendar days between two dates.
func CalculateRentalDays(startDate, endDate string) (int, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return 0, fmt.Errorf("invalid end date: %w", err)
	}
	return int(math.Round(end.Sub(start).Hours() / 24)), nil
}

// GetTierRate selects the per-day rate bracket for a rental of the given
// whole-day length. Rentals shorter than two days match no bracket.
func GetTierRate(days int, car *domain.Car) float64 {
	if car == nil {
		return 0
	}
	switch {
	case days >= 2 && days <= 4:
		return car.Price2To4Days
	case days >= 5 && days <= 15:
		return car.Price5To15Days
	case days >= 16 && days <= 30:
		return car.Price16To30Days
	case days > 30:
		return car.PriceOver30Days
	default:
		return 0
	}
}

// ApplyDiscount reduces a daily rate by the car's discount percentage, if any.
func ApplyDiscount(rate float64, car *domain.Car) float64 {
	if car == nil || car.DiscountPercentage == nil || *car.DiscountPercentage <= 0 {
		return rate
	}
	return rate * (1 - *car.DiscountPercentage/100)
}

// CalculatePriceSummary builds the price breakdown for a car, a pickup/return
// window and the selected options. It returns nil when the car or a date is
// missing or the window cannot be measured.
//
// Percentage add-ons are charged on the undiscounted tier rate; the discount
// only reduces the base rental price.
func CalculatePriceSummary(car *domain.Car, r domain.DateRange, options domain.OptionsSelection) *domain.PriceSummary {
	if car == nil || r.StartDate == "" || r.EndDate == "" {
		return nil
	}

	duration, err := CalculateRentalDuration(r.StartDate, r.StartTime, r.EndDate, r.EndTime)
	if err != nil || duration.Days < 0 || duration.Hours < 0 ||
		math.IsNaN(duration.TotalHours) {
		return nil
	}

	baseCarPrice := GetTierRate(duration.Days, car)
	pricePerDay := ApplyDiscount(baseCarPrice, car)

	basePrice := pricePerDay*float64(duration.Days) + (float64(duration.Hours)/24)*pricePerDay
	totalDays := duration.TotalHours / 24
	additional := optionsCost(options, baseCarPrice, totalDays)

	return &domain.PriceSummary{
		PricePerDay:     pricePerDay,
		RentalDays:      duration.Days,
		RentalHours:     duration.Hours,
		TotalHours:      duration.TotalHours,
		BasePrice:       basePrice,
		AdditionalCosts: additional,
		TotalPrice:      basePrice + additional,
		BaseCarPrice:    baseCarPrice,
	}
}

// CalculateAmount prices a window from an already known daily rate. Unlike
// CalculatePriceSummary it uses that rate as the base for percentage add-ons,
// so a discounted rate also discounts them.
func CalculateAmount(pricePerDay float64, duration domain.RentalDuration, options domain.OptionsSelection) float64 {
	base := pricePerDay*float64(duration.Days) + (float64(duration.Hours)/24)*pricePerDay
	return base + optionsCost(options, pricePerDay, duration.TotalHours/24)
}

func optionsCost(options domain.OptionsSelection, dailyBase, totalDays float64) float64 {
	var cost float64
	for _, opt := range options.SelectedOptions() {
		switch opt.PricingMode {
		case domain.OptionPricingPercentage:
			cost += dailyBase * totalDays * opt.Rate
		case domain.OptionPricingFixedDaily:
			cost += opt.Rate * totalDays
		}
	}
	return cost
}

// RoundMoney rounds an amount to two decimals for persistence.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
