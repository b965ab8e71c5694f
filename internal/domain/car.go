package domain

import "time"

type CarStatus string

const (
	CarStatusAvailable   CarStatus = "available"
	CarStatusMaintenance CarStatus = "maintenance"
	CarStatusHidden      CarStatus = "hidden"
	CarStatusDeleted     CarStatus = "deleted"
)

// Car is a fleet vehicle with per-day rates that depend on the rental length.
type Car struct {
	ID                 int32     `json:"id" db:"id"`
	Make               string    `json:"make" db:"make"`
	Model              string    `json:"model" db:"model"`
	Name               string    `json:"name" db:"name"`
	Year               int32     `json:"year" db:"year"`
	Seats              int32     `json:"seats" db:"seats"`
	Price2To4Days      float64   `json:"price_2_4_days" db:"price_2_4_days"`
	Price5To15Days     float64   `json:"price_5_15_days" db:"price_5_15_days"`
	Price16To30Days    float64   `json:"price_16_30_days" db:"price_16_30_days"`
	PriceOver30Days    float64   `json:"price_over_30_days" db:"price_over_30_days"`
	DiscountPercentage *float64  `json:"discount_percentage,omitempty" db:"discount_percentage"`
	Status             CarStatus `json:"status" db:"status"`
	CreatedOn          time.Time `json:"created_on" db:"created_on"`
	UpdatedOn          time.Time `json:"updated_on" db:"updated_on"`
}

// DisplayName prefers the marketing name and falls back to make and model.
func (c *Car) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Make + " " + c.Model
}

func (c *Car) Bookable() bool {
	return c.Status == CarStatusAvailable
}
