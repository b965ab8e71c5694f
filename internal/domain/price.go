package domain

// PriceSummary is the derived price breakdown shown before submission.
// It is never persisted; requests and rentals keep their own totals.
type PriceSummary struct {
	PricePerDay     float64 `json:"price_per_day"`
	RentalDays      int     `json:"rental_days"`
	RentalHours     int     `json:"rental_hours"`
	TotalHours      float64 `json:"total_hours"`
	BasePrice       float64 `json:"base_price"`
	AdditionalCosts float64 `json:"additional_costs"`
	TotalPrice      float64 `json:"total_price"`
	BaseCarPrice    float64 `json:"base_car_price"`
}

// RentalDuration is the elapsed time between pickup and return.
type RentalDuration struct {
	Days       int     `json:"days"`
	Hours      int     `json:"hours"`
	TotalHours float64 `json:"total_hours"`
}
