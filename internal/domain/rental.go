package domain

import "time"

type RentalStatus string

const (
	// RentalStatusApproved is the transient state between accepting a request and issuing the contract.
	RentalStatusApproved  RentalStatus = "APPROVED"
	RentalStatusContract  RentalStatus = "CONTRACT"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

// BlockingRentalStatuses are the statuses that make a car unavailable for the covered days.
var BlockingRentalStatuses = []RentalStatus{
	RentalStatusApproved,
	RentalStatusContract,
	RentalStatusActive,
}

// CancellableRentalStatuses are the statuses a rental may be withdrawn from
// before the car is handed over.
var CancellableRentalStatuses = []RentalStatus{
	RentalStatusApproved,
	RentalStatusContract,
}

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusApproved, RentalStatusContract, RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

func (s RentalStatus) Blocking() bool {
	for _, b := range BlockingRentalStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// Rental is a confirmed booking. CustomerName and CustomerPhone are only
// filled for staff bookings made without a request.
type Rental struct {
	ID              int32        `json:"id" db:"id"`
	CarID           int32        `json:"car_id" db:"car_id"`
	RequestID       *int32       `json:"request_id,omitempty" db:"request_id"`
	StartDate       string       `json:"start_date" db:"start_date"`
	StartTime       string       `json:"start_time" db:"start_time"`
	EndDate         string       `json:"end_date" db:"end_date"`
	EndTime         string       `json:"end_time" db:"end_time"`
	CustomerName    string       `json:"customer_name" db:"customer_name"`
	CustomerPhone   string       `json:"customer_phone" db:"customer_phone"`
	PricePerDay     float64      `json:"price_per_day" db:"price_per_day"`
	Subtotal        float64      `json:"subtotal" db:"subtotal"`
	TaxesFees       float64      `json:"taxes_fees" db:"taxes_fees"`
	AdditionalTaxes float64      `json:"additional_taxes" db:"additional_taxes"`
	TotalAmount     float64      `json:"total_amount" db:"total_amount"`
	Status          RentalStatus `json:"rental_status" db:"rental_status"`
	CreatedOn       time.Time    `json:"created_on" db:"created_on"`
	UpdatedOn       time.Time    `json:"updated_on" db:"updated_on"`
}

func (r *Rental) Range() DateRange {
	return DateRange{StartDate: r.StartDate, StartTime: r.StartTime, EndDate: r.EndDate, EndTime: r.EndTime}
}

// ManualRentalInput is a staff booking made directly against a car.
type ManualRentalInput struct {
	CarID           int32           `json:"car_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	StartDate       string          `json:"start_date"`
	StartTime       string          `json:"start_time"`
	EndDate         string          `json:"end_date"`
	EndTime         string          `json:"end_time"`
	Options         map[string]bool `json:"options"`
	TaxesFees       float64         `json:"taxes_fees"`
	AdditionalTaxes float64         `json:"additional_taxes"`
}

func (in *ManualRentalInput) Range() DateRange {
	return DateRange{StartDate: in.StartDate, StartTime: in.StartTime, EndDate: in.EndDate, EndTime: in.EndTime}
}

type RentalFilter struct {
	CarID    int32
	Statuses []RentalStatus
	From     string
	To       string
	Page     int32
	PageSize int32
}

// ContractDocument is everything printed on a rental contract.
type ContractDocument struct {
	Rental  *Rental
	Car     *Car
	Request *BorrowRequest
	Options []RentalOption
	Issued  time.Time
}

// TransitionReport summarises one status sweep.
type TransitionReport struct {
	Scanned   int `json:"scanned"`
	Executed  int `json:"executed"`
	Completed int `json:"completed"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}
