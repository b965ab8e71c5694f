package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// DateRange is a local pickup/return window. Dates use 2006-01-02 and times 15:04.
type DateRange struct {
	StartDate string `json:"start_date"`
	StartTime string `json:"start_time"`
	EndDate   string `json:"end_date"`
	EndTime   string `json:"end_time"`
}

// BorrowRequest is a customer or staff booking intent awaiting confirmation.
// Customer identity fields are written once at creation.
type BorrowRequest struct {
	ID                int32            `json:"id" db:"id"`
	UserID            *int32           `json:"user_id,omitempty" db:"user_id"`
	CarID             int32            `json:"car_id" db:"car_id"`
	CustomerFirstName string           `json:"customer_first_name" db:"customer_first_name"`
	CustomerLastName  string           `json:"customer_last_name" db:"customer_last_name"`
	CustomerEmail     string           `json:"customer_email" db:"customer_email"`
	CustomerPhone     string           `json:"customer_phone" db:"customer_phone"`
	StartDate         string           `json:"start_date" db:"start_date"`
	StartTime         string           `json:"start_time" db:"start_time"`
	EndDate           string           `json:"end_date" db:"end_date"`
	EndTime           string           `json:"end_time" db:"end_time"`
	Comment           string           `json:"comment" db:"comment"`
	Options           OptionsSelection `json:"options" db:"options"`
	PricePerDay       float64          `json:"price_per_day" db:"price_per_day"`
	TotalAmount       float64          `json:"total_amount" db:"total_amount"`
	Status            RequestStatus    `json:"status" db:"status"`
	RequestedAt       time.Time        `json:"requested_at" db:"requested_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

func (r *BorrowRequest) Range() DateRange {
	return DateRange{StartDate: r.StartDate, StartTime: r.StartTime, EndDate: r.EndDate, EndTime: r.EndTime}
}

func (r *BorrowRequest) CustomerName() string {
	return r.CustomerFirstName + " " + r.CustomerLastName
}

// BorrowRequestDraft is the unvalidated create payload.
type BorrowRequestDraft struct {
	CarID       int32           `json:"car_id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	StartDate   string          `json:"start_date"`
	StartTime   string          `json:"start_time"`
	EndDate     string          `json:"end_date"`
	EndTime     string          `json:"end_time"`
	Comment     string          `json:"comment"`
	Options     map[string]bool `json:"options"`
	TotalAmount float64         `json:"total_amount"`
}

func (d *BorrowRequestDraft) Range() DateRange {
	return DateRange{StartDate: d.StartDate, StartTime: d.StartTime, EndDate: d.EndDate, EndTime: d.EndTime}
}

// RequestEdit lists the fields staff may change after submission. Nil means unchanged.
type RequestEdit struct {
	StartDate   *string          `json:"start_date,omitempty"`
	StartTime   *string          `json:"start_time,omitempty"`
	EndDate     *string          `json:"end_date,omitempty"`
	EndTime     *string          `json:"end_time,omitempty"`
	TotalAmount *float64         `json:"total_amount,omitempty"`
	Options     *map[string]bool `json:"options,omitempty"`
	Comment     *string          `json:"comment,omitempty"`
}

type RequestSort string

const (
	RequestSortRequestedAt RequestSort = "requested_at"
	RequestSortStartDate   RequestSort = "start_date"
	RequestSortTotalAmount RequestSort = "total_amount"
)

type RequestFilter struct {
	Status        RequestStatus
	CarID         int32
	CustomerEmail string
	SortBy        RequestSort
	Descending    bool
	Page          int32
	PageSize      int32
}
