package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/security"
	"carrental-backend/internal/utils"
)

const healthTimeout = 2 * time.Second

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.deps.DB.PingContext(ctx); err != nil {
			writeFailure(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeOK(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	token, user, err := h.deps.Auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := security.UserIDFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "not logged in")
		return
	}
	user, err := h.deps.Auth.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, user)
}

func (h *Handler) ListOptions(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, domain.OptionCatalog())
}

func (h *Handler) ListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.deps.Booking.ListCars(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, cars)
}

type quoteRequest struct {
	CarID     int32           `json:"car_id"`
	StartDate string          `json:"start_date"`
	StartTime string          `json:"start_time"`
	EndDate   string          `json:"end_date"`
	EndTime   string          `json:"end_time"`
	Options   map[string]bool `json:"options"`
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var body quoteRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	rng := domain.DateRange{StartDate: body.StartDate, StartTime: body.StartTime, EndDate: body.EndDate, EndTime: body.EndTime}
	summary, err := h.deps.Booking.Quote(r.Context(), body.CarID, rng, body.Options)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, summary)
}

type dayAvailability struct {
	Date              string `json:"date"`
	Unavailable       bool   `json:"unavailable"`
	InApprovedRequest bool   `json:"in_approved_request"`
}

type nextRental struct {
	From          string  `json:"from"`
	EarliestStart *string `json:"earliest_start"`
}

// CarAvailability answers either ?date= (is that day booked) or ?from= (when
// does the next booking start).
func (h *Handler) CarAvailability(w http.ResponseWriter, r *http.Request) {
	carID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()

	if from := strings.TrimSpace(q.Get("from")); from != "" {
		ref, err := utils.ParseDateTime(from, "00:00", h.loc)
		if err != nil {
			writeError(w, r, domain.NewValidationError("invalid from date"))
			return
		}
		resp := nextRental{From: from}
		if next := h.deps.Availability.GetEarliestFutureRentalStart(r.Context(), ref, carID); next != nil {
			s := next.In(h.loc).Format(utils.DateLayout)
			resp.EarliestStart = &s
		}
		writeOK(w, http.StatusOK, resp)
		return
	}

	date := strings.TrimSpace(q.Get("date"))
	day, err := utils.ParseDateTime(date, "00:00", h.loc)
	if err != nil {
		writeError(w, r, domain.NewValidationError("date or from query parameter is required (yyyy-mm-dd)"))
		return
	}
	writeOK(w, http.StatusOK, dayAvailability{
		Date:              date,
		Unavailable:       h.deps.Availability.IsDateUnavailable(r.Context(), day, carID),
		InApprovedRequest: h.deps.Availability.IsDateInActualApprovedRequest(r.Context(), date, carID),
	})
}

type createdResponse struct {
	ID int32 `json:"id"`
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var draft domain.BorrowRequestDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.deps.Booking.CreateUserBorrowRequest(r.Context(), &draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, createdResponse{ID: id})
}

func pathID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("invalid id")
	}
	return int32(id), nil
}
