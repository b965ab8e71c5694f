package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

// Sweeper runs the rental status sweep on demand.
type Sweeper interface {
	RunStatusTransitionsNow(ctx context.Context) (*domain.TransitionReport, error)
}

type ContractRenderer interface {
	Contract(doc *domain.ContractDocument) ([]byte, error)
}

type RentalExporter interface {
	Rentals(rentals []domain.Rental, cars map[int32]*domain.Car) ([]byte, error)
}

// Pinger reports whether the backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies are the collaborators of the HTTP handlers.
type Dependencies struct {
	Auth         service.AuthService
	Booking      service.BookingService
	Availability service.AvailabilityService
	Requests     service.RequestService
	Rentals      service.RentalService
	Sweeper      Sweeper
	Contracts    ContractRenderer
	Exporter     RentalExporter
	DB           Pinger
	Location     *time.Location
}

type Handler struct {
	deps Dependencies
	loc  *time.Location
}

func NewHandler(deps Dependencies) *Handler {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{deps: deps, loc: loc}
}

// NewRouter registers every route under its security name.
func NewRouter(h *Handler, tokenManager security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, accessLogMiddleware, NewAuthMiddleware(tokenManager).Handler)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet).Name("health")
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost).Name("login")
	api.HandleFunc("/me", h.Me).Methods(http.MethodGet).Name("me")
	api.HandleFunc("/options", h.ListOptions).Methods(http.MethodGet).Name("listOptions")
	api.HandleFunc("/cars", h.ListCars).Methods(http.MethodGet).Name("listCars")
	api.HandleFunc("/cars/{id:[0-9]+}/availability", h.CarAvailability).Methods(http.MethodGet).Name("carAvailability")
	api.HandleFunc("/quote", h.Quote).Methods(http.MethodPost).Name("quote")
	api.HandleFunc("/requests", h.CreateRequest).Methods(http.MethodPost).Name("createRequest")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/requests", h.AdminListRequests).Methods(http.MethodGet).Name("adminListRequests")
	admin.HandleFunc("/requests", h.AdminCreateRequest).Methods(http.MethodPost).Name("adminCreateRequest")
	admin.HandleFunc("/requests/{id:[0-9]+}", h.AdminGetRequest).Methods(http.MethodGet).Name("adminGetRequest")
	admin.HandleFunc("/requests/{id:[0-9]+}", h.AdminEditRequest).Methods(http.MethodPatch).Name("adminEditRequest")
	admin.HandleFunc("/requests/{id:[0-9]+}/accept", h.AdminAcceptRequest).Methods(http.MethodPost).Name("adminAcceptRequest")
	admin.HandleFunc("/requests/{id:[0-9]+}/reject", h.AdminRejectRequest).Methods(http.MethodPost).Name("adminRejectRequest")
	admin.HandleFunc("/requests/{id:[0-9]+}/undo-reject", h.AdminUndoReject).Methods(http.MethodPost).Name("adminUndoReject")
	admin.HandleFunc("/requests/{id:[0-9]+}/set-pending", h.AdminSetPending).Methods(http.MethodPost).Name("adminSetPending")
	admin.HandleFunc("/requests/{id:[0-9]+}/cancel", h.AdminCancelRental).Methods(http.MethodPost).Name("adminCancelRental")
	admin.HandleFunc("/rentals", h.AdminListRentals).Methods(http.MethodGet).Name("adminListRentals")
	admin.HandleFunc("/rentals", h.AdminCreateRental).Methods(http.MethodPost).Name("adminCreateRental")
	admin.HandleFunc("/rentals/export.xlsx", h.AdminExportRentals).Methods(http.MethodGet).Name("adminExportRentals")
	admin.HandleFunc("/rentals/{id:[0-9]+}/contract", h.AdminIssueContract).Methods(http.MethodPost).Name("adminIssueContract")
	admin.HandleFunc("/transitions/run", h.AdminRunTransitions).Methods(http.MethodPost).Name("adminRunTransitions")

	return router
}
