package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

const exportPageSize = 500

// sweep brings rental statuses up to date before a staff listing is served.
// Failures only cost freshness.
func (h *Handler) sweep(r *http.Request) {
	if h.deps.Sweeper == nil {
		return
	}
	if _, err := h.deps.Sweeper.RunStatusTransitionsNow(r.Context()); err != nil {
		logger.WarnContext(r.Context(), "Status sweep before listing failed", "error", err)
	}
}

func queryInt32(r *http.Request, key string) (int32, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid %s", key))
	}
	return int32(v), nil
}

func requestFilterFromQuery(r *http.Request) (domain.RequestFilter, error) {
	q := r.URL.Query()
	filter := domain.RequestFilter{
		Status:        domain.RequestStatus(strings.ToUpper(strings.TrimSpace(q.Get("status")))),
		CustomerEmail: strings.ToLower(strings.TrimSpace(q.Get("customer_email"))),
		SortBy:        domain.RequestSort(strings.TrimSpace(q.Get("sort"))),
		Descending:    q.Get("desc") == "true",
	}
	switch filter.Status {
	case "", domain.RequestStatusPending, domain.RequestStatusApproved, domain.RequestStatusRejected:
	default:
		return filter, domain.NewValidationError("invalid status")
	}
	switch filter.SortBy {
	case "", domain.RequestSortRequestedAt, domain.RequestSortStartDate, domain.RequestSortTotalAmount:
	default:
		return filter, domain.NewValidationError("invalid sort")
	}

	var err error
	if filter.CarID, err = queryInt32(r, "car_id"); err != nil {
		return filter, err
	}
	if filter.Page, err = queryInt32(r, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = queryInt32(r, "page_size"); err != nil {
		return filter, err
	}
	return filter, nil
}

func rentalFilterFromQuery(r *http.Request) (domain.RentalFilter, error) {
	q := r.URL.Query()
	filter := domain.RentalFilter{
		From: strings.TrimSpace(q.Get("from")),
		To:   strings.TrimSpace(q.Get("to")),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := domain.RentalStatus(strings.ToUpper(strings.TrimSpace(s)))
			if !status.Valid() {
				return filter, domain.NewValidationError("invalid status " + s)
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	var err error
	if filter.CarID, err = queryInt32(r, "car_id"); err != nil {
		return filter, err
	}
	if filter.Page, err = queryInt32(r, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = queryInt32(r, "page_size"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *Handler) AdminListRequests(w http.ResponseWriter, r *http.Request) {
	filter, err := requestFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sweep(r)
	items, total, err := h.deps.Requests.ListRequests(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.BorrowRequest{}
	}
	writeOK(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *Handler) AdminCreateRequest(w http.ResponseWriter, r *http.Request) {
	var draft domain.BorrowRequestDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.deps.Booking.CreateAdminBorrowRequest(r.Context(), &draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, req)
}

func (h *Handler) AdminGetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.deps.Requests.GetRequest(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, req)
}

func (h *Handler) AdminEditRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var edit domain.RequestEdit
	if err := decodeBody(r, &edit); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.deps.Requests.EditRequest(r.Context(), id, &edit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, req)
}

func (h *Handler) AdminAcceptRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.deps.Requests.AcceptRequest(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, rental)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) AdminRejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body rejectRequest
	// The reason is optional, so an empty body is accepted.
	if r.ContentLength != 0 {
		if err := decodeBody(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := h.deps.Requests.RejectRequest(r.Context(), id, strings.TrimSpace(body.Reason)); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (h *Handler) AdminUndoReject(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, h.deps.Requests.UndoReject)
}

func (h *Handler) AdminSetPending(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, h.deps.Requests.SetPending)
}

func (h *Handler) AdminCancelRental(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, h.deps.Requests.CancelRental)
}

func (h *Handler) requestAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int32) error) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := action(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (h *Handler) AdminListRentals(w http.ResponseWriter, r *http.Request) {
	filter, err := rentalFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sweep(r)
	items, total, err := h.deps.Rentals.ListRentals(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Rental{}
	}
	writeOK(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *Handler) AdminCreateRental(w http.ResponseWriter, r *http.Request) {
	var input domain.ManualRentalInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.deps.Rentals.CreateManualRental(r.Context(), &input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, rental)
}

func (h *Handler) AdminExportRentals(w http.ResponseWriter, r *http.Request) {
	filter, err := rentalFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sweep(r)

	var all []domain.Rental
	filter.PageSize = exportPageSize
	for filter.Page = 1; ; filter.Page++ {
		page, total, err := h.deps.Rentals.ListRentals(r.Context(), filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		all = append(all, page...)
		if len(page) == 0 || int32(len(all)) >= total {
			break
		}
	}

	cars := map[int32]*domain.Car{}
	if list, err := h.deps.Booking.ListCars(r.Context()); err != nil {
		logger.WarnContext(r.Context(), "Exporting rentals without car names", "error", err)
	} else {
		for i := range list {
			cars[list[i].ID] = &list[i]
		}
	}

	data, err := h.deps.Exporter.Rentals(all, cars)
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to build export: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="rentals.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) AdminIssueContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.deps.Rentals.IssueContract(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := h.deps.Contracts.Contract(doc)
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to render contract: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="contract-%d.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) AdminRunTransitions(w http.ResponseWriter, r *http.Request) {
	if h.deps.Sweeper == nil {
		writeFailure(w, http.StatusServiceUnavailable, "status sweep is not configured")
		return
	}
	report, err := h.deps.Sweeper.RunStatusTransitionsNow(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, report)
}
