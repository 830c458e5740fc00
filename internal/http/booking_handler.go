package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

type bookingService interface {
	Submit(ctx context.Context, params application.SubmitBookingParams) (application.Booking, error)
	Approve(ctx context.Context, params application.DecideBookingParams) (application.Booking, error)
	Decline(ctx context.Context, params application.DecideBookingParams) (application.Booking, error)
	ListPendingForManager(ctx context.Context, principal application.Principal) ([]application.Booking, error)
	ListForRequester(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// Create submits a new booking request.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", req.RoomID)

	created, err := h.service.Submit(r.Context(), application.SubmitBookingParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", created.ID).InfoContext(r.Context(), "booking submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(created)})
}

// List returns the requester's own booking history. Managers may pass
// ?requester_id= to inspect another requester's bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	requesterID := strings.TrimSpace(r.URL.Query().Get("requester_id"))
	if requesterID == "" {
		requesterID = principal.UserID
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "requester_id", requesterID)

	bookings, err := h.service.ListForRequester(r.Context(), application.ListBookingsParams{
		Principal:   principal,
		RequesterID: requesterID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

// ListPending returns the manager approval queue.
func (h *BookingHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListPending", "principal_id", principal.UserID)

	bookings, err := h.service.ListPendingForManager(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "pending list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "pending bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

// Approve grants a pending booking.
func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Approve")
}

// Decline rejects a pending booking with an optional reason.
func (h *BookingHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Decline")
}

func (h *BookingHandler) decide(w http.ResponseWriter, r *http.Request, operation string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing booking id for decision")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req decisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.log(r.Context(), operation, "principal_id", principal.UserID, "booking_id", bookingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode decision", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
	}

	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "booking_id", bookingID)

	params := application.DecideBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Reason:    strings.TrimSpace(req.Reason),
	}

	var decided application.Booking
	var err error
	if operation == "Approve" {
		decided, err = h.service.Approve(r.Context(), params)
	} else {
		decided, err = h.service.Decline(r.Context(), params)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "booking decision failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(decided.Status)).InfoContext(r.Context(), "booking decided")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(decided)})
}

type bookingRequest struct {
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
	RequesterPhone string `json:"requester_phone"`
	Unit           string `json:"unit"`
	RoomID         string `json:"room_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Activity       string `json:"activity"`
	Participants   int    `json:"participants"`
	Requirements   string `json:"requirements"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		RequesterName:  strings.TrimSpace(r.RequesterName),
		RequesterEmail: strings.TrimSpace(r.RequesterEmail),
		RequesterPhone: strings.TrimSpace(r.RequesterPhone),
		Unit:           strings.TrimSpace(r.Unit),
		RoomID:         strings.TrimSpace(r.RoomID),
		Date:           strings.TrimSpace(r.Date),
		StartTime:      strings.TrimSpace(r.StartTime),
		EndTime:        strings.TrimSpace(r.EndTime),
		Activity:       strings.TrimSpace(r.Activity),
		Participants:   r.Participants,
		Requirements:   strings.TrimSpace(r.Requirements),
	}
}

type decisionRequest struct {
	Reason string `json:"reason"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type bookingDTO struct {
	ID             string `json:"id"`
	RequesterID    string `json:"requester_id,omitempty"`
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
	RequesterPhone string `json:"requester_phone,omitempty"`
	Unit           string `json:"unit"`
	RoomID         string `json:"room_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Activity       string `json:"activity"`
	Participants   int    `json:"participants"`
	Requirements   string `json:"requirements,omitempty"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:             b.ID,
		RequesterName:  b.RequesterName,
		RequesterEmail: b.RequesterEmail,
		Unit:           b.Unit,
		RoomID:         b.RoomID,
		Date:           b.Date,
		StartTime:      b.Start.String(),
		EndTime:        b.End.String(),
		Activity:       b.Activity,
		Participants:   b.Participants,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if b.RequesterID != nil {
		dto.RequesterID = *b.RequesterID
	}
	if b.RequesterPhone != nil {
		dto.RequesterPhone = *b.RequesterPhone
	}
	if b.Requirements != nil {
		dto.Requirements = *b.Requirements
	}
	if b.Reason != nil {
		dto.Reason = *b.Reason
	}
	return dto
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	return out
}
