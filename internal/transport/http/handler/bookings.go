package handler

import (
	"encoding/json"
	"net/http"

	"github.com/13x54n/thamelbar/internal/application/booking"
	"github.com/13x54n/thamelbar/internal/pkg/validate"
	"github.com/13x54n/thamelbar/internal/transport/http/middleware"
)

// BookingHandler handles karaoke reservation endpoints.
type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	date := r.URL.Query().Get("date")
	if room == "" || date == "" {
		writeError(w, http.StatusBadRequest, "room and date are required")
		return
	}
	available, err := h.svc.AvailableSlots(r.Context(), room, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Slots []string `json:"slots"`
	}{Slots: available})
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req booking.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.svc.Create(r.Context(), claims.AccountID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Booking *booking.View `json:"booking"`
	}{Booking: b})
}

func (h *BookingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	bookings, err := h.svc.ListMine(r.Context(), claims.AccountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Bookings []booking.View `json:"bookings"`
	}{Bookings: bookings})
}
