package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/http/response"
)

type ReservationHandler struct {
	reservations inbound.ReservationUseCase
}

func NewReservationHandler(reservations inbound.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

type reservationRequest struct {
	VehicleID   int64     `json:"vehicle_id"`
	DriverID    int64     `json:"driver_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Purpose     string    `json:"purpose"`
	Destination string    `json:"destination"`
	Notes       string    `json:"notes"`
	Confirmed   bool      `json:"confirmed"`
}

type reservationListResponse struct {
	Items   []*domain.Reservation `json:"items"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	filter := outbound.ReservationFilter{
		VehicleID: queryInt64(r, "vehicle_id"),
		DriverID:  queryInt64(r, "driver_id"),
		DateFrom:  queryTime(r, "date_from"),
		DateTo:    queryTime(r, "date_to"),
		Page:      queryInt(r, "page", 1),
		PerPage:   queryInt(r, "per_page", 20),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.ReservationStatus(raw)
		filter.Status = &status
	}

	items, total, err := h.reservations.List(r.Context(), id, filter)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservations", reservationListResponse{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	reservationID, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid reservation id")
		return
	}
	reservation, err := h.reservations.Get(r.Context(), id, reservationID)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation", reservation)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, false)
}

// ForceCreate is the override endpoint: it skips the overlap check and is
// restricted to admins and fleet managers.
func (h *ReservationHandler) ForceCreate(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, true)
}

func (h *ReservationHandler) create(w http.ResponseWriter, r *http.Request, forced bool) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	createReq := inbound.CreateReservationRequest{
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		Start:       req.Start,
		End:         req.End,
		Purpose:     req.Purpose,
		Destination: req.Destination,
		Notes:       req.Notes,
		Confirmed:   req.Confirmed,
	}

	var reservation *domain.Reservation
	var err error
	if forced {
		reservation, err = h.reservations.ForceCreate(r.Context(), id, createReq)
	} else {
		reservation, err = h.reservations.Create(r.Context(), id, createReq)
	}
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Reservation created", reservation)
}

type reservationUpdateRequest struct {
	VehicleID   *int64     `json:"vehicle_id"`
	DriverID    *int64     `json:"driver_id"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	Purpose     *string    `json:"purpose"`
	Destination *string    `json:"destination"`
	Notes       *string    `json:"notes"`
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	reservationID, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid reservation id")
		return
	}
	var req reservationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	reservation, err := h.reservations.Update(r.Context(), id, reservationID, inbound.UpdateReservationRequest{
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		Start:       req.Start,
		End:         req.End,
		Purpose:     req.Purpose,
		Destination: req.Destination,
		Notes:       req.Notes,
	})
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation updated", reservation)
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	reservationID, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid reservation id")
		return
	}
	reservation, err := h.reservations.Confirm(r.Context(), id, reservationID)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation confirmed", reservation)
}

type startRequest struct {
	ActualStartMileage int `json:"actual_start_mileage"`
}

func (h *ReservationHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	reservationID, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid reservation id")
		return
	}
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	reservation, err := h.reservations.Start(r.Context(), id, reservationID, req.ActualStartMileage)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation started", reservation)
}

type completeRequest struct {
	ActualEndMileage int    `json:"actual_end_mileage"`
	Notes            string `json:"notes"`
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	reservationID, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid reservation id")
		return
	}
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	reservation, err := h.reservations.Complete(r.Context(), id, reservationID, req.ActualEndMileage, req.Notes)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation completed", reservation)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	reservationID, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid reservation id")
		return
	}
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	reservation, err := h.reservations.Cancel(r.Context(), id, reservationID, req.Reason)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation cancelled", reservation)
}
