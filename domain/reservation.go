package domain

import (
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "pending"
	ReservationConfirmed  ReservationStatus = "confirmed"
	ReservationInProgress ReservationStatus = "in_progress"
	ReservationCompleted  ReservationStatus = "completed"
	ReservationCancelled  ReservationStatus = "cancelled"
)

// Reservation is a planned use of one vehicle by one driver over a half-open
// time interval [Start, End). Reservations are never hard-deleted;
// cancellation is a state transition.
type Reservation struct {
	ID                 int64             `json:"id"`
	VehicleID          int64             `json:"vehicle_id"`
	DriverID           int64             `json:"driver_id"`
	ActorID            int64             `json:"actor_id"`
	OrgUnitID          int64             `json:"organization_unit_id"`
	Start              time.Time         `json:"start"`
	End                time.Time         `json:"end"`
	Status             ReservationStatus `json:"status"`
	Purpose            string            `json:"purpose"`
	Destination        string            `json:"destination,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	Forced             bool              `json:"forced"`
	ActualStart        *time.Time        `json:"actual_start,omitempty"`
	ActualEnd          *time.Time        `json:"actual_end,omitempty"`
	ActualStartMileage *int              `json:"actual_start_mileage,omitempty"`
	ActualEndMileage   *int              `json:"actual_end_mileage,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (r *Reservation) OwningOrgUnit() (int64, bool) {
	if r.OrgUnitID == 0 {
		return 0, false
	}
	return r.OrgUnitID, true
}

// Overlaps reports whether two half-open intervals intersect. Touching
// boundaries (a.End == b.Start) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// reservationTransitions is the directed graph of permitted status changes.
// Completed and Cancelled are terminal.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:    {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed:  {ReservationInProgress, ReservationCancelled},
	ReservationInProgress: {ReservationCompleted, ReservationCancelled},
	ReservationCompleted:  {},
	ReservationCancelled:  {},
}

// CanTransition reports whether from -> to is a permitted status change.
func CanTransition(from, to ReservationStatus) bool {
	for _, s := range reservationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (r *Reservation) guardTransition(to ReservationStatus) error {
	if r.Status == ReservationCancelled {
		return ErrAlreadyCancelled(r.ID)
	}
	if !CanTransition(r.Status, to) {
		return ErrInvalidTransition(string(r.Status), string(to))
	}
	return nil
}

// Confirm moves a pending reservation to confirmed.
func (r *Reservation) Confirm() error {
	if err := r.guardTransition(ReservationConfirmed); err != nil {
		return err
	}
	r.Status = ReservationConfirmed
	return nil
}

// StartUse records the pickup: the reservation enters in_progress and the
// departure mileage and time are captured.
func (r *Reservation) StartUse(mileage int, now time.Time) error {
	if err := r.guardTransition(ReservationInProgress); err != nil {
		return err
	}
	r.Status = ReservationInProgress
	r.ActualStart = &now
	r.ActualStartMileage = &mileage
	return nil
}

// CompleteUse records the return. Notes, when given, are appended to any
// existing notes.
func (r *Reservation) CompleteUse(mileage int, notes string, now time.Time) error {
	if err := r.guardTransition(ReservationCompleted); err != nil {
		return err
	}
	r.Status = ReservationCompleted
	r.ActualEnd = &now
	r.ActualEndMileage = &mileage
	if notes != "" {
		if r.Notes != "" {
			r.Notes = r.Notes + "\n" + notes
		} else {
			r.Notes = notes
		}
	}
	return nil
}

// Cancel is permitted from pending, confirmed and in_progress. The reason is
// mandatory.
func (r *Reservation) Cancel(reason string, now time.Time) error {
	if r.Status == ReservationCancelled {
		return ErrAlreadyCancelled(r.ID)
	}
	if strings.TrimSpace(reason) == "" {
		return ErrValidation("cancellation_reason", "a cancellation reason is required")
	}
	if !CanTransition(r.Status, ReservationCancelled) {
		return ErrInvalidTransition(string(r.Status), string(ReservationCancelled))
	}
	r.Status = ReservationCancelled
	r.CancellationReason = reason
	r.CancelledAt = &now
	return nil
}
