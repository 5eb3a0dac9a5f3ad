package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus drives color-coding and the permitted workflow transitions.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeFollowUp     AppointmentType = "follow_up"
	AppointmentTypeEmergency    AppointmentType = "emergency"
	AppointmentTypeCheckup      AppointmentType = "checkup"
	AppointmentTypeBlockedTime  AppointmentType = "blocked_time"
)

// BlockCategory classifies a doctor-defined unavailable slot.
type BlockCategory string

const (
	BlockCategoryBreak    BlockCategory = "break"
	BlockCategoryMeeting  BlockCategory = "meeting"
	BlockCategoryLeave    BlockCategory = "leave"
	BlockCategoryPersonal BlockCategory = "personal"
	BlockCategoryOther    BlockCategory = "other"
)

// DefaultAppointmentDuration is used whenever the backend omits an end time or a duration.
const DefaultAppointmentDuration = 30 * time.Minute

// Appointment is a scheduled visit or a blocked slot as owned by the clinic backend.
// Blocked time has no patient: PatientID is empty.
type Appointment struct {
	ID            string              `json:"id"`
	Start         time.Time           `json:"start"`
	End           time.Time           `json:"end"`
	PatientID     string              `json:"patient_id,omitempty"`
	PatientName   string              `json:"patient_name,omitempty"`
	DoctorID      string              `json:"doctor_id"`
	DoctorName    string              `json:"doctor_name,omitempty"`
	Type          AppointmentType     `json:"type"`
	Status        AppointmentStatus   `json:"status"`
	Reason        string              `json:"reason,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	IsBlockedTime bool                `json:"is_blocked_time"`
	BlockCategory BlockCategory       `json:"block_category,omitempty"`
	Fee           decimal.NullDecimal `json:"fee"`
}

// Duration returns End - Start.
func (a *Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// IsInPast reports whether the appointment has already started at now.
func (a *Appointment) IsInPast(now time.Time) bool {
	return !a.Start.After(now)
}

// IsTerminal reports whether no further workflow transition is possible.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether the one-directional status graph allows moving to next.
// Rescheduling is not a status transition; see CanReschedule.
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	if a.IsBlockedTime || a.IsTerminal() {
		return false
	}
	switch next {
	case AppointmentStatusConfirmed:
		return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusScheduled
	case AppointmentStatusCompleted:
		return a.Status == AppointmentStatusConfirmed
	case AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanReschedule reports whether start/end may be moved. Rescheduling resets the status
// to scheduled.
func (a *Appointment) CanReschedule() bool {
	return !a.IsBlockedTime && !a.IsTerminal()
}

// DateRange is a half-open [Start, End) window of the calendar viewport.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the range.
func (r DateRange) Overlaps(start, end time.Time) bool {
	return start.Before(r.End) && end.After(r.Start)
}

// AvailableSlot is a free interval on a doctor's calendar.
type AvailableSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ConflictCheck is the backend verdict on a proposed interval.
type ConflictCheck struct {
	HasConflict bool          `json:"has_conflict"`
	Conflicts   []Appointment `json:"conflicts,omitempty"`
}

// AppointmentForm is the shape of a booking or time-block form: a calendar date, a
// time of day and a duration in minutes.
type AppointmentForm struct {
	Date          string          `json:"date"` // YYYY-MM-DD
	Time          string          `json:"time"` // HH:MM
	Duration      int             `json:"duration"`
	PatientID     string          `json:"patient_id,omitempty"`
	DoctorID      string          `json:"doctor_id"`
	Type          AppointmentType `json:"type,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	IsBlockedTime bool            `json:"is_blocked_time"`
	BlockCategory BlockCategory   `json:"block_category,omitempty"`
}
