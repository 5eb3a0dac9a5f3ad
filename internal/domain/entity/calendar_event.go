package entity

import "time"

// Event id prefixes for entries that are not plain appointments.
const (
	BlockedEventPrefix    = "blocked-"
	AnnotationEventPrefix = "note-"
)

// CalendarView names the widget viewports.
type CalendarView string

const (
	CalendarViewMonth       CalendarView = "dayGridMonth"
	CalendarViewWeek        CalendarView = "timeGridWeek"
	CalendarViewDay         CalendarView = "timeGridDay"
	CalendarViewResourceDay CalendarView = "resourceTimeGridDay"
	CalendarViewListWeek    CalendarView = "listWeek"
)

// IsValid reports whether v is one of the supported viewports.
func (v CalendarView) IsValid() bool {
	switch v {
	case CalendarViewMonth, CalendarViewWeek, CalendarViewDay, CalendarViewResourceDay, CalendarViewListWeek:
		return true
	}
	return false
}

// CalendarEvent is the display projection of an Appointment. It is regenerated on every
// fetch and never persisted on its own.
type CalendarEvent struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Start         time.Time          `json:"start"`
	End           time.Time          `json:"end"`
	ResourceID    string             `json:"resourceId,omitempty"`
	Color         string             `json:"color"`
	TextColor     string             `json:"textColor"`
	Editable      bool               `json:"editable"`
	ExtendedProps EventExtendedProps `json:"extendedProps"`
}

type EventExtendedProps struct {
	Appointment   *Appointment      `json:"appointment,omitempty"`
	IsBlockedTime bool              `json:"isBlockedTime"`
	IsAnnotation  bool              `json:"isAnnotation"`
	PatientName   string            `json:"patientName,omitempty"`
	Type          AppointmentType   `json:"type,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Status        AppointmentStatus `json:"status,omitempty"`
}

// AppointmentID returns the backend id behind the event, without the display prefix.
func (e *CalendarEvent) AppointmentID() string {
	if e.ExtendedProps.Appointment != nil {
		return e.ExtendedProps.Appointment.ID
	}
	return e.ID
}

// Resource is a calendar lane, one per doctor.
type Resource struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Specialization string `json:"specialization,omitempty"`
}
