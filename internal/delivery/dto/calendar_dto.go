package dto

import (
	"time"

	"clinic-calendar/internal/domain/entity"
)

// Request DTOs

type DateClickRequest struct {
	Date       string `json:"date" validate:"required"`
	AllDay     bool   `json:"all_day"`
	ResourceID string `json:"resource_id" validate:"omitempty,max=64"`
	Kind       string `json:"kind" validate:"omitempty,oneof=appointment blocked_time"`
}

type SelectRequest struct {
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
	AllDay     bool   `json:"all_day"`
	ResourceID string `json:"resource_id" validate:"omitempty,max=64"`
	Kind       string `json:"kind" validate:"omitempty,oneof=appointment blocked_time"`
}

type EventClickRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// EventChangeRequest reports a drag or resize the widget already rendered.
type EventChangeRequest struct {
	EventID    string `json:"event_id" validate:"required"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
	ResourceID string `json:"resource_id" validate:"omitempty,max=64"`
}

type ViewRequest struct {
	View string `json:"view" validate:"required,oneof=dayGridMonth timeGridWeek timeGridDay resourceTimeGridDay listWeek"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type DoctorFilterRequest struct {
	DoctorIDs []string `json:"doctor_ids" validate:"omitempty,dive,required,max=64"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"omitempty,max=200"`
}

type AnnotationRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
	ResourceID string `json:"resource_id" validate:"omitempty,max=64"`
}

// Response DTOs

type DraftResponse struct {
	Phase     entity.EditPhase       `json:"phase"`
	Kind      entity.DraftKind       `json:"kind"`
	IsNew     bool                   `json:"is_new"`
	Form      entity.AppointmentForm `json:"form"`
	Original  *entity.Appointment    `json:"original,omitempty"`
	LastError string                 `json:"last_error,omitempty"`
}

type SaveDraftResponse struct {
	Saved       bool                  `json:"saved"`
	Appointment *entity.Appointment   `json:"appointment,omitempty"`
	Event       *entity.CalendarEvent `json:"event,omitempty"`
	Draft       *DraftResponse        `json:"draft,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// RevertInstruction tells the widget where to put an event back.
type RevertInstruction struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ResourceID string    `json:"resource_id,omitempty"`
}

type EventChangeResponse struct {
	EventID  string                `json:"event_id"`
	Applied  bool                  `json:"applied"`
	Reverted bool                  `json:"reverted"`
	Removed  bool                  `json:"removed"`
	Revert   *RevertInstruction    `json:"revert,omitempty"`
	Event    *entity.CalendarEvent `json:"event,omitempty"`
	Error    string                `json:"error,omitempty"`
}

type EventListResponse struct {
	Events []entity.CalendarEvent `json:"events"`
	Total  int                    `json:"total"`
}
