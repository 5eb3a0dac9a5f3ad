package dto

import "clinic-calendar/internal/domain/entity"

// Request DTOs

// AppointmentFormRequest is the booking / time-block form as submitted by the widget.
type AppointmentFormRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required,timeofday"`
	Duration      int    `json:"duration" validate:"omitempty,gte=5,lte=720"`
	PatientID     string `json:"patient_id" validate:"omitempty,max=64"`
	DoctorID      string `json:"doctor_id" validate:"omitempty,max=64"`
	Type          string `json:"type" validate:"omitempty,oneof=consultation follow_up emergency checkup"`
	Reason        string `json:"reason" validate:"omitempty,max=500"`
	Notes         string `json:"notes" validate:"omitempty,max=2000"`
	IsBlockedTime bool   `json:"is_blocked_time"`
	BlockCategory string `json:"block_category" validate:"omitempty,oneof=break meeting leave personal other"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type RescheduleAppointmentRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type ConflictCheckRequest struct {
	DoctorID  string `json:"doctor_id" validate:"required"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
	ExcludeID string `json:"exclude_id"`
}

// Response DTOs

type AppointmentListResponse struct {
	Appointments []entity.Appointment `json:"appointments"`
	Total        int                  `json:"total"`
}

type EligibilityResponse struct {
	AppointmentID string `json:"appointment_id"`
	IsInPast      bool   `json:"is_in_past"`
	CanCancel     bool   `json:"can_cancel"`
	CanReschedule bool   `json:"can_reschedule"`
}

type AvailableSlotListResponse struct {
	Slots []entity.AvailableSlot `json:"slots"`
	Total int                    `json:"total"`
}
