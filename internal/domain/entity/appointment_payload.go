package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// FlexibleID accepts identifiers the backend sends either as JSON numbers or strings.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = FlexibleID(n.String())
	return nil
}

func (id FlexibleID) String() string {
	return string(id)
}

// AppointmentPayload is an appointment as returned by the clinic backend. Older endpoints
// send a single appointment_datetime; newer ones send the start/end pair.
type AppointmentPayload struct {
	ID                       FlexibleID          `json:"id"`
	PatientID                FlexibleID          `json:"patient_id"`
	PatientName              string              `json:"patient_name,omitempty"`
	DoctorID                 FlexibleID          `json:"doctor_id"`
	DoctorName               string              `json:"doctor_name,omitempty"`
	AppointmentDatetimeStart string              `json:"appointment_datetime_start,omitempty"`
	AppointmentDatetimeEnd   string              `json:"appointment_datetime_end,omitempty"`
	AppointmentDatetime      string              `json:"appointment_datetime,omitempty"`
	Duration                 int                 `json:"duration,omitempty"`
	Type                     string              `json:"type,omitempty"`
	AppointmentType          string              `json:"appointment_type,omitempty"`
	Status                   string              `json:"status,omitempty"`
	Reason                   string              `json:"reason,omitempty"`
	Notes                    string              `json:"notes,omitempty"`
	PatientNotes             string              `json:"patient_notes,omitempty"`
	StaffNotes               string              `json:"staff_notes,omitempty"`
	IsBlockedTime            bool                `json:"is_blocked_time,omitempty"`
	BlockCategory            string              `json:"block_category,omitempty"`
	Fee                      decimal.NullDecimal `json:"fee"`
}

// AppointmentRequest is the body of appointment create/update calls.
type AppointmentRequest struct {
	PatientID                string `json:"patient_id,omitempty"`
	DoctorID                 string `json:"doctor_id"`
	AppointmentDatetimeStart string `json:"appointment_datetime_start"`
	AppointmentDatetimeEnd   string `json:"appointment_datetime_end"`
	Duration                 int    `json:"duration"`
	Type                     string `json:"appointment_type,omitempty"`
	Status                   string `json:"status,omitempty"`
	Reason                   string `json:"reason,omitempty"`
	Notes                    string `json:"notes,omitempty"`
	IsBlockedTime            bool   `json:"is_blocked_time,omitempty"`
}

// RescheduleRequest moves an appointment; the backend resets its status.
type RescheduleRequest struct {
	AppointmentDatetimeStart string `json:"appointment_datetime_start"`
	AppointmentDatetimeEnd   string `json:"appointment_datetime_end"`
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// BlockedTimePayload is a doctor-declared unavailable interval.
type BlockedTimePayload struct {
	ID            FlexibleID `json:"id"`
	DoctorID      FlexibleID `json:"doctor_id"`
	DoctorName    string     `json:"doctor_name,omitempty"`
	StartDatetime string     `json:"start_datetime"`
	EndDatetime   string     `json:"end_datetime,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Category      string     `json:"category,omitempty"`
}

type BlockedTimeRequest struct {
	DoctorID      string `json:"doctor_id"`
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	Reason        string `json:"reason,omitempty"`
	Category      string `json:"category,omitempty"`
}

type ConflictCheckRequest struct {
	DoctorID  string `json:"doctor_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	ExcludeID string `json:"exclude_id,omitempty"`
}

type ConflictCheckPayload struct {
	HasConflict bool                 `json:"has_conflict"`
	Conflicts   []AppointmentPayload `json:"conflicts,omitempty"`
}

type AvailableSlotPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DoctorPayload struct {
	ID             FlexibleID `json:"id"`
	Name           string     `json:"name"`
	FullName       string     `json:"full_name,omitempty"`
	Specialization string     `json:"specialization,omitempty"`
}
