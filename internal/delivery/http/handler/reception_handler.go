package handler

import (
	"net/http"
	"strconv"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/usecase"
	"clinic-calendar/pkg/response"
	"clinic-calendar/pkg/validator"

	"github.com/gorilla/mux"
)

// ReceptionHandler is the front desk surface, shared by receptionists and admins.
type ReceptionHandler struct {
	receptionUsecase usecase.ReceptionistAppointmentUsecase
	validator        *validator.CustomValidator
}

func NewReceptionHandler(receptionUsecase usecase.ReceptionistAppointmentUsecase, validator *validator.CustomValidator) *ReceptionHandler {
	return &ReceptionHandler{
		receptionUsecase: receptionUsecase,
		validator:        validator,
	}
}

func (h *ReceptionHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	appointments, err := h.receptionUsecase.ListAppointments(r.Context(), start, end, r.URL.Query().Get("doctor_id"))
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", converter.AppointmentsToListResponse(appointments))
}

func (h *ReceptionHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req dto.AppointmentFormRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	form := converter.AppointmentFormRequestToForm(&req)
	appointment, err := h.receptionUsecase.Book(r.Context(), &form)
	if err != nil {
		writeAppointmentError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *ReceptionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.receptionUsecase.Confirm(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppointmentError(w, err, "Failed to confirm appointment")
		return
	}
	response.Success(w, http.StatusOK, "Appointment confirmed", appointment)
}

func (h *ReceptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req dto.CancelAppointmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.receptionUsecase.Cancel(r.Context(), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		writeAppointmentError(w, err, "Failed to cancel appointment")
		return
	}
	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *ReceptionHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req dto.RescheduleAppointmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	start, end, err := parseReschedule(&req)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	appointment, err := h.receptionUsecase.Reschedule(r.Context(), mux.Vars(r)["id"], start, end)
	if err != nil {
		writeAppointmentError(w, err, "Failed to reschedule appointment")
		return
	}
	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

func (h *ReceptionHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	var req dto.ConflictCheckRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	start, end, err := parseReschedule(&dto.RescheduleAppointmentRequest{Start: req.Start, End: req.End})
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.receptionUsecase.CheckConflict(r.Context(), req.DoctorID, start, end, req.ExcludeID)
	if err != nil {
		writeAppointmentError(w, err, "Failed to check conflicts")
		return
	}
	response.Success(w, http.StatusOK, "Conflict check completed", result)
}

func (h *ReceptionHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctorID := q.Get("doctor_id")
	if doctorID == "" {
		response.Error(w, http.StatusBadRequest, "doctor_id is required", nil)
		return
	}

	date, err := time.ParseInLocation(converter.DateLayout, q.Get("date"), converter.Location())
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		return
	}

	duration, _ := strconv.Atoi(q.Get("duration"))

	slots, err := h.receptionUsecase.AvailableSlots(r.Context(), doctorID, date, duration)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", &dto.AvailableSlotListResponse{
		Slots: slots,
		Total: len(slots),
	})
}
