package handler

import (
	"net/http"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/usecase"
	"clinic-calendar/pkg/response"
	"clinic-calendar/pkg/validator"

	"github.com/gorilla/mux"
)

type PatientHandler struct {
	patientUsecase usecase.PatientAppointmentUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientAppointmentUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func (h *PatientHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	appointments, err := h.patientUsecase.ListByDateRange(r.Context(), start, end)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", converter.AppointmentsToListResponse(appointments))
}

// Book handles a patient booking
// @Summary Book an appointment
// @Description The patient id always comes from the session
// @Tags Patient
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.AppointmentFormRequest true "Booking form"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /patient/appointments [post]
func (h *PatientHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req dto.AppointmentFormRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	form := converter.AppointmentFormRequestToForm(&req)
	appointment, err := h.patientUsecase.Book(r.Context(), &form)
	if err != nil {
		writeAppointmentError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *PatientHandler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	eligibility, err := h.patientUsecase.Eligibility(r.Context(), mux.Vars(r)["id"], time.Now())
	if err != nil {
		writeAppointmentError(w, err, "Failed to check appointment")
		return
	}
	response.Success(w, http.StatusOK, "Eligibility retrieved successfully", eligibility)
}

func (h *PatientHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req dto.CancelAppointmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.patientUsecase.Cancel(r.Context(), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		writeAppointmentError(w, err, "Failed to cancel appointment")
		return
	}
	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *PatientHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req dto.RescheduleAppointmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	start, end, err := parseReschedule(&req)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	appointment, err := h.patientUsecase.Reschedule(r.Context(), mux.Vars(r)["id"], start, end)
	if err != nil {
		writeAppointmentError(w, err, "Failed to reschedule appointment")
		return
	}
	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}
