package handler

import (
	"net/http"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/usecase"
	"clinic-calendar/pkg/response"
	"clinic-calendar/pkg/validator"

	"github.com/gorilla/mux"
)

// DoctorHandler serves a doctor's own lane. Ownership is enforced by the usecase.
type DoctorHandler struct {
	doctorUsecase usecase.DoctorAppointmentUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorAppointmentUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

func (h *DoctorHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	appointments, err := h.doctorUsecase.ListByDateRange(r.Context(), start, end)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointments")
		return
	}
	blocked, err := h.doctorUsecase.ListBlockedTime(r.Context(), start, end)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get blocked time")
		return
	}

	all := make([]entity.Appointment, 0, len(appointments)+len(blocked))
	all = append(all, appointments...)
	all = append(all, blocked...)

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", converter.AppointmentsToListResponse(all))
}

func (h *DoctorHandler) BlockTime(w http.ResponseWriter, r *http.Request) {
	var req dto.AppointmentFormRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	form := converter.AppointmentFormRequestToForm(&req)
	blocked, err := h.doctorUsecase.BlockTime(r.Context(), &form)
	if err != nil {
		writeAppointmentError(w, err, "Failed to block time")
		return
	}

	response.Success(w, http.StatusCreated, "Time blocked successfully", blocked)
}

// UpdateBlockedTime replaces a blocked slot. When only the removal succeeds the slot is
// gone and the response says so with 502.
func (h *DoctorHandler) UpdateBlockedTime(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req dto.AppointmentFormRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	form := converter.AppointmentFormRequestToForm(&req)
	blocked, err := h.doctorUsecase.UpdateBlockedTime(r.Context(), id, &form)
	if err != nil {
		writeAppointmentError(w, err, "Failed to update blocked time")
		return
	}

	response.Success(w, http.StatusOK, "Blocked time updated successfully", blocked)
}

func (h *DoctorHandler) UnblockTime(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.doctorUsecase.UnblockTime(r.Context(), id); err != nil {
		writeAppointmentError(w, err, "Failed to remove blocked time")
		return
	}

	response.Success(w, http.StatusOK, "Blocked time removed successfully", nil)
}

func (h *DoctorHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.doctorUsecase.Confirm(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppointmentError(w, err, "Failed to confirm appointment")
		return
	}
	response.Success(w, http.StatusOK, "Appointment confirmed", appointment)
}

func (h *DoctorHandler) Complete(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.doctorUsecase.Complete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppointmentError(w, err, "Failed to complete appointment")
		return
	}
	response.Success(w, http.StatusOK, "Appointment completed", appointment)
}

func (h *DoctorHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.doctorUsecase.MarkNoShow(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppointmentError(w, err, "Failed to mark no-show")
		return
	}
	response.Success(w, http.StatusOK, "Appointment marked as no-show", appointment)
}
