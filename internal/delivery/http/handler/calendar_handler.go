package handler

import (
	"net/http"

	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/usecase"
	"clinic-calendar/pkg/response"
	"clinic-calendar/pkg/validator"

	"github.com/gorilla/mux"
)

// CalendarHandler exposes the per-session calendar container to the widget.
type CalendarHandler struct {
	calendarUsecase usecase.CalendarUsecase
	validator       *validator.CustomValidator
}

func NewCalendarHandler(calendarUsecase usecase.CalendarUsecase, validator *validator.CustomValidator) *CalendarHandler {
	return &CalendarHandler{
		calendarUsecase: calendarUsecase,
		validator:       validator,
	}
}

// GetEvents handles the widget event source
// @Summary List calendar events
// @Description Loads appointments and blocked time for the visible range, filtered for the session
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param start query string true "Range start"
// @Param end query string true "Range end"
// @Success 200 {object} response.Response
// @Router /calendar/events [get]
func (h *CalendarHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	events, err := h.calendarUsecase.LoadEvents(r.Context(), start, end)
	if err != nil {
		writeAppointmentError(w, err, "Failed to load calendar events")
		return
	}

	response.Success(w, http.StatusOK, "Events retrieved successfully", events)
}

func (h *CalendarHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.calendarUsecase.Reload(r.Context())
	if err != nil {
		writeAppointmentError(w, err, "Failed to reload calendar")
		return
	}
	response.Success(w, http.StatusOK, "Calendar reloaded", snapshot)
}

func (h *CalendarHandler) GetResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.calendarUsecase.Resources(r.Context())
	if err != nil {
		writeAppointmentError(w, err, "Failed to load doctors")
		return
	}
	response.Success(w, http.StatusOK, "Resources retrieved successfully", resources)
}

func (h *CalendarHandler) GetState(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.calendarUsecase.State(r.Context())
	if err != nil {
		writeAppointmentError(w, err, "Failed to get calendar state")
		return
	}
	response.Success(w, http.StatusOK, "Calendar state retrieved successfully", snapshot)
}

func (h *CalendarHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req dto.ViewRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	snapshot, err := h.calendarUsecase.SetView(r.Context(), &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to change view")
		return
	}
	response.Success(w, http.StatusOK, "View updated", snapshot)
}

func (h *CalendarHandler) SetDoctorFilter(w http.ResponseWriter, r *http.Request) {
	var req dto.DoctorFilterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	snapshot, err := h.calendarUsecase.SetDoctorFilter(r.Context(), req.DoctorIDs)
	if err != nil {
		writeAppointmentError(w, err, "Failed to update doctor filter")
		return
	}
	response.Success(w, http.StatusOK, "Doctor filter updated", snapshot)
}

func (h *CalendarHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	snapshot, err := h.calendarUsecase.SetSearch(r.Context(), req.Query)
	if err != nil {
		writeAppointmentError(w, err, "Failed to update search")
		return
	}
	response.Success(w, http.StatusOK, "Search updated", snapshot)
}

// DateClick opens a prefilled form for an empty slot
// @Summary Click an empty slot
// @Tags Calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.DateClickRequest true "Clicked slot"
// @Success 200 {object} response.Response
// @Router /calendar/interactions/date-click [post]
func (h *CalendarHandler) DateClick(w http.ResponseWriter, r *http.Request) {
	var req dto.DateClickRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	draft, err := h.calendarUsecase.DateClick(r.Context(), &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to open form")
		return
	}
	response.Success(w, http.StatusOK, "Form opened", draft)
}

func (h *CalendarHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	draft, err := h.calendarUsecase.Select(r.Context(), &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to open form")
		return
	}
	response.Success(w, http.StatusOK, "Form opened", draft)
}

func (h *CalendarHandler) EventClick(w http.ResponseWriter, r *http.Request) {
	var req dto.EventClickRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	draft, err := h.calendarUsecase.EventClick(r.Context(), req.EventID)
	if err != nil {
		writeAppointmentError(w, err, "Failed to open form")
		return
	}
	response.Success(w, http.StatusOK, "Form opened", draft)
}

// EventDrop reports a drag the widget already rendered. Rejected drops come back with
// a revert instruction and status 200, the widget moves the event back itself.
// @Summary Drop an event on a new slot
// @Tags Calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.EventChangeRequest true "New position"
// @Success 200 {object} response.Response
// @Router /calendar/interactions/event-drop [post]
func (h *CalendarHandler) EventDrop(w http.ResponseWriter, r *http.Request) {
	var req dto.EventChangeRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.calendarUsecase.EventDrop(r.Context(), &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to move event")
		return
	}
	response.Success(w, http.StatusOK, changeMessage(result), result)
}

func (h *CalendarHandler) EventResize(w http.ResponseWriter, r *http.Request) {
	var req dto.EventChangeRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.calendarUsecase.EventResize(r.Context(), &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to resize event")
		return
	}
	response.Success(w, http.StatusOK, changeMessage(result), result)
}

func (h *CalendarHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req dto.AppointmentFormRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	draft, err := h.calendarUsecase.UpdateDraft(r.Context(), &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to update form")
		return
	}
	response.Success(w, http.StatusOK, "Form updated", draft)
}

func (h *CalendarHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	result, err := h.calendarUsecase.SaveDraft(r.Context())
	if result != nil && !result.Saved {
		writeDraftFailure(w, err, "Failed to save", result)
		return
	}
	if err != nil {
		writeAppointmentError(w, err, "Failed to save")
		return
	}
	response.Success(w, http.StatusOK, "Saved successfully", result)
}

func (h *CalendarHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	result, err := h.calendarUsecase.DeleteDraft(r.Context())
	if result != nil && !result.Saved {
		writeDraftFailure(w, err, "Failed to delete", result)
		return
	}
	if err != nil {
		writeAppointmentError(w, err, "Failed to delete")
		return
	}
	response.Success(w, http.StatusOK, "Deleted successfully", result)
}

func (h *CalendarHandler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.calendarUsecase.CancelDraft(r.Context()); err != nil {
		writeAppointmentError(w, err, "Failed to close form")
		return
	}
	response.Success(w, http.StatusOK, "Form closed", nil)
}

func (h *CalendarHandler) AddAnnotation(w http.ResponseWriter, r *http.Request) {
	var req dto.AnnotationRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	event, err := h.calendarUsecase.AddAnnotation(r.Context(), &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to add annotation")
		return
	}
	response.Success(w, http.StatusCreated, "Annotation added", event)
}

func (h *CalendarHandler) RemoveAnnotation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.calendarUsecase.RemoveAnnotation(r.Context(), id); err != nil {
		writeAppointmentError(w, err, "Failed to remove annotation")
		return
	}
	response.Success(w, http.StatusOK, "Annotation removed", nil)
}

func changeMessage(result *dto.EventChangeResponse) string {
	switch {
	case result.Applied:
		return "Event updated"
	case result.Removed:
		return "Blocked time was removed but could not be recreated"
	default:
		return "Change was reverted"
	}
}
