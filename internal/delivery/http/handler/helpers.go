package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/infrastructure/clinicapi"
	"clinic-calendar/internal/service"
	"clinic-calendar/internal/usecase"
	"clinic-calendar/pkg/response"
	"clinic-calendar/pkg/validator"
)

// decodeAndValidate reads a JSON body into req and runs its validate tags. It writes the
// error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

// writeAppointmentError maps calendar and backend failures onto HTTP statuses.
// Backend rejections keep the backend's own message and status.
func writeAppointmentError(w http.ResponseWriter, err error, fallback string) {
	status, message, details := appointmentError(err, fallback)
	response.Error(w, status, message, details)
}

// draftFailure is the error body of a save or delete that left the form open.
type draftFailure struct {
	Draft  *dto.DraftResponse `json:"draft"`
	Fields interface{}        `json:"fields,omitempty"`
}

// writeDraftFailure reports a failed save or delete with the status of its cause and
// the draft the form should keep showing.
func writeDraftFailure(w http.ResponseWriter, err error, fallback string, result *dto.SaveDraftResponse) {
	status, message, details := appointmentError(err, fallback)
	response.Error(w, status, message, draftFailure{Draft: result.Draft, Fields: details})
}

func appointmentError(err error, fallback string) (int, string, interface{}) {
	var apiErr *clinicapi.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusUnauthorized {
			return http.StatusUnauthorized, sessionExpired, nil
		}
		return apiErr.StatusCode, apiErr.Message, apiErr.Fields
	case errors.Is(err, clinicapi.ErrTokenRefresh), errors.Is(err, usecase.ErrUnauthenticated):
		return http.StatusUnauthorized, sessionExpired, nil
	case errors.Is(err, usecase.ErrAppointmentNotFound), errors.Is(err, service.ErrEventNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.Is(err, usecase.ErrNotOwner),
		errors.Is(err, usecase.ErrNoDoctorProfile),
		errors.Is(err, usecase.ErrNoPatientProfile):
		return http.StatusForbidden, err.Error(), nil
	case errors.Is(err, usecase.ErrSlotConflict),
		errors.Is(err, usecase.ErrSaveInProgress),
		errors.Is(err, service.ErrInvalidEditTransition):
		return http.StatusConflict, err.Error(), nil
	case errors.Is(err, usecase.ErrBlockedTimeUpdatePartial):
		return http.StatusBadGateway, err.Error(), nil
	case errors.Is(err, usecase.ErrNotEligible),
		errors.Is(err, usecase.ErrInvalidStatusTransition),
		errors.Is(err, usecase.ErrNotBlockedTime),
		errors.Is(err, usecase.ErrNoDraft),
		errors.Is(err, usecase.ErrDraftNotDeletable),
		errors.Is(err, usecase.ErrAnnotationNotEditable):
		return http.StatusUnprocessableEntity, err.Error(), nil
	case errors.Is(err, usecase.ErrInvalidDateTime),
		errors.Is(err, service.ErrInvalidView),
		errors.Is(err, converter.ErrMissingDateTime),
		errors.Is(err, converter.ErrMalformedDateTime),
		errors.Is(err, converter.ErrInvalidTimeRange):
		return http.StatusBadRequest, err.Error(), nil
	}
	return http.StatusInternalServerError, fallback, nil
}

const sessionExpired = "Clinic session expired, please log in again"

// queryRange reads ?start=&end= as bare dates or in any accepted date-time format.
func queryRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseBoundary(r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseBoundary(r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, converter.ErrInvalidTimeRange
	}
	return start, end, nil
}

func parseReschedule(req *dto.RescheduleAppointmentRequest) (time.Time, time.Time, error) {
	start, err := converter.ParseAPIDateTime(req.Start)
	if err != nil {
		return time.Time{}, time.Time{}, usecase.ErrInvalidDateTime
	}
	end, err := converter.ParseAPIDateTime(req.End)
	if err != nil {
		return time.Time{}, time.Time{}, usecase.ErrInvalidDateTime
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, converter.ErrInvalidTimeRange
	}
	return start, end, nil
}

func parseBoundary(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation(converter.DateLayout, raw, converter.Location()); err == nil {
		return t, nil
	}
	t, err := converter.ParseAPIDateTime(raw)
	if err != nil {
		return time.Time{}, usecase.ErrInvalidDateTime
	}
	return t, nil
}
