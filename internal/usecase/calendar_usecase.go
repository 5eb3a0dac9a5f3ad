package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoDraft               = errors.New("no draft is open")
	ErrDraftNotDeletable     = errors.New("only existing entries can be deleted")
	ErrSaveInProgress        = errors.New("a save is already in progress")
	ErrAnnotationNotEditable = errors.New("annotations cannot be edited through the form")
	ErrInvalidDateTime       = errors.New("invalid date-time, use YYYY-MM-DD HH:MM or RFC3339")
)

// All-day clicks in the month view open a form at this hour.
const allDayDefaultHour = 9

// CalendarUsecase drives the calendar widget of one session: loading, filters, the
// edit lifecycle and drag/resize.
type CalendarUsecase interface {
	LoadEvents(ctx context.Context, start, end time.Time) (*dto.EventListResponse, error)
	Reload(ctx context.Context) (service.CalendarSnapshot, error)
	Resources(ctx context.Context) ([]entity.Resource, error)
	State(ctx context.Context) (service.CalendarSnapshot, error)
	SetView(ctx context.Context, req *dto.ViewRequest) (service.CalendarSnapshot, error)
	SetDoctorFilter(ctx context.Context, doctorIDs []string) (service.CalendarSnapshot, error)
	SetSearch(ctx context.Context, query string) (service.CalendarSnapshot, error)

	DateClick(ctx context.Context, req *dto.DateClickRequest) (*dto.DraftResponse, error)
	Select(ctx context.Context, req *dto.SelectRequest) (*dto.DraftResponse, error)
	EventClick(ctx context.Context, eventID string) (*dto.DraftResponse, error)
	UpdateDraft(ctx context.Context, req *dto.AppointmentFormRequest) (*dto.DraftResponse, error)
	SaveDraft(ctx context.Context) (*dto.SaveDraftResponse, error)
	DeleteDraft(ctx context.Context) (*dto.SaveDraftResponse, error)
	CancelDraft(ctx context.Context) error

	EventDrop(ctx context.Context, req *dto.EventChangeRequest) (*dto.EventChangeResponse, error)
	EventResize(ctx context.Context, req *dto.EventChangeRequest) (*dto.EventChangeResponse, error)

	AddAnnotation(ctx context.Context, req *dto.AnnotationRequest) (*entity.CalendarEvent, error)
	RemoveAnnotation(ctx context.Context, id string) error

	Subscribe(ctx context.Context) (<-chan uint64, func(), error)
}

type calendarUsecase struct {
	log          *logrus.Logger
	registry     *service.CalendarSessionRegistry
	appointments AppointmentUsecase
	doctor       DoctorAppointmentUsecase
	patient      PatientAppointmentUsecase
	reception    ReceptionistAppointmentUsecase
	auditService service.AuditService
}

func NewCalendarUsecase(
	log *logrus.Logger,
	registry *service.CalendarSessionRegistry,
	appointments AppointmentUsecase,
	doctor DoctorAppointmentUsecase,
	patient PatientAppointmentUsecase,
	reception ReceptionistAppointmentUsecase,
	auditService service.AuditService,
) CalendarUsecase {
	return &calendarUsecase{
		log:          log,
		registry:     registry,
		appointments: appointments,
		doctor:       doctor,
		patient:      patient,
		reception:    reception,
		auditService: auditService,
	}
}

// NewCalendarSourceFactory scopes what a session's calendar loads to the caller's role.
// The sources only read, so they are built without a registry.
func NewCalendarSourceFactory(log *logrus.Logger, appointments AppointmentUsecase) service.SourceFactory {
	doctor := NewDoctorAppointmentUsecase(log, appointments, nil)
	patient := NewPatientAppointmentUsecase(log, appointments, nil)
	return func(p entity.Principal) service.CalendarSource {
		switch p.Role {
		case entity.RoleDoctor:
			return doctor
		case entity.RolePatient:
			return patient
		}
		return appointments
	}
}

func (u *calendarUsecase) session(ctx context.Context) (entity.Principal, *service.CalendarStore, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return entity.Principal{}, nil, err
	}
	return p, u.registry.Get(p), nil
}

func (u *calendarUsecase) LoadEvents(ctx context.Context, start, end time.Time) (*dto.EventListResponse, error) {
	if !end.After(start) {
		return nil, converter.ErrInvalidTimeRange
	}
	_, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.LoadAppointmentsByDateRange(ctx, start, end); err != nil {
		return nil, err
	}
	events := store.GetFilteredEvents()
	return &dto.EventListResponse{Events: events, Total: len(events)}, nil
}

func (u *calendarUsecase) Reload(ctx context.Context) (service.CalendarSnapshot, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return service.CalendarSnapshot{}, err
	}
	if err := store.Reload(ctx); err != nil {
		return store.Snapshot(), err
	}
	return store.Snapshot(), nil
}

func (u *calendarUsecase) Resources(ctx context.Context) ([]entity.Resource, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.LoadResources(ctx); err != nil {
		return nil, err
	}
	return store.Resources(), nil
}

func (u *calendarUsecase) State(ctx context.Context) (service.CalendarSnapshot, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return service.CalendarSnapshot{}, err
	}
	return store.Snapshot(), nil
}

func (u *calendarUsecase) SetView(ctx context.Context, req *dto.ViewRequest) (service.CalendarSnapshot, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return service.CalendarSnapshot{}, err
	}
	if err := store.SetView(entity.CalendarView(req.View)); err != nil {
		return service.CalendarSnapshot{}, err
	}
	if req.Date != "" {
		date, err := time.ParseInLocation(converter.DateLayout, req.Date, converter.Location())
		if err != nil {
			return service.CalendarSnapshot{}, ErrInvalidDateTime
		}
		store.SetDate(date)
	}
	return store.Snapshot(), nil
}

func (u *calendarUsecase) SetDoctorFilter(ctx context.Context, doctorIDs []string) (service.CalendarSnapshot, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return service.CalendarSnapshot{}, err
	}
	store.SetDoctorFilter(doctorIDs)
	return store.Snapshot(), nil
}

func (u *calendarUsecase) SetSearch(ctx context.Context, query string) (service.CalendarSnapshot, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return service.CalendarSnapshot{}, err
	}
	store.SetSearchQuery(query)
	return store.Snapshot(), nil
}

// DateClick opens a new form at the clicked slot with the default duration.
func (u *calendarUsecase) DateClick(ctx context.Context, req *dto.DateClickRequest) (*dto.DraftResponse, error) {
	p, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	start, err := parseSlotTime(req.Date, req.AllDay)
	if err != nil {
		return nil, err
	}
	return u.openCreate(p, store, start, start.Add(entity.DefaultAppointmentDuration), req.ResourceID, entity.DraftKind(req.Kind))
}

// Select opens a new form over the selected range.
func (u *calendarUsecase) Select(ctx context.Context, req *dto.SelectRequest) (*dto.DraftResponse, error) {
	p, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	start, err := parseSlotTime(req.Start, req.AllDay)
	if err != nil {
		return nil, err
	}
	end := start.Add(entity.DefaultAppointmentDuration)
	if !req.AllDay {
		if end, err = parseSlotTime(req.End, false); err != nil {
			return nil, err
		}
	}
	if !end.After(start) {
		return nil, converter.ErrInvalidTimeRange
	}
	return u.openCreate(p, store, start, end, req.ResourceID, entity.DraftKind(req.Kind))
}

func (u *calendarUsecase) openCreate(p entity.Principal, store *service.CalendarStore, start, end time.Time, resourceID string, kind entity.DraftKind) (*dto.DraftResponse, error) {
	if kind == "" {
		kind = entity.DefaultDraftKind(p.Role)
	}
	if p.Role == entity.RolePatient {
		kind = entity.DraftKindAppointment
	}
	if err := beginEdit(store); err != nil {
		return nil, err
	}

	creating := entity.CreatingState{Start: start, End: end, ResourceID: resourceID, Kind: kind}
	if err := store.TransitionEdit(creating); err != nil {
		return nil, err
	}

	local := start.In(converter.Location())
	form := entity.AppointmentForm{
		Date:          local.Format(converter.DateLayout),
		Time:          local.Format(converter.TimeOfDayLayout),
		Duration:      int(end.Sub(start) / time.Minute),
		DoctorID:      firstNonEmpty(resourceID, p.DoctorID),
		IsBlockedTime: kind == entity.DraftKindBlockedTime,
	}
	if kind == entity.DraftKindBlockedTime {
		form.BlockCategory = entity.BlockCategoryOther
	} else {
		form.Type = entity.AppointmentTypeConsultation
		form.PatientID = p.PatientID
	}

	draft := entity.DraftState{Kind: kind, Form: form}
	if err := store.TransitionEdit(draft); err != nil {
		return nil, err
	}
	return converter.DraftToResponse(draft), nil
}

// EventClick opens the form of an existing appointment or blocked slot.
func (u *calendarUsecase) EventClick(ctx context.Context, eventID string) (*dto.DraftResponse, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	event, ok := store.FindEvent(eventID)
	if !ok {
		return nil, service.ErrEventNotFound
	}
	if event.ExtendedProps.IsAnnotation || event.ExtendedProps.Appointment == nil {
		return nil, ErrAnnotationNotEditable
	}
	if err := beginEdit(store); err != nil {
		return nil, err
	}
	if err := store.TransitionEdit(entity.EditingExistingState{Event: event}); err != nil {
		return nil, err
	}

	original := *event.ExtendedProps.Appointment
	kind := entity.DraftKindAppointment
	if original.IsBlockedTime {
		kind = entity.DraftKindBlockedTime
	}
	draft := entity.DraftState{
		Kind:     kind,
		Form:     converter.AppointmentToForm(&original),
		Original: &original,
	}
	if err := store.TransitionEdit(draft); err != nil {
		return nil, err
	}
	store.SelectEvent(event.ID)
	return converter.DraftToResponse(draft), nil
}

func (u *calendarUsecase) UpdateDraft(ctx context.Context, req *dto.AppointmentFormRequest) (*dto.DraftResponse, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	draft, ok := store.EditState().(entity.DraftState)
	if !ok {
		return nil, ErrNoDraft
	}

	draft.Form = converter.AppointmentFormRequestToForm(req)
	draft.Form.IsBlockedTime = draft.Kind == entity.DraftKindBlockedTime
	draft.LastError = ""
	if err := store.TransitionEdit(draft); err != nil {
		return nil, err
	}
	return converter.DraftToResponse(draft), nil
}

// SaveDraft persists the open form. On failure the form stays open with the error.
func (u *calendarUsecase) SaveDraft(ctx context.Context) (*dto.SaveDraftResponse, error) {
	p, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	draft, ok := store.EditState().(entity.DraftState)
	if !ok {
		return nil, ErrNoDraft
	}
	if err := store.TransitionEdit(entity.SavingState{Draft: draft}); err != nil {
		return nil, err
	}

	saved, err := u.persistDraft(ctx, p, store, draft)
	if err != nil {
		failed := draft
		failed.LastError = err.Error()
		if errors.Is(err, ErrBlockedTimeUpdatePartial) {
			// The old slot is gone on the backend; keep the form open as a new entry.
			store.RemoveBlockedTime(draft.Original.ID)
			failed.Original = nil
		}
		if tErr := store.TransitionEdit(failed); tErr != nil {
			u.log.Warnf("Failed to reopen draft after save error: %+v", tErr)
		}
		return &dto.SaveDraftResponse{Draft: converter.DraftToResponse(failed), Error: err.Error()}, err
	}

	if err := store.TransitionEdit(entity.IdleState{}); err != nil {
		return nil, err
	}
	event := converter.MapAppointmentToCalendarEvent(saved)
	return &dto.SaveDraftResponse{Saved: true, Appointment: saved, Event: &event}, nil
}

func (u *calendarUsecase) persistDraft(ctx context.Context, p entity.Principal, store *service.CalendarStore, draft entity.DraftState) (*entity.Appointment, error) {
	form := draft.Form
	next, err := converter.AppointmentFormToAppointment(&form)
	if err != nil {
		return nil, err
	}

	switch {
	case draft.IsNew() && draft.Kind == entity.DraftKindBlockedTime:
		var created *entity.Appointment
		if p.Role == entity.RoleDoctor {
			created, err = u.doctor.BlockTime(ctx, &form)
		} else {
			created, err = u.appointments.BlockTime(ctx, next)
		}
		if err != nil {
			return nil, err
		}
		store.AddBlockedTime(created)
		return created, nil

	case draft.IsNew():
		var created *entity.Appointment
		switch p.Role {
		case entity.RolePatient:
			created, err = u.patient.Book(ctx, &form)
		case entity.RoleReceptionist:
			created, err = u.reception.Book(ctx, &form)
		default:
			created, err = u.appointments.Create(ctx, next)
		}
		if err != nil {
			return nil, err
		}
		store.AddEvent(created)
		return created, nil

	case draft.Original.IsBlockedTime:
		var updated *entity.Appointment
		if p.Role == entity.RoleDoctor {
			updated, err = u.doctor.UpdateBlockedTime(ctx, draft.Original.ID, &form)
		} else {
			updated, err = u.appointments.UpdateBlockedTime(ctx, draft.Original.ID, next)
		}
		if err != nil {
			return nil, err
		}
		store.RemoveBlockedTime(draft.Original.ID)
		store.AddBlockedTime(updated)
		return updated, nil

	default:
		next.ID = draft.Original.ID
		next.Status = draft.Original.Status
		if next.PatientID == "" {
			next.PatientID = draft.Original.PatientID
		}
		updated, err := u.appointments.Update(ctx, draft.Original.ID, next)
		if err != nil {
			return nil, err
		}
		store.UpdateEvent(updated)
		return updated, nil
	}
}

// DeleteDraft removes the entry behind an existing-entry form.
func (u *calendarUsecase) DeleteDraft(ctx context.Context) (*dto.SaveDraftResponse, error) {
	p, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	draft, ok := store.EditState().(entity.DraftState)
	if !ok {
		return nil, ErrNoDraft
	}
	if draft.IsNew() {
		return nil, ErrDraftNotDeletable
	}
	if err := store.TransitionEdit(entity.SavingState{Draft: draft}); err != nil {
		return nil, err
	}

	original := draft.Original
	switch {
	case original.IsBlockedTime && p.Role == entity.RoleDoctor:
		err = u.doctor.UnblockTime(ctx, original.ID)
	case original.IsBlockedTime:
		err = u.appointments.UnblockTime(ctx, original.ID, original.DoctorID)
	default:
		err = u.appointments.Delete(ctx, original.ID)
	}
	if err != nil {
		failed := draft
		failed.LastError = err.Error()
		if tErr := store.TransitionEdit(failed); tErr != nil {
			u.log.Warnf("Failed to reopen draft after delete error: %+v", tErr)
		}
		return &dto.SaveDraftResponse{Draft: converter.DraftToResponse(failed), Error: err.Error()}, err
	}

	if original.IsBlockedTime {
		store.RemoveBlockedTime(original.ID)
	} else {
		store.DeleteEvent(original.ID)
	}
	if err := store.TransitionEdit(entity.IdleState{}); err != nil {
		return nil, err
	}
	return &dto.SaveDraftResponse{Saved: true, Appointment: original}, nil
}

func (u *calendarUsecase) CancelDraft(ctx context.Context) error {
	_, store, err := u.session(ctx)
	if err != nil {
		return err
	}
	if store.EditState().Phase() == entity.EditPhaseSaving {
		return ErrSaveInProgress
	}
	store.ResetEdit()
	return nil
}

func (u *calendarUsecase) EventDrop(ctx context.Context, req *dto.EventChangeRequest) (*dto.EventChangeResponse, error) {
	return u.changeEvent(ctx, req, entity.AuditActionEventDrop)
}

func (u *calendarUsecase) EventResize(ctx context.Context, req *dto.EventChangeRequest) (*dto.EventChangeResponse, error) {
	return u.changeEvent(ctx, req, entity.AuditActionEventResize)
}

// changeEvent applies a drag or resize without the form. Failures are not errors: the
// response tells the widget to put the event back and the local list stays as it was.
func (u *calendarUsecase) changeEvent(ctx context.Context, req *dto.EventChangeRequest, action string) (*dto.EventChangeResponse, error) {
	p, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	event, ok := store.FindEvent(req.EventID)
	if !ok {
		return nil, service.ErrEventNotFound
	}

	resp := &dto.EventChangeResponse{EventID: event.ID}
	revert := &dto.RevertInstruction{Start: event.Start, End: event.End, ResourceID: event.ResourceID}

	start, startErr := converter.ParseAPIDateTime(req.Start)
	end, endErr := converter.ParseAPIDateTime(req.End)
	if startErr != nil || endErr != nil || !end.After(start) {
		return u.revert(ctx, resp, revert, action, converter.ErrInvalidTimeRange), nil
	}
	resourceID := firstNonEmpty(req.ResourceID, event.ResourceID)
	target := entity.DateRange{Start: start, End: end}

	if event.ExtendedProps.IsAnnotation {
		moved, err := store.MoveAnnotation(event.ID, target, req.ResourceID)
		if err != nil {
			return u.revert(ctx, resp, revert, action, err), nil
		}
		resp.Applied = true
		resp.Event = &moved
		return resp, nil
	}

	original := *event.ExtendedProps.Appointment
	if err := checkLane(p, &original, resourceID); err != nil {
		return u.revert(ctx, resp, revert, action, err), nil
	}
	if original.IsBlockedTime {
		return u.moveBlockedTime(ctx, p, store, resp, revert, action, &original, target, resourceID), nil
	}

	if !original.CanReschedule() {
		return u.revert(ctx, resp, revert, action, ErrNotEligible), nil
	}

	var updated *entity.Appointment
	if resourceID != original.DoctorID {
		next := original
		next.Start, next.End, next.DoctorID = start, end, resourceID
		updated, err = u.appointments.Update(ctx, original.ID, &next)
	} else {
		updated, err = u.reschedule(ctx, p, original.ID, start, end)
	}
	if err != nil {
		return u.revert(ctx, resp, revert, action, err), nil
	}

	store.UpdateEvent(updated)
	moved := converter.MapAppointmentToCalendarEvent(updated)
	resp.Applied = true
	resp.Event = &moved
	u.recordChange(ctx, action, entity.AuditOutcomeSuccess, event.ID, revert, target, nil)
	return resp, nil
}

func (u *calendarUsecase) reschedule(ctx context.Context, p entity.Principal, id string, start, end time.Time) (*entity.Appointment, error) {
	switch p.Role {
	case entity.RolePatient:
		return u.patient.Reschedule(ctx, id, start, end)
	case entity.RoleReceptionist:
		return u.reception.Reschedule(ctx, id, start, end)
	}
	return u.appointments.Reschedule(ctx, id, start, end)
}

func (u *calendarUsecase) moveBlockedTime(
	ctx context.Context,
	p entity.Principal,
	store *service.CalendarStore,
	resp *dto.EventChangeResponse,
	revert *dto.RevertInstruction,
	action string,
	original *entity.Appointment,
	target entity.DateRange,
	resourceID string,
) *dto.EventChangeResponse {
	if p.Role == entity.RolePatient {
		return u.revert(ctx, resp, revert, action, ErrNotOwner)
	}

	next := *original
	next.Start, next.End = target.Start, target.End
	next.DoctorID = resourceID

	var updated *entity.Appointment
	var err error
	if p.Role == entity.RoleDoctor {
		form := converter.AppointmentToForm(&next)
		updated, err = u.doctor.UpdateBlockedTime(ctx, original.ID, &form)
	} else {
		updated, err = u.appointments.UpdateBlockedTime(ctx, original.ID, &next)
	}
	if errors.Is(err, ErrBlockedTimeUpdatePartial) {
		store.RemoveBlockedTime(original.ID)
		resp.Removed = true
		resp.Error = err.Error()
		u.recordChange(ctx, action, entity.AuditOutcomePartial, resp.EventID, revert, target, err)
		return resp
	}
	if err != nil {
		return u.revert(ctx, resp, revert, action, err)
	}

	store.RemoveBlockedTime(original.ID)
	store.AddBlockedTime(updated)
	moved := converter.MapAppointmentToCalendarEvent(updated)
	resp.Applied = true
	resp.Event = &moved
	u.recordChange(ctx, action, entity.AuditOutcomeSuccess, resp.EventID, revert, target, nil)
	return resp
}

func (u *calendarUsecase) revert(ctx context.Context, resp *dto.EventChangeResponse, revert *dto.RevertInstruction, action string, cause error) *dto.EventChangeResponse {
	u.log.Debugf("Reverting %s of %s: %v", action, resp.EventID, cause)
	resp.Reverted = true
	resp.Revert = revert
	resp.Error = cause.Error()
	u.recordChange(ctx, action, entity.AuditOutcomeReverted, resp.EventID, revert, nil, cause)
	return resp
}

func (u *calendarUsecase) recordChange(ctx context.Context, action, outcome, eventID string, from *dto.RevertInstruction, to interface{}, err error) {
	u.auditService.Record(ctx, service.AuditEntry{
		Action:   action,
		Outcome:  outcome,
		EntityID: eventID,
		OldValue: from,
		NewValue: to,
		Err:      err,
	})
}

func (u *calendarUsecase) AddAnnotation(ctx context.Context, req *dto.AnnotationRequest) (*entity.CalendarEvent, error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	start, err := converter.ParseAPIDateTime(req.Start)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	end, err := converter.ParseAPIDateTime(req.End)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	note, err := store.AddAnnotation(req.Title, entity.DateRange{Start: start, End: end}, req.ResourceID)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (u *calendarUsecase) RemoveAnnotation(ctx context.Context, id string) error {
	_, store, err := u.session(ctx)
	if err != nil {
		return err
	}
	return store.RemoveAnnotation(id)
}

func (u *calendarUsecase) Subscribe(ctx context.Context) (<-chan uint64, func(), error) {
	_, store, err := u.session(ctx)
	if err != nil {
		return nil, nil, err
	}
	return store.Subscribe()
}

// checkLane rejects lane changes a role may not make. Doctors work only in their own
// lane and patients cannot move a booking to another doctor.
func checkLane(p entity.Principal, original *entity.Appointment, resourceID string) error {
	switch p.Role {
	case entity.RoleDoctor:
		if original.DoctorID != p.DoctorID || resourceID != p.DoctorID {
			return ErrNotOwner
		}
	case entity.RolePatient:
		if resourceID != original.DoctorID {
			return ErrNotOwner
		}
	}
	return nil
}

// beginEdit abandons an open form so a new click can start over. A save in flight
// cannot be abandoned.
func beginEdit(store *service.CalendarStore) error {
	if store.EditState().Phase() == entity.EditPhaseSaving {
		return ErrSaveInProgress
	}
	store.ResetEdit()
	return nil
}

// parseSlotTime reads a widget date-time. All-day values may be a bare date.
func parseSlotTime(raw string, allDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if allDay || len(raw) == len(converter.DateLayout) {
		day, err := time.ParseInLocation(converter.DateLayout, raw[:min(len(raw), len(converter.DateLayout))], converter.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, raw)
		}
		return day.Add(allDayDefaultHour * time.Hour), nil
	}
	t, err := converter.ParseAPIDateTime(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, raw)
	}
	return t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
