package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-calendar/config"
	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/domain/repository"
	"clinic-calendar/internal/infrastructure/cache"
	"clinic-calendar/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrBlockedTimeUpdatePartial = errors.New("blocked time was removed but its replacement could not be created")
	ErrNotBlockedTime           = errors.New("entry is not a blocked time slot")
)

// AppointmentUsecase is the typed gateway to the clinic backend's appointment endpoints.
// The backend is authoritative; errors come back as *clinicapi.APIError untouched.
type AppointmentUsecase interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]entity.Appointment, error)
	ListFiltered(ctx context.Context, start, end time.Time, doctorID, patientID string) ([]entity.Appointment, error)
	ListBlockedTime(ctx context.Context, start, end time.Time) ([]entity.Appointment, error)
	ListBlockedTimeForDoctor(ctx context.Context, start, end time.Time, doctorID string) ([]entity.Appointment, error)
	Get(ctx context.Context, id string) (*entity.Appointment, error)
	Create(ctx context.Context, a *entity.Appointment) (*entity.Appointment, error)
	Update(ctx context.Context, id string, a *entity.Appointment) (*entity.Appointment, error)
	Delete(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) (*entity.Appointment, error)
	Cancel(ctx context.Context, id, reason string) (*entity.Appointment, error)
	Complete(ctx context.Context, id string) (*entity.Appointment, error)
	MarkNoShow(ctx context.Context, id string) (*entity.Appointment, error)
	Reschedule(ctx context.Context, id string, start, end time.Time) (*entity.Appointment, error)
	BlockTime(ctx context.Context, a *entity.Appointment) (*entity.Appointment, error)
	UnblockTime(ctx context.Context, id, doctorID string) error
	UpdateBlockedTime(ctx context.Context, id string, next *entity.Appointment) (*entity.Appointment, error)
	CheckConflict(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (*entity.ConflictCheck, error)
	AvailableSlots(ctx context.Context, doctorID string, date time.Time, duration int) ([]entity.AvailableSlot, error)
	ListResources(ctx context.Context) ([]entity.Resource, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	blockedRepo     repository.BlockedTimeRepository
	doctorRepo      repository.DoctorRepository
	cache           cache.Cache
	auditService    service.AuditService
	cacheCfg        config.CalendarConfig
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	blockedRepo repository.BlockedTimeRepository,
	doctorRepo repository.DoctorRepository,
	responseCache cache.Cache,
	auditService service.AuditService,
	cacheCfg config.CalendarConfig,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		appointmentRepo: appointmentRepo,
		blockedRepo:     blockedRepo,
		doctorRepo:      doctorRepo,
		cache:           responseCache,
		auditService:    auditService,
		cacheCfg:        cacheCfg,
	}
}

func (u *appointmentUsecase) ListByDateRange(ctx context.Context, start, end time.Time) ([]entity.Appointment, error) {
	return u.ListFiltered(ctx, start, end, "", "")
}

func (u *appointmentUsecase) ListFiltered(ctx context.Context, start, end time.Time, doctorID, patientID string) ([]entity.Appointment, error) {
	payloads, err := u.appointmentRepo.List(ctx, rangeQuery(start, end, doctorID, patientID))
	if err != nil {
		return nil, err
	}

	appointments, err := converter.MapAPIResponsesToAppointments(payloads)
	if err != nil {
		u.log.Warnf("Failed to map appointments: %+v", err)
		return nil, err
	}
	return appointments, nil
}

func (u *appointmentUsecase) ListBlockedTime(ctx context.Context, start, end time.Time) ([]entity.Appointment, error) {
	return u.ListBlockedTimeForDoctor(ctx, start, end, "")
}

func (u *appointmentUsecase) ListBlockedTimeForDoctor(ctx context.Context, start, end time.Time, doctorID string) ([]entity.Appointment, error) {
	payloads, err := u.blockedRepo.List(ctx, rangeQuery(start, end, doctorID, ""))
	if err != nil {
		return nil, err
	}

	slots, err := converter.MapBlockedTimePayloadsToAppointments(payloads)
	if err != nil {
		u.log.Warnf("Failed to map blocked time: %+v", err)
		return nil, err
	}
	return slots, nil
}

func (u *appointmentUsecase) Get(ctx context.Context, id string) (*entity.Appointment, error) {
	payload, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrAppointmentNotFound
	}
	return converter.MapAPIResponseToAppointment(payload)
}

func (u *appointmentUsecase) Create(ctx context.Context, a *entity.Appointment) (*entity.Appointment, error) {
	payload, err := u.appointmentRepo.Create(ctx, converter.MapAppointmentToAPIRequest(a, "", ""))
	if err != nil {
		u.audit(ctx, entity.AuditActionAppointmentCreate, "", nil, a, err)
		return nil, err
	}

	created, err := converter.MapAPIResponseToAppointment(payload)
	if err != nil {
		return nil, err
	}
	u.invalidateSlots(ctx, created.DoctorID)
	u.audit(ctx, entity.AuditActionAppointmentCreate, created.ID, nil, created, nil)
	return created, nil
}

func (u *appointmentUsecase) Update(ctx context.Context, id string, a *entity.Appointment) (*entity.Appointment, error) {
	payload, err := u.appointmentRepo.Update(ctx, id, converter.MapAppointmentToAPIRequest(a, "", ""))
	if err != nil {
		u.audit(ctx, entity.AuditActionAppointmentUpdate, id, nil, a, err)
		return nil, err
	}

	updated, err := u.resolve(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	u.invalidateSlots(ctx, updated.DoctorID)
	if a.DoctorID != "" && a.DoctorID != updated.DoctorID {
		u.invalidateSlots(ctx, a.DoctorID)
	}
	u.audit(ctx, entity.AuditActionAppointmentUpdate, id, nil, updated, nil)
	return updated, nil
}

// Delete removes the record. Cancel keeps it with a cancelled status.
func (u *appointmentUsecase) Delete(ctx context.Context, id string) error {
	err := u.appointmentRepo.Delete(ctx, id)
	u.audit(ctx, entity.AuditActionAppointmentDelete, id, nil, nil, err)
	if err != nil {
		return err
	}
	u.invalidateAllSlots(ctx)
	return nil
}

func (u *appointmentUsecase) Confirm(ctx context.Context, id string) (*entity.Appointment, error) {
	payload, err := u.appointmentRepo.Confirm(ctx, id)
	return u.finishTransition(ctx, entity.AuditActionAppointmentConfirm, id, payload, err)
}

func (u *appointmentUsecase) Cancel(ctx context.Context, id, reason string) (*entity.Appointment, error) {
	payload, err := u.appointmentRepo.Cancel(ctx, id, entity.CancelRequest{Reason: reason})
	return u.finishTransition(ctx, entity.AuditActionAppointmentCancel, id, payload, err)
}

func (u *appointmentUsecase) Complete(ctx context.Context, id string) (*entity.Appointment, error) {
	payload, err := u.appointmentRepo.Complete(ctx, id)
	return u.finishTransition(ctx, entity.AuditActionAppointmentDone, id, payload, err)
}

func (u *appointmentUsecase) MarkNoShow(ctx context.Context, id string) (*entity.Appointment, error) {
	payload, err := u.appointmentRepo.MarkNoShow(ctx, id)
	return u.finishTransition(ctx, entity.AuditActionAppointmentNoShow, id, payload, err)
}

func (u *appointmentUsecase) Reschedule(ctx context.Context, id string, start, end time.Time) (*entity.Appointment, error) {
	if !end.After(start) {
		return nil, converter.ErrInvalidTimeRange
	}
	req := entity.RescheduleRequest{
		AppointmentDatetimeStart: converter.FormatAPIDateTime(start),
		AppointmentDatetimeEnd:   converter.FormatAPIDateTime(end),
	}
	payload, err := u.appointmentRepo.Reschedule(ctx, id, req)
	return u.finishTransition(ctx, entity.AuditActionAppointmentMove, id, payload, err)
}

func (u *appointmentUsecase) finishTransition(ctx context.Context, action, id string, payload *entity.AppointmentPayload, err error) (*entity.Appointment, error) {
	if err != nil {
		u.audit(ctx, action, id, nil, nil, err)
		return nil, err
	}
	appt, err := u.resolve(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	u.invalidateSlots(ctx, appt.DoctorID)
	u.audit(ctx, action, id, nil, appt, nil)
	return appt, nil
}

func (u *appointmentUsecase) BlockTime(ctx context.Context, a *entity.Appointment) (*entity.Appointment, error) {
	payload, err := u.blockedRepo.Create(ctx, converter.MapBlockedTimeToAPIRequest(a))
	if err != nil {
		u.audit(ctx, entity.AuditActionBlockedTimeCreate, "", nil, a, err)
		return nil, err
	}

	created, err := u.mapCreatedBlock(payload, a)
	if err != nil {
		return nil, err
	}
	u.invalidateSlots(ctx, created.DoctorID)
	u.audit(ctx, entity.AuditActionBlockedTimeCreate, created.ID, nil, created, nil)
	return created, nil
}

func (u *appointmentUsecase) UnblockTime(ctx context.Context, id, doctorID string) error {
	err := u.blockedRepo.Delete(ctx, id)
	u.audit(ctx, entity.AuditActionBlockedTimeDelete, id, nil, nil, err)
	if err != nil {
		return err
	}
	if doctorID != "" {
		u.invalidateSlots(ctx, doctorID)
	} else {
		u.invalidateAllSlots(ctx)
	}
	return nil
}

// UpdateBlockedTime deletes the slot and creates its replacement. The backend has no
// update endpoint, so a failure after the delete leaves no slot at all; that case
// returns ErrBlockedTimeUpdatePartial wrapping the cause.
func (u *appointmentUsecase) UpdateBlockedTime(ctx context.Context, id string, next *entity.Appointment) (*entity.Appointment, error) {
	if err := u.blockedRepo.Delete(ctx, id); err != nil {
		u.audit(ctx, entity.AuditActionBlockedTimeUpdate, id, nil, next, err)
		return nil, err
	}

	payload, err := u.blockedRepo.Create(ctx, converter.MapBlockedTimeToAPIRequest(next))
	if err != nil {
		u.log.Errorf("Blocked time %s deleted but recreate failed: %+v", id, err)
		u.invalidateSlots(ctx, next.DoctorID)
		u.auditOutcome(ctx, entity.AuditActionBlockedTimeUpdate, entity.AuditOutcomePartial, id, nil, next, err)
		return nil, fmt.Errorf("%w: %w", ErrBlockedTimeUpdatePartial, err)
	}

	created, err := u.mapCreatedBlock(payload, next)
	if err != nil {
		return nil, err
	}
	u.invalidateSlots(ctx, created.DoctorID)
	u.audit(ctx, entity.AuditActionBlockedTimeUpdate, id, nil, created, nil)
	return created, nil
}

// mapCreatedBlock tolerates backends that echo only the new id.
func (u *appointmentUsecase) mapCreatedBlock(payload *entity.BlockedTimePayload, requested *entity.Appointment) (*entity.Appointment, error) {
	if payload != nil && payload.StartDatetime != "" {
		return converter.MapBlockedTimePayloadToAppointment(payload)
	}
	created := *requested
	created.IsBlockedTime = true
	created.Type = entity.AppointmentTypeBlockedTime
	created.PatientID = ""
	if payload != nil {
		created.ID = payload.ID.String()
	}
	if created.ID == "" {
		return nil, errors.New("backend did not return the blocked time id")
	}
	return &created, nil
}

func (u *appointmentUsecase) CheckConflict(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (*entity.ConflictCheck, error) {
	payload, err := u.appointmentRepo.CheckConflict(ctx, entity.ConflictCheckRequest{
		DoctorID:  doctorID,
		Start:     converter.FormatAPIDateTime(start),
		End:       converter.FormatAPIDateTime(end),
		ExcludeID: excludeID,
	})
	if err != nil {
		return nil, err
	}
	return converter.MapConflictCheckPayload(payload)
}

func (u *appointmentUsecase) AvailableSlots(ctx context.Context, doctorID string, date time.Time, duration int) ([]entity.AvailableSlot, error) {
	day := date.In(converter.Location()).Format(converter.DateLayout)
	key := cache.SlotsKey(doctorID, day, duration)

	var slots []entity.AvailableSlot
	if err := u.cache.Get(ctx, key, &slots); err == nil {
		return slots, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		u.log.Warnf("Slot cache read failed: %+v", err)
	}

	payloads, err := u.appointmentRepo.AvailableSlots(ctx, doctorID, day, duration)
	if err != nil {
		return nil, err
	}
	slots, err = converter.MapAvailableSlotPayloads(payloads)
	if err != nil {
		return nil, err
	}

	if err := u.cache.Set(ctx, key, slots, u.cacheCfg.SlotCacheTTL); err != nil {
		u.log.Warnf("Slot cache write failed: %+v", err)
	}
	return slots, nil
}

func (u *appointmentUsecase) ListResources(ctx context.Context) ([]entity.Resource, error) {
	var resources []entity.Resource
	if err := u.cache.Get(ctx, cache.ResourcesKey, &resources); err == nil {
		return resources, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		u.log.Warnf("Resource cache read failed: %+v", err)
	}

	doctors, err := u.doctorRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resources = converter.MapDoctorPayloadsToResources(doctors)

	if err := u.cache.Set(ctx, cache.ResourcesKey, resources, u.cacheCfg.ResourceCacheTTL); err != nil {
		u.log.Warnf("Resource cache write failed: %+v", err)
	}
	return resources, nil
}

// resolve maps a workflow response, re-reading the record when the backend answered
// without a body.
func (u *appointmentUsecase) resolve(ctx context.Context, id string, payload *entity.AppointmentPayload) (*entity.Appointment, error) {
	if payload == nil || (payload.AppointmentDatetimeStart == "" && payload.AppointmentDatetime == "") {
		return u.Get(ctx, id)
	}
	return converter.MapAPIResponseToAppointment(payload)
}

func (u *appointmentUsecase) invalidateSlots(ctx context.Context, doctorID string) {
	if doctorID == "" {
		return
	}
	if err := u.cache.Invalidate(ctx, cache.SlotsPrefix(doctorID)); err != nil {
		u.log.Warnf("Failed to invalidate slots of doctor %s: %+v", doctorID, err)
	}
}

func (u *appointmentUsecase) invalidateAllSlots(ctx context.Context) {
	if err := u.cache.Invalidate(ctx, cache.AllSlotsPrefix); err != nil {
		u.log.Warnf("Failed to invalidate slot cache: %+v", err)
	}
}

func (u *appointmentUsecase) audit(ctx context.Context, action, id string, oldValue, newValue interface{}, err error) {
	outcome := entity.AuditOutcomeSuccess
	if err != nil {
		outcome = entity.AuditOutcomeFailure
	}
	u.auditOutcome(ctx, action, outcome, id, oldValue, newValue, err)
}

func (u *appointmentUsecase) auditOutcome(ctx context.Context, action, outcome, id string, oldValue, newValue interface{}, err error) {
	u.auditService.Record(ctx, service.AuditEntry{
		Action:   action,
		Outcome:  outcome,
		EntityID: id,
		OldValue: oldValue,
		NewValue: newValue,
		Err:      err,
	})
}

func rangeQuery(start, end time.Time, doctorID, patientID string) entity.AppointmentQuery {
	q := entity.AppointmentQuery{DoctorID: doctorID, PatientID: patientID}
	if !start.IsZero() {
		q.Start = converter.FormatAPIDateTime(start)
	}
	if !end.IsZero() {
		q.End = converter.FormatAPIDateTime(end)
	}
	return q
}
