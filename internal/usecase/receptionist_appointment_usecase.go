package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/service"

	"github.com/sirupsen/logrus"
)

var ErrSlotConflict = errors.New("the selected time conflicts with another appointment")

// ReceptionistAppointmentUsecase books for any patient and checks conflicts first.
type ReceptionistAppointmentUsecase interface {
	ListAppointments(ctx context.Context, start, end time.Time, doctorID string) ([]entity.Appointment, error)
	Book(ctx context.Context, form *entity.AppointmentForm) (*entity.Appointment, error)
	Confirm(ctx context.Context, id string) (*entity.Appointment, error)
	Cancel(ctx context.Context, id, reason string) (*entity.Appointment, error)
	Reschedule(ctx context.Context, id string, start, end time.Time) (*entity.Appointment, error)
	CheckConflict(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (*entity.ConflictCheck, error)
	AvailableSlots(ctx context.Context, doctorID string, date time.Time, duration int) ([]entity.AvailableSlot, error)
}

type receptionistAppointmentUsecase struct {
	log          *logrus.Logger
	appointments AppointmentUsecase
	calendar     calendarProjection
}

func NewReceptionistAppointmentUsecase(log *logrus.Logger, appointments AppointmentUsecase, registry *service.CalendarSessionRegistry) ReceptionistAppointmentUsecase {
	return &receptionistAppointmentUsecase{
		log:          log,
		appointments: appointments,
		calendar:     calendarProjection{registry: registry},
	}
}

func (u *receptionistAppointmentUsecase) ListAppointments(ctx context.Context, start, end time.Time, doctorID string) ([]entity.Appointment, error) {
	return u.appointments.ListFiltered(ctx, start, end, doctorID, "")
}

func (u *receptionistAppointmentUsecase) Book(ctx context.Context, form *entity.AppointmentForm) (*entity.Appointment, error) {
	f := *form
	f.IsBlockedTime = false
	appt, err := converter.AppointmentFormToAppointment(&f)
	if err != nil {
		return nil, err
	}
	if err := u.ensureFree(ctx, appt.DoctorID, appt.Start, appt.End, ""); err != nil {
		return nil, err
	}
	created, err := u.appointments.Create(ctx, appt)
	if err != nil {
		return nil, err
	}
	u.calendar.added(ctx, created)
	return created, nil
}

func (u *receptionistAppointmentUsecase) Confirm(ctx context.Context, id string) (*entity.Appointment, error) {
	return u.applied(ctx)(u.appointments.Confirm(ctx, id))
}

func (u *receptionistAppointmentUsecase) Cancel(ctx context.Context, id, reason string) (*entity.Appointment, error) {
	return u.applied(ctx)(u.appointments.Cancel(ctx, id, reason))
}

func (u *receptionistAppointmentUsecase) Reschedule(ctx context.Context, id string, start, end time.Time) (*entity.Appointment, error) {
	appt, err := u.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.ensureFree(ctx, appt.DoctorID, start, end, id); err != nil {
		return nil, err
	}
	return u.applied(ctx)(u.appointments.Reschedule(ctx, id, start, end))
}

// applied passes a backend result through, refreshing the caller's calendar on success.
func (u *receptionistAppointmentUsecase) applied(ctx context.Context) func(*entity.Appointment, error) (*entity.Appointment, error) {
	return func(appt *entity.Appointment, err error) (*entity.Appointment, error) {
		if err != nil {
			return nil, err
		}
		u.calendar.changed(ctx, appt)
		return appt, nil
	}
}

func (u *receptionistAppointmentUsecase) CheckConflict(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (*entity.ConflictCheck, error) {
	return u.appointments.CheckConflict(ctx, doctorID, start, end, excludeID)
}

func (u *receptionistAppointmentUsecase) AvailableSlots(ctx context.Context, doctorID string, date time.Time, duration int) ([]entity.AvailableSlot, error) {
	return u.appointments.AvailableSlots(ctx, doctorID, date, duration)
}

func (u *receptionistAppointmentUsecase) ensureFree(ctx context.Context, doctorID string, start, end time.Time, excludeID string) error {
	check, err := u.appointments.CheckConflict(ctx, doctorID, start, end, excludeID)
	if err != nil {
		return err
	}
	if check.HasConflict {
		u.log.Debugf("Conflict for doctor %s at %s: %d overlapping entries", doctorID, start.Format(time.RFC3339), len(check.Conflicts))
		return ErrSlotConflict
	}
	return nil
}
