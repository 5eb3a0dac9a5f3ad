package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthenticated = errors.New("no authenticated user in context")
	ErrNotOwner        = errors.New("appointment does not belong to you")
	ErrNoDoctorProfile = errors.New("user has no doctor profile")
)

func principalFrom(ctx context.Context) (entity.Principal, error) {
	p, ok := entity.PrincipalFromContext(ctx)
	if !ok {
		return entity.Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// DoctorAppointmentUsecase scopes the access service to the calling doctor. Its checks
// are advisory; the backend has the final word.
type DoctorAppointmentUsecase interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]entity.Appointment, error)
	ListBlockedTime(ctx context.Context, start, end time.Time) ([]entity.Appointment, error)
	ListResources(ctx context.Context) ([]entity.Resource, error)
	BlockTime(ctx context.Context, form *entity.AppointmentForm) (*entity.Appointment, error)
	UpdateBlockedTime(ctx context.Context, id string, form *entity.AppointmentForm) (*entity.Appointment, error)
	UnblockTime(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) (*entity.Appointment, error)
	Complete(ctx context.Context, id string) (*entity.Appointment, error)
	MarkNoShow(ctx context.Context, id string) (*entity.Appointment, error)
}

type doctorAppointmentUsecase struct {
	log          *logrus.Logger
	appointments AppointmentUsecase
	calendar     calendarProjection
}

// NewDoctorAppointmentUsecase wires the doctor's actions. Successful actions are
// applied to the caller's calendar in registry, which may be nil.
func NewDoctorAppointmentUsecase(log *logrus.Logger, appointments AppointmentUsecase, registry *service.CalendarSessionRegistry) DoctorAppointmentUsecase {
	return &doctorAppointmentUsecase{
		log:          log,
		appointments: appointments,
		calendar:     calendarProjection{registry: registry},
	}
}

func (u *doctorAppointmentUsecase) doctorID(ctx context.Context) (string, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return "", err
	}
	if p.DoctorID == "" {
		return "", ErrNoDoctorProfile
	}
	return p.DoctorID, nil
}

func (u *doctorAppointmentUsecase) ListByDateRange(ctx context.Context, start, end time.Time) ([]entity.Appointment, error) {
	doctorID, err := u.doctorID(ctx)
	if err != nil {
		return nil, err
	}
	return u.appointments.ListFiltered(ctx, start, end, doctorID, "")
}

func (u *doctorAppointmentUsecase) ListBlockedTime(ctx context.Context, start, end time.Time) ([]entity.Appointment, error) {
	doctorID, err := u.doctorID(ctx)
	if err != nil {
		return nil, err
	}
	return u.appointments.ListBlockedTimeForDoctor(ctx, start, end, doctorID)
}

// ListResources returns the doctor's own lane only.
func (u *doctorAppointmentUsecase) ListResources(ctx context.Context) ([]entity.Resource, error) {
	doctorID, err := u.doctorID(ctx)
	if err != nil {
		return nil, err
	}
	resources, err := u.appointments.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range resources {
		if r.ID == doctorID {
			return []entity.Resource{r}, nil
		}
	}
	return []entity.Resource{}, nil
}

func (u *doctorAppointmentUsecase) blockFromForm(ctx context.Context, form *entity.AppointmentForm) (*entity.Appointment, error) {
	doctorID, err := u.doctorID(ctx)
	if err != nil {
		return nil, err
	}
	f := *form
	f.IsBlockedTime = true
	f.DoctorID = doctorID
	f.PatientID = ""
	return converter.AppointmentFormToAppointment(&f)
}

func (u *doctorAppointmentUsecase) BlockTime(ctx context.Context, form *entity.AppointmentForm) (*entity.Appointment, error) {
	block, err := u.blockFromForm(ctx, form)
	if err != nil {
		return nil, err
	}
	created, err := u.appointments.BlockTime(ctx, block)
	if err != nil {
		return nil, err
	}
	u.calendar.blocked(ctx, created)
	return created, nil
}

func (u *doctorAppointmentUsecase) UpdateBlockedTime(ctx context.Context, id string, form *entity.AppointmentForm) (*entity.Appointment, error) {
	block, err := u.blockFromForm(ctx, form)
	if err != nil {
		return nil, err
	}
	if err := u.checkOwnBlock(ctx, id, block.DoctorID); err != nil {
		return nil, err
	}
	updated, err := u.appointments.UpdateBlockedTime(ctx, id, block)
	if err != nil {
		// The old slot is already gone on the backend.
		if errors.Is(err, ErrBlockedTimeUpdatePartial) {
			u.calendar.unblocked(ctx, id)
		}
		return nil, err
	}
	u.calendar.unblocked(ctx, id)
	u.calendar.blocked(ctx, updated)
	return updated, nil
}

func (u *doctorAppointmentUsecase) UnblockTime(ctx context.Context, id string) error {
	doctorID, err := u.doctorID(ctx)
	if err != nil {
		return err
	}
	if err := u.checkOwnBlock(ctx, id, doctorID); err != nil {
		return err
	}
	if err := u.appointments.UnblockTime(ctx, id, doctorID); err != nil {
		return err
	}
	u.calendar.unblocked(ctx, id)
	return nil
}

// checkOwnBlock looks the slot up among the doctor's own blocked time. The backend has
// no single-slot endpoint, so an unknown id and a colleague's slot look the same.
func (u *doctorAppointmentUsecase) checkOwnBlock(ctx context.Context, id, doctorID string) error {
	id = strings.TrimPrefix(id, entity.BlockedEventPrefix)
	if store, ok := u.calendar.store(ctx); ok {
		if e, found := store.FindEvent(entity.BlockedEventPrefix + id); found && e.ExtendedProps.Appointment != nil {
			if e.ExtendedProps.Appointment.DoctorID == doctorID {
				return nil
			}
		}
	}

	own, err := u.appointments.ListBlockedTimeForDoctor(ctx, time.Time{}, time.Time{}, doctorID)
	if err != nil {
		return err
	}
	for _, slot := range own {
		if slot.ID == id && slot.DoctorID == doctorID {
			return nil
		}
	}
	u.log.Warnf("Doctor %s attempted to change blocked time %s outside their own slots", doctorID, id)
	return ErrNotOwner
}

func (u *doctorAppointmentUsecase) Confirm(ctx context.Context, id string) (*entity.Appointment, error) {
	return u.transition(ctx, id, entity.AppointmentStatusConfirmed, u.appointments.Confirm)
}

func (u *doctorAppointmentUsecase) Complete(ctx context.Context, id string) (*entity.Appointment, error) {
	return u.transition(ctx, id, entity.AppointmentStatusCompleted, u.appointments.Complete)
}

func (u *doctorAppointmentUsecase) MarkNoShow(ctx context.Context, id string) (*entity.Appointment, error) {
	return u.transition(ctx, id, entity.AppointmentStatusNoShow, u.appointments.MarkNoShow)
}

func (u *doctorAppointmentUsecase) transition(
	ctx context.Context,
	id string,
	next entity.AppointmentStatus,
	apply func(ctx context.Context, id string) (*entity.Appointment, error),
) (*entity.Appointment, error) {
	if err := u.checkTransition(ctx, id, next); err != nil {
		return nil, err
	}
	appt, err := apply(ctx, id)
	if err != nil {
		return nil, err
	}
	u.calendar.changed(ctx, appt)
	return appt, nil
}

func (u *doctorAppointmentUsecase) checkTransition(ctx context.Context, id string, next entity.AppointmentStatus) error {
	doctorID, err := u.doctorID(ctx)
	if err != nil {
		return err
	}
	appt, err := u.appointments.Get(ctx, id)
	if err != nil {
		return err
	}
	if appt.DoctorID != doctorID {
		u.log.Warnf("Doctor %s attempted %s on appointment %s of doctor %s", doctorID, next, id, appt.DoctorID)
		return ErrNotOwner
	}
	if !appt.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	return nil
}
