package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoPatientProfile        = errors.New("user has no patient profile")
	ErrNotEligible             = errors.New("appointment can no longer be changed")
	ErrInvalidStatusTransition = errors.New("appointment status does not allow this action")
)

type PatientAppointmentUsecase interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]entity.Appointment, error)
	ListBlockedTime(ctx context.Context, start, end time.Time) ([]entity.Appointment, error)
	ListResources(ctx context.Context) ([]entity.Resource, error)
	Book(ctx context.Context, form *entity.AppointmentForm) (*entity.Appointment, error)
	Eligibility(ctx context.Context, id string, now time.Time) (*dto.EligibilityResponse, error)
	Cancel(ctx context.Context, id, reason string) (*entity.Appointment, error)
	Reschedule(ctx context.Context, id string, start, end time.Time) (*entity.Appointment, error)
}

type patientAppointmentUsecase struct {
	log          *logrus.Logger
	appointments AppointmentUsecase
	calendar     calendarProjection
}

func NewPatientAppointmentUsecase(log *logrus.Logger, appointments AppointmentUsecase, registry *service.CalendarSessionRegistry) PatientAppointmentUsecase {
	return &patientAppointmentUsecase{
		log:          log,
		appointments: appointments,
		calendar:     calendarProjection{registry: registry},
	}
}

// Eligibility is advisory: past or terminal appointments cannot be cancelled or moved.
func Eligibility(a *entity.Appointment, now time.Time) dto.EligibilityResponse {
	inPast := a.IsInPast(now)
	return dto.EligibilityResponse{
		AppointmentID: a.ID,
		IsInPast:      inPast,
		CanCancel:     !inPast && a.CanTransitionTo(entity.AppointmentStatusCancelled),
		CanReschedule: !inPast && a.CanReschedule(),
	}
}

func (u *patientAppointmentUsecase) patientID(ctx context.Context) (string, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return "", err
	}
	if p.PatientID == "" {
		return "", ErrNoPatientProfile
	}
	return p.PatientID, nil
}

func (u *patientAppointmentUsecase) ListByDateRange(ctx context.Context, start, end time.Time) ([]entity.Appointment, error) {
	patientID, err := u.patientID(ctx)
	if err != nil {
		return nil, err
	}
	return u.appointments.ListFiltered(ctx, start, end, "", patientID)
}

// ListBlockedTime is empty: patients see only their own bookings.
func (u *patientAppointmentUsecase) ListBlockedTime(ctx context.Context, start, end time.Time) ([]entity.Appointment, error) {
	return nil, nil
}

func (u *patientAppointmentUsecase) ListResources(ctx context.Context) ([]entity.Resource, error) {
	return u.appointments.ListResources(ctx)
}

func (u *patientAppointmentUsecase) Book(ctx context.Context, form *entity.AppointmentForm) (*entity.Appointment, error) {
	patientID, err := u.patientID(ctx)
	if err != nil {
		return nil, err
	}
	f := *form
	f.PatientID = patientID
	f.IsBlockedTime = false

	appt, err := converter.AppointmentFormToAppointment(&f)
	if err != nil {
		return nil, err
	}
	if appt.IsInPast(time.Now()) {
		return nil, ErrNotEligible
	}
	created, err := u.appointments.Create(ctx, appt)
	if err != nil {
		return nil, err
	}
	u.calendar.added(ctx, created)
	return created, nil
}

func (u *patientAppointmentUsecase) Eligibility(ctx context.Context, id string, now time.Time) (*dto.EligibilityResponse, error) {
	appt, err := u.ownAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := Eligibility(appt, now)
	return &resp, nil
}

func (u *patientAppointmentUsecase) Cancel(ctx context.Context, id, reason string) (*entity.Appointment, error) {
	appt, err := u.ownAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Eligibility(appt, time.Now()).CanCancel {
		return nil, ErrNotEligible
	}
	cancelled, err := u.appointments.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	u.calendar.changed(ctx, cancelled)
	return cancelled, nil
}

func (u *patientAppointmentUsecase) Reschedule(ctx context.Context, id string, start, end time.Time) (*entity.Appointment, error) {
	appt, err := u.ownAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Eligibility(appt, time.Now()).CanReschedule {
		return nil, ErrNotEligible
	}
	moved, err := u.appointments.Reschedule(ctx, id, start, end)
	if err != nil {
		return nil, err
	}
	u.calendar.changed(ctx, moved)
	return moved, nil
}

func (u *patientAppointmentUsecase) ownAppointment(ctx context.Context, id string) (*entity.Appointment, error) {
	patientID, err := u.patientID(ctx)
	if err != nil {
		return nil, err
	}
	appt, err := u.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		u.log.Warnf("Patient %s requested appointment %s of patient %s", patientID, id, appt.PatientID)
		return nil, ErrNotOwner
	}
	return appt, nil
}
