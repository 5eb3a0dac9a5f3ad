package repository

import (
	"context"

	"clinic-calendar/internal/domain/entity"
)

// AppointmentRepository is backed by the clinic REST API; it speaks backend payloads.
type AppointmentRepository interface {
	List(ctx context.Context, query entity.AppointmentQuery) ([]entity.AppointmentPayload, error)
	FindByID(ctx context.Context, id string) (*entity.AppointmentPayload, error)
	Create(ctx context.Context, req entity.AppointmentRequest) (*entity.AppointmentPayload, error)
	Update(ctx context.Context, id string, req entity.AppointmentRequest) (*entity.AppointmentPayload, error)
	Delete(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) (*entity.AppointmentPayload, error)
	Cancel(ctx context.Context, id string, req entity.CancelRequest) (*entity.AppointmentPayload, error)
	Complete(ctx context.Context, id string) (*entity.AppointmentPayload, error)
	MarkNoShow(ctx context.Context, id string) (*entity.AppointmentPayload, error)
	Reschedule(ctx context.Context, id string, req entity.RescheduleRequest) (*entity.AppointmentPayload, error)
	CheckConflict(ctx context.Context, req entity.ConflictCheckRequest) (*entity.ConflictCheckPayload, error)
	AvailableSlots(ctx context.Context, doctorID, date string, duration int) ([]entity.AvailableSlotPayload, error)
}
