package repository

import (
	"context"
	"net/url"
	"strconv"

	"clinic-calendar/internal/domain/entity"
	domainRepo "clinic-calendar/internal/domain/repository"
	"clinic-calendar/internal/infrastructure/clinicapi"
)

type appointmentRepository struct {
	client *clinicapi.Client
}

func NewAppointmentRepository(client *clinicapi.Client) domainRepo.AppointmentRepository {
	return &appointmentRepository{client: client}
}

func appointmentPath(id string, action ...string) string {
	p := "/appointments/" + url.PathEscape(id)
	for _, a := range action {
		p += "/" + a
	}
	return p
}

func (r *appointmentRepository) List(ctx context.Context, query entity.AppointmentQuery) ([]entity.AppointmentPayload, error) {
	var payloads []entity.AppointmentPayload
	if err := r.client.Get(ctx, "/appointments", listQuery(query), &payloads); err != nil {
		return nil, err
	}
	return payloads, nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*entity.AppointmentPayload, error) {
	var payload entity.AppointmentPayload
	if err := r.client.Get(ctx, appointmentPath(id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (r *appointmentRepository) Create(ctx context.Context, req entity.AppointmentRequest) (*entity.AppointmentPayload, error) {
	var payload entity.AppointmentPayload
	if err := r.client.Post(ctx, "/appointments", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id string, req entity.AppointmentRequest) (*entity.AppointmentPayload, error) {
	var payload entity.AppointmentPayload
	if err := r.client.Put(ctx, appointmentPath(id), req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, appointmentPath(id))
}

func (r *appointmentRepository) Confirm(ctx context.Context, id string) (*entity.AppointmentPayload, error) {
	return r.patch(ctx, appointmentPath(id, "confirm"), nil)
}

func (r *appointmentRepository) Cancel(ctx context.Context, id string, req entity.CancelRequest) (*entity.AppointmentPayload, error) {
	return r.patch(ctx, appointmentPath(id, "cancel"), req)
}

func (r *appointmentRepository) Complete(ctx context.Context, id string) (*entity.AppointmentPayload, error) {
	return r.patch(ctx, appointmentPath(id, "complete"), nil)
}

func (r *appointmentRepository) MarkNoShow(ctx context.Context, id string) (*entity.AppointmentPayload, error) {
	return r.patch(ctx, appointmentPath(id, "no-show"), nil)
}

func (r *appointmentRepository) Reschedule(ctx context.Context, id string, req entity.RescheduleRequest) (*entity.AppointmentPayload, error) {
	return r.patch(ctx, appointmentPath(id, "reschedule"), req)
}

func (r *appointmentRepository) CheckConflict(ctx context.Context, req entity.ConflictCheckRequest) (*entity.ConflictCheckPayload, error) {
	var payload entity.ConflictCheckPayload
	if err := r.client.Post(ctx, "/appointments/check-conflict", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (r *appointmentRepository) AvailableSlots(ctx context.Context, doctorID, date string, duration int) ([]entity.AvailableSlotPayload, error) {
	q := url.Values{}
	q.Set("doctor_id", doctorID)
	q.Set("date", date)
	if duration > 0 {
		q.Set("duration", strconv.Itoa(duration))
	}

	var slots []entity.AvailableSlotPayload
	if err := r.client.Get(ctx, "/appointments/available-slots", q, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// patch sends a workflow action. Some backends answer with an empty body; the caller then
// receives an empty payload and re-reads the record.
func (r *appointmentRepository) patch(ctx context.Context, path string, body any) (*entity.AppointmentPayload, error) {
	var payload entity.AppointmentPayload
	if err := r.client.Patch(ctx, path, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func listQuery(query entity.AppointmentQuery) url.Values {
	q := url.Values{}
	if query.Start != "" {
		q.Set("start", query.Start)
	}
	if query.End != "" {
		q.Set("end", query.End)
	}
	if query.DoctorID != "" {
		q.Set("doctor_id", query.DoctorID)
	}
	if query.PatientID != "" {
		q.Set("patient_id", query.PatientID)
	}
	return q
}
