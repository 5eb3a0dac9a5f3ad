package repository

import (
	"context"
	"net/url"

	"clinic-calendar/internal/domain/entity"
	domainRepo "clinic-calendar/internal/domain/repository"
	"clinic-calendar/internal/infrastructure/clinicapi"
)

type blockedTimeRepository struct {
	client *clinicapi.Client
}

func NewBlockedTimeRepository(client *clinicapi.Client) domainRepo.BlockedTimeRepository {
	return &blockedTimeRepository{client: client}
}

func (r *blockedTimeRepository) List(ctx context.Context, query entity.AppointmentQuery) ([]entity.BlockedTimePayload, error) {
	var payloads []entity.BlockedTimePayload
	if err := r.client.Get(ctx, "/blocked-time-slots", listQuery(query), &payloads); err != nil {
		return nil, err
	}
	return payloads, nil
}

func (r *blockedTimeRepository) Create(ctx context.Context, req entity.BlockedTimeRequest) (*entity.BlockedTimePayload, error) {
	var payload entity.BlockedTimePayload
	if err := r.client.Post(ctx, "/blocked-time-slots", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (r *blockedTimeRepository) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, "/blocked-time-slots/"+url.PathEscape(id))
}
