package repository

import (
	"context"

	"clinic-calendar/internal/domain/entity"
)

type BlockedTimeRepository interface {
	List(ctx context.Context, query entity.AppointmentQuery) ([]entity.BlockedTimePayload, error)
	Create(ctx context.Context, req entity.BlockedTimeRequest) (*entity.BlockedTimePayload, error)
	Delete(ctx context.Context, id string) error
}
