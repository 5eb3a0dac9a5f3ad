package repository

import (
	"context"

	"clinic-calendar/internal/domain/entity"
)

type DoctorRepository interface {
	FindAll(ctx context.Context) ([]entity.DoctorPayload, error)
}
