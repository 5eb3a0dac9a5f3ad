package repository

import (
	"context"

	"clinic-calendar/internal/domain/entity"
	domainRepo "clinic-calendar/internal/domain/repository"
	"clinic-calendar/internal/infrastructure/clinicapi"
)

type doctorRepository struct {
	client *clinicapi.Client
}

func NewDoctorRepository(client *clinicapi.Client) domainRepo.DoctorRepository {
	return &doctorRepository{client: client}
}

func (r *doctorRepository) FindAll(ctx context.Context) ([]entity.DoctorPayload, error) {
	var doctors []entity.DoctorPayload
	if err := r.client.Get(ctx, "/doctors", nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}
