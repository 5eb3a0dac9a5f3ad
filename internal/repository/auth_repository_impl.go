package repository

import (
	"context"

	"clinic-calendar/internal/domain/entity"
	domainRepo "clinic-calendar/internal/domain/repository"
	"clinic-calendar/internal/infrastructure/clinicapi"
)

type authRepository struct {
	client *clinicapi.Client
}

// NewAuthRepository expects a client without a token source; these calls mint tokens.
func NewAuthRepository(client *clinicapi.Client) domainRepo.AuthRepository {
	return &authRepository{client: client}
}

func (r *authRepository) Login(ctx context.Context, email, password string) (*entity.LoginPayload, error) {
	body := map[string]string{"email": email, "password": password}

	var payload entity.LoginPayload
	if err := r.client.Post(ctx, "/auth/login", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (r *authRepository) Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var pair entity.TokenPair
	if err := r.client.Post(ctx, "/auth/refresh-token", body, &pair); err != nil {
		return nil, err
	}
	if pair.RefreshToken == "" {
		// Backends that do not rotate refresh tokens keep the old one valid.
		pair.RefreshToken = refreshToken
	}
	return &pair, nil
}
