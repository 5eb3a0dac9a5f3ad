package repository

import (
	"context"
	"errors"

	"clinic-calendar/internal/domain/entity"
)

// ErrSessionNotFound is returned when a session expired or was logged out.
var ErrSessionNotFound = errors.New("session not found")

// AuthRepository talks to the backend's own auth endpoints.
type AuthRepository interface {
	Login(ctx context.Context, email, password string) (*entity.LoginPayload, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error)
}

// SessionRepository stores gateway sessions and their backend tokens.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	FindByID(ctx context.Context, id string) (*entity.Session, error)
	UpdateTokens(ctx context.Context, id string, tokens entity.TokenPair) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
