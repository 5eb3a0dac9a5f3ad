package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinic-calendar/internal/domain/entity"
	domainRepo "clinic-calendar/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type sessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository stores sessions in Redis; each write renews the ttl.
func NewSessionRepository(client *redis.Client, ttl time.Duration) domainRepo.SessionRepository {
	return &sessionRepository{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *sessionRepository) Save(ctx context.Context, session *entity.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(session.ID), raw, r.ttl).Err()
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainRepo.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (r *sessionRepository) UpdateTokens(ctx context.Context, id string, tokens entity.TokenPair) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	session.Tokens = tokens
	return r.Save(ctx, session)
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

func (r *sessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
