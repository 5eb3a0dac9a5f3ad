package service

import (
	"context"
	"errors"
	"fmt"

	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var ErrNoSession = errors.New("no session in request context")

// SessionTokenSource hands the clinic client the backend token of the calling session.
// Concurrent refreshes for one session collapse into a single backend call.
type SessionTokenSource struct {
	sessions repository.SessionRepository
	auth     repository.AuthRepository
	log      *logrus.Logger
	group    singleflight.Group
}

func NewSessionTokenSource(sessions repository.SessionRepository, auth repository.AuthRepository, log *logrus.Logger) *SessionTokenSource {
	return &SessionTokenSource{
		sessions: sessions,
		auth:     auth,
		log:      log,
	}
}

func (s *SessionTokenSource) Token(ctx context.Context) (string, error) {
	p, ok := entity.PrincipalFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}
	session, err := s.sessions.FindByID(ctx, p.SessionID)
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", p.SessionID, err)
	}
	return session.Tokens.AccessToken, nil
}

func (s *SessionTokenSource) Refresh(ctx context.Context) (string, error) {
	p, ok := entity.PrincipalFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}

	token, err, shared := s.group.Do(p.SessionID, func() (interface{}, error) {
		session, err := s.sessions.FindByID(ctx, p.SessionID)
		if err != nil {
			return "", err
		}

		pair, err := s.auth.Refresh(ctx, session.Tokens.RefreshToken)
		if err != nil {
			return "", err
		}

		if err := s.sessions.UpdateTokens(ctx, p.SessionID, *pair); err != nil {
			s.log.Warnf("Failed to persist refreshed tokens for session %s: %+v", p.SessionID, err)
			return "", err
		}
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		s.log.Debugf("Reused in-flight token refresh for session %s", p.SessionID)
	}
	return token.(string), nil
}
