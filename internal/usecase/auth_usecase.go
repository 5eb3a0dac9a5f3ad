package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/domain/repository"
	"clinic-calendar/internal/infrastructure/clinicapi"
	"clinic-calendar/internal/service"
	"clinic-calendar/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUnsupportedRole    = errors.New("this account role cannot use the calendar")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, sessionID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, sessionID string) (*dto.UserResponse, error)
}

type authUsecase struct {
	log          *logrus.Logger
	authRepo     repository.AuthRepository
	sessionRepo  repository.SessionRepository
	jwtService   *jwt.JWTService
	registry     *service.CalendarSessionRegistry
	auditService service.AuditService
}

func NewAuthUsecase(
	log *logrus.Logger,
	authRepo repository.AuthRepository,
	sessionRepo repository.SessionRepository,
	jwtService *jwt.JWTService,
	registry *service.CalendarSessionRegistry,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		log:          log,
		authRepo:     authRepo,
		sessionRepo:  sessionRepo,
		jwtService:   jwtService,
		registry:     registry,
		auditService: auditService,
	}
}

// Login checks the credentials against the clinic backend, keeps the backend tokens in a
// new session and hands out gateway tokens bound to that session.
func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	payload, err := u.authRepo.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch clinicapi.StatusCode(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
			return nil, ErrInvalidCredentials
		}
		u.log.Warnf("Failed to log in against clinic backend: %+v", err)
		return nil, err
	}
	if !entity.IsKnownRole(payload.User.Role) {
		return nil, ErrUnsupportedRole
	}

	session := &entity.Session{
		ID: uuid.New().String(),
		User: entity.User{
			ID:        payload.User.ID.String(),
			Email:     payload.User.Email,
			FullName:  payload.User.FullName,
			Role:      payload.User.Role,
			DoctorID:  payload.User.DoctorID.String(),
			PatientID: payload.User.PatientID.String(),
		},
		Tokens: entity.TokenPair{
			AccessToken:  payload.AccessToken,
			RefreshToken: payload.RefreshToken,
		},
		CreatedAt: time.Now(),
	}

	if err := u.sessionRepo.Save(ctx, session); err != nil {
		u.log.Warnf("Failed to store session: %+v", err)
		return nil, err
	}

	resp, err := u.issueTokens(session)
	if err != nil {
		return nil, err
	}

	u.auditService.Record(entity.WithPrincipal(ctx, principalOf(session)), service.AuditEntry{
		Action:   entity.AuditActionSessionLogin,
		Outcome:  entity.AuditOutcomeSuccess,
		EntityID: session.User.ID,
	})
	return resp, nil
}

func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	if err := u.sessionRepo.Delete(ctx, sessionID); err != nil {
		u.log.Warnf("Failed to delete session: %+v", err)
		return err
	}
	u.registry.Remove(sessionID)

	u.auditService.Record(ctx, service.AuditEntry{
		Action:   entity.AuditActionSessionLogout,
		Outcome:  entity.AuditOutcomeSuccess,
		EntityID: sessionID,
	})
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	session, err := u.sessionRepo.FindByID(ctx, claims.SessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrTokenRevoked
	}
	if err != nil {
		u.log.Warnf("Failed to load session: %+v", err)
		return nil, err
	}

	// Saving renews the session ttl.
	if err := u.sessionRepo.Save(ctx, session); err != nil {
		u.log.Warnf("Failed to renew session: %+v", err)
		return nil, err
	}
	return u.issueTokens(session)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, sessionID string) (*dto.UserResponse, error) {
	session, err := u.sessionRepo.FindByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrTokenRevoked
	}
	if err != nil {
		u.log.Warnf("Failed to load session: %+v", err)
		return nil, err
	}
	return converter.SessionUserToResponse(session.User), nil
}

func (u *authUsecase) issueTokens(session *entity.Session) (*dto.TokenResponse, error) {
	sub := jwt.Subject{
		SessionID: session.ID,
		UserID:    session.User.ID,
		Role:      session.User.Role,
		DoctorID:  session.User.DoctorID,
		PatientID: session.User.PatientID,
	}

	accessToken, _, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, _, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		User:         converter.SessionUserToResponse(session.User),
	}, nil
}

func principalOf(session *entity.Session) entity.Principal {
	return entity.Principal{
		SessionID: session.ID,
		UserID:    session.User.ID,
		Role:      session.User.Role,
		DoctorID:  session.User.DoctorID,
		PatientID: session.User.PatientID,
	}
}
