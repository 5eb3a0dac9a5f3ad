package service

import (
	"context"

	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditEntry describes one calendar mutation attempt.
type AuditEntry struct {
	Action   string
	Outcome  string
	EntityID string
	OldValue interface{}
	NewValue interface{}
	Err      error
}

type AuditService interface {
	Record(ctx context.Context, entry AuditEntry) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// Record stores the entry against the caller found in ctx.
func (s *auditService) Record(ctx context.Context, entry AuditEntry) error {
	metadata := entity.JSON{
		"entity_id": entry.EntityID,
		"old_value": entry.OldValue,
		"new_value": entry.NewValue,
	}
	if entry.Err != nil {
		metadata["error"] = entry.Err.Error()
	}

	auditLog := &entity.AuditLog{
		Action:   entry.Action,
		Outcome:  entry.Outcome,
		Metadata: metadata,
	}
	if p, ok := entity.PrincipalFromContext(ctx); ok {
		auditLog.UserID = p.UserID
		auditLog.SessionID = p.SessionID
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
