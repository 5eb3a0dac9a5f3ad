package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AuditLog records the outcome of a calendar mutation made through the gateway.
type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	SessionID string    `gorm:"type:varchar(64);index" json:"session_id,omitempty"`
	Action    string    `gorm:"type:varchar(100);not null;index" json:"action"`
	Outcome   string    `gorm:"type:varchar(20);not null" json:"outcome"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Audit outcomes
const (
	AuditOutcomeSuccess  = "success"
	AuditOutcomeFailure  = "failure"
	AuditOutcomeReverted = "reverted"
	AuditOutcomePartial  = "partial"
)

// Calendar audit actions
const (
	AuditActionSessionLogin       = "session.login"
	AuditActionSessionLogout      = "session.logout"
	AuditActionAppointmentCreate  = "appointment.create"
	AuditActionAppointmentUpdate  = "appointment.update"
	AuditActionAppointmentDelete  = "appointment.delete"
	AuditActionAppointmentConfirm = "appointment.confirm"
	AuditActionAppointmentCancel  = "appointment.cancel"
	AuditActionAppointmentDone    = "appointment.complete"
	AuditActionAppointmentNoShow  = "appointment.no_show"
	AuditActionAppointmentMove    = "appointment.reschedule"
	AuditActionBlockedTimeCreate  = "blocked_time.create"
	AuditActionBlockedTimeUpdate  = "blocked_time.update"
	AuditActionBlockedTimeDelete  = "blocked_time.delete"
	AuditActionEventDrop          = "event.drop"
	AuditActionEventResize        = "event.resize"
)
