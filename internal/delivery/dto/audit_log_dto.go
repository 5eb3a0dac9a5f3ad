package dto

import (
	"time"

	"clinic-calendar/internal/domain/entity"
)

// Request DTOs

type AuditLogQuery struct {
	UserID string `validate:"omitempty,max=64"`
	Action string `validate:"omitempty,max=100"`
	Page   int    `validate:"gte=1"`
	Limit  int    `validate:"gte=1,lte=200"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Action    string      `json:"action"`
	Outcome   string      `json:"outcome"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}
