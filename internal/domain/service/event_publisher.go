package service

import (
	"context"
	"time"
)

// Audit event types.
const (
	EventAccountRegistered  = "account.registered"
	EventAccountUpdated     = "account.updated"
	EventAccountRoleChanged = "account.role_changed"
	EventLoginSucceeded     = "auth.login_succeeded"
	EventLoginFailed        = "auth.login_failed"
	EventItemCreated        = "item.created"
	EventItemUpdated        = "item.updated"
	EventItemDeleted        = "item.deleted"
)

// AuditEvent records a security-relevant state change.
type AuditEvent struct {
	Type       string            `json:"type"`
	AccountID  string            `json:"account_id,omitempty"`  // Acting account, empty for anonymous attempts
	ResourceID string            `json:"resource_id,omitempty"` // Affected account or item
	RequestID  string            `json:"request_id,omitempty"`  // For distributed tracing
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// EventPublisher defines the interface for publishing audit events to a message queue
type EventPublisher interface {
	// PublishAuditEvent publishes one audit event.
	PublishAuditEvent(ctx context.Context, event *AuditEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
