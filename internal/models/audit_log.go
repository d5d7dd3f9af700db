package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventType names what happened.
type EventType string

const (
	EventClientAuthenticated EventType = "CLIENT_AUTHENTICATED"
	EventClientRejected      EventType = "CLIENT_REJECTED"

	EventAuthenticationSuccess EventType = "AUTHENTICATION_SUCCESS"
	EventAuthenticationFailure EventType = "AUTHENTICATION_FAILURE"
	EventUserSignedUp          EventType = "USER_SIGNED_UP"
	EventUserUpdated           EventType = "USER_UPDATED"
	EventUserDeleted           EventType = "USER_DELETED"

	EventAccessTokenIssued EventType = "ACCESS_TOKEN_ISSUED"
	EventTokenRefreshed    EventType = "TOKEN_REFRESHED"

	EventAccessDenied       EventType = "ACCESS_DENIED"
	EventScopePolicyMissing EventType = "SCOPE_POLICY_MISSING"

	EventRateLimitExceeded EventType = "RATE_LIMIT_EXCEEDED"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "INFO"
	SeverityWarning  EventSeverity = "WARNING"
	SeverityError    EventSeverity = "ERROR"
	SeverityCritical EventSeverity = "CRITICAL"
)

// ResourceType is the kind of object an event refers to.
type ResourceType string

const (
	ResourceUser   ResourceType = "USER"
	ResourceClient ResourceType = "CLIENT"
	ResourceToken  ResourceType = "TOKEN"
	ResourceScope  ResourceType = "SCOPE"
)

// AuditDetails is the free-form JSON payload of an audit entry.
type AuditDetails map[string]any

func (a AuditDetails) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil //nolint:nilnil // SQL NULL
	}
	return json.Marshal(a)
}

func (a *AuditDetails) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("audit details: unsupported column type %T", value)
	}

	details := AuditDetails{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return err
	}
	*a = details
	return nil
}

// AuditLog is one immutable record of a credential, token or gate event.
// Scope and ClientID are denormalized so denials can be queried per client
// without joining the token table.
type AuditLog struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)"     json:"id"`
	EventType EventType     `gorm:"type:varchar(50);index;not null" json:"event_type"`
	EventTime time.Time     `gorm:"index;not null"                  json:"event_time"`
	Severity  EventSeverity `gorm:"type:varchar(20);not null"       json:"severity"`

	UserID   string `gorm:"type:varchar(64);index"  json:"uid,omitempty"`
	ClientID string `gorm:"type:varchar(255);index" json:"client_id,omitempty"`
	Scope    string `gorm:"type:varchar(255)"       json:"scope,omitempty"`
	RemoteIP string `gorm:"type:varchar(45);index"  json:"remote_ip,omitempty"`

	ResourceType ResourceType `gorm:"type:varchar(50);index" json:"resource_type"`
	ResourceID   string       `gorm:"type:varchar(255);index" json:"resource_id,omitempty"`

	Action       string       `gorm:"type:varchar(255);not null" json:"action"`
	Details      AuditDetails `gorm:"type:json"                  json:"details,omitempty"`
	Success      bool         `gorm:"index;not null"             json:"success"`
	ErrorMessage string       `gorm:"type:text"                  json:"error_message,omitempty"`

	Method string `gorm:"type:varchar(10)"  json:"method,omitempty"`
	Path   string `gorm:"type:varchar(500)" json:"path,omitempty"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
