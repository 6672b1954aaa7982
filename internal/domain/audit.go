package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// AuditStatus is the recorded outcome of a send attempt.
type AuditStatus string

const (
	AuditStatusSent   AuditStatus = "sent"
	AuditStatusFailed AuditStatus = "failed"
)

// smsSegmentSize is how many characters fit in one GSM SMS segment.
const smsSegmentSize = 160

// AuditRecord is the fire-and-forget trail of one send attempt. A sink
// failing to record it must never change the caller's send outcome.
type AuditRecord struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID    string      `gorm:"size:64;index" json:"customer_id,omitempty"`
	PhoneNumber   string      `gorm:"size:20;not null;index" json:"phone_number"`
	Message       string      `gorm:"type:text;not null" json:"message"`
	Status        AuditStatus `gorm:"size:20;not null;index" json:"status"`
	TemplateID    string      `gorm:"size:64" json:"template_id,omitempty"`
	SimSlot       int         `json:"sim_slot"`
	Timestamp     time.Time   `gorm:"not null;index" json:"timestamp"`
	MessageLength int         `json:"message_length"`
	Segments      int         `json:"sms_segment_count"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// SegmentCount returns how many SMS segments a message of n characters
// occupies: ceil(n / 160).
func SegmentCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + smsSegmentSize - 1) / smsSegmentSize
}

// NewAuditRecord builds the audit trail entry for one send attempt.
func NewAuditRecord(req SendRequest, normalizedPhone string, status AuditStatus) AuditRecord {
	// Message bodies are often Persian; count characters, not bytes.
	length := utf8.RuneCountInString(req.MessageBody)
	return AuditRecord{
		ID:            uuid.New(),
		CustomerID:    req.CustomerID,
		PhoneNumber:   normalizedPhone,
		Message:       req.MessageBody,
		Status:        status,
		TemplateID:    req.TemplateID,
		SimSlot:       req.SimID,
		Timestamp:     time.Now().UTC(),
		MessageLength: length,
		Segments:      SegmentCount(length),
	}
}
