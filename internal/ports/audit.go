package ports

import (
	"context"

	"tailor-sms-dispatch/internal/domain"
)

// AuditSink receives the fire-and-forget record of each send attempt.
type AuditSink interface {
	Record(ctx context.Context, rec domain.AuditRecord) error
}

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	CustomerID string
	Status     domain.AuditStatus
	Limit      int
	Offset     int
}

// AuditRepository persists and queries audit records.
type AuditRepository interface {
	Save(ctx context.Context, rec domain.AuditRecord) error
	List(ctx context.Context, f AuditFilter) ([]domain.AuditRecord, error)
}
