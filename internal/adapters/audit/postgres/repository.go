package postgres

import (
	"context"
	"fmt"

	"tailor-sms-dispatch/internal/domain"
	"tailor-sms-dispatch/internal/ports"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Repository implements ports.AuditRepository on PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// New opens a PostgreSQL connection and returns a Repository.
func New(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Repository{db: db}, nil
}

// NewWithDB wraps an existing gorm handle. Tests use this with an
// in-memory SQLite database.
func NewWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the audit table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&domain.AuditRecord{})
}

// Close closes the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts one audit record.
func (r *Repository) Save(ctx context.Context, rec domain.AuditRecord) error {
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// List returns audit records matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f ports.AuditFilter) ([]domain.AuditRecord, error) {
	q := r.db.WithContext(ctx).Model(&domain.AuditRecord{})

	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	q = q.Order("timestamp DESC")

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var recs []domain.AuditRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	return recs, nil
}
