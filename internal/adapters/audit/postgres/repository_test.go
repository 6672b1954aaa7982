package postgres

import (
	"context"
	"testing"

	"tailor-sms-dispatch/internal/domain"
	"tailor-sms-dispatch/internal/ports"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := NewWithDB(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func TestSaveAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sent := domain.NewAuditRecord(domain.SendRequest{
		RecipientPhone: "0799123456",
		MessageBody:    "Your suit is ready for fitting",
		CustomerID:     "c-1",
		SimID:          1,
	}, "+93799123456", domain.AuditStatusSent)

	failed := domain.NewAuditRecord(domain.SendRequest{
		RecipientPhone: "0700000000",
		MessageBody:    "Hi",
		CustomerID:     "c-2",
	}, "+93700000000", domain.AuditStatusFailed)

	for _, rec := range []domain.AuditRecord{sent, failed} {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	all, err := repo.List(ctx, ports.AuditFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}

	got, err := repo.List(ctx, ports.AuditFilter{CustomerID: "c-1"})
	if err != nil {
		t.Fatalf("List by customer: %v", err)
	}
	if len(got) != 1 || got[0].PhoneNumber != "+93799123456" {
		t.Fatalf("customer filter wrong: %+v", got)
	}
	if got[0].Segments != 1 || got[0].MessageLength != len("Your suit is ready for fitting") {
		t.Fatalf("segment metadata wrong: %+v", got[0])
	}

	got, err = repo.List(ctx, ports.AuditFilter{Status: domain.AuditStatusFailed})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if len(got) != 1 || got[0].CustomerID != "c-2" {
		t.Fatalf("status filter wrong: %+v", got)
	}
}

func TestList_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := domain.NewAuditRecord(domain.SendRequest{
			RecipientPhone: "0799123456",
			MessageBody:    "Hi",
		}, "+93799123456", domain.AuditStatusSent)
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	page, err := repo.List(ctx, ports.AuditFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
}
