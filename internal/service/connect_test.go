package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dreamtrack/dreamtrack/internal/validation"
)

func TestRecordConnectPersists(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	svc := NewConnectService(e.connects)
	svc.now = func() time.Time { return clockWeek1 }

	connect, err := svc.Record(context.Background(), testUser, "Sam")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if connect.ID == "" {
		t.Error("expected connect to be assigned an id")
	}
	if !connect.CreatedAt.Equal(clockWeek1) {
		t.Errorf("expected CreatedAt %v, got %v", clockWeek1, connect.CreatedAt)
	}

	connects, err := svc.Connects(context.Background(), testUser)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(connects) != 1 || connects[0].Name != "Sam" {
		t.Fatalf("expected one stored connect named Sam, got %+v", connects)
	}
}

func TestRecordConnectRejectsBlankName(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	svc := NewConnectService(e.connects)

	_, err := svc.Record(context.Background(), testUser, "   ")
	if !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}

	connects, err := svc.Connects(context.Background(), testUser)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(connects) != 0 {
		t.Fatalf("expected no connects stored, got %d", len(connects))
	}
}

func TestRecordConnectSurfacesStoreFailure(t *testing.T) {
	e := newTestEngine(t, clockWeek1)
	svc := NewConnectService(e.connects)

	e.store.failOps["upsert"] = true
	_, err := svc.Record(context.Background(), testUser, "Sam")
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store failure to surface, got %v", err)
	}
}
