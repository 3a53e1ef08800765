package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fuel-receipts/internal/config"
)

func TestNilStoreReportsNotConfigured(t *testing.T) {
	var s *Store
	ctx := context.Background()

	if _, err := s.ListRecent(ctx, "delhi", 5); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.ListBetween(ctx, "delhi", time.Now(), time.Now()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.CountSamples(ctx, "delhi"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if err := s.EnsureSchema(ctx); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, _, err := s.TryAdvisoryLock(ctx, 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	s.Close()
}

func TestRecordSamplesEmptyIsNoop(t *testing.T) {
	var s *Store
	n, err := s.RecordSamples(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("expected no-op, got %d %v", n, err)
	}
}

func TestValidateSample(t *testing.T) {
	good := PriceSample{Location: " Delhi ", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("94.72")}
	if err := validateSample(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := good
	bad.Price = decimal.Zero
	if err := validateSample(bad); err == nil {
		t.Fatalf("expected non-positive price to be rejected")
	}

	bad = good
	bad.Location = "  "
	if err := validateSample(bad); err == nil {
		t.Fatalf("expected empty location to be rejected")
	}
}

func TestOpenWithoutDSNDisablesArchive(t *testing.T) {
	store, err := Open(context.Background(), config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store != nil {
		t.Fatalf("expected nil store without dsn")
	}
}

func TestNewPoolRequiresDSN(t *testing.T) {
	if _, err := NewPool(context.Background(), config.DatabaseConfig{}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestSchemaDeclaresArchiveTable(t *testing.T) {
	if !strings.Contains(schemaSQL, "fuel_price_samples") {
		t.Fatalf("embedded schema missing archive table")
	}
}
