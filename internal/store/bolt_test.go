package store_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/herbadrink/storefront/internal/models"
	"github.com/herbadrink/storefront/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func pendingOrder(id string) *models.Order {
	return &models.Order{
		ID:         id,
		Name:       "Budi Santoso",
		Email:      "budi@example.com",
		Phone:      "+628123456789",
		TotalPrice: 50000,
		Status:     models.OrderStatusPending,
	}
}

func mustCreate(t *testing.T, s *store.Store, o *models.Order, items []models.OrderItem) *models.Order {
	t.Helper()
	created, _, err := s.CreateOrder(o, items)
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	return created
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("anon-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateOrderIdempotent(t *testing.T) {
	s := newTestStore(t)
	items := []models.OrderItem{{VariantID: 3, Quantity: 2, Price: 25000}}

	first, created, err := s.CreateOrder(pendingOrder("anon-1a2b3c4d"), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true on first call")
	}

	second, created, err := s.CreateOrder(pendingOrder("anon-1a2b3c4d"), items)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if created {
		t.Fatal("expected created=false on duplicate call")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("createdAt should not change on idempotent create")
	}

	got, err := s.Items("anon-1a2b3c4d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].OrderID != "anon-1a2b3c4d" {
		t.Fatalf("expected one item stamped with the order id, got %+v", got)
	}
}

func TestUpdateStatusMissingOrderIsNoop(t *testing.T) {
	s := newTestStore(t)

	before, after, rows, err := s.UpdateStatus("anon-missing", models.OrderStatusPaid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows affected, got %d", rows)
	}
	if before != nil || after != nil {
		t.Fatal("expected nil snapshots for a missing order")
	}
}

func TestUpdateStatusWritesNewStatus(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, pendingOrder("anon-aaa11111"), nil)

	before, after, rows, err := s.UpdateStatus("anon-aaa11111", models.OrderStatusPaid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}
	if before.Status != models.OrderStatusPending {
		t.Fatalf("expected pending before, got %q", before.Status)
	}
	if after.Status != models.OrderStatusPaid {
		t.Fatalf("expected paid after, got %q", after.Status)
	}

	stored, err := s.Get("anon-aaa11111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != models.OrderStatusPaid {
		t.Fatalf("expected persisted status paid, got %q", stored.Status)
	}
}

func TestUpdateStatusSameValueSkipsWrite(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, pendingOrder("anon-bbb22222"), nil)

	if _, _, rows, _ := s.UpdateStatus("anon-bbb22222", models.OrderStatusPaid); rows != 1 {
		t.Fatalf("expected first update to write, got %d rows", rows)
	}
	_, after, rows, err := s.UpdateStatus("anon-bbb22222", models.OrderStatusPaid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected redundant update to skip the write, got %d rows", rows)
	}
	if after.Status != models.OrderStatusPaid {
		t.Fatalf("expected paid snapshot, got %q", after.Status)
	}
}

func TestUpdateStatusNeverRegressesTerminal(t *testing.T) {
	for _, terminal := range []string{
		models.OrderStatusPaid,
		models.OrderStatusFailed,
		models.OrderStatusComplete,
	} {
		t.Run(terminal, func(t *testing.T) {
			s := newTestStore(t)
			o := pendingOrder("anon-ccc33333")
			o.Status = terminal
			mustCreate(t, s, o, nil)

			_, after, rows, err := s.UpdateStatus("anon-ccc33333", models.OrderStatusPending)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rows != 0 {
				t.Fatalf("expected regression to pending to be refused, got %d rows", rows)
			}
			if after.Status != terminal {
				t.Fatalf("expected status to remain %q, got %q", terminal, after.Status)
			}
		})
	}
}

func TestUpdateStatusTerminalToTerminal(t *testing.T) {
	// paid -> failed is still written; only regressions to pending are
	// refused. The gateway is trusted for contradictory terminal
	// notifications (last write wins).
	s := newTestStore(t)
	o := pendingOrder("anon-ddd44444")
	o.Status = models.OrderStatusPaid
	mustCreate(t, s, o, nil)

	_, after, rows, err := s.UpdateStatus("anon-ddd44444", models.OrderStatusFailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 || after.Status != models.OrderStatusFailed {
		t.Fatalf("expected paid->failed to apply, rows=%d status=%q", rows, after.Status)
	}
}

func TestFindByContact(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, pendingOrder("anon-eee55555"), nil)

	if _, err := s.FindByContact("anon-eee55555", "budi@example.com"); err != nil {
		t.Fatalf("expected email match, got %v", err)
	}
	if _, err := s.FindByContact("anon-eee55555", "+628123456789"); err != nil {
		t.Fatalf("expected phone match, got %v", err)
	}
	if _, err := s.FindByContact("anon-eee55555", "other@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on contact mismatch, got %v", err)
	}
	if _, err := s.FindByContact("anon-eee55555", ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty contact, got %v", err)
	}
}

func TestSetPaymentRef(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, pendingOrder("anon-fff66666"), nil)

	if err := s.SetPaymentRef("anon-fff66666", "snap-token", "https://pay.example/redirect"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := s.Get("anon-fff66666")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.PaymentToken != "snap-token" || stored.PaymentRedirectURL != "https://pay.example/redirect" {
		t.Fatalf("payment ref not persisted: %+v", stored)
	}

	if err := s.SetPaymentRef("anon-missing", "tok", "url"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing order, got %v", err)
	}
}
