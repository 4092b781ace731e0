// Package store provides the BoltDB-backed order store.
//
// BoltDB is an embedded key/value store; all data lives in a single
// file, so no external database process is required. Orders and their
// line items are kept in separate buckets, JSON-encoded, keyed by the
// order id.
//
// Every write operation is idempotent: creating an order that already
// exists returns the stored record unchanged, and updating a status to
// the value it already holds skips the write entirely. Updating a
// missing order affects zero rows and is not an error, matching the
// at-least-once delivery model of the payment gateway's webhooks.
package store

import (
	"encoding/json"
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/herbadrink/storefront/internal/models"
)

const (
	ordersBucket = "orders"
	itemsBucket  = "order_items"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Store wraps a BoltDB database and exposes the order operations the
// storefront needs.
type Store struct {
	db *bolt.DB
}

// New opens (or creates) a BoltDB database at the given path and
// ensures the order buckets exist.
func New(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(ordersBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(itemsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateOrder persists a new order and its line items ONLY if no order
// with the same id exists yet. On a duplicate id the stored order is
// returned unchanged and no write occurs, so checkout retries cannot
// produce duplicate orders.
//
// Returns (existing, false, nil) when the order already existed.
// Returns (new, true, nil) when the order was created.
func (s *Store) CreateOrder(o *models.Order, items []models.OrderItem) (*models.Order, bool, error) {
	var result models.Order
	created := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		ob := tx.Bucket([]byte(ordersBucket))

		existing := ob.Get([]byte(o.ID))
		if existing != nil {
			return json.Unmarshal(existing, &result)
		}

		o.CreatedAt = time.Now().UTC()
		data, err := json.Marshal(o)
		if err != nil {
			return err
		}
		if err := ob.Put([]byte(o.ID), data); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = o.ID
		}
		itemData, err := json.Marshal(items)
		if err != nil {
			return err
		}
		if err := tx.Bucket([]byte(itemsBucket)).Put([]byte(o.ID), itemData); err != nil {
			return err
		}

		result = *o
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &result, created, nil
}

// Get retrieves a single order by id.
// Returns ErrNotFound if the key does not exist.
func (s *Store) Get(id string) (*models.Order, error) {
	var o models.Order

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(ordersBucket)).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &o)
	})
	if err != nil {
		return nil, err
	}

	return &o, nil
}

// Items returns the line items of an order. An order without items
// yields an empty slice, not nil, so the JSON encoder emits [].
func (s *Store) Items(orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(itemsBucket)).Get([]byte(orderID))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &items)
	})
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []models.OrderItem{}
	}
	return items, nil
}

// FindByContact retrieves an order by id, but only when the given
// contact matches the order's email or phone. Used by the anonymous
// order-tracking endpoints so an order id alone is not enough to read
// someone else's order.
func (s *Store) FindByContact(id, contact string) (*models.Order, error) {
	o, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if contact == "" || (o.Email != contact && o.Phone != contact) {
		return nil, ErrNotFound
	}
	return o, nil
}

// UpdateStatus sets the order's status, keyed by id. The before and
// after snapshots are returned for the caller's response; rows reports
// how many orders were written (0 or 1).
//
// Semantics, in order:
//   - Missing order: rows=0, no error. The gateway may notify for an
//     order this store never saw; that is the caller's anomaly to log,
//     not a store failure.
//   - Same status: write skipped, rows=0. Redelivered notifications
//     converge without touching the file.
//   - Terminal status regressed to pending: write refused, rows=0. A
//     stray late notification must not reopen a paid or failed order.
//   - Otherwise the status is written and rows=1.
func (s *Store) UpdateStatus(id, status string) (before, after *models.Order, rows int, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ordersBucket))

		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}

		var o models.Order
		if err := json.Unmarshal(v, &o); err != nil {
			return err
		}
		snapshot := o
		before = &snapshot

		if o.Status == status {
			after = &snapshot
			return nil
		}
		if models.TerminalStatus(o.Status) && status == models.OrderStatusPending {
			after = &snapshot
			return nil
		}

		o.Status = status
		data, err := json.Marshal(o)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(id), data); err != nil {
			return err
		}

		after = &o
		rows = 1
		return nil
	})
	if err != nil {
		return nil, nil, 0, err
	}
	return before, after, rows, nil
}

// SetPaymentRef stores the gateway transaction handle (Snap token and
// redirect URL) on an existing order.
func (s *Store) SetPaymentRef(id, token, redirectURL string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ordersBucket))

		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}

		var o models.Order
		if err := json.Unmarshal(v, &o); err != nil {
			return err
		}

		o.PaymentToken = token
		o.PaymentRedirectURL = redirectURL

		data, err := json.Marshal(o)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}
