package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/p2pmarket/order-service/internal/kv"
)

// indexKey is the reserved key holding the comma-joined list of live order
// identifiers, used to support "list all" queries absent a native range
// scan.
const indexKey = "ol"

var ErrEmptyOrderID = errors.New("store: order id is empty")

// Store persists orders in the key-value store and maintains the order id
// index.
type Store struct {
	db kv.Store

	// mu serializes read-modify-write of the index record so concurrent
	// creates cannot drop each other's appends.
	mu sync.Mutex
}

func NewStore(db kv.Store) *Store {
	return &Store{db: db}
}

// Create persists the order and appends its id to the index. The two writes
// are not atomic: a crash between them leaves an order unreferenced by the
// index, and FindAll will skip it.
func (s *Store) Create(ctx context.Context, o Order) error {
	if o.Empty() {
		log.Error().Msg("store: refusing to persist order with empty id")
		return ErrEmptyOrderID
	}

	raw, err := o.encode()
	if err != nil {
		return fmt.Errorf("store: failed to encode order %s: %w", o.OrderID, err)
	}
	if err := s.db.Write(ctx, o.OrderID, raw); err != nil {
		return fmt.Errorf("store: failed to write order %s: %w", o.OrderID, err)
	}
	log.Debug().Str("order_id", o.OrderID).Msg("store: order written")

	return s.appendToIndex(ctx, o.OrderID)
}

func (s *Store) appendToIndex(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.db.Read(ctx, indexKey)
	if err != nil {
		return fmt.Errorf("store: failed to read order index: %w", err)
	}
	if current == "" {
		log.Debug().Msg("store: creating order index")
		current = id
	} else {
		current = current + "," + id
	}
	if err := s.db.Write(ctx, indexKey, current); err != nil {
		return fmt.Errorf("store: failed to write order index: %w", err)
	}
	return nil
}

// Find returns the order for id, or the sentinel empty order when absent.
func (s *Store) Find(ctx context.Context, id string) (Order, error) {
	raw, err := s.db.Read(ctx, id)
	if err != nil {
		return Order{}, fmt.Errorf("store: failed to read order %s: %w", id, err)
	}
	if raw == "" {
		log.Debug().Str("order_id", id).Msg("store: order not found")
		return Order{}, nil
	}
	o, err := decodeOrder(id, raw)
	if err != nil {
		return Order{}, fmt.Errorf("store: failed to decode order %s: %w", id, err)
	}
	return o, nil
}

// FindAll resolves every id in the index. Ids that no longer resolve to an
// order are skipped, not surfaced.
func (s *Store) FindAll(ctx context.Context) ([]Order, error) {
	index, err := s.db.Read(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("store: failed to read order index: %w", err)
	}
	if index == "" {
		log.Debug().Msg("store: order index not found")
		return []Order{}, nil
	}

	orders := make([]Order, 0)
	for _, id := range strings.Split(index, ",") {
		o, err := s.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if o.Empty() {
			log.Warn().Str("order_id", id).Msg("store: indexed order missing, skipping")
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// FindAllForCustomer filters the full index scan down to one customer's
// orders. No secondary index by customer exists, so cost is linear in total
// order count.
func (s *Store) FindAllForCustomer(ctx context.Context, customerID string) ([]Order, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	orders := make([]Order, 0)
	for _, o := range all {
		if o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// Replace overwrites every field of the stored order except its identifier
// and rewrites the record under that identifier. Returns the sentinel when
// no order exists for id.
func (s *Store) Replace(ctx context.Context, id string, updated Order) (Order, error) {
	existing, err := s.Find(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if existing.Empty() {
		log.Warn().Str("order_id", id).Msg("store: cannot replace missing order")
		return Order{}, nil
	}

	merged := updated
	merged.OrderID = existing.OrderID

	raw, err := merged.encode()
	if err != nil {
		return Order{}, fmt.Errorf("store: failed to encode order %s: %w", merged.OrderID, err)
	}
	if err := s.db.Delete(ctx, merged.OrderID); err != nil {
		return Order{}, fmt.Errorf("store: failed to delete order %s: %w", merged.OrderID, err)
	}
	if err := s.db.Write(ctx, merged.OrderID, raw); err != nil {
		return Order{}, fmt.Errorf("store: failed to rewrite order %s: %w", merged.OrderID, err)
	}
	log.Info().Str("order_id", merged.OrderID).Msg("store: order replaced")
	return merged, nil
}
