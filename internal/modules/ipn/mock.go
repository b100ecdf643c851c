package ipn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory OrderStore used by tests and by the mockipn
// tool. It serializes all access through one mutex, which stands in for the
// per-order write consistency a real order store provides.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[int64]*MemoryOrder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[int64]*MemoryOrder)}
}

func (s *MemoryStore) Add(o *MemoryOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.store = s
	s.orders[o.OrderID] = o
}

func (s *MemoryStore) FindOrderIDByKey(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderKey == key {
			return o.OrderID, nil
		}
	}
	return 0, errors.New("memorystore: order key not found")
}

func (s *MemoryStore) GetOrder(ctx context.Context, id int64) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, errors.New("memorystore: order not found")
	}
	return o, nil
}

var _ OrderStore = (*MemoryStore)(nil)

// MemoryOrder is the MemoryStore order record.
type MemoryOrder struct {
	store *MemoryStore

	OrderID       int64
	OrderKey      string
	OrderTotal    string
	OrderCurrency string
	Created       time.Time
	OrderStatus   string
	FirstName     string
	LastName      string

	MetaData      map[string]string
	Notes         []string
	TransactionID string

	// MarkPaidCalls counts successful MarkPaid mutations, so tests can assert
	// idempotence.
	MarkPaidCalls int

	// FailMutations makes every mutation report an error, simulating an order
	// store that rejects the transition.
	FailMutations bool
}

func (o *MemoryOrder) lock() func() {
	if o.store == nil {
		return func() {}
	}
	o.store.mu.Lock()
	return o.store.mu.Unlock
}

func (o *MemoryOrder) ID() int64                { return o.OrderID }
func (o *MemoryOrder) Key() string              { return o.OrderKey }
func (o *MemoryOrder) Total() string            { return o.OrderTotal }
func (o *MemoryOrder) Currency() string         { return o.OrderCurrency }
func (o *MemoryOrder) CreatedAt() time.Time     { return o.Created }
func (o *MemoryOrder) BillingFirstName() string { return o.FirstName }
func (o *MemoryOrder) BillingLastName() string  { return o.LastName }

func (o *MemoryOrder) Status() string {
	defer o.lock()()
	return o.OrderStatus
}

func (o *MemoryOrder) Meta(ctx context.Context, key string) (string, error) {
	defer o.lock()()
	return o.MetaData[key], nil
}

func (o *MemoryOrder) SetMeta(ctx context.Context, key, value string) error {
	defer o.lock()()
	if o.FailMutations {
		return errors.New("memorystore: mutation failed")
	}
	if o.MetaData == nil {
		o.MetaData = make(map[string]string)
	}
	o.MetaData[key] = value
	return nil
}

func (o *MemoryOrder) MarkPaid(ctx context.Context, processorTxnID string) error {
	defer o.lock()()
	if o.FailMutations {
		return errors.New("memorystore: mutation failed")
	}
	switch o.OrderStatus {
	case OrderStatusPending, OrderStatusOnHold, OrderStatusFailed, OrderStatusCancelled:
		o.OrderStatus = OrderStatusCompleted
		o.TransactionID = processorTxnID
		o.MarkPaidCalls++
		return nil
	default:
		return fmt.Errorf("memorystore: order %d not payable in status %s", o.OrderID, o.OrderStatus)
	}
}

func (o *MemoryOrder) UpdateStatus(ctx context.Context, status, note string) error {
	defer o.lock()()
	if o.FailMutations {
		return errors.New("memorystore: mutation failed")
	}
	o.OrderStatus = status
	o.Notes = append(o.Notes, note)
	return nil
}

func (o *MemoryOrder) AddNote(ctx context.Context, note string) error {
	defer o.lock()()
	if o.FailMutations {
		return errors.New("memorystore: mutation failed")
	}
	o.Notes = append(o.Notes, note)
	return nil
}

var _ Order = (*MemoryOrder)(nil)
