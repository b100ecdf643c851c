package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/modules/ipn"
)

// Statuses from which an order may still be paid. Everything else rejects
// MarkPaid, and the rejection propagates to the caller.
var payableStatuses = []string{
	ipn.OrderStatusPending,
	ipn.OrderStatusOnHold,
	ipn.OrderStatusFailed,
	ipn.OrderStatusCancelled,
}

// Repo is the gorm-backed order store. It implements ipn.OrderStore; per-order
// write consistency comes from conditional UPDATEs, not from locking in the
// IPN engine.
type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) FindOrderIDByKey(ctx context.Context, key string) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).
		Model(&Order{}).
		Select("id").
		Where("order_key = ?", key).
		Take(&id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (ipn.Order, error) {
	var row Order
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &StoredOrder{repo: r, row: row}, nil
}

func (r *Repo) Create(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

var _ ipn.OrderStore = (*Repo)(nil)

// StoredOrder adapts one order row to the ipn.Order interface. Metadata and
// notes are read and written through the database on every call; the row
// snapshot only caches the immutable identity fields and the status as loaded.
type StoredOrder struct {
	repo *Repo
	row  Order
}

func (o *StoredOrder) ID() int64                { return o.row.ID }
func (o *StoredOrder) Key() string              { return o.row.OrderKey }
func (o *StoredOrder) Total() string            { return decimalTotal(o.row.TotalCents) }
func (o *StoredOrder) Currency() string         { return o.row.Currency }
func (o *StoredOrder) CreatedAt() time.Time     { return o.row.CreatedAt }
func (o *StoredOrder) Status() string           { return o.row.Status }
func (o *StoredOrder) BillingFirstName() string { return o.row.BillingFirstName }
func (o *StoredOrder) BillingLastName() string  { return o.row.BillingLastName }

func (o *StoredOrder) Meta(ctx context.Context, key string) (string, error) {
	var value string
	err := o.repo.db.WithContext(ctx).
		Model(&OrderMeta{}).
		Select("meta_value").
		Where("order_id = ? AND meta_key = ?", o.row.ID, key).
		Take(&value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (o *StoredOrder) SetMeta(ctx context.Context, key, value string) error {
	meta := OrderMeta{
		OrderID:   o.row.ID,
		MetaKey:   key,
		MetaValue: value,
	}
	// Upsert on unique(order_id, meta_key).
	return o.repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value"}),
		}).
		Create(&meta).Error
}

// MarkPaid transitions the order to completed and records the processor
// transaction id. The status gate lives in the UPDATE itself so that two
// concurrent notifications cannot both complete the order.
func (o *StoredOrder) MarkPaid(ctx context.Context, processorTxnID string) error {
	now := time.Now()
	res := o.repo.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status IN ?", o.row.ID, payableStatuses).
		Updates(map[string]any{
			"status":         ipn.OrderStatusCompleted,
			"transaction_id": processorTxnID,
			"paid_at":        &now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPayable
	}

	o.row.Status = ipn.OrderStatusCompleted
	o.row.TransactionID = &processorTxnID
	return nil
}

func (o *StoredOrder) UpdateStatus(ctx context.Context, status, note string) error {
	now := time.Now()
	err := o.repo.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", o.row.ID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": now,
		}).Error
	if err != nil {
		return err
	}

	o.row.Status = status
	return o.AddNote(ctx, note)
}

func (o *StoredOrder) AddNote(ctx context.Context, note string) error {
	return o.repo.db.WithContext(ctx).Create(&OrderNote{
		ID:        uuid.NewString(),
		OrderID:   o.row.ID,
		Note:      note,
		CreatedAt: time.Now(),
	}).Error
}

var _ ipn.Order = (*StoredOrder)(nil)
