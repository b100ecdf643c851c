package orders

import (
	"fmt"
	"time"
)

type Order struct {
	ID               int64   `gorm:"primaryKey;autoIncrement"`
	OrderKey         string  `gorm:"type:varchar(64);not null;uniqueIndex:ux_orders_order_key"`
	Status           string  `gorm:"type:varchar(32);not null"`
	TotalCents       int64   `gorm:"not null"`
	Currency         string  `gorm:"type:char(3);not null"`
	BillingFirstName string  `gorm:"type:varchar(100);not null"`
	BillingLastName  string  `gorm:"type:varchar(100);not null"`
	TransactionID    *string `gorm:"type:varchar(64)"`

	CreatedAt time.Time  `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time  `gorm:"type:datetime(3);not null"`
	PaidAt    *time.Time `gorm:"type:datetime(3)"`
}

func (Order) TableName() string { return "orders" }

// OrderMeta is one string-keyed metadata entry, unique per (order, key).
type OrderMeta struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	OrderID   int64  `gorm:"not null;uniqueIndex:ux_order_meta_order_key,priority:1"`
	MetaKey   string `gorm:"type:varchar(64);not null;uniqueIndex:ux_order_meta_order_key,priority:2"`
	MetaValue string `gorm:"type:varchar(255);not null"`
}

func (OrderMeta) TableName() string { return "order_meta" }

// OrderNote is an append-only audit note on an order.
type OrderNote struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	OrderID   int64     `gorm:"not null;index:ix_order_notes_order_id"`
	Note      string    `gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (OrderNote) TableName() string { return "order_notes" }

// decimalTotal renders cents as an exact decimal string, e.g. 4990 -> "49.90".
func decimalTotal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
