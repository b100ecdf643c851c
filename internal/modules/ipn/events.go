package ipn

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Outcome of processing one inbound notification.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Event is one received notification and what became of it.
type Event struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	OrderID     *int64         `gorm:"index:ix_ipn_events_order_id"`
	Status      string         `gorm:"type:varchar(32);not null"`
	TID         string         `gorm:"column:tid;type:varchar(32);not null"`
	MpayTID     string         `gorm:"column:mpay_tid;type:varchar(64);not null"`
	RemoteAddr  string         `gorm:"type:varchar(45);not null"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`
	Outcome     string         `gorm:"type:varchar(16);not null"`
	Detail      *string        `gorm:"type:varchar(255)"`
	ReceivedAt  time.Time      `gorm:"type:datetime(3);not null"`
}

func (Event) TableName() string { return "ipn_events" }

// Recorder persists notification deliveries for auditing. Record returns
// nothing: bookkeeping must never decide the response, so implementations
// swallow their own failures.
type Recorder interface {
	Record(ctx context.Context, q url.Values, orderID *int64, remoteAddr string, outcome Outcome, detail error)
}

// EventLog records every inbound notification together with its outcome.
// It is a pure audit trail: recording never gates processing and a failed
// insert is only logged, since mPAY24 retries on ERROR anyway and a retry
// must not be provoked by bookkeeping.
type EventLog struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewEventLog(db *gorm.DB, logger *slog.Logger) *EventLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLog{db: db, logger: logger}
}

// Record persists one notification delivery. orderID is nil when the request
// never resolved to an order. detail carries the rejection or failure cause;
// it stays internal and is never echoed to the caller.
func (l *EventLog) Record(ctx context.Context, q url.Values, orderID *int64, remoteAddr string, outcome Outcome, detail error) {
	flat := make(map[string]string, len(q))
	for k := range q {
		flat[k] = q.Get(k)
	}
	payload, err := json.Marshal(flat)
	if err != nil {
		payload = []byte("{}")
	}

	ev := Event{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Status:      q.Get("STATUS"),
		TID:         q.Get("TID"),
		MpayTID:     q.Get("MPAYTID"),
		RemoteAddr:  remoteAddr,
		PayloadJSON: datatypes.JSON(payload),
		Outcome:     string(outcome),
		ReceivedAt:  time.Now(),
	}
	if detail != nil {
		msg := truncate(detail.Error(), 250)
		ev.Detail = &msg
	}

	if err := l.db.WithContext(ctx).Create(&ev).Error; err != nil {
		l.logger.ErrorContext(ctx, "failed to record ipn event",
			"tid", ev.TID, "outcome", ev.Outcome, "err", err)
	}
}

var _ Recorder = (*EventLog)(nil)

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
