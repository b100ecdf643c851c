package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/modules/ipn"
)

var mpay24Subnets = []string{
	"213.164.25.224/27",
	"217.175.200.16/28",
	"213.208.153.58/32",
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newIPNOrder() *ipn.MemoryOrder {
	return &ipn.MemoryOrder{
		OrderID:       42,
		OrderKey:      "abc123",
		OrderTotal:    "49.90",
		OrderCurrency: "EUR",
		Created:       time.Unix(1700000000, 0),
		OrderStatus:   ipn.OrderStatusPending,
		FirstName:     "John",
		LastName:      "Smith",
		MetaData:      map[string]string{ipn.TransactionSecretMeta: "S"},
	}
}

func setupIPNServer(t *testing.T, store ipn.OrderStore) (*gin.Engine, *bytes.Buffer) {
	t.Helper()
	return setupIPNServerWithRecorder(t, store, nil)
}

func setupIPNServerWithRecorder(t *testing.T, store ipn.OrderStore, rec ipn.Recorder) (*gin.Engine, *bytes.Buffer) {
	t.Helper()

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	h := NewIPNHandler(logger,
		ipn.NewValidator(store, mpay24Subnets, logger),
		ipn.NewReconciler(logger),
		rec,
	)

	r := gin.New()
	r.GET(ipn.ConfirmationPath, h.Handle)
	return r, &logBuf
}

func ipnRequest(remoteAddr string, params map[string]string) *http.Request {
	q := url.Values{}
	q.Set("STATUS", "reversed")
	q.Set("TID", "42-smith-john")
	q.Set("MPAYTID", "X1")
	q.Set("wc_order_id", "42")
	q.Set("wc_order_key", "abc123")
	q.Set("wc_order_secret", "S")
	for k, v := range params {
		if v == "" {
			q.Del(k)
		} else {
			q.Set(k, v)
		}
	}

	req := httptest.NewRequest(http.MethodGet, ipn.ConfirmationPath+"?"+q.Encode(), nil)
	req.RemoteAddr = remoteAddr + ":51234"
	return req
}

func TestIPN_ReversedFromAllowListedAddress(t *testing.T) {
	order := newIPNOrder()
	store := ipn.NewMemoryStore()
	store.Add(order)
	r, _ := setupIPNServer(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, ipnRequest("213.164.25.230", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	assert.Equal(t, ipn.OrderStatusCancelled, order.Status())
	require.Len(t, order.Notes, 1)
	assert.Contains(t, order.Notes[0], "42-smith-john")
}

func TestIPN_RejectedFromUnknownAddress(t *testing.T) {
	order := newIPNOrder()
	store := ipn.NewMemoryStore()
	store.Add(order)
	r, logBuf := setupIPNServer(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, ipnRequest("198.51.100.7", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERROR", w.Body.String())

	// Order untouched, exactly one warning naming the address.
	assert.Equal(t, ipn.OrderStatusPending, order.Status())
	assert.Empty(t, order.Notes)
	assert.Equal(t, 1, strings.Count(logBuf.String(), "level=WARN"))
	assert.Contains(t, logBuf.String(), "198.51.100.7")
}

func TestIPN_ForwardedHeaderDoesNotBypassAllowList(t *testing.T) {
	order := newIPNOrder()
	store := ipn.NewMemoryStore()
	store.Add(order)
	r, logBuf := setupIPNServer(t, store)

	// The allow-list must see the TCP peer. A caller-supplied forwarding
	// header naming an allow-listed address changes nothing.
	req := ipnRequest("198.51.100.7", nil)
	req.Header.Set("X-Forwarded-For", "213.164.25.230")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERROR", w.Body.String())
	assert.Equal(t, ipn.OrderStatusPending, order.Status())
	assert.Empty(t, order.Notes)
	assert.Contains(t, logBuf.String(), "198.51.100.7")
}

// blackholeRecorder behaves like an event log whose inserts all fail: the
// delivery is observed, nothing is persisted, no error escapes. Record has no
// error return, so this is exactly what a broken real recorder looks like to
// the handler.
type blackholeRecorder struct {
	outcomes []ipn.Outcome
	orderIDs []*int64
}

func (r *blackholeRecorder) Record(_ context.Context, _ url.Values, orderID *int64, _ string, outcome ipn.Outcome, _ error) {
	r.outcomes = append(r.outcomes, outcome)
	r.orderIDs = append(r.orderIDs, orderID)
}

func TestIPN_RecordingNeverGatesProcessing(t *testing.T) {
	order := newIPNOrder()
	store := ipn.NewMemoryStore()
	store.Add(order)

	rec := &blackholeRecorder{}
	r, _ := setupIPNServerWithRecorder(t, store, rec)

	// Applied delivery: the response is OK regardless of what became of the
	// audit write, and the delivery was handed to the recorder.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, ipnRequest("213.164.25.230", map[string]string{"STATUS": "billed"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, ipn.OrderStatusCompleted, order.Status())

	// Rejected delivery: recorded without an order id.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, ipnRequest("213.164.25.230", map[string]string{"wc_order_secret": "guess"}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	require.Len(t, rec.outcomes, 2)
	assert.Equal(t, []ipn.Outcome{ipn.OutcomeApplied, ipn.OutcomeRejected}, rec.outcomes)
	require.NotNil(t, rec.orderIDs[0])
	assert.Equal(t, int64(42), *rec.orderIDs[0])
	assert.Nil(t, rec.orderIDs[1])
}

func TestIPN_BilledIsIdempotent(t *testing.T) {
	order := newIPNOrder()
	store := ipn.NewMemoryStore()
	store.Add(order)
	r, _ := setupIPNServer(t, store)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, ipnRequest("213.164.25.230", map[string]string{"STATUS": "BILLED"}))
		assert.Equal(t, http.StatusOK, w.Code, "delivery %d", i+1)
	}

	assert.Equal(t, ipn.OrderStatusCompleted, order.Status())
	assert.Equal(t, "X1", order.TransactionID)
	assert.Equal(t, 1, order.MarkPaidCalls)
}

func TestIPN_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
	}{
		{"missing status", map[string]string{"STATUS": ""}},
		{"missing tid", map[string]string{"TID": ""}},
		{"missing mpaytid", map[string]string{"MPAYTID": ""}},
		{"missing order secret", map[string]string{"wc_order_secret": ""}},
		{"wrong order secret", map[string]string{"wc_order_secret": "guess"}},
		{"unknown order key", map[string]string{"wc_order_key": "nope"}},
		{"order id does not match key", map[string]string{"wc_order_id": "43"}},
		{"non-numeric order id", map[string]string{"wc_order_id": "forty-two"}},
		{"unknown transaction status", map[string]string{"STATUS": "suspended"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := newIPNOrder()
			store := ipn.NewMemoryStore()
			store.Add(order)
			r, _ := setupIPNServer(t, store)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, ipnRequest("213.164.25.230", tt.params))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "ERROR", w.Body.String())
			assert.Equal(t, ipn.OrderStatusPending, order.Status())
			assert.Empty(t, order.Notes)
		})
	}
}

func TestIPN_StoreRejectionPropagates(t *testing.T) {
	order := newIPNOrder()
	order.FailMutations = true
	store := ipn.NewMemoryStore()
	store.Add(order)
	r, _ := setupIPNServer(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, ipnRequest("213.164.25.230", map[string]string{"STATUS": "billed"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERROR", w.Body.String())
}

func TestIPN_FullRoundTrip(t *testing.T) {
	// Confirmation URL built at checkout time authenticates the later
	// notification: build URL, then replay its parameters as an IPN.
	order := newIPNOrder()
	store := ipn.NewMemoryStore()
	store.Add(order)
	r, _ := setupIPNServer(t, store)

	confirmation, err := ipn.NewURLBuilder("https://shop.example.com").Build(context.Background(), order)
	require.NoError(t, err)

	u, err := url.Parse(confirmation)
	require.NoError(t, err)

	q := u.Query()
	req := ipnRequest("213.164.25.230", map[string]string{
		"STATUS":          "billed",
		"TID":             fmt.Sprintf("%d-smith-john", order.OrderID),
		"wc_order_secret": q.Get("wc_order_secret"),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ipn.OrderStatusCompleted, order.Status())
}
