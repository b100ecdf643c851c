package handlers

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/modules/ipn"
)

// IPNHandler receives payment notifications pushed by mPAY24.
type IPNHandler struct {
	Logger     *slog.Logger
	Validator  *ipn.Validator
	Reconciler *ipn.Reconciler
	Events     ipn.Recorder
}

func NewIPNHandler(logger *slog.Logger, v *ipn.Validator, r *ipn.Reconciler, events ipn.Recorder) *IPNHandler {
	return &IPNHandler{Logger: logger, Validator: v, Reconciler: r, Events: events}
}

// GET /payments/mpay24/ipn
//
// mPAY24 pushes confirmations as GET requests and retries until it receives
// an OK. The response is deliberately opaque: plain OK/200 or ERROR/500 and
// nothing else, so an unauthenticated caller cannot use the endpoint as an
// oracle. Rejection causes live in the internal event log only.
func (h *IPNHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	q := c.Request.URL.Query()
	remote := peerAddr(c.Request)

	n, err := ipn.ParseNotification(q)
	if err != nil {
		h.record(c, nil, remote, ipn.OutcomeRejected, err)
		c.String(http.StatusInternalServerError, "ERROR")
		return
	}

	order, err := h.Validator.Validate(ctx, n, remote)
	if err != nil {
		h.record(c, nil, remote, ipn.OutcomeRejected, err)
		c.String(http.StatusInternalServerError, "ERROR")
		return
	}

	orderID := order.ID()
	if err := h.Reconciler.Apply(ctx, order, n.Status, n.TID, n.MpayTID); err != nil {
		h.record(c, &orderID, remote, ipn.OutcomeFailed, err)
		c.String(http.StatusInternalServerError, "ERROR")
		return
	}

	h.record(c, &orderID, remote, ipn.OutcomeApplied, nil)
	c.String(http.StatusOK, "OK")
}

// peerAddr returns the address of the TCP peer. The allow-list authenticates
// mPAY24 by its network source, so forwarding headers, which any caller can
// set, must never feed the check.
func peerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *IPNHandler) record(c *gin.Context, orderID *int64, remote string, outcome ipn.Outcome, cause error) {
	if h.Events == nil {
		return
	}
	h.Events.Record(c.Request.Context(), c.Request.URL.Query(), orderID, remote, outcome, cause)
}
