package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/http/middleware"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/http/validation"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/modules/ipn"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/modules/mpay24"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/shared/apperr"
)

// PayHandler starts the redirect-based checkout: it requests a hosted payment
// page from mPAY24 and sends the customer there.
type PayHandler struct {
	Logger  *slog.Logger
	Store   ipn.OrderStore
	URLs    *ipn.URLBuilder
	Client  *mpay24.Client
	BaseURL string
}

func NewPayHandler(logger *slog.Logger, store ipn.OrderStore, urls *ipn.URLBuilder, client *mpay24.Client, baseURL string) *PayHandler {
	return &PayHandler{Logger: logger, Store: store, URLs: urls, Client: client, BaseURL: strings.TrimRight(baseURL, "/")}
}

type payInput struct {
	ReturnURL string `form:"return_url" binding:"omitempty,url,max=512"`
	Language  string `form:"language" binding:"omitempty,len=2,alpha"`
}

// POST /orders/:id/pay
func (h *PayHandler) Pay(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.Fail(c, apperr.NotFoundErr("Order not found."))
		return
	}

	var in payInput
	if err := c.ShouldBind(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid payment request.", validation.FromBindError(err, &in)))
		return
	}

	order, err := h.Store.GetOrder(ctx, id)
	if err != nil {
		middleware.Fail(c, apperr.NotFoundErr("Order not found."))
		return
	}

	confirmationURL, err := h.URLs.Build(ctx, order)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	// Redirect to the received page even on error: it shows the order state
	// and offers to retry, which beats dumping the customer on a dead end.
	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = h.BaseURL + "/orders/" + strconv.FormatInt(id, 10) + "/received"
	}

	location, err := h.Client.PaymentPageLocation(ctx, mpay24.PaymentPage{
		TID:             ipn.GenerateTID(order),
		Price:           order.Total(),
		Currency:        order.Currency(),
		Customer:        strings.TrimSpace(order.BillingFirstName() + " " + order.BillingLastName()),
		Language:        in.Language,
		SuccessURL:      returnURL,
		ErrorURL:        returnURL,
		ConfirmationURL: confirmationURL,
		CancelURL:       returnURL,
	})
	if err != nil {
		h.Logger.ErrorContext(ctx, "failed to create mPAY24 payment page",
			"order_id", id, "err", err)
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.Redirect(http.StatusFound, location)
}
