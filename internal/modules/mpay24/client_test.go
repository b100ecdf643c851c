package mpay24

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage() PaymentPage {
	return PaymentPage{
		TID:             "42-smith-john",
		Price:           "49.90",
		Currency:        "EUR",
		Customer:        "John Smith",
		SuccessURL:      "https://shop.example.com/orders/42/received",
		ErrorURL:        "https://shop.example.com/orders/42/received",
		ConfirmationURL: "https://shop.example.com/payments/mpay24/ipn?wc_order_id=42",
		CancelURL:       "https://shop.example.com/orders/42/cancel",
	}
}

func TestPaymentPageLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/app/bin/etpproxy_v15", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "utester", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "SELECTPAYMENT", r.PostFormValue("OPERATION"))

		mdxi := r.PostFormValue("MDXI")
		assert.Contains(t, mdxi, "<Tid>42-smith-john</Tid>")
		assert.Contains(t, mdxi, "<Price>49.90</Price>")
		assert.Contains(t, mdxi, "<Currency>EUR</Currency>")
		assert.Contains(t, mdxi, `Language="EN"`)
		assert.Contains(t, mdxi, "wc_order_id=42")

		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<Result><Status>OK</Status><ReturnCode>REDIRECT</ReturnCode><Location>https://pay.example.com/session/xyz</Location></Result>`))
	}))
	defer srv.Close()

	c := NewClient(Config{User: "tester", Password: "secret", TestMode: true, BaseURL: srv.URL})

	loc, err := c.PaymentPageLocation(context.Background(), testPage())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/session/xyz", loc)
}

func TestPaymentPageLocation_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<Result><Status>ERROR</Status><ReturnCode>INVALID_MDXI</ReturnCode></Result>`))
	}))
	defer srv.Close()

	c := NewClient(Config{User: "tester", Password: "secret", BaseURL: srv.URL})

	_, err := c.PaymentPageLocation(context.Background(), testPage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_MDXI")
}

func TestPaymentPageLocation_SetupIncomplete(t *testing.T) {
	c := NewClient(Config{TestMode: true})
	assert.False(t, c.IsSetupOK())

	_, err := c.PaymentPageLocation(context.Background(), testPage())
	assert.ErrorIs(t, err, ErrSetupIncomplete)
}

func TestBuildMDXI_MandatoryFields(t *testing.T) {
	page := testPage()
	page.Price = ""
	_, err := buildMDXI(page)
	assert.Error(t, err)

	page = testPage()
	page.ConfirmationURL = ""
	_, err = buildMDXI(page)
	assert.Error(t, err)
}
