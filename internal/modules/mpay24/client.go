// Package mpay24 is a thin client for the mPAY24 payment page API: it submits
// an MDXI order document and returns the hosted payment page location the
// customer is redirected to.
package mpay24

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	testHost       = "https://test.mpay24.com"
	productionHost = "https://www.mpay24.com"

	selectPaymentPath = "/app/bin/etpproxy_v15"
)

var ErrSetupIncomplete = errors.New("mpay24: user and password are not configured")

type Config struct {
	User     string
	Password string
	TestMode bool

	// BaseURL overrides the mPAY24 host, used by tests.
	BaseURL string
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

type Client struct {
	user     string
	password string
	testMode bool
	baseURL  string
	http     *http.Client
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		if cfg.TestMode {
			base = testHost
		} else {
			base = productionHost
		}
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		user:     cfg.User,
		password: cfg.Password,
		testMode: cfg.TestMode,
		baseURL:  strings.TrimRight(base, "/"),
		http:     hc,
	}
}

// IsSetupOK reports whether credentials are configured.
func (c *Client) IsSetupOK() bool { return c.user != "" && c.password != "" }

func (c *Client) TestMode() bool { return c.testMode }

// PaymentPage describes one hosted payment page request.
type PaymentPage struct {
	TID      string
	Price    string
	Currency string
	Customer string
	// Language is the ISO 639-1 code for the payment page, defaults to EN.
	Language string

	SuccessURL      string
	ErrorURL        string
	ConfirmationURL string
	CancelURL       string
}

type selectPaymentResult struct {
	XMLName    xml.Name `xml:"Result"`
	Status     string   `xml:"Status"`
	ReturnCode string   `xml:"ReturnCode"`
	Location   string   `xml:"Location"`
}

// PaymentPageLocation submits the MDXI order and returns the payment page URL.
func (c *Client) PaymentPageLocation(ctx context.Context, page PaymentPage) (string, error) {
	if !c.IsSetupOK() {
		return "", ErrSetupIncomplete
	}

	mdxi, err := buildMDXI(page)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("OPERATION", "SELECTPAYMENT")
	form.Set("MDXI", mdxi)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+selectPaymentPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("u"+c.user, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpay24: select payment: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mpay24: select payment returned HTTP %d", resp.StatusCode)
	}

	var result selectPaymentResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("mpay24: parse select payment response: %w", err)
	}

	if result.Status != "OK" || result.Location == "" {
		return "", fmt.Errorf("mpay24: select payment failed: status=%s return_code=%s",
			result.Status, result.ReturnCode)
	}

	return result.Location, nil
}
