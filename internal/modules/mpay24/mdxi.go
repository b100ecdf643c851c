package mpay24

import (
	"encoding/xml"
	"errors"
	"strings"
)

// MDXI is the XML order document the payment page API consumes. Only the
// subset this integration needs is modelled: one pre-selected credit card
// payment, price, currency, customer and the four redirect/confirmation URLs.
type mdxiOrder struct {
	XMLName xml.Name `xml:"Order"`

	Tid         string          `xml:"Tid"`
	TemplateSet mdxiTemplateSet `xml:"TemplateSet"`

	PaymentTypes mdxiPaymentTypes `xml:"PaymentTypes"`

	Price    string `xml:"Price"`
	Currency string `xml:"Currency"`
	Customer string `xml:"Customer,omitempty"`

	URL mdxiURL `xml:"URL"`
}

type mdxiTemplateSet struct {
	Language string `xml:"Language,attr"`
	CSSName  string `xml:"CSSName,attr"`
}

type mdxiPaymentTypes struct {
	Enable   string        `xml:"Enable,attr"`
	Payments []mdxiPayment `xml:"Payment"`
}

type mdxiPayment struct {
	Type string `xml:"Type,attr"`
}

type mdxiURL struct {
	Success      string `xml:"Success"`
	Error        string `xml:"Error"`
	Confirmation string `xml:"Confirmation"`
	Cancel       string `xml:"Cancel,omitempty"`
}

func buildMDXI(page PaymentPage) (string, error) {
	if page.TID == "" || page.Price == "" || page.Currency == "" {
		return "", errors.New("mpay24: tid, price and currency are mandatory")
	}
	if page.ConfirmationURL == "" {
		return "", errors.New("mpay24: confirmation url is mandatory")
	}

	language := strings.ToUpper(page.Language)
	if language == "" {
		language = "EN"
	}

	doc := mdxiOrder{
		Tid:         page.TID,
		TemplateSet: mdxiTemplateSet{Language: language, CSSName: "MODERN"},
		PaymentTypes: mdxiPaymentTypes{
			Enable:   "true",
			Payments: []mdxiPayment{{Type: "CC"}},
		},
		Price:    page.Price,
		Currency: page.Currency,
		Customer: page.Customer,
		URL: mdxiURL{
			Success:      page.SuccessURL,
			Error:        page.ErrorURL,
			Confirmation: page.ConfirmationURL,
			Cancel:       page.CancelURL,
		},
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return xml.Header + string(out), nil
}
