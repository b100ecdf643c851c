// mockipn sends a fake mPAY24 payment notification to a running gateway, the
// way mPAY24 itself would. Useful for poking a local instance without going
// through a real test-system payment.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

func main() {
	endpoint := flag.String("url", "http://localhost:8080/payments/mpay24/ipn", "Confirmation endpoint URL")
	orderID := flag.String("order-id", "", "Order id (wc_order_id)")
	orderKey := flag.String("order-key", "", "Order key (wc_order_key)")
	secret := flag.String("secret", os.Getenv("MPAY24_ORDER_SECRET"), "Per-order transaction secret (wc_order_secret)")
	status := flag.String("status", "BILLED", "Transaction status (BILLED, RESERVED, ERROR, CREDITED, REVERSED)")
	tid := flag.String("tid", "", "Merchant transaction id (defaults to <order-id>-mock)")
	mpayTID := flag.String("mpaytid", "90000001", "mPAY24 transaction id")
	dryRun := flag.Bool("dry-run", false, "Only print the request URL, don't send")

	flag.Parse()

	if *orderID == "" || *orderKey == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "Error: -order-id, -order-key and -secret (or MPAY24_ORDER_SECRET) are required")
		os.Exit(1)
	}
	if *tid == "" {
		*tid = *orderID + "-mock"
	}

	q := url.Values{}
	q.Set("OPERATION", "CONFIRMATION")
	q.Set("STATUS", *status)
	q.Set("TID", *tid)
	q.Set("MPAYTID", *mpayTID)
	q.Set("wc_order_id", *orderID)
	q.Set("wc_order_key", *orderKey)
	q.Set("wc_order_secret", *secret)

	full := *endpoint + "?" + q.Encode()
	fmt.Printf("GET %s\n", full)

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	resp, err := http.Get(full)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(body))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
