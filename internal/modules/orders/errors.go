package orders

import "errors"

var (
	ErrNotFound   = errors.New("order not found")
	ErrNotPayable = errors.New("order not in a payable status")
)
