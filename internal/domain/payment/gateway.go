package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrDeclined = errors.New("payment: declined")

// Gateway charges a customer. Implementations report declines through Result rather than
// the error return, which is reserved for transport failures.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Result, error)
}

type ChargeRequest struct {
	Amount decimal.Decimal
	Method Method
	Card   *Card
}

type Result struct {
	Success       bool
	TransactionID string
	Error         string
}
