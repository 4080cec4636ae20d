package payments

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrProviderDown is returned when the provider reports a server
	// side failure.
	ErrProviderDown = errors.New("payment provider unavailable")
)

// Gateway creates payment intents with an external provider. The
// returned client secret is handed to the front end, which completes
// the charge on its own; the server never sees card details.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string) (clientSecret string, err error)
}

// MinorUnits converts a major-unit amount to integer minor units.
// The product is rounded to the nearest cent: a plain truncation turns
// 19.99 into 1998 because 19.99*100 is not exactly representable in
// binary floating point.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
