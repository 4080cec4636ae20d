package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

const defaultCurrency = "usd"

// intentCreator is the slice of the Stripe client used here, split
// out so tests can substitute a recorder.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway implements Gateway on the Stripe API.
type StripeGateway struct {
	intents intentCreator
}

// NewStripeGateway constructs a gateway with its own client instance;
// the stripe-go package-level client and its global key are avoided.
func NewStripeGateway(apiKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents}
}

// CreateIntent registers a card payment intent for the amount (major
// units) and returns its client secret.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, currency string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	currency = strings.TrimSpace(strings.ToLower(currency))
	if currency == "" {
		currency = defaultCurrency
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(MinorUnits(amount)),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := g.intents.New(params)
	if err != nil {
		return "", mapStripeError(err)
	}
	return intent.ClientSecret, nil
}

// mapStripeError translates stripe-go errors into domain errors so
// callers never import the provider package.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return ErrProviderDown
		}
		return fmt.Errorf("payment intent rejected: %s", stripeErr.Msg)
	}
	return fmt.Errorf("payment gateway: %w", err)
}
