package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaglab/apiserver/internal/payments"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/types"
)

// fakeGateway records the last intent request.
type fakeGateway struct {
	lastAmount   float64
	lastCurrency string
	secret       string
	err          error
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amount float64, currency string) (string, error) {
	f.lastAmount = amount
	f.lastCurrency = currency
	if f.err != nil {
		return "", f.err
	}
	return f.secret, nil
}

type paymentFixture struct {
	router  chi.Router
	repo    *fakePaymentRepo
	gateway *fakeGateway
}

func newPaymentFixture() *paymentFixture {
	repo := newFakePaymentRepo()
	gateway := &fakeGateway{secret: "pi_123_secret_456"}
	paymentService := services.NewPaymentService(repo)

	router := chi.NewRouter()
	PaymentRouter(router, paymentService, gateway, nil)
	return &paymentFixture{router: router, repo: repo, gateway: gateway}
}

func TestCreatePaymentIntent(t *testing.T) {
	fx := newPaymentFixture()

	rec := doRequest(fx.router, http.MethodPost, "/create-payment-intent", "", jsonBody(t, IntentRequest{Price: 19.99}))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[IntentResponse](t, rec)
	assert.Equal(t, "pi_123_secret_456", resp.ClientSecret)
	assert.Equal(t, 19.99, fx.gateway.lastAmount)
}

func TestCreatePaymentIntentInvalidAmount(t *testing.T) {
	fx := newPaymentFixture()
	fx.gateway.err = payments.ErrInvalidAmount

	rec := doRequest(fx.router, http.MethodPost, "/create-payment-intent", "", jsonBody(t, IntentRequest{Price: -5}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid amount", decodeBody[ErrorResponse](t, rec).Error)
}

func TestCreatePaymentIntentProviderDown(t *testing.T) {
	fx := newPaymentFixture()
	fx.gateway.err = payments.ErrProviderDown

	rec := doRequest(fx.router, http.MethodPost, "/create-payment-intent", "", jsonBody(t, IntentRequest{Price: 19.99}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRecordAndListPayments(t *testing.T) {
	fx := newPaymentFixture()

	payment := types.Payment{Email: "a@x.com", Amount: 19.99, TransactionID: "txn_1"}
	rec := doRequest(fx.router, http.MethodPost, "/payments", "", jsonBody(t, payment))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotZero(t, decodeBody[types.Payment](t, rec).ID)

	doRequest(fx.router, http.MethodPost, "/payments", "", jsonBody(t, types.Payment{Email: "b@x.com", Amount: 5}))

	rec = doRequest(fx.router, http.MethodGet, "/payments/a@x.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	records := decodeBody[[]types.Payment](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, "txn_1", records[0].TransactionID)
}

func TestRecordPaymentRequiresEmail(t *testing.T) {
	fx := newPaymentFixture()

	rec := doRequest(fx.router, http.MethodPost, "/payments", "", jsonBody(t, types.Payment{Amount: 10}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
