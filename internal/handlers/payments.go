package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/diaglab/apiserver/internal/metrics"
	"github.com/diaglab/apiserver/internal/payments"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/types"
)

// PaymentHandler provides HTTP handlers for the payment flow: intent
// creation against the provider and the payment records reported back
// by the front end.
type PaymentHandler struct {
	paymentService *services.PaymentService
	gateway        payments.Gateway
	collector      *metrics.Collector
}

// NewPaymentHandler constructs a handler with the provided dependencies.
func NewPaymentHandler(paymentService *services.PaymentService, gateway payments.Gateway, collector *metrics.Collector) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, gateway: gateway, collector: collector}
}

// PaymentRouter registers payment routes on the given router.
func PaymentRouter(r chi.Router, paymentService *services.PaymentService, gateway payments.Gateway, collector *metrics.Collector) {
	handler := NewPaymentHandler(paymentService, gateway, collector)

	r.Post("/create-payment-intent", handler.CreateIntent)
	r.Get("/payments/{email}", handler.ListByEmail)
	r.Post("/payments", handler.Create)
}

// IntentRequest asks for a payment intent over the given price in
// major currency units.
type IntentRequest struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
}

// IntentResponse carries the provider client secret.
type IntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	secret, err := h.gateway.CreateIntent(r.Context(), req.Price, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "invalid amount")
		case errors.Is(err, payments.ErrProviderDown):
			writeError(w, http.StatusBadGateway, "payment provider unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create payment intent")
		}
		return
	}

	h.collector.RecordPaymentIntent()
	writeJSON(w, http.StatusOK, IntentResponse{ClientSecret: secret})
}

func (h *PaymentHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	records, err := h.paymentService.ListByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payments")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payment types.Payment
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	payment.Email = strings.TrimSpace(payment.Email)
	if payment.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	created, err := h.paymentService.Create(r.Context(), payment)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record payment")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
