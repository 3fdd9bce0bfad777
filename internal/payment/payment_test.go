package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumx/forumx/internal/api"
	"github.com/forumx/forumx/internal/payment"
)

type staticTokens struct{}

func (staticTokens) Authenticated() bool                         { return true }
func (staticTokens) Token(context.Context, bool) (string, error) { return "tok", nil }
func (staticTokens) ForceSignOut()                               {}

var testBuyer = payment.Buyer{
	UserID:      "u1",
	Email:       "alice@example.com",
	DisplayName: "Alice",
}

var testCard = payment.Card{
	Number:   "4242424242424242",
	ExpMonth: "12",
	ExpYear:  "2030",
	CVC:      "123",
}

// --- Processor Tests ---

func TestConfirmPayment_SucceededIntent(t *testing.T) {
	var confirmPath string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/payment_intents/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		confirmPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pm_1", r.PostForm.Get("payment_method"))
		assert.Equal(t, "Alice", r.PostForm.Get("payment_method_data[billing_details][name]"))
		_ = json.NewEncoder(w).Encode(payment.Intent{
			ID:                 "pi_1",
			Status:             "succeeded",
			PaymentMethodTypes: []string{"card"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	proc := payment.NewProcessor(srv.URL, "pk_test", 5*time.Second)

	intent, err := proc.ConfirmPayment(context.Background(), "pi_1_secret_abc", "pm_1", payment.BillingDetails{
		Name:  "Alice",
		Email: "alice@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "/v1/payment_intents/pi_1/confirm", confirmPath)
	assert.Equal(t, "pi_1", intent.ID)
}

func TestConfirmPayment_NonSucceededStatusIsDeclined(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/payment_intents/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(payment.Intent{ID: "pi_1", Status: "requires_payment_method"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	proc := payment.NewProcessor(srv.URL, "pk_test", 5*time.Second)

	_, err := proc.ConfirmPayment(context.Background(), "pi_1_secret_abc", "pm_1", payment.BillingDetails{})

	assert.ErrorIs(t, err, payment.ErrCardDeclined)
}

func TestConfirmPayment_MalformedClientSecret(t *testing.T) {
	proc := payment.NewProcessor("http://127.0.0.1:0", "pk_test", time.Second)

	_, err := proc.ConfirmPayment(context.Background(), "not-a-secret", "pm_1", payment.BillingDetails{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed client secret")
}

// --- Purchase Flow Tests ---

func TestPurchase_RunsIntentConfirmRecordInOrder(t *testing.T) {
	var calls []string
	var recorded map[string]any

	backend := http.NewServeMux()
	backend.HandleFunc("POST /create-membership-intent", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "intent")
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3000), body["amountInCents"])
		assert.Equal(t, "gold", body["membershipType"])
		_ = json.NewEncoder(w).Encode(map[string]string{"clientSecret": "pi_1_secret_abc"})
	})
	backend.HandleFunc("POST /membership-payments", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "record")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recorded))
		w.WriteHeader(http.StatusCreated)
	})
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	processor := http.NewServeMux()
	processor.HandleFunc("POST /v1/payment_methods", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "method")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "pm_1"})
	})
	processor.HandleFunc("POST /v1/payment_intents/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "confirm")
		_ = json.NewEncoder(w).Encode(payment.Intent{
			ID:                 "pi_1",
			Status:             "succeeded",
			PaymentMethodTypes: []string{"card"},
		})
	})
	processorSrv := httptest.NewServer(processor)
	t.Cleanup(processorSrv.Close)

	svc := payment.NewService(
		api.NewClient(backendSrv.URL, staticTokens{}, 5*time.Second),
		payment.NewProcessor(processorSrv.URL, "pk_test", 5*time.Second),
	)

	receipt, err := svc.Purchase(context.Background(), testBuyer, testCard)

	require.NoError(t, err)
	assert.Equal(t, []string{"intent", "method", "confirm", "record"}, calls)
	assert.Equal(t, "pi_1", receipt.TransactionID)
	assert.Equal(t, payment.MembershipAmountUSD, receipt.Amount)
	assert.Equal(t, "gold", receipt.MembershipType)
	assert.Equal(t, "pi_1", recorded["transactionId"])
	assert.Equal(t, "alice@example.com", recorded["email"])
}

func TestPurchase_DeclinedCardIsNotRecorded(t *testing.T) {
	var recordCalls int

	backend := http.NewServeMux()
	backend.HandleFunc("POST /create-membership-intent", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"clientSecret": "pi_1_secret_abc"})
	})
	backend.HandleFunc("POST /membership-payments", func(w http.ResponseWriter, r *http.Request) {
		recordCalls++
	})
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	processor := http.NewServeMux()
	processor.HandleFunc("POST /v1/payment_methods", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "pm_1"})
	})
	processor.HandleFunc("POST /v1/payment_intents/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	})
	processorSrv := httptest.NewServer(processor)
	t.Cleanup(processorSrv.Close)

	svc := payment.NewService(
		api.NewClient(backendSrv.URL, staticTokens{}, 5*time.Second),
		payment.NewProcessor(processorSrv.URL, "pk_test", 5*time.Second),
	)

	_, err := svc.Purchase(context.Background(), testBuyer, testCard)

	assert.ErrorIs(t, err, payment.ErrCardDeclined)
	assert.Equal(t, 0, recordCalls, "declined payments must not be recorded")
}
