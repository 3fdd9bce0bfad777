package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrCardDeclined is returned when the processor rejects the card or the
// confirmation does not reach the succeeded state.
var ErrCardDeclined = errors.New("card payment was declined")

// Card holds raw card input collected from the payment form. Card data is
// sent only to the payment processor, never to the backend.
type Card struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
}

// BillingDetails accompany the payment confirmation.
type BillingDetails struct {
	Name  string
	Email string
}

// Intent is the processor's view of a payment attempt.
type Intent struct {
	ID                 string   `json:"id"`
	Status             string   `json:"status"`
	PaymentMethodTypes []string `json:"payment_method_types"`
}

// Processor is the card-payment processor's client-side API, authenticated
// with the publishable key. It creates payment methods from card input and
// confirms intents against server-issued client secrets.
type Processor struct {
	baseURL        string
	publishableKey string
	httpClient     *http.Client
}

// NewProcessor creates a payment processor client.
func NewProcessor(baseURL, publishableKey string, timeout time.Duration) *Processor {
	return &Processor{
		baseURL:        baseURL,
		publishableKey: publishableKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreatePaymentMethod tokenizes card input into a payment method id.
func (p *Processor) CreatePaymentMethod(ctx context.Context, card Card) (string, error) {
	form := url.Values{}
	form.Set("type", "card")
	form.Set("card[number]", card.Number)
	form.Set("card[exp_month]", card.ExpMonth)
	form.Set("card[exp_year]", card.ExpYear)
	form.Set("card[cvc]", card.CVC)

	var method struct {
		ID string `json:"id"`
	}
	if err := p.post(ctx, "/v1/payment_methods", form, &method); err != nil {
		return "", err
	}
	return method.ID, nil
}

// ConfirmPayment confirms the intent behind a server-issued client secret
// with the given payment method. A confirmation that does not reach
// "succeeded" is a declined payment.
func (p *Processor) ConfirmPayment(ctx context.Context, clientSecret, paymentMethodID string, billing BillingDetails) (*Intent, error) {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_secret", clientSecret)
	form.Set("payment_method", paymentMethodID)
	form.Set("payment_method_data[billing_details][name]", billing.Name)
	form.Set("payment_method_data[billing_details][email]", billing.Email)

	var intent Intent
	if err := p.post(ctx, "/v1/payment_intents/"+intentID+"/confirm", form, &intent); err != nil {
		return nil, err
	}
	if intent.Status != "succeeded" {
		return nil, fmt.Errorf("%w: intent status %s", ErrCardDeclined, intent.Status)
	}
	return &intent, nil
}

func (p *Processor) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building processor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+p.publishableKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling payment processor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Error.Message != "" {
			return fmt.Errorf("%w: %s", ErrCardDeclined, failure.Error.Message)
		}
		return fmt.Errorf("payment processor returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding processor response: %w", err)
	}
	return nil
}

// intentIDFromSecret extracts the intent id from a client secret of the form
// "<intent id>_secret_<nonce>".
func intentIDFromSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || id == "" {
		return "", fmt.Errorf("malformed client secret")
	}
	return id, nil
}
