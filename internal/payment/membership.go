package payment

import (
	"context"
	"fmt"

	"github.com/forumx/forumx/internal/api"
)

// Membership pricing. A single gold tier at a fixed price.
const (
	MembershipAmountUSD = 30
	MembershipType      = "gold"
)

// Receipt summarizes a completed membership purchase.
type Receipt struct {
	TransactionID  string
	Amount         int
	MembershipType string
}

// Buyer identifies who the membership is purchased for.
type Buyer struct {
	UserID      string
	Email       string
	DisplayName string
}

// Service runs the membership upgrade flow: intent from the backend, card
// confirmation at the processor, then the payment record back at the backend.
type Service struct {
	client    *api.Client
	processor *Processor
}

// NewService creates a membership payment service.
func NewService(client *api.Client, processor *Processor) *Service {
	return &Service{client: client, processor: processor}
}

// Purchase runs the full membership payment flow for the buyer's card.
// Errors are returned inline for the payment form; nothing is retried.
func (s *Service) Purchase(ctx context.Context, buyer Buyer, card Card) (*Receipt, error) {
	intentReq := map[string]any{
		"amountInCents":  MembershipAmountUSD * 100,
		"membershipType": MembershipType,
		"userId":         buyer.UserID,
	}
	var intentResp struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := s.client.Post(ctx, "/create-membership-intent", intentReq, &intentResp); err != nil {
		return nil, fmt.Errorf("creating membership intent: %w", err)
	}

	methodID, err := s.processor.CreatePaymentMethod(ctx, card)
	if err != nil {
		return nil, err
	}

	intent, err := s.processor.ConfirmPayment(ctx, intentResp.ClientSecret, methodID, BillingDetails{
		Name:  buyer.DisplayName,
		Email: buyer.Email,
	})
	if err != nil {
		return nil, err
	}

	record := map[string]any{
		"userId":         buyer.UserID,
		"email":          buyer.Email,
		"amount":         MembershipAmountUSD,
		"transactionId":  intent.ID,
		"paymentMethod":  intent.PaymentMethodTypes,
		"membershipType": MembershipType,
	}
	if err := s.client.Post(ctx, "/membership-payments", record, nil); err != nil {
		return nil, fmt.Errorf("recording membership payment: %w", err)
	}

	return &Receipt{
		TransactionID:  intent.ID,
		Amount:         MembershipAmountUSD,
		MembershipType: MembershipType,
	}, nil
}
