// Package gateway abstracts the external payment provider. The core only
// needs the resulting payment id and status to drive ticket and donation
// transitions; provider protocol details stay behind this interface.
package gateway

import (
	"context"
	"fmt"
	"time"

	"raffler/models"
)

// Payment methods accepted at checkout
const (
	MethodPix        = "pix"
	MethodCreditCard = "credit_card"
	MethodBoleto     = "boleto"
)

// PaymentRequest carries everything a provider needs to create a payment
type PaymentRequest struct {
	Amount      float64
	Method      string
	PayerName   string
	PayerEmail  string
	PayerPhone  string
	Description string
}

// Payment is the provider's view of a created payment
type Payment struct {
	ID        string
	Status    models.PaymentStatus
	Method    string
	Amount    float64
	PixCode   string // set for pix payments
	QRCode    string // base64 image data, set for pix payments
	CreatedAt time.Time
}

// PaymentGateway is the narrow contract consumed by the payment correlation
// component
type PaymentGateway interface {
	// CreatePayment registers a payment with the provider
	CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error)

	// GetStatus queries the current status of a payment
	GetStatus(ctx context.Context, paymentID string) (models.PaymentStatus, error)

	// CancelPayment cancels a payment that has not completed
	CancelPayment(ctx context.Context, paymentID string) error
}

// Config selects and parameterizes the gateway variant at startup
type Config struct {
	Provider         string        // "mock" or "mercadopago"
	AccessToken      string        // external provider credential
	AutoConfirmAfter time.Duration // mock only: delayed one-shot auto-confirmation
}

// New builds the configured gateway variant. The external provider is
// represented by its configuration only; wiring a real SDK is out of scope.
func New(cfg Config) (PaymentGateway, error) {
	switch cfg.Provider {
	case "", "mock":
		return NewMock(cfg.AutoConfirmAfter), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway provider: %q", cfg.Provider)
	}
}
