package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"raffler/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Static placeholder QR image returned for pix payments
const mockQRCode = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// Mock is an in-memory payment gateway simulator for development and tests.
// It can optionally auto-confirm payments after a fixed delay; the timers are
// one-shot and cancelled on Close, and have no bearing on ledger correctness.
type Mock struct {
	mu               sync.Mutex
	payments         map[string]*Payment
	timers           map[string]*time.Timer
	autoConfirmAfter time.Duration
	closed           bool
}

// NewMock creates a mock gateway. A zero autoConfirmAfter disables the
// delayed auto-confirmation.
func NewMock(autoConfirmAfter time.Duration) *Mock {
	return &Mock{
		payments:         make(map[string]*Payment),
		timers:           make(map[string]*time.Timer),
		autoConfirmAfter: autoConfirmAfter,
	}
}

// CreatePayment registers a simulated payment in pending state
func (m *Mock) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if req.PayerEmail == "" {
		return nil, fmt.Errorf("payer email is required")
	}

	id := "mock_pay_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	payment := &Payment{
		ID:        id,
		Status:    models.PaymentStatusPending,
		Method:    req.Method,
		Amount:    req.Amount,
		CreatedAt: time.Now(),
	}
	if req.Method == MethodPix {
		payment.PixCode = "PIX" + strings.ToUpper(id[len("mock_pay_"):])
		payment.QRCode = mockQRCode
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("gateway is closed")
	}
	m.payments[id] = payment

	if m.autoConfirmAfter > 0 {
		m.timers[id] = time.AfterFunc(m.autoConfirmAfter, func() {
			m.autoConfirm(id)
		})
	}

	log.WithFields(log.Fields{
		"paymentID": id,
		"method":    req.Method,
		"amount":    req.Amount,
	}).Debug("Mock payment created")

	return payment, nil
}

// GetStatus queries the current status of a simulated payment
func (m *Mock) GetStatus(ctx context.Context, paymentID string) (models.PaymentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payment, ok := m.payments[paymentID]
	if !ok {
		return "", fmt.Errorf("payment %s not found", paymentID)
	}
	return payment.Status, nil
}

// CancelPayment cancels a pending simulated payment
func (m *Mock) CancelPayment(ctx context.Context, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	payment, ok := m.payments[paymentID]
	if !ok {
		return fmt.Errorf("payment %s not found", paymentID)
	}
	if payment.Status == models.PaymentStatusCompleted {
		return fmt.Errorf("payment %s already completed", paymentID)
	}

	payment.Status = models.PaymentStatusCancelled
	m.stopTimer(paymentID)
	return nil
}

// Close cancels all outstanding auto-confirmation timers
func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
}

func (m *Mock) autoConfirm(paymentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payment, ok := m.payments[paymentID]
	if !ok || payment.Status != models.PaymentStatusPending {
		return
	}
	payment.Status = models.PaymentStatusCompleted
	delete(m.timers, paymentID)

	log.WithField("paymentID", paymentID).Debug("Mock payment auto-confirmed")
}

func (m *Mock) stopTimer(paymentID string) {
	if timer, ok := m.timers[paymentID]; ok {
		timer.Stop()
		delete(m.timers, paymentID)
	}
}
