// Package notification turns domain events into buyer and winner
// notifications. Delivery is fire-and-forget: a failed notification never
// rolls back ticket or draw state.
package notification

import (
	"context"

	"raffler/events"

	log "github.com/sirupsen/logrus"
)

// Sender delivers a single message to a recipient. The production
// implementation wraps the organization's email provider; tests use a stub.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender is the default sender: it records the notification in the logs
// without external delivery.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	log.WithFields(log.Fields{
		"recipient": recipient,
		"subject":   subject,
	}).Info("Notification sent")
	return nil
}

// Notifier subscribes to the event bus and fans events out to the sender
type Notifier struct {
	sender Sender
}

// NewNotifier creates a notifier over the given sender
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// Register subscribes the notifier to every event it reacts to
func (n *Notifier) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeTicketsReserved, n.handleTicketsReserved)
	bus.Subscribe(events.EventTypeTicketsConfirmed, n.handleTicketsConfirmed)
	bus.Subscribe(events.EventTypeRaffleDrawn, n.handleRaffleDrawn)
	bus.Subscribe(events.EventTypeDonationConfirmed, n.handleDonationConfirmed)
}

func (n *Notifier) handleTicketsReserved(ctx context.Context, event events.Event) {
	e, ok := event.(events.TicketsReservedEvent)
	if !ok {
		return
	}
	n.send(ctx, e.BuyerEmail, "Your raffle numbers are reserved",
		"We are holding your numbers until payment confirms.")
}

func (n *Notifier) handleTicketsConfirmed(ctx context.Context, event events.Event) {
	e, ok := event.(events.TicketsConfirmedEvent)
	if !ok {
		return
	}
	n.send(ctx, e.BuyerEmail, "Raffle payment update",
		"The payment status of your raffle numbers changed to "+string(e.NewStatus)+".")
}

func (n *Notifier) handleRaffleDrawn(ctx context.Context, event events.Event) {
	e, ok := event.(events.RaffleDrawnEvent)
	if !ok {
		return
	}
	n.send(ctx, e.WinnerEmail, "You won the raffle!",
		"Your number was drawn in "+e.RaffleTitle+".")
}

func (n *Notifier) handleDonationConfirmed(ctx context.Context, event events.Event) {
	e, ok := event.(events.DonationConfirmedEvent)
	if !ok {
		return
	}
	n.send(ctx, e.DonorEmail, "Thank you for your donation",
		"Your donation payment status changed to "+string(e.NewStatus)+".")
}

func (n *Notifier) send(ctx context.Context, recipient, subject, body string) {
	if recipient == "" {
		return
	}
	if err := n.sender.Send(ctx, recipient, subject, body); err != nil {
		// Notification failure is logged and dropped
		log.WithError(err).WithField("recipient", recipient).Error("Failed to send notification")
	}
}
