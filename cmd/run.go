package cmd

import (
	"context"
	"fmt"

	"raffler/config"
	"raffler/database"
	"raffler/events"
	"raffler/gateway"
	"raffler/notification"
	"raffler/repository"
	"raffler/service"

	log "github.com/sirupsen/logrus"
)

// App bundles the wired core services. The transport layer (HTTP routing,
// admin auth) mounts these; the core does not own a listener itself.
type App struct {
	Raffles  service.RaffleService
	Tickets  service.TicketService
	Payments service.PaymentService
	Draws    service.DrawService
}

// NewApp wires the core services against the given database and event bus
func NewApp(db *database.DB, eventBus *events.Bus, gw gateway.PaymentGateway) *App {
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	return &App{
		Raffles:  service.NewRaffleService(uowFactory),
		Tickets:  service.NewTicketService(uowFactory, gw),
		Payments: service.NewPaymentService(uowFactory, gw),
		Draws:    service.NewDrawService(uowFactory),
	}
}

// Run initializes the application and blocks until the context is cancelled
func Run(ctx context.Context) error {
	log.Info("Starting raffle backend...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()

	notifier := notification.NewNotifier(notification.LogSender{})
	notifier.Register(eventBus)

	gw, err := gateway.New(gateway.Config{
		Provider:         cfg.PaymentProvider,
		AccessToken:      cfg.PaymentAccessToken,
		AutoConfirmAfter: cfg.MockAutoConfirm,
	})
	if err != nil {
		return fmt.Errorf("failed to build payment gateway: %w", err)
	}
	if mock, ok := gw.(*gateway.Mock); ok {
		defer mock.Close()
	}

	NewApp(db, eventBus, gw)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"gateway":     cfg.PaymentProvider,
	}).Info("Core services initialized")

	<-ctx.Done()

	log.Info("Shutting down...")
	return nil
}
