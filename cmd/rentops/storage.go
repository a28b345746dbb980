package main

import (
	"context"
	"fmt"
	"log/slog"

	availabilityapp "rentops/internal/app/handlers/availability"
	"rentops/internal/app/middleware"
	"rentops/internal/app/outbox"
	"rentops/internal/app/policies"
	domainavailability "rentops/internal/domain/availability"
	domainbooking "rentops/internal/domain/booking"
	domainproperty "rentops/internal/domain/property"
	"rentops/internal/infra/config"
	mongostore "rentops/internal/infra/db/mongo"
	"rentops/internal/infra/inbox"
	infraoutbox "rentops/internal/infra/outbox"
	"rentops/internal/infra/storage/memory"
)

type propertyStore interface {
	domainproperty.Directory
	Save(ctx context.Context, p domainproperty.Property) error
}

type storage struct {
	bookings    domainbooking.Repository
	ledger      domainavailability.Ledger
	properties  propertyStore
	crm         policies.GuestCRM
	idempotency middleware.IdempotencyStore
	inbox       availabilityapp.Inbox
	outbox      outbox.Outbox
	relay       infraoutbox.RelayStore
	ready       func(ctx context.Context) error
	close       func()
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.StorageMode {
	case config.StorageMongo:
		return openMongo(ctx, cfg, logger)
	default:
		return openMemory(), nil
	}
}

func openMemory() *storage {
	box := memory.NewOutbox()
	return &storage{
		bookings:    memory.NewBookingRepository(),
		ledger:      memory.NewLedger(),
		properties:  memory.NewPropertyDirectory(),
		crm:         memory.NewGuestCRM(),
		idempotency: memory.NewIdempotencyStore(),
		inbox:       memory.NewInbox(),
		outbox:      box,
		relay:       box,
		ready:       func(context.Context) error { return nil },
		close:       func() {},
	}
}

func openMongo(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	fail := func(err error) (*storage, error) {
		_ = client.Close(context.Background())
		return nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, client.DB); err != nil {
		return fail(fmt.Errorf("ensure indexes: %w", err))
	}
	box, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return fail(fmt.Errorf("outbox store: %w", err))
	}
	feedInbox, err := inbox.NewStore(ctx, client.DB, "calendar-feed")
	if err != nil {
		return fail(fmt.Errorf("inbox store: %w", err))
	}
	logger.Info("mongo storage ready", "database", cfg.MongoDB)
	return &storage{
		bookings:    mongostore.NewBookingRepository(client.DB),
		ledger:      mongostore.NewLedgerRepository(client.DB),
		properties:  mongostore.NewPropertyDirectory(client.DB),
		crm:         mongostore.NewGuestCRM(client.DB),
		idempotency: mongostore.NewIdempotencyStore(client.DB),
		inbox:       feedInbox,
		outbox:      box,
		relay:       box,
		ready:       client.Ping,
		close: func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		},
	}, nil
}
