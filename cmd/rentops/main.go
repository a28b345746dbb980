package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rentops/internal/app/commands"
	availabilityapp "rentops/internal/app/handlers/availability"
	bookingapp "rentops/internal/app/handlers/booking"
	"rentops/internal/app/middleware"
	"rentops/internal/app/outbox"
	"rentops/internal/app/policies"
	"rentops/internal/app/queries"
	"rentops/internal/app/sideeffects"
	"rentops/internal/infra/broker/kafka"
	"rentops/internal/infra/config"
	ginserver "rentops/internal/infra/http/gin"
	"rentops/internal/infra/notify"
	"rentops/internal/infra/obs"
	infraoutbox "rentops/internal/infra/outbox"
	"rentops/internal/infra/schedule"
	"rentops/internal/infra/security"
	"rentops/internal/infra/storage/memory"
)

const (
	feedTopic         = "calendar.feed.v1"
	calendarSyncTopic = "calendar.sync.v1"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("rentops stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("rentops stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	tokens, err := security.ParseTokens(cfg.AuthTokens)
	if err != nil {
		return err
	}
	if tokens.Len() == 0 {
		logger.Warn("AUTH_TOKENS is empty, every API request will be rejected")
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	if err := loadPropertyFixtures(ctx, cfg.PropertiesFixtures, st.properties, logger); err != nil {
		logger.Warn("property fixtures load failed", "error", err, "path", cfg.PropertiesFixtures)
	}

	var (
		producer     *kafka.Producer
		calendarSync policies.CalendarSync = memory.NewCalendarSyncLog()
	)
	if cfg.KafkaEnabled() {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, "rentops", nil)
		if err != nil {
			return err
		}
		defer producer.Close()
		calendarSync = kafka.CalendarSync{Producer: producer, Topic: cfg.KafkaTopicPrefix + calendarSyncTopic}
	} else {
		logger.Info("kafka disabled, events stay in the outbox and calendar sync is local")
	}

	auth := security.RoleAuthorizer{}
	encoder := outbox.JSONEventEncoder{}
	effects := &sideeffects.Dispatcher{
		Ledger: []sideeffects.Handler{sideeffects.LedgerHandler{Ledger: st.ledger}},
		Effects: []sideeffects.Handler{
			sideeffects.CRMHandler{CRM: st.crm},
			sideeffects.NotificationHandler{Notifier: notify.OutboxNotifier{Outbox: st.outbox}},
			sideeffects.CalendarSyncHandler{Sync: calendarSync},
			sideeffects.OutboxHandler{Outbox: st.outbox, Encoder: encoder},
		},
		Logger: logger,
	}
	lifecycle := &bookingapp.Lifecycle{
		Bookings:         st.bookings,
		Properties:       st.properties,
		Auth:             auth,
		Effects:          effects,
		Logger:           logger,
		DefaultHoldHours: cfg.HoldDefaultHours,
		BulkConcurrency:  cfg.BulkConcurrency,
	}
	availability := &availabilityapp.Service{
		Ledger:   st.ledger,
		Bookings: st.bookings,
		Auth:     auth,
		Inbox:    st.inbox,
		Outbox:   st.outbox,
		Encoder:  encoder,
		Logger:   logger,
	}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	bookingapp.Register(commandBus, queryBus, lifecycle)
	availabilityapp.Register(commandBus, queryBus, availability)

	validator := middleware.NewStructValidator()
	authCommands, authQueries := middleware.Authorization(auth)
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		authCommands,
		middleware.Validation(validator),
		middleware.Idempotency(st.idempotency, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus, authQueries, middleware.QueryValidation(validator))

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: st.ready}, ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Availability: ginserver.AvailabilityHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Tokens: tokens, Logger: logger}.Handle,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.HoldSweepInterval > 0 {
		sweeper := schedule.HoldSweeper{Sweep: lifecycle.SweepExpiredHolds, Interval: cfg.HoldSweepInterval, Logger: logger}
		g.Go(func() error { return ignoreCancel(sweeper.Run(ctx)) })
	}
	if producer != nil {
		worker := &infraoutbox.Worker{
			Store:       st.relay,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		g.Go(func() error { return ignoreCancel(worker.Run(ctx)) })

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, kafka.FeedHandler{Feed: availability, Logger: logger}, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			<-ctx.Done()
			return consumer.Close()
		})
		g.Go(func() error { return ignoreCancel(consumer.Run(ctx, []string{cfg.KafkaTopicPrefix + feedTopic})) })
	}
	return g.Wait()
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
