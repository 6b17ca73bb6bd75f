// Package sender runs the notification sender: it consumes the notification
// queues and emails each message.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/lib/rabbitmq"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/lib/smtp"
	senderservice "github.com/tipsgolbr/tipsgol/internal/services/sender"
)

// App is the sender process.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New connects to the broker and prepares the SMTP transport.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.New(transport, cfg.SiteURL, logger),
		logger:        logger,
	}, nil
}

// DropMalformed wraps handler so that messages that can never be delivered
// are acked and logged instead of being requeued forever.
func DropMalformed(logger *slog.Logger, handler func([]byte) error) func([]byte) error {
	return func(body []byte) error {
		err := handler(body)
		if errors.Is(err, senderservice.ErrMalformedMessage) {
			logger.Error("dropping malformed message", sl.Err(err), slog.Int("bytes", len(body)))
			return nil
		}
		return err
	}
}

// Run consumes until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	handler := DropMalformed(a.logger, a.senderService.SendPremiumExpiring)
	if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.PremiumExpiringQueue, handler); err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.PremiumExpiringQueue), sl.Err(err))
		a.close()
		return err
	}
	a.logger.Info("sender consuming", slog.String("queue", rabbitmq.PremiumExpiringQueue))

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
