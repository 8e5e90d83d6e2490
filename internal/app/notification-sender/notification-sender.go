// Package notificationsender собирает сервис отправки писем о покупках:
// потребитель очереди RabbitMQ и SMTP-транспорт.
package notificationsender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/benefit-ledger/internal/config"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/smtp"
	"github.com/magabrotheeeer/benefit-ledger/internal/rabbitmq"
	"github.com/magabrotheeeer/benefit-ledger/internal/services/notifier"
)

type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *notifier.NotifierService
	logger  *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBenefitQueues())
	if err != nil {
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	service := notifier.New(transport, logger)

	return &App{
		conn:    conn,
		ch:      ch,
		service: service,
		logger:  logger,
	}, nil
}

// Run запускает потребление очереди покупок до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", slog.Any("err", err))
		}
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", slog.Any("err", err))
		}
	}()

	a.logger.Info("notification sender started")
	if err := rabbitmq.ConsumerMessage(ctx, a.ch, "benefits.purchase",
		a.service.SendPurchaseConfirmation); err != nil {
		return err
	}
	<-ctx.Done()
	a.logger.Info("notification sender stopping")
	return nil
}
