package rabbitmq

import (
	"github.com/streadway/amqp"

	librabbitmq "github.com/magabrotheeeer/benefit-ledger/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/benefit-ledger/internal/models"
)

// PurchasePublisher публикует события о покупках в обменник benefits.
// Реализует интерфейс EventsPublisher сервиса entitlement.
type PurchasePublisher struct {
	ch *amqp.Channel
}

// NewPurchasePublisher создает новый PurchasePublisher.
func NewPurchasePublisher(ch *amqp.Channel) *PurchasePublisher {
	return &PurchasePublisher{ch: ch}
}

// PublishPurchaseCreated публикует сообщение о созданной покупке.
func (p *PurchasePublisher) PublishPurchaseCreated(info models.PurchaseInfo) error {
	return librabbitmq.PublishMessage(p.ch, Exchange, "purchase.created", info)
}
