package mq

import (
	"context"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	Publish(ctx context.Context, exchange string, routingKey string, body []byte) error
}

type RabbitPublisher struct {
	ch  *amqp.Channel
	now func() time.Time
}

func NewRabbitPublisher(ch *amqp.Channel) Publisher {
	return &RabbitPublisher{ch: ch, now: time.Now}
}

func (r *RabbitPublisher) Publish(ctx context.Context, exchange string, routingKey string, body []byte) error {
	return r.ch.PublishWithContext(ctx, exchange, routingKey, false, false, newPublishing(body, r.now()))
}

func (r *RabbitPublisher) Close() error {
	if r.ch != nil {
		return r.ch.Close()
	}

	return nil
}

func newPublishing(body []byte, at time.Time) amqp.Publishing {
	return amqp.Publishing{
		MessageId:    uuid.NewString(),
		Timestamp:    at.UTC(),
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
}
