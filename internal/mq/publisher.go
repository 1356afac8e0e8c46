package mq

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"

	"launcx-order-api/internal/dal"
)

// AmqpPublisher publishes to the order_events topic exchange. Publishing is
// best effort: a broker outage must never fail a payment path.
type AmqpPublisher struct{}

func NewPublisher() *AmqpPublisher { return &AmqpPublisher{} }

func (p *AmqpPublisher) Publish(routingKey string, msg any) error {
	if dal.RabbitCh == nil {
		return nil
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	err = dal.RabbitCh.Publish(
		"order_events",
		routingKey,
		false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         b,
		},
	)
	if err != nil {
		log.Printf("publish %s failed: %v", routingKey, err)
	}
	return err
}
