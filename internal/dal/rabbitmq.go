package dal

import (
	"log"

	"github.com/streadway/amqp"

	"launcx-order-api/internal/config"
)

var RabbitConn *amqp.Connection
var RabbitCh *amqp.Channel

// InitRabbitMQ declares the order_events exchange used for lifecycle and
// settlement-summary events. Consumers are external (stats, dashboard).
func InitRabbitMQ() {
	url := config.C.RabbitMQ.URL
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("rabbitmq dial failed: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbitmq channel failed: %v", err)
	}

	if err := ch.ExchangeDeclare("order_events", "topic", true, false, false, false, nil); err != nil {
		log.Fatalf("exchange declare failed: %v", err)
	}
	for _, q := range []struct{ name, key string }{
		{"order_paid", "order.paid"},
		{"order_settled", "order.settled"},
		{"settlement_completed", "settlement.completed"},
	} {
		if _, err := ch.QueueDeclare(q.name, true, false, false, false, nil); err != nil {
			log.Fatalf("queue declare %s failed: %v", q.name, err)
		}
		if err := ch.QueueBind(q.name, q.key, "order_events", false, nil); err != nil {
			log.Fatalf("queue bind %s failed: %v", q.name, err)
		}
	}

	RabbitConn = conn
	RabbitCh = ch
}
