package event

// Publisher is the outbound event port. The amqp implementation lives in
// internal/mq; tests substitute a recorder.
type Publisher interface {
	Publish(routingKey string, msg any) error
}

// Nop discards events; used when the broker is disabled.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }
