package events

import (
	"encoding/json"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/streadway/amqp"
	"sync"
	"time"
)

// Publisher is the part of *amqp.Channel the Forwarder needs
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Forwarder relays product mutation events from the bus to an AMQP exchange
// so other services can follow catalog changes.
type Forwarder struct {
	log        hclog.Logger
	bus        *EventBus[any]
	subscriber Subscriber[any]
	channel    Publisher
	exchange   string
	conn       *amqp.Connection
	wg         sync.WaitGroup
	once       sync.Once
}

// DialForwarder connects to the broker at url, declares a durable topic
// exchange and starts forwarding.
func DialForwarder(url, exchange string, bus *EventBus[any], log hclog.Logger) (*Forwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	f := NewForwarder(ch, exchange, bus, log)
	f.conn = conn
	return f, nil
}

// NewForwarder starts relaying bus events through ch
func NewForwarder(ch Publisher, exchange string, bus *EventBus[any], log hclog.Logger) *Forwarder {
	f := &Forwarder{
		log:        log,
		bus:        bus,
		subscriber: bus.Subscribe(),
		channel:    ch,
		exchange:   exchange,
	}

	f.wg.Add(1)
	go f.run()

	return f
}

// RoutingKey maps a product event to its routing key. ok is false for events
// that are not forwarded.
func RoutingKey(event any) (key string, ok bool) {
	switch event.(type) {
	case ProductAdded:
		return "product.added", true
	case ProductUpdated:
		return "product.updated", true
	case ProductDeleted:
		return "product.deleted", true
	}
	return "", false
}

func (f *Forwarder) run() {
	defer f.wg.Done()
	for event := range f.subscriber {
		key, ok := RoutingKey(event)
		if !ok {
			continue
		}

		body, err := json.Marshal(event)
		if err != nil {
			f.log.Error("Error marshalling event", "routing_key", key, "error", err)
			continue
		}

		err = f.channel.Publish(f.exchange, key, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
		if err != nil {
			f.log.Error("Failed to publish event", "routing_key", key, "error", err)
			continue
		}
		f.log.Debug("Forwarded event", "routing_key", key)
	}
}

// Close stops forwarding and releases the broker connection
func (f *Forwarder) Close() error {
	var err error
	f.once.Do(func() {
		f.bus.Unsubscribe(f.subscriber)
		f.wg.Wait()
		if f.conn != nil {
			err = f.conn.Close()
		}
	})
	return err
}
