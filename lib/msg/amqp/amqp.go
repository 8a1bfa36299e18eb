// Package amqp implements the message broker interface for AMQP compliant brokers (ie RabbitMQ)
package amqp

import (
	"encoding/json"
	"sync"

	"github.com/streadway/amqp"

	"github.com/jelilat/hellonear/lib/log"
	"github.com/jelilat/hellonear/lib/msg"
	"github.com/jelilat/hellonear/lib/msg/types"
)

// Amqp implements a connection to a broker and a channel for reuse.
type Amqp struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// New instantiates a new amqp broker.
func New(uri string) (*Amqp, error) {
	r := &Amqp{}

	var err error
	if r.conn, err = amqp.Dial(uri); err != nil {
		return r, err
	}

	l := log.Broker()
	l.Info().Str("uri", uri).Msg("Connected to message broker")

	return r, nil
}

// Setup obtains an amqp channel and declares the "ge" ("greeting events") topic exchange the service publishes to.
func (r *Amqp) Setup() error {
	// obtain a one-use channel
	channel, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	return channel.ExchangeDeclare(msg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil)
}

// Close terminates gracefully the connection to the AMQP message broker
func (r *Amqp) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := log.Broker()

	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			l.Warn().Err(err).Msg("Error closing amqp.Channel")
		}

		r.ch = nil
	}

	return r.conn.Close()
}

// channel returns the shared channel, opening it if not present.
func (r *Amqp) channel() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch == nil {
		var err error
		if r.ch, err = r.conn.Channel(); err != nil {
			return nil, err
		}
	}

	return r.ch, nil
}

// RoutingKey returns the routing key of an event: <net>.<method>.<account>.
func RoutingKey(net string, e types.NameEvent) string {
	return net + "." + e.Method + "." + e.Account
}

// SendEvent publishes a greeting event to the "ge" exchange.
func (r *Amqp) SendEvent(net string, e types.NameEvent) error {
	jsonDoc, err := json.Marshal(e)
	if err != nil {
		return err
	}

	ch, err := r.channel()
	if err != nil {
		return err
	}

	m := amqp.Publishing{
		Headers:     amqp.Table{"x-event-name": net + "." + e.Account},
		Body:        jsonDoc,
		ContentType: "application/json",
	}

	if err = ch.Publish(msg.Exchange, RoutingKey(net, e), false, false, m); err != nil {
		l := log.Broker()
		l.Error().Err(err).Str("net", net).Msg("Error sending event to message broker")
	}

	return err
}

// GetEvents consumes events from the "ge" exchange for the network pushing them to the returned channel. The Mutex
// pointer is provided to ensure the consumed message has been fully dealt with by the management function, so the
// message consumed is only acknowledged when the mutex is unlocked. The caller must hold the lock before calling.
func (r *Amqp) GetEvents(net string, mut *sync.Mutex) (<-chan types.NameEvent, <-chan error, error) {
	ch, err := r.channel()
	if err != nil {
		return nil, nil, err
	}

	queue := msg.Exchange + net
	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, nil, err
	}

	if err = ch.QueueBind(queue, net+".#", msg.Exchange, false, nil); err != nil {
		return nil, nil, err
	}

	msgs, err := ch.Consume(queue, "greeter-"+net, false, false, false, false, nil)
	if err != nil {
		return nil, nil, err
	}

	eves := make(chan types.NameEvent)
	errs := make(chan error)

	go func() {
		defer close(eves)
		defer close(errs)

		for m := range msgs {
			var e types.NameEvent
			if err := json.Unmarshal(m.Body, &e); err != nil {
				errs <- err
				_ = m.Nack(false, false)

				continue
			}

			eves <- e
			mut.Lock() // wait for the consumer to finish processing the event
			_ = m.Ack(false)
		}
	}()

	return eves, errs, nil
}
