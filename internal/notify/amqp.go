package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	queueName      = "rental.events"
	publishTimeout = 3 * time.Second
)

// envelope wraps every published payload with its event name and timestamp
// so consumers can route without inspecting the body.
type envelope struct {
	Event     string    `json:"event"`
	EmittedAt time.Time `json:"emitted_at"`
	Payload   any       `json:"payload"`
}

// AMQPNotifier publishes events as persistent JSON messages on a durable
// queue over a long-lived connection.
type AMQPNotifier struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

func NewAMQPNotifier(url string, log *zap.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPNotifier{
		conn: conn,
		ch:   ch,
		log:  log.With(zap.String("component", "notifier")),
	}, nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, event string, payload any) {
	body, err := json.Marshal(envelope{
		Event:     event,
		EmittedAt: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		n.log.Error("Failed to marshal event", zap.Error(err), zap.String("event", event))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = n.ch.PublishWithContext(pubCtx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		n.log.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("event", event),
		)
		return
	}

	n.log.Debug("Event published", zap.String("event", event))
}

func (n *AMQPNotifier) Close() {
	if n.ch != nil {
		n.ch.Close()
	}
	if n.conn != nil {
		n.conn.Close()
	}
}
