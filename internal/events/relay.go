package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const relayQueue = "bizcore.events"

// AMQPRelay mirrors bus events onto a durable queue so external consumers
// (mail worker, webhooks) can react without touching the primary database.
// Publish errors are reported to the caller, which logs and moves on; event
// delivery must never interrupt the request flow.
type AMQPRelay struct {
	url string
	lg  *zap.SugaredLogger
}

func NewAMQPRelay(url string, lg *zap.SugaredLogger) *AMQPRelay {
	return &AMQPRelay{url: url, lg: lg}
}

func (r *AMQPRelay) Publish(ctx context.Context, ev Event) error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(relayQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", relayQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
