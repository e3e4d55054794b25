package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// Sender delivers one notification email. Implementations live in the
// service package; delivery errors are recorded on the audit trail and
// retried by the sweeper, never propagated to booking operations.
type Sender interface {
	Send(ctx context.Context, event BookingEvent) error
}

// Auditor records notification attempts on the append-only email_log trail.
// Satisfied by repository.EmailLogRepo.
type Auditor interface {
	Create(ctx context.Context, e *model.EmailLog) error
	MarkSent(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
}

// StartConsumer connects to RabbitMQ, declares the booking.events queue
// (durable) and consumes booking events. Each event gets an email_log entry
// before delivery is attempted, so every attempt is audited even when the
// send fails. The function runs a reconnect loop with exponential backoff
// and keeps running until the process exits; processing errors are logged
// and the offending message rejected without requeue to avoid tight loops.
func StartConsumer(audit Auditor, sender Sender) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(BrokerURL())
		if err != nil {
			log.Printf("notify-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, audit, sender); err != nil {
			log.Printf("notify-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, audit Auditor, sender Sender) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("notify-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(EventsQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(EventsQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, audit, sender); err != nil {
			log.Printf("notify-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handleMessage audits and attempts one delivery. A failed send is not an
// error at this level: the attempt is recorded FAILED and the sweeper will
// retry it, so the message is acked either way.
func handleMessage(body []byte, audit Auditor, sender Sender) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	entry := &model.EmailLog{
		BookingID: ev.BookingID,
		Type:      ev.Type,
		Recipient: ev.Recipient,
	}
	if err := audit.Create(ctx, entry); err != nil {
		return fmt.Errorf("audit create: %w", err)
	}
	if err := sender.Send(ctx, ev); err != nil {
		log.Printf("notify-consumer: send %s for booking %d failed: %v", ev.Type, ev.BookingID, err)
		if aerr := audit.MarkFailed(ctx, entry.ID, err.Error()); aerr != nil {
			return fmt.Errorf("audit mark failed: %w", aerr)
		}
		return nil
	}
	if err := audit.MarkSent(ctx, entry.ID); err != nil {
		return fmt.Errorf("audit mark sent: %w", err)
	}
	return nil
}
