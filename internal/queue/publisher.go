package queue

import (
    "context"
    "encoding/json"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers booking events.  Implementations must not panic;
// errors are returned so callers can log and carry on.
type Publisher interface {
    PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error
}

// AMQPPublisher publishes to RabbitMQ.  Each call dials the broker, makes
// sure the queue exists and publishes one persistent message; confirms are
// rare enough that a pooled connection is not worth its reconnect logic.
type AMQPPublisher struct {
    url string
    log *slog.Logger
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, log *slog.Logger) *AMQPPublisher {
    if log == nil {
        log = slog.Default()
    }
    return &AMQPPublisher{url: url, log: log}
}

// PublishBookingConfirmed publishes event to the booking.confirmed queue.
func (p *AMQPPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("rabbitmq dial failed", "component", "queue", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq channel open failed", "component", "queue", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        BookingConfirmedQueue, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    ); err != nil {
        p.log.Warn("rabbitmq queue declare failed", "component", "queue", "error", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        MessageId:    event.BookingID,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                    // default exchange
        BookingConfirmedQueue, // routing key = queue name
        false,                 // mandatory
        false,                 // immediate
        pub,
    ); err != nil {
        p.log.Warn("rabbitmq publish failed", "component", "queue", "error", err)
        return err
    }
    return nil
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

// PublishBookingConfirmed does nothing.
func (NopPublisher) PublishBookingConfirmed(context.Context, BookingConfirmedEvent) error { return nil }
