package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue receives product change events when no queue is configured.
const DefaultQueue = "product_events"

// EventType names a product change.
type EventType string

const (
	ProductCreated     EventType = "product.created"
	ProductUpdated     EventType = "product.updated"
	ProductDeleted     EventType = "product.deleted"
	ProductRevalidated EventType = "product.revalidated"
)

// ProductEvent is the message published after a catalog change.
type ProductEvent struct {
	Type EventType `json:"type"`
	ID   string    `json:"id,omitempty"`
	Slug string    `json:"slug"`
	At   time.Time `json:"at"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn  *amqp.Connection
	queue string

	// amqp channels are not safe for concurrent publishing.
	mu      sync.Mutex
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the event queue.
func NewClient(cfg Config) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("queue", queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		queue:   queue,
		channel: ch,
	}, nil
}

func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return nil
}

// Queue returns the name of the event queue.
func (c *Client) Queue() string {
	return c.queue
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishProductEvent publishes event as persistent JSON to the event queue.
func (c *Client) PublishProductEvent(event ProductEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.At,
			Type:         string(event.Type),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("type", string(event.Type)).Str("slug", event.Slug).Msg("product event sent")
	return nil
}

// ConsumeProductEvents delivers decoded events to handler in a background
// goroutine until the channel closes. Messages the handler fails on are
// requeued; messages that do not decode are dropped.
func (c *Client) ConsumeProductEvents(handler func(ProductEvent) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	if err := declare(ch, c.queue); err != nil {
		return err
	}

	msgs, err := ch.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", c.queue).Msg("waiting for product events")

	go func() {
		for msg := range msgs {
			settle(msg.Body, msg.DeliveryTag, msg, handler)
		}
	}()
	return nil
}

// acknowledger is the part of amqp.Delivery the consumer loop needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(body []byte, tag uint64, ack acknowledger, handler func(ProductEvent) error) {
	var event ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error().Err(err).Uint64("tag", tag).Msg("dropping malformed product event")
		if nackErr := ack.Nack(false, false); nackErr != nil {
			log.Error().Err(nackErr).Uint64("tag", tag).Msg("error nacking message")
		}
		return
	}

	if err := handler(event); err != nil {
		log.Error().Err(err).Uint64("tag", tag).Msg("error processing product event")
		if nackErr := ack.Nack(false, true); nackErr != nil {
			log.Error().Err(nackErr).Uint64("tag", tag).Msg("error nacking message")
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Uint64("tag", tag).Msg("error acking message")
	}
}

// LogProductEvent is the default consumer: it records each event in the log.
func LogProductEvent(event ProductEvent) error {
	log.Info().
		Str("type", string(event.Type)).
		Str("id", event.ID).
		Str("slug", event.Slug).
		Time("at", event.At).
		Msg("product event received")
	return nil
}
