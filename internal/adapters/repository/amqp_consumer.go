package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// deliveryOutcome tells the consumer loop how to settle a message
type deliveryOutcome int

const (
	outcomeAck     deliveryOutcome = iota // processed, remove from queue
	outcomeReject                         // invalid, drop without requeue
	outcomeRequeue                        // transient failure, redeliver
)

func (o deliveryOutcome) String() string {
	switch o {
	case outcomeAck:
		return "ack"
	case outcomeReject:
		return "reject"
	default:
		return "requeue"
	}
}

// deliveryHandler processes one message body
type deliveryHandler func(ctx context.Context, body []byte) deliveryOutcome

// amqpConsumer owns a connection, a durable queue and a manual-ack
// consume loop with QoS 1. It reconnects and resumes consuming when the
// channel closes.
type amqpConsumer struct {
	name           string
	queueName      string
	handle         deliveryHandler
	conn           *amqp091.Connection
	channel        *amqp091.Channel
	connMutex      sync.RWMutex
	reconnectCh    chan bool
	stopReconnect  chan bool
	maxRetries     int
	retryDelay     time.Duration
	consumingCtx   context.Context
	consumingMutex sync.Mutex
	isConsuming    bool
	logger         zerolog.Logger
}

func newAMQPConsumer(rabbitMQURL, name, queueName string, handle deliveryHandler, logger zerolog.Logger) (*amqpConsumer, error) {
	c := &amqpConsumer{
		name:          name,
		queueName:     queueName,
		handle:        handle,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
		logger:        logger.With().Str("component", name).Str("queue", queueName).Logger(),
	}

	if err := c.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go c.handleReconnection(rabbitMQURL)

	return c, nil
}

func (c *amqpConsumer) connect(rabbitMQURL string) error {
	var conn *amqp091.Connection
	var err error
	for i := 0; i < c.maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		c.logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", c.maxRetries).Msg("failed to connect to RabbitMQ")
		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay)
		}
	}
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	// Declare queue (idempotent)
	if _, err := ch.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	c.connMutex.Lock()
	c.conn = conn
	c.channel = ch
	c.connMutex.Unlock()

	c.logger.Info().Msg("consumer connected to RabbitMQ")
	return nil
}

func (c *amqpConsumer) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-c.reconnectCh:
			c.logger.Info().Msg("attempting to reconnect to RabbitMQ")
			c.connMutex.Lock()
			if c.channel != nil && !c.channel.IsClosed() {
				c.channel.Close()
			}
			if c.conn != nil && !c.conn.IsClosed() {
				c.conn.Close()
			}
			c.connMutex.Unlock()

			if err := c.connect(rabbitMQURL); err != nil {
				c.logger.Error().Err(err).Msg("reconnection failed")
				time.Sleep(5 * time.Second)
				c.triggerReconnect()
				continue
			}

			// Restart consuming after reconnection using the original context
			c.consumingMutex.Lock()
			ctx := c.consumingCtx
			running := c.isConsuming
			c.consumingMutex.Unlock()
			if ctx != nil && ctx.Err() == nil && !running {
				if err := c.StartConsuming(ctx); err != nil {
					c.logger.Error().Err(err).Msg("failed to restart consuming")
				}
			}
		case <-c.stopReconnect:
			return
		}
	}
}

func (c *amqpConsumer) triggerReconnect() {
	select {
	case c.reconnectCh <- true:
	default:
	}
}

// StartConsuming starts consuming messages in a background goroutine
// Only one consume loop runs per instance
func (c *amqpConsumer) StartConsuming(ctx context.Context) error {
	c.consumingMutex.Lock()
	if c.isConsuming {
		c.consumingMutex.Unlock()
		c.logger.Info().Msg("consumer already running, skipping duplicate start")
		return nil
	}
	c.isConsuming = true
	c.consumingCtx = ctx
	c.consumingMutex.Unlock()

	stopped := func() {
		c.consumingMutex.Lock()
		c.isConsuming = false
		c.consumingMutex.Unlock()
	}

	c.connMutex.RLock()
	channel := c.channel
	conn := c.conn
	c.connMutex.RUnlock()

	if channel == nil || channel.IsClosed() || conn == nil || conn.IsClosed() {
		stopped()
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	// One unacknowledged message at a time
	if err := channel.Qos(1, 0, false); err != nil {
		stopped()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	consumerTag := fmt.Sprintf("%s-%d", c.name, time.Now().UnixNano())
	msgs, err := channel.Consume(
		c.queueName, // queue
		consumerTag, // consumer tag
		false,       // auto-ack off, settled after processing
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		stopped()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info().Str("consumer_tag", consumerTag).Msg("consumer started, waiting for messages")

	go func() {
		defer stopped()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info().Msg("consumer context cancelled")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn().Msg("consumer channel closed, attempting reconnection")
					// the restart after reconnecting needs isConsuming cleared first
					stopped()
					c.triggerReconnect()
					return
				}
				c.settle(msg, c.handle(ctx, msg.Body))
			}
		}
	}()

	return nil
}

func (c *amqpConsumer) settle(msg amqp091.Delivery, outcome deliveryOutcome) {
	var err error
	switch outcome {
	case outcomeAck:
		err = msg.Ack(false)
	case outcomeReject:
		err = msg.Nack(false, false)
	default:
		err = msg.Nack(false, true)
	}
	if err != nil {
		// an unsettled message is redelivered, which the handlers tolerate
		c.logger.Error().Err(err).Str("outcome", outcome.String()).Msg("failed to settle message")
	}
}

// Close stops reconnection and closes the connection
// The consuming context is cancelled by the caller during shutdown
func (c *amqpConsumer) Close() error {
	close(c.stopReconnect)

	c.consumingMutex.Lock()
	c.isConsuming = false
	c.consumingMutex.Unlock()

	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("error closing RabbitMQ channel")
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("error closing RabbitMQ connection")
		}
	}

	c.logger.Info().Msg("consumer closed")
	return nil
}
