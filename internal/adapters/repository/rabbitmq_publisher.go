package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// AlertTypeAbnormalBiometrics tags every finding alert on the queue
const AlertTypeAbnormalBiometrics = "abnormal_biometrics"

// AlertEvent is the message body published for a finding alert
type AlertEvent struct {
	AlertType string `json:"alert_type"`
	*domain.FindingAlert
}

// EncodeAlert marshals an alert into its queue representation
func EncodeAlert(alert *domain.FindingAlert) ([]byte, error) {
	body, err := json.Marshal(AlertEvent{AlertType: AlertTypeAbnormalBiometrics, FindingAlert: alert})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert event: %w", err)
	}
	return body, nil
}

// DecodeAlert parses a queue message back into an alert
func DecodeAlert(body []byte) (*domain.FindingAlert, error) {
	alert := &domain.FindingAlert{}
	event := AlertEvent{FindingAlert: alert}
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed alert event: %v", domain.ErrInvalidInput, err)
	}
	if alert.EntryID == uuid.Nil || alert.Severity == "" {
		return nil, fmt.Errorf("%w: alert event without entry_id or severity", domain.ErrInvalidInput)
	}
	return alert, nil
}

// RabbitMQPublisher implements AlertPublisher for publishing alerts to RabbitMQ
// Includes retry logic and circuit breaker for resilience
type RabbitMQPublisher struct {
	conn          *amqp091.Connection
	channel       *amqp091.Channel
	queueName     string
	cb            *gobreaker.CircuitBreaker
	maxRetries    int
	retryDelay    time.Duration
	connMutex     sync.RWMutex
	reconnectCh   chan bool
	stopReconnect chan bool
	logger        zerolog.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ publisher with circuit breaker
func NewRabbitMQPublisher(rabbitMQURL string, queueName string, logger zerolog.Logger) (*RabbitMQPublisher, error) {
	if queueName == "" {
		queueName = "pregnancy_alerts"
	}

	publisher := &RabbitMQPublisher{
		queueName:     queueName,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
		logger:        logger.With().Str("component", "alert_publisher").Str("queue", queueName).Logger(),
	}

	publisher.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rabbitmq",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	if err := publisher.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go publisher.handleReconnection(rabbitMQURL)

	return publisher, nil
}

// connect establishes connection to RabbitMQ and declares the queue
func (p *RabbitMQPublisher) connect(rabbitMQURL string) error {
	var conn *amqp091.Connection
	var err error
	for i := 0; i < p.maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		p.logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", p.maxRetries).Msg("failed to connect to RabbitMQ")
		if i < p.maxRetries-1 {
			time.Sleep(p.retryDelay)
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
	if _, err := ch.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	p.connMutex.Lock()
	p.conn = conn
	p.channel = ch
	p.connMutex.Unlock()

	p.logger.Info().Msg("connected to RabbitMQ")
	return nil
}

// handleReconnection handles automatic reconnection to RabbitMQ
func (p *RabbitMQPublisher) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-p.reconnectCh:
			p.logger.Info().Msg("attempting to reconnect to RabbitMQ")
			p.connMutex.Lock()
			if p.channel != nil {
				p.channel.Close()
			}
			if p.conn != nil {
				p.conn.Close()
			}
			p.connMutex.Unlock()

			if err := p.connect(rabbitMQURL); err != nil {
				p.logger.Error().Err(err).Msg("reconnection failed")
			}
		case <-p.stopReconnect:
			return
		}
	}
}

// PublishFindingAlert publishes an alert event to RabbitMQ
func (p *RabbitMQPublisher) PublishFindingAlert(ctx context.Context, alert *domain.FindingAlert) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.publishWithRetry(ctx, alert)
	})
	return err
}

func (p *RabbitMQPublisher) publishWithRetry(ctx context.Context, alert *domain.FindingAlert) error {
	startTime := time.Now()

	p.logger.Info().
		Str("event", "alert_publish_attempt").
		Str("profile_id", alert.ProfileID.String()).
		Str("entry_id", alert.EntryID.String()).
		Int("week", alert.Week).
		Int("findings", len(alert.Findings)).
		Str("severity", string(alert.Severity)).
		Msg("publishing finding alert")

	body, err := EncodeAlert(alert)
	if err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		p.connMutex.RLock()
		ch := p.channel
		conn := p.conn
		p.connMutex.RUnlock()

		if ch == nil || conn == nil || conn.IsClosed() {
			p.triggerReconnect()
			time.Sleep(p.retryDelay)
			continue
		}

		err = ch.PublishWithContext(
			ctx,
			"",          // exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp091.Persistent,
				Timestamp:    time.Now(),
			},
		)
		if err == nil {
			if latency := time.Since(startTime); latency > 15*time.Second {
				p.logger.Warn().Dur("latency", latency).Msg("alert publishing latency exceeded 15s")
			}
			return nil
		}

		lastErr = err
		p.logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", p.maxRetries).Msg("failed to publish alert")

		if i < p.maxRetries-1 {
			p.triggerReconnect()
			time.Sleep(p.retryDelay)
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no open RabbitMQ channel")
	}
	return fmt.Errorf("failed to publish alert after %d retries: %w", p.maxRetries, lastErr)
}

func (p *RabbitMQPublisher) triggerReconnect() {
	select {
	case p.reconnectCh <- true:
	default:
	}
}

// Close closes the RabbitMQ connection
func (p *RabbitMQPublisher) Close() error {
	close(p.stopReconnect)
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Ensure RabbitMQPublisher implements the interface
var _ ports.AlertPublisher = (*RabbitMQPublisher)(nil)
