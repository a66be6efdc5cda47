package repository

import (
	"context"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/rs/zerolog"
)

// ConsumeObserver records the status and duration of each consumed alert
type ConsumeObserver func(status string, elapsed time.Duration)

// AlertConsumer reads finding alerts from RabbitMQ and hands them to the
// clinician broadcaster
type AlertConsumer struct {
	*amqpConsumer
	broadcaster ports.AlertBroadcaster
	observe     ConsumeObserver
	logger      zerolog.Logger
}

// NewAlertConsumer creates a consumer on the alerts queue; observe may be nil
func NewAlertConsumer(rabbitMQURL string, queueName string, broadcaster ports.AlertBroadcaster, observe ConsumeObserver, logger zerolog.Logger) (*AlertConsumer, error) {
	if queueName == "" {
		queueName = "pregnancy_alerts"
	}

	ac := &AlertConsumer{
		broadcaster: broadcaster,
		observe:     observe,
		logger:      logger.With().Str("component", "alert_consumer").Logger(),
	}
	base, err := newAMQPConsumer(rabbitMQURL, "alert-consumer", queueName, ac.handleMessage, logger)
	if err != nil {
		return nil, err
	}
	ac.amqpConsumer = base
	return ac, nil
}

func (c *AlertConsumer) handleMessage(_ context.Context, body []byte) deliveryOutcome {
	start := time.Now()

	alert, err := DecodeAlert(body)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed alert")
		c.record("invalid", start)
		return outcomeReject
	}

	c.broadcaster.BroadcastAlert(alert)

	c.logger.Info().
		Str("entry_id", alert.EntryID.String()).
		Str("profile_id", alert.ProfileID.String()).
		Str("severity", string(alert.Severity)).
		Int("week", alert.Week).
		Msg("alert broadcast")
	c.record("success", start)
	return outcomeAck
}

func (c *AlertConsumer) record(status string, start time.Time) {
	if c.observe != nil {
		c.observe(status, time.Since(start))
	}
}
