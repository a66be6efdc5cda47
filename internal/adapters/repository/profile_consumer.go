package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfileCreationRequest is the message the identity service sends when a
// user starts tracking a pregnancy
// { "user_id": "uuid", "last_menstrual_period": "yyyy/MM/dd", "pre_weight": 62.5, "pre_height": 168 }
type ProfileCreationRequest struct {
	UserID              string   `json:"user_id"`
	LastMenstrualPeriod string   `json:"last_menstrual_period"`
	PreWeightKg         float64  `json:"pre_weight"`
	PreHeightCm         *float64 `json:"pre_height,omitempty"`
}

// ProfileConsumer consumes profile creation requests from RabbitMQ
// Runs in background as a goroutine within the API process
type ProfileConsumer struct {
	*amqpConsumer
	profileService ports.ProfileService
	logger         zerolog.Logger
}

// NewProfileConsumer creates a new RabbitMQ consumer for profile creation
func NewProfileConsumer(rabbitMQURL string, queueName string, profileService ports.ProfileService, logger zerolog.Logger) (*ProfileConsumer, error) {
	if queueName == "" {
		queueName = "pregnancy.profile.requests"
	}

	pc := &ProfileConsumer{
		profileService: profileService,
		logger:         logger.With().Str("component", "profile_consumer").Logger(),
	}
	base, err := newAMQPConsumer(rabbitMQURL, "profile-consumer", queueName, pc.handleMessage, logger)
	if err != nil {
		return nil, err
	}
	pc.amqpConsumer = base
	return pc, nil
}

// handleMessage creates a profile from one message
// Invalid messages are dropped; storage failures are requeued for retry
func (c *ProfileConsumer) handleMessage(ctx context.Context, body []byte) deliveryOutcome {
	var req ProfileCreationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.logger.Warn().Err(err).Msg("failed to unmarshal profile creation request")
		return outcomeReject
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil || userID == uuid.Nil {
		c.logger.Warn().Str("user_id", req.UserID).Msg("invalid profile creation request: user_id is not a valid UUID")
		return outcomeReject
	}

	c.logger.Info().
		Str("user_id", req.UserID).
		Str("lmp", req.LastMenstrualPeriod).
		Msg("received profile creation request")

	// The request acts on behalf of the user it names
	profile, err := c.profileService.CreateProfile(ctx, ports.CreateProfileRequest{
		LastMenstrualPeriod: req.LastMenstrualPeriod,
		PreWeightKg:         req.PreWeightKg,
		PreHeightCm:         req.PreHeightCm,
	}, userID, false)

	switch {
	case err == nil:
		c.logger.Info().
			Str("profile_id", profile.ID.String()).
			Str("user_id", userID.String()).
			Msg("created profile from RabbitMQ")
		return outcomeAck
	case errors.Is(err, domain.ErrDuplicateProfile):
		// Redelivery of a request that already succeeded
		c.logger.Info().Str("user_id", userID.String()).Msg("profile already exists, acknowledging")
		return outcomeAck
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrForbidden):
		c.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("invalid profile creation request")
		return outcomeReject
	default:
		c.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to create profile, requeueing")
		return outcomeRequeue
	}
}
