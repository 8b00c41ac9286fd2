package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nithyasree/veritas/internal/engine"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RetryHandler retries failed job processing with exponential backoff and
// moves exhausted messages to the dead letter stream.
type RetryHandler struct {
	client        *redis.Client
	streamKey     string
	consumerGroup string
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
}

func NewRetryHandler(
	client *redis.Client,
	streamKey string,
	consumerGroup string,
	deadLetterKey string,
) *RetryHandler {
	return &RetryHandler{
		client:        client,
		streamKey:     streamKey,
		consumerGroup: consumerGroup,
		deadLetterKey: deadLetterKey,
		maxRetries:    3,
		baseDelay:     2 * time.Second,
	}
}

// RetryWithBackoff runs fn up to maxRetries times. Input errors are never
// retried, the publisher's payload will not get better on a second attempt.
// When all attempts fail the message is moved to the dead letter stream and
// acknowledged on the source stream.
func (r *RetryHandler) RetryWithBackoff(
	ctx context.Context,
	fn func() error,
	messageID string,
	fields map[string]interface{},
) error {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.baseDelay * time.Duration(1<<(attempt-1))
			log.Warn().
				Str("message_id", messageID).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Retrying message after backoff")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var inputErr *engine.InputError
		if errors.As(lastErr, &inputErr) {
			log.Error().
				Err(lastErr).
				Str("message_id", messageID).
				Msg("Message rejected as invalid, not retrying")
			break
		}

		log.Error().
			Err(lastErr).
			Str("message_id", messageID).
			Int("attempt", attempt+1).
			Msg("Message processing failed")
	}

	if err := r.moveToDeadLetter(ctx, messageID, fields, lastErr); err != nil {
		log.Error().
			Err(err).
			Str("message_id", messageID).
			Msg("Failed to move message to dead letter stream")
	}

	return lastErr
}

// moveToDeadLetter appends the failed message to the dead letter stream and
// acknowledges the original so it leaves the PEL.
func (r *RetryHandler) moveToDeadLetter(
	ctx context.Context,
	messageID string,
	fields map[string]interface{},
	cause error,
) error {
	dlqFields := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		dlqFields[k] = v
	}
	dlqFields["original_id"] = messageID
	dlqFields["failed_at"] = time.Now().UTC().Format(time.RFC3339)
	if cause != nil {
		dlqFields["error"] = cause.Error()
	}

	if err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.deadLetterKey,
		Values: dlqFields,
	}).Err(); err != nil {
		return fmt.Errorf("failed to append to dead letter stream: %w", err)
	}

	if err := r.client.XAck(ctx, r.streamKey, r.consumerGroup, messageID).Err(); err != nil {
		return fmt.Errorf("failed to acknowledge dead lettered message: %w", err)
	}

	log.Warn().
		Str("message_id", messageID).
		Str("dead_letter", r.deadLetterKey).
		Msg("Message moved to dead letter stream")

	return nil
}
