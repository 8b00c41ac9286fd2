package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/nithyasree/veritas/internal/infra/redis"
	"github.com/nithyasree/veritas/internal/models"
	"github.com/rs/zerolog/log"
)

const statusTTL = 12 * time.Hour

func statusKey(reportID string) string {
	return "similarity_report_status:" + reportID
}

// UpdateStatus records the current pipeline phase of a run in Redis so
// callers can poll progress while an analysis is in flight.
func UpdateStatus(ctx context.Context, redisClient *redis.Client, reportID string, step models.Step) error {
	validSteps := map[models.Step]bool{
		models.StepIdle:           true,
		models.StepInitiated:      true,
		models.StepTokenizing:     true,
		models.StepFingerprinting: true,
		models.StepMatching:       true,
		models.StepCompleted:      true,
		models.StepFailed:         true,
	}
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKey(reportID)
	if err := redisClient.Set(ctx, rkey, string(step), statusTTL).Err(); err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("reportId", reportID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("reportId", reportID).
		Str("step", string(step)).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns the recorded phase, or StepIdle when no key exists.
func GetStatus(ctx context.Context, redisClient *redis.Client, reportID string) (models.Step, error) {
	val, err := redisClient.Get(ctx, statusKey(reportID)).Result()
	if err == redis.Nil {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
