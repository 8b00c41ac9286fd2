package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nithyasree/veritas/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	readBatchSize  = 10
	readBlock      = time.Second
	claimMinIdle   = time.Minute
	claimBatchSize = 100
	pelInterval    = 30 * time.Second
	trimInterval   = time.Hour
)

// Consumer pulls analyze jobs off the Redis stream and runs them through the
// analysis service. Crashed consumers leave their entries in the group's PEL;
// any consumer claims and reprocesses entries idle past claimMinIdle, so a
// job is eventually handled as long as one consumer is alive.
type Consumer struct {
	client       *redis.Client
	streamKey    string
	group        string
	name         string
	analysisSvc  *service.AnalysisService
	retryHandler *RetryHandler
	retention    time.Duration
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	group string,
	name string,
	analysisSvc *service.AnalysisService,
	retryHandler *RetryHandler,
	retention time.Duration,
) *Consumer {
	return &Consumer{
		client:       client,
		streamKey:    streamKey,
		group:        group,
		name:         name,
		analysisSvc:  analysisSvc,
		retryHandler: retryHandler,
		retention:    retention,
	}
}

// Start blocks consuming jobs until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	if n := c.claimStale(ctx); n > 0 {
		log.Info().Int("claimed", n).Msg("Recovered pending jobs on startup")
	}

	pelTicker := time.NewTicker(pelInterval)
	defer pelTicker.Stop()
	trimTicker := time.NewTicker(trimInterval)
	defer trimTicker.Stop()

	log.Info().
		Str("stream", c.streamKey).
		Str("group", c.group).
		Str("consumer", c.name).
		Msg("Stream consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pelTicker.C:
			c.claimStale(ctx)
		case <-trimTicker.C:
			c.trimOld(ctx)
		default:
			if err := c.readBatch(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("Failed to read from jobs stream")
				time.Sleep(time.Second)
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	// MKSTREAM creates the stream when it does not exist yet; "$" means the
	// group only sees entries added after its creation.
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// claimStale takes over entries another consumer read but never acknowledged.
// Returns the number of entries claimed and processed.
func (c *Consumer) claimStale(ctx context.Context) int {
	claimed, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.streamKey,
		Group:    c.group,
		Consumer: c.name,
		MinIdle:  claimMinIdle,
		Start:    "0-0",
		Count:    claimBatchSize,
	}).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("Failed to claim pending jobs")
		}
		return 0
	}

	for i := range claimed {
		if err := c.handle(ctx, &claimed[i]); err != nil {
			log.Error().Err(err).Str("message_id", claimed[i].ID).Msg("Failed to process claimed job")
		}
	}
	return len(claimed)
}

func (c *Consumer) readBatch(ctx context.Context) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.streamKey, ">"},
		Count:    readBatchSize,
		Block:    readBlock,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, s := range streams {
		if s.Stream != c.streamKey {
			continue
		}
		for i := range s.Messages {
			if err := c.handle(ctx, &s.Messages[i]); err != nil {
				log.Error().Err(err).Str("message_id", s.Messages[i].ID).Msg("Failed to process job")
			}
		}
	}
	return nil
}

// handle decodes and runs one job. Undecodable entries are acknowledged
// immediately; a malformed payload never improves on redelivery.
func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) error {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		if s, ok := val.(string); ok {
			fields[key] = s
		}
	}

	job, err := ParseAnalyzeJob(&StreamMessage{ID: msg.ID, Fields: fields})
	if err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Discarding undecodable job")
		c.ack(ctx, msg.ID)
		return err
	}

	fieldsMap := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		fieldsMap[k] = v
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		_, runErr := c.analysisSvc.Run(ctx, job.RequestID, job.Request)
		return runErr
	}, msg.ID, fieldsMap)
	if err != nil {
		// retry handler already dead lettered and acknowledged the entry
		return err
	}

	return c.ack(ctx, msg.ID)
}

// trimOld drops stream entries older than the retention window.
func (c *Consumer) trimOld(ctx context.Context) {
	cutoff := time.Now().Add(-c.retention)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		log.Error().Err(err).Msg("Failed to trim jobs stream")
		return
	}
	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Dur("retention", c.retention).
			Msg("Trimmed old entries from jobs stream")
	}
}

func (c *Consumer) ack(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.streamKey, c.group, messageID).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge job")
		return err
	}
	return nil
}
