package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nithyasree/veritas/internal/engine"
	"github.com/nithyasree/veritas/internal/infra/redis"
	"github.com/nithyasree/veritas/internal/metrics"
	"github.com/nithyasree/veritas/internal/models"
	"github.com/nithyasree/veritas/internal/repository"
	"github.com/rs/zerolog/log"
)

// AnalysisService runs the engine, tracks run status in Redis and persists
// the finished report. Both the HTTP handler and the stream consumer go
// through here so the two entry points cannot drift.
type AnalysisService struct {
	analyzer    *engine.Analyzer
	reportsRepo *repository.ReportsRepository
	redisClient *redis.Client
	timeout     time.Duration
}

func NewAnalysisService(
	analyzer *engine.Analyzer,
	reportsRepo *repository.ReportsRepository,
	redisClient *redis.Client,
	timeout time.Duration,
) *AnalysisService {
	return &AnalysisService{
		analyzer:    analyzer,
		reportsRepo: reportsRepo,
		redisClient: redisClient,
		timeout:     timeout,
	}
}

// Run executes one analysis under the configured timeout and stores the
// report. reportID may be empty for a fresh run.
func (s *AnalysisService) Run(ctx context.Context, reportID string, req *models.AnalyzeRequest) (*models.Report, error) {
	if reportID == "" {
		reportID = uuid.New().String()
	}
	s.updateStatus(ctx, reportID, models.StepInitiated)

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	report, err := s.analyzer.Analyze(runCtx, reportID, req, func(step models.Step) {
		s.updateStatus(ctx, reportID, step)
	})
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("failed").Inc()
		s.updateStatus(ctx, reportID, models.StepFailed)
		return nil, err
	}

	metrics.AnalysesTotal.WithLabelValues("completed").Inc()
	metrics.PairsCompared.Add(float64(len(report.Pairs)))
	metrics.SuspiciousPairs.Add(float64(report.Summary.SuspiciousPairs))

	if err := s.reportsRepo.StoreReport(ctx, report, req.Files); err != nil {
		s.updateStatus(ctx, reportID, models.StepFailed)
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	s.updateStatus(ctx, reportID, models.StepCompleted)
	return report, nil
}

// Status returns the recorded pipeline phase of a run.
func (s *AnalysisService) Status(ctx context.Context, reportID string) (models.Step, error) {
	return engine.GetStatus(ctx, s.redisClient, reportID)
}

func (s *AnalysisService) updateStatus(ctx context.Context, reportID string, step models.Step) {
	if err := engine.UpdateStatus(ctx, s.redisClient, reportID, step); err != nil {
		log.Warn().Err(err).Str("reportId", reportID).Msg("Failed to update run status")
	}
}
