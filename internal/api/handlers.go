package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nithyasree/veritas/internal/config"
	"github.com/nithyasree/veritas/internal/engine"
	"github.com/nithyasree/veritas/internal/models"
	"github.com/nithyasree/veritas/internal/repository"
	"github.com/nithyasree/veritas/internal/service"
	"github.com/rs/zerolog/log"
)

// Handler holds dependencies for handlers
type Handler struct {
	cfg         *config.Config
	analysisSvc *service.AnalysisService
	reportsRepo *repository.ReportsRepository
	runSem      chan struct{} // Semaphore for bounded concurrency
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	analysisSvc *service.AnalysisService,
	reportsRepo *repository.ReportsRepository,
) *Handler {
	return &Handler{
		cfg:         cfg,
		analysisSvc: analysisSvc,
		reportsRepo: reportsRepo,
		runSem:      make(chan struct{}, cfg.MaxConcurrentRuns),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Analyze runs one similarity analysis synchronously and returns the
// summary-level response. Fragment detail is served by the lookup endpoints
// from the stored report, never recomputed.
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx := c.Request.Context()

	// Acquire semaphore (bounded concurrency)
	select {
	case h.runSem <- struct{}{}:
		defer func() { <-h.runSem }()
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, models.ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	report, err := h.analysisSvc.Run(ctx, "", &req)
	if err != nil {
		var inputErr *engine.InputError
		if errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: inputErr.Msg,
				Code:  "INVALID_REQUEST",
			})
			return
		}
		log.Error().Err(err).Msg("Analysis failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Analysis failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Success:  true,
		Message:  "analysis completed",
		ReportID: report.ReportID,
		Summary:  report.Summary,
		Pairs:    pairResponses(report.Pairs),
		Warnings: report.Warnings,
	})
}

func (h *Handler) GetReport(c *gin.Context) {
	reportID := c.Param("reportId")
	ctx := c.Request.Context()

	doc, err := h.reportsRepo.GetReportByID(ctx, reportID)
	if err != nil {
		log.Error().Err(err).Str("reportId", reportID).Msg("Failed to load report")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to load report",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Report not found",
			Code:  "REPORT_NOT_FOUND",
		})
		return
	}

	pairDocs, err := h.reportsRepo.GetPairsByReportID(ctx, reportID)
	if err != nil {
		log.Error().Err(err).Str("reportId", reportID).Msg("Failed to load report pairs")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to load report pairs",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	pairs := make([]models.PairResponse, 0, len(pairDocs))
	for _, pd := range pairDocs {
		pairs = append(pairs, pairResponse(pd.Pair))
	}

	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Success:  true,
		Message:  "report loaded",
		ReportID: doc.ReportID,
		Summary:  doc.Summary,
		Pairs:    pairs,
		Warnings: doc.Warnings,
	})
}

func (h *Handler) GetReportStatus(c *gin.Context) {
	reportID := c.Param("reportId")

	step, err := h.analysisSvc.Status(c.Request.Context(), reportID)
	if err != nil {
		log.Error().Err(err).Str("reportId", reportID).Msg("Failed to read run status")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to read status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		ReportID: reportID,
		Step:     step,
	})
}

// GetPairDetails serves fragment-level detail for one stored pair together
// with both files' raw content.
func (h *Handler) GetPairDetails(c *gin.Context) {
	reportID := c.Param("reportId")
	pairID := c.Param("pairId")
	ctx := c.Request.Context()

	pairDoc, err := h.reportsRepo.GetPair(ctx, reportID, pairID)
	if err != nil {
		log.Error().Err(err).Str("pairId", pairID).Msg("Failed to load pair")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to load pair",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if pairDoc == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Pair not found",
			Code:  "PAIR_NOT_FOUND",
		})
		return
	}

	leftFile, rightFile, err := h.loadPairFiles(c, pairDoc)
	if err != nil {
		return // response already written
	}

	fragments := make([]models.FragmentResponse, 0, len(pairDoc.Pair.Fragments))
	for _, f := range pairDoc.Pair.Fragments {
		fragments = append(fragments, models.FragmentResponse{
			LeftSelection:  f.LeftSelection,
			RightSelection: f.RightSelection,
			Length:         f.Length,
		})
	}

	c.JSON(http.StatusOK, models.PairDetailsResponse{
		Pair:      pairResponse(pairDoc.Pair),
		Fragments: fragments,
		LeftCode:  leftFile.Content,
		RightCode: rightFile.Content,
	})
}

// GetResultDetails serves the legacy flattened shape, derived from the same
// stored pair document as GetPairDetails.
func (h *Handler) GetResultDetails(c *gin.Context) {
	// wildcard params carry a leading slash
	resultID := strings.TrimPrefix(c.Param("resultId"), "/")
	ctx := c.Request.Context()

	pairDoc, err := h.reportsRepo.GetPairByResultID(ctx, resultID)
	if err != nil {
		log.Error().Err(err).Str("resultId", resultID).Msg("Failed to load result")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to load result",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if pairDoc == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Result not found",
			Code:  "RESULT_NOT_FOUND",
		})
		return
	}

	leftFile, rightFile, err := h.loadPairFiles(c, pairDoc)
	if err != nil {
		return
	}

	fragments := make([]models.FlatFragment, 0, len(pairDoc.Pair.Fragments))
	for _, f := range pairDoc.Pair.Fragments {
		fragments = append(fragments, models.FlatFragment{
			LeftStartRow:  f.LeftSelection.StartRow,
			LeftStartCol:  f.LeftSelection.StartCol,
			LeftEndRow:    f.LeftSelection.EndRow,
			LeftEndCol:    f.LeftSelection.EndCol,
			RightStartRow: f.RightSelection.StartRow,
			RightStartCol: f.RightSelection.StartCol,
			RightEndRow:   f.RightSelection.EndRow,
			RightEndCol:   f.RightSelection.EndCol,
			Length:        f.Length,
		})
	}

	c.JSON(http.StatusOK, models.ResultDetailsResponse{
		ResultID:        pairDoc.ResultID,
		StructuralScore: pairDoc.Pair.StructuralScore,
		SemanticScore:   pairDoc.Pair.SemanticScore,
		HybridScore:     pairDoc.Pair.HybridScore,
		Fragments:       fragments,
		LeftFile:        resultFileDetails(leftFile),
		RightFile:       resultFileDetails(rightFile),
	})
}

// loadPairFiles fetches both sides of a pair, writing the error response
// itself on failure.
func (h *Handler) loadPairFiles(c *gin.Context, pairDoc *models.PairDoc) (*models.FileDoc, *models.FileDoc, error) {
	ctx := c.Request.Context()

	left, err := h.reportsRepo.GetFile(ctx, pairDoc.ReportID, pairDoc.Pair.LeftFile.ID)
	if err == nil && left == nil {
		err = errors.New("left file missing from report store")
	}
	if err != nil {
		log.Error().Err(err).Str("resultId", pairDoc.ResultID).Msg("Failed to load pair files")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to load pair files",
			Code:  "INTERNAL_ERROR",
		})
		return nil, nil, err
	}

	right, err := h.reportsRepo.GetFile(ctx, pairDoc.ReportID, pairDoc.Pair.RightFile.ID)
	if err == nil && right == nil {
		err = errors.New("right file missing from report store")
	}
	if err != nil {
		log.Error().Err(err).Str("resultId", pairDoc.ResultID).Msg("Failed to load pair files")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to load pair files",
			Code:  "INTERNAL_ERROR",
		})
		return nil, nil, err
	}

	return left, right, nil
}

func pairResponse(p models.PairResult) models.PairResponse {
	return models.PairResponse{
		ID:              p.ID,
		LeftFile:        p.LeftFile,
		RightFile:       p.RightFile,
		StructuralScore: p.StructuralScore,
		SemanticScore:   p.SemanticScore,
		HybridScore:     p.HybridScore,
		Overlap:         p.Overlap,
		Longest:         p.Longest,
	}
}

func pairResponses(pairs []models.PairResult) []models.PairResponse {
	out := make([]models.PairResponse, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, pairResponse(p))
	}
	return out
}

func resultFileDetails(doc *models.FileDoc) models.ResultFileDetails {
	return models.ResultFileDetails{
		Filename:    doc.Path,
		Content:     doc.Content,
		LineCount:   doc.LineCount,
		StudentName: doc.StudentName,
	}
}
