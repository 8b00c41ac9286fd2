package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nithyasree/veritas/internal/models"
	"github.com/nithyasree/veritas/internal/tokenizer"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultThreshold flags a pair as suspicious when its hybrid score reaches
// this value, unless the request overrides it.
const DefaultThreshold = 0.55

// InputError marks a client-correctable request problem. The whole request
// is rejected before any computation starts.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

// Params are the resolved tuning parameters of one run.
type Params struct {
	Threshold   float64
	KGramLength int
	WindowSize  int
}

// Analyzer runs the full similarity pipeline over an in-memory batch. It
// holds no cross-request state; every invocation is an independent, pure
// computation over the provided inputs.
type Analyzer struct {
	pool     *WorkerPool
	defaults Params
}

func NewAnalyzer(pool *WorkerPool, defaults Params) *Analyzer {
	if defaults.Threshold == 0 {
		defaults.Threshold = DefaultThreshold
	}
	if defaults.KGramLength == 0 {
		defaults.KGramLength = DefaultKGramLength
	}
	if defaults.WindowSize == 0 {
		defaults.WindowSize = DefaultWindowSize
	}
	return &Analyzer{pool: pool, defaults: defaults}
}

// fileState carries one file through the tokenize/filter/fingerprint stages.
type fileState struct {
	file   models.SourceFile
	tokens []tokenizer.Token
	fps    []Fingerprint
	err    error
}

// pairSlot is one arena entry, written once by its owning job. ready is set
// last so a truncated run only reads fully written results.
type pairSlot struct {
	result models.PairResult
	ready  atomic.Bool
}

// pairJob computes fragments and scores for a single pair of files. runCtx
// is the context of the run that queued the job, carrying its deadline;
// queued jobs observe it even though workers execute them under the pool's
// own context.
type pairJob struct {
	runCtx context.Context
	left   *fileState
	right  *fileState
	params Params
	slot   *pairSlot
	wg     *sync.WaitGroup
}

func (j *pairJob) Execute(poolCtx context.Context) error {
	defer j.wg.Done()

	if err := j.runCtx.Err(); err != nil {
		return err
	}
	if err := poolCtx.Err(); err != nil {
		return err
	}

	fragments := Match(j.left.tokens, j.right.tokens, j.left.fps, j.right.fps, j.params.KGramLength)

	// the semantic rerun inside Score is the second expensive pass; skip it
	// when the run deadline fired mid-tiling
	if err := j.runCtx.Err(); err != nil {
		return err
	}
	scores := Score(j.left.tokens, j.right.tokens, fragments, j.params.KGramLength, j.params.WindowSize)

	log.Debug().
		Str("left", j.left.file.ID).
		Str("right", j.right.file.ID).
		Float64("fpOverlap", SharedHashRatio(j.left.fps, j.right.fps)).
		Float64("hybrid", scores.Hybrid).
		Msg("Pair scored")

	if fragments == nil {
		fragments = []models.Fragment{}
	}
	j.slot.result = models.PairResult{
		ID:              j.left.file.ID + ":" + j.right.file.ID,
		LeftFile:        fileRef(j.left.file),
		RightFile:       fileRef(j.right.file),
		StructuralScore: scores.Structural,
		SemanticScore:   scores.Semantic,
		HybridScore:     scores.Hybrid,
		Overlap:         scores.Overlap,
		Longest:         scores.Longest,
		Fragments:       fragments,
	}
	j.slot.ready.Store(true)
	return nil
}

// Analyze validates the request, runs tokenization, template filtering and
// fingerprinting per file, matches every unordered pair on the worker pool
// and assembles the report. reportID may be empty, in which case a fresh one
// is generated. onStep, when non-nil, is invoked as the pipeline advances
// through its phases.
func (a *Analyzer) Analyze(ctx context.Context, reportID string, req *models.AnalyzeRequest, onStep func(models.Step)) (*models.Report, error) {
	params, lang, err := a.resolve(req)
	if err != nil {
		return nil, err
	}
	step := func(s models.Step) {
		if onStep != nil {
			onStep(s)
		}
	}

	warnings := make([]string, 0)

	// tokenize per file, in parallel; a per-file failure excludes that file
	// from pairing but never fails the run
	step(models.StepTokenizing)
	states := make([]*fileState, len(req.Files))
	for i := range req.Files {
		states[i] = &fileState{file: req.Files[i]}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(a.pool.Size())
	for _, st := range states {
		g.Go(func() error {
			st.tokens, st.err = tokenizer.Tokenize(st.file.Content, lang)
			return nil
		})
	}
	_ = g.Wait()

	var templateTokens []tokenizer.Token
	if req.TemplateFile != nil {
		templateTokens, err = tokenizer.Tokenize(req.TemplateFile.Content, lang)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("template %s ignored: %v", req.TemplateFile.Path, err))
			templateTokens = nil
		}
	}

	// filter and fingerprint the survivors
	step(models.StepFingerprinting)
	included := make([]*fileState, 0, len(states))
	for _, st := range states {
		if st.err != nil {
			warnings = append(warnings, fmt.Sprintf("file %s (%s) skipped: %v", st.file.Path, st.file.ID, st.err))
			log.Warn().Err(st.err).Str("file", st.file.ID).Msg("File excluded from pairing")
			continue
		}
		if templateTokens != nil {
			st.tokens = FilterTemplate(st.tokens, templateTokens, params.KGramLength)
		}
		st.fps, err = WinnowFingerprints(st.tokens, params.KGramLength, params.WindowSize)
		if err != nil {
			// parameters were validated up front; this is an invariant breach
			return nil, fmt.Errorf("fingerprinting %s: %w", st.file.ID, err)
		}
		included = append(included, st)
	}

	// match every unordered pair, results written into a pre-sized arena so
	// assembly reads them back in a fixed order regardless of scheduling
	step(models.StepMatching)
	numPairs := len(included) * (len(included) - 1) / 2
	slots := make([]pairSlot, numPairs)

	var wg sync.WaitGroup
	wg.Add(numPairs)
	idx := 0
	for i := 0; i < len(included); i++ {
		for j := i + 1; j < len(included); j++ {
			job := &pairJob{
				runCtx: ctx,
				left:   included[i],
				right:  included[j],
				params: params,
				slot:   &slots[idx],
				wg:     &wg,
			}
			idx++
			if err := a.pool.Submit(job); err != nil {
				wg.Done()
				log.Error().Err(err).Msg("Failed to submit pair job")
			}
		}
	}

	doneCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneCh)
	}()

	// stop waiting at the deadline; queued jobs abort themselves on the same
	// context and their slots simply stay unset
	select {
	case <-doneCh:
	case <-ctx.Done():
	}

	pairs := make([]models.PairResult, 0, numPairs)
	for i := range slots {
		if slots[i].ready.Load() {
			pairs = append(pairs, slots[i].result)
		}
	}
	if len(pairs) < numPairs {
		warnings = append(warnings, fmt.Sprintf("analysis timed out: %d of %d pairs compared, results truncated", len(pairs), numPairs))
		log.Warn().Int("compared", len(pairs)).Int("total", numPairs).Msg("Analysis truncated by deadline")
	}

	report := assemble(reportID, len(req.Files), numPairs, pairs, warnings, params, lang)
	log.Info().
		Str("reportId", report.ReportID).
		Int("files", report.Summary.TotalFiles).
		Int("pairs", len(report.Pairs)).
		Int("suspicious", report.Summary.SuspiciousPairs).
		Msg("Analysis completed")
	return report, nil
}

// resolve validates the request and fills in engine defaults.
func (a *Analyzer) resolve(req *models.AnalyzeRequest) (Params, tokenizer.Language, error) {
	if len(req.Files) < 2 {
		return Params{}, "", &InputError{Msg: "at least 2 files are required"}
	}

	lang, err := tokenizer.ParseLanguage(req.Language)
	if err != nil {
		return Params{}, "", &InputError{Msg: fmt.Sprintf("unsupported language %q", req.Language)}
	}

	params := a.defaults
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			return Params{}, "", &InputError{Msg: "threshold must be in [0, 1]"}
		}
		params.Threshold = *req.Threshold
	}
	if req.KGramLength != nil {
		if *req.KGramLength < 2 {
			return Params{}, "", &InputError{Msg: "kgramLength must be an integer >= 2"}
		}
		params.KGramLength = *req.KGramLength
	}

	seen := make(map[string]bool, len(req.Files))
	for i := range req.Files {
		if req.Files[i].ID == "" {
			req.Files[i].ID = fmt.Sprintf("file-%d", i+1)
		}
		if seen[req.Files[i].ID] {
			return Params{}, "", &InputError{Msg: fmt.Sprintf("duplicate file id %q", req.Files[i].ID)}
		}
		seen[req.Files[i].ID] = true
	}
	return params, lang, nil
}

// assemble is a pure, single-pass aggregation of pair results into a report.
func assemble(reportID string, totalFiles, totalPairs int, pairs []models.PairResult, warnings []string, params Params, lang tokenizer.Language) *models.Report {
	suspicious := 0
	sum := 0.0
	maxSim := 0.0
	for _, p := range pairs {
		if p.HybridScore >= params.Threshold {
			suspicious++
		}
		sum += p.HybridScore
		if p.HybridScore > maxSim {
			maxSim = p.HybridScore
		}
	}
	avg := 0.0
	if len(pairs) > 0 {
		avg = sum / float64(len(pairs))
	}

	if reportID == "" {
		reportID = uuid.New().String()
	}

	return &models.Report{
		ReportID:    reportID,
		Language:    string(lang),
		Threshold:   params.Threshold,
		KGramLength: params.KGramLength,
		Summary: models.Summary{
			TotalFiles:        totalFiles,
			TotalPairs:        totalPairs,
			SuspiciousPairs:   suspicious,
			AverageSimilarity: avg,
			MaxSimilarity:     maxSim,
		},
		Pairs:     pairs,
		Warnings:  warnings,
		CreatedAt: time.Now().UTC(),
	}
}

func fileRef(f models.SourceFile) models.FileRef {
	return models.FileRef{
		ID:          f.ID,
		Path:        f.Path,
		StudentID:   f.StudentID,
		StudentName: f.StudentName,
	}
}
