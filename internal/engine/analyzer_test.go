package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nithyasree/veritas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fibC = `
int fib(int n) {
	if (n < 2) return n;
	return fib(n - 1) + fib(n - 2);
}
`

const sumC = `
double mean(double *xs, int n) {
	double total = 0.0;
	for (int i = 0; i < n; i++) total += xs[i];
	return total / n;
}
`

const gcdC = `
int gcd(int a, int b) {
	while (b != 0) { int t = b; b = a % b; a = t; }
	return a;
}
`

const linkedListC = `
struct node {
	int value;
	struct node *next;
};

struct node *push_front(struct node *head, int value) {
	struct node *fresh = node_alloc();
	fresh->value = value;
	fresh->next = head;
	return fresh;
}

size_t list_length(struct node *head) {
	size_t count = 0;
	while (head != NULL) {
		count = count + 1;
		head = head->next;
	}
	return count;
}

struct node *list_find(struct node *head, int wanted) {
	while (head != NULL) {
		if (head->value == wanted) {
			return head;
		}
		head = head->next;
	}
	return NULL;
}

struct node *list_reverse(struct node *head) {
	struct node *prev = NULL;
	while (head != NULL) {
		struct node *follow = head->next;
		head->next = prev;
		prev = head;
		head = follow;
	}
	return prev;
}
`

const vectorMathC = `
float dot_product(int n, const float *a, const float *b) {
	float acc = 0.0f;
	for (int i = 0; i < n; i++) {
		acc += a[i] * b[i];
	}
	return acc;
}

void vector_scale(int n, float *v, float factor) {
	for (int i = 0; i < n; i++) {
		v[i] = v[i] * factor;
	}
}

void vector_add(int n, float *out, const float *a, const float *b) {
	for (int i = 0; i < n; i++) {
		out[i] = a[i] + b[i];
	}
}

float vector_max(int n, const float *v) {
	float best = v[0];
	for (int i = 1; i < n; i++) {
		if (v[i] > best) {
			best = v[i];
		}
	}
	return best;
}
`

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	pool := NewWorkerPool(context.Background(), 2)
	t.Cleanup(pool.Close)
	return NewAnalyzer(pool, Params{})
}

func analyzeFiles(t *testing.T, a *Analyzer, req *models.AnalyzeRequest) *models.Report {
	t.Helper()
	report, err := a.Analyze(context.Background(), "", req, nil)
	require.NoError(t, err)
	return report
}

func cFiles(contents ...string) []models.SourceFile {
	files := make([]models.SourceFile, len(contents))
	for i, c := range contents {
		files[i] = models.SourceFile{Path: fmt.Sprintf("sub%d.c", i+1), Content: c}
	}
	return files
}

func TestAnalyze_ValidationErrors(t *testing.T) {
	a := newTestAnalyzer(t)
	badThreshold := 1.5
	badK := 1

	cases := []struct {
		name string
		req  models.AnalyzeRequest
	}{
		{"too few files", models.AnalyzeRequest{
			Files: cFiles(fibC), Language: "c",
		}},
		{"unsupported language", models.AnalyzeRequest{
			Files: cFiles(fibC, sumC), Language: "go",
		}},
		{"threshold out of range", models.AnalyzeRequest{
			Files: cFiles(fibC, sumC), Language: "c", Threshold: &badThreshold,
		}},
		{"kgram too small", models.AnalyzeRequest{
			Files: cFiles(fibC, sumC), Language: "c", KGramLength: &badK,
		}},
		{"duplicate file ids", models.AnalyzeRequest{
			Files: []models.SourceFile{
				{ID: "dup", Content: fibC},
				{ID: "dup", Content: sumC},
			},
			Language: "c",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Analyze(context.Background(), "", &tc.req, nil)
			var inputErr *InputError
			assert.ErrorAs(t, err, &inputErr)
		})
	}
}

func TestAnalyze_IdenticalPairFlagged(t *testing.T) {
	a := newTestAnalyzer(t)
	report := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files:    cFiles(fibC, fibC),
		Language: "c",
	})

	require.Len(t, report.Pairs, 1)
	p := report.Pairs[0]
	assert.Equal(t, "file-1:file-2", p.ID)
	assert.Equal(t, 1.0, p.StructuralScore)
	assert.Equal(t, 1.0, p.HybridScore)
	require.NotEmpty(t, p.Fragments)

	assert.Equal(t, 2, report.Summary.TotalFiles)
	assert.Equal(t, 1, report.Summary.TotalPairs)
	assert.Equal(t, 1, report.Summary.SuspiciousPairs)
	assert.Equal(t, 1.0, report.Summary.MaxSimilarity)
	assert.NotEmpty(t, report.ReportID)
	assert.Empty(t, report.Warnings)
}

func TestAnalyze_AllPairsCompared(t *testing.T) {
	a := newTestAnalyzer(t)
	report := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files:    cFiles(fibC, sumC, gcdC, fibC),
		Language: "c",
	})

	assert.Equal(t, 6, report.Summary.TotalPairs)
	assert.Len(t, report.Pairs, 6)

	// pair ids follow file order deterministically
	assert.Equal(t, "file-1:file-2", report.Pairs[0].ID)
	assert.Equal(t, "file-3:file-4", report.Pairs[5].ID)
}

func TestAnalyze_BadFileSkippedWithWarning(t *testing.T) {
	a := newTestAnalyzer(t)
	broken := `int x = "never closed;`
	report := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files:    cFiles(fibC, sumC, broken, gcdC, fibC),
		Language: "c",
	})

	// 4 usable files -> 6 pairs; the broken file is reported, not fatal
	assert.Equal(t, 5, report.Summary.TotalFiles)
	assert.Equal(t, 6, report.Summary.TotalPairs)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "file-3")
	assert.Contains(t, report.Warnings[0], "skipped")

	for _, p := range report.Pairs {
		assert.NotEqual(t, "file-3", p.LeftFile.ID)
		assert.NotEqual(t, "file-3", p.RightFile.ID)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := newTestAnalyzer(t)
	req := func() *models.AnalyzeRequest {
		return &models.AnalyzeRequest{
			Files:    cFiles(fibC, sumC, gcdC),
			Language: "c",
		}
	}

	first := analyzeFiles(t, a, req())
	second := analyzeFiles(t, a, req())

	assert.NotEqual(t, first.ReportID, second.ReportID)
	assert.Equal(t, first.Pairs, second.Pairs)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestAnalyze_ExplicitReportID(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Analyze(context.Background(), "run-42", &models.AnalyzeRequest{
		Files:    cFiles(fibC, sumC),
		Language: "c",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "run-42", report.ReportID)
}

func TestAnalyze_ThresholdControlsSuspiciousCount(t *testing.T) {
	a := newTestAnalyzer(t)
	low, high := 0.0, 1.0

	reportLow := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files: cFiles(fibC, fibC), Language: "c", Threshold: &low,
	})
	reportHigh := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files: cFiles(fibC, sumC), Language: "c", Threshold: &high,
	})

	assert.Equal(t, 1, reportLow.Summary.SuspiciousPairs)
	assert.Equal(t, 0, reportHigh.Summary.SuspiciousPairs)
}

func TestAnalyze_TemplateFilteringLowersScores(t *testing.T) {
	a := newTestAnalyzer(t)
	boilerplate := "int main(int argc, char **argv) { parse_args(argc, argv); init_io(); "
	files := cFiles(
		boilerplate+"int a = f(1); return a; }",
		boilerplate+"double z = g(2.5); emit(z); return 0; }",
	)

	plain := analyzeFiles(t, a, &models.AnalyzeRequest{Files: files, Language: "c"})
	filtered := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files:    files,
		Language: "c",
		TemplateFile: &models.TemplateFile{
			Path:    "starter.c",
			Content: boilerplate + "}",
		},
	})

	require.Len(t, plain.Pairs, 1)
	require.Len(t, filtered.Pairs, 1)
	assert.Less(t, filtered.Pairs[0].StructuralScore, plain.Pairs[0].StructuralScore)
}

func TestAnalyze_BrokenTemplateIgnoredWithWarning(t *testing.T) {
	a := newTestAnalyzer(t)
	report := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files:    cFiles(fibC, fibC),
		Language: "c",
		TemplateFile: &models.TemplateFile{
			Path:    "starter.c",
			Content: "/* never closed",
		},
	})

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "template")
	// analysis proceeded as if no template was supplied
	require.Len(t, report.Pairs, 1)
	assert.Equal(t, 1.0, report.Pairs[0].HybridScore)
}

func TestAnalyze_StepCallbackOrder(t *testing.T) {
	a := newTestAnalyzer(t)
	var steps []models.Step
	_, err := a.Analyze(context.Background(), "", &models.AnalyzeRequest{
		Files:    cFiles(fibC, sumC),
		Language: "c",
	}, func(s models.Step) {
		steps = append(steps, s)
	})
	require.NoError(t, err)
	assert.Equal(t, []models.Step{
		models.StepTokenizing,
		models.StepFingerprinting,
		models.StepMatching,
	}, steps)
}

func TestAnalyze_SharedBoilerplateScenario(t *testing.T) {
	a := newTestAnalyzer(t)
	k := 3

	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "val%d = load(%d)\n", i, i)
	}
	boilerplate := b.String()
	content := boilerplate + "print(\"hello\")\n"

	report := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files: []models.SourceFile{
			{Path: "a.py", Content: content},
			{Path: "b.py", Content: content},
		},
		Language:    "python",
		KGramLength: &k,
	})

	require.Len(t, report.Pairs, 1)
	p := report.Pairs[0]
	assert.InDelta(t, 1.0, p.Overlap, 1e-9)
	assert.Equal(t, 1, report.Summary.SuspiciousPairs)

	// one dominant fragment covers the shared lines
	require.NotEmpty(t, p.Fragments)
	assert.Equal(t, p.Longest, p.Fragments[0].Length)
	assert.Equal(t, 1, p.Fragments[0].LeftSelection.StartRow)
}

func TestAnalyze_UnrelatedFilesScoreLow(t *testing.T) {
	a := newTestAnalyzer(t)
	report := analyzeFiles(t, a, &models.AnalyzeRequest{
		Files:    cFiles(linkedListC, vectorMathC),
		Language: "c",
	})

	require.Len(t, report.Pairs, 1)
	p := report.Pairs[0]
	assert.Less(t, p.StructuralScore, 0.1)
	assert.Less(t, p.SemanticScore, 0.1)
	assert.Less(t, p.HybridScore, 0.1)
	assert.Equal(t, 0, report.Summary.SuspiciousPairs)
}

func TestAnalyze_DeadlineTruncation(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	report, err := a.Analyze(ctx, "", &models.AnalyzeRequest{
		Files:    cFiles(fibC, sumC, gcdC),
		Language: "c",
	}, nil)
	require.NoError(t, err)

	// the expired deadline reaches the queued jobs themselves, so none of
	// them burns CPU on a comparison whose run is already over
	assert.Equal(t, 3, report.Summary.TotalPairs)
	assert.Empty(t, report.Pairs)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[len(report.Warnings)-1], "0 of 3 pairs")
}
