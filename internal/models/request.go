package models

// SourceFile is one submission in an analysis request. ID must be unique
// within a request; when empty it defaults to a position-derived value.
type SourceFile struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Content     string `json:"content"`
	StudentID   string `json:"studentId,omitempty"`
	StudentName string `json:"studentName,omitempty"`
}

// TemplateFile is optional instructor-supplied boilerplate. It is never a
// comparison subject, only a subtraction mask.
type TemplateFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// AnalyzeRequest is a batch of files to compare pairwise.
type AnalyzeRequest struct {
	Files        []SourceFile  `json:"files" binding:"required"`
	Language     string        `json:"language" binding:"required"`
	TemplateFile *TemplateFile `json:"templateFile,omitempty"`
	Threshold    *float64      `json:"threshold,omitempty"`
	KGramLength  *int          `json:"kgramLength,omitempty"`
}

// PairResponse is the fragment-free pair view returned by the analyze and
// report endpoints.
type PairResponse struct {
	ID              string  `json:"id"`
	LeftFile        FileRef `json:"leftFile"`
	RightFile       FileRef `json:"rightFile"`
	StructuralScore float64 `json:"structuralScore"`
	SemanticScore   float64 `json:"semanticScore"`
	HybridScore     float64 `json:"hybridScore"`
	Overlap         float64 `json:"overlap"`
	Longest         int     `json:"longest"`
}

// AnalyzeResponse is returned by POST /api/v1/analyze.
type AnalyzeResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	ReportID string         `json:"reportId"`
	Summary  Summary        `json:"summary"`
	Pairs    []PairResponse `json:"pairs"`
	Warnings []string       `json:"warnings"`
}

// FragmentResponse carries one matched region for rendering.
type FragmentResponse struct {
	LeftSelection  Selection `json:"leftSelection"`
	RightSelection Selection `json:"rightSelection"`
	Length         int       `json:"length"`
}

// PairDetailsResponse is the canonical pair detail shape.
type PairDetailsResponse struct {
	Pair      PairResponse       `json:"pair"`
	Fragments []FragmentResponse `json:"fragments"`
	LeftCode  string             `json:"leftCode"`
	RightCode string             `json:"rightCode"`
}

// FlatFragment is the legacy fragment shape with flattened coordinates.
type FlatFragment struct {
	LeftStartRow  int `json:"leftStartRow"`
	LeftStartCol  int `json:"leftStartCol"`
	LeftEndRow    int `json:"leftEndRow"`
	LeftEndCol    int `json:"leftEndCol"`
	RightStartRow int `json:"rightStartRow"`
	RightStartCol int `json:"rightStartCol"`
	RightEndRow   int `json:"rightEndRow"`
	RightEndCol   int `json:"rightEndCol"`
	Length        int `json:"length"`
}

// ResultFileDetails describes one file in the legacy result shape.
type ResultFileDetails struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	LineCount   int    `json:"lineCount"`
	StudentName string `json:"studentName"`
}

// ResultDetailsResponse is the legacy/alternate detail shape, keyed by a
// resultId. It is derived from the same stored pair as PairDetailsResponse,
// never recomputed.
type ResultDetailsResponse struct {
	ResultID        string            `json:"resultId"`
	StructuralScore float64           `json:"structuralScore"`
	SemanticScore   float64           `json:"semanticScore"`
	HybridScore     float64           `json:"hybridScore"`
	Fragments       []FlatFragment    `json:"fragments"`
	LeftFile        ResultFileDetails `json:"leftFile"`
	RightFile       ResultFileDetails `json:"rightFile"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusResponse reports the current pipeline phase of a run.
type StatusResponse struct {
	ReportID string `json:"reportId"`
	Step     Step   `json:"step"`
}
