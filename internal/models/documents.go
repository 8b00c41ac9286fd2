package models

import "time"

// ReportDoc is the reports collection document: the run summary without
// per-pair fragment detail.
type ReportDoc struct {
	ReportID    string    `bson:"reportId" json:"reportId"`
	Language    string    `bson:"language" json:"language"`
	Threshold   float64   `bson:"threshold" json:"threshold"`
	KGramLength int       `bson:"kgramLength" json:"kgramLength"`
	Summary     Summary   `bson:"summary" json:"summary"`
	Warnings    []string  `bson:"warnings" json:"warnings"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// PairDoc is the report_pairs collection document. ResultID is globally
// unique (reportId-scoped) and doubles as the legacy result identifier.
type PairDoc struct {
	ResultID  string     `bson:"resultId" json:"resultId"`
	ReportID  string     `bson:"reportId" json:"reportId"`
	Pair      PairResult `bson:"pair" json:"pair"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}

// FileDoc is the report_files collection document: raw submission content
// kept for side-by-side rendering of stored reports.
type FileDoc struct {
	ReportID    string    `bson:"reportId" json:"reportId"`
	FileID      string    `bson:"fileId" json:"fileId"`
	Path        string    `bson:"path" json:"path"`
	Content     string    `bson:"content" json:"content"`
	StudentID   string    `bson:"studentId,omitempty" json:"studentId,omitempty"`
	StudentName string    `bson:"studentName,omitempty" json:"studentName,omitempty"`
	LineCount   int       `bson:"lineCount" json:"lineCount"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
