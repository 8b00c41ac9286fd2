package models

import (
	"time"
)

type Step string

const (
	StepIdle           Step = "idle"
	StepInitiated      Step = "initiated"
	StepTokenizing     Step = "tokenizing"
	StepFingerprinting Step = "fingerprinting"
	StepMatching       Step = "matching"
	StepCompleted      Step = "completed"
	StepFailed         Step = "failed"
)

// Selection is a region of source code in 1-based row/column coordinates.
type Selection struct {
	StartRow int `bson:"startRow" json:"startRow"`
	StartCol int `bson:"startCol" json:"startCol"`
	EndRow   int `bson:"endRow" json:"endRow"`
	EndCol   int `bson:"endCol" json:"endCol"`
}

// Fragment is a maximal matched code region between two files. Token index
// ranges are half-open [start, end) and kept alongside the source selections
// so overlap checks never have to re-derive them from coordinates.
type Fragment struct {
	LeftSelection   Selection `bson:"leftSelection" json:"leftSelection"`
	RightSelection  Selection `bson:"rightSelection" json:"rightSelection"`
	LeftTokenStart  int       `bson:"leftTokenStart" json:"leftTokenStart"`
	LeftTokenEnd    int       `bson:"leftTokenEnd" json:"leftTokenEnd"`
	RightTokenStart int       `bson:"rightTokenStart" json:"rightTokenStart"`
	RightTokenEnd   int       `bson:"rightTokenEnd" json:"rightTokenEnd"`
	Length          int       `bson:"length" json:"length"`
}

// FileRef identifies one side of a compared pair.
type FileRef struct {
	ID          string `bson:"id" json:"id"`
	Path        string `bson:"path" json:"path"`
	StudentID   string `bson:"studentId,omitempty" json:"studentId,omitempty"`
	StudentName string `bson:"studentName,omitempty" json:"studentName,omitempty"`
}

// PairResult holds all similarity signals for one unordered pair of files.
type PairResult struct {
	ID              string     `bson:"id" json:"id"`
	LeftFile        FileRef    `bson:"leftFile" json:"leftFile"`
	RightFile       FileRef    `bson:"rightFile" json:"rightFile"`
	StructuralScore float64    `bson:"structuralScore" json:"structuralScore"`
	SemanticScore   float64    `bson:"semanticScore" json:"semanticScore"`
	HybridScore     float64    `bson:"hybridScore" json:"hybridScore"`
	Overlap         float64    `bson:"overlap" json:"overlap"`
	Longest         int        `bson:"longest" json:"longest"`
	Fragments       []Fragment `bson:"fragments" json:"fragments"`
}

// Summary aggregates one analysis run.
type Summary struct {
	TotalFiles        int     `bson:"totalFiles" json:"totalFiles"`
	TotalPairs        int     `bson:"totalPairs" json:"totalPairs"`
	SuspiciousPairs   int     `bson:"suspiciousPairs" json:"suspiciousPairs"`
	AverageSimilarity float64 `bson:"averageSimilarity" json:"averageSimilarity"`
	MaxSimilarity     float64 `bson:"maxSimilarity" json:"maxSimilarity"`
}

// Report is the complete, immutable output of one analysis run.
type Report struct {
	ReportID    string       `bson:"reportId" json:"reportId"`
	Language    string       `bson:"language" json:"language"`
	Threshold   float64      `bson:"threshold" json:"threshold"`
	KGramLength int          `bson:"kgramLength" json:"kgramLength"`
	Summary     Summary      `bson:"summary" json:"summary"`
	Pairs       []PairResult `bson:"pairs" json:"pairs"`
	Warnings    []string     `bson:"warnings" json:"warnings"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
}
