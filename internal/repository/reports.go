package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nithyasree/veritas/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	reportsCollection = "reports"
	pairsCollection   = "report_pairs"
	filesCollection   = "report_files"
)

type ReportsRepository struct {
	mongoRepo *MongoRepository
}

func NewReportsRepository(mongoRepo *MongoRepository) *ReportsRepository {
	return &ReportsRepository{
		mongoRepo: mongoRepo,
	}
}

// ResultID builds the globally unique pair identifier used by the legacy
// result lookup: the report id joined with the deterministic pair id.
func ResultID(reportID, pairID string) string {
	return reportID + "/" + pairID
}

// SplitResultID is the inverse of ResultID.
func SplitResultID(resultID string) (reportID, pairID string, ok bool) {
	reportID, pairID, ok = strings.Cut(resultID, "/")
	return
}

// StoreReport persists a complete report: the summary document, one pair
// document per compared pair and one file document per submission.
func (r *ReportsRepository) StoreReport(ctx context.Context, report *models.Report, files []models.SourceFile) error {
	now := time.Now()

	doc := &models.ReportDoc{
		ReportID:    report.ReportID,
		Language:    report.Language,
		Threshold:   report.Threshold,
		KGramLength: report.KGramLength,
		Summary:     report.Summary,
		Warnings:    report.Warnings,
		CreatedAt:   now,
	}
	if err := r.mongoRepo.InsertOne(ctx, reportsCollection, doc); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	if len(report.Pairs) > 0 {
		pairDocs := make([]interface{}, 0, len(report.Pairs))
		for _, pair := range report.Pairs {
			pairDocs = append(pairDocs, &models.PairDoc{
				ResultID:  ResultID(report.ReportID, pair.ID),
				ReportID:  report.ReportID,
				Pair:      pair,
				CreatedAt: now,
			})
		}
		if err := r.mongoRepo.InsertMany(ctx, pairsCollection, pairDocs); err != nil {
			return fmt.Errorf("failed to insert report pairs: %w", err)
		}
	}

	if len(files) > 0 {
		fileDocs := make([]interface{}, 0, len(files))
		for _, f := range files {
			fileDocs = append(fileDocs, &models.FileDoc{
				ReportID:    report.ReportID,
				FileID:      f.ID,
				Path:        f.Path,
				Content:     f.Content,
				StudentID:   f.StudentID,
				StudentName: f.StudentName,
				LineCount:   strings.Count(f.Content, "\n") + 1,
				CreatedAt:   now,
			})
		}
		if err := r.mongoRepo.InsertMany(ctx, filesCollection, fileDocs); err != nil {
			return fmt.Errorf("failed to insert report files: %w", err)
		}
	}

	return nil
}

func (r *ReportsRepository) GetReportByID(ctx context.Context, reportID string) (*models.ReportDoc, error) {
	filter := bson.M{"reportId": reportID}

	var doc models.ReportDoc
	err := r.mongoRepo.FindOne(ctx, reportsCollection, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &doc, nil
}

// GetPairsByReportID returns the pair documents of a report in deterministic
// pair-id order, matching the order they were produced in.
func (r *ReportsRepository) GetPairsByReportID(ctx context.Context, reportID string) ([]*models.PairDoc, error) {
	filter := bson.M{"reportId": reportID}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.mongoRepo.FindMany(ctx, pairsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find report pairs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.PairDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode report pairs: %w", err)
	}

	return docs, nil
}

func (r *ReportsRepository) GetPair(ctx context.Context, reportID, pairID string) (*models.PairDoc, error) {
	return r.getPairByResultID(ctx, ResultID(reportID, pairID))
}

func (r *ReportsRepository) GetPairByResultID(ctx context.Context, resultID string) (*models.PairDoc, error) {
	return r.getPairByResultID(ctx, resultID)
}

func (r *ReportsRepository) getPairByResultID(ctx context.Context, resultID string) (*models.PairDoc, error) {
	filter := bson.M{"resultId": resultID}

	var doc models.PairDoc
	err := r.mongoRepo.FindOne(ctx, pairsCollection, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pair: %w", err)
	}

	return &doc, nil
}

func (r *ReportsRepository) GetFile(ctx context.Context, reportID, fileID string) (*models.FileDoc, error) {
	filter := bson.M{"reportId": reportID, "fileId": fileID}

	var doc models.FileDoc
	err := r.mongoRepo.FindOne(ctx, filesCollection, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find file: %w", err)
	}

	return &doc, nil
}
