package services

import (
	"context"
	"fmt"

	"github.com/distincto/journal/internal/journal/models"
	"github.com/distincto/journal/internal/journal/repositories/reports"
)

// ReportService manages generated reports. Reports are immutable once
// created.
type ReportService struct {
	repo reports.Repository
}

func NewReportService(repo reports.Repository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) Create(ctx context.Context, report *models.Report) (int64, error) {
	switch report.Type {
	case models.ReportTypeSummary, models.ReportTypePattern, models.ReportTypeTrend, models.ReportTypeRecommendations:
	default:
		return 0, fmt.Errorf("invalid report type %q", report.Type)
	}
	return s.repo.Create(ctx, report)
}

func (s *ReportService) Get(ctx context.Context, id int64) (*models.Report, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ReportService) ListByChild(ctx context.Context, childName string) ([]*models.Report, error) {
	return s.repo.GetAllByChild(ctx, childName)
}
