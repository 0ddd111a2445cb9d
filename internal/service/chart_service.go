package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"funding-dashboard/internal/domain"
	"funding-dashboard/internal/repository"
	"funding-dashboard/internal/storage"
)

// ErrStorageNotConfigured is returned from snapshot operations when no
// object storage was configured at startup.
var ErrStorageNotConfigured = errors.New("storage is not configured")

// ChartService exposes the dashboard chart datasets and snapshot exports.
type ChartService interface {
	FundingTrend(ctx context.Context) ([]domain.FundingTrendPoint, error)
	Investments(ctx context.Context) ([]domain.InvestmentYear, error)
	ExportSnapshot(ctx context.Context) (string, error)
	ListSnapshots(ctx context.Context) ([]storage.ObjectInfo, error)
}

type chartService struct {
	charts    repository.ChartRepository
	storage   storage.Service
	bucket    string
	keyPrefix string
}

func NewChartService(charts repository.ChartRepository, store storage.Service, bucket, keyPrefix string) ChartService {
	return &chartService{
		charts:    charts,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

func (s *chartService) FundingTrend(ctx context.Context) ([]domain.FundingTrendPoint, error) {
	return s.charts.FundingTrend(ctx)
}

func (s *chartService) Investments(ctx context.Context) ([]domain.InvestmentYear, error) {
	return s.charts.Investments(ctx)
}

// ExportSnapshot renders both datasets to a single CSV object and uploads
// it, returning the object location.
func (s *chartService) ExportSnapshot(ctx context.Context) (string, error) {
	if s.storage == nil || s.bucket == "" {
		return "", ErrStorageNotConfigured
	}

	trend, err := s.charts.FundingTrend(ctx)
	if err != nil {
		return "", err
	}
	investments, err := s.charts.Investments(ctx)
	if err != nil {
		return "", err
	}

	body, err := renderSnapshotCSV(trend, investments)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("snapshot-%s.csv", uuid.NewString())
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + key
	}

	location, err := s.storage.PutObject(ctx, s.bucket, key, bytes.NewReader(body), "text/csv")
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return location, nil
}

func (s *chartService) ListSnapshots(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, ErrStorageNotConfigured
	}
	return s.storage.ListObjects(ctx, s.bucket, s.keyPrefix)
}

func renderSnapshotCSV(trend []domain.FundingTrendPoint, investments []domain.InvestmentYear) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"dataset", "label", "year", "deal_count", "value_billion"},
	}
	for _, p := range trend {
		records = append(records, []string{
			"funding_trend",
			p.PeriodLabel,
			strconv.Itoa(p.Year),
			"",
			strconv.FormatFloat(p.FundingBillion, 'f', -1, 64),
		})
	}
	for _, y := range investments {
		records = append(records, []string{
			"investments",
			y.YearLabel,
			strconv.Itoa(y.Year),
			strconv.Itoa(y.DealCount),
			strconv.FormatFloat(y.DealValueBillion, 'f', -1, 64),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("render snapshot csv: %w", err)
	}
	return buf.Bytes(), nil
}
