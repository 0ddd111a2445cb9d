package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funding-dashboard/internal/domain"
	"funding-dashboard/internal/storage"
)

type fakeChartRepo struct {
	trend       []domain.FundingTrendPoint
	investments []domain.InvestmentYear
}

func (r *fakeChartRepo) Init(ctx context.Context) error { return nil }
func (r *fakeChartRepo) Seed(ctx context.Context) error { return nil }

func (r *fakeChartRepo) FundingTrend(ctx context.Context) ([]domain.FundingTrendPoint, error) {
	return r.trend, nil
}

func (r *fakeChartRepo) Investments(ctx context.Context) ([]domain.InvestmentYear, error) {
	return r.investments, nil
}

type fakeStorage struct {
	bucket      string
	key         string
	contentType string
	body        []byte
	objects     []storage.ObjectInfo
}

func (s *fakeStorage) PutObject(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.bucket = bucket
	s.key = key
	s.contentType = contentType
	s.body = data
	return "s3://" + bucket + "/" + key, nil
}

func (s *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	return s.objects, nil
}

func testChartRepo() *fakeChartRepo {
	return &fakeChartRepo{
		trend: []domain.FundingTrendPoint{
			{ID: 1, PeriodLabel: "2023", Year: 2023, FundingBillion: 22.3},
			{ID: 2, PeriodLabel: "2024", Year: 2024, FundingBillion: 45.0},
		},
		investments: []domain.InvestmentYear{
			{ID: 1, YearLabel: "2023", Year: 2023, DealCount: 1812, DealValueBillion: 22.3},
		},
	}
}

func TestExportSnapshot(t *testing.T) {
	store := &fakeStorage{}
	svc := NewChartService(testChartRepo(), store, "dash-bucket", "chart-snapshots")

	location, err := svc.ExportSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "dash-bucket", store.bucket)
	assert.True(t, strings.HasPrefix(store.key, "chart-snapshots/snapshot-"), "key %q", store.key)
	assert.True(t, strings.HasSuffix(store.key, ".csv"), "key %q", store.key)
	assert.Equal(t, "text/csv", store.contentType)
	assert.Equal(t, "s3://dash-bucket/"+store.key, location)

	records, err := csv.NewReader(bytes.NewReader(store.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 2 trend rows + 1 investment row

	assert.Equal(t, []string{"dataset", "label", "year", "deal_count", "value_billion"}, records[0])
	assert.Equal(t, []string{"funding_trend", "2023", "2023", "", "22.3"}, records[1])
	assert.Equal(t, []string{"investments", "2023", "2023", "1812", "22.3"}, records[3])
}

func TestSnapshotsRequireStorage(t *testing.T) {
	svc := NewChartService(testChartRepo(), nil, "", "")

	_, err := svc.ExportSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrStorageNotConfigured)

	_, err = svc.ListSnapshots(context.Background())
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestChartReadsPassThrough(t *testing.T) {
	repo := testChartRepo()
	svc := NewChartService(repo, nil, "", "")

	trend, err := svc.FundingTrend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.trend, trend)

	investments, err := svc.Investments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.investments, investments)
}
