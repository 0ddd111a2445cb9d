package repository

import (
	"context"

	"funding-dashboard/internal/domain"
)

// ChartRepository defines read access to the dashboard chart datasets.
type ChartRepository interface {
	Init(ctx context.Context) error
	Seed(ctx context.Context) error
	FundingTrend(ctx context.Context) ([]domain.FundingTrendPoint, error)
	Investments(ctx context.Context) ([]domain.InvestmentYear, error)
}
