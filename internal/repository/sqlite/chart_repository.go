package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"funding-dashboard/internal/domain"
	"funding-dashboard/internal/repository"
)

const createFundingTrendTable = `
CREATE TABLE IF NOT EXISTS ga_funding_trend (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	period_label TEXT NOT NULL,
	year INTEGER NOT NULL,
	funding_billion REAL NOT NULL
);
`

const createInvestmentsTable = `
CREATE TABLE IF NOT EXISTS ga_investments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	year_label TEXT NOT NULL,
	year INTEGER NOT NULL,
	deal_count INTEGER NOT NULL,
	deal_value_billion REAL NOT NULL
);
`

// Reference dataset (EY GenAI VC funding figures) used to seed empty tables.
var (
	seedFundingTrend = []domain.FundingTrendPoint{
		{PeriodLabel: "2020", Year: 2020, FundingBillion: 1.4},
		{PeriodLabel: "2021", Year: 2021, FundingBillion: 4.8},
		{PeriodLabel: "2022", Year: 2022, FundingBillion: 10.7},
		{PeriodLabel: "2023", Year: 2023, FundingBillion: 22.3},
		{PeriodLabel: "2024", Year: 2024, FundingBillion: 45.0},
		{PeriodLabel: "Q1 2025", Year: 2025, FundingBillion: 17.1},
	}
	seedInvestments = []domain.InvestmentYear{
		{YearLabel: "2020", Year: 2020, DealCount: 512, DealValueBillion: 1.4},
		{YearLabel: "2021", Year: 2021, DealCount: 784, DealValueBillion: 4.8},
		{YearLabel: "2022", Year: 2022, DealCount: 1068, DealValueBillion: 10.7},
		{YearLabel: "2023", Year: 2023, DealCount: 1812, DealValueBillion: 22.3},
		{YearLabel: "2024", Year: 2024, DealCount: 2154, DealValueBillion: 45.0},
	}
)

type ChartRepository struct {
	db *sql.DB
}

func NewChartRepository(db *sql.DB) repository.ChartRepository {
	return &ChartRepository{db: db}
}

func (r *ChartRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFundingTrendTable); err != nil {
		return fmt.Errorf("create funding trend table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createInvestmentsTable); err != nil {
		return fmt.Errorf("create investments table: %w", err)
	}
	return nil
}

// Seed inserts the reference dataset into empty tables only, so an
// operator-managed dataset is never overwritten.
func (r *ChartRepository) Seed(ctx context.Context) error {
	empty, err := r.tableEmpty(ctx, "ga_funding_trend")
	if err != nil {
		return err
	}
	if empty {
		for _, p := range seedFundingTrend {
			if _, err := r.db.ExecContext(ctx, `
INSERT INTO ga_funding_trend (period_label, year, funding_billion)
VALUES (?, ?, ?)`,
				p.PeriodLabel, p.Year, p.FundingBillion,
			); err != nil {
				return fmt.Errorf("seed funding trend: %w", err)
			}
		}
	}

	empty, err = r.tableEmpty(ctx, "ga_investments")
	if err != nil {
		return err
	}
	if empty {
		for _, y := range seedInvestments {
			if _, err := r.db.ExecContext(ctx, `
INSERT INTO ga_investments (year_label, year, deal_count, deal_value_billion)
VALUES (?, ?, ?, ?)`,
				y.YearLabel, y.Year, y.DealCount, y.DealValueBillion,
			); err != nil {
				return fmt.Errorf("seed investments: %w", err)
			}
		}
	}

	return nil
}

func (r *ChartRepository) FundingTrend(ctx context.Context) ([]domain.FundingTrendPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, period_label, year, funding_billion
FROM ga_funding_trend
ORDER BY year, id`)
	if err != nil {
		return nil, fmt.Errorf("query funding trend: %w", err)
	}
	defer rows.Close()

	var points []domain.FundingTrendPoint
	for rows.Next() {
		var p domain.FundingTrendPoint
		if err := rows.Scan(&p.ID, &p.PeriodLabel, &p.Year, &p.FundingBillion); err != nil {
			return nil, fmt.Errorf("scan funding trend row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate funding trend rows: %w", err)
	}
	return points, nil
}

func (r *ChartRepository) Investments(ctx context.Context) ([]domain.InvestmentYear, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, year_label, year, deal_count, deal_value_billion
FROM ga_investments
ORDER BY year, id`)
	if err != nil {
		return nil, fmt.Errorf("query investments: %w", err)
	}
	defer rows.Close()

	var years []domain.InvestmentYear
	for rows.Next() {
		var y domain.InvestmentYear
		if err := rows.Scan(&y.ID, &y.YearLabel, &y.Year, &y.DealCount, &y.DealValueBillion); err != nil {
			return nil, fmt.Errorf("scan investments row: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate investments rows: %w", err)
	}
	return years, nil
}

func (r *ChartRepository) tableEmpty(ctx context.Context, table string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return count == 0, nil
}
