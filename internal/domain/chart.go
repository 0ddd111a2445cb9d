package domain

// FundingTrendPoint is one point of the global GenAI VC funding trend.
type FundingTrendPoint struct {
	ID             int64
	PeriodLabel    string
	Year           int
	FundingBillion float64
}

// InvestmentYear aggregates GenAI VC deal volume and value for one year.
type InvestmentYear struct {
	ID               int64
	YearLabel        string
	Year             int
	DealCount        int
	DealValueBillion float64
}
