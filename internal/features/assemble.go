package features

import (
	"math"

	"loanrisk/pkg/contracts/domain"
)

// FeatureTable is the flat numeric form of an exported table: a column
// header and one float64 row per loan (or loan-month). Missing values
// are NaN.
type FeatureTable struct {
	Columns []string
	Rows    [][]float64
}

// staticColumns is the exported order of the per-loan static features.
var staticColumns = []string{
	"loan_id",
	"amount",
	"duration",
	"payments",
	"target",
	"gender",
	"appl_age",
	"accnt_age",
	"card",
	"freq_trans",
	"freq_weekly",
	"pop",
	"urban_ratio",
	"avg_salary",
	"entrep_rate",
	"unemployment",
	"crime_rate",
	"multi",
}

// windowColumns is the exported order of one window's aggregates,
// before any suffix is applied.
var windowColumns = []string{
	"balance_min",
	"balance_mean",
	"balance_max",
	"c_deposit_sum",
	"withdr_sum",
	"sanc_max",
	"transactions_sum",
	"net_cdeposit_sum",
	"net_bdeposit_sum",
	"net_bdeposit_max",
	"max_interest_rate",
	"balance_negative",
}

// AssembleLoanTable combines the static features with the long-run and
// recent window aggregates into one row per loan, sorted by loan id.
// The window joins are left joins on the static side: a loan with no
// window transactions keeps its static row with NaN window columns.
// Long-run columns carry no suffix; recent columns get "_recent".
func AssembleLoanTable(static []domain.LoanFeatures, longRun, recent []domain.WindowAggregate) *FeatureTable {
	columns := make([]string, 0, len(staticColumns)+2*len(windowColumns))
	columns = append(columns, staticColumns...)
	columns = append(columns, windowColumns...)
	for _, col := range windowColumns {
		columns = append(columns, col+"_recent")
	}

	longByLoan := aggregatesByLoan(longRun)
	recentByLoan := aggregatesByLoan(recent)

	table := &FeatureTable{
		Columns: columns,
		Rows:    make([][]float64, 0, len(static)),
	}
	for _, f := range static {
		row := make([]float64, 0, len(columns))
		row = append(row, staticRow(f)...)
		row = append(row, windowRow(longByLoan[f.LoanID])...)
		row = append(row, windowRow(recentByLoan[f.LoanID])...)
		table.Rows = append(table.Rows, row)
	}

	return table
}

// AssembleMonthlyTable flattens the monthly grid into one row per
// loan-month with loan_id and month key columns followed by the grid
// columns in MonthlyColumns order.
func AssembleMonthlyTable(monthly []domain.MonthlyAggregate) *FeatureTable {
	gridCols := MonthlyColumns()
	columns := append([]string{"loan_id", "month"}, gridCols...)

	table := &FeatureTable{
		Columns: columns,
		Rows:    make([][]float64, 0, len(monthly)),
	}
	for _, m := range monthly {
		row := make([]float64, 0, len(columns))
		row = append(row, float64(m.LoanID), float64(m.Month))
		for _, col := range gridCols {
			row = append(row, m.Values[col])
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

func aggregatesByLoan(aggs []domain.WindowAggregate) map[int]*domain.WindowAggregate {
	byLoan := make(map[int]*domain.WindowAggregate, len(aggs))
	for i := range aggs {
		byLoan[aggs[i].LoanID] = &aggs[i]
	}
	return byLoan
}

func staticRow(f domain.LoanFeatures) []float64 {
	return []float64{
		float64(f.LoanID),
		f.Amount,
		f.Duration,
		f.Payments,
		float64(f.Target),
		f.Gender,
		f.ApplicantAge,
		f.AccountAge,
		f.Card,
		f.FreqTrans,
		f.FreqWeekly,
		f.Population,
		f.UrbanRatio,
		f.AvgSalary,
		f.EntrepRate,
		f.Unemployment,
		f.CrimeRate,
		float64(f.Multi),
	}
}

// windowRow maps one window aggregate to its exported columns; a nil
// aggregate (loan with an empty window) yields all NaN.
func windowRow(agg *domain.WindowAggregate) []float64 {
	if agg == nil {
		row := make([]float64, len(windowColumns))
		for i := range row {
			row[i] = math.NaN()
		}
		return row
	}
	return []float64{
		agg.BalanceMin,
		agg.BalanceMean,
		agg.BalanceMax,
		float64(agg.CashDeposits),
		float64(agg.Withdrawals),
		float64(agg.SanctionMax),
		float64(agg.Transactions),
		agg.NetCashFlow,
		agg.NetTransferFlow,
		agg.NetTransferMax,
		agg.MaxInterestRate,
		float64(agg.NegativeBalance),
	}
}
