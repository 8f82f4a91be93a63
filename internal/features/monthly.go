package features

import (
	"log/slog"
	"sort"

	"loanrisk/pkg/contracts/domain"
)

// monthlyFields are the per-transaction base series of the monthly
// grid. amount and balance carry the transaction values; the category
// series are 0/1 indicators, so their monthly sums are event counts
// and their means are the share of the month's transactions in that
// category.
var monthlyFields = []string{
	"amount",
	"balance",
	"b_withdr",
	"insurance",
	"b_deposit",
	"sanction",
	"household",
	"interest",
	"c_deposit",
	"withdrawal",
}

// monthlyStats are the statistics computed for each base series.
var monthlyStats = []string{"sum", "mean", "max", "min"}

// MonthlyColumns returns the deterministic column order of the monthly
// grid: every base series crossed with every statistic.
func MonthlyColumns() []string {
	cols := make([]string, 0, len(monthlyFields)*len(monthlyStats))
	for _, field := range monthlyFields {
		for _, stat := range monthlyStats {
			cols = append(cols, field+"_"+stat)
		}
	}
	return cols
}

// MonthlyAggregator computes the per-loan, per-calendar-month statistic
// grid over the pre-issuance transaction history.
type MonthlyAggregator struct {
	logger *slog.Logger
}

// NewMonthlyAggregator creates a monthly aggregator.
func NewMonthlyAggregator(logger *slog.Logger) *MonthlyAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonthlyAggregator{logger: logger}
}

// Aggregate groups the classified events by loan and by calendar month
// and computes sum, mean, max and min for every base series. Output is
// sorted by loan id, then month.
func (m *MonthlyAggregator) Aggregate(events []ClassifiedTransaction) []domain.MonthlyAggregate {
	type key struct {
		loanID int
		month  int
	}
	grid := make(map[key][][]float64)

	for _, ev := range events {
		k := key{
			loanID: ev.LoanID,
			month:  ev.Date.Year()*12 + int(ev.Date.Month()),
		}
		grid[k] = append(grid[k], monthlyRow(ev))
	}

	keys := make([]key, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].loanID != keys[j].loanID {
			return keys[i].loanID < keys[j].loanID
		}
		return keys[i].month < keys[j].month
	})

	out := make([]domain.MonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		rows := grid[k]
		values := make(map[string]float64, len(monthlyFields)*len(monthlyStats))
		for fi, field := range monthlyFields {
			sum, min, max := 0.0, rows[0][fi], rows[0][fi]
			for _, row := range rows {
				v := row[fi]
				sum += v
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			values[field+"_sum"] = sum
			values[field+"_mean"] = sum / float64(len(rows))
			values[field+"_max"] = max
			values[field+"_min"] = min
		}
		out = append(out, domain.MonthlyAggregate{
			LoanID: k.loanID,
			Month:  k.month,
			Values: values,
		})
	}

	m.logger.Info("monthly grid aggregated",
		slog.Int("loan_months", len(out)))

	return out
}

// monthlyRow maps one classified transaction to its base series values,
// in monthlyFields order.
func monthlyRow(ev ClassifiedTransaction) []float64 {
	indicator := func(flag bool) float64 {
		if flag {
			return 1
		}
		return 0
	}
	return []float64{
		ev.Amount,
		ev.Balance,
		indicator(ev.BankWithdrawal),
		indicator(ev.Insurance),
		indicator(ev.CollectionDeposit),
		indicator(ev.Sanction),
		indicator(ev.Household),
		indicator(ev.Interest),
		indicator(ev.CashDeposit),
		indicator(ev.Withdrawal),
	}
}
