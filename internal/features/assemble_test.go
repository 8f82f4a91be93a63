package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrisk/pkg/contracts/domain"
)

func TestAssembleLoanTableColumns(t *testing.T) {
	table := AssembleLoanTable(nil, nil, nil)

	require.Len(t, table.Columns, 18+12+12)
	assert.Equal(t, "loan_id", table.Columns[0])
	assert.Equal(t, "multi", table.Columns[17])
	assert.Equal(t, "balance_min", table.Columns[18])
	assert.Equal(t, "balance_negative", table.Columns[29])
	assert.Equal(t, "balance_min_recent", table.Columns[30])
	assert.Equal(t, "balance_negative_recent", table.Columns[len(table.Columns)-1])
}

func TestAssembleLoanTableLeftJoin(t *testing.T) {
	static := []domain.LoanFeatures{
		{LoanID: 4000, Amount: 1000, Target: 0},
		{LoanID: 5000, Amount: 2000, Target: 1},
	}
	longRun := []domain.WindowAggregate{
		{LoanID: 5000, BalanceMin: 100, BalanceMean: 200, BalanceMax: 300, Transactions: 4},
	}

	table := AssembleLoanTable(static, longRun, nil)

	require.Len(t, table.Rows, 2)
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Columns))
	}

	// Loan 4000 has no window transactions: its static columns stay
	// populated and every window column is NaN.
	first := table.Rows[0]
	assert.Equal(t, 4000.0, first[0])
	assert.Equal(t, 1000.0, first[1])
	for i := 18; i < len(first); i++ {
		assert.True(t, math.IsNaN(first[i]), "column %s", table.Columns[i])
	}

	second := table.Rows[1]
	assert.Equal(t, 5000.0, second[0])
	assert.Equal(t, 100.0, second[18])
	assert.Equal(t, 300.0, second[20])
	// Recent window is absent for both loans.
	assert.True(t, math.IsNaN(second[30]))
}

func TestAssembleLoanTableRowOrder(t *testing.T) {
	static := []domain.LoanFeatures{
		{LoanID: 4000},
		{LoanID: 5000},
	}

	table := AssembleLoanTable(static, nil, nil)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, 4000.0, table.Rows[0][0])
	assert.Equal(t, 5000.0, table.Rows[1][0])
}

func TestAssembleMonthlyTable(t *testing.T) {
	monthly := []domain.MonthlyAggregate{
		{
			LoanID: 5000,
			Month:  1997*12 + 1,
			Values: map[string]float64{"amount_sum": 400, "amount_mean": 200},
		},
	}

	table := AssembleMonthlyTable(monthly)

	require.Len(t, table.Columns, 2+len(MonthlyColumns()))
	assert.Equal(t, "loan_id", table.Columns[0])
	assert.Equal(t, "month", table.Columns[1])

	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, 5000.0, row[0])
	assert.Equal(t, float64(1997*12+1), row[1])
	assert.Equal(t, 400.0, row[2])
	assert.Equal(t, 200.0, row[3])
}
