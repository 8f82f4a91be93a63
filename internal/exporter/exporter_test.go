package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrisk/internal/dataset"
	"loanrisk/internal/features"
	"loanrisk/pkg/contracts/domain"
)

func sampleTable() *features.FeatureTable {
	return &features.FeatureTable{
		Columns: []string{"loan_id", "amount", "max_interest_rate"},
		Rows: [][]float64{
			{5000, 80952, 0.05},
			{5001, 30276, math.NaN()},
		},
	}
}

func TestCSVWriterNaNAsEmptyCell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features.csv")

	require.NoError(t, NewCSVWriter(nil).WriteTable(path, sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "loan_id,amount,max_interest_rate", lines[0])
	assert.Equal(t, "5000,80952,0.05", lines[1])
	assert.Equal(t, "5001,30276,", lines[2])
}

func TestCSVWriterRowLengthMismatch(t *testing.T) {
	table := &features.FeatureTable{
		Columns: []string{"a", "b"},
		Rows:    [][]float64{{1}},
	}
	path := filepath.Join(t.TempDir(), "bad.csv")

	err := NewCSVWriter(nil).WriteTable(path, table)
	require.Error(t, err)
	// A failed write leaves no partial artifact behind.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestArtifactRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.gob")
	table := sampleTable()

	require.NoError(t, NewArtifactWriter(nil).WriteTable(path, table))

	got, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, table.Rows[0], got.Rows[0])
	// NaN survives the binary round trip.
	assert.Equal(t, 30276.0, got.Rows[1][1])
	assert.True(t, math.IsNaN(got.Rows[1][2]))
}

func TestArtifactReadMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "absent.gob"))
	require.Error(t, err)
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.xlsx")

	require.NoError(t, NewXLSXWriter(nil).WriteTable(path, sampleTable()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// TestExportIdempotence runs the whole transformation and export path
// twice on the same input and requires the written artifacts to be
// byte-identical.
func TestExportIdempotence(t *testing.T) {
	loanDate := time.Date(1997, time.March, 1, 0, 0, 0, 0, time.UTC)
	ds := &dataset.Dataset{
		Loans: []domain.Loan{
			{ID: 5000, AccountID: 10, Date: loanDate, Amount: 80952, Duration: 24, Payments: 3373, Status: domain.LoanStatusFinishedDefault},
			{ID: 5001, AccountID: 11, Date: loanDate, Amount: 30276, Duration: 12, Payments: 2523, Status: domain.LoanStatusRunningOK},
		},
		Accounts: []domain.Account{
			{ID: 10, DistrictID: 5, Frequency: domain.FrequencyMonthly, Date: loanDate.AddDate(-4, 0, 0)},
			{ID: 11, DistrictID: 5, Frequency: domain.FrequencyWeekly, Date: loanDate.AddDate(-2, 0, 0)},
		},
		Dispositions: []domain.Disposition{
			{ID: 100, ClientID: 1, AccountID: 10, Type: domain.DispositionOwner},
			{ID: 101, ClientID: 2, AccountID: 11, Type: domain.DispositionOwner},
		},
		Clients: []domain.Client{
			{ID: 1, BirthNumber: 751225, DistrictID: 5},
			{ID: 2, BirthNumber: 755705, DistrictID: 5},
		},
		Districts: []domain.District{
			{ID: 5, Population: 95616, UrbanRatio: 51.4, AvgSalary: 8369, Unemployment95: 3.85, Unemployment96: 4.43, Entrepreneurs: 117, Crimes95: 2616, Crimes96: 2640},
		},
		Transactions: []domain.Transaction{
			{ID: 9000, AccountID: 10, Date: loanDate.AddDate(0, 0, -45), Type: "PRIJEM", Operation: "VKLAD", Amount: 1000, Balance: 5000},
			{ID: 9001, AccountID: 10, Date: loanDate.AddDate(0, 0, -90), Type: "VYDAJ", Operation: "VYBER", Amount: 200, Balance: 4000},
		},
	}

	export := func(dir string) (csvBytes, gobBytes []byte) {
		join := features.BuildStaticJoin(ds, nil)
		static := features.NewEncoder(nil, nil).EncodeLoans(join)
		events := features.NewClassifier(nil, nil).Classify(ds.Loans, ds.Transactions)
		longRun := features.NewAggregator(nil, features.Window{MinDays: 60, MaxDays: 3000}).Aggregate(events)
		recent := features.NewAggregator(nil, features.Window{MinDays: 0, MaxDays: 60}).Aggregate(events)
		table := features.AssembleLoanTable(static, longRun, recent)

		csvPath := filepath.Join(dir, "features.csv")
		gobPath := filepath.Join(dir, "features.gob")
		require.NoError(t, NewCSVWriter(nil).WriteTable(csvPath, table))
		require.NoError(t, NewArtifactWriter(nil).WriteTable(gobPath, table))

		csvBytes, err := os.ReadFile(csvPath)
		require.NoError(t, err)
		gobBytes, err = os.ReadFile(gobPath)
		require.NoError(t, err)
		return csvBytes, gobBytes
	}

	firstCSV, firstGob := export(t.TempDir())
	secondCSV, secondGob := export(t.TempDir())

	assert.Equal(t, firstCSV, secondCSV)
	assert.Equal(t, firstGob, secondGob)
}

func TestWriteAtomicCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "features.csv")

	require.NoError(t, NewCSVWriter(nil).WriteTable(path, sampleTable()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
