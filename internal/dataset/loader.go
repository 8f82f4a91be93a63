package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"loanrisk/pkg/contracts/domain"
)

// Raw extract file names. The extract is a set of delimited text
// tables with a fixed ';' separator and a header row.
const (
	ClientFile      = "client.asc"
	AccountFile     = "account.asc"
	DispositionFile = "disp.asc"
	OrderFile       = "order.asc"
	LoanFile        = "loan.asc"
	CardFile        = "card.asc"
	DistrictFile    = "district.asc"
	TransactionFile = "trans.asc"
)

// dateFormat is the fixed-width YYMMDD layout used by all date fields
// in the extract. Two-digit years resolve into the 1969-2068 window,
// which covers the whole extract.
const dateFormat = "060102"

// Dataset holds the typed in-memory relations loaded from one extract.
// All relations are immutable after loading.
type Dataset struct {
	Clients      []domain.Client
	Accounts     []domain.Account
	Dispositions []domain.Disposition
	Orders       []domain.Order
	Loans        []domain.Loan
	Cards        []domain.Card
	Districts    []domain.District
	Transactions []domain.Transaction
}

// Loader parses the raw entity tables into typed relations. Structural
// problems (missing key columns, unparseable dates) surface as
// MalformedInputError and abort the run; value-level anomalies are
// recorded as consistency warnings and the rows kept.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
	warnings *Warnings
}

// NewLoader creates a loader logging through logger. A nil warnings
// collector gets a private one; passing a shared collector lets the
// caller fold loader warnings into the run summary.
func NewLoader(logger *slog.Logger, warnings *Warnings) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if warnings == nil {
		warnings = NewWarnings(logger)
	}
	return &Loader{
		logger:   logger,
		validate: validator.New(),
		warnings: warnings,
	}
}

// Warnings exposes the consistency warnings collected while loading.
func (l *Loader) Warnings() *Warnings {
	return l.warnings
}

// Load reads all eight entity tables from dir.
func (l *Loader) Load(dir string) (*Dataset, error) {
	ds := &Dataset{}
	var err error

	if ds.Clients, err = l.LoadClients(filepath.Join(dir, ClientFile)); err != nil {
		return nil, err
	}
	if ds.Accounts, err = l.LoadAccounts(filepath.Join(dir, AccountFile)); err != nil {
		return nil, err
	}
	if ds.Dispositions, err = l.LoadDispositions(filepath.Join(dir, DispositionFile)); err != nil {
		return nil, err
	}
	if ds.Orders, err = l.LoadOrders(filepath.Join(dir, OrderFile)); err != nil {
		return nil, err
	}
	if ds.Loans, err = l.LoadLoans(filepath.Join(dir, LoanFile)); err != nil {
		return nil, err
	}
	if ds.Cards, err = l.LoadCards(filepath.Join(dir, CardFile)); err != nil {
		return nil, err
	}
	if ds.Districts, err = l.LoadDistricts(filepath.Join(dir, DistrictFile)); err != nil {
		return nil, err
	}
	if ds.Transactions, err = l.LoadTransactions(filepath.Join(dir, TransactionFile)); err != nil {
		return nil, err
	}

	l.logger.Info("extract loaded",
		slog.String("dir", dir),
		slog.Int("clients", len(ds.Clients)),
		slog.Int("accounts", len(ds.Accounts)),
		slog.Int("dispositions", len(ds.Dispositions)),
		slog.Int("orders", len(ds.Orders)),
		slog.Int("loans", len(ds.Loans)),
		slog.Int("cards", len(ds.Cards)),
		slog.Int("districts", len(ds.Districts)),
		slog.Int("transactions", len(ds.Transactions)))

	return ds, nil
}

// LoadLoans parses the loan table.
func (l *Loader) LoadLoans(path string) ([]domain.Loan, error) {
	t, err := l.readTable(path, "loan_id", "account_id", "date", "amount", "duration", "payments", "status")
	if err != nil {
		return nil, err
	}

	loans := make([]domain.Loan, 0, len(t.rows))
	for i := range t.rows {
		loan := domain.Loan{Status: domain.LoanStatus(t.get(i, "status"))}
		if loan.ID, err = t.intField(i, "loan_id"); err != nil {
			return nil, err
		}
		if loan.AccountID, err = t.intField(i, "account_id"); err != nil {
			return nil, err
		}
		if loan.Date, err = t.dateField(i, "date"); err != nil {
			return nil, err
		}
		if loan.Amount, err = t.floatField(i, "amount"); err != nil {
			return nil, err
		}
		if loan.Duration, err = t.intField(i, "duration"); err != nil {
			return nil, err
		}
		if loan.Payments, err = t.floatField(i, "payments"); err != nil {
			return nil, err
		}
		if err := l.validateRow(t, i, loan); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

// LoadAccounts parses the account table.
func (l *Loader) LoadAccounts(path string) ([]domain.Account, error) {
	t, err := l.readTable(path, "account_id", "district_id", "frequency", "date")
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(t.rows))
	for i := range t.rows {
		acct := domain.Account{Frequency: domain.StatementFrequency(t.get(i, "frequency"))}
		if acct.ID, err = t.intField(i, "account_id"); err != nil {
			return nil, err
		}
		if acct.DistrictID, err = t.intField(i, "district_id"); err != nil {
			return nil, err
		}
		if acct.Date, err = t.dateField(i, "date"); err != nil {
			return nil, err
		}
		if err := l.validateRow(t, i, acct); err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// LoadClients parses the client table. Birth numbers are kept raw;
// gender and birth date are decoded during feature encoding.
func (l *Loader) LoadClients(path string) ([]domain.Client, error) {
	t, err := l.readTable(path, "client_id", "birth_number", "district_id")
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, 0, len(t.rows))
	for i := range t.rows {
		var c domain.Client
		if c.ID, err = t.intField(i, "client_id"); err != nil {
			return nil, err
		}
		if c.BirthNumber, err = t.intField(i, "birth_number"); err != nil {
			return nil, err
		}
		if c.DistrictID, err = t.intField(i, "district_id"); err != nil {
			return nil, err
		}
		if err := l.validateRow(t, i, c); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// LoadDispositions parses the disposition table.
func (l *Loader) LoadDispositions(path string) ([]domain.Disposition, error) {
	t, err := l.readTable(path, "disp_id", "client_id", "account_id", "type")
	if err != nil {
		return nil, err
	}

	disps := make([]domain.Disposition, 0, len(t.rows))
	for i := range t.rows {
		d := domain.Disposition{Type: domain.DispositionType(t.get(i, "type"))}
		if d.ID, err = t.intField(i, "disp_id"); err != nil {
			return nil, err
		}
		if d.ClientID, err = t.intField(i, "client_id"); err != nil {
			return nil, err
		}
		if d.AccountID, err = t.intField(i, "account_id"); err != nil {
			return nil, err
		}
		if err := l.validateRow(t, i, d); err != nil {
			return nil, err
		}
		disps = append(disps, d)
	}
	return disps, nil
}

// LoadCards parses the card table. The issued column carries a
// "YYMMDD HH:MM:SS" timestamp whose time part is always midnight; only
// the date fragment is parsed.
func (l *Loader) LoadCards(path string) ([]domain.Card, error) {
	t, err := l.readTable(path, "card_id", "disp_id", "type", "issued")
	if err != nil {
		return nil, err
	}

	cards := make([]domain.Card, 0, len(t.rows))
	for i := range t.rows {
		c := domain.Card{Type: domain.CardType(t.get(i, "type"))}
		if c.ID, err = t.intField(i, "card_id"); err != nil {
			return nil, err
		}
		if c.DispID, err = t.intField(i, "disp_id"); err != nil {
			return nil, err
		}
		raw := t.get(i, "issued")
		datePart, _, _ := strings.Cut(raw, " ")
		c.Issued, err = time.Parse(dateFormat, datePart)
		if err != nil {
			return nil, newMalformedInput(t.file, i+2, "issued",
				fmt.Sprintf("unparseable issuance date %q", raw), err)
		}
		if err := l.validateRow(t, i, c); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// LoadDistricts parses the district demographics table. The columns
// use the A1..A16 naming of the source extract. Placeholder values in
// the two-year unemployment and crime columns load as NaN with a
// consistency warning.
func (l *Loader) LoadDistricts(path string) ([]domain.District, error) {
	t, err := l.readTable(path, "A1", "A4", "A10", "A11", "A12", "A13", "A14", "A15", "A16")
	if err != nil {
		return nil, err
	}

	districts := make([]domain.District, 0, len(t.rows))
	for i := range t.rows {
		d := domain.District{
			Name:   t.get(i, "A2"),
			Region: t.get(i, "A3"),
		}
		if d.ID, err = t.intField(i, "A1"); err != nil {
			return nil, err
		}
		if d.Population, err = t.floatField(i, "A4"); err != nil {
			return nil, err
		}
		if d.UrbanRatio, err = t.floatField(i, "A10"); err != nil {
			return nil, err
		}
		if d.AvgSalary, err = t.floatField(i, "A11"); err != nil {
			return nil, err
		}
		if d.Entrepreneurs, err = t.floatField(i, "A14"); err != nil {
			return nil, err
		}
		d.Unemployment95 = l.demographicField(t, i, "A12")
		d.Unemployment96 = l.demographicField(t, i, "A13")
		d.Crimes95 = l.demographicField(t, i, "A15")
		d.Crimes96 = l.demographicField(t, i, "A16")
		if err := l.validateRow(t, i, d); err != nil {
			return nil, err
		}
		districts = append(districts, d)
	}
	return districts, nil
}

// LoadOrders parses the standing order table.
func (l *Loader) LoadOrders(path string) ([]domain.Order, error) {
	t, err := l.readTable(path, "order_id", "account_id", "amount")
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(t.rows))
	for i := range t.rows {
		o := domain.Order{
			BankTo:    t.get(i, "bank_to"),
			AccountTo: t.get(i, "account_to"),
			KSymbol:   t.get(i, "k_symbol"),
		}
		if o.ID, err = t.intField(i, "order_id"); err != nil {
			return nil, err
		}
		if o.AccountID, err = t.intField(i, "account_id"); err != nil {
			return nil, err
		}
		if o.Amount, err = t.floatField(i, "amount"); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// LoadTransactions parses the transaction table. This is by far the
// largest relation; rows are validated structurally while parsing
// instead of going through the struct validator.
func (l *Loader) LoadTransactions(path string) ([]domain.Transaction, error) {
	t, err := l.readTable(path, "trans_id", "account_id", "date", "type", "amount", "balance")
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(t.rows))
	for i := range t.rows {
		tx := domain.Transaction{
			Type:      t.get(i, "type"),
			Operation: t.get(i, "operation"),
			KSymbol:   strings.TrimSpace(t.get(i, "k_symbol")),
			Bank:      t.get(i, "bank"),
			Account:   t.get(i, "account"),
		}
		if tx.ID, err = t.intField(i, "trans_id"); err != nil {
			return nil, err
		}
		if tx.AccountID, err = t.intField(i, "account_id"); err != nil {
			return nil, err
		}
		if tx.Date, err = t.dateField(i, "date"); err != nil {
			return nil, err
		}
		if tx.Amount, err = t.floatField(i, "amount"); err != nil {
			return nil, err
		}
		if tx.Balance, err = t.floatField(i, "balance"); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// demographicField parses a two-year demographic column, turning
// placeholder or empty values into NaN with a warning.
func (l *Loader) demographicField(t *table, row int, col string) float64 {
	raw := strings.TrimSpace(t.get(row, col))
	if raw == "" || raw == "?" {
		l.warnings.Record(WarnMissingDemographic, "demographic value unavailable",
			slog.String("file", t.file),
			slog.Int("line", row+2),
			slog.String("column", col))
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.warnings.Record(WarnMissingDemographic, "demographic value not numeric",
			slog.String("file", t.file),
			slog.Int("line", row+2),
			slog.String("column", col),
			slog.String("value", raw))
		return math.NaN()
	}
	return v
}

// validateRow runs the struct validator and wraps failures as
// malformed input for the row.
func (l *Loader) validateRow(t *table, row int, v interface{}) error {
	if err := l.validate.Struct(v); err != nil {
		return newMalformedInput(t.file, row+2, "", fmt.Sprintf("row failed validation: %v", err), err)
	}
	return nil
}

// table is one parsed delimited file with a header-indexed schema.
type table struct {
	file string
	cols map[string]int
	rows [][]string
}

// readTable reads a ';'-delimited file and verifies the required key
// columns are present in the header.
func (l *Loader) readTable(path string, required ...string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, newMalformedInput(filepath.Base(path), 0, "", "unreadable delimited file", err)
	}
	if len(records) == 0 {
		return nil, newMalformedInput(filepath.Base(path), 0, "", "file has no header row", nil)
	}

	t := &table{
		file: filepath.Base(path),
		cols: make(map[string]int, len(records[0])),
		rows: records[1:],
	}
	for i, name := range records[0] {
		t.cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return nil, newMalformedInput(t.file, 1, name, "required column missing", nil)
		}
	}

	l.logger.Debug("table read",
		slog.String("file", t.file),
		slog.Int("rows", len(t.rows)),
		slog.Int("columns", len(t.cols)))

	return t, nil
}

// get returns the raw cell value, or "" when the column is absent or
// the row is short.
func (t *table) get(row int, col string) string {
	idx, ok := t.cols[col]
	if !ok || idx >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][idx]
}

func (t *table) intField(row int, col string) (int, error) {
	raw := strings.TrimSpace(t.get(row, col))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newMalformedInput(t.file, row+2, col, fmt.Sprintf("not an integer: %q", raw), err)
	}
	return v, nil
}

func (t *table) floatField(row int, col string) (float64, error) {
	raw := strings.TrimSpace(t.get(row, col))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, newMalformedInput(t.file, row+2, col, fmt.Sprintf("not numeric: %q", raw), err)
	}
	return v, nil
}

func (t *table) dateField(row int, col string) (time.Time, error) {
	raw := strings.TrimSpace(t.get(row, col))
	d, err := time.Parse(dateFormat, raw)
	if err != nil {
		return time.Time{}, newMalformedInput(t.file, row+2, col, fmt.Sprintf("unparseable YYMMDD date: %q", raw), err)
	}
	return d, nil
}
