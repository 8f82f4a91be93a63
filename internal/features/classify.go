package features

import (
	"log/slog"
	"strings"
	"time"

	"loanrisk/internal/dataset"
	"loanrisk/pkg/contracts/domain"
)

// Category code fragments from the source extract. Matching is by
// substring: the extract mixes bare codes ("VKLAD") with composites
// ("VYBER KARTOU", "SANKC. UROK").
const (
	codeCollection   = "PREVOD Z"  // collection from another bank
	codeCashDeposit  = "VKLAD"     // cash deposit
	codeWithdrawal   = "VYBER"     // cash or card withdrawal
	codeRemittance   = "PREVOD NA" // remittance to another bank
	codeSanction     = "SANK"      // sanction interest on negative balance
	codeHousehold    = "SIPO"      // household payment
	codeInsurance    = "POJISTNE"  // insurance payment
	codeInterest     = "UROK"      // credited interest
	codeStatementFee = "SLUZBY"    // statement fee
)

// Codes that are recognized but carry no discriminative indicator:
// pension collections, loan installments and leasing payments.
var neutralCodes = map[string]bool{
	"DUCHOD":  true,
	"UVER":    true,
	"LEASING": true,
}

// ClassifiedTransaction is a transaction row joined to one of its
// account's loans, restricted to the pre-issuance history and mapped
// from free-text category codes to semantic flags. The flags are not
// mutually exclusive.
type ClassifiedTransaction struct {
	LoanID   int
	LoanDate time.Time
	TxID     int
	Date     time.Time
	// Amount is the unsigned magnitude; SignedAmount carries the
	// debit direction and reconstructs the pre-transaction balance as
	// Balance - SignedAmount.
	Amount       float64
	SignedAmount float64
	Balance      float64

	CollectionDeposit bool
	CashDeposit       bool
	Withdrawal        bool // cash and card withdrawals merged
	BankWithdrawal    bool
	Sanction          bool
	Household         bool
	Insurance         bool
	Interest          bool
}

// Classifier normalizes raw transactions into per-loan classified
// event rows.
type Classifier struct {
	logger   *slog.Logger
	warnings *dataset.Warnings
}

// NewClassifier creates a classifier; warnings receives unmapped
// category codes.
func NewClassifier(logger *slog.Logger, warnings *dataset.Warnings) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if warnings == nil {
		warnings = dataset.NewWarnings(logger)
	}
	return &Classifier{logger: logger, warnings: warnings}
}

// Classify joins transactions to each loan on their account and keeps
// only events dated strictly before the loan issuance date. This is
// the leakage guard: a transaction dated on or after issuance never
// reaches feature computation. Statement-fee rows are dropped
// entirely (a flat fee applied uniformly carries no signal).
func (c *Classifier) Classify(loans []domain.Loan, txs []domain.Transaction) []ClassifiedTransaction {
	loansByAccount := make(map[int][]domain.Loan)
	for _, loan := range loans {
		loansByAccount[loan.AccountID] = append(loansByAccount[loan.AccountID], loan)
	}

	var out []ClassifiedTransaction
	dropped := 0
	for _, tx := range txs {
		accountLoans := loansByAccount[tx.AccountID]
		if len(accountLoans) == 0 {
			continue
		}

		// The category symbol takes precedence; when absent the
		// broader operation code substitutes, per row.
		code := tx.KSymbol
		if code == "" {
			code = tx.Operation
		}
		if strings.Contains(code, codeStatementFee) {
			dropped++
			continue
		}

		row := ClassifiedTransaction{
			TxID:         tx.ID,
			Date:         tx.Date,
			Amount:       tx.Amount,
			SignedAmount: tx.SignedAmount(),
			Balance:      tx.Balance,

			CollectionDeposit: strings.Contains(code, codeCollection),
			CashDeposit:       strings.Contains(code, codeCashDeposit),
			Withdrawal:        strings.Contains(code, codeWithdrawal),
			Sanction:          strings.Contains(code, codeSanction),
			Household:         strings.Contains(code, codeHousehold),
			Insurance:         strings.Contains(code, codeInsurance),
			// "SANKC. UROK" contains the interest fragment; sanction
			// interest is not an interest credit.
			Interest: strings.Contains(code, codeInterest) && !strings.Contains(code, codeSanction),
			// The remittance direction lives on the operation code
			// even when a category symbol is present.
			BankWithdrawal: strings.Contains(tx.Operation, codeRemittance),
		}

		if c.isUnmapped(row, code) {
			c.warnings.Record(dataset.WarnUnmappedCategory, "unmapped transaction category",
				slog.Int("trans_id", tx.ID),
				slog.String("code", code))
		}

		for _, loan := range accountLoans {
			if !tx.Date.Before(loan.Date) {
				continue
			}
			r := row
			r.LoanID = loan.ID
			r.LoanDate = loan.Date
			out = append(out, r)
		}
	}

	c.logger.Info("transactions classified",
		slog.Int("events", len(out)),
		slog.Int("statement_fees_dropped", dropped))

	return out
}

// isUnmapped reports whether the code matched no indicator and is not
// a known neutral code. The row is kept either way.
func (c *Classifier) isUnmapped(row ClassifiedTransaction, code string) bool {
	if row.CollectionDeposit || row.CashDeposit || row.Withdrawal || row.Sanction ||
		row.Household || row.Insurance || row.Interest || row.BankWithdrawal {
		return false
	}
	code = strings.TrimSpace(code)
	return code != "" && !neutralCodes[code]
}
