package domain

// LoanFeatures is the static, per-loan feature vector derived from the
// joined entity tables. Numeric features averaged across joint account
// holders are float64; missing values are NaN.
type LoanFeatures struct {
	LoanID   int     `json:"loan_id"`
	Amount   float64 `json:"amount"`
	Duration float64 `json:"duration"`
	Payments float64 `json:"payments"`
	Target   int     `json:"target"`

	Gender       float64 `json:"gender"`
	ApplicantAge float64 `json:"appl_age"`
	AccountAge   float64 `json:"accnt_age"`
	Card         float64 `json:"card"`
	FreqTrans    float64 `json:"freq_trans"`
	FreqWeekly   float64 `json:"freq_weekly"`
	Multi        int     `json:"multi"`

	Population   float64 `json:"pop"`
	UrbanRatio   float64 `json:"urban_ratio"`
	AvgSalary    float64 `json:"avg_salary"`
	EntrepRate   float64 `json:"entrep_rate"`
	Unemployment float64 `json:"unemployment"`
	CrimeRate    float64 `json:"crime_rate"`
}

// WindowAggregate holds the transaction summary statistics for one loan
// over one day-offset window relative to the issuance date.
type WindowAggregate struct {
	LoanID int `json:"loan_id"`

	// Balance envelope over the window, extended with the reconstructed
	// pre-transaction balance of the earliest window transaction.
	BalanceMin  float64 `json:"balance_min"`
	BalanceMean float64 `json:"balance_mean"`
	BalanceMax  float64 `json:"balance_max"`

	Transactions int `json:"transactions_sum"`

	CashDeposits int `json:"c_deposit_sum"`
	Withdrawals  int `json:"withdr_sum"`
	SanctionMax  int `json:"sanc_max"`

	// Net flows: cash deposits minus withdrawals, and collection
	// deposits minus remittances to other banks.
	NetCashFlow     float64 `json:"net_cdeposit_sum"`
	NetTransferFlow float64 `json:"net_bdeposit_sum"`
	NetTransferMax  float64 `json:"net_bdeposit_max"`

	// MaxInterestRate is the largest effective rate observed on
	// interest-credit transactions; NaN when none is computable.
	MaxInterestRate float64 `json:"max_interest_rate"`

	// NegativeBalance is 1 when the window's minimum balance (after the
	// envelope extension) is below zero.
	NegativeBalance int `json:"balance_negative"`
}

// MonthlyAggregate holds the per-loan, per-calendar-month statistic grid
// of the monthly variant. Month is year*12 + month, so consecutive
// months differ by one across year boundaries. Values is keyed by the
// deterministic column names from MonthlyColumns.
type MonthlyAggregate struct {
	LoanID int                `json:"loan_id"`
	Month  int                `json:"month"`
	Values map[string]float64 `json:"values"`
}
