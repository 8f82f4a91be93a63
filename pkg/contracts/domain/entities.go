package domain

import (
	"time"
)

// LoanStatus is the repayment status code carried by a loan record.
type LoanStatus string

const (
	// LoanStatusFinishedPaid marks a finished contract, loan repaid.
	LoanStatusFinishedPaid LoanStatus = "A"
	// LoanStatusFinishedDefault marks a finished contract, loan not repaid.
	LoanStatusFinishedDefault LoanStatus = "B"
	// LoanStatusRunningOK marks a running contract in good standing.
	LoanStatusRunningOK LoanStatus = "C"
	// LoanStatusRunningDebt marks a running contract with the client in debt.
	LoanStatusRunningDebt LoanStatus = "D"
)

// Loan represents a granted loan. One row per loan, unique by ID,
// immutable once loaded.
type Loan struct {
	ID        int        `json:"loan_id" validate:"required"`
	AccountID int        `json:"account_id" validate:"required"`
	Date      time.Time  `json:"date"`
	Amount    float64    `json:"amount" validate:"min=0"`
	Duration  int        `json:"duration" validate:"min=0"`
	Payments  float64    `json:"payments" validate:"min=0"`
	Status    LoanStatus `json:"status" validate:"oneof=A B C D"`
}

// Target returns the binary default label: 1 for statuses B and D
// (debt not repaid, or running with negative standing), 0 otherwise.
func (l Loan) Target() int {
	if l.Status == LoanStatusFinishedDefault || l.Status == LoanStatusRunningDebt {
		return 1
	}
	return 0
}

// StatementFrequency is the account statement issuance frequency code.
type StatementFrequency string

const (
	FrequencyMonthly        StatementFrequency = "POPLATEK MESICNE"
	FrequencyWeekly         StatementFrequency = "POPLATEK TYDNE"
	FrequencyPerTransaction StatementFrequency = "POPLATEK PO OBRATU"
)

// Account represents a bank account.
type Account struct {
	ID         int                `json:"account_id" validate:"required"`
	DistrictID int                `json:"district_id"`
	Frequency  StatementFrequency `json:"frequency"`
	Date       time.Time          `json:"date"`
}

// DispositionType is the role a client holds on an account.
type DispositionType string

const (
	DispositionOwner     DispositionType = "OWNER"
	DispositionDisponent DispositionType = "DISPONENT"
)

// Disposition links an account to a client with a role. An account may
// carry several dispositions (joint holders).
type Disposition struct {
	ID        int             `json:"disp_id" validate:"required"`
	ClientID  int             `json:"client_id" validate:"required"`
	AccountID int             `json:"account_id" validate:"required"`
	Type      DispositionType `json:"type" validate:"oneof=OWNER DISPONENT"`
}

// Client represents a bank client. BirthNumber is the raw national
// birth number, which encodes date of birth and gender (the month part
// is incremented by 50 for women).
type Client struct {
	ID          int `json:"client_id" validate:"required"`
	BirthNumber int `json:"birth_number" validate:"required"`
	DistrictID  int `json:"district_id"`
}

// Gender decodes the gender bit from the birth number: 1 for female
// (month fragment above 50), 0 for male.
func (c Client) Gender() int {
	if c.BirthNumber%10000 > 5000 {
		return 1
	}
	return 0
}

// BirthDate reconstructs the date of birth from the birth number,
// removing the female month offset. All clients in the extract were
// born in the 1900s.
func (c Client) BirthDate() (time.Time, error) {
	v := c.BirthNumber - 5000*c.Gender()
	year := 1900 + v/10000
	month := (v / 100) % 100
	day := v % 100
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, &InvalidBirthNumberError{BirthNumber: c.BirthNumber}
	}
	return d, nil
}

// InvalidBirthNumberError reports a birth number whose date fragment is
// not a valid calendar date.
type InvalidBirthNumberError struct {
	BirthNumber int
}

func (e *InvalidBirthNumberError) Error() string {
	return "invalid birth number date fragment"
}

// District holds the demographic snapshot for a district. The
// unemployment and crime statistics are reported for two years; the
// applicable year is selected per loan at encoding time. Values that
// were unavailable in the source (placeholder strings) load as NaN.
type District struct {
	ID             int     `json:"district_id" validate:"required"`
	Name           string  `json:"name"`
	Region         string  `json:"region"`
	Population     float64 `json:"population" validate:"min=0"`
	UrbanRatio     float64 `json:"urban_ratio"`
	AvgSalary      float64 `json:"avg_salary"`
	Unemployment95 float64 `json:"unemployment_95"`
	Unemployment96 float64 `json:"unemployment_96"`
	Entrepreneurs  float64 `json:"entrepreneurs_per_1000"`
	Crimes95       float64 `json:"crimes_95"`
	Crimes96       float64 `json:"crimes_96"`
}

// CardType is the product tier of an issued card. Only presence of a
// card matters for the features; the tier is kept for completeness.
type CardType string

const (
	CardTypeJunior  CardType = "junior"
	CardTypeClassic CardType = "classic"
	CardTypeGold    CardType = "gold"
)

// Card represents a payment card issued against a disposition. The
// source carries the issuance moment with a time-of-day part that is
// always midnight; only the calendar date is kept.
type Card struct {
	ID     int       `json:"card_id" validate:"required"`
	DispID int       `json:"disp_id" validate:"required"`
	Type   CardType  `json:"type"`
	Issued time.Time `json:"issued"`
}

// IssuedBefore reports whether the card existed strictly before the
// given date. A card issued on the same day does not count.
func (c Card) IssuedBefore(t time.Time) bool {
	return c.Issued.Before(t)
}

// Transaction represents a single account transaction. Amount is the
// unsigned magnitude from the source; Type carries the credit/debit
// direction.
type Transaction struct {
	ID        int       `json:"trans_id" validate:"required"`
	AccountID int       `json:"account_id" validate:"required"`
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Operation string    `json:"operation"`
	Amount    float64   `json:"amount"`
	Balance   float64   `json:"balance"`
	KSymbol   string    `json:"k_symbol"`
	Bank      string    `json:"bank"`
	Account   string    `json:"account"`
}

// transaction direction codes in the source extract
const (
	txTypeCredit     = "PRIJEM"
	txTypeWithdrawal = "VYDAJ"
)

// SignedAmount returns the amount with the debit direction applied:
// negative for withdrawals, positive otherwise.
func (t Transaction) SignedAmount() float64 {
	if t.Type == txTypeWithdrawal {
		return -t.Amount
	}
	return t.Amount
}

// Order represents a standing payment order. Orders are loaded and
// validated with the rest of the extract but contribute no features.
type Order struct {
	ID        int     `json:"order_id" validate:"required"`
	AccountID int     `json:"account_id" validate:"required"`
	BankTo    string  `json:"bank_to"`
	AccountTo string  `json:"account_to"`
	Amount    float64 `json:"amount"`
	KSymbol   string  `json:"k_symbol"`
}
