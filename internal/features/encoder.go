package features

import (
	"log/slog"
	"math"
	"sort"

	"loanrisk/internal/dataset"
	"loanrisk/pkg/contracts/domain"
)

// daysPerYear converts day differences to fractional years.
const daysPerYear = 365.25

// Encoder derives the static per-loan feature vector from the static
// join and collapses disposition-level rows to one row per loan.
type Encoder struct {
	logger   *slog.Logger
	warnings *dataset.Warnings
}

// NewEncoder creates an encoder; warnings receives per-row derivation
// anomalies (negative ages, undecodable birth numbers).
func NewEncoder(logger *slog.Logger, warnings *dataset.Warnings) *Encoder {
	if logger == nil {
		logger = slog.Default()
	}
	if warnings == nil {
		warnings = dataset.NewWarnings(logger)
	}
	return &Encoder{logger: logger, warnings: warnings}
}

// dispositionFeatures is the per-(loan, disposition) derived vector
// before aggregation. Missing inputs yield NaN, which the mean skips.
type dispositionFeatures struct {
	gender     float64
	applAge    float64
	accntAge   float64
	card       float64
	freqTrans  float64
	freqWeekly float64

	population   float64
	urbanRatio   float64
	avgSalary    float64
	entrepRate   float64
	unemployment float64
	crimeRate    float64

	hasDisposition bool
	isOwner        bool
}

// EncodeLoans derives the loan feature table from the static join.
// Rows without a loan (pure outer-join remnants) are discarded here;
// every remaining loan produces exactly one output row, sorted by loan
// identifier, with a non-null target.
func (e *Encoder) EncodeLoans(rows []StaticJoinRow) []domain.LoanFeatures {
	groups := make(map[int]*loanGroup)

	for _, row := range rows {
		if row.Loan == nil {
			continue
		}
		g := groups[row.Loan.ID]
		if g == nil {
			g = &loanGroup{loan: row.Loan}
			groups[row.Loan.ID] = g
		}
		g.rows = append(g.rows, e.deriveRow(row))
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	features := make([]domain.LoanFeatures, 0, len(ids))
	for _, id := range ids {
		features = append(features, e.aggregate(groups[id]))
	}

	e.logger.Info("loan features encoded", slog.Int("loans", len(features)))

	return features
}

// deriveRow computes the per-disposition derived vector for one static
// join row. Derivations are independent of each other and of row
// order.
func (e *Encoder) deriveRow(row StaticJoinRow) dispositionFeatures {
	loan := row.Loan
	d := dispositionFeatures{
		gender:       math.NaN(),
		applAge:      math.NaN(),
		accntAge:     math.NaN(),
		population:   math.NaN(),
		urbanRatio:   math.NaN(),
		avgSalary:    math.NaN(),
		entrepRate:   math.NaN(),
		unemployment: math.NaN(),
		crimeRate:    math.NaN(),
	}

	if row.Client != nil {
		d.gender = float64(row.Client.Gender())
		if birth, err := row.Client.BirthDate(); err == nil {
			d.applAge = loan.Date.Sub(birth).Hours() / 24 / daysPerYear
			if d.applAge < 0 {
				e.warnings.Record(dataset.WarnNegativeAge, "applicant age negative",
					slog.Int("loan_id", loan.ID),
					slog.Int("client_id", row.Client.ID))
			}
		} else {
			e.warnings.Record(dataset.WarnInvalidBirthNumber, "birth number not decodable",
				slog.Int("client_id", row.Client.ID),
				slog.Int("birth_number", row.Client.BirthNumber))
		}
	}

	if row.Account != nil {
		d.accntAge = loan.Date.Sub(row.Account.Date).Hours() / 24 / daysPerYear
		if d.accntAge < 0 {
			e.warnings.Record(dataset.WarnNegativeAge, "account age negative",
				slog.Int("loan_id", loan.ID),
				slog.Int("account_id", row.Account.ID))
		}
		// Statement frequency dummies with the monthly reference
		// category dropped.
		if row.Account.Frequency == domain.FrequencyPerTransaction {
			d.freqTrans = 1
		}
		if row.Account.Frequency == domain.FrequencyWeekly {
			d.freqWeekly = 1
		}
	}

	// A card counts only when issued strictly before the loan date.
	if row.Card != nil && row.Card.IssuedBefore(loan.Date) {
		d.card = 1
	}

	if row.District != nil {
		dist := row.District
		d.population = dist.Population
		d.urbanRatio = dist.UrbanRatio
		d.avgSalary = dist.AvgSalary
		if dist.Population > 0 {
			d.entrepRate = dist.Entrepreneurs / dist.Population * 100
		}

		// The two-year demographic columns are selected by the loan
		// issuance year, and crime counts are normalized to a rate.
		unemployment, crimes := dist.Unemployment95, dist.Crimes95
		if loan.Date.Year() >= 1997 {
			unemployment, crimes = dist.Unemployment96, dist.Crimes96
		}
		d.unemployment = unemployment
		if dist.Population > 0 {
			d.crimeRate = crimes / dist.Population
		}
	}

	if row.Disposition != nil {
		d.hasDisposition = true
		d.isOwner = row.Disposition.Type == domain.DispositionOwner
	}

	return d
}

// aggregate collapses the disposition-level rows of one loan into a
// single feature row by averaging the derived numeric columns across
// joint account holders. Averaging is a documented simplification:
// most accounts have a single owner.
func (e *Encoder) aggregate(g *loanGroup) domain.LoanFeatures {
	loan := g.loan

	f := domain.LoanFeatures{
		LoanID:   loan.ID,
		Amount:   loan.Amount,
		Duration: float64(loan.Duration),
		Payments: loan.Payments,
		Target:   loan.Target(),
	}

	f.Gender = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.gender }))
	f.ApplicantAge = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.applAge }))
	f.AccountAge = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.accntAge }))
	f.Card = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.card }))
	f.FreqTrans = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.freqTrans }))
	f.FreqWeekly = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.freqWeekly }))
	f.Population = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.population }))
	f.UrbanRatio = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.urbanRatio }))
	f.AvgSalary = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.avgSalary }))
	f.EntrepRate = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.entrepRate }))
	f.Unemployment = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.unemployment }))
	f.CrimeRate = nanMean(collect(g.rows, func(d dispositionFeatures) float64 { return d.crimeRate }))

	// Multi-holder flag: any non-owner disposition makes the averaged
	// owner indicator fall below 1. A loan with no dispositions at all
	// has no additional holders.
	dispCount, ownerCount := 0, 0
	for _, d := range g.rows {
		if d.hasDisposition {
			dispCount++
			if d.isOwner {
				ownerCount++
			}
		}
	}
	if dispCount > 0 && ownerCount < dispCount {
		f.Multi = 1
	}

	return f
}

// loanGroup accumulates the disposition-level rows of one loan.
type loanGroup struct {
	loan *domain.Loan
	rows []dispositionFeatures
}

// collect extracts one derived column from the group rows.
func collect(rows []dispositionFeatures, get func(dispositionFeatures) float64) []float64 {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = get(r)
	}
	return vals
}

// nanMean averages the non-NaN values; all-NaN input yields NaN.
func nanMean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
