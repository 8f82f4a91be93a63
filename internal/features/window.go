package features

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"loanrisk/pkg/contracts/domain"
)

// Window selects transactions by their day offset before loan issuance.
// A transaction with offset d (issuance date minus transaction date, in
// whole days) falls in the window when MinDays <= d < MaxDays. The
// half-open bound makes adjacent windows partition the history: counts
// over [0, min) and [min, max) add up to the count over [0, max).
type Window struct {
	MinDays int
	MaxDays int
}

// Contains reports whether the offset falls inside the window.
func (w Window) Contains(offsetDays int) bool {
	return offsetDays >= w.MinDays && offsetDays < w.MaxDays
}

// offsetDays computes the whole-day offset of a transaction before the
// loan issuance date. Dates carry no time-of-day component, so the
// division is exact.
func offsetDays(loanDate, txDate time.Time) int {
	return int(loanDate.Sub(txDate).Hours() / 24)
}

// Aggregator computes per-loan transaction summaries over a day-offset
// window.
type Aggregator struct {
	logger *slog.Logger
	window Window
}

// NewAggregator creates an aggregator for the given window.
func NewAggregator(logger *slog.Logger, window Window) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger, window: window}
}

// Aggregate computes one summary row per loan with at least one
// transaction inside the window. Loans with an empty window produce no
// row; the table assembly fills their columns with missing values.
func (a *Aggregator) Aggregate(events []ClassifiedTransaction) []domain.WindowAggregate {
	byLoan := make(map[int][]ClassifiedTransaction)
	for _, ev := range events {
		if !a.window.Contains(offsetDays(ev.LoanDate, ev.Date)) {
			continue
		}
		byLoan[ev.LoanID] = append(byLoan[ev.LoanID], ev)
	}

	ids := make([]int, 0, len(byLoan))
	for id := range byLoan {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]domain.WindowAggregate, 0, len(ids))
	for _, id := range ids {
		out = append(out, a.aggregateLoan(id, byLoan[id]))
	}

	a.logger.Info("window aggregated",
		slog.Int("min_days", a.window.MinDays),
		slog.Int("max_days", a.window.MaxDays),
		slog.Int("loans", len(out)))

	return out
}

// aggregateLoan summarizes the window transactions of one loan. The
// balance envelope includes the reconstructed balance immediately
// before the earliest window transaction, so an account that went
// negative and recovered within a single posting is still flagged.
func (a *Aggregator) aggregateLoan(loanID int, txs []ClassifiedTransaction) domain.WindowAggregate {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].TxID < txs[j].TxID
	})

	agg := domain.WindowAggregate{
		LoanID:          loanID,
		Transactions:    len(txs),
		MaxInterestRate: math.NaN(),
	}

	balanceStart := txs[0].Balance - txs[0].SignedAmount
	agg.BalanceMin = balanceStart
	agg.BalanceMax = balanceStart

	sum := 0.0
	netTransferMax := math.Inf(-1)
	for _, tx := range txs {
		agg.BalanceMin = math.Min(agg.BalanceMin, tx.Balance)
		agg.BalanceMax = math.Max(agg.BalanceMax, tx.Balance)
		sum += tx.Balance

		if tx.CashDeposit {
			agg.CashDeposits++
			agg.NetCashFlow += tx.Amount
		}
		if tx.Withdrawal {
			agg.Withdrawals++
			agg.NetCashFlow -= tx.Amount
		}
		if tx.Sanction {
			agg.SanctionMax = 1
		}

		transfer := 0.0
		if tx.CollectionDeposit {
			transfer += tx.Amount
		}
		if tx.BankWithdrawal {
			transfer -= tx.Amount
		}
		agg.NetTransferFlow += transfer
		netTransferMax = math.Max(netTransferMax, transfer)

		if tx.Interest {
			denom := tx.Balance - tx.Amount
			if denom != 0 {
				rate := tx.Amount / denom
				if math.IsNaN(agg.MaxInterestRate) || rate > agg.MaxInterestRate {
					agg.MaxInterestRate = rate
				}
			}
		}
	}
	agg.BalanceMean = sum / float64(len(txs))
	agg.NetTransferMax = netTransferMax
	if agg.BalanceMin < 0 {
		agg.NegativeBalance = 1
	}

	return agg
}
