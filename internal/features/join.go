// Package features turns the loaded entity relations into the final
// loan-level feature table: a static outer-join chain, per-loan feature
// encoding, transaction classification, windowed aggregation and the
// final assembly.
package features

import (
	"log/slog"

	"loanrisk/internal/dataset"
	"loanrisk/pkg/contracts/domain"
)

// StaticJoinRow is one denormalized row of the static join: loan with
// its account, one disposition with its client, the client's district
// and the disposition's card. Any side of a join may be nil — missing
// card, district or client data is "absent", never an error. Field
// names disambiguate the column collisions of the flat form (the
// date_loan/date_acnt suffix policy of the exported table).
type StaticJoinRow struct {
	Loan        *domain.Loan
	Account     *domain.Account
	Disposition *domain.Disposition
	Client      *domain.Client
	District    *domain.District
	Card        *domain.Card
}

// accountID returns the join key for the disposition step, preferring
// the account side of the loan/account join.
func (r StaticJoinRow) accountID() (int, bool) {
	if r.Account != nil {
		return r.Account.ID, true
	}
	if r.Loan != nil {
		return r.Loan.AccountID, true
	}
	return 0, false
}

// BuildStaticJoin performs the outer-join chain
// loan ⟗ account ⟗ disposition ⟗ client ⟗ district ⟗ card.
// Rows with no match on either side are preserved with nil columns.
// Row order is deterministic: left-side input order first, then
// unmatched right-side rows in their input order.
func BuildStaticJoin(ds *dataset.Dataset, logger *slog.Logger) []StaticJoinRow {
	if logger == nil {
		logger = slog.Default()
	}

	// loan ⟗ account on account id
	accountsByID := make(map[int]*domain.Account, len(ds.Accounts))
	for i := range ds.Accounts {
		accountsByID[ds.Accounts[i].ID] = &ds.Accounts[i]
	}
	rows := make([]StaticJoinRow, 0, len(ds.Loans))
	matchedAccounts := make(map[int]bool, len(ds.Loans))
	for i := range ds.Loans {
		loan := &ds.Loans[i]
		acct := accountsByID[loan.AccountID]
		if acct != nil {
			matchedAccounts[acct.ID] = true
		}
		rows = append(rows, StaticJoinRow{Loan: loan, Account: acct})
	}
	for i := range ds.Accounts {
		if !matchedAccounts[ds.Accounts[i].ID] {
			rows = append(rows, StaticJoinRow{Account: &ds.Accounts[i]})
		}
	}

	// ⟗ disposition on account id; one output row per disposition
	dispsByAccount := make(map[int][]*domain.Disposition)
	for i := range ds.Dispositions {
		d := &ds.Dispositions[i]
		dispsByAccount[d.AccountID] = append(dispsByAccount[d.AccountID], d)
	}
	joined := make([]StaticJoinRow, 0, len(rows))
	matchedDisps := make(map[int]bool)
	for _, row := range rows {
		key, ok := row.accountID()
		if !ok {
			joined = append(joined, row)
			continue
		}
		disps := dispsByAccount[key]
		if len(disps) == 0 {
			joined = append(joined, row)
			continue
		}
		for _, d := range disps {
			matchedDisps[d.ID] = true
			r := row
			r.Disposition = d
			joined = append(joined, r)
		}
	}
	for i := range ds.Dispositions {
		if !matchedDisps[ds.Dispositions[i].ID] {
			joined = append(joined, StaticJoinRow{Disposition: &ds.Dispositions[i]})
		}
	}
	rows = joined

	// ⟗ client on client id
	clientsByID := make(map[int]*domain.Client, len(ds.Clients))
	for i := range ds.Clients {
		clientsByID[ds.Clients[i].ID] = &ds.Clients[i]
	}
	matchedClients := make(map[int]bool)
	for i := range rows {
		if rows[i].Disposition == nil {
			continue
		}
		if c := clientsByID[rows[i].Disposition.ClientID]; c != nil {
			rows[i].Client = c
			matchedClients[c.ID] = true
		}
	}
	for i := range ds.Clients {
		if !matchedClients[ds.Clients[i].ID] {
			rows = append(rows, StaticJoinRow{Client: &ds.Clients[i]})
		}
	}

	// ⟗ district through the client's district id
	districtsByID := make(map[int]*domain.District, len(ds.Districts))
	for i := range ds.Districts {
		districtsByID[ds.Districts[i].ID] = &ds.Districts[i]
	}
	matchedDistricts := make(map[int]bool)
	for i := range rows {
		if rows[i].Client == nil {
			continue
		}
		if d := districtsByID[rows[i].Client.DistrictID]; d != nil {
			rows[i].District = d
			matchedDistricts[d.ID] = true
		}
	}
	for i := range ds.Districts {
		if !matchedDistricts[ds.Districts[i].ID] {
			rows = append(rows, StaticJoinRow{District: &ds.Districts[i]})
		}
	}

	// ⟗ card on disposition id; a disposition with several cards fans
	// out like the disposition step does
	cardsByDisp := make(map[int][]*domain.Card, len(ds.Cards))
	for i := range ds.Cards {
		c := &ds.Cards[i]
		cardsByDisp[c.DispID] = append(cardsByDisp[c.DispID], c)
	}
	withCards := make([]StaticJoinRow, 0, len(rows))
	matchedCards := make(map[int]bool)
	for _, row := range rows {
		if row.Disposition == nil {
			withCards = append(withCards, row)
			continue
		}
		cards := cardsByDisp[row.Disposition.ID]
		if len(cards) == 0 {
			withCards = append(withCards, row)
			continue
		}
		for _, c := range cards {
			matchedCards[c.ID] = true
			r := row
			r.Card = c
			withCards = append(withCards, r)
		}
	}
	for i := range ds.Cards {
		if !matchedCards[ds.Cards[i].ID] {
			withCards = append(withCards, StaticJoinRow{Card: &ds.Cards[i]})
		}
	}
	rows = withCards

	logger.Debug("static join built",
		slog.Int("rows", len(rows)),
		slog.Int("loans", len(ds.Loans)))

	return rows
}
