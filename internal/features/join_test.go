package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrisk/internal/dataset"
	"loanrisk/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildStaticJoinFanOut(t *testing.T) {
	ds := &dataset.Dataset{
		Loans: []domain.Loan{
			{ID: 5000, AccountID: 10, Date: date(1997, time.March, 1), Status: domain.LoanStatusFinishedPaid},
		},
		Accounts: []domain.Account{
			{ID: 10, DistrictID: 5, Date: date(1993, time.January, 1)},
		},
		Dispositions: []domain.Disposition{
			{ID: 100, ClientID: 1, AccountID: 10, Type: domain.DispositionOwner},
			{ID: 101, ClientID: 2, AccountID: 10, Type: domain.DispositionDisponent},
		},
		Clients: []domain.Client{
			{ID: 1, BirthNumber: 751225, DistrictID: 5},
			{ID: 2, BirthNumber: 757505, DistrictID: 5},
		},
		Districts: []domain.District{
			{ID: 5, Population: 95616},
		},
		Cards: []domain.Card{
			{ID: 700, DispID: 100, Issued: date(1996, time.February, 15)},
		},
	}

	rows := BuildStaticJoin(ds, nil)

	// One row per disposition of the loan's account.
	var loanRows []StaticJoinRow
	for _, r := range rows {
		if r.Loan != nil {
			loanRows = append(loanRows, r)
		}
	}
	require.Len(t, loanRows, 2)

	owner := loanRows[0]
	require.NotNil(t, owner.Account)
	require.NotNil(t, owner.Disposition)
	require.NotNil(t, owner.Client)
	require.NotNil(t, owner.District)
	require.NotNil(t, owner.Card)
	assert.Equal(t, 1, owner.Client.ID)
	assert.Equal(t, 5, owner.District.ID)

	disponent := loanRows[1]
	assert.Equal(t, 2, disponent.Client.ID)
	assert.Nil(t, disponent.Card)
}

func TestBuildStaticJoinMultipleCardsFanOut(t *testing.T) {
	ds := &dataset.Dataset{
		Loans: []domain.Loan{
			{ID: 5000, AccountID: 10, Date: date(1997, time.March, 1), Status: domain.LoanStatusFinishedPaid},
		},
		Accounts: []domain.Account{
			{ID: 10, DistrictID: 5, Date: date(1993, time.January, 1)},
		},
		Dispositions: []domain.Disposition{
			{ID: 100, ClientID: 1, AccountID: 10, Type: domain.DispositionOwner},
		},
		Cards: []domain.Card{
			{ID: 700, DispID: 100, Issued: date(1995, time.June, 1)},
			{ID: 701, DispID: 100, Issued: date(1996, time.February, 15)},
		},
	}

	rows := BuildStaticJoin(ds, nil)

	// One output row per card of the disposition, both carrying the
	// loan; neither card falls out as an orphan.
	var cardIDs []int
	for _, r := range rows {
		if r.Loan != nil {
			require.NotNil(t, r.Card)
			cardIDs = append(cardIDs, r.Card.ID)
		} else {
			assert.Nil(t, r.Card)
		}
	}
	assert.Equal(t, []int{700, 701}, cardIDs)
}

func TestBuildStaticJoinPreservesUnmatched(t *testing.T) {
	ds := &dataset.Dataset{
		Loans: []domain.Loan{
			{ID: 5000, AccountID: 99, Date: date(1997, time.March, 1), Status: domain.LoanStatusFinishedPaid},
		},
		Accounts: []domain.Account{
			{ID: 10, DistrictID: 5, Date: date(1993, time.January, 1)},
		},
		Clients: []domain.Client{
			{ID: 1, BirthNumber: 751225, DistrictID: 5},
		},
	}

	rows := BuildStaticJoin(ds, nil)

	// The loan with no account, the orphan account and the orphan
	// client all survive the outer join.
	var loanOnly, accountOnly, clientOnly int
	for _, r := range rows {
		switch {
		case r.Loan != nil && r.Account == nil:
			loanOnly++
		case r.Loan == nil && r.Account != nil:
			accountOnly++
		case r.Loan == nil && r.Account == nil && r.Client != nil:
			clientOnly++
		}
	}
	assert.Equal(t, 1, loanOnly)
	assert.Equal(t, 1, accountOnly)
	assert.Equal(t, 1, clientOnly)
}

func TestBuildStaticJoinDeterministicOrder(t *testing.T) {
	ds := &dataset.Dataset{
		Loans: []domain.Loan{
			{ID: 5001, AccountID: 11, Date: date(1997, time.March, 1), Status: domain.LoanStatusFinishedPaid},
			{ID: 5000, AccountID: 10, Date: date(1997, time.March, 1), Status: domain.LoanStatusFinishedPaid},
		},
		Accounts: []domain.Account{
			{ID: 10, Date: date(1993, time.January, 1)},
			{ID: 11, Date: date(1993, time.January, 1)},
		},
	}

	first := BuildStaticJoin(ds, nil)
	second := BuildStaticJoin(ds, nil)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Loan, second[i].Loan)
		assert.Equal(t, first[i].Account, second[i].Account)
	}
	// Left-side input order is preserved.
	assert.Equal(t, 5001, first[0].Loan.ID)
	assert.Equal(t, 5000, first[1].Loan.ID)
}
