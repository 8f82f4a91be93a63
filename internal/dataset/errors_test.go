package dataset

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMalformedInputError(t *testing.T) {
	cause := errors.New("strconv failure")
	err := newMalformedInput("loan.asc", 12, "date", "unparseable YYMMDD date", cause)

	assert.Contains(t, err.Error(), "loan.asc")
	assert.Contains(t, err.Error(), "line 12")
	assert.Contains(t, err.Error(), "date")
	assert.ErrorIs(t, err, cause)
}

func TestMalformedInputErrorWithoutLine(t *testing.T) {
	err := newMalformedInput("trans.asc", 0, "", "unreadable delimited file", nil)

	assert.Contains(t, err.Error(), "trans.asc")
	assert.NotContains(t, err.Error(), "line")
}

func TestIsMalformedInput(t *testing.T) {
	inner := newMalformedInput("card.asc", 3, "issued", "unparseable issuance date", nil)
	wrapped := fmt.Errorf("loading extract: %w", inner)

	assert.True(t, IsMalformedInput(inner))
	assert.True(t, IsMalformedInput(wrapped))
	assert.False(t, IsMalformedInput(errors.New("plain")))
}

func TestWarningsCounts(t *testing.T) {
	w := NewWarnings(nil)

	w.Record(WarnNegativeAge, "applicant age negative")
	w.Record(WarnNegativeAge, "account age negative")
	w.Record(WarnMissingDemographic, "demographic value unavailable")

	assert.Equal(t, 2, w.Count(WarnNegativeAge))
	assert.Equal(t, 1, w.Count(WarnMissingDemographic))
	assert.Equal(t, 0, w.Count(WarnUnmappedCategory))
	assert.Equal(t, 3, w.Total())

	// Summary emission is just logging; it must not panic on an empty
	// or populated collector.
	w.LogSummary()
	NewWarnings(nil).LogSummary()
}
