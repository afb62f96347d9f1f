package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lightlab/domain/core"
)

func sampleCatalog() Catalog {
	return New([]Entry{
		{Identifier: "8758161", Porb: 3.5},
		{Identifier: "5632781", Porb: 0.8},
		{Identifier: "7368103", Porb: 14.2},
		{Identifier: "5632781", Porb: 2.1}, // duplicate row, later period
		{Identifier: "9851944", Porb: 9.99},
	})
}

func TestIdentifiers_ShortPeriodSubsetInOrder(t *testing.T) {
	c := sampleCatalog()

	// Only Porb < 10 survives; order and duplicates are preserved.
	assert.Equal(t,
		[]string{"8758161", "5632781", "5632781", "9851944"},
		c.Identifiers())
}

func TestResolve_KnownIdentifier(t *testing.T) {
	c := sampleCatalog()

	res := c.Resolve(core.TargetID("8758161"))
	assert.Equal(t, "KIC 8758161", res.Query)
	assert.True(t, res.HasLiterature)
	assert.InDelta(t, 3.5, res.LiteraturePeriod, 1e-12)
}

func TestResolve_UnknownIdentifierStillQueries(t *testing.T) {
	c := sampleCatalog()

	res := c.Resolve(core.TargetID("999999999"))
	assert.Equal(t, "KIC 999999999", res.Query)
	assert.False(t, res.HasLiterature)
}

func TestResolve_LongPeriodRowsStillResolve(t *testing.T) {
	// Rows filtered out of the selectable list still resolve; the
	// cutoff only shapes the dropdown, not the lookup.
	res := sampleCatalog().Resolve(core.TargetID("7368103"))
	assert.True(t, res.HasLiterature)
	assert.InDelta(t, 14.2, res.LiteraturePeriod, 1e-12)
}

func TestResolve_DuplicateTakesFirstRow(t *testing.T) {
	res := sampleCatalog().Resolve(core.TargetID("5632781"))
	assert.True(t, res.HasLiterature)
	assert.InDelta(t, 0.8, res.LiteraturePeriod, 1e-12)
}

func TestNew_CopiesInput(t *testing.T) {
	rows := []Entry{{Identifier: "1", Porb: 1}}
	c := New(rows)
	rows[0].Porb = 99

	res := c.Resolve(core.TargetID("1"))
	assert.InDelta(t, 1.0, res.LiteraturePeriod, 1e-12)
}
