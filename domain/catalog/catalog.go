package catalog

import (
	"lightlab/domain/core"
)

// ShortPeriodCutoff limits the selectable set to close binaries; the
// reference table carries wider systems whose folded curves are not
// useful at long cadence.
const ShortPeriodCutoff = 10.0

// QueryPrefix turns a raw identifier into the canonical archive query
// string.
const QueryPrefix = "KIC "

// Entry is one reference-table row: a target identifier and its
// literature orbital period in days.
type Entry struct {
	Identifier core.TargetID
	// Porb is the literature orbital period in days.
	Porb float64
}

// Catalog is the immutable reference table loaded once at startup.
// Lookups run over every row; the selectable identifier list is the
// short-period subset in original row order, duplicates preserved.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from loaded rows. Rows are copied; the catalog
// never changes afterwards.
func New(entries []Entry) Catalog {
	return Catalog{entries: append([]Entry(nil), entries...)}
}

// Len returns the total number of rows.
func (c Catalog) Len() int { return len(c.entries) }

// Identifiers returns the selectable identifier list: rows with
// Porb < ShortPeriodCutoff as strings, preserving source order. No
// dedup: the source behavior is kept.
func (c Catalog) Identifiers() []string {
	ids := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Porb < ShortPeriodCutoff {
			ids = append(ids, e.Identifier.String())
		}
	}
	return ids
}

// Resolution is the outcome of resolving a user-entered identifier.
type Resolution struct {
	// Query is the canonical archive query string.
	Query string
	// LiteraturePeriod is the matching entry's orbital period in days.
	// Only meaningful when HasLiterature is true.
	LiteraturePeriod float64
	// HasLiterature reports whether the identifier matched a catalog
	// row. An absent identifier is not an error: the figure simply
	// omits its literature line.
	HasLiterature bool
}

// Resolve maps an identifier to its canonical query string and, when
// the identifier appears in the table, the literature period. Lookup
// runs over the full unfiltered table. If several rows share the
// identifier the first row wins; the table is ordered, so this is
// deterministic.
func (c Catalog) Resolve(id core.TargetID) Resolution {
	res := Resolution{Query: QueryPrefix + id.String()}
	for _, e := range c.entries {
		if e.Identifier == id {
			res.LiteraturePeriod = e.Porb
			res.HasLiterature = true
			break
		}
	}
	return res
}
