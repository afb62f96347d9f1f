// Package catalogfile reads the reference table of known eclipsing
// binaries from a CSV or XLSX file.
package catalogfile

import (
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"lightlab/domain/catalog"
	"lightlab/domain/core"
	"lightlab/internal/errors"
)

// Required source columns.
const (
	columnIdentifier = "KIC"
	columnPeriod     = "Porb"
)

// Reader handles reading catalog files in CSV or XLSX form; the file
// extension decides.
type Reader struct{}

// NewReader creates a catalog reader.
func NewReader() *Reader {
	return &Reader{}
}

// Load reads the reference table at path. Rows whose identifier or
// period cell does not parse are skipped with a log line, matching how
// a tabular import treats stray rows. Missing file and missing
// required columns are fatal, per the startup error taxonomy.
func (r *Reader) Load(path string) (catalog.Catalog, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return catalog.Catalog{}, errors.ResourceNotFound(path)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return catalog.Catalog{}, err
	}
	if len(rows) < 1 {
		return catalog.Catalog{}, errors.SchemaError("catalog file has no header row")
	}

	idCol, periodCol := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case columnIdentifier:
			idCol = i
		case columnPeriod:
			periodCol = i
		}
	}
	if idCol < 0 {
		return catalog.Catalog{}, errors.SchemaError("catalog file missing column " + columnIdentifier)
	}
	if periodCol < 0 {
		return catalog.Catalog{}, errors.SchemaError("catalog file missing column " + columnPeriod)
	}

	entries := make([]catalog.Entry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if idCol >= len(row) || periodCol >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[idCol])
		if id == "" {
			continue
		}
		porb, err := strconv.ParseFloat(strings.TrimSpace(row[periodCol]), 64)
		if err != nil {
			log.Printf("[CatalogReader] skipping row %d: bad %s value %q", n+2, columnPeriod, row[periodCol])
			continue
		}
		entries = append(entries, catalog.Entry{
			Identifier: core.TargetID(id),
			Porb:       porb,
		})
	}

	log.Printf("[CatalogReader] loaded %d entries from %s", len(entries), path)
	return catalog.New(entries), nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalog file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeSchemaError, err)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.SchemaError("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.WithCode(errors.CodeSchemaError, err)
	}
	return rows, nil
}
