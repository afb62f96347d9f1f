package catalogfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lightlab/internal/errors"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeTempCSV(t, "KIC,Porb,Kmag\n8758161,3.5,12.1\n5632781,0.8,13.0\n7368103,14.2,11.4\n")

	r := NewReader()
	cat, err := r.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, []string{"8758161", "5632781"}, cat.Identifiers())
}

func TestLoad_SkipsUnparseableRows(t *testing.T) {
	path := writeTempCSV(t, "KIC,Porb\n8758161,3.5\n,1.0\n5632781,not-a-number\n")

	cat, err := NewReader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewReader().Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeResourceNotFound, errors.GetCode(err))
}

func TestLoad_MissingRequiredColumn(t *testing.T) {
	path := writeTempCSV(t, "KIC,Period\n8758161,3.5\n")

	_, err := NewReader().Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaError, errors.GetCode(err))
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"KIC", "Porb"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"8758161", 3.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"7368103", 14.2}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cat, err := NewReader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"8758161"}, cat.Identifiers())
}
