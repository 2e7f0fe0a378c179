package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestWorkbook(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)

	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().Value = v
		}
	}

	path := filepath.Join(t.TempDir(), "providers.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestImportXLSX(t *testing.T) {
	path := writeTestWorkbook(t, "Working", [][]string{
		{"RACS Code", "Provider Name", "Suburb", "Postal Code", "Latitude", "Longitude", "Overall Star Rating"},
		{"0001A", "Harbourview Lodge", "Neutral Bay", "2089", "-33.8381", "151.2230", "4.2"},
		{"0002B", "Gumtree Gardens", "Mosman", "2088", "", "", ""},
		{"", "row without racs code is skipped", "", "", "", "", ""},
	})

	providers, err := ImportXLSX(path, ImportOptions{SheetName: "Working"})
	require.NoError(t, err)
	require.Len(t, providers, 2)

	assert.Equal(t, "racs_0001a", providers[0].ProviderID)
	assert.Equal(t, "Harbourview Lodge", providers[0].Name)
	assert.Equal(t, "2089", providers[0].Postcode)
	require.NotNil(t, providers[0].Lat)
	assert.InDelta(t, -33.8381, *providers[0].Lat, 1e-6)
	require.NotNil(t, providers[0].StarOverall)
	assert.InDelta(t, 4.2, *providers[0].StarOverall, 1e-6)

	assert.Equal(t, "racs_0002b", providers[1].ProviderID)
	assert.Nil(t, providers[1].Lat)
	assert.Nil(t, providers[1].StarOverall)
}

func TestImportXLSXHeaderAliases(t *testing.T) {
	path := writeTestWorkbook(t, "Sheet1", [][]string{
		{"RACS", "Name", "Lat", "Lng"},
		{"9Z", "Banksia House", "-33.9", "151.1"},
	})

	providers, err := ImportXLSX(path, ImportOptions{})
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "racs_9z", providers[0].ProviderID)
	require.NotNil(t, providers[0].Lng)
	assert.InDelta(t, 151.1, *providers[0].Lng, 1e-6)
}

func TestImportXLSXMissingSheet(t *testing.T) {
	path := writeTestWorkbook(t, "Sheet1", [][]string{{"RACS Code"}})

	_, err := ImportXLSX(path, ImportOptions{SheetName: "Nope"})
	assert.Error(t, err)
}

func TestImportXLSXNoRACSColumn(t *testing.T) {
	path := writeTestWorkbook(t, "Sheet1", [][]string{
		{"Provider Name", "Suburb"},
		{"Harbourview Lodge", "Neutral Bay"},
	})

	_, err := ImportXLSX(path, ImportOptions{})
	assert.Error(t, err)
}
