package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func writeXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Artikelliste.xlsx")
	writeXLSX(t, path, [][]any{
		{"Artikel Nr.", "EAN", "Hersteller", "Serie", "Typ", "Größe", "Variante"},
		{"V-100", "4015211000001", "Viega", "Sanpress", "Kupferrohr", "22x1", "Hartkupfer"},
		{"V-200", "", "Viega", "Sanpress", "Bogen 90°", "22", "2316"},
	})

	idx, err := Load(path, 1)
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())
	require.Equal(t, "Viega Sanpress Kupferrohr 22x1 Hartkupfer", idx.Entries[0].Description)
	require.Equal(t, "4015211000001", idx.Entries[0].EAN)
	require.Equal(t, "Viega Sanpress Bogen 90° 22 2316", idx.Entries[1].Description)
}

func TestLoadXLSXMissingArticleColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	writeXLSX(t, path, [][]any{
		{"Nummer", "Hersteller"},
		{"1", "Viega"},
	})

	_, err := Load(path, 1)
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSVWindows1252(t *testing.T) {
	text := "Artikel Nr.;EAN;Hersteller;Serie;Typ;Größe;Variante\n" +
		"G-1;;Geberit;HT;Rohr;DN50;500mm\n" +
		"G-2;;Geberit;HT;Bogen;DN50;87° Stück\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(text)
	require.NoError(t, err)

	table, err := ReadAnyRows(strings.NewReader(encoded), "list.csv", 1)
	require.NoError(t, err)
	require.True(t, table.HasColumn("größe"))
	require.Len(t, table.Rows, 2)
	require.Equal(t, "DN50", table.Rows[1]["größe"])
}

func TestReadCSVHeaderRow(t *testing.T) {
	text := "Export 2024\nartikel nr.,hersteller\nA-1,Grohe\n,\n"
	table, err := ReadAnyRows(bytes.NewBufferString(text), "list.csv", 2)
	require.NoError(t, err)
	require.Equal(t, []string{"artikel nr.", "hersteller"}, table.Headers)
	require.Len(t, table.Rows, 1)
}

func TestReadUnsupported(t *testing.T) {
	_, err := ReadAnyRows(bytes.NewBufferString(""), "list.ods", 1)
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("want ErrUnsupportedSource, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"), 1)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadXLS(t *testing.T) {
	table, err := ReadRows(filepath.Join("testdata", "Artikelliste.xls"), 1)
	require.NoError(t, err)
	require.Equal(t, []string{"artikel nr.", "ean", "hersteller", "serie", "typ", "größe", "variante"}, table.Headers)
	require.Len(t, table.Rows, 3)
	require.Equal(t, "2316-22", table.Rows[1]["artikel nr."])
	require.Equal(t, "Bogen 90°", table.Rows[1]["typ"])
	require.Empty(t, table.Rows[1]["ean"])

	idx, err := BuildIndex(table)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())
	require.Equal(t, "Viega Sanpress Kupferrohr 22x1 Hartkupfer", idx.Entries[0].Description)
	require.Equal(t, "4015211102083", idx.Entries[0].EAN)
	require.Equal(t, "Geberit HT Rohr  DN50 500mm", idx.Entries[2].Description)

	loaded, err := Load(filepath.Join("testdata", "Artikelliste.xls"), 1)
	require.NoError(t, err)
	require.Equal(t, idx.Version, loaded.Version)
}
