package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	xls "github.com/extrame/xls"
	"github.com/saintfish/chardet"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"uglgen/internal/util"
)

var ErrUnsupportedSource = errors.New("unsupported catalog source")

// Table is a tabular catalog source with lower-cased column names.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

func (t Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// ReadRows opens path and picks a reader by extension. headerRow is 1-based.
func ReadRows(path string, headerRow int) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	return ReadAnyRows(f, path, headerRow)
}

func ReadAnyRows(r io.Reader, filename string, headerRow int) (Table, error) {
	var (
		grid [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		grid, err = readXLSX(r)
	case ".xls":
		grid, err = readXLS(r)
	case ".csv":
		grid, err = readCSV(r)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, filename)
	}
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", filename, err)
	}
	return gridToTable(grid, headerRow), nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(0))
}

func readXLS(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wb *xls.WorkBook
	var lastErr error
	for _, charset := range []string{"windows-1252", "utf-8"} {
		wb, lastErr = xls.OpenReader(bytes.NewReader(b), charset)
		if lastErr == nil && wb != nil {
			break
		}
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		// LastCol is one past the last cell in files written by Excel
		cols := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cols = append(cols, strings.TrimSpace(row.Col(j)))
		}
		for len(cols) > 0 && cols[len(cols)-1] == "" {
			cols = cols[:len(cols)-1]
		}
		grid = append(grid, cols)
	}
	return grid, nil
}

// readCSV keeps UTF-8 as is and otherwise decodes a Western single-byte
// export, letting chardet pick between the Latin code pages. The delimiter
// is sniffed from the first line (comma or semicolon).
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	peek, _ := br.Peek(4096)

	var dec io.Reader = br
	if !validUTF8Prefix(peek) {
		dec = transform.NewReader(br, singleByteCharset(peek).NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if firstLine, _, _ := bytes.Cut(peek, []byte("\n")); bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		cr.Comma = ';'
	}
	return cr.ReadAll()
}

func singleByteCharset(sample []byte) *charmap.Charmap {
	results, err := chardet.NewTextDetector().DetectAll(sample)
	if err != nil {
		return charmap.Windows1252
	}
	for _, res := range results {
		switch strings.ToLower(res.Charset) {
		case "iso-8859-15":
			return charmap.ISO8859_15
		case "windows-1252", "iso-8859-1":
			return charmap.Windows1252
		}
	}
	return charmap.Windows1252
}

// validUTF8Prefix tolerates a rune cut in half at the end of the peek buffer.
func validUTF8Prefix(b []byte) bool {
	for n := 0; n < utf8.UTFMax && n <= len(b); n++ {
		if utf8.Valid(b[:len(b)-n]) {
			return true
		}
	}
	return false
}

func gridToTable(grid [][]string, headerRow int) Table {
	idx := headerRow - 1
	if idx < 0 || idx >= len(grid) {
		return Table{}
	}

	headers := make([]string, len(grid[idx]))
	for i, h := range grid[idx] {
		h = util.Fold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if h == "" {
			h = fmt.Sprintf("column %d", i+1)
		}
		headers[i] = h
	}

	t := Table{Headers: headers}
	for _, rec := range grid[idx+1:] {
		row := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			if _, dup := row[h]; dup {
				continue
			}
			var v string
			if c < len(rec) {
				v = strings.TrimSpace(rec[c])
			}
			if v != "" {
				empty = false
			}
			row[h] = v
		}
		if !empty {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}
