package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"uglgen/internal"
)

// ExportItemsToXLSX writes a review sheet with one row per resolved item.
func ExportItemsToXLSX(items []internal.ResolvedLineItem, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"position", "fragment", "article_key", "ean", "description", "quantity", "unit", "score"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, item := range items {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, i+1)
		set(2, item.Fragment)
		set(3, item.ArticleKey)
		set(4, item.EAN)
		set(5, item.Description)
		set(6, item.Quantity.Value)
		set(7, item.Quantity.Unit.Code())
		set(8, item.Score)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
