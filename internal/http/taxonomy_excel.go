package httpapi

import (
	"bytes"
	"fmt"

	"healthindex/internal/taxonomy"

	"github.com/xuri/excelize/v2"
)

type sheetSpec struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

// GenerateTaxonomyWorkbook 生成目录导出 Excel（Categories / Biomarkers / Weights / Data Sources）
func GenerateTaxonomyWorkbook(view *taxonomy.View) ([]byte, error) {
	sheets := taxonomySheets(view)

	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func taxonomySheets(view *taxonomy.View) []sheetSpec {
	categories := sheetSpec{
		name:    "Categories",
		headers: []string{"Name", "Description", "Biomarker Count"},
		widths:  []float64{15, 40, 18},
	}
	biomarkers := sheetSpec{
		name:    "Biomarkers",
		headers: []string{"Code", "Display Name", "Category", "Unit", "Dependent", "Normal Min", "Normal Max"},
		widths:  []float64{10, 25, 12, 12, 12, 12, 12},
	}
	weights := sheetSpec{
		name:    "Weights",
		headers: []string{"Code", "Weight"},
		widths:  []float64{10, 10},
	}
	sources := sheetSpec{
		name:    "Data Sources",
		headers: []string{"Name", "Organization", "Description"},
		widths:  []float64{15, 25, 40},
	}

	for _, c := range view.Categories {
		categories.rows = append(categories.rows, []any{string(c.Name), c.Description, len(c.Biomarkers)})
		for _, b := range c.Biomarkers {
			dependent := "No"
			if b.IsDependent {
				dependent = "Yes"
			}
			biomarkers.rows = append(biomarkers.rows, []any{
				string(b.Code), b.DisplayName, string(c.Name), b.Unit, dependent,
				b.NormalRange.Min, b.NormalRange.Max,
			})
			weights.rows = append(weights.rows, []any{string(b.Code), b.Weight})
		}
	}
	weights.rows = append(weights.rows, []any{"Total", view.TotalWeight})

	for _, s := range view.DataSources {
		sources.rows = append(sources.rows, []any{s.Name, s.Organization, s.Description})
	}

	return []sheetSpec{categories, biomarkers, weights, sources}
}

func writeSheet(f *excelize.File, s sheetSpec, headerStyle int) error {
	for col, header := range s.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(s.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(s.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", rowIdx+2, s.name, err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}
