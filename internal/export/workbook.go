package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/cubo-visits/internal/charts"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/frequency"
)

// Workbook sheet names.
const (
	SheetFrequent     = "Visitantes Frequentes"
	SheetConsolidated = "Consolidado"
	SheetDaily        = "Convites por Dia"
)

// WorkbookOptions controls the table export.
type WorkbookOptions struct {
	FrequentThreshold int
}

type sheet struct {
	name   string
	header []interface{}
	widths []float64
	rows   [][]interface{}
}

// WriteWorkbook writes the period tables of filtered as an .xlsx file.
func WriteWorkbook(w io.Writer, filtered []datanorm.Record, opts WorkbookOptions) error {
	threshold := opts.FrequentThreshold
	if threshold <= 0 {
		threshold = frequency.DefaultThreshold
	}
	frequent := frequency.FrequentVisitors(filtered, threshold)

	sheets := []sheet{
		{name: SheetFrequent, header: []interface{}{"Organização", "E-mail", "Visitas"}, widths: []float64{40, 40, 12}},
		{name: SheetConsolidated, header: []interface{}{"Visitantes Frequentes", "Organizações", "Lista"}, widths: []float64{22, 16, 80}},
		{name: SheetDaily, header: []interface{}{"Data", "Dia da Semana", "Convites"}, widths: []float64{14, 18, 12}},
	}
	for _, r := range frequent {
		sheets[0].rows = append(sheets[0].rows, []interface{}{r.Organization, r.VisitorEmail, r.Visits})
	}

	panel := make(map[int]string)
	for _, g := range frequency.PanelView(frequent) {
		panel[g.FrequentVisitors] = g.Label
	}
	for _, r := range frequency.Consolidate(frequent) {
		sheets[1].rows = append(sheets[1].rows, []interface{}{r.FrequentVisitors, r.Organizations, panel[r.FrequentVisitors]})
	}
	for _, d := range charts.Daily(filtered) {
		sheets[2].rows = append(sheets[2].rows, []interface{}{
			d.Date.Format("02/01/2006"),
			datanorm.WeekdayNames[datanorm.WeekdayIndex(d.Date)],
			d.Count,
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("add sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return fmt.Errorf("write %s header: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", s.name, err)
	}

	for i := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &s.rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", s.name, i+2, err)
		}
	}

	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("size %s columns: %w", s.name, err)
		}
	}
	return nil
}
