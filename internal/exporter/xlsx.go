package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"shoplens/internal/services"
)

// XLSXExporter writes a dashboard snapshot as a workbook: one overview
// sheet with the KPI cards, then one sheet per chart.
type XLSXExporter struct {
	logger *slog.Logger
}

// NewXLSXExporter creates an exporter.
func NewXLSXExporter(logger *slog.Logger) *XLSXExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExporter{logger: logger}
}

// Write renders the snapshot into w.
func (e *XLSXExporter) Write(w io.Writer, snap *services.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeOverview(f, snap); err != nil {
		return fmt.Errorf("write overview sheet: %w", err)
	}

	for _, chart := range snap.Charts {
		if err := e.writeChart(f, chart); err != nil {
			return fmt.Errorf("write sheet %s: %w", chart.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Debug("snapshot exported",
		slog.Int("charts", len(snap.Charts)),
		slog.String("start", snap.Range.Start.Format("2006-01-02")),
		slog.String("end", snap.Range.End.Format("2006-01-02")))

	return nil
}

func (e *XLSXExporter) writeOverview(f *excelize.File, snap *services.Snapshot) error {
	const sheet = "Overview"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Period start", snap.Range.Start.Format("2006-01-02")},
		{"Period end", snap.Range.End.Format("2006-01-02")},
		{"Granularity", string(snap.Range.Granularity)},
		{"Generated at", snap.GeneratedAt.Format("2006-01-02 15:04:05")},
		{},
		{"Metric", "Value", "Change %"},
	}
	for _, card := range snap.Cards {
		row := []interface{}{card.Title, card.Value}
		if card.Change.HasBaseline {
			row = append(row, card.Change.Percent)
		} else {
			row = append(row, "n/a")
		}
		rows = append(rows, row)
	}

	return writeRows(f, sheet, rows)
}

func (e *XLSXExporter) writeChart(f *excelize.File, chart services.Chart) error {
	sheet := sheetName(chart.Title)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Label"}
	for _, series := range chart.Series {
		header = append(header, series.Name)
	}

	rows := [][]interface{}{header}
	for i, label := range chart.Labels {
		row := []interface{}{label}
		for _, series := range chart.Series {
			if i < len(series.Values) {
				row = append(row, series.Values[i])
			}
		}
		rows = append(rows, row)
	}

	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// sheetName truncates a chart title to the 31-character sheet name limit.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
