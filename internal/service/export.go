package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

// ExportSheet is the worksheet name used for XLSX exports.
const ExportSheet = "Results"

// ErrUnsupportedFormat is returned for an export format other than csv or xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportFormat is a tabular file format.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat maps a query value to a format. Empty means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Table is a header plus rows of text cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ExportTable lays out results as one row per substance followed by a limit and verdict per column.
func ExportTable(results []model.CalculationResult, columns []model.RegulationColumn) Table {
	header := []string{"Substance", "CAS Number", "Contamination (mg/kg)", "M (mg/kg)"}
	for _, col := range columns {
		label := col.Name
		if label == "" {
			label = string(col.ID)
		}
		header = append(header, label+" SML (mg/kg)", label+" Verdict")
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{
			r.Substance.Name,
			r.Substance.CASNumber,
			formatFloat(r.Substance.Contamination),
			formatFloat(r.MigrationValue),
		}
		for _, col := range columns {
			limit := ""
			verdict := model.VerdictUnknown
			for _, v := range r.Verdicts {
				if v.RegulationID != col.ID {
					continue
				}
				if v.Limit != nil {
					limit = formatFloat(*v.Limit)
				}
				verdict = v.Verdict
				break
			}
			row = append(row, limit, string(verdict))
		}
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}

// HistoryTable lays out activity entries for export, in the order given.
func HistoryTable(entries []model.LogEntry) Table {
	t := Table{Header: []string{"Timestamp", "User", "Action", "Method", "Path", "Status", "Message"}}
	for _, e := range entries {
		user := e.UserEmail
		if user == "" {
			user = e.UserID
		}
		status := ""
		if e.StatusCode != 0 {
			status = strconv.Itoa(e.StatusCode)
		}
		t.Rows = append(t.Rows, []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			user,
			e.ActionType,
			e.Method,
			e.Path,
			status,
			e.Message,
		})
	}
	return t
}

// WriteTable writes the table in the given format.
func WriteTable(w io.Writer, format ExportFormat, t Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// WriteCSV writes the table as RFC 4180 CSV.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes the table as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	index, err := f.NewSheet(ExportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range t.Header {
		ref := cellRef(col, 1)
		if err := f.SetCellValue(ExportSheet, ref, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(ExportSheet, ref, ref, bold); err != nil {
			return err
		}
	}
	for i, row := range t.Rows {
		for col, value := range row {
			if err := f.SetCellValue(ExportSheet, cellRef(col, i+2), value); err != nil {
				return err
			}
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func cellRef(col, row int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return fmt.Sprintf("%s%d", name, row)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
