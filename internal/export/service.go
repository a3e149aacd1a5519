// Package export renders finished results as an XLSX workbook: a summary
// sheet plus per-clause and per-field detail sheets.
package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cube-dp/lease-classifier/internal/entity"
)

// cell text above this is truncated; spreadsheet cells cap at 32767 chars
const maxCellText = 32000

// Service produces XLSX bytes for classification reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReportXLSX renders the result documents into a workbook with Summary,
// Clauses, and Fields sheets.
func (s *Service) ReportXLSX(results []entity.ResultDocument) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	if err := s.writeSummary(f, results); err != nil {
		return nil, err
	}
	if err := s.writeClauses(f, results); err != nil {
		return nil, err
	}
	if err := s.writeFields(f, results); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeSummary(f *excelize.File, results []entity.ResultDocument) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	writeHeader(f, sheet, []string{"PDF File", "Total Clauses", "Total Fields", "API Calls", "Field Extraction"})

	for i, r := range results {
		row := i + 2
		status := "disabled"
		if r.FieldExtractionEnabled {
			status = "enabled"
		}
		writeRow(f, sheet, row, r.PDFFile, r.TotalClauses, r.TotalFields, r.OpenAIAPICalls, status)
	}

	_ = f.SetColWidth(sheet, "A", "A", 40)
	_ = f.SetColWidth(sheet, "B", "D", 14)
	_ = f.SetColWidth(sheet, "E", "E", 18)
	return nil
}

func (s *Service) writeClauses(f *excelize.File, results []entity.ResultDocument) error {
	const sheet = "Clauses"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeader(f, sheet, []string{"PDF File", "Clause Index", "Clause Type", "Type ID", "Confidence", "Clause Text"})

	row := 2
	for _, r := range results {
		for _, c := range r.Clauses {
			writeRow(f, sheet, row, r.PDFFile, c.ClauseIndex, c.Type, c.TypeID, c.Confidence, truncate(c.Text, maxCellText))
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 30)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "D", 25)
	_ = f.SetColWidth(sheet, "E", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 80)
	return nil
}

func (s *Service) writeFields(f *excelize.File, results []entity.ResultDocument) error {
	const sheet = "Fields"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeader(f, sheet, []string{"PDF File", "Field Name", "Field ID", "Values", "Clause Indices"})

	row := 2
	for _, r := range results {
		for _, fd := range r.Fields {
			indices := make([]string, 0, len(fd.ClauseIndices))
			for _, idx := range fd.ClauseIndices {
				indices = append(indices, strconv.Itoa(idx))
			}
			writeRow(f, sheet, row, r.PDFFile, fd.FieldName, fd.FieldID,
				truncate(strings.Join(fd.Values, "; "), maxCellText),
				strings.Join(indices, ", "))
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 30)
	_ = f.SetColWidth(sheet, "B", "C", 25)
	_ = f.SetColWidth(sheet, "D", "D", 60)
	_ = f.SetColWidth(sheet, "E", "E", 18)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
