package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
)

// EmptySheet is the only sheet of a workbook built from zero tables.
const EmptySheet = "Tables"

// Service renders detected tables as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// SheetName names the sheet of one table, e.g. "P2-T1".
func SheetName(t entity.Table) string {
	return fmt.Sprintf("P%d-T%d", t.Page, t.TableIndex)
}

// TablesXLSX returns a workbook with one sheet per table: the header row
// first, then the data rows.
func (s *Service) TablesXLSX(ctx context.Context, tables []entity.Table) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// excelize starts with "Sheet1"; rename it so no stray sheet is left behind.
	first := EmptySheet
	if len(tables) > 0 {
		first = SheetName(tables[0])
	}
	if err := f.SetSheetName(f.GetSheetName(0), first); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, t := range tables {
		sheet := SheetName(t)
		if i > 0 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("new sheet %s: %w", sheet, err)
			}
		}
		writeRow(f, sheet, 1, t.Headers)
		for r, row := range t.Rows {
			writeRow(f, sheet, r+2, row)
		}
		if len(t.Headers) > 0 {
			last, _ := excelize.ColumnNumberToName(len(t.Headers))
			_ = f.SetColWidth(sheet, "A", last, 20)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	common.LoggerFrom(ctx, s.logger).Info("export.xlsx.ok",
		"tables", len(tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []string) {
	for col, v := range cells {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
