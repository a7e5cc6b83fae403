// Package spreadsheet reads uploaded workbooks and CSV files into raw rows.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptyWorkbook     = errors.New("workbook has no sheets")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader converts file contents into a 2-D array of cell text
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a new Reader
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// ReadRows parses data according to the extension of filename. Workbooks are
// read from their first sheet.
func (r *Reader) ReadRows(filename string, data []byte) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return r.readWorkbook(data)
	case ".csv", ".txt":
		return r.readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func (r *Reader) readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	r.logger.Debug("Workbook read",
		zap.String("sheet", sheets[0]),
		zap.Int("sheet_count", len(sheets)),
		zap.Int("rows", len(rows)))

	return rows, nil
}

func (r *Reader) readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	r.logger.Debug("CSV read", zap.Int("rows", len(rows)))
	return rows, nil
}
