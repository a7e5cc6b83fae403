package voucher

import (
	"bytes"
	"fmt"

	"github.com/garyjia/school-admin/internal/domain/entity"
	"github.com/garyjia/school-admin/internal/domain/fee"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet layout of an exported voucher
const (
	sheetName = "Voucher"

	cellSchool    = "A1"
	cellNumber    = "B3"
	cellStudent   = "B4"
	cellFather    = "B5"
	cellClass     = "B6"
	cellSrNo      = "B7"
	cellMonth     = "B8"
	headerRow     = 10
	firstLineRow  = 11
	colFeeHead    = "A"
	colFeeAmount  = "B"
	labelFree     = "FREE STUDENT"
	labelDiscount = "Discount"
	labelTotal    = "Total Payable"
)

// SheetData is everything printed on a voucher
type SheetData struct {
	SchoolName string
	Currency   string
	Voucher    *entity.FeeVoucher
	Student    *entity.Student
	ClassName  string
}

// ExcelExporter renders fee vouchers as xlsx workbooks
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new ExcelExporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export builds the workbook for data and returns its bytes
func (e *ExcelExporter) Export(data *SheetData) ([]byte, error) {
	if data == nil || data.Voucher == nil {
		return nil, ErrMissingVoucher
	}
	v := data.Voucher

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	studentName, fatherName, srNo := "", "", ""
	if data.Student != nil {
		studentName = data.Student.Name
		fatherName = data.Student.FatherName
		srNo = data.Student.SrNo
	}

	cells := []struct {
		cell  string
		value interface{}
	}{
		{cellSchool, data.SchoolName},
		{"A3", "Voucher No"}, {cellNumber, v.VoucherNumber},
		{"A4", "Student"}, {cellStudent, studentName},
		{"A5", "Father Name"}, {cellFather, fatherName},
		{"A6", "Class"}, {cellClass, data.ClassName},
		{"A7", "Sr No"}, {cellSrNo, srNo},
		{"A8", "Month"}, {cellMonth, v.Month},
		{cell(colFeeHead, headerRow), "Fee Head"},
		{cell(colFeeAmount, headerRow), "Amount (" + data.Currency + ")"},
	}
	for _, c := range cells {
		if err := f.SetCellValue(sheetName, c.cell, c.value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", c.cell, err)
		}
	}

	row := firstLineRow
	for _, line := range voucherLines(v) {
		if err := e.setLine(f, row, line.name, line.amount); err != nil {
			return nil, err
		}
		row++
	}

	quote := fee.Breakdown(v.Schedule, v.CustomFees, v.Discount, v.IsFree)
	if v.IsFree {
		if err := e.setLine(f, row, labelFree, 0); err != nil {
			return nil, err
		}
		row++
	} else if v.Discount != nil {
		if err := e.setLine(f, row, labelDiscount, -quote.DiscountAmount); err != nil {
			return nil, err
		}
		row++
	}

	if err := e.setLine(f, row, labelTotal, v.Total); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Voucher exported",
		zap.String("voucher_number", v.VoucherNumber),
		zap.Int("rows", row),
		zap.Int("size", buf.Len()))

	return buf.Bytes(), nil
}

type line struct {
	name   string
	amount float64
}

// voucherLines lists the fee heads charged on a voucher; zero standard heads are omitted
func voucherLines(v *entity.FeeVoucher) []line {
	var lines []line
	for _, l := range []line{
		{"Admission Fee", v.Schedule.AdmissionFee},
		{"Monthly Fee", v.Schedule.MonthlyFee},
		{"Paper Fund", v.Schedule.PaperFund},
	} {
		if l.amount != 0 {
			lines = append(lines, l)
		}
	}
	for _, c := range v.CustomFees {
		if c.Amount >= 0 {
			lines = append(lines, line{c.Name, c.Amount})
		}
	}
	return lines
}

func (e *ExcelExporter) setLine(f *excelize.File, row int, name string, amount interface{}) error {
	if err := f.SetCellValue(sheetName, cell(colFeeHead, row), name); err != nil {
		return fmt.Errorf("failed to set fee head at row %d: %w", row, err)
	}
	if err := f.SetCellValue(sheetName, cell(colFeeAmount, row), amount); err != nil {
		return fmt.Errorf("failed to set amount at row %d: %w", row, err)
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
