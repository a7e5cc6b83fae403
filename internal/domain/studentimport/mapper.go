// Package studentimport turns spreadsheet rows into student records.
//
// Columns are read by position, never by header label:
//
//	0 Sr No | 1 Name | 2 Father Name | 3 Father Contact | 4 Monthly Fee
//
// Header text only decides whether the first row is skipped.
package studentimport

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Column positions of an import sheet
const (
	ColSrNo = iota
	ColName
	ColFatherName
	ColFatherContactNo
	ColMonthlyFee
)

// headerMaxLen is the length below which non-numeric text in the first cell
// is taken to be a header label
const headerMaxLen = 20

// plain decimal notation only, so NaN, Inf and hex floats never parse
var amountPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ImportRow is one student read from a spreadsheet
type ImportRow struct {
	SrNo            string   `json:"sr_no"`
	Name            string   `json:"name"`
	FatherName      string   `json:"father_name"`
	FatherContactNo string   `json:"father_contact_no"`
	MonthlyFee      *float64 `json:"monthly_fee"`
}

// Warning flags a retained row an operator should review. It never blocks import.
type Warning struct {
	Row     int      `json:"row"`
	SrNo    string   `json:"sr_no"`
	Missing []string `json:"missing,omitempty"`
	Message string   `json:"message"`
}

// Result is the output of MapRows
type Result struct {
	HeaderSkipped bool        `json:"header_skipped"`
	Rows          []ImportRow `json:"rows"`
	Warnings      []Warning   `json:"warnings"`
}

// MapRows maps raw spreadsheet rows to ImportRows. Rows with a blank name are
// dropped. An empty Rows slice is not an error here; callers decide.
func MapRows(raw [][]string) Result {
	res := Result{
		Rows:     []ImportRow{},
		Warnings: []Warning{},
	}
	if len(raw) == 0 {
		return res
	}

	start := 0
	if IsHeaderRow(raw[0]) {
		res.HeaderSkipped = true
		start = 1
	}

	seen := make(map[string]int)
	for i := start; i < len(raw); i++ {
		row := raw[i]
		sheetRow := i + 1
		position := i - start + 1

		name := cell(row, ColName)
		if name == "" {
			continue
		}

		srNo := cell(row, ColSrNo)
		if srNo == "" {
			srNo = strconv.Itoa(position)
		}

		rec := ImportRow{
			SrNo:            srNo,
			Name:            name,
			FatherName:      cell(row, ColFatherName),
			FatherContactNo: cell(row, ColFatherContactNo),
		}

		if first, dup := seen[srNo]; dup {
			res.Warnings = append(res.Warnings, Warning{
				Row:     sheetRow,
				SrNo:    srNo,
				Message: fmt.Sprintf("sr no %q already used on row %d, this row replaces it", srNo, first),
			})
		} else {
			seen[srNo] = sheetRow
		}

		if raw := cell(row, ColMonthlyFee); raw != "" {
			fee, problem := parseAmount(raw)
			if problem == "" {
				rec.MonthlyFee = &fee
			} else {
				res.Warnings = append(res.Warnings, Warning{
					Row:     sheetRow,
					SrNo:    srNo,
					Message: fmt.Sprintf("monthly fee %q %s and was left empty", raw, problem),
				})
			}
		}

		if missing := missingFields(rec); len(missing) > 0 {
			res.Warnings = append(res.Warnings, Warning{
				Row:     sheetRow,
				SrNo:    srNo,
				Missing: missing,
				Message: "missing " + strings.Join(missing, ", "),
			})
		}

		res.Rows = append(res.Rows, rec)
	}

	return res
}

// IsHeaderRow reports whether the first cell of row looks like a header label.
func IsHeaderRow(row []string) bool {
	first := strings.ToLower(cell(row, 0))

	if strings.Contains(first, "sr") || strings.Contains(first, "no") || strings.Contains(first, "roll") {
		return true
	}
	if first == "#" {
		return true
	}
	if first == "" {
		return false
	}
	if _, err := strconv.ParseFloat(first, 64); err == nil {
		return false
	}
	return len([]rune(first)) < headerMaxLen
}

func missingFields(r ImportRow) []string {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.FatherName == "" {
		missing = append(missing, "father name")
	}
	if r.FatherContactNo == "" {
		missing = append(missing, "father contact no")
	}
	return missing
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount accepts plain non-negative decimals and thousands separators
// ("5,000"). A non-empty problem describes why s was rejected.
func parseAmount(s string) (v float64, problem string) {
	s = strings.ReplaceAll(s, ",", "")
	if !amountPattern.MatchString(s) {
		return 0, "is not a number"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, "is not a number"
	}
	if v < 0 {
		return 0, "is negative"
	}
	return v, ""
}
