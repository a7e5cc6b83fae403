package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/school-admin/internal/domain/fee"
	"github.com/garyjia/school-admin/internal/domain/studentimport"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRankCmd(t *testing.T) {
	out, err := run(t, "rank", "Nursery", "Computer Lab")
	require.NoError(t, err)
	assert.Equal(t, "2\tNursery\n999\tComputer Lab\n", out)
}

func TestSortCmd(t *testing.T) {
	out, err := run(t, "sort", "2nd Year", "Class 3", "PG")
	require.NoError(t, err)
	assert.Equal(t, "PG\nClass 3\n2nd Year\n", out)
}

func TestPreviewCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte("Sr No,Name,Father\n1,Ali,Khan\n2,,\n"), 0o644))

	out, err := run(t, "preview", path)
	require.NoError(t, err)

	var res studentimport.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.HeaderSkipped)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Ali", res.Rows[0].Name)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Missing, "father contact no")
}

func TestPreviewCmd_NonNumericFee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,Ali,Khan,0300,NaN\n"), 0o644))

	out, err := run(t, "preview", path)
	require.NoError(t, err)

	var res studentimport.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Rows, 1)
	assert.Nil(t, res.Rows[0].MonthlyFee)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "is not a number")
}

func TestPreviewCmd_MissingFile(t *testing.T) {
	out, err := run(t, "preview", filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
	assert.NotContains(t, out, "Usage:")
}

func TestQuoteCmd(t *testing.T) {
	out, err := run(t, "quote",
		"--admission", "5000", "--monthly", "3000", "--paper", "500",
		"--custom", "Transport=1500",
		"--discount-type", "percentage", "--discount-value", "10")
	require.NoError(t, err)

	var q fee.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, 10000.0, q.PreDiscount)
	assert.Equal(t, int64(9000), q.Total)
}

func TestQuoteCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad custom spec", args: []string{"quote", "--custom", "Transport"}},
		{name: "bad custom amount", args: []string{"quote", "--custom", "Transport=lots"}},
		{name: "percentage out of range", args: []string{"quote", "--discount-type", "percentage", "--discount-value", "150"}},
		{name: "unknown discount type", args: []string{"quote", "--discount-type", "coupon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
