package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/school-admin/internal/application/service"
	"github.com/garyjia/school-admin/internal/domain/classorder"
	"github.com/garyjia/school-admin/internal/domain/fee"
	"github.com/garyjia/school-admin/internal/domain/studentimport"
	"github.com/garyjia/school-admin/internal/infrastructure/spreadsheet"
)

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "schoolctl",
		Short:        "School administration helper",
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(newRankCmd(), newSortCmd(), newPreviewCmd(), newQuoteCmd())
	return rootCmd
}

func newRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <class name>...",
		Short: "Print the sequence rank of each class name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", classorder.RankOf(name), name)
			}
			return nil
		},
	}
}

func newSortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sort <class name>...",
		Short: "Print class names in academic sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range classorder.SortNames(args) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newPreviewCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "preview <file.xlsx|file.csv>",
		Short: "Map a student spreadsheet and print rows and warnings as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			raw, err := spreadsheet.NewReader(zap.NewNop()).ReadRows(filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}

			return writeJSON(cmd.OutOrStdout(), studentimport.MapRows(raw), pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newQuoteCmd() *cobra.Command {
	var (
		input         service.QuoteInput
		customs       []string
		discountType  string
		discountValue float64
		pretty        bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute a fee total with its breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := parseCustomFees(customs)
			if err != nil {
				return err
			}
			input.CustomFees = lines

			if discountType != "" {
				input.Discount = &fee.Discount{
					Type:  fee.DiscountType(strings.ToUpper(discountType)),
					Value: discountValue,
				}
			}

			if err := service.ValidateQuote(input); err != nil {
				return err
			}

			quote := fee.Breakdown(input.Schedule, input.CustomFees, input.Discount, input.IsFree)
			return writeJSON(cmd.OutOrStdout(), quote, pretty)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&input.Schedule.AdmissionFee, "admission", 0, "Admission fee")
	flags.Float64Var(&input.Schedule.MonthlyFee, "monthly", 0, "Monthly fee")
	flags.Float64Var(&input.Schedule.PaperFund, "paper", 0, "Paper fund")
	flags.StringArrayVar(&customs, "custom", nil, "Custom fee line as name=amount (repeatable)")
	flags.StringVar(&discountType, "discount-type", "", "Discount type: percentage or flat")
	flags.Float64Var(&discountValue, "discount-value", 0, "Discount value")
	flags.BoolVar(&input.IsFree, "free", false, "Free student (total is 0)")
	flags.BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func parseCustomFees(specs []string) ([]fee.CustomFeeLine, error) {
	lines := make([]fee.CustomFeeLine, 0, len(specs))
	for _, spec := range specs {
		name, amountStr, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --custom %q: want name=amount", spec)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(amountStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --custom %q: %w", spec, err)
		}
		lines = append(lines, fee.CustomFeeLine{Name: strings.TrimSpace(name), Amount: amount})
	}
	return lines, nil
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
