package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"iecsize/pkg/iec"
)

// headerRow is the row index lipgloss tables use for headers.
const headerRow = 0

func newUnitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "units",
		Short:         "Show the binary prefixes and their divisors",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, unitsTable().String())
			fmt.Fprintln(out, "* 1 EiB and above lies past the last bucket; such magnitudes are rendered in EiB.")
			return nil
		},
	}
}

func unitsTable() *table.Table {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == headerRow {
				return header
			}
			return cell
		}).
		Headers("BUCKET", "UNIT", "NAME", "DIVISOR")

	for _, u := range iec.Units() {
		div := iec.Divisor(u)
		bucket := strconv.Itoa(iec.Bucket(div))
		if iec.Bucket(div) == iec.Overflow {
			bucket += "*"
		}
		t.Row(bucket, u.String(), u.Name(), strconv.FormatUint(div, 10))
	}
	return t
}
