package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"athena-demo/internal/app"
	"athena-demo/internal/domain"
)

const separatorWidth = 80

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable renders t as a bordered text table.
func printTable(w io.Writer, t *domain.Table) {
	if t == nil || len(t.Columns) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.AppendBulk(t.Rows)
	tw.Render()
}

// formatAverage prints whole numbers without a fraction and NaN as "NaN".
func formatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printReport(w io.Writer, format, filter string, report *app.Report) error {
	if format == "json" {
		return printJSON(w, report)
	}
	_, _ = fmt.Fprintln(w, "Athena query result:")
	printTable(w, report.Result)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", separatorWidth))
	_, _ = fmt.Fprintf(w, "Average price of %s properties: %s\n", filter, formatAverage(report.LocalAverage))
	if report.Match {
		_, _ = fmt.Fprintln(w, "Athena and local averages agree.")
	} else {
		_, _ = fmt.Fprintf(w, "Athena and local averages differ: %s vs %s\n",
			formatAverage(report.RemoteAverage), formatAverage(report.LocalAverage))
	}
	return nil
}
