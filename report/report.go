// Package report renders analysis result tables for files and terminals.
// All rounding to fixed decimals happens here; the analysis layer always
// hands over full-precision values.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/phaselab/itpc/analysis"
	"github.com/phaselab/itpc/stats/summary"
)

// DefaultDecimals is the printed precision used when callers pass no
// explicit value.
const DefaultDecimals = 4

var csvHeader = []string{
	"analysis", "condition", "electrode",
	"mean", "lower", "upper", "significant", "skipped", "reason",
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// WriteCSV writes the result table with one row per analysis cell. Skipped
// cells keep their row with empty numeric columns so downstream consumers
// can distinguish "not significant" from "not computable".
func WriteCSV(w io.Writer, t *analysis.Table, decimals int) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("report: writing csv header: %w", err)
	}

	for _, row := range t.Rows {
		record := []string{
			row.Analysis,
			row.Condition,
			strconv.Itoa(row.Electrode),
			"", "", "", "",
			strconv.FormatBool(row.Skipped),
			row.Reason,
		}
		if !row.Skipped {
			record[3] = formatFloat(row.Mean, decimals)
			record[4] = formatFloat(row.Lower, decimals)
			record[5] = formatFloat(row.Upper, decimals)
			record[6] = strconv.FormatBool(row.Significant)
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("report: writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteConsole renders the result table as an aligned text table.
func WriteConsole(w io.Writer, t *analysis.Table, decimals int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "ANALYSIS\tCONDITION\tELECTRODE\tMEAN\tLOWER\tUPPER\tSIGNIFICANT")
	for _, row := range t.Rows {
		if row.Skipped {
			fmt.Fprintf(tw, "%s\t%s\t%d\tskipped: %s\t\t\t\n",
				row.Analysis, row.Condition, row.Electrode, row.Reason)
			continue
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%v\n",
			row.Analysis, row.Condition, row.Electrode,
			formatFloat(row.Mean, decimals),
			formatFloat(row.Lower, decimals),
			formatFloat(row.Upper, decimals),
			row.Significant)
	}

	return tw.Flush()
}

// ConditionValues collects the per-electrode mean values of one analysis
// type grouped by condition and keyed by electrode id, skipping unusable
// cells. Keying by electrode keeps pairings aligned across conditions for
// the signed-rank tests even when a cell is skipped in only one condition.
func ConditionValues(t *analysis.Table, analysisType string) map[string]map[int]float64 {
	out := make(map[string]map[int]float64)
	for _, row := range t.Rows {
		if row.Analysis != analysisType || row.Skipped {
			continue
		}
		if out[row.Condition] == nil {
			out[row.Condition] = make(map[int]float64)
		}
		out[row.Condition][row.Electrode] = row.Mean
	}
	return out
}

// WriteConditionSummary prints descriptive statistics per condition and
// pairwise Wilcoxon signed-rank comparisons, in the given condition order.
func WriteConditionSummary(w io.Writer, values map[string]map[int]float64, order []string, decimals int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "CONDITION\tN\tMEAN\tSTD\tMIN\tMAX\tMEDIAN")
	for _, name := range order {
		s, err := summary.Describe(conditionSlice(values[name]))
		if err != nil {
			fmt.Fprintf(tw, "%s\tno usable cells\t\t\t\t\t\n", name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			name, s.N,
			formatFloat(s.Mean, decimals),
			formatFloat(s.Std, decimals),
			formatFloat(s.Min, decimals),
			formatFloat(s.Max, decimals),
			formatFloat(s.Median, decimals))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	comps, err := summary.PairwiseWilcoxon(values, order)
	if err != nil {
		return fmt.Errorf("report: pairwise comparison: %w", err)
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPARISON\tSTATISTIC\tP\tSIGNIFICANCE")
	for _, c := range comps {
		fmt.Fprintf(tw, "%s vs %s\t%s\t%s\t%s\n",
			c.A, c.B,
			formatFloat(c.Result.Statistic, decimals),
			formatFloat(c.Result.PValue, decimals),
			c.Result.Significance())
	}
	return tw.Flush()
}

// conditionSlice flattens one condition's electrode map in electrode order.
func conditionSlice(values map[int]float64) []float64 {
	ids := make([]int, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = values[id]
	}
	return out
}
