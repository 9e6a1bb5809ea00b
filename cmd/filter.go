package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
	"github.com/KaramelBytes/sensordash-cli/internal/render"
	"github.com/spf13/cobra"
)

var (
	filVar  string
	filMin  float64
	filMax  float64
	filRows int
)

var filterCmd = &cobra.Command{
	Use:   "filter [file]",
	Short: "Show readings strictly above --min and strictly below --max",
	Long: `Filter splits the readings of one variable around two thresholds. Rows without a reading
are dropped. Thresholds default to the variable's mean.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd, args, "")
		if err != nil || ds == nil {
			return err
		}
		p := baseParams()
		if filVar != "" {
			p.FilterVariable = render.VariableLabel(filVar)
		}
		p.MinThreshold = thresholdFlag(cmd, "min", filMin)
		p.MaxThreshold = thresholdFlag(cmd, "max", filMax)

		out, err := render.Render(ds, p)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		v := out.Params.FilterVariable
		fmt.Fprintf(w, "Range of %s: %s to %s (mean %s)\n", v,
			formatThreshold(out.Range.Min), formatThreshold(out.Range.Max), formatThreshold(out.Range.Default))
		for _, t := range []struct {
			flag string
			val  float64
		}{{"min", filMin}, {"max", filMax}} {
			if cmd.Flags().Changed(t.flag) && !out.Range.Contains(t.val) {
				fmt.Fprintf(w, "⚠ Warning: --%s %s is outside the data range\n", t.flag, formatThreshold(dataset.Some(t.val)))
			}
		}
		printView(w, fmt.Sprintf("%s > %s", v, formatThreshold(out.MinThreshold)), out.Above, filRows)
		printView(w, fmt.Sprintf("%s < %s", v, formatThreshold(out.MaxThreshold)), out.Below, filRows)
		return nil
	},
}

// printView lists up to limit rows of a filtered view. A negative limit prints all rows.
func printView(w io.Writer, title string, ds *dataset.Dataset, limit int) {
	fmt.Fprintf(w, "\n%s: %d rows\n", title, ds.Len())
	cols := ds.Columns()
	for i := 0; i < ds.Len(); i++ {
		if limit >= 0 && i >= limit {
			fmt.Fprintf(w, "  ... %d more\n", ds.Len()-limit)
			break
		}
		rec := ds.At(i)
		fmt.Fprintf(w, "  %s", rec.Time.Format("2006-01-02 15:04:05"))
		for _, c := range cols {
			fmt.Fprintf(w, "  %s=%s", c, formatThreshold(rec.Get(c)))
		}
		fmt.Fprintln(w)
	}
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringVar(&filVar, "var", "", "variable to filter on: temperature|humedad (overrides config)")
	filterCmd.Flags().Float64Var(&filMin, "min", 0, "keep readings strictly above this value (default: mean)")
	filterCmd.Flags().Float64Var(&filMax, "max", 0, "keep readings strictly below this value (default: mean)")
	filterCmd.Flags().IntVar(&filRows, "rows", 10, "rows to print per view (-1 = all)")
}
