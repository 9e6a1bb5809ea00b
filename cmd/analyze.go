package cmd

import (
	"fmt"

	"github.com/KaramelBytes/sensordash-cli/internal/render"
	"github.com/KaramelBytes/sensordash-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaHTML       bool
	anaSampleRows int
	anaVariable   string
	anaChart      string
	anaStat       string
	anaFilter     string
	anaMin        float64
	anaMax        float64
	anaSheetName  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Summarize a sensor CSV/XLSX and report threshold filters",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd, args, anaSheetName)
		if err != nil || ds == nil {
			return err
		}

		p := baseParams()
		if anaVariable != "" {
			p.Variable = render.Selection(anaVariable)
		}
		if anaChart != "" {
			p.ChartKind = render.ChartKind(anaChart)
		}
		if anaStat != "" {
			p.StatVariable = render.VariableLabel(anaStat)
		}
		if anaFilter != "" {
			p.FilterVariable = render.VariableLabel(anaFilter)
		}
		p.MinThreshold = thresholdFlag(cmd, "min", anaMin)
		p.MaxThreshold = thresholdFlag(cmd, "max", anaMax)

		out, err := render.Render(ds, p)
		if err != nil {
			return err
		}
		rep, err := render.Report(ds, out, anaSampleRows)
		if err != nil {
			return err
		}

		var body []byte
		if anaHTML {
			body = rep.HTML()
		} else {
			body = []byte(rep.Markdown())
		}

		// Decide where to write: --output path or stdout
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, body); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().BoolVar(&anaHTML, "html", false, "render the analysis as a standalone HTML page")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of head rows to include")
	analyzeCmd.Flags().StringVar(&anaVariable, "variable", "", "chart variable: temperature|humedad|both (overrides config)")
	analyzeCmd.Flags().StringVar(&anaChart, "chart", "", "chart kind: line|area|scatter|histogram (overrides config)")
	analyzeCmd.Flags().StringVar(&anaStat, "stat", "", "variable to summarize (overrides config)")
	analyzeCmd.Flags().StringVar(&anaFilter, "var", "", "variable to filter on (overrides config)")
	analyzeCmd.Flags().Float64Var(&anaMin, "min", 0, "keep readings strictly above this value (default: mean)")
	analyzeCmd.Flags().Float64Var(&anaMax, "max", 0, "keep readings strictly below this value (default: mean)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze (default: first sheet)")
}
