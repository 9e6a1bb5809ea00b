package cmd

import (
	"fmt"

	"github.com/KaramelBytes/sensordash-cli/internal/export"
	"github.com/KaramelBytes/sensordash-cli/internal/render"
	"github.com/KaramelBytes/sensordash-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	expVar    string
	expMin    float64
	expFormat string
	expOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the readings above --min to datos_filtrados.csv",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		formatName := c.ExportFormat
		if cmd.Flags().Changed("format") {
			formatName = expFormat
		}
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}

		ds, err := loadDataset(cmd, args, "")
		if err != nil || ds == nil {
			return err
		}
		p := baseParams()
		if expVar != "" {
			p.FilterVariable = render.VariableLabel(expVar)
		}
		p.MinThreshold = thresholdFlag(cmd, "min", expMin)
		out, err := render.Render(ds, p)
		if err != nil {
			return err
		}

		body := out.Export
		if format != export.FormatCSV {
			if body, err = export.Encode(out.Above, format); err != nil {
				return err
			}
		}

		path := expOutput
		if path == "" {
			path = format.FileName()
			if format == export.FormatCSV && c.ExportFilename != "" {
				path = c.ExportFilename
			}
		}
		if err := utils.SafeWriteFile(path, body); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d rows (%s > %s) to %s\n",
			out.Above.Len(), out.Params.FilterVariable, formatThreshold(out.MinThreshold), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expVar, "var", "", "variable to filter on: temperature|humedad (overrides config)")
	exportCmd.Flags().Float64Var(&expMin, "min", 0, "export readings strictly above this value (default: mean)")
	exportCmd.Flags().StringVar(&expFormat, "format", "csv", "export format: csv|xlsx (overrides config)")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path (default: datos_filtrados.csv)")
}
