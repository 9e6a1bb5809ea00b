package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/sensordash-cli/internal/analysis"
	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
	"github.com/KaramelBytes/sensordash-cli/internal/render"
	"github.com/KaramelBytes/sensordash-cli/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	statsVar    string
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Print count, mean, std, min, quartiles and max",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch statsFormat {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unsupported --format: %s (use table|json|yaml)", statsFormat)
		}
		ds, err := loadDataset(cmd, args, "")
		if err != nil || ds == nil {
			return err
		}

		vars := ds.Columns()
		if statsVar != "" {
			v, err := dataset.ParseVariable(string(render.VariableLabel(statsVar)))
			if err != nil {
				return err
			}
			vars = []dataset.Variable{v}
		}
		if len(vars) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "⚠ No temperature or humedad column found")
			return nil
		}
		summaries := make([]analysis.Summary, 0, len(vars))
		for _, v := range vars {
			s, err := analysis.Summarize(ds, v)
			if err != nil {
				return err
			}
			summaries = append(summaries, s)
		}

		w := cmd.OutOrStdout()
		switch statsFormat {
		case "json":
			b, err := utils.PrettyJSON(summaries)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
		case "yaml":
			b, err := yaml.Marshal(summaries)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			fmt.Fprint(w, string(b))
		default:
			printStatsTable(w, summaries)
		}
		return nil
	},
}

// printStatsTable prints one column per variable, two decimals.
func printStatsTable(w io.Writer, summaries []analysis.Summary) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-6s", "stat"))
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf(" %12s", s.Variable))
	}
	b.WriteString("\n")
	for i, f := range summaries[0].Fields() {
		b.WriteString(fmt.Sprintf("%-6s", f.Name))
		for _, s := range summaries {
			if i == 0 {
				b.WriteString(fmt.Sprintf(" %12d", s.Count))
				continue
			}
			b.WriteString(fmt.Sprintf(" %12s", analysis.Format2(s.Fields()[i].Value)))
		}
		b.WriteString("\n")
	}
	fmt.Fprint(w, b.String())
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsVar, "var", "", "variable to summarize: temperature|humedad (default: all present)")
	statsCmd.Flags().StringVar(&statsFormat, "format", "table", "output format: table|json|yaml")
}
