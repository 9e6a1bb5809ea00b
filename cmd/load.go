package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/sensordash-cli/internal/config"
	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
	"github.com/KaramelBytes/sensordash-cli/internal/parser"
	"github.com/KaramelBytes/sensordash-cli/internal/render"
	"github.com/spf13/cobra"
)

// ingestOptions resolves time zone and delimiter from the effective config.
func ingestOptions(sheet string) (parser.Options, error) {
	c := settings()
	opt := parser.DefaultOptions()
	loc, err := c.Location()
	if err != nil {
		return opt, err
	}
	opt.Location = loc
	if opt.Delimiter, err = config.ParseDelimiter(c.Delimiter); err != nil {
		return opt, fmt.Errorf("unsupported --delimiter: %w", err)
	}
	opt.Sheet = sheet
	return opt, nil
}

// loadDataset ingests args[0]. It returns nil without error when no file was
// given, after printing the load prompt.
func loadDataset(cmd *cobra.Command, args []string, sheet string) (*dataset.Dataset, error) {
	if len(args) == 0 || args[0] == "" {
		fmt.Fprintln(cmd.OutOrStdout(), render.LoadPrompt)
		return nil, nil
	}
	opt, err := ingestOptions(sheet)
	if err != nil {
		return nil, err
	}
	ds, err := parser.ReadFile(args[0], opt).Unwrap()
	if err != nil {
		return nil, err
	}
	log.With("dataset", ds.ID()).Debug("ingested %s: %d rows, columns %v", ds.Name(), ds.Len(), ds.Columns())
	return ds, nil
}

// baseParams converts the configured widget defaults into render parameters.
func baseParams() render.Params {
	c := settings()
	p := render.DefaultParams()
	if c.Variable != "" {
		p.Variable = render.Selection(c.Variable)
	}
	if c.ChartKind != "" {
		p.ChartKind = render.ChartKind(c.ChartKind)
	}
	if c.StatVariable != "" {
		p.StatVariable = render.VariableLabel(c.StatVariable)
	}
	if c.FilterVariable != "" {
		p.FilterVariable = render.VariableLabel(c.FilterVariable)
	}
	return p
}

// thresholdFlag returns a pointer to val when the flag was set on cmd.
func thresholdFlag(cmd *cobra.Command, name string, val float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v := val
	return &v
}

func formatThreshold(v dataset.Value) string {
	f, ok := v.Get()
	if !ok {
		return "n/a"
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
