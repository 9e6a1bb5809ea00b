package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/sensordash-cli/internal/config"
	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
	"github.com/KaramelBytes/sensordash-cli/internal/logging"
	"github.com/KaramelBytes/sensordash-cli/internal/render"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set SensorDash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := yaml.Marshal(settings())
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: variable, chart_kind, stat_variable, filter_variable, export_format, export_filename, time_zone, delimiter, server_addr, max_upload_mb, log_level.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := checkDomainValue(key, val); err != nil {
			return err
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

// checkDomainValue validates keys whose values are owned by other packages.
func checkDomainValue(key, val string) error {
	var err error
	switch key {
	case "variable":
		_, err = render.ParseSelection(val)
	case "chart_kind":
		_, err = render.ParseChartKind(val)
	case "stat_variable", "filter_variable":
		_, err = dataset.ParseVariable(val)
	case "log_level":
		_, err = logging.ParseLevel(val)
	}
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
