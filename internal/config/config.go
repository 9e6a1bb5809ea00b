package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dashboard widget defaults
	Variable       string `mapstructure:"variable" yaml:"variable"`
	ChartKind      string `mapstructure:"chart_kind" yaml:"chart_kind"`
	StatVariable   string `mapstructure:"stat_variable" yaml:"stat_variable"`
	FilterVariable string `mapstructure:"filter_variable" yaml:"filter_variable"`

	// Export
	ExportFormat   string `mapstructure:"export_format" yaml:"export_format"`
	ExportFilename string `mapstructure:"export_filename" yaml:"export_filename"`

	// Ingestion
	TimeZone  string `mapstructure:"time_zone" yaml:"time_zone"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// HTTP server
	ServerAddr  string `mapstructure:"server_addr" yaml:"server_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

const dirName = ".sensordash"

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var defaults = map[string]any{
	"variable":        "both",
	"chart_kind":      "line",
	"stat_variable":   "temperature",
	"filter_variable": "temperature",
	"export_format":   "csv",
	"export_filename": "datos_filtrados.csv",
	"time_zone":       "UTC",
	"delimiter":       ",",
	"server_addr":     ":8080",
	"max_upload_mb":   32,
	"log_level":       "info",
}

// Default returns the built-in configuration without reading file or env.
func Default() *Global {
	return &Global{
		Variable:       "both",
		ChartKind:      "line",
		StatVariable:   "temperature",
		FilterVariable: "temperature",
		ExportFormat:   "csv",
		ExportFilename: "datos_filtrados.csv",
		TimeZone:       "UTC",
		Delimiter:      ",",
		ServerAddr:     ":8080",
		MaxUploadMB:    32,
		LogLevel:       "info",
	}
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sensordash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SENSORDASH")
	v.AutomaticEnv()

	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set assigns one key from its string form. Domain values such as variable
// names are checked by the caller.
func (c *Global) Set(key, val string) error {
	switch key {
	case "variable":
		c.Variable = val
	case "chart_kind":
		c.ChartKind = val
	case "stat_variable":
		c.StatVariable = val
	case "filter_variable":
		c.FilterVariable = val
	case "export_format":
		switch strings.ToLower(val) {
		case "csv", "xlsx":
			c.ExportFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid export_format: %s (use csv or xlsx)", val)
		}
	case "export_filename":
		c.ExportFilename = val
	case "time_zone":
		if _, err := time.LoadLocation(val); err != nil {
			return fmt.Errorf("invalid time_zone: %w", err)
		}
		c.TimeZone = val
	case "delimiter":
		if _, err := ParseDelimiter(val); err != nil {
			return err
		}
		c.Delimiter = val
	case "server_addr":
		c.ServerAddr = val
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for max_upload_mb: %v", val)
		}
		c.MaxUploadMB = i
	case "log_level":
		c.LogLevel = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Location resolves TimeZone. Empty means UTC.
func (c *Global) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone: %w", err)
	}
	return loc, nil
}

// ParseDelimiter accepts a single character, or "tab" / "\t".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: must be one character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}
