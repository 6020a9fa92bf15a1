// Package config holds application configuration, layered from
// defaults, the config file, environment variables, and CLI flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration.
type Config struct {
	InputPath string        `json:"input_path"`
	OutputDir string        `json:"output_dir"`
	NoAnalyze bool          `json:"-"`
	Debounce  time.Duration `json:"-"`
	ConfigDir string        `json:"-"`
}

// Default returns a Config with default values.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("determining home directory: %w", err)
	}
	return Config{
		InputPath: "conversations.json",
		OutputDir: "markdown_transcripts",
		Debounce:  500 * time.Millisecond,
		ConfigDir: filepath.Join(home, ".chatmd"),
	}, nil
}

// Load builds a Config by layering: defaults < config file < env < flags.
// The provided FlagSet must already be parsed by the caller. Only flags
// that were explicitly set override the lower layers.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := LoadMinimal()
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg, fs)
	return cfg, nil
}

// LoadMinimal builds a Config from defaults, config file, and env,
// without consulting CLI flags. Use this for subcommands that manage
// their own flag sets.
func LoadMinimal() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	cfg.loadEnv()
	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) configPath() string {
	return filepath.Join(c.ConfigDir, "config.json")
}

// loadFile applies the config file on top of defaults. loadEnv runs
// first so CHATMD_CONFIG_DIR can relocate the file; env values for
// input and output still win over file values.
func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.configPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file struct {
		InputPath string `json:"input_path"`
		OutputDir string `json:"output_dir"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if file.InputPath != "" && os.Getenv("CHATMD_INPUT") == "" {
		c.InputPath = file.InputPath
	}
	if file.OutputDir != "" && os.Getenv("CHATMD_OUTPUT_DIR") == "" {
		c.OutputDir = file.OutputDir
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("CHATMD_INPUT"); v != "" {
		c.InputPath = v
	}
	if v := os.Getenv("CHATMD_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("CHATMD_CONFIG_DIR"); v != "" {
		c.ConfigDir = v
	}
}

// RegisterConvertFlags registers convert-command flags on fs. The
// caller must call fs.Parse before passing fs to Load.
func RegisterConvertFlags(fs *flag.FlagSet) {
	fs.String("input", "conversations.json", "Path to the JSON export file")
	fs.String("output", "markdown_transcripts", "Directory for Markdown output")
	fs.Bool("no-analyze", false, "Skip the structure analysis report")
}

// applyFlags copies explicitly-set flags from fs into cfg.
func applyFlags(cfg *Config, fs *flag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = f.Value.String()
		case "output":
			cfg.OutputDir = f.Value.String()
		case "no-analyze":
			cfg.NoAnalyze = f.Value.String() == "true"
		case "debounce":
			// flag already validated the duration; ignore parse error
			cfg.Debounce, _ = time.ParseDuration(f.Value.String())
		}
	})
}
