// Package config loads taskflow settings. Sources apply in order, later ones
// winning:
//  1. Defaults
//  2. $XDG_CONFIG_HOME/taskflow/config.toml (or the file named by -config)
//  3. TASKFLOW_* environment variables
//  4. Command-line flags
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

// Default values.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultCategoryColor = "#e63946"
)

// Config holds the full configuration.
type Config struct {
	// DBPath is the SQLite file. Empty selects the XDG data directory.
	DBPath string `toml:"db_path"`
	// LogFile receives the log. Empty selects the XDG state directory;
	// "-" writes to stderr.
	LogFile   string `toml:"log_file"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	// Locale is a BCP 47 tag used for alphabetical sorting.
	Locale        string `toml:"locale"`
	CategoryColor string `toml:"category_color"`

	// Memory keeps state in memory only. Flag only.
	Memory bool `toml:"-"`
	// File is the config file that was read, if any.
	File string `toml:"-"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		CategoryColor: DefaultCategoryColor,
	}
}

// Language returns the parsed locale, or language.Und when unset.
func (c *Config) Language() language.Tag {
	if c.Locale == "" {
		return language.Und
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}

type flagValues struct {
	configFile    string
	dbPath        string
	logFile       string
	logLevel      string
	logFormat     string
	locale        string
	categoryColor string
	memory        bool
}

func registerFlags(fs *flag.FlagSet, fl *flagValues) {
	fs.StringVar(&fl.configFile, "config", "", "path to config file")
	fs.StringVar(&fl.dbPath, "db", "", "path to the SQLite database")
	fs.StringVar(&fl.logFile, "log-file", "", `log file ("-" for stderr)`)
	fs.StringVar(&fl.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&fl.logFormat, "log-format", "", "log format: text, json, logfmt")
	fs.StringVar(&fl.locale, "locale", "", "collation locale for alphabetical sort (e.g. de, sv)")
	fs.StringVar(&fl.categoryColor, "category-color", "", "default color for new categories")
	fs.BoolVar(&fl.memory, "memory", false, "keep state in memory only")
}

// Load registers the global flags on fs, parses args and layers every
// source. The remaining arguments are left in fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	var fl flagValues
	registerFlags(fs, &fl)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Defaults()

	path, explicit := fl.configFile, fl.configFile != ""
	if !explicit {
		if v := os.Getenv("TASKFLOW_CONFIG"); v != "" {
			path, explicit = v, true
		} else {
			path = UserConfigFile()
		}
	}
	if path != "" {
		if err := loadConfigFile(cfg, path, explicit); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.DBPath = fl.dbPath
		case "log-file":
			cfg.LogFile = fl.logFile
		case "log-level":
			cfg.LogLevel = fl.logLevel
		case "log-format":
			cfg.LogFormat = fl.logFormat
		case "locale":
			cfg.Locale = fl.locale
		case "category-color":
			cfg.CategoryColor = fl.categoryColor
		case "memory":
			cfg.Memory = fl.memory
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
		}
	}
	if c.CategoryColor == "" {
		c.CategoryColor = DefaultCategoryColor
	}
	return nil
}

// UserConfigFile returns the default config file location.
func UserConfigFile() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "taskflow", "config.toml")
}

// DefaultLogFile returns $XDG_STATE_HOME/taskflow/taskflow.log.
func DefaultLogFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "taskflow.log")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "taskflow", "taskflow.log")
}

// loadConfigFile decodes path over cfg. A missing default file is not an
// error; a missing explicit one is. Unknown keys are rejected.
func loadConfigFile(cfg *Config, path string, explicit bool) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.File = path
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKFLOW_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKFLOW_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TASKFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKFLOW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TASKFLOW_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("TASKFLOW_CATEGORY_COLOR"); v != "" {
		cfg.CategoryColor = v
	}
	if v := os.Getenv("TASKFLOW_MEMORY"); v != "" {
		cfg.Memory = boolFromString(v)
	}
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
