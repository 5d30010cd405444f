// Package config resolves run settings from defaults, an optional YAML file,
// PHARMA_PAPERS_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
	"github.com/henrybloomingdale/pharma-papers/internal/logging"
	"github.com/henrybloomingdale/pharma-papers/internal/ncbi"
	"github.com/henrybloomingdale/pharma-papers/internal/output"
	"github.com/henrybloomingdale/pharma-papers/internal/papers"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PHARMA_PAPERS"
	// FileName is the config file base name searched for without --config.
	FileName = "pharma-papers"
)

// Config holds everything a run needs besides the query itself.
type Config struct {
	APIKey     string
	Email      string
	Tool       string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
	Format     output.Format
	Fallback   bool
	File       string
	Debug      bool
	LogLevel   slog.Level
	// ConfigFile is the file that was read, if any.
	ConfigFile string
}

// RegisterFlags adds the run flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "write results to this file (format from extension; CSV by default)")
	fs.BoolP("debug", "d", false, "print debug information during execution")
	fs.IntP("max-results", "m", papers.DefaultMaxResults, "maximum number of papers to retrieve")
	fs.StringP("api-key", "k", "", "NCBI API key (or PUBMED_API_KEY / NCBI_API_KEY)")
	fs.String("email", "", "contact e-mail sent to NCBI")
	fs.String("format", "", "output format: table, csv, json, yaml, xlsx, ris")
	fs.Bool("no-fallback", false, "fail instead of listing all papers when none has industry authors")
	fs.String("config", "", "config file (default: ./pharma-papers.yaml or ~/.config/pharma-papers/pharma-papers.yaml)")
	fs.Duration("timeout", ncbi.DefaultTimeout, "HTTP timeout per request")
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"file":        "file",
	"debug":       "debug",
	"max-results": "max_results",
	"api-key":     "api_key",
	"email":       "email",
	"format":      "format",
	"timeout":     "timeout",
}

// DefaultSearchPaths lists the directories searched for FileName.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pharma-papers"))
	}
	return paths
}

// Load resolves a Config from fs, which must have been populated by
// RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	return load(fs, DefaultSearchPaths())
}

func load(fs *pflag.FlagSet, searchPaths []string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", ncbi.DefaultBaseURL)
	v.SetDefault("tool", ncbi.DefaultTool)
	v.SetDefault("email", ncbi.DefaultEmail)
	v.SetDefault("max_results", papers.DefaultMaxResults)
	v.SetDefault("timeout", ncbi.DefaultTimeout)
	v.SetDefault("format", "")
	v.SetDefault("fallback", true)
	v.SetDefault("log_level", "info")

	cfgFile, _ := fs.GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "PUBMED_API_KEY", "NCBI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api_key env: %w", err)
	}

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}
	if fs.Changed("no-fallback") {
		noFallback, _ := fs.GetBool("no-fallback")
		v.Set("fallback", !noFallback)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, apperr.Wrap(apperr.ErrInvalidInput, "reading config", err)
		}
	}

	format, err := output.ParseFormat(v.GetString("format"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIKey:     v.GetString("api_key"),
		Email:      v.GetString("email"),
		Tool:       v.GetString("tool"),
		BaseURL:    v.GetString("base_url"),
		MaxResults: v.GetInt("max_results"),
		Timeout:    v.GetDuration("timeout"),
		Format:     format,
		Fallback:   v.GetBool("fallback"),
		File:       v.GetString("file"),
		Debug:      v.GetBool("debug"),
		LogLevel:   logging.ParseLevel(v.GetString("log_level")),
		ConfigFile: v.ConfigFileUsed(),
	}
	switch {
	case cfg.Debug:
		cfg.LogLevel = slog.LevelDebug
	case cfg.LogLevel <= slog.LevelDebug:
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that flags and files cannot express.
func (c *Config) Validate() error {
	if c.MaxResults < 1 || c.MaxResults > papers.MaxResultsLimit {
		return apperr.Wrap(apperr.ErrInvalidInput, "config",
			fmt.Errorf("max_results must be between 1 and %d, got %d", papers.MaxResultsLimit, c.MaxResults))
	}
	if c.Timeout <= 0 {
		return apperr.Wrap(apperr.ErrInvalidInput, "config", fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.BaseURL == "" {
		return apperr.Wrap(apperr.ErrInvalidInput, "config", fmt.Errorf("base_url cannot be empty"))
	}
	return nil
}
