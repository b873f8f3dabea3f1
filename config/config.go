// Package config loads the folio configuration.
//
// Configuration files are TOML, later files override earlier ones. A ".env"
// file in the working directory is loaded into the environment, then FOLIO_*
// environment variables override the files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/quote"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/phuslu/log"
)

// Environment variables.
const (
	EnvConfig       = "FOLIO_CONFIG"
	EnvStore        = "FOLIO_STORE"
	EnvLedger       = "FOLIO_LEDGER"
	EnvHomeCurrency = "FOLIO_HOME_CURRENCY"
	EnvLogLevel     = "FOLIO_LOG_LEVEL"
	EnvMetrics      = "FOLIO_METRICS_FILE"
	EnvLookbackMax  = "FOLIO_LOOKBACK_MAX"
)

// Config holds all the folio configuration.
type Config struct {
	HomeCurrency string        `toml:"home_currency"`
	Store        StoreConfig   `toml:"store"`
	Sweep        SweepConfig   `toml:"sweep"`
	Quote        QuoteConfig   `toml:"quote"`
	Metrics      MetricsConfig `toml:"metrics"`
	Logging      LoggingConfig `toml:"logging"`
}

// StoreConfig locates the ledger.
type StoreConfig struct {
	URL    string `toml:"url"`    // see store.Open
	Ledger string `toml:"ledger"` // key of the ledger in the store
}

// SweepConfig holds the quote evaluation options.
type SweepConfig struct {
	TrailingAlarms bool `toml:"trailing_alarms"`
	LookbackMin    int  `toml:"lookback_min"`
	LookbackMax    int  `toml:"lookback_max"`
}

// Options returns the sweep options.
func (c SweepConfig) Options() folio.SweepOptions {
	return folio.SweepOptions{TrailingAlarms: c.TrailingAlarms, LookbackMin: c.LookbackMin, LookbackMax: c.LookbackMax}
}

// QuoteConfig describes where quotes are fetched from. In URL "{symbol}" and
// "{market}" are replaced by the stock reference parts, "{token}" by Token.
//
// Provider names a built-in source (see quote.Providers), it sets URL, Token
// and Paths.
type QuoteConfig struct {
	Provider string      `toml:"provider"`
	URL      string      `toml:"url"`
	Token    string      `toml:"token"`
	CacheDir string      `toml:"cache_dir"`
	Paths    quote.Paths `toml:"paths"`
}

// URLFor returns the quote url of sref.
func (c QuoteConfig) URLFor(sref folio.SRef) string {
	return strings.NewReplacer("{symbol}", sref.Symbol(), "{market}", sref.Market(), "{token}", c.Token).Replace(c.URL)
}

// applyProvider sets the fields of the named provider.
func (c *QuoteConfig) applyProvider() error {
	if c.Provider == "" {
		return nil
	}
	p, token, err := quote.LookupProvider(c.Provider)
	if err != nil && !(errors.Is(err, quote.ErrNoToken) && c.Token != "") {
		return err
	}
	c.URL, c.Paths = p.URL, p.Paths
	if c.Token == "" {
		c.Token = token
	}
	return nil
}

// MetricsConfig holds the metrics export.
type MetricsConfig struct {
	Textfile string `toml:"textfile"` // prometheus node exporter textfile, empty to disable
}

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// NewDefaultConfig returns the configuration used without any file.
func NewDefaultConfig() *Config {
	return &Config{
		HomeCurrency: "EUR",
		Store: StoreConfig{
			URL:    "dir:.folio",
			Ledger: "main",
		},
		Sweep: SweepConfig{LookbackMax: 0},
		Quote: QuoteConfig{Paths: quote.DefaultPaths},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads the configuration files, missing files are skipped. The file
// named by FOLIO_CONFIG is loaded last.
func Load(paths ...string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	config := NewDefaultConfig()
	if env := os.Getenv(EnvConfig); env != "" {
		paths = append(paths, env)
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(config)
	if err := config.Quote.applyProvider(); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvStore); v != "" {
		config.Store.URL = v
	}
	if v := os.Getenv(EnvLedger); v != "" {
		config.Store.Ledger = v
	}
	if v := os.Getenv(EnvHomeCurrency); v != "" {
		config.HomeCurrency = strings.ToUpper(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv(EnvMetrics); v != "" {
		config.Metrics.Textfile = v
	}
	if v := os.Getenv(EnvLookbackMax); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sweep.LookbackMax = n
		}
	}
}

// Validate checks the values that cannot be checked by their users.
func (c *Config) Validate() error {
	if len(c.HomeCurrency) != 3 {
		return fmt.Errorf("invalid home currency %q", c.HomeCurrency)
	}
	if c.Store.Ledger == "" {
		return fmt.Errorf("empty ledger name")
	}
	if c.Sweep.LookbackMin < 0 || c.Sweep.LookbackMax < 0 || c.Sweep.LookbackMin > c.Sweep.LookbackMax && c.Sweep.LookbackMax > 0 {
		return fmt.Errorf("invalid lookback window [%d, %d]", c.Sweep.LookbackMin, c.Sweep.LookbackMax)
	}
	return nil
}

// Logger returns the logger described by the logging configuration, writing to w.
func (c LoggingConfig) Logger(w io.Writer) *log.Logger {
	logger := &log.Logger{Level: log.ParseLevel(c.Level)}
	if c.JSON {
		logger.Writer = &log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{Writer: w}
	}
	return logger
}
