package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/Rana718/telseed/internal/store"
)

type Config struct {
	Catalog  string   `json:"catalog" mapstructure:"catalog"`
	Database Database `json:"database" mapstructure:"database"`
	Run      Run      `json:"run" mapstructure:"run"`
	Log      Log      `json:"log" mapstructure:"log"`
}

type Database struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     int    `json:"port" mapstructure:"port"`
	User     string `json:"user" mapstructure:"user"`
	Password string `json:"password" mapstructure:"password"`
	Name     string `json:"name" mapstructure:"name"`
	SSLMode  string `json:"sslmode" mapstructure:"sslmode"`
}

type Run struct {
	Contracts     int   `json:"contracts" mapstructure:"contracts"`
	Calls         int   `json:"calls" mapstructure:"calls"`
	Seed          int64 `json:"seed" mapstructure:"seed"` // 0 picks one from the clock
	DryRun        bool  `json:"dry_run" mapstructure:"dry_run"`
	SyncSequences bool  `json:"sync_sequences" mapstructure:"sync_sequences"`
}

type Log struct {
	Level       string `json:"level" mapstructure:"level"`
	Development bool   `json:"development" mapstructure:"development"`
}

var (
	sslModes  = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	logLevels = []string{"debug", "info", "warn", "warning", "error"}
)

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "prefer"
	}
	if cfg.Log.Level == "" {
		if cfg.Log.Development {
			cfg.Log.Level = "debug"
		} else {
			cfg.Log.Level = "info"
		}
	}
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}
	if !viper.IsSet("run.sync_sequences") {
		cfg.Run.SyncSequences = true
	}

	return &cfg, nil
}

// ApplyConnectionArgs takes host, user, password and database name in that order.
func (c *Config) ApplyConnectionArgs(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: expected host, user, password and dbname, got %d arguments", store.ErrInvalidArguments, len(args))
	}
	c.Database.Host = args[0]
	c.Database.User = args[1]
	c.Database.Password = args[2]
	c.Database.Name = args[3]
	return nil
}

// ApplyArgs takes the connection arguments followed by the contract and call counts.
func (c *Config) ApplyArgs(args []string) error {
	if len(args) != 6 {
		return fmt.Errorf("%w: expected 6 arguments, got %d", store.ErrInvalidArguments, len(args))
	}
	if err := c.ApplyConnectionArgs(args[:4]); err != nil {
		return err
	}

	contracts, err := parseCount("contract_count", args[4])
	if err != nil {
		return err
	}
	calls, err := parseCount("calls_count", args[5])
	if err != nil {
		return err
	}
	c.Run.Contracts = contracts
	c.Run.Calls = calls
	return nil
}

func parseCount(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %q", store.ErrInvalidArguments, name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative, got %d", store.ErrInvalidArguments, name, n)
	}
	return n, nil
}

func (c *Config) GetDatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("%w: database host cannot be empty", store.ErrInvalidArguments)
	}
	if c.Database.User == "" {
		return fmt.Errorf("%w: database user cannot be empty", store.ErrInvalidArguments)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("%w: database name cannot be empty", store.ErrInvalidArguments)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("%w: invalid database port %d", store.ErrInvalidArguments, c.Database.Port)
	}
	if !slices.Contains(sslModes, c.Database.SSLMode) {
		return fmt.Errorf("%w: unsupported sslmode: %s. Supported modes: %v", store.ErrInvalidArguments, c.Database.SSLMode, sslModes)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("%w: unsupported log level: %s. Supported levels: %v", store.ErrInvalidArguments, c.Log.Level, logLevels)
	}
	if c.Run.Contracts < 0 || c.Run.Calls < 0 {
		return fmt.Errorf("%w: counts must not be negative", store.ErrInvalidArguments)
	}
	return nil
}
