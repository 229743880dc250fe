package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Rana718/telseed/internal/catalog"
	"github.com/Rana718/telseed/internal/config"
	"github.com/Rana718/telseed/internal/logging"
	"github.com/Rana718/telseed/internal/store"
)

var (
	cfgFile   string
	configErr error
	Version   = "0.3.0"
)

var rootCmd = &cobra.Command{
	Use:   "telseed <host> <user> <password> <dbname> <contract_count> <calls_count>",
	Short: "Fill a telephony billing database with consistent synthetic data",
	Long: `
telseed generates contracts, participants, phone numbers, call records and
invoices whose foreign keys are valid before a single row is written, and
bulk-loads every table through COPY.

Identifiers continue from the sequences the target database already holds,
so repeated runs append to the dataset instead of colliding with it.`,
	Example: `  telseed localhost postgres secret telco 1000 50000
  telseed --dry-run localhost postgres secret telco 3 10 > seed.sql`,
	Version:       Version,
	Args:          exactArgs(6),
	SilenceUsage:  true,
	RunE:          runSeed,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./telseed.config.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "schema catalog file laid over the built-in one")
	rootCmd.PersistentFlags().Int("port", 5432, "database port")
	rootCmd.PersistentFlags().String("sslmode", "prefer", "database sslmode")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-dev", false, "human-readable development logs")

	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("database.port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("database.sslmode", rootCmd.PersistentFlags().Lookup("sslmode"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.development", rootCmd.PersistentFlags().Lookup("log-dev"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("telseed.config")
	}

	viper.SetEnvPrefix("TELSEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("database.port", "TELSEED_DB_PORT")
	viper.BindEnv("database.sslmode", "TELSEED_DB_SSLMODE")

	configErr = nil
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		configErr = err
	}
}

// loadConfig returns the merged configuration, failing only when an
// explicitly requested config file could not be read.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, fmt.Errorf("%w: failed to read config file %s: %w", store.ErrInvalidArguments, cfgFile, configErr)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidArguments, err)
	}
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func newLogger(cfg *config.Config, w io.Writer) *zap.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Dev: cfg.Log.Development}, w)
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError(cmd, fmt.Errorf("%w: accepts %d arg(s), received %d", store.ErrInvalidArguments, n, len(args)))
		}
		return nil
	}
}

// usageError prints the command usage before handing err back to cobra.
func usageError(cmd *cobra.Command, err error) error {
	color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
	return err
}
