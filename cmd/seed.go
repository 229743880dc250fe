package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rana718/telseed/internal/config"
	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/seeder"
	"github.com/Rana718/telseed/internal/store"
)

var noSyncSequences bool

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ApplyArgs(args); err != nil {
		return usageError(cmd, err)
	}
	if noSyncSequences {
		cfg.Run.SyncSequences = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries the script in dry-run mode
	if cfg.Run.DryRun {
		color.Output = cmd.ErrOrStderr()
	}

	log := newLogger(cfg, cmd.ErrOrStderr())
	defer log.Sync()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	dialer, err := newDialer(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := seeder.NewSeeder(dialer, cat, log).Seed(ctx, seeder.SeedConfig{
		Contracts:     cfg.Run.Contracts,
		Calls:         cfg.Run.Calls,
		Seed:          cfg.Run.Seed,
		SyncSequences: cfg.Run.SyncSequences,
	})
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	printSummary(summary, cfg.Run.Seed)
	return nil
}

func newDialer(cfg *config.Config, out io.Writer) (store.Dialer, error) {
	if cfg.Run.DryRun {
		return store.NewDumpDialer(out), nil
	}
	return store.NewPostgresDialer(cfg.GetDatabaseURL())
}

func printSummary(summary *seeder.Summary, seed int64) {
	fmt.Fprintln(color.Output)
	color.Cyan("📊 Rows loaded:")
	var total int64
	for _, kind := range entity.Kinds {
		n := summary.Rows[kind]
		total += n
		fmt.Fprintf(color.Output, "  %-20s %d\n", kind, n)
	}
	color.Green("✅ %d rows in %s", total, summary.Elapsed.Round(1e6))
	color.White("🎲 Seed %d, last contract id %d, last invoice number %d", seed, summary.Counters.Contract, summary.Counters.InvoiceNumber)
}

func init() {
	rootCmd.Flags().Int64("seed", 0, "random seed (default picks one from the clock)")
	rootCmd.Flags().Bool("dry-run", false, "write the SQL script to stdout instead of loading the database")
	rootCmd.Flags().BoolVar(&noSyncSequences, "no-sync-sequences", false, "leave identity sequences untouched after loading")

	viper.BindPFlag("run.seed", rootCmd.Flags().Lookup("seed"))
	viper.BindPFlag("run.dry_run", rootCmd.Flags().Lookup("dry-run"))
}
