package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rana718/telseed/internal/sequence"
	"github.com/Rana718/telseed/internal/store"
)

var marksCmd = &cobra.Command{
	Use:   "marks <host> <user> <password> <dbname>",
	Short: "Show the identifier high-water marks the next run continues from",
	Args:  exactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ApplyConnectionArgs(args); err != nil {
			return usageError(cmd, err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := newLogger(cfg, cmd.ErrOrStderr())
		defer log.Sync()

		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		dialer, err := store.NewPostgresDialer(cfg.GetDatabaseURL())
		if err != nil {
			return err
		}

		marks, err := sequence.NewResolver(dialer, cat, log).Resolve(cmd.Context())
		if err != nil {
			return err
		}

		printMarks(cmd, marks)
		return nil
	},
}

func printMarks(cmd *cobra.Command, marks sequence.Marks) {
	out := cmd.OutOrStdout()
	color.New(color.FgCyan).Fprintln(out, "🔢 Identifier marks:")
	rows := []struct {
		name  string
		value any
	}{
		{"contract", marks.Contract},
		{"participant", marks.Participant},
		{"address", marks.Address},
		{"voip_number", marks.VoipNumber},
		{"price_list", marks.PriceList},
		{"invoice_item", marks.InvoiceItem},
		{"call_detail_record", marks.CallDetailRecord},
		{"variable_symbol", marks.VariableSymbol},
		{"invoice_number", marks.InvoiceNumber},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %-20s %v\n", row.name, row.value)
	}
}

func init() {
	rootCmd.AddCommand(marksCmd)
}
