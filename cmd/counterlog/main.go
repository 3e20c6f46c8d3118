package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/counterworks/counterlog/internal/ledger"
	"github.com/counterworks/counterlog/internal/roster"
	"github.com/counterworks/counterlog/internal/store"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "counterlog",
	Short: "counterlog ledger tooling",
	Long: `counterlog is the offline companion to counterlogd.

It verifies the integrity of a ledger (CSV file or postgres database)
and hashes member PINs for roster provisioning.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		viper.SetEnvPrefix("COUNTERLOG")
		viper.AutomaticEnv()
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(versionCmd)
}

// ── verify ───────────────────────────────────────────────────────────────────

var (
	verifyCSVPath string
	verifyDBURL   string
	verifySalt    string
	verifyFormat  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Walk the hash chain and report any break or tamper findings",
	Long: `Verify reads every record from the given source, sorts them by server
timestamp, and recomputes the hash chain from the genesis hash forward.

The salt must match the one the records were written with; pass --salt or
set COUNTERLOG_HASH_SALT. Exits 1 when the chain does not verify:

  counterlog verify --csv ledger.csv --salt "$SALT"
  counterlog verify --database-url postgres://... --format json`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyCSVPath, "csv", "", "Path to a CSV ledger file")
	verifyCmd.Flags().StringVar(&verifyDBURL, "database-url", "", "Postgres connection string (overrides --csv)")
	verifyCmd.Flags().StringVar(&verifySalt, "salt", "", "Hash salt the ledger was written with (default $COUNTERLOG_HASH_SALT)")
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "text", "Output format: text or json")
}

func runVerify(cmd *cobra.Command, args []string) error {
	salt := verifySalt
	if salt == "" {
		salt = viper.GetString("HASH_SALT")
	}
	engine := ledger.NewHashEngine(salt)
	if engine.UsingDefaultSalt() {
		fmt.Fprintln(os.Stderr, "warning: no salt given, verifying with the default salt")
	}

	ctx := context.Background()

	var recordStore ledger.Store
	switch {
	case verifyDBURL != "":
		pool, err := pgxpool.New(ctx, verifyDBURL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		recordStore = store.NewPostgres(pool)
	case verifyCSVPath != "":
		csvStore, err := store.NewCSV(verifyCSVPath)
		if err != nil {
			return fmt.Errorf("open csv ledger: %w", err)
		}
		recordStore = csvStore
	default:
		return fmt.Errorf("give a ledger source: --csv <path> or --database-url <url>")
	}

	report, err := ledger.NewVerifier(recordStore, engine).Verify(ctx)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	switch verifyFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	default:
		printVerifyText(report)
	}

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func printVerifyText(report *ledger.Report) {
	fmt.Printf("Records:  %d\n", report.TotalRecords)
	if report.Valid {
		fmt.Println("Chain:    VALID")
		return
	}
	fmt.Printf("Chain:    INVALID (%d findings)\n\n", len(report.Findings))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECORD\tISSUE\tDETAIL")
	for _, f := range report.Findings {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.RecordID, f.Issue, f.Detail)
	}
	w.Flush() //nolint:errcheck
}

// ── pin ──────────────────────────────────────────────────────────────────────

var pinSalt string

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "PIN utilities",
}

var pinHashCmd = &cobra.Command{
	Use:   "hash <pin>",
	Short: "Hash a member PIN for storage in the roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin := args[0]
		if err := roster.ValidatePINFormat(pin); err != nil {
			return err
		}
		salt := pinSalt
		if salt == "" {
			salt = viper.GetString("PIN_SALT")
		}
		fmt.Println(roster.HashPIN(pin, salt))
		return nil
	},
}

func init() {
	pinHashCmd.Flags().StringVar(&pinSalt, "salt", "", "PIN salt (default $COUNTERLOG_PIN_SALT)")
	pinCmd.AddCommand(pinHashCmd)
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the counterlog version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("counterlog %s\n", version)
	},
}
