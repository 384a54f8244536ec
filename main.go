package main

import (
	"context"
	"log" // Use standard log only for fatal errors before logger is set up
	"os"

	"github.com/spf13/cobra"
)

var (
	sectorFlag string
	exportFlag string
	cronFlag   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aShareScanner",
	Short: "Sector screening, scoring and MA backtests for A-share quotes",
	Long: `aShareScanner screens the market snapshot for a sector theme, scores every
candidate from its daily history and prints one recommendation per instrument.

Examples:
  aShareScanner scan --sector 半导体 --export out/semis.csv
  aShareScanner lookup 600519
  aShareScanner watch --cron "0 */5 9-15 * * 1-5"`,
	SilenceUsage: true,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan one sector and print the ranked analyses",
	Args:  cobra.NoArgs,
	RunE:  runScan,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <symbol>",
	Short: "Analyse a single instrument from the current snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the sector scan on a cron schedule until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sectorFlag, "sector", "", "sector theme (default DEFAULT_SECTOR)")

	scanCmd.Flags().StringVar(&exportFlag, "export", "", "write the scan as CSV to this path (default EXPORT_PATH)")
	watchCmd.Flags().StringVar(&cronFlag, "cron", "", "cron spec, seconds optional (default WATCH_CRON)")
	watchCmd.Flags().StringVar(&exportFlag, "export", "", "overwrite this CSV after every run (default EXPORT_PATH)")

	rootCmd.AddCommand(scanCmd, lookupCmd, watchCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("FATAL: %v", err)
		os.Exit(1)
	}
}
