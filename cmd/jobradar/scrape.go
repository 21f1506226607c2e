package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// cliProgress prints pipeline checkpoints to stderr so summary output on
// stdout stays pipeable.
type cliProgress struct{}

func (cliProgress) ReportProgress(current, total int, currentItem string) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, total, currentItem)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search for new job postings and store them",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger(debug)

		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := buildDiscovery(cfg, st, logger).Run(ctx, cliProgress{})
		if err != nil {
			return err
		}
		fmt.Println(summary.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
