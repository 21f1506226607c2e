package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score unscored jobs against your resume",
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

		scoring, err := buildScoring(ctx, cfg, st, logger)
		if err != nil {
			return err
		}

		summary, err := scoring.Run(ctx, cliProgress{})
		if err != nil {
			return err
		}
		fmt.Println(summary.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
