package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kwhitfield/jobradar/internal/browse"
	"github.com/kwhitfield/jobradar/internal/model"
)

var (
	browseStatus   string
	browseMinScore int
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse jobs in an interactive terminal UI",
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

		filter := model.ListFilter{}
		if browseStatus != "" {
			if !model.ValidStatus(model.Status(browseStatus)) {
				return fmt.Errorf("invalid status %q", browseStatus)
			}
			filter.Status = model.Status(browseStatus)
		}
		if cmd.Flags().Changed("min-score") {
			filter.MinScore = &browseMinScore
		}

		return browse.Run(st, filter, cfg.AI.MinMatchScore)
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseStatus, "status", "", "only browse jobs with this status")
	browseCmd.Flags().IntVar(&browseMinScore, "min-score", 0, "only browse jobs scored at or above this value")
	rootCmd.AddCommand(browseCmd)
}
