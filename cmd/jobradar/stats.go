package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kwhitfield/jobradar/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
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

		stats, err := st.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Total jobs:    %d\n", stats.Total)
		fmt.Printf("Unscored:      %d\n", stats.Unscored)
		if stats.AvgScore != nil {
			fmt.Printf("Average score: %.1f\n", *stats.AvgScore)
		}

		if len(stats.ByStatus) > 0 {
			fmt.Println("\nBy status:")
			statuses := make([]string, 0, len(stats.ByStatus))
			for s := range stats.ByStatus {
				statuses = append(statuses, string(s))
			}
			sort.Strings(statuses)
			for _, s := range statuses {
				fmt.Printf("  %-14s %d\n", s, stats.ByStatus[model.Status(s)])
			}
		}

		if len(stats.ByCompany) > 0 {
			fmt.Println("\nTop companies:")
			type row struct {
				name  string
				count int
			}
			rows := make([]row, 0, len(stats.ByCompany))
			for name, count := range stats.ByCompany {
				rows = append(rows, row{name, count})
			}
			sort.Slice(rows, func(i, j int) bool {
				if rows[i].count != rows[j].count {
					return rows[i].count > rows[j].count
				}
				return rows[i].name < rows[j].name
			})
			if len(rows) > 10 {
				rows = rows[:10]
			}
			for _, r := range rows {
				fmt.Printf("  %-30s %d\n", r.name, r.count)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
