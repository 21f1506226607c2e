package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a single job in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger(debug)

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		job, err := st.GetByID(id)
		if err != nil {
			return err
		}

		fmt.Printf("%s at %s\n", job.Title, job.Company)
		fmt.Printf("  ID:         %d\n", job.ID)
		fmt.Printf("  URL:        %s\n", job.URL)
		fmt.Printf("  Location:   %s\n", job.Location)
		if job.PostedDate != "" {
			fmt.Printf("  Posted:     %s\n", job.PostedDate)
		}
		fmt.Printf("  Status:     %s\n", job.Status)
		fmt.Printf("  Scraped:    %s\n", job.ScrapedAt.Local().Format("2006-01-02 15:04"))
		if job.MatchScore != nil {
			fmt.Printf("  Score:      %d/100\n", *job.MatchScore)
		} else {
			fmt.Printf("  Score:      not scored yet\n")
		}
		if job.MatchReasoning != "" {
			fmt.Printf("\nMatch reasoning:\n%s\n", job.MatchReasoning)
		}
		if job.Notes != "" {
			fmt.Printf("\nNotes:\n%s\n", job.Notes)
		}
		if job.Description != "" {
			fmt.Printf("\nDescription:\n%s\n", job.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
