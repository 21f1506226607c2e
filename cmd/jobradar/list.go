package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kwhitfield/jobradar/internal/model"
)

var (
	listStatus   string
	listMinScore int
	listCompany  string
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jobs, best matches first",
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

		filter := model.ListFilter{
			Company: listCompany,
			Limit:   listLimit,
		}
		if listStatus != "" {
			if !model.ValidStatus(model.Status(listStatus)) {
				return fmt.Errorf("invalid status %q", listStatus)
			}
			filter.Status = model.Status(listStatus)
		}
		if cmd.Flags().Changed("min-score") {
			filter.MinScore = &listMinScore
		}

		jobs, err := st.ListFiltered(filter)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSCORE\tSTATUS\tTITLE\tCOMPANY\tLOCATION")
		for _, j := range jobs {
			score := "-"
			if j.MatchScore != nil {
				score = strconv.Itoa(*j.MatchScore)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				j.ID, score, j.Status, j.Title, j.Company, j.Location)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (new, reviewed, applied, interviewing, rejected)")
	listCmd.Flags().IntVar(&listMinScore, "min-score", 0, "only show jobs scored at or above this value")
	listCmd.Flags().StringVar(&listCompany, "company", "", "filter by company name substring")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum rows to show (default 100)")
	rootCmd.AddCommand(listCmd)
}
