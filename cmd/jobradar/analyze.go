package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	analyzeCoverLetter bool
	analyzeGaps        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <job-id>",
	Short: "Generate cover letter talking points and a gap analysis for a job",
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		analyzer, err := buildAnalyzer(ctx, cfg, logger)
		if err != nil {
			return err
		}

		// Default to both when neither flag is set.
		both := !analyzeCoverLetter && !analyzeGaps

		fmt.Printf("%s at %s\n", job.Title, job.Company)

		if analyzeCoverLetter || both {
			points, err := analyzer.CoverLetterPoints(ctx, job)
			if err != nil {
				return err
			}
			fmt.Printf("\n## Cover letter points\n\n%s\n", points)
		}
		if analyzeGaps || both {
			gaps, err := analyzer.ResumeGaps(ctx, job)
			if err != nil {
				return err
			}
			fmt.Printf("\n## Resume gaps\n\n%s\n", gaps)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeCoverLetter, "cover-letter", false, "only generate cover letter points")
	analyzeCmd.Flags().BoolVar(&analyzeGaps, "gaps", false, "only generate the resume gap analysis")
	rootCmd.AddCommand(analyzeCmd)
}
