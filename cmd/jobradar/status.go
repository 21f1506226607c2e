package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kwhitfield/jobradar/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id> <status>",
	Short: "Update a job's application status",
	Long:  "Update a job's application status.\nValid statuses: new, reviewed, applied, interviewing, rejected.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger(debug)

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}
		status := model.Status(args[1])
		if !model.ValidStatus(status) {
			return fmt.Errorf("invalid status %q (valid: new, reviewed, applied, interviewing, rejected)", args[1])
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

		if err := st.UpdateStatus(id, status); err != nil {
			return err
		}
		fmt.Printf("Job %d marked %s.\n", id, status)
		return nil
	},
}

var noteCmd = &cobra.Command{
	Use:   "note <job-id> <text>",
	Short: "Attach a note to a job",
	Args:  cobra.ExactArgs(2),
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

		if err := st.UpdateNotes(id, args[1]); err != nil {
			return err
		}
		fmt.Printf("Job %d note saved.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(noteCmd)
}
