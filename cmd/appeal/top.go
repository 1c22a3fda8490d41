package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"appeal-engine/internal/service"
)

var errArchiveDisabled = errors.New("archive is disabled; set archive.enabled")

func init() {
	var limit int
	topCmd := &cobra.Command{
		Use:   "top",
		Short: "Show the best archived sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.Archive.Enabled {
				return errArchiveDisabled
			}
			pool, archive, err := openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			totals, err := service.NewRankingService(archive).TopSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printStandings(cmd.OutOrStdout(), totals, "")
			return nil
		},
	}
	topCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sessions")

	historyCmd := &cobra.Command{
		Use:   "history SESSION_ID",
		Short: "Show every archived day of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.Archive.Enabled {
				return errArchiveDisabled
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid session id: %w", err)
			}
			pool, archive, err := openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			days, err := service.NewRankingService(archive).History(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range days {
				fmt.Fprintf(out, "Day %d  %s\n", d.Report.Summary.DayIndex, d.CreatedAt.Format("2006-01-02 15:04"))
				printReport(out, service.DayResult{Report: d.Report})
				records, err := archive.AppealRecords(cmd.Context(), id, d.Report.Summary.DayIndex)
				if err != nil {
					return err
				}
				printRecords(out, records)
			}
			return nil
		},
	}

	rootCmd.AddCommand(topCmd, historyCmd)
}
