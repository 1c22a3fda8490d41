package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"appeal-engine/internal/content"
	"appeal-engine/internal/judge"
	"appeal-engine/internal/model"
	"appeal-engine/internal/ruleset"
)

func init() {
	var (
		day        int
		recordPath string
		date       string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Judge a single user record against a day's rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := content.ReadRecord(recordPath)
			if err != nil {
				return err
			}
			if date == "" {
				date = content.New(&cfg.Content).LoadDay(day).Date
			}

			v := ruleset.Apply(ruleset.Default().Resolve(day))
			verdict := v.Evaluate(rec, date)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s (banned %s, checked %s)\n", rec.Name, rec.BanDate, date)
			fmt.Fprintf(out, "broken:  %s\n", judge.FormatBroken(verdict.Broken))
			fmt.Fprintf(out, "stale:   %t\n", verdict.Stale)
			answer := model.DecisionFromBool(verdict.Valid)
			fmt.Fprintf(out, "verdict: %s\n", strings.ToUpper(answer.String()))
			fmt.Fprintf(out, "reason:  %s\n", judge.MistakeText(rec, verdict))
			return nil
		},
	}
	cmd.Flags().IntVarP(&day, "day", "d", 1, "Day whose rules apply")
	cmd.Flags().StringVarP(&recordPath, "record", "r", "", "Path to a user record JSON file (required)")
	cmd.Flags().StringVar(&date, "date", "", "Current date YYYY-MM-DD (defaults to the day's date)")
	_ = cmd.MarkFlagRequired("record")
	rootCmd.AddCommand(cmd)
}
