package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appeal-engine/internal/ruleset"
)

func init() {
	var day int
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the rules of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := ruleset.Default()
			if !cmd.Flags().Changed("day") {
				for _, d := range reg.Days() {
					printRules(cmd, reg, d)
				}
				return nil
			}
			printRules(cmd, reg, day)
			return nil
		},
	}
	cmd.Flags().IntVarP(&day, "day", "d", 1, "Day number (all days when unset)")
	rootCmd.AddCommand(cmd)
}

func printRules(cmd *cobra.Command, reg *ruleset.Registry, day int) {
	rs := reg.Resolve(day)
	v := ruleset.Apply(rs)
	fmt.Fprintf(cmd.OutOrStdout(), "Day %d (%s), %d rules\n\n%s\n\n", day, rs.Name(), v.Len(), v.RuleText())
}
