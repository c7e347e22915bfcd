package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/studyplan/internal/output"
	"github.com/joescharf/studyplan/internal/schedule"
)

var optimizeGap int

var optimizeCmd = &cobra.Command{
	Use:     "optimize",
	Aliases: []string{"solve"},
	Short:   "Compute the best non-overlapping schedule",
	Long: `Compute the maximum-benefit subset of the stored sessions such that no
two chosen sessions overlap and consecutive sessions are separated by at
least the rest gap. Every run recomputes from scratch over all sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return optimizeRun(cmd)
	},
}

func init() {
	optimizeCmd.Flags().IntVar(&optimizeGap, "gap", 0, "Rest gap in minutes (overrides configured rest_gap)")
	rootCmd.AddCommand(optimizeCmd)
}

func optimizeRun(cmd *cobra.Command) error {
	gap, err := configuredGap()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("gap") {
		if optimizeGap < 0 {
			return fmt.Errorf("--gap must be non-negative, got %d", optimizeGap)
		}
		gap = optimizeGap
	}
	return optimizeWithGap(gap)
}

func optimizeWithGap(gap int) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	sessions, err := s.ListSessions(context.Background())
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		ui.Info("No sessions stored. Use 'studyplan session add' to get started.")
		return nil
	}

	planner, err := schedule.NewPlanner(gap)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if err := planner.AddSession(*session); err != nil {
			return fmt.Errorf("stored session %s is invalid: %w", shortID(session.ID), err)
		}
	}

	ui.VerboseLog("Solving over %d sessions with a %d minute rest gap", len(sessions), gap)
	result := planner.Solve()

	if len(result.Entries) == 0 {
		ui.Info("No feasible schedule found.")
		return nil
	}

	table := ui.Table([]string{"Start", "End", "Label", "Weight"})
	for _, e := range result.Entries {
		_ = table.Append([]string{
			e.StartText,
			e.EndText,
			e.Label,
			output.Weight(e.Weight),
		})
	}
	_ = table.Render()

	fmt.Fprintln(ui.Out)
	ui.Success("Chose %d of %d sessions, total benefit %s",
		len(result.Entries), len(sessions), output.Green(fmt.Sprintf("%g", result.Total)))
	return nil
}
