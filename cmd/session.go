package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/studyplan/internal/models"
	"github.com/joescharf/studyplan/internal/output"
	"github.com/joescharf/studyplan/internal/schedule"
	"github.com/joescharf/studyplan/internal/store"
	"github.com/joescharf/studyplan/internal/timeutil"
)

var (
	sessionStart  string
	sessionEnd    string
	sessionWeight float64
	sessionLabel  string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage candidate study sessions",
	Long:  "Add, list, and remove the candidate sessions the optimizer chooses from.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionListRun()
	},
}

var sessionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a candidate session",
	Long: `Add a candidate session. Times accept HH:MM clock text or integer
minutes since midnight. Overlapping sessions are fine; the optimizer
resolves conflicts when you run 'studyplan optimize'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionAddRun()
	},
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List candidate sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionListRun()
	},
}

var sessionRemoveCmd = &cobra.Command{
	Use:     "remove <session-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionRemoveRun(args[0])
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionClearRun()
	},
}

var sessionImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Bulk-load sessions from a YAML file",
	Long: `Bulk-load sessions from a YAML file containing a list of entries:

  - start: "9:00"
    end: "10:00"
    weight: 5
    label: Math

Entries before an invalid one are kept; the error names the bad index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionImportRun(args[0])
	},
}

func init() {
	sessionAddCmd.Flags().StringVar(&sessionStart, "start", "", "Start time, HH:MM or minutes (required)")
	sessionAddCmd.Flags().StringVar(&sessionEnd, "end", "", "End time, HH:MM or minutes (required)")
	sessionAddCmd.Flags().Float64Var(&sessionWeight, "weight", 0, "Benefit weight, positive (required)")
	sessionAddCmd.Flags().StringVar(&sessionLabel, "label", "", "Session label (required)")
	_ = sessionAddCmd.MarkFlagRequired("start")
	_ = sessionAddCmd.MarkFlagRequired("end")
	_ = sessionAddCmd.MarkFlagRequired("weight")
	_ = sessionAddCmd.MarkFlagRequired("label")

	sessionCmd.AddCommand(sessionAddCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionRemoveCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionImportCmd)
	rootCmd.AddCommand(sessionCmd)
}

func sessionAddRun() error {
	start, end, err := parseInterval(sessionStart, sessionEnd)
	if err != nil {
		return err
	}
	if err := validateSession(start, end, sessionWeight, sessionLabel); err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would add session: %s [%s - %s] w=%g", sessionLabel, sessionStart, sessionEnd, sessionWeight)
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	session := &models.Session{
		Label:  sessionLabel,
		Start:  start,
		End:    end,
		Weight: sessionWeight,
	}
	if err := s.CreateSession(context.Background(), session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	ui.Success("Added session %s: %s", output.Cyan(shortID(session.ID)), sessionLabel)
	return nil
}

func sessionListRun() error {
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

	table := ui.Table([]string{"ID", "Label", "Start", "End", "Weight"})
	for _, session := range sessions {
		startText, _ := timeutil.Text(session.Start)
		endText, _ := timeutil.Text(session.End)
		_ = table.Append([]string{
			shortID(session.ID),
			session.Label,
			startText,
			endText,
			output.Weight(session.Weight),
		})
	}
	_ = table.Render()
	return nil
}

func sessionRemoveRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	session, err := findSession(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would remove session %s: %s", shortID(session.ID), session.Label)
		return nil
	}

	if err := s.DeleteSession(ctx, session.ID); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}

	ui.Success("Removed session %s: %s", output.Cyan(shortID(session.ID)), session.Label)
	return nil
}

func sessionClearRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would remove all sessions")
		return nil
	}

	n, err := s.ClearSessions(context.Background())
	if err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}

	ui.Success("Removed %d session(s)", n)
	return nil
}

// importEntry matches one YAML list item. Start/end are any so both quoted
// clock text and bare integer minutes decode.
type importEntry struct {
	Start  any     `yaml:"start"`
	End    any     `yaml:"end"`
	Weight float64 `yaml:"weight"`
	Label  string  `yaml:"label"`
}

func sessionImportRun(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	var entries []importEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse import file: %w", err)
	}
	if len(entries) == 0 {
		ui.Info("Nothing to import.")
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	added := 0
	for i, e := range entries {
		start, err := clockValue(e.Start)
		if err != nil {
			return importErr(i, added, fmt.Errorf("start: %w", err))
		}
		end, err := clockValue(e.End)
		if err != nil {
			return importErr(i, added, fmt.Errorf("end: %w", err))
		}
		if err := validateSession(start, end, e.Weight, e.Label); err != nil {
			return importErr(i, added, err)
		}

		if dryRun {
			ui.DryRunMsg("Would add session: %s [%v - %v] w=%g", e.Label, e.Start, e.End, e.Weight)
			added++
			continue
		}

		session := &models.Session{Label: e.Label, Start: start, End: end, Weight: e.Weight}
		if err := s.CreateSession(ctx, session); err != nil {
			return importErr(i, added, err)
		}
		ui.VerboseLog("Added %s: %s", shortID(session.ID), session.Label)
		added++
	}

	ui.Success("Imported %d session(s) from %s", added, path)
	return nil
}

func importErr(index, added int, err error) error {
	return fmt.Errorf("entry %d: %w (%d earlier entries were kept)", index, err, added)
}

// clockValue converts a YAML scalar (string clock text or integer minutes)
// to minutes since midnight.
func clockValue(v any) (int, error) {
	switch x := v.(type) {
	case int:
		if x < 0 {
			return 0, fmt.Errorf("%w: negative minutes %d", timeutil.ErrBadClock, x)
		}
		return x, nil
	case string:
		return timeutil.ParseClock(x)
	default:
		return 0, fmt.Errorf("%w: %v (want minutes or HH:MM)", timeutil.ErrBadClock, v)
	}
}

// parseInterval normalizes the start/end flag values.
func parseInterval(startText, endText string) (int, int, error) {
	start, err := timeutil.ParseClock(startText)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := timeutil.ParseClock(endText)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --end: %w", err)
	}
	return start, end, nil
}

// validateSession runs the planner's insert validation without a store write.
func validateSession(start, end int, weight float64, label string) error {
	p, err := schedule.NewPlanner(0)
	if err != nil {
		return err
	}
	return p.Add(start, end, weight, label)
}

// findSession finds a session by full ID or prefix match.
func findSession(ctx context.Context, s store.Store, id string) (*models.Session, error) {
	// Try exact match first
	if session, err := s.GetSession(ctx, id); err == nil {
		return session, nil
	}

	// Try prefix match - list all and filter
	upper := strings.ToUpper(id)
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*models.Session
	for _, session := range sessions {
		if strings.HasPrefix(session.ID, upper) {
			matches = append(matches, session)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("session not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous session ID %s: matches %d sessions", id, len(matches))
	}
}

// shortID returns a truncated ULID for display (first 12 chars).
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
