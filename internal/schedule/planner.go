// Package schedule selects the maximum-weight set of non-overlapping study
// sessions, with a mandatory rest gap between consecutive picks (weighted
// interval scheduling).
package schedule

import (
	"errors"
	"fmt"

	"github.com/joescharf/studyplan/internal/models"
)

var (
	// ErrInvalidInterval indicates a session whose start is not before its end.
	ErrInvalidInterval = errors.New("session start must be before end")

	// ErrInvalidGap indicates a negative rest gap.
	ErrInvalidGap = errors.New("rest gap must be non-negative")

	// ErrInvalidWeight indicates a non-positive session weight.
	ErrInvalidWeight = errors.New("session weight must be positive")

	// ErrEmptyLabel indicates a session without a label.
	ErrEmptyLabel = errors.New("session label must not be empty")
)

// Planner accumulates candidate sessions and solves for the best schedule.
// It owns its session slice; callers only ever see copies.
type Planner struct {
	sessions []models.Session
	restGap  int
}

// NewPlanner returns a Planner with the given rest gap in minutes.
func NewPlanner(restGap int) (*Planner, error) {
	if restGap < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGap, restGap)
	}
	return &Planner{restGap: restGap}, nil
}

// Add validates and appends a candidate session. Overlaps are allowed here;
// the solver resolves them. A rejected session leaves the planner unchanged.
func (p *Planner) Add(start, end int, weight float64, label string) error {
	if start < 0 || start >= end {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidInterval, start, end)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}
	if label == "" {
		return ErrEmptyLabel
	}

	p.sessions = append(p.sessions, models.Session{
		Label:  label,
		Start:  start,
		End:    end,
		Weight: weight,
	})
	return nil
}

// AddSession is Add for an already-built model.
func (p *Planner) AddSession(s models.Session) error {
	if err := p.Add(s.Start, s.End, s.Weight, s.Label); err != nil {
		return err
	}
	p.sessions[len(p.sessions)-1].ID = s.ID
	return nil
}

// SetRestGap replaces the rest gap. Compatibility is computed per Solve call,
// so this may be changed between runs.
func (p *Planner) SetRestGap(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGap, minutes)
	}
	p.restGap = minutes
	return nil
}

// RestGap returns the current rest gap in minutes.
func (p *Planner) RestGap() int {
	return p.restGap
}

// Sessions returns a copy of the accumulated sessions in insertion order.
func (p *Planner) Sessions() []models.Session {
	out := make([]models.Session, len(p.sessions))
	copy(out, p.sessions)
	return out
}
