package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mechadv/robocoord/pkg/domain"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer for w. Terminals get the auto-detected
// light or dark style wrapped to their width; anything else gets the plain
// "notty" style.
func NewRenderer(w io.Writer) (Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	if IsTerminal(w) {
		opts = []glamour.TermRendererOption{
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(Width(w, 80)),
		}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r.Render, nil
}

// GoalsMarkdown lists every goal each coordinator accepts.
func GoalsMarkdown() string {
	var b strings.Builder
	b.WriteString("# Goals\n\n")

	b.WriteString("## Rollers\n\n| Goal | Intaking |\n|---|---|\n")
	for _, g := range domain.AllRollersGoals() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", g, yesNo(g.Intaking()))
	}

	b.WriteString("\n## Superstructure\n\n| Goal | Climb sequence |\n|---|---|\n")
	for _, g := range domain.AllSuperstructureGoals() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", g, yesNo(g.Climbing()))
	}
	return b.String()
}

// SnapshotMarkdown reports one snapshot as two tables.
func SnapshotMarkdown(snap domain.Snapshot) string {
	r, s := snap.Rollers, snap.Superstructure

	var b strings.Builder
	fmt.Fprintf(&b, "# Cycle %d at %s\n\n", snap.Cycle, snap.Time)

	b.WriteString("## Rollers\n\n| | |\n|---|---|\n")
	row(&b, "Goal", r.Goal)
	row(&b, "Gamepiece", fmt.Sprintf("%s (for %s)", r.GamepieceState, r.StateAge))
	row(&b, "Has note", yesNo(r.HasNote))
	row(&b, "Touching note", yesNo(r.TouchingNote))
	row(&b, "Intake", r.Intake)
	row(&b, "Indexer", r.Indexer)
	row(&b, "Feeder", r.Feeder)
	row(&b, "Backpack", r.Backpack)

	b.WriteString("\n## Superstructure\n\n| | |\n|---|---|\n")
	row(&b, "Desired", s.DesiredGoal)
	row(&b, "Current", fmt.Sprintf("%s (for %s)", s.CurrentGoal, s.GoalAge))
	row(&b, "Safety override", yesNo(s.SafetyOverride))
	row(&b, "At goal", yesNo(s.AtGoal))
	row(&b, "Arm", fmt.Sprintf("%s (settled: %s)", s.Arm, yesNo(s.AtArmGoal)))
	row(&b, "Climber", s.Climber)
	row(&b, "Backpack actuator", s.BackpackActuator)
	if s.Characterizing {
		row(&b, "Characterizing", "yes")
	}
	return b.String()
}

func row(b *strings.Builder, key string, v any) {
	fmt.Fprintf(b, "| %s | `%v` |\n", key, v)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
