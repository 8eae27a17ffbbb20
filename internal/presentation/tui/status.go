package tui

import (
	"fmt"
	"strings"

	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/muesli/termenv"
)

const (
	colorRollers   = "#38bdf8"
	colorSuper     = "#a78bfa"
	colorNote      = "#fbbf24"
	colorOverride  = "#f87171"
	colorSettled   = "#4ade80"
	colorUnsettled = "#94a3b8"
)

// StatusLine formats one snapshot as a single line, for example:
//
//	#42 0.840s rollers=FLOOR_INTAKE note=NONE super=STOW>AMP arm=AMP climber=IDLE moving
//
// Colors come from out's profile; an ASCII profile yields plain text.
func StatusLine(out *termenv.Output, snap domain.Snapshot) string {
	r, s := snap.Rollers, snap.Superstructure

	var b strings.Builder
	fmt.Fprintf(&b, "#%d %.3fs ", snap.Cycle, snap.Time.Seconds())
	fmt.Fprintf(&b, "rollers=%s ", out.String(r.Goal.String()).Foreground(out.Color(colorRollers)))

	note := out.String(r.GamepieceState.String())
	if r.GamepieceState != domain.GamepieceNone {
		note = note.Foreground(out.Color(colorNote)).Bold()
	}
	fmt.Fprintf(&b, "note=%s ", note)

	goal := s.CurrentGoal.String()
	if s.DesiredGoal != s.CurrentGoal {
		goal = s.CurrentGoal.String() + ">" + s.DesiredGoal.String()
	}
	fmt.Fprintf(&b, "super=%s ", out.String(goal).Foreground(out.Color(colorSuper)))
	fmt.Fprintf(&b, "arm=%s climber=%s", s.Arm, s.Climber)

	if s.SafetyOverride {
		b.WriteString(" " + out.String("OVERRIDE").Foreground(out.Color(colorOverride)).Bold().String())
	}
	if s.Characterizing {
		b.WriteString(" characterizing")
	}
	if s.AtGoal {
		b.WriteString(" " + out.String("at-goal").Foreground(out.Color(colorSettled)).String())
	} else {
		b.WriteString(" " + out.String("moving").Foreground(out.Color(colorUnsettled)).String())
	}
	return b.String()
}
