package cli

import (
	"fmt"

	"github.com/mechadv/robocoord/internal/presentation/tui"
)

// Goals prints the goal tables of both coordinators.
func Goals(opts Options) error {
	out := opts.stdout()
	render, err := tui.NewRenderer(out)
	if err != nil {
		return err
	}
	md, err := render(tui.GoalsMarkdown())
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, md)
	return err
}
