// Package testutils holds fixtures shared by tests across packages.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mechadv/robocoord"
	"github.com/mechadv/robocoord/pkg/config"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/stretchr/testify/require"
)

// NewSim builds a simulated robot from the default config and enables it.
// It fails the test immediately on error.
func NewSim(t *testing.T, opts ...robocoord.Option) *robocoord.Sim {
	t.Helper()
	sim, err := robocoord.NewSim(config.Default(), opts...)
	require.NoError(t, err, "Failed to build sim")
	sim.Mode.SetEnabled(true)
	return sim
}

// TickUntil runs cycles until cond holds and returns that cycle's snapshot. It
// fails the test after max cycles.
func TickUntil(t *testing.T, sim *robocoord.Sim, max int, cond func(domain.Snapshot) bool) domain.Snapshot {
	t.Helper()
	for i := 0; i < max; i++ {
		if snap := sim.Tick(); cond(snap) {
			return snap
		}
	}
	t.Fatalf("condition not met within %d cycles", max)
	return domain.Snapshot{}
}

// TickN runs n cycles and returns the last snapshot.
func TickN(sim *robocoord.Sim, n int) domain.Snapshot {
	var snap domain.Snapshot
	for i := 0; i < n; i++ {
		snap = sim.Tick()
	}
	return snap
}

// WriteFile writes content to name inside a fresh temp dir and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write fixture")
	return path
}
