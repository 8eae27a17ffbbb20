package mechanism

import (
	"sync"

	"github.com/mechadv/robocoord/pkg/domain"
)

// Roller is a voltage-driven roller set. Each goal maps to a fixed voltage.
type Roller[G comparable] struct {
	name  string
	volts map[G]float64

	mu     sync.RWMutex
	goal   G
	output float64
	cycles uint64
}

// NewRoller creates a roller. Goals missing from volts run at zero.
func NewRoller[G comparable](name string, volts map[G]float64) *Roller[G] {
	return &Roller[G]{name: name, volts: volts}
}

// Name identifies the roller in telemetry.
func (r *Roller[G]) Name() string {
	return r.name
}

// SetGoal records the goal applied on the next Periodic.
func (r *Roller[G]) SetGoal(goal G) {
	r.mu.Lock()
	r.goal = goal
	r.mu.Unlock()
}

// Goal returns the last goal set.
func (r *Roller[G]) Goal() G {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.goal
}

// Periodic applies the goal's voltage.
func (r *Roller[G]) Periodic() {
	r.mu.Lock()
	r.output = r.volts[r.goal]
	r.cycles++
	r.mu.Unlock()
}

// Volts returns the voltage applied on the last Periodic.
func (r *Roller[G]) Volts() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.output
}

// Cycles counts Periodic calls.
func (r *Roller[G]) Cycles() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cycles
}

// Intake is a roller with a note contact sensor.
type Intake struct {
	*Roller[domain.IntakeGoal]
	touching func() bool
}

// NewIntake creates an intake. touching may be nil.
func NewIntake(volts map[domain.IntakeGoal]float64, touching func() bool) *Intake {
	return &Intake{Roller: NewRoller("intake", volts), touching: touching}
}

// IsTouchingNote reports the contact sensor.
func (i *Intake) IsTouchingNote() bool {
	return i.touching != nil && i.touching()
}

// NewIndexer creates the indexer roller.
func NewIndexer(volts map[domain.IndexerGoal]float64) *Roller[domain.IndexerGoal] {
	return NewRoller("indexer", volts)
}

// NewFeeder creates the feeder roller.
func NewFeeder(volts map[domain.FeederGoal]float64) *Roller[domain.FeederGoal] {
	return NewRoller("feeder", volts)
}

// NewBackpack creates the backpack roller.
func NewBackpack(volts map[domain.BackpackGoal]float64) *Roller[domain.BackpackGoal] {
	return NewRoller("backpack", volts)
}
