package systems

import "github.com/pthm-cable/biosim/components"

// Recorder receives the events produced during a yearly cycle.
// telemetry.Collector implements it.
type Recorder interface {
	RecordBirth(s components.Species)
	RecordDeath(s components.Species, age int)
	RecordKill(eaten float64)
	RecordGrazing(eaten float64)
	RecordMigration(s components.Species)
}

// Discard is a Recorder that drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) RecordBirth(components.Species) {}
func (discard) RecordDeath(components.Species, int) {}
func (discard) RecordKill(float64) {}
func (discard) RecordGrazing(float64) {}
func (discard) RecordMigration(components.Species) {}

func orDiscard(r Recorder) Recorder {
	if r == nil {
		return Discard
	}
	return r
}
