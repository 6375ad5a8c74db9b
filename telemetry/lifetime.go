package telemetry

import "github.com/pthm-cable/biosim/components"

// LifespanTracker collects the age at death of every animal that died in
// the current year, per species.
type LifespanTracker struct {
	ages [components.NumSpecies][]float64
}

// NewLifespanTracker creates an empty tracker.
func NewLifespanTracker() *LifespanTracker {
	return &LifespanTracker{}
}

// Record notes one death.
func (lt *LifespanTracker) Record(s components.Species, age int) {
	if !s.Valid() {
		return
	}
	lt.ages[s] = append(lt.ages[s], float64(age))
}

// Count returns the number of deaths recorded for a species.
func (lt *LifespanTracker) Count(s components.Species) int {
	return len(lt.ages[s])
}

// Mean returns the mean age at death for a species, or 0 if none died.
func (lt *LifespanTracker) Mean(s components.Species) float64 {
	mean, _ := MeanStd(lt.ages[s])
	return mean
}

// Reset clears all recorded deaths, keeping capacity.
func (lt *LifespanTracker) Reset() {
	for i := range lt.ages {
		lt.ages[i] = lt.ages[i][:0]
	}
}
