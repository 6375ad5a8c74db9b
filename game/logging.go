package game

import (
	"log/slog"

	"github.com/pthm-cable/biosim/components"
)

// LogWorldState logs a per-landscape summary of the island.
func (s *Simulation) LogWorldState() {
	var patches, herbivores, carnivores [components.NumLandscapes]int
	var fodder [components.NumLandscapes]float64
	for _, p := range s.island.Patches() {
		l := p.Landscape
		patches[l]++
		herbivores[l] += p.Count(components.Herbivore)
		carnivores[l] += p.Count(components.Carnivore)
		fodder[l] += p.Fodder
	}

	attrs := make([]any, 0, components.NumLandscapes+1)
	attrs = append(attrs, slog.Int("year", s.year))
	for l := components.Landscape(0); l < components.NumLandscapes; l++ {
		if patches[l] == 0 || !l.Habitable() {
			continue
		}
		attrs = append(attrs, slog.Group(l.String(),
			slog.Int("patches", patches[l]),
			slog.Int("herbivores", herbivores[l]),
			slog.Int("carnivores", carnivores[l]),
			slog.Float64("fodder", fodder[l]),
		))
	}
	slog.Info("world state", attrs...)
}
