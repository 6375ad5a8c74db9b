package components

import (
	"fmt"
	"strings"
)

// Species identifies one of the two animal archetypes on the island.
type Species uint8

const (
	Herbivore Species = iota // Prey: grazes fodder
	Carnivore                // Predator: hunts herbivores
)

// NumSpecies is the fixed number of species in the model.
const NumSpecies = 2

// AllSpecies lists every species in processing order (prey first).
var AllSpecies = [NumSpecies]Species{Herbivore, Carnivore}

// String returns the display name for a species.
func (s Species) String() string {
	switch s {
	case Herbivore:
		return "Herbivore"
	case Carnivore:
		return "Carnivore"
	}
	return fmt.Sprintf("Species(%d)", uint8(s))
}

// Valid reports whether s is one of the known species.
func (s Species) Valid() bool {
	return s < NumSpecies
}

// ParseSpecies resolves a species name. Accepts "Herbivore"/"prey" and
// "Carnivore"/"predator" in any case.
func ParseSpecies(name string) (Species, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "herbivore", "prey":
		return Herbivore, nil
	case "carnivore", "predator":
		return Carnivore, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Species) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSpecies, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Species) UnmarshalText(text []byte) error {
	parsed, err := ParseSpecies(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SpeciesParams is the immutable parameter record shared by every animal of
// one species. Animals never hold a copy; operations receive the record that
// is current when they run.
type SpeciesParams struct {
	WBirth      float64 `yaml:"w_birth" json:"w_birth"`         // Mean birth weight
	SigmaBirth  float64 `yaml:"sigma_birth" json:"sigma_birth"` // Birth weight standard deviation
	Beta        float64 `yaml:"beta" json:"beta"`               // Fraction of food converted to weight
	Eta         float64 `yaml:"eta" json:"eta"`                 // Annual fractional weight loss
	AHalf       float64 `yaml:"a_half" json:"a_half"`           // Age at which the age term is 0.5
	PhiAge      float64 `yaml:"phi_age" json:"phi_age"`         // Steepness of the age term
	WHalf       float64 `yaml:"w_half" json:"w_half"`           // Weight at which the weight term is 0.5
	PhiWeight   float64 `yaml:"phi_weight" json:"phi_weight"`   // Steepness of the weight term
	Mu          float64 `yaml:"mu" json:"mu"`                   // Migration tendency
	Lambda      float64 `yaml:"lambda" json:"lambda"`           // Migration sensitivity to abundance
	Gamma       float64 `yaml:"gamma" json:"gamma"`             // Birth chance coefficient
	Zeta        float64 `yaml:"zeta" json:"zeta"`               // Minimum weight multiplier for giving birth
	Xi          float64 `yaml:"xi" json:"xi"`                   // Mother's weight loss per unit birth weight
	Omega       float64 `yaml:"omega" json:"omega"`             // Death coefficient
	F           float64 `yaml:"F" json:"F"`                     // Appetite: max food intake per year
	DeltaPhiMax float64 `yaml:"DeltaPhiMax" json:"DeltaPhiMax"` // Carnivore only: fitness gap for a guaranteed kill
}

// DefaultSpeciesParams returns the reference parameter record for a species.
func DefaultSpeciesParams(s Species) SpeciesParams {
	if s == Carnivore {
		return SpeciesParams{
			WBirth:      6.0,
			SigmaBirth:  1.0,
			Beta:        0.75,
			Eta:         0.125,
			AHalf:       60.0,
			PhiAge:      0.4,
			WHalf:       4.0,
			PhiWeight:   0.4,
			Mu:          0.4,
			Lambda:      1.0,
			Gamma:       0.8,
			Zeta:        3.5,
			Xi:          1.1,
			Omega:       0.9,
			F:           50.0,
			DeltaPhiMax: 10.0,
		}
	}
	return SpeciesParams{
		WBirth:     8.0,
		SigmaBirth: 1.5,
		Beta:       0.9,
		Eta:        0.05,
		AHalf:      40.0,
		PhiAge:     0.2,
		WHalf:      10.0,
		PhiWeight:  0.1,
		Mu:         0.25,
		Lambda:     1.0,
		Gamma:      0.2,
		Zeta:       3.5,
		Xi:         1.2,
		Omega:      0.4,
		F:          10.0,
	}
}

// MinBirthWeight is the weight a mother must exceed before she can give birth.
func (p *SpeciesParams) MinBirthWeight() float64 {
	return p.Zeta * (p.WBirth + p.SigmaBirth)
}
