package components

import (
	"fmt"
	"maps"
	"slices"
)

// ParamSet bundles the parameter records for both species and every
// landscape kind. A ParamSet is treated as immutable: the With* methods
// return an updated copy and leave the receiver untouched.
type ParamSet struct {
	species    [NumSpecies]SpeciesParams
	landscapes [NumLandscapes]LandscapeParams
}

// DefaultParamSet returns the reference parameters for all species and landscapes.
func DefaultParamSet() *ParamSet {
	ps := &ParamSet{}
	for _, s := range AllSpecies {
		ps.species[s] = DefaultSpeciesParams(s)
	}
	for l := Landscape(0); l < NumLandscapes; l++ {
		ps.landscapes[l] = DefaultLandscapeParams(l)
	}
	return ps
}

// NewParamSet builds a parameter set from explicit records after validating them.
func NewParamSet(herbivore, carnivore SpeciesParams, jungle, savannah LandscapeParams) (*ParamSet, error) {
	ps := DefaultParamSet()
	ps.species[Herbivore] = herbivore
	ps.species[Carnivore] = carnivore
	ps.landscapes[Jungle] = jungle
	ps.landscapes[Savannah] = savannah
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// Species returns the parameter record for a species.
func (ps *ParamSet) Species(s Species) *SpeciesParams {
	return &ps.species[s]
}

// Landscape returns the vegetation parameters for a landscape kind.
func (ps *ParamSet) Landscape(l Landscape) LandscapeParams {
	return ps.landscapes[l]
}

// SpeciesParam looks up one species parameter by name.
func (ps *ParamSet) SpeciesParam(s Species, name string) (float64, error) {
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSpecies, uint8(s))
	}
	f, err := lookupSpeciesField(s, name)
	if err != nil {
		return 0, err
	}
	return *f.ptr(&ps.species[s]), nil
}

// WithSpeciesParam returns a copy of the set with one species parameter changed.
func (ps *ParamSet) WithSpeciesParam(s Species, name string, value float64) (*ParamSet, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSpecies, uint8(s))
	}
	f, err := lookupSpeciesField(s, name)
	if err != nil {
		return nil, err
	}
	if err := f.check(value); err != nil {
		return nil, fmt.Errorf("%s: %w", s, err)
	}
	next := *ps
	*f.ptr(&next.species[s]) = value
	return &next, nil
}

// WithLandscapeParam returns a copy of the set with one landscape parameter changed.
func (ps *ParamSet) WithLandscapeParam(l Landscape, name string, value float64) (*ParamSet, error) {
	if int(l) >= NumLandscapes {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLandscape, uint8(l))
	}
	f, err := lookupLandscapeField(l, name)
	if err != nil {
		return nil, err
	}
	if err := f.check(value); err != nil {
		return nil, fmt.Errorf("%s: %w", l, err)
	}
	next := *ps
	*f.ptr(&next.landscapes[l]) = value
	return &next, nil
}

// WithSpeciesParams applies several named updates at once. Either all of them
// are applied or, on the first error, none are.
func (ps *ParamSet) WithSpeciesParams(s Species, values map[string]float64) (*ParamSet, error) {
	next := ps
	for _, name := range sortedKeys(values) {
		var err error
		next, err = next.WithSpeciesParam(s, name, values[name])
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// WithLandscapeParams applies several named updates at once, all or nothing.
func (ps *ParamSet) WithLandscapeParams(l Landscape, values map[string]float64) (*ParamSet, error) {
	next := ps
	for _, name := range sortedKeys(values) {
		var err error
		next, err = next.WithLandscapeParam(l, name, values[name])
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// Validate checks every field of every record against its descriptor.
func (ps *ParamSet) Validate() error {
	for _, s := range AllSpecies {
		p := ps.species[s]
		for _, f := range speciesFields {
			if f.carnivoreOnly && s != Carnivore {
				continue
			}
			if err := f.check(*f.ptr(&p)); err != nil {
				return fmt.Errorf("%s: %w", s, err)
			}
		}
	}
	for _, f := range landscapeFields {
		for _, l := range f.kinds {
			p := ps.landscapes[l]
			if err := f.check(*f.ptr(&p)); err != nil {
				return fmt.Errorf("%s: %w", l, err)
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}
