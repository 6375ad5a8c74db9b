package components

import (
	"fmt"
	"math"
	"sort"

	"github.com/agnivade/levenshtein"
)

// ParamDescriptor describes one settable parameter: its public name and the
// accepted range.
type ParamDescriptor struct {
	Name         string
	Min          float64
	Max          float64
	MinExclusive bool // Value must be strictly greater than Min
}

// check validates a value against the descriptor's range.
func (d ParamDescriptor) check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v is not finite", ErrInvalidParameter, d.Name, v)
	}
	if d.MinExclusive && v <= d.Min {
		return fmt.Errorf("%w: %s = %v must be > %v", ErrInvalidParameter, d.Name, v, d.Min)
	}
	if v < d.Min || v > d.Max {
		return fmt.Errorf("%w: %s = %v outside [%v, %v]", ErrInvalidParameter, d.Name, v, d.Min, d.Max)
	}
	return nil
}

type speciesField struct {
	ParamDescriptor
	carnivoreOnly bool
	ptr           func(*SpeciesParams) *float64
}

type landscapeField struct {
	ParamDescriptor
	kinds []Landscape
	ptr   func(*LandscapeParams) *float64
}

var inf = math.Inf(1)

var speciesFields = []speciesField{
	{ParamDescriptor{Name: "w_birth", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.WBirth }},
	{ParamDescriptor{Name: "sigma_birth", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.SigmaBirth }},
	{ParamDescriptor{Name: "beta", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.Beta }},
	{ParamDescriptor{Name: "eta", Max: 1}, false, func(p *SpeciesParams) *float64 { return &p.Eta }},
	{ParamDescriptor{Name: "a_half", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.AHalf }},
	{ParamDescriptor{Name: "phi_age", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.PhiAge }},
	{ParamDescriptor{Name: "w_half", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.WHalf }},
	{ParamDescriptor{Name: "phi_weight", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.PhiWeight }},
	{ParamDescriptor{Name: "mu", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.Mu }},
	{ParamDescriptor{Name: "lambda", Min: -inf, Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.Lambda }},
	{ParamDescriptor{Name: "gamma", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.Gamma }},
	{ParamDescriptor{Name: "zeta", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.Zeta }},
	{ParamDescriptor{Name: "xi", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.Xi }},
	{ParamDescriptor{Name: "omega", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.Omega }},
	{ParamDescriptor{Name: "F", Max: inf}, false, func(p *SpeciesParams) *float64 { return &p.F }},
	{ParamDescriptor{Name: "DeltaPhiMax", Max: inf, MinExclusive: true}, true, func(p *SpeciesParams) *float64 { return &p.DeltaPhiMax }},
}

var landscapeFields = []landscapeField{
	{ParamDescriptor{Name: "f_max", Max: inf}, []Landscape{Jungle, Savannah}, func(p *LandscapeParams) *float64 { return &p.FMax }},
	{ParamDescriptor{Name: "alpha", Max: 1}, []Landscape{Savannah}, func(p *LandscapeParams) *float64 { return &p.Alpha }},
}

// SpeciesParamNames returns the settable parameter names for a species.
func SpeciesParamNames(s Species) []string {
	names := make([]string, 0, len(speciesFields))
	for _, f := range speciesFields {
		if f.carnivoreOnly && s != Carnivore {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// LandscapeParamNames returns the settable parameter names for a landscape.
func LandscapeParamNames(l Landscape) []string {
	var names []string
	for _, f := range landscapeFields {
		for _, k := range f.kinds {
			if k == l {
				names = append(names, f.Name)
				break
			}
		}
	}
	return names
}

func lookupSpeciesField(s Species, name string) (*speciesField, error) {
	for i := range speciesFields {
		f := &speciesFields[i]
		if f.Name != name {
			continue
		}
		if f.carnivoreOnly && s != Carnivore {
			return nil, fmt.Errorf("%w: %q does not apply to %s", ErrUnknownParameter, name, s)
		}
		return f, nil
	}
	return nil, unknownParam(name, s.String(), SpeciesParamNames(s))
}

func lookupLandscapeField(l Landscape, name string) (*landscapeField, error) {
	valid := LandscapeParamNames(l)
	for i := range landscapeFields {
		f := &landscapeFields[i]
		if f.Name != name {
			continue
		}
		for _, k := range f.kinds {
			if k == l {
				return f, nil
			}
		}
		return nil, fmt.Errorf("%w: %q does not apply to %s", ErrUnknownParameter, name, l)
	}
	return nil, unknownParam(name, l.String(), valid)
}

// unknownParam builds an error with the closest valid names as suggestions.
func unknownParam(name, owner string, valid []string) error {
	if len(valid) == 0 {
		return fmt.Errorf("%w: %s has no parameters (got %q)", ErrUnknownParameter, owner, name)
	}
	if s := suggest(name, valid); len(s) > 0 {
		return fmt.Errorf("%w: %q for %s (did you mean %q?)", ErrUnknownParameter, name, owner, s[0])
	}
	return fmt.Errorf("%w: %q for %s", ErrUnknownParameter, name, owner)
}

// suggest returns candidates within edit distance of name, closest first.
func suggest(name string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	var hits []scored
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(name, c)
		if dist <= distanceLimit(len(c)) {
			hits = append(hits, scored{c, dist})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
