// Package main provides CMA-ES calibration of species parameters.
package main

import (
	"fmt"

	"github.com/pthm-cable/biosim/components"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Species components.Species
	Name    string  // Parameter name as accepted by ParamSet.WithSpeciesParam
	Min     float64 // Lower bound
	Max     float64 // Upper bound
}

// Label is the column name used in logs.
func (s ParamSpec) Label() string {
	return fmt.Sprintf("%s.%s", s.Species, s.Name)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	h, c := components.Herbivore, components.Carnivore
	return &ParamVector{
		Specs: []ParamSpec{
			// Herbivore reproduction and death
			{Species: h, Name: "zeta", Min: 1.5, Max: 5.0},
			{Species: h, Name: "xi", Min: 0.5, Max: 2.0},
			{Species: h, Name: "omega", Min: 0.1, Max: 0.8},
			// Carnivore fitness curve
			{Species: c, Name: "a_half", Min: 20, Max: 100},
			{Species: c, Name: "phi_age", Min: 0.1, Max: 0.8},
			// Carnivore hunting
			{Species: c, Name: "F", Min: 10, Max: 80},
			{Species: c, Name: "DeltaPhiMax", Min: 1, Max: 15},
			// Carnivore reproduction, death and movement
			{Species: c, Name: "gamma", Min: 0.1, Max: 1.0},
			{Species: c, Name: "omega", Min: 0.1, Max: 1.0},
			{Species: c, Name: "mu", Min: 0.05, Max: 0.8},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Extract reads the current values from a parameter set.
func (pv *ParamVector) Extract(ps *components.ParamSet) ([]float64, error) {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v, err := ps.SpeciesParam(spec.Species, spec.Name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Apply returns a copy of ps with the clamped values set.
func (pv *ParamVector) Apply(ps *components.ParamSet, values []float64) (*components.ParamSet, error) {
	clamped := pv.Clamp(values)
	updates := [components.NumSpecies]map[string]float64{}
	for i, spec := range pv.Specs {
		if updates[spec.Species] == nil {
			updates[spec.Species] = make(map[string]float64)
		}
		updates[spec.Species][spec.Name] = clamped[i]
	}

	next := ps
	for _, s := range components.AllSpecies {
		if updates[s] == nil {
			continue
		}
		var err error
		next, err = next.WithSpeciesParams(s, updates[s])
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}
