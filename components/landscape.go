package components

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/biosim/traits"
)

// Landscape is the terrain kind of a patch.
type Landscape uint8

const (
	Ocean Landscape = iota
	Mountain
	Desert
	Savannah
	Jungle
)

// NumLandscapes is the number of landscape kinds.
const NumLandscapes = 5

// landscapeInfo is the static description of a landscape kind.
type landscapeInfo struct {
	code   byte
	name   string
	traits traits.Trait
	regrow RegrowthPolicy
}

// RegrowthPolicy returns the fodder stock after one year of regrowth.
type RegrowthPolicy func(fodder float64, p LandscapeParams) float64

// regrowNone leaves the stock untouched.
func regrowNone(fodder float64, _ LandscapeParams) float64 {
	return fodder
}

// regrowReset refills the stock to its maximum.
func regrowReset(_ float64, p LandscapeParams) float64 {
	return p.FMax
}

// regrowLogistic moves the stock a fraction alpha of the way to its maximum.
func regrowLogistic(fodder float64, p LandscapeParams) float64 {
	next := fodder + p.Alpha*(p.FMax-fodder)
	if next < 0 {
		return 0
	}
	return next
}

var landscapes = [NumLandscapes]landscapeInfo{
	Ocean:    {code: 'O', name: "Ocean", regrow: regrowNone},
	Mountain: {code: 'M', name: "Mountain", regrow: regrowNone},
	Desert:   {code: 'D', name: "Desert", traits: traits.Habitable, regrow: regrowNone},
	Savannah: {code: 'S', name: "Savannah", traits: traits.Habitable | traits.Vegetated | traits.Regrowing, regrow: regrowLogistic},
	Jungle:   {code: 'J', name: "Jungle", traits: traits.Habitable | traits.Vegetated | traits.Regrowing, regrow: regrowReset},
}

// ParseLandscape resolves a single layout code letter.
func ParseLandscape(code byte) (Landscape, error) {
	for i, info := range landscapes {
		if info.code == code {
			return Landscape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: code %q", ErrUnknownLandscape, code)
}

// ParseLandscapeName resolves a landscape from its code letter or full name.
func ParseLandscapeName(name string) (Landscape, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 1 {
		return ParseLandscape(trimmed[0])
	}
	for i, info := range landscapes {
		if strings.EqualFold(info.name, trimmed) {
			return Landscape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLandscape, name)
}

// Code returns the layout letter for a landscape.
func (l Landscape) Code() byte {
	return landscapes[l].code
}

// String returns the display name for a landscape.
func (l Landscape) String() string {
	if int(l) < NumLandscapes {
		return landscapes[l].name
	}
	return fmt.Sprintf("Landscape(%d)", uint8(l))
}

// Traits returns the trait set for a landscape.
func (l Landscape) Traits() traits.Trait {
	return landscapes[l].traits
}

// Habitable reports whether animals may live on this landscape.
func (l Landscape) Habitable() bool {
	return l.Traits().Has(traits.Habitable)
}

// Regrow applies the landscape's regrowth policy.
func (l Landscape) Regrow(fodder float64, p LandscapeParams) float64 {
	return landscapes[l].regrow(fodder, p)
}

// LandscapeParams holds the vegetation parameters for one landscape kind.
type LandscapeParams struct {
	FMax  float64 `yaml:"f_max" json:"f_max"` // Maximum fodder stock
	Alpha float64 `yaml:"alpha" json:"alpha"` // Regrowth rate toward FMax (logistic policy only)
}

// DefaultLandscapeParams returns the reference vegetation parameters.
func DefaultLandscapeParams(l Landscape) LandscapeParams {
	switch l {
	case Jungle:
		return LandscapeParams{FMax: 800}
	case Savannah:
		return LandscapeParams{FMax: 300, Alpha: 0.3}
	}
	return LandscapeParams{}
}
