// Package traits defines landscape characteristics.
package traits

// Trait describes what a patch of terrain supports.
type Trait uint32

const (
	Habitable Trait = 1 << iota // Animals may live here
	Vegetated                   // Holds a fodder stock
	Regrowing                   // Fodder is renewed every year
)

// Has checks if a trait set contains a trait.
func (t Trait) Has(other Trait) bool {
	return t&other != 0
}

// Add adds a trait to the set.
func (t Trait) Add(other Trait) Trait {
	return t | other
}

// Remove removes a trait from the set.
func (t Trait) Remove(other Trait) Trait {
	return t &^ other
}

// IsGrazable checks if traits indicate a patch where prey can find fodder.
func IsGrazable(t Trait) bool {
	return t.Has(Habitable) && t.Has(Vegetated)
}

// IsBarren checks if traits indicate habitable terrain without fodder.
func IsBarren(t Trait) bool {
	return t.Has(Habitable) && !t.Has(Vegetated)
}
