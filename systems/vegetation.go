package systems

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/traits"
)

// RegrowFodder applies the landscape's yearly regrowth policy.
func (p *Patch) RegrowFodder(ps *components.ParamSet) {
	lp := ps.Landscape(p.Landscape)
	p.Fodder = p.Landscape.Regrow(p.Fodder, lp)
	if p.Fodder < 0 {
		p.Fodder = 0
	}
	if lp.FMax > 0 && p.Fodder > lp.FMax {
		p.Fodder = lp.FMax
	}
}

// SeedFodder fills a vegetated patch to its maximum stock.
func (p *Patch) SeedFodder(ps *components.ParamSet) {
	if !traits.IsGrazable(p.Landscape.Traits()) {
		return
	}
	p.Fodder = ps.Landscape(p.Landscape).FMax
}
