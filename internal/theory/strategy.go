package theory

import (
	"github.com/wildstyl3r/holoscat/internal/scatterer"
)

// A fieldStrategy decides whether it can compute the field of a scatterer
// and, if so, which independently computed components sum to it.
type fieldStrategy struct {
	name       string
	components func(t *ScatteringTheory, s scatterer.Scatterer) ([]scatterer.Scatterer, bool)
}

// fieldStrategies are tried in order; the first that applies wins.
var fieldStrategies = []fieldStrategy{
	{
		name: "direct",
		components: func(t *ScatteringTheory, s scatterer.Scatterer) ([]scatterer.Scatterer, bool) {
			if !t.Kernel.CanHandle(s) {
				return nil, false
			}
			return []scatterer.Scatterer{s}, true
		},
	},
	{
		name: "superposition",
		components: func(t *ScatteringTheory, s scatterer.Scatterer) ([]scatterer.Scatterer, bool) {
			composite, ok := s.(scatterer.Composite)
			if !ok {
				return nil, false
			}
			return composite.ComponentList(), true
		},
	},
}

// plan picks the field strategy for s.
func (t *ScatteringTheory) plan(s scatterer.Scatterer) (string, []scatterer.Scatterer, error) {
	for _, strategy := range fieldStrategies {
		if components, ok := strategy.components(t, s); ok {
			if len(components) == 0 {
				return "", nil, notCompatible(t.Kernel, s, "composite has no components")
			}
			return strategy.name, components, nil
		}
	}
	return "", nil, notCompatible(t.Kernel, s, "")
}
