package metadata

import (
	"github.com/wildstyl3r/holoscat/internal/constants"
)

type Option func(*Schema)

func WithIllumination(il ...Illumination) Option {
	return func(s *Schema) {
		s.Illum = append([]Illumination(nil), il...)
	}
}

func WithMediumIndex(n float64) Option {
	return func(s *Schema) {
		s.MediumIndex = n
	}
}

func WithAttrs(attrs Attrs) Option {
	return func(s *Schema) {
		s.Attrs = attrs.Clone()
	}
}

func WithDim(dim string) Option {
	return func(s *Schema) {
		s.Dim = dim
	}
}

func newSchema(p Positions, opts []Option) Schema {
	s := Schema{
		Dim:         constants.Flat,
		Positions:   p,
		MediumIndex: constants.DefaultMediumIndex,
		Illum: []Illumination{{
			Wavelen:      constants.DefaultWavelen,
			Polarization: []float64{1, 0},
		}},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// DetectorGrid is a rectangular camera of shape[0] x shape[1] pixels in the
// z = 0 plane, flattened row by row.
func DetectorGrid(shape [2]int, spacing float64, opts ...Option) Schema {
	n := shape[0] * shape[1]
	p := Positions{
		X: make([]float64, 0, n),
		Y: make([]float64, 0, n),
		Z: make([]float64, n),
	}
	for i := range shape[0] {
		for j := range shape[1] {
			p.X = append(p.X, float64(i)*spacing)
			p.Y = append(p.Y, float64(j)*spacing)
		}
	}
	return newSchema(p, opts)
}

func DetectorPoints(x, y, z []float64, opts ...Option) Schema {
	return newSchema(Positions{X: x, Y: y, Z: z}, opts)
}

// DetectorAngles places detectors in the far field along (theta, phi).
func DetectorAngles(theta, phi []float64, opts ...Option) Schema {
	return newSchema(Positions{Theta: theta, Phi: phi}, opts)
}
