package theory

import (
	"math"

	"github.com/wildstyl3r/holoscat/internal/scatterer"
	"github.com/wildstyl3r/holoscat/internal/utils"
)

// Rayleigh treats a sphere as a point dipole. It is accurate for size
// parameters k*a well below 1. Only single spheres are handled, so clusters
// are computed by superposition.
type Rayleigh struct{}

func (Rayleigh) Name() string {
	return "Rayleigh"
}

func (Rayleigh) CanHandle(s scatterer.Scatterer) bool {
	sphere, ok := s.(*scatterer.Sphere)
	return ok && sphere.R > 0
}

// polarizability is the Clausius-Mossotti factor (m^2-1)/(m^2+2) for the
// index relative to the medium.
func polarizability(sphere *scatterer.Sphere, mediumIndex float64) complex128 {
	m := sphere.N / complex(mediumIndex, 0)
	m2 := m * m
	return (m2 - 1) / (m2 + 2)
}

func (r Rayleigh) sphere(s scatterer.Scatterer) (*scatterer.Sphere, error) {
	if !r.CanHandle(s) {
		return nil, notCompatible(r, s, "")
	}
	return s.(*scatterer.Sphere), nil
}

// RawScatMatrs returns S1 = -i x^3 (m^2-1)/(m^2+2), S2 = S1 cos(theta) and
// vanishing off-diagonal elements.
func (r Rayleigh) RawScatMatrs(s scatterer.Scatterer, pos utils.Spherical, mediumWavevec, mediumIndex float64) ([]ScatMatr, error) {
	sphere, err := r.sphere(s)
	if err != nil {
		return nil, err
	}
	x := mediumWavevec * sphere.R
	s1 := complex(0, -x*x*x) * polarizability(sphere, mediumIndex)
	matrs := make([]ScatMatr, pos.Len())
	for i := range matrs {
		s2 := s1 * complex(math.Cos(pos.Theta[i]), 0)
		matrs[i] = ScatMatr{{s2, 0}, {0, s1}}
	}
	return matrs, nil
}

func (r Rayleigh) RawCrossSections(s scatterer.Scatterer, mediumWavevec, mediumIndex float64, _ []float64) ([4]float64, error) {
	sphere, err := r.sphere(s)
	if err != nil {
		return [4]float64{}, err
	}
	x := mediumWavevec * sphere.R
	alpha := polarizability(sphere, mediumIndex)
	geometric := math.Pi * sphere.R * sphere.R
	scattering := 8. / 3. * math.Pow(x, 4) * abs2(alpha) * geometric
	absorption := 4 * x * imag(alpha) * geometric
	return [4]float64{scattering, absorption, scattering + absorption, 0}, nil
}
