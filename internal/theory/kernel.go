package theory

import (
	"github.com/wildstyl3r/holoscat/internal/scatterer"
	"github.com/wildstyl3r/holoscat/internal/utils"
)

// Vec is a complex Cartesian field vector.
type Vec [3]complex128

func (v Vec) Add(o Vec) Vec {
	return Vec{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec) Scale(c complex128) Vec {
	return Vec{v[0] * c, v[1] * c, v[2] * c}
}

// ScatMatr is the amplitude scattering matrix [[S2, S3], [S4, S1]].
type ScatMatr [2][2]complex128

// Kernel is the physics behind a theory. It must implement at least one of
// FieldKernel or ScatMatrixKernel to compute fields.
type Kernel interface {
	CanHandle(s scatterer.Scatterer) bool
}

// FieldKernel computes fields directly. pos holds (k*r, theta, phi) relative
// to the scatterer center.
type FieldKernel interface {
	RawFields(pos utils.Spherical, s scatterer.Scatterer, mediumWavevec, mediumIndex float64, illumPolarization []float64) ([]Vec, error)
}

type ScatMatrixKernel interface {
	RawScatMatrs(s scatterer.Scatterer, pos utils.Spherical, mediumWavevec, mediumIndex float64) ([]ScatMatr, error)
}

// CrossSectionKernel returns scattering, absorption and extinction cross
// sections and the asymmetry parameter, in that order.
type CrossSectionKernel interface {
	RawCrossSections(s scatterer.Scatterer, mediumWavevec, mediumIndex float64, illumPolarization []float64) ([4]float64, error)
}
