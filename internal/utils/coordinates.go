package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Spherical holds polar coordinates: theta is measured from +z in [0, pi],
// phi is azimuthal in [0, 2pi). R may be +Inf for far-field points.
type Spherical struct {
	R, Theta, Phi []float64
}

func (s Spherical) Len() int {
	return len(s.Theta)
}

func (s Spherical) At(i int) (r, theta, phi float64) {
	return s.R[i], s.Theta[i], s.Phi[i]
}

type Cartesian struct {
	X, Y, Z []float64
}

func (c Cartesian) Len() int {
	return len(c.X)
}

func (c Cartesian) At(i int) Point {
	return Point{c.X[i], c.Y[i], c.Z[i]}
}

func ToSpherical(x, y, z []float64) (Spherical, error) {
	cols, err := RepeatSingletons(x, y, z)
	if err != nil {
		return Spherical{}, err
	}
	x, y, z = cols[0], cols[1], cols[2]
	s := Spherical{
		R:     make([]float64, len(x)),
		Theta: make([]float64, len(x)),
		Phi:   make([]float64, len(x)),
	}
	for i := range x {
		s.R[i], s.Theta[i], s.Phi[i] = SphericalOf(Point{x[i], y[i], z[i]})
	}
	return s, nil
}

// SphericalOf converts a single point. The origin maps to theta = 0.
func SphericalOf(p Point) (r, theta, phi float64) {
	rho := math.Hypot(p[0], p[1])
	r = math.Hypot(rho, p[2])
	theta = math.Atan2(rho, p[2])
	phi = math.Atan2(p[1], p[0])
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return
}

func ToCartesian(r, theta, phi []float64) (Cartesian, error) {
	cols, err := RepeatSingletons(r, theta, phi)
	if err != nil {
		return Cartesian{}, err
	}
	r, theta, phi = cols[0], cols[1], cols[2]
	c := Cartesian{
		X: make([]float64, len(r)),
		Y: make([]float64, len(r)),
		Z: make([]float64, len(r)),
	}
	for i := range r {
		p := CartesianOf(r[i], theta[i], phi[i])
		c.X[i], c.Y[i], c.Z[i] = p[0], p[1], p[2]
	}
	return c, nil
}

func CartesianOf(r, theta, phi float64) Point {
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return Point{
		r * sinTheta * cosPhi,
		r * sinTheta * sinPhi,
		r * cosTheta,
	}
}

// CartesianDistance is the Euclidean distance between two N-dimensional
// points. A nil p2 means the origin.
func CartesianDistance(p1, p2 []float64) float64 {
	if p2 == nil {
		p2 = make([]float64, len(p1))
	}
	return floats.Distance(p1, p2, 2)
}
