package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a Cartesian position.
type Point [3]float64

// RotationMatrix returns the matrix rotating a column vector (active picture)
// by alpha clockwise about the lab z axis, beta clockwise about the lab y axis
// and gamma about the lab z axis. Clockwise is viewed from the origin looking
// along the positive axis.
//
// This is not the passive convention used by SCSMFO.
func RotationMatrix(alpha, beta, gamma float64, radians bool) *mat.Dense {
	if !radians {
		alpha *= math.Pi / 180.
		beta *= math.Pi / 180.
		gamma *= math.Pi / 180.
	}
	sa, ca := math.Sincos(alpha)
	sb, cb := math.Sincos(beta)
	sg, cg := math.Sincos(gamma)

	return mat.NewDense(3, 3, []float64{
		ca*cb*cg - sa*sg, -sa*cb*cg - ca*sg, sb * cg,
		ca*cb*sg + sa*cg, -sa*cb*sg + ca*cg, sb * sg,
		-ca * sb, sa * sb, cb,
	})
}

// RotatePoint rotates p about z, y, z Euler angles (radians). These are not
// spherical coordinate angles.
func RotatePoint(p Point, theta, phi, psi float64) Point {
	return rotate(RotationMatrix(theta, phi, psi, true), p)
}

func RotatePoints(points []Point, theta, phi, psi float64) []Point {
	rot := RotationMatrix(theta, phi, psi, true)
	rotated := make([]Point, len(points))
	for i := range points {
		rotated[i] = rotate(rot, points[i])
	}
	return rotated
}

func rotate(rot mat.Matrix, p Point) Point {
	var v mat.VecDense
	v.MulVec(rot, mat.NewVecDense(3, p[:]))
	return Point{v.AtVec(0), v.AtVec(1), v.AtVec(2)}
}
