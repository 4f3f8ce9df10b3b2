package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var eulerTriples = [][3]float64{
	{0, 0, 0},
	{math.Pi / 6, math.Pi / 7, math.Pi / 5},
	{-1.3, 2.9, 0.4},
	{3 * math.Pi, -math.Pi / 2, 7.1},
	{1e-9, math.Pi, -1e-9},
}

func TestRotationMatrixIsOrthonormal(t *testing.T) {
	identity := mat.NewDiagDense(3, []float64{1, 1, 1})
	for _, a := range eulerTriples {
		rot := RotationMatrix(a[0], a[1], a[2], true)

		var p mat.Dense
		p.Mul(rot.T(), rot)
		assert.True(t, mat.EqualApprox(&p, identity, 1e-12), "R^T R != I for %v", a)
		assert.InDelta(t, 1., mat.Det(rot), 1e-12, "det for %v", a)
	}
}

func TestRotationMatrixDegrees(t *testing.T) {
	deg := RotationMatrix(30, 45, 60, false)
	rad := RotationMatrix(math.Pi/6, math.Pi/4, math.Pi/3, true)
	assert.True(t, mat.EqualApprox(deg, rad, 1e-14))
}

func TestRotationMatrixAxes(t *testing.T) {
	// a quarter turn about z by alpha alone sends x to y in this convention
	p := RotatePoint(Point{1, 0, 0}, math.Pi/2, 0, 0)
	assert.InDelta(t, 0., p[0], 1e-12)
	assert.InDelta(t, 1., p[1], 1e-12)
	assert.InDelta(t, 0., p[2], 1e-12)

	p = RotatePoint(Point{0, 0, 1}, 0, math.Pi/2, 0)
	assert.InDelta(t, 1., p[0], 1e-12)
	assert.InDelta(t, 0., p[2], 1e-12)
}

func TestRotatePointsInverse(t *testing.T) {
	points := []Point{{1, 2, 3}, {-4, 0.5, 9}, {0, 0, 0}, {1e3, -2e3, 5}}
	for _, a := range eulerTriples {
		rotated := RotatePoints(points, a[0], a[1], a[2])
		require.Len(t, rotated, len(points))
		back := RotatePoints(rotated, -a[2], -a[1], -a[0])
		for i := range points {
			for j := range 3 {
				assert.InDelta(t, points[i][j], back[i][j], 1e-9)
			}
		}
	}
}

func TestRotatePointPreservesLength(t *testing.T) {
	p := Point{3, -4, 12}
	r := RotatePoint(p, 0.3, 1.1, -2.2)
	assert.InDelta(t, CartesianDistance(p[:], nil), CartesianDistance(r[:], nil), 1e-12)
}
