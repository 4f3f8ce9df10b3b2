// Package metadata describes where a field is observed and how the sample is
// lit: detector positions, illumination channels and the medium.
package metadata

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/facette/natsort"

	"github.com/wildstyl3r/holoscat/internal/constants"
	"github.com/wildstyl3r/holoscat/internal/utils"
)

var ErrShapeMismatch = utils.ErrShapeMismatch
var ErrInvalidSchema = errors.New("invalid schema")

// Attrs are descriptive values carried unchanged from a schema to results.
type Attrs map[string]any

// Keys returns attribute names in natural order ("p2" before "p10").
func (a Attrs) Keys() []string {
	keys := slices.Collect(maps.Keys(a))
	slices.SortFunc(keys, func(x, y string) int {
		switch {
		case x == y:
			return 0
		case natsort.Compare(x, y):
			return -1
		default:
			return 1
		}
	})
	return keys
}

// String renders the attributes as "k=v" pairs in Keys order.
func (a Attrs) String() string {
	pairs := make([]string, 0, len(a))
	for _, key := range a.Keys() {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, a[key]))
	}
	return strings.Join(pairs, " ")
}

func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

type Illumination struct {
	Label        string
	Wavelen      float64 // vacuum wavelength
	Polarization []float64
}

// Wavevec is 2*pi*n/lambda in a medium of index n.
func (il Illumination) Wavevec(mediumIndex float64) float64 {
	return 2 * math.Pi * mediumIndex / il.Wavelen
}

// Coord is a named label set along the primary position axis.
type Coord struct {
	Name   string
	Values []float64
}

// Positions are detector points given either in Cartesian form or by
// scattering angles. Angular points without R lie at infinity.
type Positions struct {
	X, Y, Z       []float64
	Theta, Phi, R []float64
}

func (p Positions) Angular() bool {
	return p.Theta != nil || p.Phi != nil
}

func (p Positions) Len() int {
	if p.Angular() {
		return max(len(p.Theta), len(p.Phi), len(p.R))
	}
	return max(len(p.X), len(p.Y), len(p.Z))
}

// Coords lists the populated coordinates in a fixed order.
func (p Positions) Coords() []Coord {
	var coords []Coord
	for _, c := range []Coord{
		{"x", p.X}, {"y", p.Y}, {"z", p.Z},
		{"r", p.R}, {"theta", p.Theta}, {"phi", p.Phi},
	} {
		if c.Values != nil {
			coords = append(coords, Coord{Name: c.Name, Values: slices.Clone(c.Values)})
		}
	}
	return coords
}

type Schema struct {
	Dim         string // primary position axis name
	Positions   Positions
	Illum       []Illumination
	MediumIndex float64
	Attrs       Attrs
}

func (s Schema) PrimaryDim() string {
	if s.Dim == "" {
		return constants.Flat
	}
	return s.Dim
}

// Wavevec is the medium wavevector of a single-channel schema. It is always
// derived from the wavelength and medium index, never stored.
func (s Schema) Wavevec() float64 {
	return s.Illum[0].Wavevec(s.MediumIndex)
}

func (s Schema) MultiChannel() bool {
	return len(s.Illum) > 1
}

func (s Schema) IllumLabels() []string {
	labels := make([]string, len(s.Illum))
	for i := range s.Illum {
		labels[i] = s.Illum[i].Label
	}
	return labels
}

// Narrow returns a copy of the schema lit by channel i only.
func (s Schema) Narrow(i int) Schema {
	narrowed := s
	il := s.Illum[i]
	il.Polarization = slices.Clone(il.Polarization)
	narrowed.Illum = []Illumination{il}
	narrowed.Attrs = s.Attrs.Clone()
	return narrowed
}

func (s Schema) Validate() error {
	if s.MediumIndex <= 0 {
		return fmt.Errorf("medium index %v: %w", s.MediumIndex, ErrInvalidSchema)
	}
	if s.Positions.Len() == 0 {
		return fmt.Errorf("no detector positions: %w", ErrInvalidSchema)
	}
	if len(s.Illum) == 0 {
		return fmt.Errorf("no illumination: %w", ErrInvalidSchema)
	}
	for _, il := range s.Illum {
		if il.Wavelen <= 0 {
			return fmt.Errorf("illumination %q wavelength %v: %w", il.Label, il.Wavelen, ErrInvalidSchema)
		}
		if len(il.Polarization) != 2 && len(il.Polarization) != 3 {
			return fmt.Errorf("illumination %q polarization has %d components: %w", il.Label, len(il.Polarization), ErrInvalidSchema)
		}
	}
	if s.MultiChannel() {
		seen := map[string]struct{}{}
		for _, il := range s.Illum {
			if _, some := seen[il.Label]; some {
				return fmt.Errorf("duplicate illumination label %q: %w", il.Label, ErrInvalidSchema)
			}
			seen[il.Label] = struct{}{}
		}
	}
	return nil
}

// SphereCoords converts detector positions to spherical coordinates relative
// to center. A nonzero wavevec scales the radius, giving k*r.
func SphereCoords(s Schema, center utils.Point, wavevec float64) (utils.Spherical, error) {
	var sph utils.Spherical
	p := s.Positions
	if p.Len() == 0 {
		return sph, fmt.Errorf("no detector positions: %w", ErrInvalidSchema)
	}
	if p.Angular() {
		r := p.R
		if r == nil {
			r = []float64{math.Inf(1)}
		}
		cols, err := utils.RepeatSingletons(r, p.Theta, p.Phi)
		if err != nil {
			return sph, err
		}
		sph = utils.Spherical{R: cols[0], Theta: cols[1], Phi: cols[2]}
	} else {
		x, y, z := shifted(p.X, center[0]), shifted(p.Y, center[1]), shifted(p.Z, center[2])
		var err error
		if sph, err = utils.ToSpherical(x, y, z); err != nil {
			return sph, err
		}
	}
	if wavevec != 0 {
		for i := range sph.R {
			sph.R[i] *= wavevec
		}
	}
	return sph, nil
}

func shifted(v []float64, by float64) []float64 {
	if v == nil {
		v = []float64{0}
	}
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] - by
	}
	return out
}
