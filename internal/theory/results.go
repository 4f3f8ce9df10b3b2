package theory

import (
	"fmt"
	"math/cmplx"
	"slices"

	"github.com/wildstyl3r/holoscat/internal/constants"
	"github.com/wildstyl3r/holoscat/internal/metadata"
)

// Field is a labeled set of vector fields: one Vec per detector position per
// illumination channel. Illum is nil for a single-channel field, in which
// case Values has exactly one row.
type Field struct {
	Dim    string
	Coords []metadata.Coord
	Vector [3]string
	Illum  []string
	Values [][]Vec
	Attrs  metadata.Attrs
}

func newField(schema metadata.Schema, values []Vec) *Field {
	return &Field{
		Dim:    schema.PrimaryDim(),
		Coords: schema.Positions.Coords(),
		Vector: constants.VectorComponents,
		Values: [][]Vec{values},
		Attrs:  schema.Attrs.Clone(),
	}
}

func (f *Field) Len() int {
	if len(f.Values) == 0 {
		return 0
	}
	return len(f.Values[0])
}

// Channel returns the field for one illumination label. A single-channel
// field answers to any label.
func (f *Field) Channel(label string) ([]Vec, bool) {
	if f.Illum == nil {
		return f.Values[0], true
	}
	i := slices.Index(f.Illum, label)
	if i < 0 {
		return nil, false
	}
	return f.Values[i], true
}

// Add superposes o onto f in place.
func (f *Field) Add(o *Field) error {
	if len(f.Values) != len(o.Values) {
		return fmt.Errorf("adding %d channels to %d: %w", len(o.Values), len(f.Values), metadata.ErrShapeMismatch)
	}
	for c := range f.Values {
		if len(f.Values[c]) != len(o.Values[c]) {
			return fmt.Errorf("adding %d points to %d: %w", len(o.Values[c]), len(f.Values[c]), metadata.ErrShapeMismatch)
		}
		for i := range f.Values[c] {
			f.Values[c][i] = f.Values[c][i].Add(o.Values[c][i])
		}
	}
	return nil
}

// ConcatFields stacks single-channel fields along the illumination axis, in
// the order given.
func ConcatFields(fields []*Field, labels []string) (*Field, error) {
	if len(fields) == 0 || len(fields) != len(labels) {
		return nil, fmt.Errorf("%d fields for %d illumination labels: %w", len(fields), len(labels), metadata.ErrShapeMismatch)
	}
	first := fields[0]
	out := &Field{
		Dim:    first.Dim,
		Coords: first.Coords,
		Vector: first.Vector,
		Illum:  slices.Clone(labels),
		Attrs:  first.Attrs,
	}
	for i, f := range fields {
		if f.Illum != nil || len(f.Values) != 1 {
			return nil, fmt.Errorf("field %q is not single-channel: %w", labels[i], metadata.ErrShapeMismatch)
		}
		if f.Dim != first.Dim || f.Len() != first.Len() {
			return nil, fmt.Errorf("field %q has %d points along %q, want %d along %q: %w",
				labels[i], f.Len(), f.Dim, first.Len(), first.Dim, metadata.ErrShapeMismatch)
		}
		out.Values = append(out.Values, f.Values[0])
	}
	return out, nil
}

// ScatMatrix holds scattering matrices per position. Coords keeps the
// spherical coordinates as secondary labels on the position axis.
type ScatMatrix struct {
	Dim    string
	Coords []metadata.Coord
	Epar   [2]string
	Eperp  [2]string
	Values []ScatMatr
	Attrs  metadata.Attrs
}

type CrossSections struct {
	Labels [4]string
	Values [4]float64
}

func (c CrossSections) Scattering() float64 { return c.Values[0] }
func (c CrossSections) Absorption() float64 { return c.Values[1] }
func (c CrossSections) Extinction() float64 { return c.Values[2] }
func (c CrossSections) Asymmetry() float64  { return c.Values[3] }

// Image is a real-valued labeled result, per channel and position.
type Image struct {
	Dim    string
	Coords []metadata.Coord
	Illum  []string
	Values [][]float64
	Attrs  metadata.Attrs
}

func newImage(f *Field, pixel func(Vec, int) float64) *Image {
	img := &Image{
		Dim:    f.Dim,
		Coords: f.Coords,
		Illum:  f.Illum,
		Values: make([][]float64, len(f.Values)),
		Attrs:  f.Attrs,
	}
	for c := range f.Values {
		img.Values[c] = make([]float64, len(f.Values[c]))
		for i, v := range f.Values[c] {
			img.Values[c][i] = pixel(v, c)
		}
	}
	return img
}

func abs2(c complex128) float64 {
	a := cmplx.Abs(c)
	return a * a
}
