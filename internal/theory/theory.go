// Package theory turns a scatterer and a detector schema into fields,
// scattering matrices, cross sections and holograms. The physics comes from a
// Kernel; this package handles coordinates, phases, illumination channels and
// superposition of composite scatterers.
package theory

import (
	"fmt"
	"math/cmplx"
	"sync"

	"github.com/wildstyl3r/holoscat/internal/constants"
	"github.com/wildstyl3r/holoscat/internal/metadata"
	"github.com/wildstyl3r/holoscat/internal/scatterer"
	"github.com/wildstyl3r/holoscat/internal/utils"
)

type ScatteringTheory struct {
	Kernel Kernel
	// Threads bounds how many illumination channels are computed at once.
	// Values below 2 compute channels one after another.
	Threads int
}

// DefaultTheory returns a fresh theory suitable for small spheres.
func DefaultTheory() *ScatteringTheory {
	return &ScatteringTheory{Kernel: Rayleigh{}}
}

func (t *ScatteringTheory) Name() string {
	return typeName(t.Kernel)
}

// CalcField computes the scattered field of s at the schema's detectors. With
// several illumination channels the field is computed per channel and
// stacked along the illumination axis in schema order.
func (t *ScatteringTheory) CalcField(s scatterer.Scatterer, schema metadata.Schema) (*Field, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if !schema.MultiChannel() {
		return t.calcChannelField(s, schema)
	}
	fields, err := t.mapChannels(s, schema)
	if err != nil {
		return nil, err
	}
	return ConcatFields(fields, schema.IllumLabels())
}

type channelResult struct {
	index int
	field *Field
	err   error
}

func (t *ScatteringTheory) channelField(s scatterer.Scatterer, schema metadata.Schema, i int) (*Field, error) {
	return t.calcChannelField(s.Select(schema.Illum[i].Label), schema.Narrow(i))
}

// mapChannels computes one field per illumination channel. Results keep
// schema order regardless of completion order; on failure the error of the
// earliest failing channel is returned.
func (t *ScatteringTheory) mapChannels(s scatterer.Scatterer, schema metadata.Schema) ([]*Field, error) {
	n := len(schema.Illum)
	fields := make([]*Field, n)
	if t.Threads < 2 {
		for i := range n {
			f, err := t.channelField(s, schema, i)
			if err != nil {
				return nil, fmt.Errorf("illumination %q: %w", schema.Illum[i].Label, err)
			}
			fields[i] = f
		}
		return fields, nil
	}

	jobs := make(chan int)
	results := make(chan channelResult)
	var wg sync.WaitGroup
	for range min(t.Threads, n) {
		wg.Add(1)
		//worker
		go func() {
			defer wg.Done()
			for i := range jobs {
				f, err := t.channelField(s, schema, i)
				results <- channelResult{index: i, field: f, err: err}
			}
		}()
	}
	go func() {
		for i := range n {
			jobs <- i
		}
		close(jobs)
	}()
	// chan killer
	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	errIndex := n
	for r := range results {
		if r.err != nil {
			if r.index < errIndex {
				errIndex, firstErr = r.index, r.err
			}
			continue
		}
		fields[r.index] = r.field
	}
	if firstErr != nil {
		return nil, fmt.Errorf("illumination %q: %w", schema.Illum[errIndex].Label, firstErr)
	}
	return fields, nil
}

// calcChannelField computes the field for a single-channel schema: directly
// when the kernel handles s, otherwise as the sum of component fields.
func (t *ScatteringTheory) calcChannelField(s scatterer.Scatterer, schema metadata.Schema) (*Field, error) {
	_, components, err := t.plan(s)
	if err != nil {
		return nil, err
	}
	var field *Field
	for _, component := range components {
		f, err := t.componentField(component, schema)
		if err != nil {
			return nil, err
		}
		if field == nil {
			field = f
			continue
		}
		if err := field.Add(f); err != nil {
			return nil, err
		}
	}
	return field, nil
}

func (t *ScatteringTheory) componentField(s scatterer.Scatterer, schema metadata.Schema) (*Field, error) {
	center, some := s.Center()
	if !some {
		return nil, &MissingParameterError{Parameter: "center"}
	}
	k := schema.Wavevec()
	positions, err := metadata.SphereCoords(schema, center, k)
	if err != nil {
		return nil, err
	}
	raw, err := t.rawFields(positions, s, k, schema.MediumIndex, schema.Illum[0].Polarization)
	if err != nil {
		return nil, err
	}
	if len(raw) != positions.Len() {
		return nil, fmt.Errorf("%d fields for %d positions: %w", len(raw), positions.Len(), utils.ErrShapeMismatch)
	}
	phase := cmplx.Exp(complex(0, -k*center[2]))
	for i := range raw {
		raw[i] = raw[i].Scale(phase)
	}
	return newField(schema, raw), nil
}

func (t *ScatteringTheory) rawFields(pos utils.Spherical, s scatterer.Scatterer, k, mediumIndex float64, pol []float64) ([]Vec, error) {
	switch kernel := t.Kernel.(type) {
	case FieldKernel:
		return kernel.RawFields(pos, s, k, mediumIndex, pol)
	case ScatMatrixKernel:
		return rawFieldsFromScatMatrs(kernel, pos, s, k, mediumIndex, pol)
	default:
		return nil, notCompatible(t.Kernel, s, "kernel computes neither fields nor scattering matrices")
	}
}

// CalcCrossSections labels the kernel's raw cross sections.
func (t *ScatteringTheory) CalcCrossSections(s scatterer.Scatterer, mediumWavevec, mediumIndex float64, illumPolarization []float64) (CrossSections, error) {
	kernel, ok := t.Kernel.(CrossSectionKernel)
	if !ok {
		return CrossSections{}, notCompatible(t.Kernel, s, "cross sections not implemented")
	}
	raw, err := kernel.RawCrossSections(s, mediumWavevec, mediumIndex, illumPolarization)
	if err != nil {
		return CrossSections{}, err
	}
	return CrossSections{Labels: constants.CrossSectionLabels, Values: raw}, nil
}

// CalcScatMatrix computes amplitude scattering matrices at the schema's
// detectors. Radii stay unscaled by the wavevector.
func (t *ScatteringTheory) CalcScatMatrix(s scatterer.Scatterer, schema metadata.Schema) (*ScatMatrix, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if schema.MultiChannel() {
		return nil, fmt.Errorf("scattering matrices need a single illumination channel, got %d: %w", len(schema.Illum), metadata.ErrInvalidSchema)
	}
	kernel, ok := t.Kernel.(ScatMatrixKernel)
	if !ok {
		return nil, notCompatible(t.Kernel, s, "scattering matrices not implemented")
	}
	if !t.Kernel.CanHandle(s) {
		return nil, notCompatible(t.Kernel, s, "")
	}
	center, some := s.Center()
	if !some {
		return nil, &MissingParameterError{Parameter: "center"}
	}
	positions, err := metadata.SphereCoords(schema, center, 0)
	if err != nil {
		return nil, err
	}
	values, err := kernel.RawScatMatrs(s, positions, schema.Wavevec(), schema.MediumIndex)
	if err != nil {
		return nil, err
	}
	if len(values) != positions.Len() {
		return nil, fmt.Errorf("%d scattering matrices for %d positions: %w", len(values), positions.Len(), utils.ErrShapeMismatch)
	}
	return &ScatMatrix{
		Dim: schema.PrimaryDim(),
		Coords: []metadata.Coord{
			{Name: "r", Values: positions.R},
			{Name: "theta", Values: positions.Theta},
			{Name: "phi", Values: positions.Phi},
		},
		Epar:   constants.EparLabels,
		Eperp:  constants.EperpLabels,
		Values: values,
		Attrs:  schema.Attrs.Clone(),
	}, nil
}

// CalcIntensity is |Ex|^2 + |Ey|^2, the intensity on a detector normal to z.
func (t *ScatteringTheory) CalcIntensity(s scatterer.Scatterer, schema metadata.Schema) (*Image, error) {
	field, err := t.CalcField(s, schema)
	if err != nil {
		return nil, err
	}
	return newImage(field, func(v Vec, _ int) float64 {
		return abs2(v[0]) + abs2(v[1])
	}), nil
}

// CalcHolo interferes the scattered field, multiplied by scaling, with a
// unit reference wave polarized like the illumination. Like CalcIntensity it
// records only the components in the detector plane normal to z.
func (t *ScatteringTheory) CalcHolo(s scatterer.Scatterer, schema metadata.Schema, scaling float64) (*Image, error) {
	field, err := t.CalcField(s, schema)
	if err != nil {
		return nil, err
	}
	refs := make([]Vec, len(schema.Illum))
	for c, il := range schema.Illum {
		for j := range il.Polarization {
			refs[c][j] = complex(il.Polarization[j], 0)
		}
	}
	alpha := complex(scaling, 0)
	return newImage(field, func(v Vec, c int) float64 {
		total := refs[c].Add(v.Scale(alpha))
		return abs2(total[0]) + abs2(total[1])
	}), nil
}
