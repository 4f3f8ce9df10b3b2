package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildstyl3r/holoscat/internal/constants"
	"github.com/wildstyl3r/holoscat/internal/scatterer"
	"github.com/wildstyl3r/holoscat/internal/theory"
)

const gridConfig = `
Threads = 2
Index = [1.59]
Radius = 0.5

[Detector]
Shape = [4, 3]
Spacing = 0.1

[[Illumination]]
Label = "red"
Wavelen = 0.66
Polarization = [1.0, 0.0]

[Attrs]
name = "grid"

[Particles.p10]
Center = [0.0, 0.0, 10.0]

[Particles.p2]
Radius = 0.25
Center = [0.2, 0.2, 8.0]
Index = [1.45, 0.01]

[Particles.dimer]
[[Particles.dimer.Spheres]]
Center = [0.0, 0.0, 10.0]
[[Particles.dimer.Spheres]]
Radius = 0.3
Center = [1.0, 0.0, 10.0]
`

func TestDecodeConfig(t *testing.T) {
	c, _, err := DecodeConfig(gridConfig)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Threads)
	assert.Equal(t, "rayleigh", c.Theory)
	assert.Equal(t, constants.DefaultMediumIndex, c.MediumIndex)
	assert.Equal(t, 1., c.Scaling)
	assert.Equal(t, constants.Flat, c.Dim)
	assert.Equal(t, []string{"um"}, c.InputUnits)
	assert.Equal(t, []string{"um"}, c.OutputUnits)

	assert.InDelta(t, 0.1e-6, c.Detector.Spacing, 1e-18)
	assert.InDelta(t, 0.66e-6, c.Illumination[0].Wavelen, 1e-18)
	assert.InDelta(t, 0.5e-6, c.Particles["p10"].Radius, 1e-18)
	assert.InDelta(t, 0.25e-6, c.Particles["p2"].Radius, 1e-18)
	assert.InDelta(t, 8e-6, c.Particles["p2"].Center[2], 1e-18)
	assert.Equal(t, []float64{1.45, 0.01}, c.Particles["p2"].Index)
	assert.Equal(t, []float64{1.59}, c.Particles["p10"].Index)

	members := c.Particles["dimer"].Spheres
	require.Len(t, members, 2)
	assert.InDelta(t, 0.5e-6, members[0].Radius, 1e-18)
	assert.InDelta(t, 0.3e-6, members[1].Radius, 1e-18)
	assert.InDelta(t, 1e-6, members[1].Center[0], 1e-18)

	assert.Equal(t, []string{"dimer", "p2", "p10"}, c.Names())
}

func TestConfigScatterer(t *testing.T) {
	c, _, err := DecodeConfig(gridConfig)
	require.NoError(t, err)

	s, err := c.Scatterer("p2")
	require.NoError(t, err)
	sphere, ok := s.(*scatterer.Sphere)
	require.True(t, ok)
	assert.Equal(t, complex(1.45, 0.01), sphere.N)
	center, ok := sphere.Center()
	require.True(t, ok)
	assert.InDelta(t, 0.2e-6, center[0], 1e-18)

	s, err = c.Scatterer("dimer")
	require.NoError(t, err)
	cluster, ok := s.(*scatterer.Spheres)
	require.True(t, ok)
	assert.Len(t, cluster.ComponentList(), 2)

	_, err = c.Scatterer("missing")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigSchema(t *testing.T) {
	c, _, err := DecodeConfig(gridConfig)
	require.NoError(t, err)

	schema := c.Schema()
	require.NoError(t, schema.Validate())
	assert.Equal(t, 12, schema.Positions.Len())
	assert.Equal(t, []string{"red"}, schema.IllumLabels())
	assert.Equal(t, "grid", schema.Attrs["name"])
	assert.InDelta(t, 0.3e-6, schema.Positions.X[len(schema.Positions.X)-1], 1e-18)
}

func TestConfigScatteringTheory(t *testing.T) {
	c, _, err := DecodeConfig(gridConfig)
	require.NoError(t, err)

	st, err := c.ScatteringTheory()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Threads)
	assert.IsType(t, theory.Rayleigh{}, st.Kernel)

	c.Theory = "mie"
	_, err = c.ScatteringTheory()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigOutputUnits(t *testing.T) {
	c, _, err := DecodeConfig(`OutputUnits = ["nm"]` + gridConfig)
	require.NoError(t, err)
	assert.InDelta(t, 100., c.Output(c.Detector.Spacing, 1), 1e-9)

	// conflicting output units fall back to the input ones
	c, _, err = DecodeConfig(`OutputUnits = ["nm", "mm"]` + gridConfig)
	require.NoError(t, err)
	assert.Equal(t, c.InputUnits, c.OutputUnits)
}

func TestDecodeConfigErrors(t *testing.T) {
	illum := `
[[Illumination]]
Label = "red"
Wavelen = 0.66
Polarization = [1.0, 0.0]
`
	particle := `
[Particles.a]
Index = [1.59]
Radius = 0.5
Center = [0.0, 0.0, 10.0]
`
	tests := []struct {
		name string
		data string
	}{
		{"no particles", "[Detector]\nShape = [2, 2]\nSpacing = 0.1\n" + illum},
		{"no illumination", "[Detector]\nShape = [2, 2]\nSpacing = 0.1\n" + particle},
		{"no detector", illum + particle},
		{"two detectors", "[Detector]\nShape = [2, 2]\nSpacing = 0.1\nTheta = [0.1]\nPhi = [0.0]\n" + illum + particle},
		{"shape without spacing", "[Detector]\nShape = [2, 2]\n" + illum + particle},
		{"flat shape", "[Detector]\nShape = [4]\nSpacing = 0.1\n" + illum + particle},
		{"unknown input unit", "InputUnits = [\"furlong\"]\n[Detector]\nShape = [2, 2]\nSpacing = 0.1\n" + illum + particle},
		{"missing radius", "[Detector]\nShape = [2, 2]\nSpacing = 0.1\n" + illum + "[Particles.a]\nIndex = [1.59]\n"},
		{"bad center", "[Detector]\nShape = [2, 2]\nSpacing = 0.1\n" + illum + "[Particles.a]\nIndex = [1.59]\nRadius = 0.5\nCenter = [1.0]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeConfig(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), err.Error())
		})
	}
}

func TestDecodeConfigSyntaxError(t *testing.T) {
	_, _, err := DecodeConfig("Threads = ")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}
