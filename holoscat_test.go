package holoscat

import (
	"bytes"
	"log"
	"math"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runConfig = `
Index = [1.59]
Radius = 0.05
OutputUnits = ["nm"]

[Detector]
Shape = [4, 3]
Spacing = 0.1

[[Illumination]]
Label = "red"
Wavelen = 0.66
Polarization = [1.0, 0.0]

[[Illumination]]
Label = "green"
Wavelen = 0.52
Polarization = [0.0, 1.0]

[Particles.s10]
Center = [0.15, 0.1, 5.0]

[Particles.s2]
Index = [1.45, 0.02]
Center = [0.1, 0.1, 4.0]

[Particles.dimer]
[[Particles.dimer.Spheres]]
Center = [0.1, 0.1, 5.0]
[[Particles.dimer.Spheres]]
Center = [0.3, 0.1, 5.0]
`

func TestRun(t *testing.T) {
	cfg, _, err := DecodeConfig(runConfig)
	require.NoError(t, err)

	results, err := Run(cfg)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "dimer", results[0].Name)
	assert.Equal(t, "s2", results[1].Name)
	assert.Equal(t, "s10", results[2].Name)

	for _, r := range results {
		assert.Equal(t, results[0].RunID, r.RunID)
		assert.Equal(t, []string{"red", "green"}, r.Holo.Illum)
		require.Len(t, r.Holo.Values, 2)
		for _, row := range r.Holo.Values {
			require.Len(t, row, 12)
			for _, v := range row {
				assert.False(t, math.IsNaN(v))
				assert.Greater(t, v, 0.)
			}
		}
		require.Equal(t, "x", r.Holo.Coords[0].Name)
		// 0.3 um reported in nm
		assert.InDelta(t, 300., r.Holo.Coords[0].Values[11], 1e-9)
	}

	// a cluster has no Rayleigh cross sections
	assert.Nil(t, results[0].CrossSections)
	require.Len(t, results[1].CrossSections, 2)
	cs := results[1].CrossSections[0]
	assert.Greater(t, cs.Absorption(), 0.)
	assert.InDelta(t, cs.Scattering()+cs.Absorption(), cs.Extinction(), cs.Extinction()*1e-12)
	// nm^2, far below the geometric cross section of a 50 nm sphere
	assert.Less(t, cs.Extinction(), math.Pi*50*50)
	assert.Greater(t, cs.Extinction(), 1e-3)
}

func TestRunIsIndependentOfThreads(t *testing.T) {
	cfg, _, err := DecodeConfig(runConfig)
	require.NoError(t, err)

	want, err := Run(cfg)
	require.NoError(t, err)
	for _, threads := range []int{0, 2, 8} {
		cfg.Threads = threads
		got, err := Run(cfg)
		require.NoError(t, err)
		assert.NotEqual(t, want[0].RunID, got[0].RunID)
		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-15), cmpopts.IgnoreFields(Result{}, "RunID")); diff != "" {
			t.Errorf("threads %d (-want +got):\n%s", threads, diff)
		}
	}
}

func TestSplitThreads(t *testing.T) {
	tests := []struct {
		threads, particles      int
		workers, channelThreads int
	}{
		{0, 3, 1, 1},
		{1, 3, 1, 1},
		{4, 1, 1, 4},
		{4, 2, 2, 2},
		{8, 3, 3, 2},
		{8, 20, 8, 1},
		{4, 0, 1, 4},
	}
	for _, tt := range tests {
		workers, channelThreads := splitThreads(tt.threads, tt.particles)
		assert.Equal(t, tt.workers, workers, "threads %d particles %d", tt.threads, tt.particles)
		assert.Equal(t, tt.channelThreads, channelThreads, "threads %d particles %d", tt.threads, tt.particles)
		assert.LessOrEqual(t, workers*channelThreads, max(tt.threads, 1))
	}
}

func TestRunVerboseLogsAttrsInNaturalOrder(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg, _, err := DecodeConfig(runConfig)
	require.NoError(t, err)
	cfg.Verbose = true
	cfg.Attrs = map[string]any{"p10": "b", "p2": "a"}
	_, err = Run(cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[p2=a p10=b]")
	assert.Contains(t, buf.String(), "done [3/3]")
}

func TestRunErrors(t *testing.T) {
	cfg, _, err := DecodeConfig(runConfig)
	require.NoError(t, err)

	cfg.Theory = "mie"
	_, err = Run(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg.Theory = "rayleigh"
	cfg.MediumIndex = 0
	_, err = Run(cfg)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLibraryHolo(t *testing.T) {
	schema := DetectorGrid([2]int{5, 5}, 0.1, WithMediumIndex(1.33),
		WithIllumination(Illumination{Label: "red", Wavelen: 0.66, Polarization: []float64{1, 0}}))
	sphere := NewSphere(1.59, 0.05, Point{0.2, 0.2, 5})

	holo, err := DefaultTheory().CalcHolo(sphere, schema, 1)
	require.NoError(t, err)
	require.Len(t, holo.Values, 1)

	// the hologram is symmetric about the particle's lateral position
	pixel := func(i, j int) float64 { return holo.Values[0][i*5+j] }
	assert.InDelta(t, pixel(1, 2), pixel(3, 2), 1e-12)
	assert.InDelta(t, pixel(2, 1), pixel(2, 3), 1e-12)

	// without scattering only the reference remains
	flat, err := DefaultTheory().CalcHolo(sphere, schema, 0)
	require.NoError(t, err)
	for _, v := range flat.Values[0] {
		assert.InDelta(t, 1., v, 1e-15)
	}
}
