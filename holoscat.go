// Package holoscat computes light scattered by small particles and the
// holograms it forms on a detector.
package holoscat

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/wildstyl3r/holoscat/internal/config"
	"github.com/wildstyl3r/holoscat/internal/metadata"
	"github.com/wildstyl3r/holoscat/internal/scatterer"
	"github.com/wildstyl3r/holoscat/internal/theory"
	"github.com/wildstyl3r/holoscat/internal/utils"
)

type (
	Point     = utils.Point
	Spherical = utils.Spherical
	Cartesian = utils.Cartesian

	Scatterer = scatterer.Scatterer
	Composite = scatterer.Composite
	Sphere    = scatterer.Sphere
	Spheres   = scatterer.Spheres

	Schema       = metadata.Schema
	Illumination = metadata.Illumination
	Attrs        = metadata.Attrs
	Option       = metadata.Option

	ScatteringTheory = theory.ScatteringTheory
	Kernel           = theory.Kernel
	Rayleigh         = theory.Rayleigh
	Field            = theory.Field
	ScatMatrix       = theory.ScatMatrix
	CrossSections    = theory.CrossSections
	Image            = theory.Image

	TheoryNotCompatibleError = theory.TheoryNotCompatibleError
	MissingParameterError    = theory.MissingParameterError

	Config = config.Config
)

var (
	RotationMatrix    = utils.RotationMatrix
	RotatePoints      = utils.RotatePoints
	ToSpherical       = utils.ToSpherical
	ToCartesian       = utils.ToCartesian
	CartesianDistance = utils.CartesianDistance

	NewSphere  = scatterer.NewSphere
	NewSpheres = scatterer.NewSpheres

	DetectorGrid     = metadata.DetectorGrid
	DetectorPoints   = metadata.DetectorPoints
	DetectorAngles   = metadata.DetectorAngles
	WithIllumination = metadata.WithIllumination
	WithMediumIndex  = metadata.WithMediumIndex
	WithAttrs        = metadata.WithAttrs

	DefaultTheory = theory.DefaultTheory
	ConcatFields  = theory.ConcatFields

	LoadConfig   = config.LoadConfig
	DecodeConfig = config.DecodeConfig

	ErrShapeMismatch = utils.ErrShapeMismatch
	ErrInvalidSchema = metadata.ErrInvalidSchema
	ErrInvalidConfig = config.ErrInvalidConfig
)

// Result is what Run reports for one configured particle. Hologram
// coordinates and cross sections are in the configured output units.
type Result struct {
	// RunID is shared by all results of one Run call.
	RunID string
	Name  string
	Holo  *theory.Image
	// one entry per illumination channel; nil when the theory has no cross
	// sections for this particle
	CrossSections []theory.CrossSections
}

type particleResult struct {
	index  int
	result Result
	err    error
}

// Run computes the hologram and cross sections of every configured particle.
// Results come back in natural order of particle names.
func Run(cfg config.Config) ([]Result, error) {
	st, err := cfg.ScatteringTheory()
	if err != nil {
		return nil, err
	}
	schema := cfg.Schema()
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	names := cfg.Names()
	results := make([]Result, len(names))
	runID := uuid.New().String()
	if cfg.Verbose {
		log.Printf("run %s: %d particles with %s [%v]", runID, len(names), st.Name(), schema.Attrs)
	}

	workers, channelThreads := splitThreads(cfg.Threads, len(names))
	st.Threads = channelThreads
	jobs := make(chan int)
	dataflow := make(chan particleResult)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		//worker
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := runParticle(cfg, st, schema, names[i])
				dataflow <- particleResult{index: i, result: r, err: err}
			}
		}()
	}
	go func() {
		for i := range names {
			jobs <- i
		}
		close(jobs)
	}()
	// chan killer
	go func() {
		wg.Wait()
		close(dataflow)
	}()

	var firstErr error
	errIndex := len(names)
	done := 0
	for r := range dataflow {
		done++
		if cfg.Verbose {
			log.Printf("done [%d/%d] %s", done, len(names), names[r.index])
		}
		if r.err != nil {
			if r.index < errIndex {
				errIndex, firstErr = r.index, r.err
			}
			continue
		}
		r.result.RunID = runID
		results[r.index] = r.result
	}
	if firstErr != nil {
		return nil, fmt.Errorf("particle %s: %w", names[errIndex], firstErr)
	}
	return results, nil
}

// splitThreads divides a thread budget between particle workers and the
// illumination channels each of them computes, so that the product stays
// within the budget.
func splitThreads(threads, particles int) (workers, channelThreads int) {
	threads = max(threads, 1)
	workers = max(min(threads, particles), 1)
	return workers, max(threads/workers, 1)
}

func runParticle(cfg config.Config, st *theory.ScatteringTheory, schema metadata.Schema, name string) (Result, error) {
	s, err := cfg.Scatterer(name)
	if err != nil {
		return Result{}, err
	}
	holo, err := st.CalcHolo(s, schema, cfg.Scaling)
	if err != nil {
		return Result{}, err
	}
	holo.Coords = outputCoords(cfg, holo.Coords)
	if cfg.Verbose {
		for c, row := range holo.Values {
			mean, variance := utils.MeanAndVariance(row, false)
			log.Printf("%s: channel %d hologram mean %g, contrast %g", name, c, mean, math.Sqrt(variance)/mean)
		}
	}

	var incompatible *theory.TheoryNotCompatibleError
	var sections []theory.CrossSections
	for _, il := range schema.Illum {
		cs, err := st.CalcCrossSections(s.Select(il.Label), il.Wavevec(schema.MediumIndex), schema.MediumIndex, il.Polarization)
		if errors.As(err, &incompatible) {
			if cfg.Verbose {
				log.Printf("%s: no cross sections: %v", name, err)
			}
			sections = nil
			break
		}
		if err != nil {
			return Result{}, err
		}
		for j := range 3 {
			cs.Values[j] = cfg.Output(cs.Values[j], 2)
		}
		sections = append(sections, cs)
	}
	return Result{Name: name, Holo: holo, CrossSections: sections}, nil
}

// outputCoords returns coordinates with lengths converted to output units.
func outputCoords(cfg config.Config, coords []metadata.Coord) []metadata.Coord {
	out := make([]metadata.Coord, len(coords))
	for i, c := range coords {
		out[i] = metadata.Coord{Name: c.Name, Values: c.Values}
		switch c.Name {
		case "x", "y", "z", "r":
			out[i].Values = make([]float64, len(c.Values))
			for j, v := range c.Values {
				out[i].Values[j] = cfg.Output(v, 1)
			}
		}
	}
	return out
}
