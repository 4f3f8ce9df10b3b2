package config

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/facette/natsort"

	"github.com/wildstyl3r/holoscat/internal/constants"
	"github.com/wildstyl3r/holoscat/internal/metadata"
	"github.com/wildstyl3r/holoscat/internal/scatterer"
	"github.com/wildstyl3r/holoscat/internal/theory"
	"github.com/wildstyl3r/holoscat/internal/utils"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Verbose     bool
	Threads     int
	Theory      string
	MediumIndex float64
	Scaling     float64
	Dim         string

	Detector     DetectorParameters
	Illumination []IlluminationParameters
	Attrs        map[string]any

	// particle values shared by every entry of Particles unless overridden
	ParticleParameters
	Particles map[string]ParticleParameters

	InputUnits  []string
	OutputUnits []string
}

type DetectorParameters struct {
	Shape   []int
	Spacing float64 // [um]

	X, Y, Z    []float64 // [um]
	Theta, Phi []float64 // [rad]
}

type IlluminationParameters struct {
	Label        string
	Wavelen      float64 // [um]
	Polarization []float64
}

type ParticleParameters struct {
	Index      []float64 // real and optional imaginary part
	Radius     float64   // [um]
	Center     []float64 // [um]
	IllumIndex map[string][]float64

	// members of a cluster; a particle with members has no index of its own
	Spheres []ParticleParameters
}

var defaultValues = map[string]any{
	"Threads":     1,
	"Theory":      "rayleigh",
	"MediumIndex": constants.DefaultMediumIndex,
	"Scaling":     1.,
	"Dim":         constants.Flat,
}

var valueUnits = map[string][]UnitElement{
	"Spacing": {{Class: Length, Power: 1}},
	"X":       {{Class: Length, Power: 1}},
	"Y":       {{Class: Length, Power: 1}},
	"Z":       {{Class: Length, Power: 1}},
	"Wavelen": {{Class: Length, Power: 1}},
	"Radius":  {{Class: Length, Power: 1}},
	"Center":  {{Class: Length, Power: 1}},
}

// detector layouts; exactly one group may be given
var detectorLayouts = [][]string{
	{"Shape", "Spacing"},
	{"X", "Y", "Z"},
	{"Theta", "Phi"},
}

func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.DecodeFile(strings.TrimSuffix(configFileName, ".toml")+".toml", &config)
	if err != nil {
		return config, meta, err
	}
	return config, meta, config.unify(&meta)
}

func DecodeConfig(data string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.Decode(data, &config)
	if err != nil {
		return config, meta, err
	}
	return config, meta, config.unify(&meta)
}

/*
field value priority:
1. particle
2. global particle parameters
3. default (global settings only)
*/
func (c *Config) unify(meta *toml.MetaData) error {
	var unitsConflict []string
	c.InputUnits, unitsConflict = checkUnits(c.InputUnits)
	if len(unitsConflict) > 0 {
		return fmt.Errorf("found input unit conflict %v: %w", unitsConflict, ErrInvalidConfig)
	}
	if len(c.OutputUnits) == 0 {
		c.OutputUnits = c.InputUnits
	}
	c.OutputUnits, unitsConflict = checkUnits(c.OutputUnits)
	if len(unitsConflict) > 0 {
		log.Printf("found output unit conflict: %v; data will be reported in input units", unitsConflict)
		c.OutputUnits = c.InputUnits
	}

	configReflect := reflect.ValueOf(c).Elem()
	for fieldName, value := range defaultValues {
		if !meta.IsDefined(fieldName) {
			configReflect.FieldByName(fieldName).Set(reflect.ValueOf(value))
		}
	}

	if len(c.Particles) == 0 {
		return fmt.Errorf("no particles provided: %w", ErrInvalidConfig)
	}
	if len(c.Illumination) == 0 {
		return fmt.Errorf("no illumination provided: %w", ErrInvalidConfig)
	}

	var layouts []string
	for _, layout := range detectorLayouts {
		if meta.IsDefined("Detector", layout[0]) {
			for _, field := range layout {
				if !meta.IsDefined("Detector", field) {
					return fmt.Errorf("detector field %s requires %s: %w", layout[0], field, ErrInvalidConfig)
				}
			}
			layouts = append(layouts, layout[0])
		}
	}
	if len(layouts) != 1 {
		return fmt.Errorf("detector must be given by exactly one of Shape, X/Y/Z or Theta/Phi, found %v: %w", layouts, ErrInvalidConfig)
	}
	if meta.IsDefined("Detector", "Shape") && len(c.Detector.Shape) != 2 {
		return fmt.Errorf("detector shape %v is not two-dimensional: %w", c.Detector.Shape, ErrInvalidConfig)
	}

	for name, particle := range c.Particles {
		unified, err := c.unifyParticle(particle, []string{"Particles", name}, meta)
		if err != nil {
			return fmt.Errorf("particle %s: %w", name, err)
		}
		c.Particles[name] = unified
	}

	toSI(&c.Detector, c.InputUnits)
	for i := range c.Illumination {
		toSI(&c.Illumination[i], c.InputUnits)
	}
	for name, particle := range c.Particles {
		c.Particles[name] = particle.toSI(c.InputUnits)
	}

	if c.Verbose {
		log.Printf("config: %d particles, %d illumination channels, theory %s, units in %v out %v",
			len(c.Particles), len(c.Illumination), c.Theory, c.InputUnits, c.OutputUnits)
	}
	return nil
}

func (c *Config) unifyParticle(p ParticleParameters, path []string, meta *toml.MetaData) (ParticleParameters, error) {
	if len(p.Spheres) > 0 {
		for i := range p.Spheres {
			member, err := c.unifyParticle(p.Spheres[i], nil, nil)
			if err != nil {
				return p, fmt.Errorf("member %d: %w", i, err)
			}
			p.Spheres[i] = member
		}
		return p, nil
	}
	isDefined := func(field string) bool {
		if meta == nil {
			return false
		}
		return meta.IsDefined(append(path, field)...)
	}
	if !isDefined("Index") && len(p.Index) == 0 {
		p.Index = c.ParticleParameters.Index
	}
	if !isDefined("Radius") && p.Radius == 0 {
		p.Radius = c.ParticleParameters.Radius
	}
	if !isDefined("IllumIndex") && p.IllumIndex == nil {
		p.IllumIndex = c.ParticleParameters.IllumIndex
	}
	if len(p.Index) == 0 || len(p.Index) > 2 {
		return p, fmt.Errorf("index needs a real and optional imaginary part, got %v: %w", p.Index, ErrInvalidConfig)
	}
	if p.Radius <= 0 {
		return p, fmt.Errorf("radius %v: %w", p.Radius, ErrInvalidConfig)
	}
	if p.Center != nil && len(p.Center) != 3 {
		return p, fmt.Errorf("center %v is not three-dimensional: %w", p.Center, ErrInvalidConfig)
	}
	return p, nil
}

// toSI scales every length-valued field of the struct behind ptr.
func toSI(ptr any, units []string) {
	v := reflect.ValueOf(ptr).Elem()
	t := v.Type()
	for i := range v.NumField() {
		classes, some := valueUnits[t.Field(i).Name]
		if !some {
			continue
		}
		field := v.Field(i)
		switch {
		case field.CanFloat():
			field.SetFloat(SI(field.Float(), classes, units, true))
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Float64:
			scaled := make([]float64, field.Len())
			for j := range scaled {
				scaled[j] = SI(field.Index(j).Float(), classes, units, true)
			}
			field.Set(reflect.ValueOf(scaled))
		}
	}
}

func (p ParticleParameters) toSI(units []string) ParticleParameters {
	toSI(&p, units)
	if len(p.Spheres) > 0 {
		members := make([]ParticleParameters, len(p.Spheres))
		for i := range p.Spheres {
			members[i] = p.Spheres[i].toSI(units)
		}
		p.Spheres = members
	}
	return p
}

// Names lists particle names in natural order.
func (c Config) Names() []string {
	names := make([]string, 0, len(c.Particles))
	for name := range c.Particles {
		names = append(names, name)
	}
	natsort.Sort(names)
	return names
}

func complexIndex(parts []float64) complex128 {
	if len(parts) == 1 {
		return complex(parts[0], 0)
	}
	return complex(parts[0], parts[1])
}

func (p ParticleParameters) scatterer() scatterer.Scatterer {
	if len(p.Spheres) > 0 {
		members := make([]scatterer.Scatterer, len(p.Spheres))
		for i := range p.Spheres {
			members[i] = p.Spheres[i].scatterer()
		}
		return scatterer.NewSpheres(members...)
	}
	sphere := &scatterer.Sphere{N: complexIndex(p.Index), R: p.Radius}
	if p.Center != nil {
		sphere.Pos = &utils.Point{p.Center[0], p.Center[1], p.Center[2]}
	}
	if len(p.IllumIndex) > 0 {
		sphere.IllumN = make(map[string]complex128, len(p.IllumIndex))
		for label, parts := range p.IllumIndex {
			sphere.IllumN[label] = complexIndex(parts)
		}
	}
	return sphere
}

func (c Config) Scatterer(name string) (scatterer.Scatterer, error) {
	p, some := c.Particles[name]
	if !some {
		return nil, fmt.Errorf("unknown particle %q: %w", name, ErrInvalidConfig)
	}
	return p.scatterer(), nil
}

// Schema builds the detector and illumination description, in SI units.
func (c Config) Schema() metadata.Schema {
	illum := make([]metadata.Illumination, len(c.Illumination))
	for i, il := range c.Illumination {
		illum[i] = metadata.Illumination{Label: il.Label, Wavelen: il.Wavelen, Polarization: il.Polarization}
	}
	opts := []metadata.Option{
		metadata.WithIllumination(illum...),
		metadata.WithMediumIndex(c.MediumIndex),
		metadata.WithAttrs(c.Attrs),
		metadata.WithDim(c.Dim),
	}
	d := c.Detector
	switch {
	case d.Shape != nil:
		return metadata.DetectorGrid([2]int{d.Shape[0], d.Shape[1]}, d.Spacing, opts...)
	case d.Theta != nil:
		return metadata.DetectorAngles(d.Theta, d.Phi, opts...)
	default:
		return metadata.DetectorPoints(d.X, d.Y, d.Z, opts...)
	}
}

func (c Config) ScatteringTheory() (*theory.ScatteringTheory, error) {
	var t *theory.ScatteringTheory
	switch strings.ToLower(c.Theory) {
	case "rayleigh":
		t = theory.DefaultTheory()
	default:
		return nil, fmt.Errorf("unknown theory %q: %w", c.Theory, ErrInvalidConfig)
	}
	t.Threads = c.Threads
	return t, nil
}

// Output converts an SI value of the given length power to output units.
func (c Config) Output(v float64, lengthPower int) float64 {
	return SI(v, []UnitElement{{Class: Length, Power: lengthPower}}, c.OutputUnits, false)
}
