package scatterer

import (
	"errors"
	"fmt"
	"maps"

	"github.com/wildstyl3r/holoscat/internal/utils"
)

var ErrNotTranslatable = errors.New("scatterer cannot be translated")

// Scatterer is what a scattering theory needs to know about a particle.
type Scatterer interface {
	// Center reports the position of the scatterer, if one is set.
	Center() (utils.Point, bool)
	// Select narrows illumination-dependent parameters to one channel.
	Select(illum string) Scatterer
}

// Composite scatterers can be decomposed into leaf scatterers.
type Composite interface {
	Scatterer
	ComponentList() []Scatterer
}

type Sphere struct {
	N   complex128 // refractive index
	R   float64
	Pos *utils.Point

	// per-illumination refractive index, keyed by channel label
	IllumN map[string]complex128
}

func NewSphere(n complex128, r float64, center utils.Point) *Sphere {
	return &Sphere{N: n, R: r, Pos: &center}
}

func (s *Sphere) Center() (utils.Point, bool) {
	if s.Pos == nil {
		return utils.Point{}, false
	}
	return *s.Pos, true
}

func (s *Sphere) Select(illum string) Scatterer {
	selected := *s
	if n, some := s.IllumN[illum]; some {
		selected.N = n
	}
	selected.IllumN = nil
	return &selected
}

func (s *Sphere) Contains(p utils.Point) bool {
	if s.Pos == nil {
		return false
	}
	return utils.CartesianDistance(p[:], s.Pos[:]) < s.R
}

func (s *Sphere) Translated(d utils.Point) *Sphere {
	moved := *s
	moved.IllumN = maps.Clone(s.IllumN)
	if s.Pos != nil {
		c := utils.Point{s.Pos[0] + d[0], s.Pos[1] + d[1], s.Pos[2] + d[2]}
		moved.Pos = &c
	}
	return &moved
}

// Spheres is an ordered cluster of scatterers. Members may themselves be
// composites.
type Spheres struct {
	Scatterers []Scatterer
}

func NewSpheres(members ...Scatterer) *Spheres {
	return &Spheres{Scatterers: members}
}

// Center is the mean of the member centers. It is unset when the cluster is
// empty or any member lacks a center.
func (s *Spheres) Center() (utils.Point, bool) {
	if len(s.Scatterers) == 0 {
		return utils.Point{}, false
	}
	var xs, ys, zs []float64
	for _, member := range s.Scatterers {
		c, some := member.Center()
		if !some {
			return utils.Point{}, false
		}
		xs = append(xs, c[0])
		ys = append(ys, c[1])
		zs = append(zs, c[2])
	}
	return utils.Point{utils.Average(xs), utils.Average(ys), utils.Average(zs)}, true
}

func (s *Spheres) Select(illum string) Scatterer {
	selected := make([]Scatterer, len(s.Scatterers))
	for i := range s.Scatterers {
		selected[i] = s.Scatterers[i].Select(illum)
	}
	return &Spheres{Scatterers: selected}
}

// ComponentList flattens nested composites, keeping declared order.
func (s *Spheres) ComponentList() []Scatterer {
	var flat []Scatterer
	for _, member := range s.Scatterers {
		if c, ok := member.(Composite); ok {
			flat = append(flat, c.ComponentList()...)
		} else {
			flat = append(flat, member)
		}
	}
	return flat
}

func (s *Spheres) Contains(p utils.Point) bool {
	for _, member := range s.ComponentList() {
		if sphere, ok := member.(*Sphere); ok && sphere.Contains(p) {
			return true
		}
	}
	return false
}

// Translated shifts every member by d. Members other than spheres and
// sphere clusters cannot be moved and yield ErrNotTranslatable.
func (s *Spheres) Translated(d utils.Point) (*Spheres, error) {
	moved := make([]Scatterer, len(s.Scatterers))
	for i, member := range s.Scatterers {
		switch m := member.(type) {
		case *Sphere:
			moved[i] = m.Translated(d)
		case *Spheres:
			cluster, err := m.Translated(d)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			moved[i] = cluster
		default:
			return nil, fmt.Errorf("member %d of type %T: %w", i, member, ErrNotTranslatable)
		}
	}
	return &Spheres{Scatterers: moved}, nil
}
