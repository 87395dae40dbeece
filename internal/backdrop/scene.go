// Package backdrop describes the decorative particle and shape scene shown
// behind catalog pages, and the frame loop that animates it.
package backdrop

import (
	"math"
	"math/rand/v2"
	"slices"
)

const (
	ParticleCount  = 50
	ParticleSpread = 100.0
	ShapeCount     = 8
	ShapeSpread    = 20.0

	particleSpinX = 0.001
	particleSpinY = 0.002
	shapeSpinX    = 0.01
	shapeSpinY    = 0.015
	shapeSpinStep = 0.001
	bobAmplitude  = 0.002
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type ShapeKind string

const (
	Box    ShapeKind = "box"
	Sphere ShapeKind = "sphere"
)

// Shape is one floating wireframe solid
type Shape struct {
	Kind     ShapeKind `json:"kind"`
	Position Vec3      `json:"position"`
	Rotation Vec3      `json:"rotation"`
	Hue      float64   `json:"hue"` // HSL hue in [0.6, 0.9)
}

// Scene is the full decorative state. A mounted scene is owned by its
// loop until released.
type Scene struct {
	Particles        []Vec3  `json:"particles"`
	ParticleRotation Vec3    `json:"particle_rotation"`
	Shapes           []Shape `json:"shapes"`
	Frame            int     `json:"frame"`
}

func spread(rng *rand.Rand, width float64) float64 {
	return (rng.Float64() - 0.5) * width
}

// NewScene places particles and shapes at random positions
func NewScene(rng *rand.Rand) *Scene {
	s := &Scene{
		Particles: make([]Vec3, ParticleCount),
		Shapes:    make([]Shape, ShapeCount),
	}
	for i := range s.Particles {
		s.Particles[i] = Vec3{
			X: spread(rng, ParticleSpread),
			Y: spread(rng, ParticleSpread),
			Z: spread(rng, ParticleSpread),
		}
	}
	for i := range s.Shapes {
		kind := Sphere
		if rng.Float64() > 0.5 {
			kind = Box
		}
		s.Shapes[i] = Shape{
			Kind: kind,
			Hue:  rng.Float64()*0.3 + 0.6,
			Position: Vec3{
				X: spread(rng, ShapeSpread),
				Y: spread(rng, ShapeSpread),
				Z: spread(rng, ShapeSpread),
			},
		}
	}
	return s
}

// Step advances one frame. t is the animation clock in milliseconds.
func (s *Scene) Step(t float64) {
	s.ParticleRotation.X += particleSpinX
	s.ParticleRotation.Y += particleSpinY

	for i := range s.Shapes {
		sh := &s.Shapes[i]
		fi := float64(i)
		sh.Rotation.X += shapeSpinX + fi*shapeSpinStep
		sh.Rotation.Y += shapeSpinY + fi*shapeSpinStep
		sh.Position.Y += math.Sin(t*0.001+fi) * bobAmplitude
	}
	s.Frame++
}

// Clone returns a deep copy
func (s *Scene) Clone() *Scene {
	c := *s
	c.Particles = slices.Clone(s.Particles)
	c.Shapes = slices.Clone(s.Shapes)
	return &c
}
