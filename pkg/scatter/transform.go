package scatter

import (
	"math/rand/v2"

	"github.com/Faultbox/surfscatter/pkg/math"
)

// scaleSeedOffset separates the scale draws from the rotation draws of the
// same instance.
const scaleSeedOffset = 1000

// parallelThreshold is the cross-product length below which the up axis and
// the surface normal are treated as parallel.
const parallelThreshold = 1e-3

// Config holds the rotation and scale rules of a placement group.
// Rotation limits are in degrees.
type Config struct {
	AlignToNormal bool    `yaml:"align_to_normal" json:"align_to_normal"`
	MaxRotationX  float32 `yaml:"max_rotation_x" json:"max_rotation_x"`
	MaxRotationY  float32 `yaml:"max_rotation_y" json:"max_rotation_y"`
	MaxRotationZ  float32 `yaml:"max_rotation_z" json:"max_rotation_z"`
	ScaleMin      float32 `yaml:"scale_min" json:"scale_min"`
	ScaleMax      float32 `yaml:"scale_max" json:"scale_max"`
	UniformScale  bool    `yaml:"uniform_scale" json:"uniform_scale"`
}

// Transform is the placement of a single instance.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// Euler returns the rotation as XYZ Euler angles in degrees.
func (t Transform) Euler() math.Vec3 {
	e := t.Rotation.Euler()
	return math.Vec3{X: math.Degrees(e.X), Y: math.Degrees(e.Y), Z: math.Degrees(e.Z)}
}

// Matrix returns the translate * rotate * scale matrix of the transform.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Position, t.Rotation, t.Scale)
}

// NewTransform derives the transform of instance index placed at point with
// the given surface normal. It is a pure function of its arguments.
func NewTransform(point, normal math.Vec3, seed int64, index int, cfg Config) Transform {
	instanceSeed := seed + int64(index)

	return Transform{
		Position: point,
		Rotation: rotation(normal, NewRand(instanceSeed), cfg),
		Scale:    scale(NewRand(instanceSeed+scaleSeedOffset), cfg),
	}
}

func rotation(normal math.Vec3, r *rand.Rand, cfg Config) math.Quat {
	if !cfg.AlignToNormal {
		x := uniform(r, 0, cfg.MaxRotationX)
		y := uniform(r, 0, cfg.MaxRotationY)
		z := uniform(r, 0, cfg.MaxRotationZ)
		return math.QuatFromEuler(math.Radians(x), math.Radians(y), math.Radians(z))
	}

	return alignUp(normal).Mul(
		math.QuatFromAxisAngle(math.Up, math.Radians(uniform(r, 0, cfg.MaxRotationZ))),
	)
}

// alignUp returns the shortest-arc rotation taking math.Up onto normal.
// Normals parallel to the up axis (either direction) give the identity.
func alignUp(normal math.Vec3) math.Quat {
	axis := math.Up.Cross(normal)
	if axis.Length() <= parallelThreshold {
		return math.QuatIdentity()
	}
	return math.QuatFromAxisAngle(axis.Normalize(), math.Up.Angle(normal))
}

func scale(r *rand.Rand, cfg Config) math.Vec3 {
	if cfg.UniformScale {
		s := uniform(r, cfg.ScaleMin, cfg.ScaleMax)
		return math.Vec3{X: s, Y: s, Z: s}
	}
	return math.Vec3{
		X: uniform(r, cfg.ScaleMin, cfg.ScaleMax),
		Y: uniform(r, cfg.ScaleMin, cfg.ScaleMax),
		Z: uniform(r, cfg.ScaleMin, cfg.ScaleMax),
	}
}

// uniform draws a value in [lo, hi]. lo == hi returns lo exactly.
func uniform(r *rand.Rand, lo, hi float32) float32 {
	return lo + (hi-lo)*float32(r.Float64())
}
