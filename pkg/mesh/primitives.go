package mesh

import (
	"fmt"

	"github.com/Faultbox/surfscatter/pkg/math"
)

// Plane returns a single quad of the given size centered on the origin,
// lying in the XY plane and facing +Z.
func Plane(size float32) *Mesh {
	h := size / 2
	return &Mesh{
		Name: "Plane",
		Faces: []Face{
			NewFace(
				math.Vec3{X: -h, Y: -h},
				math.Vec3{X: h, Y: -h},
				math.Vec3{X: h, Y: h},
				math.Vec3{X: -h, Y: h},
			),
		},
	}
}

// Cube returns an axis-aligned cube of the given edge length centered on the
// origin, with six outward-facing quads.
func Cube(size float32) *Mesh {
	h := size / 2
	v := func(x, y, z float32) math.Vec3 { return math.Vec3{X: x * h, Y: y * h, Z: z * h} }

	return &Mesh{
		Name: "Cube",
		Faces: []Face{
			NewFace(v(-1, -1, 1), v(1, -1, 1), v(1, 1, 1), v(-1, 1, 1)),     // top
			NewFace(v(-1, -1, -1), v(-1, 1, -1), v(1, 1, -1), v(1, -1, -1)), // bottom
			NewFace(v(1, -1, -1), v(1, 1, -1), v(1, 1, 1), v(1, -1, 1)),     // +X
			NewFace(v(-1, -1, -1), v(-1, -1, 1), v(-1, 1, 1), v(-1, 1, -1)), // -X
			NewFace(v(-1, 1, -1), v(-1, 1, 1), v(1, 1, 1), v(1, 1, -1)),     // +Y
			NewFace(v(-1, -1, -1), v(1, -1, -1), v(1, -1, 1), v(-1, -1, 1)), // -Y
		},
	}
}

// Primitive returns a named primitive mesh ("plane" or "cube").
func Primitive(name string, size float32) (*Mesh, error) {
	if size <= 0 {
		size = 2
	}
	switch name {
	case "plane":
		return Plane(size), nil
	case "cube":
		return Cube(size), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrimitive, name)
	}
}
