// Package mesh provides the polygon mesh model that scatter targets are
// sampled from.
package mesh

import (
	"github.com/Faultbox/surfscatter/pkg/math"
)

// Face is a planar polygon of 3 or more vertices with a cached unit normal.
type Face struct {
	Vertices []math.Vec3
	Normal   math.Vec3
}

// NewFace builds a face from its vertices and derives the normal.
func NewFace(vertices ...math.Vec3) Face {
	return Face{Vertices: vertices, Normal: faceNormal(vertices)}
}

// faceNormal computes the polygon normal with Newell's method, which stays
// stable for non-planar and concave polygons. Degenerate faces get math.Up.
func faceNormal(verts []math.Vec3) math.Vec3 {
	var n math.Vec3
	for i := range verts {
		cur := verts[i]
		next := verts[(i+1)%len(verts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	if n.Length() < 1e-12 {
		return math.Up
	}
	return n.Normalize()
}

// Area returns the face area as the sum of a triangle fan from the first vertex.
func (f Face) Area() float32 {
	if len(f.Vertices) < 3 {
		return 0
	}
	var area float32
	a := f.Vertices[0]
	for i := 1; i+1 < len(f.Vertices); i++ {
		area += TriangleArea(a, f.Vertices[i], f.Vertices[i+1])
	}
	return area
}

// Centroid returns the mean of the face vertices.
func (f Face) Centroid() math.Vec3 {
	var c math.Vec3
	if len(f.Vertices) == 0 {
		return c
	}
	for _, v := range f.Vertices {
		c = c.Add(v)
	}
	return c.Scale(1 / float32(len(f.Vertices)))
}

// TriangleArea returns the area of triangle abc.
func TriangleArea(a, b, c math.Vec3) float32 {
	return b.Sub(a).Cross(c.Sub(a)).Length() / 2
}

// Mesh is an ordered list of faces in one coordinate space.
type Mesh struct {
	Name  string
	Faces []Face
}

// Area returns the total surface area.
func (m *Mesh) Area() float32 {
	var total float32
	for _, f := range m.Faces {
		total += f.Area()
	}
	return total
}

// FaceAreas returns the area of every face, in face order.
func (m *Mesh) FaceAreas() []float32 {
	areas := make([]float32, len(m.Faces))
	for i, f := range m.Faces {
		areas[i] = f.Area()
	}
	return areas
}

// IsEmpty reports whether the mesh has no surface to sample.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Faces) == 0 || m.Area() <= 0
}

// Transform returns a copy of the mesh with every vertex transformed by mat.
// Normals are recomputed from the transformed vertices, so non-uniform scale
// and mirroring are handled.
func (m *Mesh) Transform(mat math.Mat4) *Mesh {
	out := &Mesh{Name: m.Name, Faces: make([]Face, len(m.Faces))}
	for i, f := range m.Faces {
		verts := make([]math.Vec3, len(f.Vertices))
		for j, v := range f.Vertices {
			verts[j] = mat.TransformVec3(v)
		}
		out.Faces[i] = NewFace(verts...)
	}
	return out
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Contains reports whether p lies inside the box, with tolerance eps.
func (b Bounds) Contains(p math.Vec3, eps float32) bool {
	return p.X >= b.Min.X-eps && p.X <= b.Max.X+eps &&
		p.Y >= b.Min.Y-eps && p.Y <= b.Max.Y+eps &&
		p.Z >= b.Min.Z-eps && p.Z <= b.Max.Z+eps
}

// Bounds returns the bounding box of all vertices.
func (m *Mesh) Bounds() Bounds {
	b := Bounds{
		Min: math.Vec3{X: 1e30, Y: 1e30, Z: 1e30},
		Max: math.Vec3{X: -1e30, Y: -1e30, Z: -1e30},
	}
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			b.Min.X = min(b.Min.X, v.X)
			b.Min.Y = min(b.Min.Y, v.Y)
			b.Min.Z = min(b.Min.Z, v.Z)
			b.Max.X = max(b.Max.X, v.X)
			b.Max.Y = max(b.Max.Y, v.Y)
			b.Max.Z = max(b.Max.Z, v.Z)
		}
	}
	return b
}
