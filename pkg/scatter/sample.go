// Package scatter implements area-weighted surface sampling and the
// deterministic per-instance transforms derived from a group seed.
package scatter

import (
	"math/rand/v2"

	"github.com/Faultbox/surfscatter/pkg/math"
	"github.com/Faultbox/surfscatter/pkg/mesh"
)

// Fallback sample returned for meshes without any sampleable surface.
var (
	FallbackPoint  = math.Vec3{}
	FallbackNormal = math.Up
)

// NewRand returns the deterministic generator used for a given seed.
// The same seed always yields the same sequence on every platform.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Sample is a point on a mesh surface with the normal of the face it lies on.
type Sample struct {
	Point  math.Vec3
	Normal math.Vec3
}

// Sampler draws area-weighted random points from a mesh.
// Face areas are computed once on construction.
type Sampler struct {
	faces []mesh.Face
	areas []float32
	total float32
}

// NewSampler prepares a sampler for m. A nil or empty mesh is allowed and
// makes every draw return the fallback sample.
func NewSampler(m *mesh.Mesh) *Sampler {
	s := &Sampler{}
	if m == nil {
		return s
	}
	s.faces = m.Faces
	s.areas = m.FaceAreas()
	for _, a := range s.areas {
		s.total += a
	}
	return s
}

// TotalArea returns the summed area of all faces.
func (s *Sampler) TotalArea() float32 {
	return s.total
}

// Sample draws one point uniformly distributed over the mesh surface.
func (s *Sampler) Sample(r *rand.Rand) Sample {
	if len(s.faces) == 0 || !(s.total > 0) {
		return Sample{Point: FallbackPoint, Normal: FallbackNormal}
	}

	target := float32(r.Float64()) * s.total
	face := s.faces[selectFace(s.areas, target)]

	return Sample{Point: pointInFace(face, r), Normal: face.Normal}
}

// SampleMesh is a one-shot Sample over m.
func SampleMesh(m *mesh.Mesh, r *rand.Rand) (point, normal math.Vec3) {
	smp := NewSampler(m).Sample(r)
	return smp.Point, smp.Normal
}

// selectFace walks the faces accumulating area until the running sum reaches
// target. Zero-area faces are skipped. If rounding leaves the sum short of
// target, the last face is returned.
func selectFace(areas []float32, target float32) int {
	var running float32
	for i, a := range areas {
		running += a
		if a > 0 && running >= target {
			return i
		}
	}
	return len(areas) - 1
}

// pointInFace draws a point inside face. Triangles are sampled uniformly.
// Larger polygons pick one edge uniformly and sample the triangle formed by
// the centroid and that edge, so irregular polygons are slightly biased
// toward their short edges.
func pointInFace(face mesh.Face, r *rand.Rand) math.Vec3 {
	verts := face.Vertices
	if len(verts) == 3 {
		return foldBarycentric(verts[0], verts[1], verts[2], r)
	}

	i := r.IntN(len(verts))
	return foldBarycentric(face.Centroid(), verts[i], verts[(i+1)%len(verts)], r)
}

// foldBarycentric maps two uniform draws into a uniform point inside abc.
// Draws with u+v > 1 land in the mirrored half of the parallelogram and are
// reflected back.
func foldBarycentric(a, b, c math.Vec3, r *rand.Rand) math.Vec3 {
	u, v := foldUV(float32(r.Float64()), float32(r.Float64()))
	w := 1 - u - v
	return a.Scale(u).Add(b.Scale(v)).Add(c.Scale(w))
}

func foldUV(u, v float32) (float32, float32) {
	if u+v > 1 {
		return 1 - u, 1 - v
	}
	return u, v
}

// GeneratePoints samples count points from m, seeding the draw for point i
// with seed+i so each index is reproducible on its own.
func GeneratePoints(m *mesh.Mesh, seed int64, count int) []Sample {
	s := NewSampler(m)
	out := make([]Sample, count)
	for i := range out {
		out[i] = s.Sample(NewRand(seed + int64(i)))
	}
	return out
}
