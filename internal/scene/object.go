// Package scene is the object model scatter operates on: mesh objects,
// linked duplicates, collections and the placement settings, persisted as a
// YAML scene file.
package scene

import (
	"github.com/Faultbox/surfscatter/pkg/math"
	"github.com/Faultbox/surfscatter/pkg/mesh"
	"github.com/Faultbox/surfscatter/pkg/scatter"
)

// Tag keys written on scattered instances.
const (
	TagGroup = "scatter_group"
	TagIndex = "scatter_index"
)

// MeshSource describes where an object's mesh data comes from.
// Exactly one of File, Primitive or Faces should be set.
type MeshSource struct {
	File      string         `yaml:"file,omitempty"`
	Primitive string         `yaml:"primitive,omitempty"`
	Size      float32        `yaml:"size,omitempty"`
	Faces     [][][3]float32 `yaml:"faces,omitempty"`
}

// Object is a scene object. Linked duplicates set Data to the ID of the
// object owning the mesh data instead of carrying a MeshSource.
type Object struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Location   [3]float32        `yaml:"location,flow"`
	Rotation   [3]float32        `yaml:"rotation,flow"` // XYZ Euler, degrees
	Scale      [3]float32        `yaml:"scale,flow"`
	Hidden     bool              `yaml:"hidden,omitempty"`
	Mesh       *MeshSource       `yaml:"mesh,omitempty"`
	Data       string            `yaml:"data,omitempty"`
	Collection string            `yaml:"collection,omitempty"`
	Tags       map[string]string `yaml:"tags,omitempty"`
}

// WorldMatrix returns the object's location * rotation * scale matrix.
func (o *Object) WorldMatrix() math.Mat4 {
	rot := math.QuatFromEuler(
		math.Radians(o.Rotation[0]),
		math.Radians(o.Rotation[1]),
		math.Radians(o.Rotation[2]),
	)
	return math.Compose(math.Vec3FromArray(o.Location), rot, math.Vec3FromArray(o.Scale))
}

// SetTransform sets location, rotation and scale from a scatter transform.
func (o *Object) SetTransform(t scatter.Transform) {
	o.Location = t.Position.Array()
	o.Rotation = t.Euler().Array()
	o.Scale = t.Scale.Array()
}

// Tag returns the value of a tag.
func (o *Object) Tag(key string) (string, bool) {
	v, ok := o.Tags[key]
	return v, ok
}

// SetTag sets a tag value.
func (o *Object) SetTag(key, value string) {
	if o.Tags == nil {
		o.Tags = make(map[string]string)
	}
	o.Tags[key] = value
}

// build turns a mesh source into a mesh. dir resolves relative file paths.
func (src *MeshSource) build(dir string, name string) (*mesh.Mesh, error) {
	switch {
	case src.File != "":
		return mesh.LoadOBJ(resolvePath(dir, src.File))
	case src.Primitive != "":
		return mesh.Primitive(src.Primitive, src.Size)
	default:
		m := &mesh.Mesh{Name: name, Faces: make([]mesh.Face, 0, len(src.Faces))}
		for _, f := range src.Faces {
			verts := make([]math.Vec3, len(f))
			for i, v := range f {
				verts[i] = math.Vec3FromArray(v)
			}
			if len(verts) < 3 {
				continue
			}
			m.Faces = append(m.Faces, mesh.NewFace(verts...))
		}
		return m, nil
	}
}
