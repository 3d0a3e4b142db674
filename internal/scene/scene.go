package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/surfscatter/pkg/math"
	"github.com/Faultbox/surfscatter/pkg/mesh"
	"github.com/Faultbox/surfscatter/pkg/placement"
)

var (
	// ErrObjectNotFound is returned when a reference names no object.
	ErrObjectNotFound = errors.New("object not found")
	// ErrNotMesh is returned when an object carries no mesh data.
	ErrNotMesh = errors.New("object is not a mesh")
)

// Settings is the scatter state stored with the scene.
type Settings struct {
	DynamicUpdate bool               `yaml:"dynamic_update"`
	UseCollection bool               `yaml:"use_collection"`
	NumInstances  int                `yaml:"num_instances"`
	NextGroupID   int                `yaml:"next_group_id"`
	ActiveGroup   int                `yaml:"active_group"`
	Groups        []*placement.Group `yaml:"groups,omitempty"`
}

// DefaultSettings returns the settings of a scene that was never scattered.
func DefaultSettings() Settings {
	return Settings{
		NumInstances: 10,
		NextGroupID:  1,
	}
}

// Group returns the group with the given ID.
func (s *Settings) Group(id int) (*placement.Group, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// RemoveGroup drops the group with the given ID from the list.
func (s *Settings) RemoveGroup(id int) bool {
	for i, g := range s.Groups {
		if g.ID == id {
			s.Groups = append(s.Groups[:i], s.Groups[i+1:]...)
			return true
		}
	}
	return false
}

// Scene holds objects, collections and scatter settings.
type Scene struct {
	Objects     []*Object `yaml:"objects"`
	Collections []string  `yaml:"collections,omitempty"`
	Placement   Settings  `yaml:"placement"`

	path   string
	meshes map[string]*mesh.Mesh
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		Placement: DefaultSettings(),
		meshes:    make(map[string]*mesh.Mesh),
	}
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// Parse decodes a scene from YAML. Relative mesh files resolve against the
// working directory until the scene is given a path.
func Parse(data []byte) (*Scene, error) {
	s := New()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.Placement.NextGroupID < 1 {
		s.Placement.NextGroupID = 1
	}
	for _, o := range s.Objects {
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.Scale == [3]float32{} {
			o.Scale = [3]float32{1, 1, 1}
		}
	}
	return s, nil
}

// Path returns the file the scene was loaded from or last saved to.
func (s *Scene) Path() string {
	return s.path
}

// SetPath sets the file Save writes to and relative mesh files resolve
// against.
func (s *Scene) SetPath(path string) {
	s.path = path
}

// Marshal encodes the scene as YAML.
func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Save writes the scene back to its file.
func (s *Scene) Save() error {
	if s.path == "" {
		return errors.New("scene has no path")
	}
	return s.SaveTo(s.path)
}

// SaveTo writes the scene to a specific path and makes it the scene path.
func (s *Scene) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	s.path = path
	return nil
}

// AddObject adds an object, assigning an ID when it has none.
func (s *Scene) AddObject(o *Object) *Object {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Scale == [3]float32{} {
		o.Scale = [3]float32{1, 1, 1}
	}
	s.Objects = append(s.Objects, o)
	return o
}

// Object finds an object by ID, falling back to its name.
func (s *Scene) Object(ref string) (*Object, error) {
	for _, o := range s.Objects {
		if o.ID == ref {
			return o, nil
		}
	}
	for _, o := range s.Objects {
		if o.Name == ref {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", ref, ErrObjectNotFound)
}

// Exists reports whether an object with the given ID is in the scene.
func (s *Scene) Exists(id string) bool {
	return s.index(id) >= 0
}

func (s *Scene) index(id string) int {
	for i, o := range s.Objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// dataOwner follows linked data to the object holding the mesh source.
func (s *Scene) dataOwner(o *Object) (*Object, error) {
	seen := map[string]bool{}
	for o.Mesh == nil {
		if o.Data == "" || seen[o.ID] {
			return nil, fmt.Errorf("%s: %w", o.Name, ErrNotMesh)
		}
		seen[o.ID] = true
		i := s.index(o.Data)
		if i < 0 {
			return nil, fmt.Errorf("%s: data %s: %w", o.Name, o.Data, ErrObjectNotFound)
		}
		o = s.Objects[i]
	}
	return o, nil
}

// IsMesh reports whether the object has mesh data, directly or linked.
func (s *Scene) IsMesh(o *Object) bool {
	_, err := s.dataOwner(o)
	return err == nil
}

// MeshOf returns the object's mesh in local space together with its world
// matrix.
func (s *Scene) MeshOf(id string) (*mesh.Mesh, math.Mat4, error) {
	i := s.index(id)
	if i < 0 {
		return nil, math.Identity(), fmt.Errorf("%q: %w", id, ErrObjectNotFound)
	}
	o := s.Objects[i]
	owner, err := s.dataOwner(o)
	if err != nil {
		return nil, math.Identity(), err
	}

	m, ok := s.meshes[owner.ID]
	if !ok {
		m, err = owner.Mesh.build(filepath.Dir(s.path), owner.Name)
		if err != nil {
			return nil, math.Identity(), fmt.Errorf("%s: %w", owner.Name, err)
		}
		if s.meshes == nil {
			s.meshes = make(map[string]*mesh.Mesh)
		}
		s.meshes[owner.ID] = m
	}
	return m, o.WorldMatrix(), nil
}

// WorldMesh returns the object's mesh transformed into world space.
func (s *Scene) WorldMesh(id string) (*mesh.Mesh, error) {
	m, mat, err := s.MeshOf(id)
	if err != nil {
		return nil, err
	}
	return m.Transform(mat), nil
}

// Duplicate creates a linked copy of an object. The copy shares the
// original's mesh data and transform but no tags or collection.
func (s *Scene) Duplicate(id string) (*Object, error) {
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%q: %w", id, ErrObjectNotFound)
	}
	src := s.Objects[i]
	data := src.ID
	if src.Mesh == nil && src.Data != "" {
		data = src.Data
	}
	dup := &Object{
		Name:     s.uniqueName(src.Name),
		Location: src.Location,
		Rotation: src.Rotation,
		Scale:    src.Scale,
		Data:     data,
	}
	return s.AddObject(dup), nil
}

// uniqueName returns base with the first free ".NNN" suffix.
func (s *Scene) uniqueName(base string) string {
	if dot := strings.LastIndexByte(base, '.'); dot >= 0 && isDigits(base[dot+1:]) {
		base = base[:dot]
	}
	taken := make(map[string]bool, len(s.Objects))
	for _, o := range s.Objects {
		taken[o.Name] = true
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s.%03d", base, n)
		if !taken[name] {
			return name
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Destroy removes an object. Objects linked to its data keep working as
// long as the data owner is not the one destroyed.
func (s *Scene) Destroy(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%q: %w", id, ErrObjectNotFound)
	}
	s.Objects = append(s.Objects[:i], s.Objects[i+1:]...)
	delete(s.meshes, id)
	return nil
}

// SetHidden shows or hides an object.
func (s *Scene) SetHidden(id string, hidden bool) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%q: %w", id, ErrObjectNotFound)
	}
	s.Objects[i].Hidden = hidden
	return nil
}

// Tagged returns the objects whose tag key equals value.
func (s *Scene) Tagged(key, value string) []*Object {
	var out []*Object
	for _, o := range s.Objects {
		if v, ok := o.Tag(key); ok && v == value {
			out = append(out, o)
		}
	}
	return out
}

// HasTag returns the objects carrying tag key with any value.
func (s *Scene) HasTag(key string) []*Object {
	var out []*Object
	for _, o := range s.Objects {
		if _, ok := o.Tag(key); ok {
			out = append(out, o)
		}
	}
	return out
}

// NewCollection creates a collection if it does not exist yet.
func (s *Scene) NewCollection(name string) {
	if !s.HasCollection(name) {
		s.Collections = append(s.Collections, name)
	}
}

// HasCollection reports whether the collection exists.
func (s *Scene) HasCollection(name string) bool {
	for _, c := range s.Collections {
		if c == name {
			return true
		}
	}
	return false
}

// RemoveCollection deletes a collection. Objects still linked to it are
// unlinked.
func (s *Scene) RemoveCollection(name string) bool {
	for i, c := range s.Collections {
		if c != name {
			continue
		}
		s.Collections = append(s.Collections[:i], s.Collections[i+1:]...)
		for _, o := range s.Objects {
			if o.Collection == name {
				o.Collection = ""
			}
		}
		return true
	}
	return false
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
