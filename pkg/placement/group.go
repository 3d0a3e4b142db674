// Package placement models placement groups and reconciles their live
// instances against the group configuration.
package placement

import (
	"github.com/Faultbox/surfscatter/pkg/scatter"
)

// Property limits.
const (
	MinInstances = 1
	MaxInstances = 1000
	MaxRotation  = 360
	MinScale     = 0.1
	MaxScale     = 10
)

// InstanceRef is an owned instance: the host handle and its stable index
// within the group.
type InstanceRef struct {
	Handle string `yaml:"handle"`
	Index  int    `yaml:"index"`
}

// Group is one scattering operation.
type Group struct {
	ID           int            `yaml:"id"`
	Source       string         `yaml:"source"`
	Target       string         `yaml:"target"`
	NumInstances int            `yaml:"num_instances"`
	Seed         int64          `yaml:"seed"`
	Config       scatter.Config `yaml:",inline"`
	Visible      bool           `yaml:"visible"`
	Collection   string         `yaml:"collection,omitempty"`

	// Points is the JSON-encoded point list, see scatter.EncodePoints.
	Points string `yaml:"points"`

	Instances []InstanceRef `yaml:"instances,omitempty"`
}

// DefaultConfig returns the rotation and scale rules given to new groups.
func DefaultConfig() scatter.Config {
	return scatter.Config{
		AlignToNormal: true,
		MaxRotationX:  360,
		MaxRotationY:  360,
		MaxRotationZ:  360,
		ScaleMin:      0.8,
		ScaleMax:      1.2,
		UniformScale:  true,
	}
}

// Clamp forces every property into its allowed range.
func (g *Group) Clamp() {
	g.NumInstances = clampInt(g.NumInstances, MinInstances, MaxInstances)
	g.Config.MaxRotationX = clampFloat(g.Config.MaxRotationX, 0, MaxRotation)
	g.Config.MaxRotationY = clampFloat(g.Config.MaxRotationY, 0, MaxRotation)
	g.Config.MaxRotationZ = clampFloat(g.Config.MaxRotationZ, 0, MaxRotation)
	g.Config.ScaleMin = clampFloat(g.Config.ScaleMin, MinScale, MaxScale)
	g.Config.ScaleMax = clampFloat(g.Config.ScaleMax, MinScale, MaxScale)
}

// HandleAt returns the handle of the instance with the given index.
func (g *Group) HandleAt(index int) (string, bool) {
	for _, ref := range g.Instances {
		if ref.Index == index {
			return ref.Handle, true
		}
	}
	return "", false
}

// Owns reports whether handle belongs to the group.
func (g *Group) Owns(handle string) bool {
	for _, ref := range g.Instances {
		if ref.Handle == handle {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampFloat(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
