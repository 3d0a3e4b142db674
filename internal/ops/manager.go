// Package ops implements the user-facing scatter actions on top of a scene.
package ops

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/surfscatter/internal/scene"
	"github.com/Faultbox/surfscatter/pkg/mesh"
	"github.com/Faultbox/surfscatter/pkg/placement"
	"github.com/Faultbox/surfscatter/pkg/scatter"
)

// CollectionPrefix starts the name of every collection created for a group.
const CollectionPrefix = "Scatter_"

// MaxSeed is the largest seed handed out to new or reseeded groups.
const MaxSeed = 1000000

var (
	ErrMissingSource   = errors.New("source object no longer exists")
	ErrNotMesh         = errors.New("target must be a mesh object")
	ErrSameObject      = errors.New("source and target must be different objects")
	ErrGroupNotFound   = errors.New("placement group not found")
	ErrUnknownProperty = errors.New("unknown property")
)

// Status is the outcome of an action as reported to the user.
type Status struct {
	OK      bool
	Message string
	Err     error
}

func (s Status) String() string {
	if s.OK {
		return s.Message
	}
	return "error: " + s.Message
}

func okf(format string, args ...any) Status {
	return Status{OK: true, Message: fmt.Sprintf(format, args...)}
}

// Manager runs actions against one scene.
type Manager struct {
	scene    *scene.Scene
	log      *zap.Logger
	seed     func() int64
	defaults scatter.Config
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithSeedSource replaces the random seed source used for new groups.
func WithSeedSource(seed func() int64) Option {
	return func(m *Manager) { m.seed = seed }
}

// WithDefaults sets the rotation and scale rules given to new groups.
func WithDefaults(cfg scatter.Config) Option {
	return func(m *Manager) { m.defaults = cfg }
}

// New creates a manager for s.
func New(s *scene.Scene, opts ...Option) *Manager {
	m := &Manager{
		scene:    s,
		log:      zap.NewNop(),
		seed:     func() int64 { return rand.Int64N(MaxSeed + 1) },
		defaults: placement.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Scene returns the managed scene.
func (m *Manager) Scene() *scene.Scene {
	return m.scene
}

func (m *Manager) fail(action string, err error) Status {
	m.log.Warn(action+" failed", zap.Error(err))
	return Status{Message: err.Error(), Err: err}
}

func (m *Manager) settings() *scene.Settings {
	return &m.scene.Placement
}

func (m *Manager) group(id int) (*placement.Group, error) {
	g, ok := m.settings().Group(id)
	if !ok {
		return nil, fmt.Errorf("group %d: %w", id, ErrGroupNotFound)
	}
	return g, nil
}

// liveInstances returns the group's instances that still exist. A group that
// owns nothing adopts objects tagged with its ID.
func (m *Manager) liveInstances(g *placement.Group) []placement.InstanceRef {
	live := make([]placement.InstanceRef, 0, len(g.Instances))
	for _, ref := range g.Instances {
		if m.scene.Exists(ref.Handle) {
			live = append(live, ref)
		}
	}
	if len(g.Instances) > 0 {
		return live
	}

	for _, o := range m.scene.Tagged(scene.TagGroup, strconv.Itoa(g.ID)) {
		v, _ := o.Tag(scene.TagIndex)
		idx, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		live = append(live, placement.InstanceRef{Handle: o.ID, Index: idx})
	}
	slices.SortFunc(live, func(a, b placement.InstanceRef) int { return a.Index - b.Index })
	if len(live) > 0 {
		m.log.Debug("adopted tagged instances", zap.Int("group", g.ID), zap.Int("count", len(live)))
	}
	return live
}

// target returns the group's target in world space, or nil when the target
// object was deleted.
func (m *Manager) target(g *placement.Group) (*mesh.Mesh, error) {
	if !m.scene.Exists(g.Target) {
		return nil, nil
	}
	return m.scene.WorldMesh(g.Target)
}

// reconcile brings the scene in line with g.
func (m *Manager) reconcile(g *placement.Group) error {
	if !m.scene.Exists(g.Source) {
		return fmt.Errorf("group %d: %w", g.ID, ErrMissingSource)
	}
	target, err := m.target(g)
	if err != nil {
		return fmt.Errorf("group %d: %w", g.ID, err)
	}
	live := m.liveInstances(g)
	plan, err := placement.Reconcile(g, live, target)
	if err != nil {
		return err
	}
	g.Instances = live
	return m.apply(g, plan)
}

// update applies mutate to a copy of g and reconciles it. g only changes
// when reconciliation succeeds.
func (m *Manager) update(g *placement.Group, mutate func(*placement.Group)) error {
	next := *g
	if mutate != nil {
		mutate(&next)
	}
	next.Clamp()
	if err := m.reconcile(&next); err != nil {
		return err
	}
	*g = next
	return nil
}

// apply performs a plan on the scene.
func (m *Manager) apply(g *placement.Group, plan *placement.Plan) error {
	if plan.Regenerated {
		g.Points = plan.Encoded
	}

	for _, a := range plan.Actions {
		switch a.Kind {
		case placement.ActionCreate:
			obj, err := m.scene.Duplicate(g.Source)
			if err != nil {
				return fmt.Errorf("group %d: %w", g.ID, err)
			}
			obj.SetTag(scene.TagGroup, strconv.Itoa(g.ID))
			obj.SetTag(scene.TagIndex, strconv.Itoa(a.Index))
			obj.Collection = g.Collection
			if g.Visible {
				obj.SetTransform(a.Transform)
			}
			g.Instances = append(g.Instances, placement.InstanceRef{Handle: obj.ID, Index: a.Index})

		case placement.ActionPlace:
			obj, err := m.scene.Object(a.Handle)
			if err != nil {
				return fmt.Errorf("group %d: %w", g.ID, err)
			}
			obj.SetTransform(a.Transform)
			obj.Hidden = false

		case placement.ActionHide:
			if err := m.scene.SetHidden(a.Handle, true); err != nil {
				return fmt.Errorf("group %d: %w", g.ID, err)
			}

		case placement.ActionHideAll:
			for _, ref := range g.Instances {
				_ = m.scene.SetHidden(ref.Handle, true)
			}
		}
	}

	m.log.Debug("reconciled group",
		zap.Int("group", g.ID),
		zap.Bool("regenerated", plan.Regenerated),
		zap.Int("created", plan.Count(placement.ActionCreate)),
		zap.Int("placed", plan.Count(placement.ActionPlace)),
		zap.Int("hidden", plan.Count(placement.ActionHide)),
	)
	return nil
}

// destroyInstances removes every object owned by or tagged for g.
func (m *Manager) destroyInstances(g *placement.Group) int {
	n := 0
	for _, ref := range g.Instances {
		if m.scene.Destroy(ref.Handle) == nil {
			n++
		}
	}
	for _, o := range m.scene.Tagged(scene.TagGroup, strconv.Itoa(g.ID)) {
		if m.scene.Destroy(o.ID) == nil {
			n++
		}
	}
	return n
}
