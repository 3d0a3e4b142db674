package placement

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/surfscatter/pkg/math"
	"github.com/Faultbox/surfscatter/pkg/mesh"
	"github.com/Faultbox/surfscatter/pkg/scatter"
)

// fakeHost applies plans to an in-memory instance list.
type fakeHost struct {
	next      int
	created   int
	hidden    map[string]bool
	placed    map[string]scatter.Transform
	destroyed int
}

func newFakeHost() *fakeHost {
	return &fakeHost{hidden: map[string]bool{}, placed: map[string]scatter.Transform{}}
}

func (h *fakeHost) apply(g *Group, plan *Plan) {
	if plan.Regenerated {
		g.Points = plan.Encoded
	}
	for _, a := range plan.Actions {
		switch a.Kind {
		case ActionCreate:
			h.next++
			h.created++
			handle := fmt.Sprintf("obj%d", h.next)
			g.Instances = append(g.Instances, InstanceRef{Handle: handle, Index: a.Index})
			h.placed[handle] = a.Transform
			h.hidden[handle] = false
		case ActionPlace:
			h.placed[a.Handle] = a.Transform
			h.hidden[a.Handle] = false
		case ActionHide:
			h.hidden[a.Handle] = true
		case ActionHideAll:
			for _, ref := range g.Instances {
				h.hidden[ref.Handle] = true
			}
		}
	}
}

func (h *fakeHost) visible(g *Group) int {
	n := 0
	for _, ref := range g.Instances {
		if !h.hidden[ref.Handle] {
			n++
		}
	}
	return n
}

func newGroup(n int) *Group {
	return &Group{
		ID:           1,
		Source:       "rock",
		Target:       "ground",
		NumInstances: n,
		Seed:         42,
		Config:       DefaultConfig(),
		Visible:      true,
	}
}

func reconcileAndApply(t *testing.T, h *fakeHost, g *Group, target *mesh.Mesh) *Plan {
	t.Helper()
	plan, err := Reconcile(g, g.Instances, target)
	require.NoError(t, err)
	h.apply(g, plan)
	return plan
}

func TestReconcileCreatesInstances(t *testing.T) {
	g := newGroup(5)
	h := newFakeHost()

	plan := reconcileAndApply(t, h, g, mesh.Plane(4))

	assert.True(t, plan.Regenerated)
	assert.Len(t, plan.Points, 5)
	assert.Equal(t, 5, plan.Count(ActionCreate))
	assert.Equal(t, 5, h.visible(g))

	for i, ref := range g.Instances {
		assert.Equal(t, i, ref.Index)
	}

	points, err := scatter.DecodePoints(g.Points)
	require.NoError(t, err)
	assert.Equal(t, plan.Points, points)
}

func TestReconcileIdempotent(t *testing.T) {
	g := newGroup(6)
	h := newFakeHost()
	target := mesh.Cube(2)

	reconcileAndApply(t, h, g, target)
	first := map[string]scatter.Transform{}
	for k, v := range h.placed {
		first[k] = v
	}
	pointsAfterFirst := g.Points
	created := h.created

	plan := reconcileAndApply(t, h, g, target)

	assert.False(t, plan.Regenerated)
	assert.Zero(t, plan.Count(ActionCreate))
	assert.Equal(t, created, h.created)
	assert.Equal(t, pointsAfterFirst, g.Points)
	assert.Equal(t, first, h.placed)
}

func TestReconcileShrinkHidesSurplus(t *testing.T) {
	g := newGroup(5)
	h := newFakeHost()
	target := mesh.Plane(2)
	reconcileAndApply(t, h, g, target)

	g.NumInstances = 3
	plan := reconcileAndApply(t, h, g, target)

	assert.True(t, plan.Regenerated)
	assert.Zero(t, plan.Count(ActionCreate))
	assert.Equal(t, 2, plan.Count(ActionHide))
	assert.Len(t, g.Instances, 5, "surplus instances are kept")
	assert.Equal(t, 3, h.visible(g))
	assert.True(t, h.hidden[g.Instances[3].Handle])
	assert.True(t, h.hidden[g.Instances[4].Handle])

	// Growing back reuses the hidden instances instead of creating new ones.
	g.NumInstances = 5
	plan = reconcileAndApply(t, h, g, target)
	assert.Zero(t, plan.Count(ActionCreate))
	assert.Equal(t, 5, h.visible(g))

	// Repeating the shrink changes nothing further.
	g.NumInstances = 3
	reconcileAndApply(t, h, g, target)
	created := h.created
	reconcileAndApply(t, h, g, target)
	assert.Equal(t, created, h.created)
	assert.Equal(t, 3, h.visible(g))
}

func TestReconcileInvisible(t *testing.T) {
	g := newGroup(4)
	g.Visible = false
	h := newFakeHost()

	plan := reconcileAndApply(t, h, g, mesh.Plane(1))

	assert.Equal(t, 4, plan.Count(ActionCreate))
	assert.Equal(t, 1, plan.Count(ActionHideAll))
	assert.Zero(t, plan.Count(ActionPlace))
	assert.Equal(t, ActionHideAll, plan.Actions[len(plan.Actions)-1].Kind)
	assert.Zero(t, h.visible(g))

	g.Visible = true
	plan = reconcileAndApply(t, h, g, mesh.Plane(1))
	assert.Equal(t, 4, plan.Count(ActionPlace))
	assert.Equal(t, 4, h.visible(g))
}

func TestReconcileUsesStoredIndex(t *testing.T) {
	g := newGroup(3)
	h := newFakeHost()
	target := mesh.Plane(3)
	reconcileAndApply(t, h, g, target)

	before := map[string]scatter.Transform{}
	for k, v := range h.placed {
		before[k] = v
	}

	// Reverse the owned list: each instance keeps its index, so its rotation
	// and scale are unchanged while the position follows the list slot.
	refs := g.Instances
	refs[0], refs[2] = refs[2], refs[0]

	plan, err := Reconcile(g, refs, target)
	require.NoError(t, err)
	points, _ := scatter.DecodePoints(g.Points)

	for i, a := range plan.Actions {
		require.Equal(t, ActionPlace, a.Kind)
		assert.Equal(t, before[a.Handle].Rotation, a.Transform.Rotation)
		assert.Equal(t, before[a.Handle].Scale, a.Transform.Scale)
		assert.Equal(t, points[i].Point, a.Transform.Position)
	}
}

func TestReconcileRecreatesDeletedInstance(t *testing.T) {
	g := newGroup(3)
	h := newFakeHost()
	target := mesh.Plane(3)
	reconcileAndApply(t, h, g, target)

	// Instance with index 1 was deleted outside the tool.
	live := []InstanceRef{g.Instances[0], g.Instances[2]}
	plan, err := Reconcile(g, live, target)
	require.NoError(t, err)

	require.Equal(t, 1, plan.Count(ActionCreate))
	for _, a := range plan.Actions {
		if a.Kind == ActionCreate {
			assert.Equal(t, 1, a.Index, "the free index is reused")
		}
	}
}

func TestReconcileStalePoints(t *testing.T) {
	g := newGroup(2)
	g.Instances = []InstanceRef{{Handle: "a", Index: 0}, {Handle: "b", Index: 1}}
	g.Points = `[{"point":[0,0,0],"normal":[0,0,1]}]`

	plan, err := Reconcile(g, g.Instances, mesh.Plane(1))
	require.NoError(t, err)
	assert.True(t, plan.Regenerated)
	assert.Len(t, plan.Points, 2)
	assert.Equal(t, 2, plan.Count(ActionPlace))
}

func TestReconcileMalformedPoints(t *testing.T) {
	g := newGroup(2)
	g.Instances = []InstanceRef{{Handle: "a", Index: 0}, {Handle: "b", Index: 1}}
	g.Points = "{broken"

	_, err := Reconcile(g, g.Instances, mesh.Plane(1))
	assert.True(t, errors.Is(err, scatter.ErrMalformedPoints), "got %v", err)

	// A count change regenerates and overwrites the broken data.
	g.NumInstances = 3
	plan, err := Reconcile(g, g.Instances, mesh.Plane(1))
	require.NoError(t, err)
	assert.True(t, plan.Regenerated)
}

func TestReconcileMissingTarget(t *testing.T) {
	g := newGroup(2)
	_, err := Reconcile(g, nil, nil)
	assert.True(t, errors.Is(err, ErrMissingTarget), "got %v", err)

	// No regeneration needed: the target is not consulted.
	h := newFakeHost()
	reconcileAndApply(t, h, g, mesh.Plane(1))
	plan, err := Reconcile(g, g.Instances, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Count(ActionPlace))
}

func TestReconcileDegenerateTarget(t *testing.T) {
	g := newGroup(2)
	plan, err := Reconcile(g, nil, &mesh.Mesh{})
	require.NoError(t, err)

	for _, p := range plan.Points {
		assert.Equal(t, scatter.FallbackPoint, p.Point)
		assert.Equal(t, math.Up, p.Normal)
	}
}

func TestReconcileDoesNotMutateGroup(t *testing.T) {
	g := newGroup(3)
	snapshot := *g

	_, err := Reconcile(g, nil, mesh.Plane(1))
	require.NoError(t, err)
	assert.Equal(t, snapshot, *g)
}

func TestClamp(t *testing.T) {
	g := newGroup(5000)
	g.Config.MaxRotationX = -10
	g.Config.MaxRotationZ = 720
	g.Config.ScaleMin = 0
	g.Config.ScaleMax = 50
	g.Clamp()

	assert.Equal(t, MaxInstances, g.NumInstances)
	assert.Equal(t, float32(0), g.Config.MaxRotationX)
	assert.Equal(t, float32(360), g.Config.MaxRotationZ)
	assert.Equal(t, float32(MinScale), g.Config.ScaleMin)
	assert.Equal(t, float32(MaxScale), g.Config.ScaleMax)

	g.NumInstances = 0
	g.Clamp()
	assert.Equal(t, MinInstances, g.NumInstances)
}

func TestHandleLookup(t *testing.T) {
	g := newGroup(2)
	g.Instances = []InstanceRef{{Handle: "a", Index: 0}, {Handle: "b", Index: 7}}

	h, ok := g.HandleAt(7)
	assert.True(t, ok)
	assert.Equal(t, "b", h)
	_, ok = g.HandleAt(3)
	assert.False(t, ok)

	assert.True(t, g.Owns("a"))
	assert.False(t, g.Owns("z"))
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "create", ActionCreate.String())
	assert.Equal(t, "hide-all", ActionHideAll.String())
	assert.Equal(t, "Unknown(9)", ActionKind(9).String())
}
