package placement

import (
	"errors"
	"fmt"

	"github.com/Faultbox/surfscatter/pkg/mesh"
	"github.com/Faultbox/surfscatter/pkg/scatter"
)

// ErrMissingTarget is returned when a group must regenerate its points but
// its target mesh no longer exists.
var ErrMissingTarget = errors.New("target object no longer exists")

// ActionKind identifies what an Action does to the host.
type ActionKind uint8

const (
	// ActionCreate creates a linked duplicate of the source with Index and,
	// unless followed by ActionHideAll, places it at Transform.
	ActionCreate ActionKind = iota
	// ActionPlace shows the instance Handle and sets its Transform.
	ActionPlace
	// ActionHide hides the instance Handle without destroying it.
	ActionHide
	// ActionHideAll hides every instance of the group.
	ActionHideAll
)

// String returns the action kind name.
func (k ActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionPlace:
		return "place"
	case ActionHide:
		return "hide"
	case ActionHideAll:
		return "hide-all"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Action is a single change the host must perform.
type Action struct {
	Kind      ActionKind
	Handle    string
	Index     int
	Transform scatter.Transform
}

// Plan is the result of reconciling one group.
type Plan struct {
	GroupID int

	// Regenerated is set when the point list was rebuilt; Points then holds
	// the new list and Encoded its persisted form.
	Regenerated bool
	Points      []scatter.Sample
	Encoded     string

	Actions []Action
}

// Count returns the number of actions of the given kind.
func (p *Plan) Count(kind ActionKind) int {
	n := 0
	for _, a := range p.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Reconcile computes the actions that bring the live instances of g in line
// with its configuration. live lists the group's instances that still exist,
// in group order. target is the target mesh in world space; it is only needed
// when points must be regenerated and may be nil otherwise.
//
// Reconcile does not modify g. Applying the plan and calling Reconcile again
// with the updated state yields no further creations.
func Reconcile(g *Group, live []InstanceRef, target *mesh.Mesh) (*Plan, error) {
	plan := &Plan{GroupID: g.ID}

	points, decodeErr := scatter.DecodePoints(g.Points)
	stale := decodeErr == nil && len(points) != g.NumInstances

	var pending []InstanceRef
	if len(live) != g.NumInstances || stale {
		if target == nil {
			return nil, fmt.Errorf("group %d: %w", g.ID, ErrMissingTarget)
		}

		points = scatter.GeneratePoints(target, g.Seed, g.NumInstances)
		encoded, err := scatter.EncodePoints(points)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", g.ID, err)
		}
		plan.Regenerated = true
		plan.Points = points
		plan.Encoded = encoded

		taken := make(map[int]bool, len(live))
		for _, ref := range live {
			taken[ref.Index] = true
		}
		next := 0
		for n := len(live); n < g.NumInstances; n++ {
			next = nextFreeIndex(next, taken)
			taken[next] = true
			pending = append(pending, InstanceRef{Index: next})
		}
	} else if decodeErr != nil {
		return nil, fmt.Errorf("group %d: %w", g.ID, decodeErr)
	}

	all := make([]InstanceRef, 0, len(live)+len(pending))
	all = append(all, live...)
	all = append(all, pending...)

	if !g.Visible {
		for _, ref := range pending {
			plan.Actions = append(plan.Actions, Action{Kind: ActionCreate, Index: ref.Index})
		}
		plan.Actions = append(plan.Actions, Action{Kind: ActionHideAll})
		return plan, nil
	}

	for i, ref := range all {
		if i >= len(points) {
			plan.Actions = append(plan.Actions, Action{Kind: ActionHide, Handle: ref.Handle})
			continue
		}

		pt := points[i]
		tr := scatter.NewTransform(pt.Point, pt.Normal, g.Seed, ref.Index, g.Config)
		if ref.Handle == "" {
			plan.Actions = append(plan.Actions, Action{Kind: ActionCreate, Index: ref.Index, Transform: tr})
			continue
		}
		plan.Actions = append(plan.Actions, Action{Kind: ActionPlace, Handle: ref.Handle, Index: ref.Index, Transform: tr})
	}

	return plan, nil
}

// nextFreeIndex returns the smallest index at or after from that no instance
// uses yet.
func nextFreeIndex(from int, taken map[int]bool) int {
	i := from
	for taken[i] {
		i++
	}
	return i
}
