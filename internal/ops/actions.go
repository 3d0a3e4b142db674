package ops

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jinzhu/copier"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/surfscatter/internal/scene"
	"github.com/Faultbox/surfscatter/pkg/placement"
	"github.com/Faultbox/surfscatter/pkg/scatter"
)

// Scatter creates a new group placing linked duplicates of source on the
// surface of target. Both are object IDs or names.
func (m *Manager) Scatter(sourceRef, targetRef string) Status {
	src, err := m.scene.Object(sourceRef)
	if err != nil {
		return m.fail("scatter", fmt.Errorf("source: %w", err))
	}
	tgt, err := m.scene.Object(targetRef)
	if err != nil {
		return m.fail("scatter", fmt.Errorf("target: %w", err))
	}
	if src.ID == tgt.ID {
		return m.fail("scatter", ErrSameObject)
	}
	if !m.scene.IsMesh(tgt) {
		return m.fail("scatter", fmt.Errorf("%s: %w", tgt.Name, ErrNotMesh))
	}
	world, err := m.scene.WorldMesh(tgt.ID)
	if err != nil {
		return m.fail("scatter", err)
	}

	settings := m.settings()
	g := &placement.Group{
		ID:           settings.NextGroupID,
		Source:       src.ID,
		Target:       tgt.ID,
		NumInstances: settings.NumInstances,
		Seed:         m.seed(),
		Config:       m.defaults,
		Visible:      true,
	}
	g.Clamp()

	plan, err := placement.Reconcile(g, nil, world)
	if err != nil {
		return m.fail("scatter", err)
	}

	settings.NextGroupID++
	if settings.UseCollection {
		g.Collection = fmt.Sprintf("%s%s_%d", CollectionPrefix, src.Name, g.Seed)
		m.scene.NewCollection(g.Collection)
	}
	settings.Groups = append(settings.Groups, g)
	settings.ActiveGroup = g.ID

	if err := m.apply(g, plan); err != nil {
		return m.fail("scatter", err)
	}

	m.log.Info("scattered",
		zap.Int("group", g.ID),
		zap.String("source", src.Name),
		zap.String("target", tgt.Name),
		zap.Int("instances", g.NumInstances),
		zap.Int64("seed", g.Seed),
	)
	return okf("Created %d linked duplicates in group %d", g.NumInstances, g.ID)
}

// ClearAll removes every group, its instances and its collection, and
// resets group numbering.
func (m *Manager) ClearAll() Status {
	settings := m.settings()

	n := 0
	for _, g := range settings.Groups {
		n += m.destroyInstances(g)
	}
	for _, o := range m.scene.HasTag(scene.TagGroup) {
		if m.scene.Destroy(o.ID) == nil {
			n++
		}
	}
	for _, c := range slices.Clone(m.scene.Collections) {
		if strings.HasPrefix(c, CollectionPrefix) {
			m.scene.RemoveCollection(c)
		}
	}

	groups := len(settings.Groups)
	settings.Groups = nil
	settings.ActiveGroup = 0
	settings.NextGroupID = 1

	m.log.Info("cleared placements", zap.Int("groups", groups), zap.Int("instances", n))
	return okf("Removed %d groups and %d instances", groups, n)
}

// RemoveGroup deletes one group together with its instances and collection.
func (m *Manager) RemoveGroup(id int) Status {
	g, err := m.group(id)
	if err != nil {
		return m.fail("remove", err)
	}

	n := m.destroyInstances(g)
	if g.Collection != "" {
		m.scene.RemoveCollection(g.Collection)
	}

	settings := m.settings()
	settings.RemoveGroup(id)
	if settings.ActiveGroup == id {
		settings.ActiveGroup = 0
		if len(settings.Groups) > 0 {
			settings.ActiveGroup = settings.Groups[len(settings.Groups)-1].ID
		}
	}

	m.log.Info("removed group", zap.Int("group", id), zap.Int("instances", n))
	return okf("Removed group %d", id)
}

// DuplicateGroup copies a group under a new ID and seed. The copy reuses the
// stored points, so its instances sit where the original's do.
func (m *Manager) DuplicateGroup(id int) Status {
	g, err := m.group(id)
	if err != nil {
		return m.fail("duplicate", err)
	}
	if !m.scene.Exists(g.Source) {
		return m.fail("duplicate", fmt.Errorf("group %d: %w", id, ErrMissingSource))
	}
	points, err := scatter.DecodePoints(g.Points)
	if err != nil {
		return m.fail("duplicate", fmt.Errorf("group %d: %w", id, err))
	}

	dup := &placement.Group{}
	if err := copier.CopyWithOption(dup, g, copier.Option{DeepCopy: true}); err != nil {
		return m.fail("duplicate", err)
	}

	settings := m.settings()
	dup.ID = settings.NextGroupID
	dup.Seed = m.seed()
	dup.Instances = nil
	dup.Collection = ""
	if settings.UseCollection {
		src, err := m.scene.Object(dup.Source)
		if err != nil {
			return m.fail("duplicate", err)
		}
		dup.Collection = fmt.Sprintf("%s%s_%d", CollectionPrefix, src.Name, dup.Seed)
		m.scene.NewCollection(dup.Collection)
	}
	settings.NextGroupID++
	settings.Groups = append(settings.Groups, dup)
	settings.ActiveGroup = dup.ID

	plan := &placement.Plan{GroupID: dup.ID}
	for i := 0; i < dup.NumInstances && i < len(points); i++ {
		pt := points[i]
		plan.Actions = append(plan.Actions, placement.Action{
			Kind:      placement.ActionCreate,
			Index:     i,
			Transform: scatter.NewTransform(pt.Point, pt.Normal, dup.Seed, i, dup.Config),
		})
	}
	if !dup.Visible {
		plan.Actions = append(plan.Actions, placement.Action{Kind: placement.ActionHideAll})
	}
	if err := m.apply(dup, plan); err != nil {
		return m.fail("duplicate", err)
	}

	// Fewer stored points than instances: let reconciliation fill the rest.
	if len(points) < dup.NumInstances {
		if err := m.update(dup, nil); err != nil {
			m.log.Warn("duplicate left incomplete", zap.Int("group", dup.ID), zap.Error(err))
		}
	}

	m.log.Info("duplicated group", zap.Int("from", id), zap.Int("group", dup.ID), zap.Int64("seed", dup.Seed))
	return okf("Duplicated group %d to new group %d with %d instances", id, dup.ID, len(dup.Instances))
}

// ToggleVisibility shows or hides every instance of a group.
func (m *Manager) ToggleVisibility(id int) Status {
	g, err := m.group(id)
	if err != nil {
		return m.fail("toggle", err)
	}
	if err := m.update(g, func(g *placement.Group) { g.Visible = !g.Visible }); err != nil {
		return m.fail("toggle", err)
	}

	state := "hidden"
	if g.Visible {
		state = "visible"
	}
	return okf("Group %d is now %s", id, state)
}

// RegenerateSeed gives a group a new seed and new points.
func (m *Manager) RegenerateSeed(id int) Status {
	g, err := m.group(id)
	if err != nil {
		return m.fail("regenerate", err)
	}
	seed := m.seed()
	err = m.update(g, func(g *placement.Group) {
		g.Seed = seed
		g.Points = ""
	})
	if err != nil {
		return m.fail("regenerate", err)
	}
	return okf("Group %d reseeded to %d", id, seed)
}

// Reapply reconciles the given groups, or all groups when none are named.
// A group that fails is skipped and reported.
func (m *Manager) Reapply(ids ...int) Status {
	groups := m.settings().Groups
	if len(ids) > 0 {
		groups = make([]*placement.Group, 0, len(ids))
		for _, id := range ids {
			g, err := m.group(id)
			if err != nil {
				return m.fail("reapply", err)
			}
			groups = append(groups, g)
		}
	}

	failed, errs := m.reconcileGroups(groups)
	if errs != nil {
		return Status{
			Message: fmt.Sprintf("Updated %d of %d groups: %v", len(groups)-failed, len(groups), errs),
			Err:     errs,
		}
	}
	return okf("Updated %d groups", len(groups))
}

// ReconcileAll reconciles every group, skipping those that fail.
func (m *Manager) ReconcileAll() error {
	_, errs := m.reconcileGroups(m.settings().Groups)
	return errs
}

func (m *Manager) reconcileGroups(groups []*placement.Group) (failed int, errs error) {
	for _, g := range groups {
		if err := m.update(g, nil); err != nil {
			m.log.Warn("skipping group", zap.Int("group", g.ID), zap.Error(err))
			errs = multierr.Append(errs, err)
			failed++
		}
	}
	return failed, errs
}
