package ops

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/surfscatter/pkg/placement"
)

// Properties lists the group properties accepted by Set.
var Properties = []string{
	"num_instances",
	"seed",
	"align_to_normal",
	"max_rotation_x",
	"max_rotation_y",
	"max_rotation_z",
	"scale_min",
	"scale_max",
	"uniform_scale",
	"visible",
}

// Set changes one property of a group. Values outside the allowed range are
// clamped. With dynamic update enabled the group is reconciled right away;
// otherwise the change waits for the next reapply.
func (m *Manager) Set(id int, property, value string) Status {
	g, err := m.group(id)
	if err != nil {
		return m.fail("set", err)
	}
	mutate, err := parseProperty(property, value)
	if err != nil {
		return m.fail("set", err)
	}

	if !m.settings().DynamicUpdate {
		next := *g
		mutate(&next)
		next.Clamp()
		*g = next
		return okf("Set %s on group %d", property, id)
	}

	if err := m.update(g, mutate); err != nil {
		return m.fail("set", err)
	}
	m.log.Debug("property updated", zap.Int("group", id), zap.String("property", property), zap.String("value", value))
	return okf("Set %s on group %d", property, id)
}

// SetSetting changes a scene-wide setting: dynamic_update, use_collection
// or num_instances (the count given to new groups).
func (m *Manager) SetSetting(name, value string) Status {
	settings := m.settings()
	switch name {
	case "dynamic_update":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return m.fail("setting", fmt.Errorf("%s: %w", name, err))
		}
		settings.DynamicUpdate = v
	case "use_collection":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return m.fail("setting", fmt.Errorf("%s: %w", name, err))
		}
		settings.UseCollection = v
	case "num_instances":
		v, err := strconv.Atoi(value)
		if err != nil {
			return m.fail("setting", fmt.Errorf("%s: %w", name, err))
		}
		settings.NumInstances = max(placement.MinInstances, min(v, placement.MaxInstances))
	default:
		return m.fail("setting", fmt.Errorf("%q: %w", name, ErrUnknownProperty))
	}
	return okf("Set %s", name)
}

func parseProperty(property, value string) (func(*placement.Group), error) {
	wrap := func(err error) error { return fmt.Errorf("%s: %w", property, err) }

	switch property {
	case "num_instances", "seed":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, wrap(err)
		}
		if property == "seed" {
			return func(g *placement.Group) { g.Seed = v }, nil
		}
		return func(g *placement.Group) { g.NumInstances = int(v) }, nil

	case "align_to_normal", "uniform_scale", "visible":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, wrap(err)
		}
		switch property {
		case "align_to_normal":
			return func(g *placement.Group) { g.Config.AlignToNormal = v }, nil
		case "uniform_scale":
			return func(g *placement.Group) { g.Config.UniformScale = v }, nil
		default:
			return func(g *placement.Group) { g.Visible = v }, nil
		}

	case "max_rotation_x", "max_rotation_y", "max_rotation_z", "scale_min", "scale_max":
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, wrap(err)
		}
		v := float32(f)
		switch property {
		case "max_rotation_x":
			return func(g *placement.Group) { g.Config.MaxRotationX = v }, nil
		case "max_rotation_y":
			return func(g *placement.Group) { g.Config.MaxRotationY = v }, nil
		case "max_rotation_z":
			return func(g *placement.Group) { g.Config.MaxRotationZ = v }, nil
		case "scale_min":
			return func(g *placement.Group) { g.Config.ScaleMin = v }, nil
		default:
			return func(g *placement.Group) { g.Config.ScaleMax = v }, nil
		}
	}
	return nil, fmt.Errorf("%q: %w, want one of %s", property, ErrUnknownProperty, strings.Join(Properties, ", "))
}
