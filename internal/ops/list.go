package ops

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/surfscatter/internal/scene"
)

// MissingName is shown for objects that no longer exist.
const MissingName = "<Missing>"

// GroupInfo summarises a group for listing.
type GroupInfo struct {
	ID        int
	Source    string
	Target    string
	Instances int
	Live      int
	Seed      int64
	Visible   bool
	Active    bool
}

// Groups describes every group in creation order.
func (m *Manager) Groups() []GroupInfo {
	settings := m.settings()
	out := make([]GroupInfo, 0, len(settings.Groups))
	for _, g := range settings.Groups {
		out = append(out, GroupInfo{
			ID:        g.ID,
			Source:    m.objectName(g.Source),
			Target:    m.objectName(g.Target),
			Instances: g.NumInstances,
			Live:      len(m.liveInstances(g)),
			Seed:      g.Seed,
			Visible:   g.Visible,
			Active:    g.ID == settings.ActiveGroup,
		})
	}
	return out
}

func (m *Manager) objectName(id string) string {
	o, err := m.scene.Object(id)
	if err != nil {
		return MissingName
	}
	return o.Name
}

func (g GroupInfo) String() string {
	vis := "visible"
	if !g.Visible {
		vis = "hidden"
	}
	mark := " "
	if g.Active {
		mark = "*"
	}
	return fmt.Sprintf("%s %3d  %-20s -> %-20s %4d/%-4d seed=%-7d %s",
		mark, g.ID, g.Source, g.Target, g.Live, g.Instances, g.Seed, vis)
}

// SyncFile loads the scene at path, reconciles every group and writes the
// scene back if anything changed. Groups that fail are logged and skipped.
func SyncFile(path string, opts ...Option) (bool, error) {
	before, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	s, err := scene.Load(path)
	if err != nil {
		return false, err
	}

	m := New(s, opts...)
	if err := m.ReconcileAll(); err != nil {
		m.log.Warn("some groups were not updated", zap.Error(err))
	}

	after, err := s.Marshal()
	if err != nil {
		return false, err
	}
	if bytes.Equal(before, after) {
		return false, nil
	}
	if err := s.Save(); err != nil {
		return false, err
	}
	m.log.Info("scene updated", zap.String("path", path))
	return true, nil
}
