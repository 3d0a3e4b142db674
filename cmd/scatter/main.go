// scatter places linked duplicates of an object across the surface of a mesh
// in a YAML scene file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/surfscatter/internal/config"
	"github.com/Faultbox/surfscatter/internal/logger"
	"github.com/Faultbox/surfscatter/internal/ops"
	"github.com/Faultbox/surfscatter/internal/scene"
	"github.com/Faultbox/surfscatter/internal/watch"
	"github.com/Faultbox/surfscatter/pkg/mesh"
)

// command is a subcommand operating on the loaded scene.
type command struct {
	usage    string
	args     int
	readOnly bool
	run      func(m *ops.Manager, args []string) (ops.Status, error)
}

var commands = map[string]command{
	"scatter": {
		usage: "scatter <source> <target>",
		args:  2,
		run: func(m *ops.Manager, args []string) (ops.Status, error) {
			return m.Scatter(args[0], args[1]), nil
		},
	},
	"list": {
		usage:    "list",
		readOnly: true,
		run:      cmdList,
	},
	"clear": {
		usage: "clear",
		run: func(m *ops.Manager, _ []string) (ops.Status, error) {
			return m.ClearAll(), nil
		},
	},
	"remove":     groupCommand("remove <group>", (*ops.Manager).RemoveGroup),
	"duplicate":  groupCommand("duplicate <group>", (*ops.Manager).DuplicateGroup),
	"toggle":     groupCommand("toggle <group>", (*ops.Manager).ToggleVisibility),
	"regenerate": groupCommand("regenerate <group>", (*ops.Manager).RegenerateSeed),
	"reapply": {
		usage: "reapply [group...]",
		run: func(m *ops.Manager, args []string) (ops.Status, error) {
			ids := make([]int, 0, len(args))
			for _, a := range args {
				id, err := strconv.Atoi(a)
				if err != nil {
					return ops.Status{}, fmt.Errorf("invalid group id %q", a)
				}
				ids = append(ids, id)
			}
			return m.Reapply(ids...), nil
		},
	},
	"set": {
		usage: "set <group> <property> <value>",
		args:  3,
		run: func(m *ops.Manager, args []string) (ops.Status, error) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return ops.Status{}, fmt.Errorf("invalid group id %q", args[0])
			}
			return m.Set(id, args[1], args[2]), nil
		},
	},
	"setting": {
		usage: "setting <name> <value>",
		args:  2,
		run: func(m *ops.Manager, args []string) (ops.Status, error) {
			return m.SetSetting(args[0], args[1]), nil
		},
	},
	"add": {
		usage: "add <name> <plane|cube|file.obj> [size]",
		args:  2,
		run:   cmdAdd,
	},
	"export": {
		usage:    "export <object> <out.obj>",
		args:     2,
		readOnly: true,
		run:      cmdExport,
	},
}

func groupCommand(usage string, action func(*ops.Manager, int) ops.Status) command {
	return command{
		usage: usage,
		args:  1,
		run: func(m *ops.Manager, args []string) (ops.Status, error) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return ops.Status{}, fmt.Errorf("invalid group id %q", args[0])
			}
			return action(m, id), nil
		},
	}
}

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile, os.Stderr)
	code := run(cfg, log, args[0], args[1:])
	logger.Sync(log)
	os.Exit(code)
}

func run(cfg *config.Config, log *zap.Logger, name string, args []string) int {
	switch name {
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "init-config":
		return cmdInitConfig(cfg, args)
	case "watch":
		return cmdWatch(cfg, log)
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		printUsage()
		return 1
	}
	if len(args) < cmd.args {
		fmt.Fprintf(os.Stderr, "Usage: scatter %s\n", cmd.usage)
		return 1
	}

	s, err := openScene(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	m := ops.New(s, managerOptions(cfg, log)...)

	status, err := cmd.run(m, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nUsage: scatter %s\n", err, cmd.usage)
		return 1
	}
	if !cmd.readOnly {
		if err := s.SaveTo(cfg.Scene.Path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: saving scene: %v\n", err)
			return 1
		}
	}

	fmt.Println(status)
	if !status.OK {
		return 1
	}
	return 0
}

func managerOptions(cfg *config.Config, log *zap.Logger) []ops.Option {
	return []ops.Option{
		ops.WithLogger(log),
		ops.WithDefaults(cfg.Defaults.Group()),
	}
}

// openScene loads the configured scene, or starts a new one from the
// configured defaults when the file does not exist yet.
func openScene(cfg *config.Config) (*scene.Scene, error) {
	s, err := scene.Load(cfg.Scene.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s = scene.New()
		s.SetPath(cfg.Scene.Path)
		s.Placement.NumInstances = cfg.Defaults.NumInstances
		s.Placement.UseCollection = cfg.Defaults.UseCollection
		s.Placement.DynamicUpdate = cfg.Defaults.DynamicUpdate
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if n := config.CountFlag(); n > 0 {
		s.Placement.NumInstances = n
	}
	return s, nil
}

func printUsage() {
	fmt.Println(`scatter - place linked duplicates across mesh surfaces

Usage:
  scatter [flags] <command> [args]

Flags:
  -config <file>   Config file (default ./scatter.yaml)
  -scene <file>    Scene file (default scene.yaml)
  -count <n>       Instances for new groups
  -debug           Enable debug logging

Commands:
  add <name> <plane|cube|file.obj> [size]   Add a mesh object
  scatter <source> <target>                 Scatter source over target
  list                                      List placement groups
  set <group> <property> <value>            Change a group property
  setting <name> <value>                    Change a scene setting
  toggle <group>                            Show or hide a group
  regenerate <group>                        New seed and points for a group
  duplicate <group>                         Copy a group with a new seed
  reapply [group...]                        Reconcile groups with the scene
  remove <group>                            Delete a group and its instances
  clear                                     Delete every group
  export <object> <out.obj>                 Write an object's world mesh
  watch                                     Reconcile whenever the scene changes
  init-config [file|-user]                  Write the default config

Group properties:
  num_instances seed align_to_normal max_rotation_x max_rotation_y
  max_rotation_z scale_min scale_max uniform_scale visible

Examples:
  scatter add Ground plane 20
  scatter add Rock rock.obj
  scatter -count 200 scatter Rock Ground
  scatter set 1 max_rotation_z 45`)
}

func cmdList(m *ops.Manager, _ []string) (ops.Status, error) {
	groups := m.Groups()
	for _, g := range groups {
		fmt.Println(g)
	}
	return ops.Status{OK: true, Message: fmt.Sprintf("%d groups", len(groups))}, nil
}

func cmdAdd(m *ops.Manager, args []string) (ops.Status, error) {
	name, kind := args[0], args[1]
	src := &scene.MeshSource{}

	switch kind {
	case "plane", "cube":
		src.Primitive = kind
		if len(args) > 2 {
			size, err := strconv.ParseFloat(args[2], 32)
			if err != nil {
				return ops.Status{}, fmt.Errorf("invalid size %q", args[2])
			}
			src.Size = float32(size)
		}
	default:
		if _, err := mesh.LoadOBJ(kind); err != nil {
			return ops.Status{Message: err.Error(), Err: err}, nil
		}
		src.File = relativeToScene(m.Scene(), kind)
	}

	o := m.Scene().AddObject(&scene.Object{Name: name, Mesh: src})
	return ops.Status{OK: true, Message: fmt.Sprintf("Added %s (%s)", o.Name, o.ID)}, nil
}

// relativeToScene rewrites path relative to the scene directory when it can.
func relativeToScene(s *scene.Scene, path string) string {
	absDir, err1 := filepath.Abs(filepath.Dir(s.Path()))
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return path
	}
	if rel, err := filepath.Rel(absDir, absPath); err == nil {
		return rel
	}
	return absPath
}

func cmdExport(m *ops.Manager, args []string) (ops.Status, error) {
	o, err := m.Scene().Object(args[0])
	if err != nil {
		return ops.Status{Message: err.Error(), Err: err}, nil
	}
	world, err := m.Scene().WorldMesh(o.ID)
	if err != nil {
		return ops.Status{Message: err.Error(), Err: err}, nil
	}

	f, err := os.Create(args[1])
	if err != nil {
		return ops.Status{Message: err.Error(), Err: err}, nil
	}
	defer f.Close()
	if err := mesh.WriteOBJ(f, world); err != nil {
		return ops.Status{Message: err.Error(), Err: err}, nil
	}
	return ops.Status{OK: true, Message: fmt.Sprintf("Wrote %d faces to %s", len(world.Faces), args[1])}, nil
}

func cmdInitConfig(cfg *config.Config, args []string) int {
	path := "scatter.yaml"
	switch {
	case len(args) > 0 && args[0] == "-user":
		path = config.UserConfigPath()
	case len(args) > 0:
		path = args[0]
	}
	if err := cfg.SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote %s\n", path)
	return 0
}

func cmdWatch(cfg *config.Config, log *zap.Logger) int {
	path := cfg.Scene.Path
	opts := managerOptions(cfg, log)
	sync := func() error {
		_, err := ops.SyncFile(path, opts...)
		return err
	}
	if err := sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watch.Watcher{
		Path:     path,
		Debounce: cfg.Watch.Debounce,
		OnChange: sync,
		Log:      log,
	}
	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
