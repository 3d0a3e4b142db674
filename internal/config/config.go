// Package config handles scatter tool configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/surfscatter/pkg/scatter"
)

// Config holds all tool settings.
type Config struct {
	Scene    SceneConfig    `yaml:"scene"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SceneConfig holds the scene file location.
type SceneConfig struct {
	Path string `yaml:"path"`
}

// DefaultsConfig holds the settings given to new scenes and new groups.
type DefaultsConfig struct {
	NumInstances  int     `yaml:"num_instances"`
	AlignToNormal bool    `yaml:"align_to_normal"`
	MaxRotationX  float32 `yaml:"max_rotation_x"`
	MaxRotationY  float32 `yaml:"max_rotation_y"`
	MaxRotationZ  float32 `yaml:"max_rotation_z"`
	ScaleMin      float32 `yaml:"scale_min"`
	ScaleMax      float32 `yaml:"scale_max"`
	UniformScale  bool    `yaml:"uniform_scale"`
	UseCollection bool    `yaml:"use_collection"`
	DynamicUpdate bool    `yaml:"dynamic_update"`
}

// Group returns the rotation and scale rules for new groups.
func (d DefaultsConfig) Group() scatter.Config {
	return scatter.Config{
		AlignToNormal: d.AlignToNormal,
		MaxRotationX:  d.MaxRotationX,
		MaxRotationY:  d.MaxRotationY,
		MaxRotationZ:  d.MaxRotationZ,
		ScaleMin:      d.ScaleMin,
		ScaleMax:      d.ScaleMax,
		UniformScale:  d.UniformScale,
	}
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			Path: "scene.yaml",
		},
		Defaults: DefaultsConfig{
			NumInstances:  10,
			AlignToNormal: true,
			MaxRotationX:  360,
			MaxRotationY:  360,
			MaxRotationZ:  360,
			ScaleMin:      0.8,
			ScaleMax:      1.2,
			UniformScale:  true,
			UseCollection: false,
			DynamicUpdate: false,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
