package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/stitch/internal/dataset"
	"github.com/dusk-indust/stitch/internal/orchestrator"
	"github.com/dusk-indust/stitch/internal/segment"
	"github.com/dusk-indust/stitch/internal/stitch"
)

// EnvPrefix marks environment variables that override the config file.
// A double underscore separates nested keys: STITCH_LOG__LEVEL sets
// log.level.
const EnvPrefix = "STITCH_"

// ProjectConfig holds project-level settings loaded from stitch.yml.
type ProjectConfig struct {
	Workers         int    `koanf:"workers"`
	Seed            uint64 `koanf:"seed"`
	GroupSize       int    `koanf:"group_size"`
	Pattern         string `koanf:"pattern"`
	DialogsPerImage int    `koanf:"dialogs_per_image"`
	ValImages       int    `koanf:"val_images"`
	MaxRejections   int    `koanf:"max_rejections"`
	Strict          bool   `koanf:"strict"`
	Markers         struct {
		Recall       string `koanf:"recall"`
		Simultaneous string `koanf:"simultaneous"`
	} `koanf:"markers"`
	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`
}

func defaults() map[string]interface{} {
	d := orchestrator.DefaultConfig()
	return map[string]interface{}{
		"workers":              d.Workers,
		"seed":                 d.Seed,
		"group_size":           d.GroupSize,
		"pattern":              string(d.Pattern),
		"dialogs_per_image":    d.DialogsPerImage,
		"val_images":           dataset.DefaultValImages,
		"max_rejections":       d.MaxRejections,
		"strict":               d.Strict,
		"markers.recall":       d.Markers.RecallMarker,
		"markers.simultaneous": d.Markers.SimultaneousMarker,
		"log.level":            "info",
		"log.format":           "console",
	}
}

// Load reads stitch.yml or stitch.yaml from the given directory on top of
// the built-in defaults, then applies STITCH_* environment overrides. A
// missing config file is not an error.
func Load(dir string) (*ProjectConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	for _, name := range []string{"stitch.yml", "stitch.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := k.Load(confmap.Provider(doc, "."), nil); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
		break
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg ProjectConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Orchestrator converts the project settings into a run configuration.
// Count is left for the caller.
func (c *ProjectConfig) Orchestrator() orchestrator.Config {
	return orchestrator.Config{
		Workers:         c.Workers,
		GroupSize:       c.GroupSize,
		Pattern:         stitch.Pattern(strings.ToUpper(c.Pattern)),
		Seed:            c.Seed,
		MaxRejections:   c.MaxRejections,
		DialogsPerImage: c.DialogsPerImage,
		Markers:         c.SegmentOptions(),
		Strict:          c.Strict,
	}
}

// SegmentOptions returns the configured recall markers.
func (c *ProjectConfig) SegmentOptions() segment.Options {
	return segment.Options{
		RecallMarker:       c.Markers.Recall,
		SimultaneousMarker: c.Markers.Simultaneous,
	}
}
