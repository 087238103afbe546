// Package config loads TOML run descriptions for the treesearch command.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/timewinder-dev/treesearch/search"
	"github.com/timewinder-dev/treesearch/tree"
)

// Tree kinds.
const (
	KindSample   = "sample"
	KindBalanced = "balanced"
	KindRandom   = "random"
	KindSkewed   = "skewed"
	KindScript   = "script"
	KindFile     = "file"
)

const DefaultSeed = 42

type Config struct {
	Search SearchConfig `toml:"search"`
	Tree   TreeConfig   `toml:"tree"`
	Run    RunConfig    `toml:"run"`
}

type SearchConfig struct {
	Threads         *int `toml:"threads,omitempty"`
	CutoffDepth     *int `toml:"cutoff_depth,omitempty"`
	MaxSpawnPerNode *int `toml:"max_spawn_per_node,omitempty"`
}

type TreeConfig struct {
	Kind        string `toml:"kind,omitempty"`
	Depth       int    `toml:"depth,omitempty"`
	Branching   int    `toml:"branching,omitempty"`
	Nodes       int    `toml:"nodes,omitempty"`
	MinChildren int    `toml:"min_children,omitempty"`
	MaxChildren int    `toml:"max_children,omitempty"`
	Seed        *int64 `toml:"seed,omitempty"`
	File        string `toml:"file,omitempty"`
}

type RunConfig struct {
	Targets  []int64 `toml:"targets,omitempty"`
	Parallel int     `toml:"parallel,omitempty"`
	Verify   bool    `toml:"verify,omitempty"`
}

// SampleTargets are searched when a config names no targets and uses the
// sample tree.
var SampleTargets = []int64{7, 11, 15, 1}

func parse(r io.Reader) (*Config, error) {
	var out Config
	if _, err := toml.NewDecoder(r).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Default is the configuration used when no file is given: the sample tree
// searched with the default engine settings.
func Default() *Config {
	return &Config{
		Tree: TreeConfig{Kind: KindSample},
		Run:  RunConfig{Targets: SampleTargets},
	}
}

// LoadFromFile reads a config. A relative tree.file is resolved against the
// directory holding the config.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if c.Tree.Kind == "" {
		c.Tree.Kind = KindSample
	}
	if c.Tree.File != "" && !filepath.IsAbs(c.Tree.File) {
		c.Tree.File = filepath.Clean(filepath.Join(filepath.Dir(path), c.Tree.File))
	}
	if len(c.Run.Targets) == 0 && c.Tree.Kind == KindSample {
		c.Run.Targets = SampleTargets
	}
	return c, nil
}

// EngineConfig returns the engine configuration, filling unset fields with
// defaults. Explicitly set values are passed through untouched so that the
// engine rejects bad ones.
func (c *Config) EngineConfig() search.Config {
	out := search.Config{
		Threads:         runtime.NumCPU(),
		CutoffDepth:     search.DefaultCutoffDepth,
		MaxSpawnPerNode: search.DefaultMaxSpawnPerNode,
	}
	if c.Search.Threads != nil {
		out.Threads = *c.Search.Threads
	}
	if c.Search.CutoffDepth != nil {
		out.CutoffDepth = *c.Search.CutoffDepth
	}
	if c.Search.MaxSpawnPerNode != nil {
		out.MaxSpawnPerNode = *c.Search.MaxSpawnPerNode
	}
	return out
}

func (t TreeConfig) seed() int64 {
	if t.Seed == nil {
		return DefaultSeed
	}
	return *t.Seed
}

// Build constructs the tree described by t.
func (t TreeConfig) Build() (*tree.Node[int64], error) {
	switch strings.ToLower(t.Kind) {
	case "", KindSample:
		return tree.Sample(), nil
	case KindBalanced:
		if t.Depth < 0 || t.Branching < 0 {
			return nil, fmt.Errorf("balanced tree needs non-negative depth and branching")
		}
		return tree.NewGenerator(t.seed()).Balanced(t.Depth, t.Branching), nil
	case KindRandom:
		if t.Nodes <= 0 {
			return nil, fmt.Errorf("random tree needs nodes > 0")
		}
		if t.MinChildren < 0 || t.MaxChildren < t.MinChildren {
			return nil, fmt.Errorf("random tree needs 0 <= min_children <= max_children")
		}
		return tree.NewGenerator(t.seed()).Random(t.Nodes, t.MinChildren, t.MaxChildren), nil
	case KindSkewed:
		if t.Depth < 0 {
			return nil, fmt.Errorf("skewed tree needs non-negative depth")
		}
		return tree.NewGenerator(t.seed()).Skewed(t.Depth), nil
	case KindScript:
		if t.File == "" {
			return nil, fmt.Errorf("script tree needs a file")
		}
		return tree.LoadScript(t.File, nil)
	case KindFile:
		if t.File == "" {
			return nil, fmt.Errorf("file tree needs a file")
		}
		return tree.ReadFile[int64](t.File)
	}
	return nil, fmt.Errorf("unknown tree kind %q", t.Kind)
}
