package search

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	ErrInvalidConfiguration = errors.New("invalid search configuration")
	ErrWorkerPanic          = errors.New("search task panicked")
)

const (
	DefaultCutoffDepth     = 3
	DefaultMaxSpawnPerNode = 4
)

// Config is fixed for the lifetime of an Engine.
type Config struct {
	// Threads is the number of worker goroutines. Must be at least 1.
	Threads int
	// CutoffDepth is the deepest level at which a visited node may still
	// turn its children into tasks. Nodes at or below it are finished
	// sequentially by the worker that reached them.
	CutoffDepth int
	// MaxSpawnPerNode caps how many of a node's children become tasks. The
	// rest are searched in order by the same worker. Zero disables spawning.
	MaxSpawnPerNode int
}

func DefaultConfig() Config {
	return Config{
		Threads:         runtime.NumCPU(),
		CutoffDepth:     DefaultCutoffDepth,
		MaxSpawnPerNode: DefaultMaxSpawnPerNode,
	}
}

func (c Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalidConfiguration, c.Threads)
	}
	if c.CutoffDepth < 0 {
		return fmt.Errorf("%w: cutoff depth must not be negative, got %d", ErrInvalidConfiguration, c.CutoffDepth)
	}
	if c.MaxSpawnPerNode < 0 {
		return fmt.Errorf("%w: max spawn per node must not be negative, got %d", ErrInvalidConfiguration, c.MaxSpawnPerNode)
	}
	return nil
}

type options struct {
	onPhase func(Phase)
}

// Option modifies how an Engine reports on its runs.
type Option func(*options)

// WithPhaseHook registers fn to be called on every phase transition. fn runs
// on the goroutine that called Search and must not call back into the engine.
func WithPhaseHook(fn func(Phase)) Option {
	return func(o *options) { o.onPhase = fn }
}
