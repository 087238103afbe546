package search

import (
	"context"
	"fmt"

	"github.com/timewinder-dev/treesearch/tree"
	"golang.org/x/sync/errgroup"
)

// SearchAll looks up every target in the same tree, each on its own Engine,
// running at most parallel searches at a time (unbounded when parallel <= 0).
// results[i] corresponds to targets[i]. The first error cancels searches
// that have not started yet.
func SearchAll[T comparable](ctx context.Context, cfg Config, root *tree.Node[T], targets []T, parallel int) ([]*Result[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	results := make([]*Result[T], len(targets))
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := New[T](cfg)
			if err != nil {
				return err
			}
			defer e.Close()
			res, err := e.Search(root, target)
			if err != nil {
				return fmt.Errorf("searching for %v: %w", target, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
