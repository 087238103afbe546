package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/treesearch/config"
	"github.com/timewinder-dev/treesearch/search"
	"github.com/timewinder-dev/treesearch/tree"
)

var (
	threadsFlag  int
	cutoffFlag   int
	spawnFlag    int
	targetsFlag  []int64
	parallelFlag int
	verifyFlag   bool
)

var runCmd = &cobra.Command{
	Use:   "run [CONFIG]",
	Short: "Search a tree for each configured target",
	Long:  "Search a tree for each configured target. Without CONFIG the built-in sample tree is searched.",
	Args:  cobra.MaximumNArgs(1),
	Run:   runCommand,
}

func init() {
	runCmd.Flags().IntVar(&threadsFlag, "threads", 0, "Override the number of worker threads")
	runCmd.Flags().IntVar(&cutoffFlag, "cutoff-depth", -1, "Override the depth beyond which no tasks are spawned")
	runCmd.Flags().IntVar(&spawnFlag, "max-spawn", -1, "Override the number of children turned into tasks per node")
	runCmd.Flags().Int64SliceVar(&targetsFlag, "target", nil, "Target value to search for (repeatable)")
	runCmd.Flags().IntVar(&parallelFlag, "parallel", 0, "Number of searches to run at the same time")
	runCmd.Flags().BoolVar(&verifyFlag, "verify", false, "Check every result against a sequential depth-first search")
}

func loadConfig(args []string) *config.Config {
	if len(args) == 0 {
		return config.Default()
	}
	cfg, err := config.LoadFromFile(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't load config")
	}
	return cfg
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("threads") {
		cfg.Search.Threads = &threadsFlag
	}
	if cmd.Flags().Changed("cutoff-depth") {
		cfg.Search.CutoffDepth = &cutoffFlag
	}
	if cmd.Flags().Changed("max-spawn") {
		cfg.Search.MaxSpawnPerNode = &spawnFlag
	}
	if len(targetsFlag) > 0 {
		cfg.Run.Targets = targetsFlag
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Run.Parallel = parallelFlag
	}
	if verifyFlag {
		cfg.Run.Verify = true
	}
}

func runCommand(cmd *cobra.Command, args []string) {
	cfg := loadConfig(args)
	applyOverrides(cmd, cfg)

	root, err := cfg.Tree.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't build tree")
	}
	fp, err := tree.Fingerprint(root)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't fingerprint tree")
	}
	total := tree.Count(root)
	engineCfg := cfg.EngineConfig()
	log.Info().
		Str("kind", cfg.Tree.Kind).
		Int("nodes", total).
		Int("depth", tree.Depth(root)).
		Str("fingerprint", fmt.Sprintf("%016x", fp)).
		Int("threads", engineCfg.Threads).
		Int("cutoff_depth", engineCfg.CutoffDepth).
		Int("max_spawn_per_node", engineCfg.MaxSpawnPerNode).
		Msg("Tree ready")

	if len(cfg.Run.Targets) == 0 {
		log.Fatal().Msg("No targets to search for")
	}

	fmt.Fprintln(os.Stderr, color.Cyan.Sprint("Searching..."))
	results, err := search.SearchAll(context.Background(), engineCfg, root, cfg.Run.Targets, cfg.Run.Parallel)
	if err != nil {
		log.Fatal().Err(err).Msg("Search failed")
	}

	mismatches := 0
	for i, res := range results {
		target := cfg.Run.Targets[i]
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, search.FormatResult(target, res))
		if cfg.Run.Verify {
			if err := verify(root, total, target, res); err != nil {
				mismatches++
				fmt.Fprintln(os.Stderr, color.Red.Sprintf("✗ %s", err))
			} else {
				fmt.Fprintln(os.Stderr, color.Green.Sprint("✓ matches sequential search"))
			}
		}
	}
	fmt.Fprint(os.Stderr, search.FormatSummary(results))

	if mismatches > 0 {
		log.Fatal().Int("mismatches", mismatches).Msg("Verification failed")
	}
}

// verify checks a parallel result against the sequential oracle: found iff
// the oracle found something, and a miss must have visited every node.
func verify(root *tree.Node[int64], total int, target int64, res *search.Result[int64]) error {
	want := tree.DFS(root, target)
	switch {
	case want.Found() != res.Found():
		return fmt.Errorf("found=%v but sequential search found=%v", res.Found(), want.Found())
	case res.Found() && res.Node.Value != target:
		return fmt.Errorf("returned node %d does not hold %d", res.Node.Value, target)
	case !res.Found() && res.Visited != int64(total):
		return fmt.Errorf("visited %d of %d nodes without finding %d", res.Visited, total, target)
	}
	return nil
}
