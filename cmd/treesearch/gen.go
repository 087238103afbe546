package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/treesearch/tree"
)

var outputFlag string

var genCmd = &cobra.Command{
	Use:   "gen CONFIG",
	Short: "Build the configured tree and write it as msgpack",
	Args:  cobra.ExactArgs(1),
	Run:   genCommand,
}

func init() {
	genCmd.Flags().StringVarP(&outputFlag, "output", "o", "tree.msgpack", "File to write the encoded tree to")
}

func genCommand(cmd *cobra.Command, args []string) {
	cfg := loadConfig(args)
	root, err := cfg.Tree.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't build tree")
	}
	if err := tree.WriteFile(outputFlag, root); err != nil {
		log.Fatal().Err(err).Str("output", outputFlag).Msg("Couldn't write tree")
	}
	fp, err := tree.Fingerprint(root)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't fingerprint tree")
	}
	fmt.Printf("%s %d nodes %016x\n", outputFlag, tree.Count(root), fp)
}
