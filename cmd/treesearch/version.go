package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of treesearch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("treesearch version 1.0.0")
	},
}
