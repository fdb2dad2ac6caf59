// Package cmd is for command line interactions with the breakend assembler
package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "gridss",
	Short: "Assemble structural variant breakends from soft clipped and discordant reads",
	Long: `Assemble structural variant breakends with a positional de Bruijn graph.

Evidence supporting a breakend is streamed in genomic order into a k-mer graph
that is assembled, and evicted, as the position passes each connected subgraph.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
