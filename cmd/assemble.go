package cmd

import (
	"github.com/alexiswl/gridss/internal/breakend"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// assembleCmd is for assembling breakend contigs from a file of evidence
var assembleCmd = &cobra.Command{
	Use:                        "assemble [evidence.jsonl]",
	Short:                      "Assemble breakend contigs from directed evidence",
	RunE:                       breakend.AssembleCmd,
	Args:                       cobra.MaximumNArgs(1),
	SuggestionsMinimumDistance: 3,
	SilenceUsage:               true,
	Long: `Assemble breakend contigs from soft clip, split read and discordant pair evidence.

Evidence is read as JSON lines, one read per line, from the file given or stdin:

  {"id":"r1","reference":0,"direction":"f","bases":"ACGT...","anchorBases":40,"position":10000}
  {"id":"r2","reference":0,"direction":"f","bases":"ACGT...","mate":{"min":9800,"max":10400}}

Each reference sequence and breakend direction is assembled independently.
Calls are written as JSON lines ordered by reference, direction and position.`,
	Aliases: []string{"asm"},
}

// set flags
func init() {
	// Flags for specifying the paths to the input file, reference dictionary and output file
	assembleCmd.Flags().StringP("out", "o", "", "output file name (default stdout)")
	assembleCmd.Flags().StringP("bam", "b", "", "BAM whose header names the reference sequences")
	assembleCmd.Flags().BoolP("progress", "p", false, "whether to show a progress bar")
	assembleCmd.Flags().BoolP("verbose", "v", false, "whether to log debug messages")

	// Flags that override settings file fields
	assembleCmd.Flags().StringP("settings", "s", "", "settings file (YAML)")
	assembleCmd.Flags().IntP("kmer", "k", 25, "k-mer length")
	assembleCmd.Flags().Int("mismatches", 2, "base mismatches allowed when collapsing paths (0 disables collapse)")
	assembleCmd.Flags().Bool("bubbles-only", true, "only collapse paths that rejoin")
	assembleCmd.Flags().Int("fragment-size", 600, "maximum concordant fragment size")
	assembleCmd.Flags().String("visualise", "", "directory to export subgraphs that exceed the maximum width to")
	assembleCmd.Flags().Bool("validate", false, "check graph consistency after every read (slow)")
	assembleCmd.Flags().Bool("metrics", false, "print assembly metrics to stderr once done")

	viper.BindPFlag("settings", assembleCmd.Flags().Lookup("settings"))
	viper.BindPFlag("assembly.k", assembleCmd.Flags().Lookup("kmer"))
	viper.BindPFlag("assembly.max-base-mismatch-for-collapse", assembleCmd.Flags().Lookup("mismatches"))
	viper.BindPFlag("assembly.collapse-bubbles-only", assembleCmd.Flags().Lookup("bubbles-only"))
	viper.BindPFlag("assembly.validate", assembleCmd.Flags().Lookup("validate"))
	viper.BindPFlag("evidence.max-concordant-fragment-size", assembleCmd.Flags().Lookup("fragment-size"))
	viper.BindPFlag("visualisation.directory", assembleCmd.Flags().Lookup("visualise"))
	viper.BindPFlag("metrics.enabled", assembleCmd.Flags().Lookup("metrics"))

	RootCmd.AddCommand(assembleCmd)
}
