// Package cli wires the curator commands.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Global flags shared by all commands.
var (
	rootDir string
	verbose bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "curator",
	Version: Version,
	Short:   "Story review and skill tagging for educational reading content",
	Long: `Curator reviews a collection of children's stories against a fixed
content-safety rubric and tags each story with the reading skills it
exercises. Every story is evaluated per rubric category in parallel, the
findings are merged by severity, and the results land as reviewable
evidence spans over the story's sentences.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project directory containing curator.yaml")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
