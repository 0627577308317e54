//go:build !(js || wasm)

package main

import (
	"os"

	"github.com/cottand/nomtype/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "nomtype [subcommand]",
	Short:        "nomtype\n subtyping and diamond inference over nominal generic types",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.InferCmd)
	rootCmd.AddCommand(cmd.WellFormedCmd)
	rootCmd.AddCommand(cmd.AncestorsCmd)
}
