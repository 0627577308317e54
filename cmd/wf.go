package cmd

import (
	"fmt"

	"github.com/cottand/nomtype/tyerr"
	"github.com/spf13/cobra"
)

var WellFormedCmd = &cobra.Command{
	Use:          "wf TYPE",
	Short:        "Check that TYPE respects the arity and bounds of its declarations",
	RunE:         runWellFormed,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var wfFlags *envFlags

func init() {
	wfFlags = addEnvFlags(WellFormedCmd)
}

func runWellFormed(cmd *cobra.Command, args []string) error {
	registry, env, err := wfFlags.load()
	if err != nil {
		return err
	}
	parsed, err := parseAll(registry, args[0])
	if err != nil {
		return err
	}
	if err := env.AssertWellFormed(parsed[0]); err != nil {
		if typeErr, ok := err.(tyerr.TypeError); ok {
			return fmt.Errorf("%s", tyerr.FormatWithCode(typeErr))
		}
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is well formed\n", parsed[0])
	return nil
}
