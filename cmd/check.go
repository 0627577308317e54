package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check A B",
	Short:        "Check whether type A is a subtype of type B",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
}

var checkFlags *envFlags

func init() {
	checkFlags = addEnvFlags(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	registry, env, err := checkFlags.load()
	if err != nil {
		return err
	}
	parsed, err := parseAll(registry, args...)
	if err != nil {
		return err
	}
	a, b := parsed[0], parsed[1]

	sub, err := env.IsSubtype(a, b)
	if err != nil {
		return err
	}
	super, err := env.IsSubtype(b, a)
	if err != nil {
		return err
	}
	equivalent, err := env.IsEquivalent(a, b)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s <: %s: %t\n", a, b, sub)
	_, _ = fmt.Fprintf(out, "%s <: %s: %t\n", b, a, super)
	_, _ = fmt.Fprintf(out, "equivalent: %t\n", equivalent)
	return nil
}
