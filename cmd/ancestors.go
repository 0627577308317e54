package cmd

import (
	"fmt"

	"github.com/cottand/nomtype/types"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var AncestorsCmd = &cobra.Command{
	Use:          "ancestors DECL",
	Short:        "List every supertype declaration of DECL",
	RunE:         runAncestors,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var ancestorsFlags *envFlags

func init() {
	ancestorsFlags = addEnvFlags(AncestorsCmd)
}

func runAncestors(cmd *cobra.Command, args []string) error {
	registry, env, err := ancestorsFlags.load()
	if err != nil {
		return err
	}
	decl := types.DeclID(args[0])
	ancestors, err := registry.Ancestors(decl)
	if err != nil {
		return err
	}
	params, err := env.Params(decl)
	if err != nil {
		return err
	}
	declared := types.NewNominal(decl, lo.Map(params, func(p *types.DeclaredVar, _ int) types.TypeArg { return p })...)

	out := cmd.OutOrStdout()
	for _, ancestor := range ancestors {
		at, err := env.SupertypeAt(declared, ancestor)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, at)
	}
	return nil
}
