package cmd

import (
	"fmt"

	"github.com/cottand/nomtype/tyerr"
	"github.com/cottand/nomtype/types"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

var InferCmd = &cobra.Command{
	Use:          "infer TARGET DECL",
	Short:        "Infer the type arguments of DECL so that it is a subtype of TARGET",
	RunE:         runInfer,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
}

var (
	inferFlags *envFlags
	inferDump  *bool
)

func init() {
	inferFlags = addEnvFlags(InferCmd)
	inferDump = InferCmd.Flags().Bool("dump", false, "print the whole inference record")
}

func runInfer(cmd *cobra.Command, args []string) error {
	registry, env, err := inferFlags.load()
	if err != nil {
		return err
	}
	parsed, err := parseAll(registry, args[0])
	if err != nil {
		return err
	}
	decl := types.DeclID(args[1])
	if !registry.Has(decl) {
		return fmt.Errorf("unknown declaration %s", decl)
	}

	inference, err := env.Infer(parsed[0], decl)
	if err != nil {
		if typeErr, ok := err.(tyerr.TypeError); ok {
			return fmt.Errorf("inference failed: %s", tyerr.FormatWithCode(typeErr))
		}
		return err
	}

	out := cmd.OutOrStdout()
	if *inferDump {
		_, _ = pretty.Fprintf(out, "%# v\n", inference)
		return nil
	}
	_, _ = fmt.Fprintln(out, inference.Result)
	if !inference.Unique {
		_, _ = fmt.Fprintln(out, "(other solutions may exist)")
	}
	return nil
}
