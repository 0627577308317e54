package cmd

import (
	"log/slog"

	"github.com/cottand/nomtype/internal/log"
	"github.com/cottand/nomtype/tyerr"
	"github.com/cottand/nomtype/typeexpr"
	"github.com/cottand/nomtype/types"
	"github.com/cottand/nomtype/universe"
	"github.com/spf13/cobra"
)

var logger = log.DefaultLogger.With("section", "cli")

type envFlags struct {
	universePath *string
	logLevel     *int
	maxSteps     *int
	exhaustive   *bool
	debugErrors  *bool
}

func addEnvFlags(c *cobra.Command) *envFlags {
	return &envFlags{
		universePath: c.Flags().StringP("universe", "u", "", "YAML file with extra declarations"),
		logLevel:     c.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level"),
		maxSteps:     c.Flags().Int("max-steps", types.DefaultMaxSteps, "maximum inference steps"),
		exhaustive:   c.Flags().Bool("exhaustive", false, "explore every inference branch"),
		debugErrors:  c.Flags().Bool("debug-errors", false, "print where type errors were created"),
	}
}

// load returns the builtin declarations, plus those of --universe if set
func (f *envFlags) load() (*universe.Registry, *types.Env, error) {
	log.SetLevel(slog.Level(*f.logLevel))
	tyerr.EnableDebugPrinting(*f.debugErrors)

	registry := universe.Builtins()
	if *f.universePath != "" {
		if err := registry.LoadFile(*f.universePath); err != nil {
			return nil, nil, err
		}
		logger.Info("loaded universe", "path", *f.universePath, "decls", len(registry.Decls()))
	}
	env := types.NewEnv(registry,
		types.WithMaxSteps(*f.maxSteps),
		types.WithExhaustive(*f.exhaustive),
	)
	return registry, env, nil
}

func parseAll(r typeexpr.Resolver, exprs ...string) ([]types.Type, error) {
	parsed := make([]types.Type, len(exprs))
	for i, expr := range exprs {
		t, err := typeexpr.Parse(expr, r)
		if err != nil {
			return nil, err
		}
		parsed[i] = t
	}
	return parsed, nil
}
