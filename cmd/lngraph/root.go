package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "lngraph",
		Short: "GraphQL gateway for an lnd node",
		Long: `lngraph exposes the Lightning gRPC API of an lnd node as a GraphQL
schema: queries and mutations map to unary calls, and subscriptions are
backed by lnd's streaming calls.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(a.verbose)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./lngraph.yaml or $HOME/.lngraph/lngraph.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.serveCmd(), a.schemaCmd(), a.protoCmd(), a.versionCmd())
	return root
}

// setupLogging configures the global zerolog logger. Output is human readable
// unless LNGRAPH_ENV=production.
func setupLogging(verbose bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if os.Getenv("LNGRAPH_ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// applyLogLevel applies log.level from the config unless --verbose is set.
func applyLogLevel(level string, verbose bool) error {
	if verbose || level == "" {
		return nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	zerolog.SetGlobalLevel(l)
	return nil
}
