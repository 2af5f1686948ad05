package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	lnrpc "github.com/hanpama/lngraph/internal/lnrpc"
	resolvers "github.com/hanpama/lngraph/internal/resolvers"
	schema "github.com/hanpama/lngraph/internal/schema"
)

func (a *app) schemaCmd() *cobra.Command {
	var out string
	var builtins bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema as SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sch, err := schema.BuildFromSDL(resolvers.SDL())
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}
			sdl := schema.Render(sch)
			if builtins {
				sdl = schema.RenderAll(sch)
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				_, err := io.WriteString(w, sdl)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&builtins, "builtins", false, "include built-in scalars, directives and introspection types")
	return cmd
}

func (a *app) protoCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "proto",
		Short: "Print the lnrpc service definition the gateway speaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeOutput(cmd, out, lnrpc.Render)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lngraph %s\ncommit: %s\nbuilt:  %s\n", version, commit, date)
		},
	}
}

func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
