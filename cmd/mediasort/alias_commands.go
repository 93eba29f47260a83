package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediasort/internal/pipeline"
)

func newAliasCommand(ctx *commandContext) *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:   "alias",
		Short: "Inspect and edit the performer alias store",
	}
	aliasCmd.AddCommand(newAliasListCommand(ctx))
	aliasCmd.AddCommand(newAliasResolveCommand(ctx))
	aliasCmd.AddCommand(newAliasAddCommand(ctx))
	aliasCmd.AddCommand(newAliasRemoveCommand(ctx))
	return aliasCmd
}

func newAliasListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List performer directories and their aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := pipeline.NewAliasStore(cfg, ctx.log()).List()
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Alias store is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Dir, fmt.Sprintf("%d", len(e.Aliases)), strings.Join(e.Aliases, ", ")})
			}
			fmt.Fprintln(out, renderTable([]string{"Directory", "Count", "Aliases"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as JSON")
	return cmd
}

func newAliasResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name> [more names...]",
		Short: "Resolve performer names to a directory, searching and recording aliases when unknown",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *pipeline.Runtime) error {
				dir, usage, err := rt.Performers.Resolve(cmd.Context(), args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, dir)
				if !usage.IsZero() {
					fmt.Fprintln(cmd.ErrOrStderr(), usageSummary(usage))
				}
				return nil
			})
		},
	}
}

func newAliasAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <directory> [aliases...]",
		Short: "Record aliases for a performer directory",
		Long:  "Record aliases. When any name is already known the aliases join that directory instead.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := pipeline.NewAliasStore(cfg, ctx.log()).Merge(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Aliases recorded under %s\n", dir)
			return nil
		},
	}
}

func newAliasRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <directory>",
		Short: "Delete a performer directory entry and its aliases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := pipeline.NewAliasStore(cfg, ctx.log()).Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}
