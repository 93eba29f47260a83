package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediasort/internal/history"
	"mediasort/internal/media"
	"mediasort/internal/pipeline"
	"mediasort/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect journaled planning runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func withJournal(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	journal, err := pipeline.OpenHistory(cfg)
	if err != nil {
		return err
	}
	if journal == nil {
		return services.Wrap(services.ErrConfiguration, "cli", "history", "history is disabled in the configuration", nil)
	}
	defer journal.Close()
	return fn(journal)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(journal *history.Store) error {
				runs, err := journal.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOut {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					category := string(run.Category)
					if run.Error != "" {
						category = "error"
					}
					rows = append(rows, []string{
						run.ID,
						run.CreatedAt.Local().Format(time.DateTime),
						strconv.Itoa(len(run.Files)),
						category,
						strconv.Itoa(countMoves(run.Plan)),
						strconv.Itoa(run.Usage.Requests),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Created", "Files", "Category", "Moves", "Oracle calls"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(journal *history.Store) error {
				run, err := journal.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, run)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Created:  %s\n", run.CreatedAt.Local().Format(time.DateTime))
				fmt.Fprintf(out, "Category: %s\n", run.Category)
				if run.Reason != "" {
					fmt.Fprintf(out, "Reason:   %s\n", run.Reason)
				}
				if run.Decided {
					fmt.Fprintln(out, "Decided:  by the decision oracle")
				}
				fmt.Fprintf(out, "Usage:    %s\n", usageSummary(run.Usage))
				if run.Error != "" {
					fmt.Fprintf(out, "Error:    %s\n", run.Error)
				}
				renderPlan(out, run.Plan, shouldColorize(out))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run as JSON")
	return cmd
}

func countMoves(plan []media.PlanAction) int {
	n := 0
	for _, action := range plan {
		if action.Action == media.ActionMove {
			n++
		}
	}
	return n
}
