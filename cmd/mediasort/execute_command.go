package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediasort/internal/executor"
	"mediasort/internal/media"
	"mediasort/internal/pipeline"
	"mediasort/internal/services"
)

func newExecuteCommand(ctx *commandContext) *cobra.Command {
	var (
		planPath string
		runID    string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Apply a move plan to the library",
		Long: "Apply a move plan written by `mediasort plan --json` (or a bare JSON action list),\n" +
			"or the plan of a journaled run. Existing library files are never overwritten.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var plan []media.PlanAction
			switch {
			case strings.TrimSpace(planPath) != "" && strings.TrimSpace(runID) != "":
				return services.Wrap(services.ErrMalformedRequest, "cli", "execute", "use either --plan or --run", nil)
			case strings.TrimSpace(planPath) != "":
				if plan, err = readPlan(planPath); err != nil {
					return err
				}
			case strings.TrimSpace(runID) != "":
				journal, err := pipeline.OpenHistory(cfg)
				if err != nil {
					return err
				}
				if journal == nil {
					return services.Wrap(services.ErrConfiguration, "cli", "execute", "history is disabled", nil)
				}
				defer journal.Close()
				run, err := journal.Get(cmd.Context(), runID)
				if err != nil {
					return err
				}
				plan = run.Plan
			default:
				return services.Wrap(services.ErrMalformedRequest, "cli", "execute", "--plan or --run is required", nil)
			}

			failures := pipeline.NewExecutor(cfg, ctx.log()).Execute(cmd.Context(), plan)
			if jsonOut {
				if failures == nil {
					failures = []executor.Failure{}
				}
				if err := writeJSON(cmd, map[string]any{"failed_move": failures}); err != nil {
					return err
				}
			} else if len(failures) > 0 {
				renderFailures(cmd.OutOrStdout(), failures, shouldColorize(cmd.OutOrStdout()))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "All moves applied")
			}
			if len(failures) > 0 {
				return errors.New(pluralize(len(failures), "move", "moves") + " failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "Plan JSON file")
	cmd.Flags().StringVar(&runID, "run", "", "Execute the plan of a journaled run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print failures as JSON")
	return cmd
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
