package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mediasort/internal/media"
	"mediasort/internal/pipeline"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var (
		dir     string
		meta    []string
		jsonOut bool
		execute bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "plan [files...]",
		Short: "Categorize files and print their move plan",
		Long: "Categorize a set of downloaded files and print the move plan.\n\n" +
			"Files are paths relative to the download directory (absolute paths below it are accepted).\n" +
			"--dir adds every file below a download sub-directory. Metadata hints are passed with\n" +
			"--meta, for example --meta media_id=tmdb:603 or --meta category=movie,tv_series.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			files, err := collectFiles(afero.NewOsFs(), cfg.Paths.DownloadDir, args, dir)
			if err != nil {
				return err
			}
			metadata, err := parseMeta(meta)
			if err != nil {
				return err
			}

			return ctx.withRuntime(func(rt *pipeline.Runtime) error {
				res, planErr := rt.Pipeline.Plan(cmd.Context(), media.Request{Files: files, Metadata: metadata})
				if planErr != nil && len(res.Plan) == 0 {
					return planErr
				}
				if output != "" {
					if err := writePlanFile(output, res); err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				if jsonOut {
					if err := writeJSON(cmd, res); err != nil {
						return err
					}
				} else {
					colorize := shouldColorize(out)
					fmt.Fprintf(out, "Run %s: %s (%s)\n", res.RunID, res.Category, res.Reason)
					renderPlan(out, res.Plan, colorize)
					fmt.Fprintln(out, usageSummary(res.Usage))
				}
				if planErr != nil {
					return planErr
				}

				if !execute {
					return nil
				}
				failures := rt.Executor.Execute(cmd.Context(), res.Plan)
				if len(failures) > 0 {
					if !jsonOut {
						renderFailures(cmd.ErrOrStderr(), failures, shouldColorize(cmd.ErrOrStderr()))
					}
					return fmt.Errorf("%d of the planned moves failed", len(failures))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Add every file below this download sub-directory")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "Metadata hint as key=value (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&execute, "execute", false, "Apply the plan after printing it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Also write the result JSON to this file")
	return cmd
}

func writePlanFile(path string, res pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plan file: %w", err)
	}
	defer f.Close()
	enc := newJSONEncoder(f)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write plan file: %w", err)
	}
	return f.Close()
}
