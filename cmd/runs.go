package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/seichimap/spoke-cli/pkg/ghactions"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent factory workflow runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		gh, err := initGitHub()
		if err != nil {
			return err
		}

		runs, err := gh.ListRuns(ctx, cfg.GitHub.WorkflowFile, runsLimit)
		if err != nil {
			return eris.Wrap(err, "list runs")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN ID\tMODE\tSTATUS\tCONCLUSION\tCREATED\tURL")
		for i := range runs {
			run := &runs[i]
			mode := ghactions.InferMode(run)
			if mode == "" {
				mode = "-"
			}
			conclusion := run.Conclusion
			if conclusion == "" {
				conclusion = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				run.ID, mode, run.Status, conclusion,
				run.CreatedAt.Format("2006-01-02 15:04"), run.HTMLURL)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
