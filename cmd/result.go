package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/artifact"
	"github.com/seichimap/spoke-cli/internal/model"
	"github.com/seichimap/spoke-cli/pkg/ghactions"
)

var resultRunID int64

var resultCmd = &cobra.Command{
	Use:   "result [run-id]",
	Short: "Fetch the summary artifact of a factory run",
	Long:  "Downloads the run's summary artifact and prints the normalized run summary. Without a run id, the most recent run is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return eris.Errorf("invalid run id %q", args[0])
			}
			resultRunID = id
		}

		gh, err := initGitHub()
		if err != nil {
			return err
		}

		run, err := resolveResultRun(cmd, gh)
		if err != nil {
			return err
		}

		if run.Status != "completed" {
			fmt.Fprintf(os.Stderr, "Run %d is %s; summary may not be uploaded yet.\n", run.ID, run.Status)
		}

		artifacts, err := gh.ListArtifacts(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "list artifacts")
		}

		summary, err := fetchSummary(cmd, gh, artifacts)
		if err != nil {
			return err
		}
		if summary == nil {
			return eris.Errorf("run %d has no summary artifact yet", run.ID)
		}

		if summary.PRURL == nil && len(run.PullRequests) > 0 {
			summary.PRURL = &run.PullRequests[0].URL
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func resolveResultRun(cmd *cobra.Command, gh ghactions.Client) (*ghactions.WorkflowRun, error) {
	ctx := cmd.Context()

	if resultRunID != 0 {
		run, err := gh.GetRun(ctx, resultRunID)
		if err != nil {
			return nil, eris.Wrapf(err, "get run %d", resultRunID)
		}
		return run, nil
	}

	runs, err := gh.ListRuns(ctx, cfg.GitHub.WorkflowFile, 1)
	if err != nil {
		return nil, eris.Wrap(err, "list runs")
	}
	if len(runs) == 0 {
		return nil, eris.Errorf("no runs found for workflow %s", cfg.GitHub.WorkflowFile)
	}
	return &runs[0], nil
}

// fetchSummary tries artifacts in preference order: names containing
// "summary" first, then the rest. The first artifact yielding a parseable
// summary wins.
func fetchSummary(cmd *cobra.Command, gh ghactions.Client, artifacts []ghactions.Artifact) (*model.FactorySummary, error) {
	ctx := cmd.Context()

	ordered := make([]ghactions.Artifact, 0, len(artifacts))
	var rest []ghactions.Artifact
	for _, a := range artifacts {
		if a.Expired {
			continue
		}
		if strings.Contains(strings.ToLower(a.Name), "summary") {
			ordered = append(ordered, a)
		} else {
			rest = append(rest, a)
		}
	}
	ordered = append(ordered, rest...)

	for _, a := range ordered {
		buf, err := gh.DownloadArtifactZip(ctx, a.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "download artifact %s", a.Name)
		}
		summary, err := artifact.ExtractSummaryFromZip(buf)
		if err != nil {
			zap.L().Warn("unreadable artifact, trying next",
				zap.String("artifact", a.Name),
				zap.Error(err),
			)
			continue
		}
		if summary != nil {
			return summary, nil
		}
	}
	return nil, nil
}

func init() {
	resultCmd.Flags().Int64Var(&resultRunID, "run", 0, "workflow run id (default: most recent)")
	rootCmd.AddCommand(resultCmd)
}
