package main

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/model"
	"github.com/seichimap/spoke-cli/pkg/ghactions"
)

var (
	dispatchMode      string
	dispatchLocales   string
	dispatchMaxTopics int
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Trigger the remote factory workflow and resolve its run",
	Long:  "Dispatches the CI workflow with the chosen mode, resolves which run the dispatch started, and records the dispatch in the local ledger.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode := model.RunMode(dispatchMode)
		if !mode.Valid() {
			return eris.Errorf("invalid --mode %q, want preview or generate", dispatchMode)
		}

		gh, err := initGitHub()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		window := time.Duration(cfg.GitHub.ResolveTimeoutSecs) * time.Second
		if recent, err := st.CountQueuedSince(ctx, time.Now().Add(-window)); err == nil && recent > 0 {
			zap.L().Warn("another dispatch was queued within the resolve window, run attribution may collide",
				zap.Int("recent_dispatches", recent),
			)
		}

		inputs := map[string]string{"mode": string(mode)}
		if dispatchLocales != "" {
			inputs["locales"] = dispatchLocales
		}
		if dispatchMaxTopics > 0 {
			inputs["max_topics"] = strconv.Itoa(dispatchMaxTopics)
		}

		run, err := ghactions.DispatchAndResolveRun(ctx, gh,
			cfg.GitHub.WorkflowFile,
			cfg.GitHub.Ref,
			inputs,
			ghactions.WithResolveTimeout(time.Duration(cfg.GitHub.ResolveTimeoutSecs)*time.Second),
		)
		if err != nil {
			return eris.Wrap(err, "dispatch workflow")
		}

		dispatch, err := st.RecordDispatch(ctx, run.ID, string(mode), cfg.GitHub.Ref, run.HTMLURL)
		if err != nil {
			return eris.Wrap(err, "record dispatch")
		}

		zap.L().Info("workflow dispatched",
			zap.Int64("run_id", run.ID),
			zap.String("mode", string(mode)),
			zap.String("url", run.HTMLURL),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dispatch)
	},
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchMode, "mode", "preview", "run mode: preview or generate")
	dispatchCmd.Flags().StringVar(&dispatchLocales, "locales", "", "comma-separated locales forwarded to the workflow")
	dispatchCmd.Flags().IntVar(&dispatchMaxTopics, "max-topics", 0, "topic cap forwarded to the workflow")
	rootCmd.AddCommand(dispatchCmd)
}
