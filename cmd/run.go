package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/artifact"
	"github.com/seichimap/spoke-cli/internal/content"
	"github.com/seichimap/spoke-cli/internal/model"
	"github.com/seichimap/spoke-cli/internal/pipeline"
	anthropicpkg "github.com/seichimap/spoke-cli/pkg/anthropic"
)

var (
	runMode      string
	runLocales   string
	runMaxTopics int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the spoke factory pipeline locally",
	Long:  "Extracts spoke candidates from the published content tree and, in generate mode, writes one MDX document per topic and locale plus a summary.json.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode := model.RunMode(runMode)
		if !mode.Valid() {
			return eris.Errorf("invalid --mode %q, want preview or generate", runMode)
		}

		if runLocales != "" {
			cfg.Content.Locales = splitCSV(runLocales)
		}
		if runMaxTopics > 0 {
			cfg.Spoke.MaxTopics = runMaxTopics
		}

		repo := content.NewFSRepository(cfg.Content.Root, cfg.Content.Locales)
		ai := anthropicpkg.NewClient(cfg.Anthropic.Key)

		result, err := pipeline.Run(ctx, mode, repo, ai, cfg, time.Now().UTC())
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		if mode == model.ModeGenerate {
			for _, doc := range result.Docs {
				// doc.Path carries the content/ prefix; the config root
				// replaces it so staging trees work.
				rel := strings.TrimPrefix(doc.Path, "content/")
				path := filepath.Join(cfg.Content.Root, filepath.FromSlash(rel))
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return eris.Wrapf(err, "create dir for %s", path)
				}
				if err := os.WriteFile(path, []byte(doc.RawMDX), 0o644); err != nil {
					return eris.Wrapf(err, "write %s", path)
				}
			}
			zap.L().Info("documents written", zap.Int("count", len(result.Docs)))
		}

		if err := artifact.WriteSummary(cfg.Spoke.SummaryPath, result.Summary); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Summary)
	},
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "preview", "run mode: preview or generate")
	runCmd.Flags().StringVar(&runLocales, "locales", "", "comma-separated locales (default from config)")
	runCmd.Flags().IntVar(&runMaxTopics, "max-topics", 0, "topic cap for this run (default from config)")
	rootCmd.AddCommand(runCmd)
}
