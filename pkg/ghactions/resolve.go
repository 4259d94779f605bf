package ghactions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/resilience"
)

const (
	// snapshotSize is how many recent runs are captured before dispatching.
	snapshotSize = 20

	defaultResolveInterval = 1500 * time.Millisecond
	defaultResolveTimeout  = 30 * time.Second
)

// ResolveOption configures DispatchAndResolveRun.
type ResolveOption func(*resolveConfig)

type resolveConfig struct {
	interval time.Duration
	timeout  time.Duration
}

// WithResolveInterval overrides the poll interval.
func WithResolveInterval(d time.Duration) ResolveOption {
	return func(c *resolveConfig) {
		c.interval = d
	}
}

// WithResolveTimeout overrides the poll deadline.
func WithResolveTimeout(d time.Duration) ResolveOption {
	return func(c *resolveConfig) {
		c.timeout = d
	}
}

// DispatchAndResolveRun triggers the workflow and identifies the run it
// started. The dispatch endpoint returns no correlation id, so the protocol
// is: snapshot the recent run ids, dispatch, then poll until a run id absent
// from the snapshot appears. If the deadline elapses, the most recently
// listed run is returned as a best-effort fallback — a concurrently
// dispatched run of the same workflow can be misattributed in that window.
func DispatchAndResolveRun(ctx context.Context, client Client, workflowFile, ref string, inputs map[string]string, opts ...ResolveOption) (*WorkflowRun, error) {
	cfg := resolveConfig{
		interval: defaultResolveInterval,
		timeout:  defaultResolveTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	before, err := client.ListRuns(ctx, workflowFile, snapshotSize)
	if err != nil {
		return nil, eris.Wrap(err, "ghactions: snapshot runs before dispatch")
	}
	seen := make(map[int64]struct{}, len(before))
	for _, run := range before {
		seen[run.ID] = struct{}{}
	}

	if err := client.Dispatch(ctx, workflowFile, ref, inputs); err != nil {
		return nil, err
	}

	run, err := resilience.Poll(ctx, resilience.PollConfig{
		Interval: cfg.interval,
		Timeout:  cfg.timeout,
	}, func(ctx context.Context) (*WorkflowRun, bool, error) {
		runs, err := client.ListRuns(ctx, workflowFile, snapshotSize)
		if err != nil {
			return nil, false, err
		}
		for i := range runs {
			if _, ok := seen[runs[i].ID]; !ok {
				return &runs[i], true, nil
			}
		}
		return nil, false, nil
	})
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, resilience.ErrPollTimeout) {
		return nil, eris.Wrap(err, "ghactions: resolve run")
	}

	// Deadline elapsed with no unseen run. Fall back to the most recently
	// listed run; attribution is best-effort, not guaranteed correct.
	zap.L().Warn("ghactions: run resolution timed out, falling back to most recent run",
		zap.String("workflow", workflowFile),
	)
	runs, err := client.ListRuns(ctx, workflowFile, 1)
	if err != nil {
		return nil, eris.Wrap(err, "ghactions: fallback run lookup")
	}
	if len(runs) == 0 {
		return nil, eris.Errorf("ghactions: no runs found for workflow %s", workflowFile)
	}
	return &runs[0], nil
}

// InferMode classifies a run's configured mode from its display title text.
// The provider exposes no structured field for dispatch inputs, so this is a
// best-effort case-insensitive substring match. Returns "" when undecidable.
func InferMode(run *WorkflowRun) string {
	if run == nil {
		return ""
	}
	title := strings.ToLower(run.DisplayTitle + " " + run.Name)
	switch {
	case strings.Contains(title, "preview"):
		return "preview"
	case strings.Contains(title, "generate"):
		return "generate"
	default:
		return ""
	}
}
