package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/seichimap/spoke-cli/internal/store"
	"github.com/seichimap/spoke-cli/pkg/ghactions"
)

// initStore opens and migrates the local dispatch ledger.
func initStore(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// splitCSV parses a comma-separated flag value, dropping empty parts.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// initGitHub builds the remote-CI client from config.
func initGitHub() (ghactions.Client, error) {
	if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
		return nil, eris.New("github owner and repo must be configured")
	}
	return ghactions.NewClient(
		cfg.GitHub.Token,
		cfg.GitHub.Owner,
		cfg.GitHub.Repo,
		ghactions.WithBaseURL(cfg.GitHub.BaseURL),
	), nil
}
