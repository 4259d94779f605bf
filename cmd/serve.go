package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/config"
	"github.com/seichimap/spoke-cli/internal/model"
	"github.com/seichimap/spoke-cli/internal/store"
	"github.com/seichimap/spoke-cli/pkg/ghactions"
)

var servePort int

// dispatchLedger is the slice of the store the API needs.
type dispatchLedger interface {
	RecordDispatch(ctx context.Context, runID int64, mode, ref, runURL string) (*store.Dispatch, error)
	ListDispatches(ctx context.Context, limit int) ([]store.Dispatch, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trigger API server",
	Long:  "Serves a small HTTP API for dispatching factory runs and inspecting the local dispatch ledger.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gh, err := initGitHub()
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newAPIRouter(gh, st, cfg.GitHub),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newAPIRouter(gh ghactions.Client, ledger dispatchLedger, ghCfg config.GitHubConfig, resolveOpts ...ghactions.ResolveOption) http.Handler {
	if len(resolveOpts) == 0 {
		resolveOpts = []ghactions.ResolveOption{
			ghactions.WithResolveTimeout(time.Duration(ghCfg.ResolveTimeoutSecs) * time.Second),
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/spoke/run", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Mode      string   `json:"mode"`
			Locales   []string `json:"locales"`
			MaxTopics int      `json:"maxTopics"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		mode := model.RunMode(body.Mode)
		if !mode.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode must be preview or generate"})
			return
		}

		inputs := map[string]string{"mode": string(mode)}
		if len(body.Locales) > 0 {
			inputs["locales"] = strings.Join(body.Locales, ",")
		}
		if body.MaxTopics > 0 {
			inputs["max_topics"] = strconv.Itoa(body.MaxTopics)
		}

		run, err := ghactions.DispatchAndResolveRun(req.Context(), gh,
			ghCfg.WorkflowFile, ghCfg.Ref,
			inputs,
			resolveOpts...,
		)
		if err != nil {
			zap.L().Error("api dispatch failed", zap.String("mode", string(mode)), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "dispatch failed"})
			return
		}

		dispatch, err := ledger.RecordDispatch(req.Context(), run.ID, string(mode), ghCfg.Ref, run.HTMLURL)
		if err != nil {
			zap.L().Error("ledger write failed", zap.Int64("run_id", run.ID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ledger write failed"})
			return
		}

		writeJSON(w, http.StatusAccepted, dispatch)
	})

	r.Get("/api/spoke/runs", func(w http.ResponseWriter, req *http.Request) {
		dispatches, err := ledger.ListDispatches(req.Context(), 50)
		if err != nil {
			zap.L().Error("ledger read failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ledger read failed"})
			return
		}
		if dispatches == nil {
			dispatches = []store.Dispatch{}
		}
		writeJSON(w, http.StatusOK, dispatches)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
