package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/registry"
	"github.com/sydcare/carerank/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rankings, providers, and run history over HTTP",
	Long:  "Read-only HTTP API over the registry, the latest ranking file, and the run store. Nothing served here can mutate the evidence ledger.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		api := &apiServer{
			registryPath: cfg.Paths.Registry,
			rankingsDir:  cfg.Paths.Rankings,
			st:           st,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown
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

type apiServer struct {
	registryPath string
	rankingsDir  string
	st           store.Store
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/rankings", s.handleRankings)
	r.Get("/api/providers", s.handleProviders)
	r.Get("/api/runs", s.handleRuns)

	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRankings serves the latest ranking file byte-for-byte: the
// canonical encoding is the contract, so the bytes are never re-marshaled.
func (s *apiServer) handleRankings(w http.ResponseWriter, _ *http.Request) {
	path := filepath.Join(s.rankingsDir, "top5.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		http.Error(w, `{"error":"no ranking has been generated"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		zap.L().Error("read ranking file", zap.String("path", path), zap.Error(err))
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *apiServer) handleProviders(w http.ResponseWriter, _ *http.Request) {
	providers, err := registry.Load(s.registryPath)
	if err != nil {
		zap.L().Error("load registry", zap.Error(err))
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.st.ListRuns(r.Context(), store.RunFilter{Limit: 20})
	if err != nil {
		zap.L().Error("list runs", zap.Error(err))
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
