package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/censusmap/internal/basemap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rendered map and a basemap tile proxy over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}

		proxy, err := basemap.NewProxy(cfg.Basemap.URLTemplate, cfg.Basemap.CacheSize)
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		// The map is rendered on first request and memoized for the life
		// of the process.
		var (
			mu     sync.Mutex
			cached []byte
		)
		r.Get("/map.png", func(w http.ResponseWriter, req *http.Request) {
			mu.Lock()
			defer mu.Unlock()

			if cached == nil {
				rend, err := runPipeline(req.Context(), cfg, defaultPipelineOptions(cfg))
				if err != nil {
					zap.L().Error("map render failed", zap.Error(err))
					http.Error(w, "render failed", http.StatusBadGateway)
					return
				}
				var buf bytes.Buffer
				if err := rend.EncodePNG(&buf); err != nil {
					zap.L().Error("png encode failed", zap.Error(err))
					http.Error(w, "encode failed", http.StatusInternalServerError)
					return
				}
				cached = buf.Bytes()
			}

			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(cached)
		})

		r.Handle("/basemap/*", http.StripPrefix("/basemap", proxy))

		addr := fmt.Sprintf(":%d", port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		zap.L().Info("starting map server", zap.String("addr", addr))

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down map server")
			_ = srv.Close()
		}()

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "map server")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP server port (default: from config)")
	rootCmd.AddCommand(serveCmd)
}
