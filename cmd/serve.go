package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/garage-labs/carscope/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var provider string
	var model string
	var detectorURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for vehicle inspection sessions",
		Long: `Starts the Carscope web API on the specified port.

The API accepts vehicle photo uploads, runs the admission checks
(vehicle presence and cross-image consistency), analyzes admitted
images with a vision-capable LLM, and tracks results per inspection
session.`,
		Example: `  # Start server on default port 8888
  carscope serve

  # Start server with an external damage detector
  carscope serve --port 3000 --detector-url http://localhost:8000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := handlers.New(provider, model, detectorURL)
			if err != nil {
				return err
			}

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Carscope API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: ollama, openai, or gemini (default from CARSCOPE_PROVIDER)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default per provider)")
	cmd.Flags().StringVar(&detectorURL, "detector-url", "", "Base URL of an external damage-detection service (optional)")

	return cmd
}
