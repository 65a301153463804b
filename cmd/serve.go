package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contratos/web"
)

const serveIndexPath = "/api/feeds"

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only JSON API",
	Long: `Start a local HTTP server exposing the resolved contracts and payments as JSON.

Endpoints:
- GET  /api/contracts?q=TERM
- GET  /api/payments?q=TERM&month=YYYY-MM
- GET  /api/months
- GET  /api/feeds
- POST /api/refresh
- GET  /healthz

Feeds are loaded on the first request and kept for serve.cache_ttl.`,
	Example: `
  # Start server on the configured port
  contratos serve

  # Start on a custom port
  contratos serve --port 9090
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		port := rt.cfg.Serve.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		handler := web.NewServer(rt.service, rt.feeds, web.Options{
			CacheTTL:    rt.cfg.Serve.CacheTTL,
			LoadTimeout: 2 * rt.cfg.HTTP.Timeout,
			Logger:      rt.logger,
		})

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           withIndexRedirect(handler),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		fmt.Printf("Listening on http://localhost:%d\n", port)
		rt.logger.Info("server started", zap.Int("port", port), zap.Duration("cache_ttl", rt.cfg.Serve.CacheTTL))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port (overrides serve.port)")
}

// withIndexRedirect sends requests for "/" to the feed status endpoint.
func withIndexRedirect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/" {
			http.Redirect(w, r, serveIndexPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
