package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/markov"
	"github.com/aretw0/markov/internal/cli"
	"github.com/aretw0/markov/internal/logging"
	httpAdapter "github.com/aretw0/markov/pkg/adapters/http"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/observability"
	"github.com/aretw0/markov/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the scheme as a JSON API: one-shot applications, persisted stepwise
sessions with an SSE event stream, and Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		dsn, _ := cmd.Flags().GetString("store")
		debug, _ := cmd.Flags().GetBool("debug")
		historyLimit, _ := cmd.Flags().GetInt("history-limit")
		maxLimit, _ := cmd.Flags().GetInt("max-limit")

		logger := logging.New(logging.LevelFor(debug))

		def, err := schemeFlags.Load(cmd.Context())
		if err != nil {
			return err
		}
		s, err := def.Build()
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg, def.Name)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}

		hooks := metrics.Hooks()
		if debug {
			hooks = hooks.Merge(observability.LoggingHooks(logger))
		}
		engine := markov.FromScheme(s,
			markov.WithName(def.Name),
			markov.WithLogger(logger),
			markov.WithLifecycleHooks(hooks),
		)

		store, err := cli.OpenStore(dsn)
		if err != nil {
			return err
		}
		defer store.Close()

		storeOpts, err := cli.StoreOptionsFromEnv()
		if err != nil {
			return err
		}
		storeOpts.HistoryLimit = historyLimit
		if err := store.Use(storeOpts); err != nil {
			return err
		}

		managerOpts := []session.Option{session.WithLogger(logger)}
		if store.Locker != nil {
			managerOpts = append(managerOpts, session.WithLocker(store.Locker))
		}
		sessions := session.NewManager(store, engine, managerOpts...)

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(sessions,
				httpAdapter.WithMetrics(reg),
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMaxStepLimit(maxLimit),
			),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Markov Server on %s\n", srv.Addr)
			fmt.Printf("Serving scheme %s (%d formulas), sessions in %s\n", def.Name, s.Len(), dsn)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			fmt.Printf("\nStart shutdown... Signal: %v\n", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "Graceful shutdown did not complete in %v: %v\n", shutdownTimeout, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Println("Markov Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Int("max-limit", domain.DefaultMaxStepLimit, "Largest step limit a client may request (0 removes the cap)")
	serveCmd.Flags().Int("history-limit", 0, "Keep only the last N steps of every session (0 keeps all)")
	serveCmd.Flags().String("store", "memory", "Session store: memory, file[:DIR], bolt:PATH or redis://host:port/db")
}
