package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/pkg/breaker"
	"github.com/finsight-ai/finsight/pkg/confidence"
	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/health"
	"github.com/finsight-ai/finsight/pkg/marketdata"
	"github.com/finsight-ai/finsight/pkg/provider"
	"github.com/finsight-ai/finsight/pkg/research"
	"github.com/finsight-ai/finsight/pkg/server"
	"github.com/finsight-ai/finsight/pkg/store"
)

// wiring holds the constructed dependency graph for one process.
type wiring struct {
	cfg     *config.Config
	store   *store.Store
	reg     *breaker.Registry
	client  *marketdata.Client
	chain   *provider.Chain
	svc     *research.Service
	monitor *health.Monitor
}

// buildWiring constructs every component from configuration. Lifecycle is
// owned here, at the entry point; nothing below holds package-level state.
func buildWiring(cfg *config.Config) (*wiring, error) {
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	reg := breaker.NewRegistry(breaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		Timeout:          cfg.Breaker.Timeout,
	})

	var mdKey string
	if cfg.MarketData.APIKeyEnv != "" {
		mdKey = os.Getenv(cfg.MarketData.APIKeyEnv)
	}
	src := marketdata.NewHTTPSource(cfg.MarketData.URL, mdKey)
	client := marketdata.NewClient(src, cfg, reg)

	chain := provider.NewChain(cfg.Providers)

	scorer, err := confidence.New(cfg.Confidence)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init scorer: %w", err)
	}

	return &wiring{
		cfg:     cfg,
		store:   st,
		reg:     reg,
		client:  client,
		chain:   chain,
		svc:     research.New(client, chain, scorer, st),
		monitor: health.NewMonitor(reg, chain, client),
	}, nil
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the research API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			w, err := buildWiring(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = w.store.Close() }()

			srv := server.New(cfg, w.svc, w.reg, w.monitor, w.store)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("starting finsight with config: %s", configPath)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "finsight.yaml", "path to config file")
	return cmd
}
