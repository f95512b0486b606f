// Command universe runs the universe server: it loads configuration,
// opens the configured store backend, and accepts connections until
// interrupted.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"universe-server/internal/config"
	"universe-server/internal/dispatch"
	"universe-server/internal/license"
	"universe-server/internal/logging"
	"universe-server/internal/metrics"
	"universe-server/internal/registry"
	"universe-server/internal/server"
	"universe-server/internal/store"
	"universe-server/internal/store/mysqlstore"
	"universe-server/internal/store/sqlitestore"
)

// serverVersion is reported by -v/--version/--about, the same flag
// names the rest of this codebase's lineage answers to.
const serverVersion = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-v", "--version", "--about":
			fmt.Printf("Universe Server v%s\n", serverVersion)
			return
		}
	}

	configPath := "universe.toml"
	if len(os.Args) > 1 && os.Args[1] != "" {
		configPath = os.Args[1]
	}

	if err := run(configPath); err != nil {
		fmt.Fprintln(os.Stderr, "universe server:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	st, err := openStore(context.Background(), cfg.SQL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	gen, err := license.NewGenerator()
	if err != nil {
		return fmt.Errorf("build license generator: %w", err)
	}

	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)

	d := &dispatch.Dispatcher{
		Store:    st,
		Registry: registry.New(),
		Config:   cfg.Universe,
		License:  gen,
		Metrics:  reg,
		Log:      log,
	}

	srv := server.New(d, log)

	go serveMetrics(log, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting universe server",
		zap.String("bind", cfg.Universe.BindIP),
		zap.Uint16("port", cfg.Universe.Port),
		zap.String("store", string(cfg.SQL.Type)),
	)

	return srv.Run(ctx)
}

func openStore(ctx context.Context, cfg config.SQLConfig) (store.Store, error) {
	switch cfg.Type {
	case config.DatabaseExternal:
		return mysqlstore.Open(ctx, mysqlstore.Config{
			Hostname: cfg.MySQLHostname,
			Port:     cfg.MySQLPort,
			Username: cfg.MySQLUsername,
			Password: cfg.MySQLPassword,
			Database: cfg.MySQLDatabase,
		})
	default:
		return sqlitestore.Open(ctx, cfg.SqlitePath)
	}
}

// metricsAddr is the fixed local port Prometheus scrapes; unlike the
// game port, it is never meant to be internet-facing.
const metricsAddr = "127.0.0.1:9090"

func serveMetrics(log *zap.Logger, m *metrics.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	if err := http.ListenAndServe(metricsAddr, mux); err != nil {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}
