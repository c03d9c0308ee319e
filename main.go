package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"todo-api/handlers"
	"todo-api/utils"
)

func main() {
	if err := newRootCommand(&flags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	port       int
	driver     string
	sqlitePath string
	dsn        string
}

// apply overrides cfg with any flag the user set explicitly.
func (f *flags) apply(cmd *cobra.Command, cfg *utils.Config) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = f.port
	}
	if cmd.Flags().Changed("driver") {
		d, err := utils.ParseStorageDriver(f.driver)
		if err != nil {
			return err
		}
		cfg.Driver = d
	}
	if cmd.Flags().Changed("sqlite-path") {
		cfg.SQLitePath = f.sqlitePath
	}
	if cmd.Flags().Changed("database-url") {
		cfg.DatabaseURL = f.dsn
	}
	return nil
}

func newRootCommand(f *flags) *cobra.Command {
	root := &cobra.Command{
		Use:          "todo-api",
		Short:        "Task list REST API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, f)
		},
	}
	root.PersistentFlags().IntVar(&f.port, "port", utils.DefaultPort, "listen port (env PORT)")
	root.PersistentFlags().StringVar(&f.driver, "driver", string(utils.StorageSQLite), "storage driver: memory|sqlite|postgres (env TASKS_STORAGE_DRIVER)")
	root.PersistentFlags().StringVar(&f.sqlitePath, "sqlite-path", utils.DefaultSQLitePath, "sqlite database file (env TASKS_SQLITE_PATH)")
	root.PersistentFlags().StringVar(&f.dsn, "database-url", "", "postgres DSN (env DATABASE_URL)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, f)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, f)
		},
	})
	return root
}

func loadConfig(cmd *cobra.Command, f *flags) (utils.Config, error) {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return utils.Config{}, err
	}
	if err := f.apply(cmd, &cfg); err != nil {
		return utils.Config{}, err
	}
	return cfg, nil
}

func runMigrate(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	if cfg.Driver == utils.StorageMemory {
		logger.Info("memory store has no schema")
		return nil
	}
	st, err := utils.OpenStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("schema ready", "driver", cfg.Driver)
	return st.Close()
}

func runServe(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	st, err := utils.OpenStore(openCtx, cfg, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.Config{
		Store:          st,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		Registry:       reg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server is listening", "addr", srv.Addr, "driver", cfg.Driver)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
