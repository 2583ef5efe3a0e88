// todoquery is a read-only HTTP query service for a todo collection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/spetr/todoquery/internal/config"
	"github.com/spetr/todoquery/internal/seed"
	"github.com/spetr/todoquery/internal/server"
	"github.com/spetr/todoquery/internal/store"
	"github.com/spetr/todoquery/internal/store/memstore"
	"github.com/spetr/todoquery/internal/store/mongodb"
)

var (
	version   = "0.1.0"
	cfgFile   string
	logLevel  string
	logFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "todoquery",
	Short: "Read-only query service for a todo collection",
	Long: `todoquery serves point lookup, filtered/sorted listing, and grouped
summary views over a MongoDB todos collection.

Endpoints:
  GET /api/todos/{id}       single todo by id
  GET /api/todos            filtered/sorted listing
  GET /api/todosByOwner     group summaries keyed by owner
  GET /api/todosByCategory  group summaries keyed by category`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("todoquery %s\n", version)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		memory, _ := cmd.Flags().GetBool("memory")
		seedFile, _ := cmd.Flags().GetString("seed")
		return runServe(memory, seedFile)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Replace the todo collection with fixture data from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(args[0])
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, warnings, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Println("warning:", w)
		}
		fmt.Printf("Configuration OK (server %s, mongo %s/%s)\n",
			cfg.Server.Addr, cfg.Mongo.Database, cfg.Mongo.Collection)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	serveCmd.Flags().Bool("memory", false, "use an in-memory store instead of MongoDB")
	serveCmd.Flags().String("seed", "", "seed the store from a JSON file before serving")

	configCmd.AddCommand(configInitCmd, configValidateCmd)
	rootCmd.AddCommand(serveCmd, seedCmd, configCmd, versionCmd)
}

func runServe(memory bool, seedFile string) error {
	cfg, warnings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, memory)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	if seedFile != "" {
		n, err := seed.File(ctx, st, seedFile)
		if err != nil {
			return err
		}
		slog.Info("seeded store", "file", seedFile, "todos", n)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(st, slog.Default()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Server.Addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("received signal, shutting down", "signal", sig)
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runSeed(path string) error {
	cfg, warnings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	n, err := seed.File(ctx, st, path)
	if err != nil {
		return err
	}
	slog.Info("seeded store", "file", path, "todos", n)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, memory bool) (store.TodoStore, error) {
	if memory {
		return memstore.New(), nil
	}
	return mongodb.Connect(ctx, mongodb.Options{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		Collection:     cfg.Mongo.Collection,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
}

func setupLogging() {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
			TimeFormat: time.Kitchen,
			Level:      level,
		})
	}
	slog.SetDefault(slog.New(handler))
}
