package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/auth"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/config"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/db"
	api "github.com/jack3sommer3-blip/enkrateia-sub000/internal/http"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/memstore"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/service"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "enkrateia",
		Short:        "Daily habit scoring API",
		SilenceUsage: true,
	}
	serve := newServeCmd()
	root.AddCommand(serve, newMigrateCmd(), newScoreCmd())
	// Running the binary bare starts the server, as the old entrypoint did.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("port", "8080", "port to listen on")
	cmd.Flags().Bool("strict", false, "reject deprecated goal keys and log unreadable inputs")
	cmd.Flags().Bool("in-memory", false, "keep all data in memory instead of Postgres")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.InMemory {
				return errors.New("migrate needs DATABASE_URL, not an in-memory store")
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: 1})
			if err != nil {
				return err
			}
			defer pool.Close()
			applied, err := db.RunMigrations(ctx, pool, os.DirFS(cfg.MigrationsDir))
			if err != nil {
				return err
			}
			cmd.Printf("applied %d migration(s)\n", len(applied))
			return nil
		},
	}
	cmd.Flags().String("migrations-dir", "migrations", "directory holding the .sql migrations")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	var store service.Store
	if cfg.InMemory {
		log.Printf("using in-memory store; data is lost on exit")
		store = memstore.New()
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.DBMaxConns, MaxConnIdleTime: 5 * time.Minute})
		if err != nil {
			log.Fatalf("failed to connect db: %v", err)
		}
		defer pool.Close()
		store = repo.New(pool)
	}

	authManager := auth.NewManager(cfg.JWTSecret)
	svc := service.New(store, authManager, cfg.StrictValidation)
	handler := &api.API{Service: svc, Auth: authManager, Origins: cfg.Origins()}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	return nil
}
