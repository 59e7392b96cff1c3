// Command kosyncd starts the KOReader progress sync server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dsavelev/kosyncd/internal/config"
	"github.com/dsavelev/kosyncd/internal/limiter"
	"github.com/dsavelev/kosyncd/internal/metrics"
	"github.com/dsavelev/kosyncd/internal/repository"
	"github.com/dsavelev/kosyncd/internal/repository/badgerstore"
	"github.com/dsavelev/kosyncd/internal/repository/fsstore"
	httpserver "github.com/dsavelev/kosyncd/internal/server/http"
	"github.com/dsavelev/kosyncd/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "kosyncd",
	Short: "KOReader progress sync server",
}

var (
	flagAddr       string
	flagDataDir    string
	flagStore      string
	flagDisableReg bool
	flagLoginLimit int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides KOSYNC_ADDR)")
	serveCmd.Flags().StringVar(&flagDataDir, "data-dir", "", "state directory (overrides KOSYNC_DATA_DIR)")
	serveCmd.Flags().StringVar(&flagStore, "store", "", `storage backend: "fs" or "badger"`)
	serveCmd.Flags().BoolVar(&flagDisableReg, "disable-registration", false, "reject all registration requests")
	serveCmd.Flags().IntVar(&flagLoginLimit, "login-failure-limit", 0, "failed logins per (user, ip) before lockout; 0 disables")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagStore != "" {
		cfg.Store = flagStore
	}
	if cmd.Flags().Changed("disable-registration") {
		cfg.DisableRegistration = flagDisableReg
	}
	if cmd.Flags().Changed("login-failure-limit") {
		cfg.LoginFailureLimit = flagLoginLimit
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("dataDir", cfg.DataDir),
		zap.String("store", cfg.Store),
		zap.Bool("registrationDisabled", cfg.DisableRegistration),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	var (
		users    repository.UserRepository
		progress repository.ProgressRepository
	)
	switch cfg.Store {
	case config.StoreFS:
		st, err := fsstore.New(cfg.DataDir)
		if err != nil {
			logger.Error("open fs store", zap.Error(err))
			return err
		}
		users = fsstore.NewUserRepo(st)
		progress = fsstore.NewProgressRepo(st)
	case config.StoreBadger:
		st, err := badgerstore.Open(badgerstore.Options{Path: filepath.Join(cfg.DataDir, "badger")})
		if err != nil {
			logger.Error("open badger store", zap.Error(err))
			return err
		}
		defer func() { _ = st.Close() }()
		users = badgerstore.NewUserRepo(st)
		progress = badgerstore.NewProgressRepo(st)
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	var lim limiter.Limiter
	if cfg.LoginFailureLimit > 0 {
		lim = limiter.NewMemory(15*time.Minute, cfg.LoginFailureLimit, 15*time.Minute)
	}

	// Services
	authSvc := service.NewAuthService(users, !cfg.DisableRegistration, lim)
	syncSvc := service.NewSyncService(progress)

	// HTTP server with middleware
	srv := httpserver.New(logger, authSvc, syncSvc)
	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(metrics.New()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- hs.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shCtx); err != nil {
			_ = hs.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			return err
		}
	}

	logger.Info("shutdown complete")
	return nil
}
