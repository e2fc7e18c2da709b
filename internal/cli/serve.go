package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/council/internal/logger"
	"github.com/lazypower/council/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Debug)
	defer log.Sync()

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	client, err := newClient(cfg, false)
	if err != nil {
		return err
	}
	exec, err := buildCouncil(cfg, client, log)
	if err != nil {
		return err
	}

	srv := server.New(exec, db, VersionString())
	srv.SetLogger(log)
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	advisors := len(exec.Advisors())
	errCh := make(chan error, 1)
	go func() {
		log.Info("council serving",
			zap.String("addr", addr),
			zap.String("db", db.Path),
			zap.String("llm", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
			zap.Int("advisors", advisors),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
