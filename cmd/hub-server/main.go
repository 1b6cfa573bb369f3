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

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/collection"
	"github.com/blueprint-hub/hub-server/comment"
	"github.com/blueprint-hub/hub-server/config"
	"github.com/blueprint-hub/hub-server/event"
	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/httpapi"
	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/notification"
)

func main() {
	app := &cli.App{
		Name:   "hub-server",
		Usage:  "blueprint hub api server",
		Flags:  config.Flags(),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cctx *cli.Context) error {
	cfg, err := config.FromContext(cctx)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	limiter, closeLimiter, err := openLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	s3Store, err := openS3(ctx, logger, cfg)
	if err != nil {
		return err
	}

	client, err := newModerationClient(ctx, logger, cfg)
	if err != nil {
		return err
	}

	g := gate.New(
		logger.Named("gate"),
		cfg.GateConfig(),
		moderation.New(logger.Named("automod"), client, moderation.WithTimeout(cfg.Automod.Timeout)),
		notification.NewModeratorNotifier(logger.Named("notification"), stores.accounts, newNotifier(logger, cfg)),
	)
	if cfg.Automod.Enabled {
		logger.Info("Automated moderation enabled", zap.String("provider", cfg.Automod.Provider))
	}

	bus := event.NewCommentBus()
	bus.AddHandler(comment.NewApprover(logger.Named("approver"), g, stores.comments, stores.blueprints, stores.accounts))

	uploader := blob.NewUploader(logger.Named("blob"), stores.blobs, s3Store, cfg.S3.Bucket, cfg.S3.Region)

	api := httpapi.NewServer(
		logger.Named("http"),
		account.NewAuthorizer(stores.accounts),
		account.NewServer(logger.Named("account"), stores.accounts, limiter),
		blueprint.NewServer(logger.Named("blueprint"), g, stores.blueprints, stores.blobs, uploader),
		collection.NewServer(logger.Named("collection"), g, stores.collections, stores.blueprints),
		comment.NewServer(logger.Named("comment"), stores.comments, stores.blueprints, limiter, bus),
		uploader,
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Failed to shut down http server", zap.Error(err))
	}

	// Let pending comment approvals finish, then the notices they queued
	bus.Wait()
	g.Wait()
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
