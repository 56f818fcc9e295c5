package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tentens-tech/lease-dashboard/internal/bootstrap"
	"github.com/tentens-tech/lease-dashboard/internal/config"
	delivery "github.com/tentens-tech/lease-dashboard/internal/delivery/http"
)

func NewServe() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server",
		RunE:  leaseDashboardProcess,
	}
}

func leaseDashboardProcess(cmd *cobra.Command, _ []string) error {
	configuration := config.NewConfig()
	if configuration.Debug {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApplication(ctx, configuration)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warnf("Failed to close application: %v", err)
		}
	}()

	server := delivery.New(app)
	errGroup, errGroupCtx := errgroup.WithContext(ctx)

	errGroup.Go(func() error {
		log.Infof("Server is starting on :%s", configuration.Server.Port)
		if err := server.Start(":" + configuration.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	errGroup.Go(func() error {
		<-errGroupCtx.Done()

		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), configuration.Server.Timeout.Shutdown)
		defer cancel()

		log.Info("Server is shutting down")
		if err := server.Shutdown(ctxWithTimeout); err != nil {
			return err
		}
		return nil
	})

	return errGroup.Wait()
}
