// Package server runs the development contest API: the in-memory fake from
// apitest served over HTTP, so the client can be exercised without the real
// platform.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/apitest"
	"github.com/dmitrijs2005/contestclient/internal/logging"
	"github.com/dmitrijs2005/contestclient/internal/server/config"
	"github.com/dmitrijs2005/contestclient/internal/shared"
)

type App struct {
	config *config.Config
	logger logging.Logger
	api    *apitest.API
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, os.Stdout)
	if err != nil {
		return nil, err
	}

	secret := c.SecretKey
	if secret == "" {
		if secret, err = shared.MakeRandHexString(32); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
	}

	api := apitest.New(apitest.WithSecret([]byte(secret)), apitest.WithLogger(logger))
	if c.Seed {
		apitest.Seed(api, time.Now())
	}

	return &App{config: c, logger: logger, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	err := apitest.Serve(ctx, app.config.EndpointAddr, app.api, app.logger)
	if err != nil {
		app.logger.Error(ctx, err.Error())
	}
	cancelFunc()
	return err
}

// Run serves the API until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "seeded", app.config.Seed)

	app.initSignalHandler(cancelFunc)

	var (
		wg  sync.WaitGroup
		err error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		err = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	return err
}
