package appcontext

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Serve runs the HTTP server and the background workers until SIGINT or
// SIGTERM, then shuts both down within SHUTDOWN_TIMEOUT.
func (app *ApplicationContext) Serve(handler http.Handler) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler: handler,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, run := range app.background {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(bgCtx)
		}(run)
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	shutdownCompleted := make(chan error, 1)
	go func() {
		<-sigChan
		app.Logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Cf.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("Server shutdown error")
		}
		stopBackground()
		wg.Wait()

		shutdownCompleted <- app.Shutdown(shutdownCtx)
	}()

	app.Logger.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		stopBackground()
		wg.Wait()
		return err
	}
	err := <-shutdownCompleted
	app.Logger.Info().Msg("closed completed")
	return err
}
