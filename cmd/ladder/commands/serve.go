package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitos/take_profit/internal/web"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the order form over HTTP and WebSocket",
	Long: `Starts the command/query API for a presentation layer.

Endpoints:
  GET  /status           - health check
  GET  /api/order-form   - current snapshot
  POST /api/commands     - apply one command
  GET  /ws               - command/snapshot loop over WebSocket`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override server.port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, form, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	server := web.NewServer(web.Options{
		Port:              cfg.Server.Port,
		CommandsPerSecond: cfg.Server.CommandsPerSecond,
		Burst:             cfg.Server.Burst,
	}, form, log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
		}
		return err
	case <-stop:
	}

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
