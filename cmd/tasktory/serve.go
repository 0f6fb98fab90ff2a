package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpggio/tasktory/internal/mcp"
	"github.com/rpggio/tasktory/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace over MCP (stdio or HTTP) and JSON-RPC",
		Long: `Serve the workspace to MCP clients.

In stdio mode the MCP protocol runs over stdin/stdout and logs go to stderr.
In http mode the server exposes:
  /mcp     streamable MCP endpoint
  /rpc     JSON-RPC 2.0 endpoint with the same methods as the MCP tools
  /health  liveness probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = opts.cfg.Transport.Mode
			}
			if mode != "http" && mode != "stdio" {
				return fmt.Errorf("invalid transport mode %q", mode)
			}

			// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
			logWriter := io.Writer(os.Stdout)
			if mode == "stdio" {
				logWriter = os.Stderr
			}
			a, err := openApp(opts, logWriter)
			if err != nil {
				return err
			}
			defer a.Close()

			services := mcp.Services{Tasks: a.workspace, Activity: a.activity}
			mcpServer := mcp.NewServer(mcp.Config{
				Services: services,
				Version:  Version,
				Logger:   a.logger,
			})

			if mode == "stdio" {
				return runStdioMode(cmd.Context(), a.logger, mcpServer)
			}
			handler := mcp.NewHandler(services.Tasks, services.Activity)
			return runHTTPMode(a.logger, mcpServer, handler, a.cfg.Server.Host, a.cfg.Server.Port)
		},
	}
	cmd.Flags().StringVar(&mode, "transport", "", "Transport mode: http or stdio (overrides config)")
	return cmd
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, handler transport.RPCHandler, host string, port int) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)
	router := transport.NewServer(handler, transport.Options{MCP: mcpHandler, Logger: logger})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(logger, httpServer, errCh)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
