package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/csvchat/internal/api"
	"github.com/kalambet/csvchat/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP (and MCP over stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}
		if enabled, _ := cmd.Flags().GetBool("mcp"); enabled {
			cfg.MCP.Enabled = true
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		interp, err := openInterpreter(ctx, cfg)
		if err != nil {
			return err
		}

		m := metrics.New()
		m.SetDatasetRows(interp.Profile(), interp.Rows())

		srv := &http.Server{
			Addr: cfg.Addr(),
			Handler: api.NewHandler(api.Deps{
				Interpreter: interp,
				Metrics:     m,
				Token:       cfg.Server.APIToken,
			}),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			slog.Info("csvchat listening", "addr", srv.Addr, "version", version, "auth", cfg.Server.APIToken != "")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if cfg.MCP.Enabled {
			stdioSrv := server.NewStdioServer(api.NewMCPServer(interp, m, version))
			g.Go(func() error {
				slog.Info("MCP server started (stdio transport)")
				if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
					slog.Error("MCP stdio server error", "error", err)
				}
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port, overrides server.port")
	serveCmd.Flags().Bool("mcp", false, "also serve MCP over stdio")
}
