package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	server "github.com/BrunoKrugel/mcp-transmogrifier"
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/convert"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the converter over MCP and REST",
		Long:  "Start an HTTP server exposing the converter as MCP tools on --mount and as a REST route on --convert-path.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, addr, err := newServer(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, e, addr)
		},
	}

	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().String("mount", "/mcp", "Path of the MCP endpoint")
	cmd.Flags().String("convert-path", server.DefaultConvertPath, "Path of the REST conversion route")
	cmd.Flags().String("mode", "policy", "Default quoting mode: policy or regex")

	return cmd
}

func newServer(cmd *cobra.Command) (*echo.Echo, string, error) {
	addr, _ := cmd.Flags().GetString("addr")
	mount, _ := cmd.Flags().GetString("mount")
	convertPath, _ := cmd.Flags().GetString("convert-path")
	modeName, _ := cmd.Flags().GetString("mode")

	mode, err := convert.ParseMode(modeName)
	if err != nil {
		return nil, "", err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	mcp := server.NewWithConfig(e, &server.Config{
		ConvertPath: convertPath,
		Mode:        mode,
	})
	if err := mcp.Mount(mount); err != nil {
		return nil, "", err
	}

	return e, addr, nil
}

func run(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("starting server")
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("shutting down server")
	return e.Shutdown(shutdownCtx)
}
