package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamiewilson/aero/config"
	"github.com/jamiewilson/aero/loader"
	"github.com/jamiewilson/aero/runtime"
	"github.com/jamiewilson/aero/server"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dev server with live reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagDir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Dev.Addr = addr
			}

			disp := runtime.NewDispatcher()
			l := loader.New(cfg)
			if err := l.Attach(disp); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, disp, l, newLogger()).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides aero.yml)")
	return cmd
}
