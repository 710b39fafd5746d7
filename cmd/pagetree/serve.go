package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	pagetree "github.com/goliatone/go-pagetree"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCommand() *cobra.Command {
	var allowExtra bool
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the page tree over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m, cfg, err := c.module(ctx)
			if err != nil {
				return err
			}
			defer m.Close()

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           m.Handler(pagetree.AllowExtraPath(allowExtra)),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", cfg.HTTP.Addr)

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
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	_ = c.v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	cmd.Flags().BoolVar(&allowExtra, "allow-extra-path", false, "render pages for unclaimed path suffixes instead of 404")
	return cmd
}
