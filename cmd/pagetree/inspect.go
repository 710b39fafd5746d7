package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	pagetree "github.com/goliatone/go-pagetree"
	"github.com/goliatone/go-pagetree/internal/storage"
)

func (c *cli) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show which page serves a request path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := c.module(cmd.Context())
			if err != nil {
				return err
			}
			defer m.Close()

			match, err := m.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "page:       %s\n", match.Page.ID)
			fmt.Fprintf(out, "title:      %s\n", match.Page.Title)
			fmt.Fprintf(out, "url:        %s\n", match.Page.CachedURL)
			fmt.Fprintf(out, "template:   %s\n", match.Page.TemplateKey)
			if match.ExtraPath != "" {
				fmt.Fprintf(out, "extra path: %s\n", match.ExtraPath)
			}
			if target, ok := match.Redirect(); ok {
				fmt.Fprintf(out, "redirect:   %s\n", target)
			}
			return nil
		},
	}
}

func (c *cli) treeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tree",
		Aliases: []string{"t"},
		Short:   "Print the page tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, err := c.module(cmd.Context())
			if err != nil {
				return err
			}
			defer m.Close()

			tree, err := m.Tree(cmd.Context())
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), tree, tree.Roots(), 0)
			return nil
		},
	}
}

func printTree(w io.Writer, tree *pagetree.Tree, nodes []*pagetree.Page, depth int) {
	for _, page := range nodes {
		state := ""
		if !page.Active {
			state = " (inactive)"
		}
		fmt.Fprintf(w, "%s%s  %s  [%s] %s%s\n",
			strings.Repeat("  ", depth), page.CachedURL, page.Title, page.TemplateKey, page.ID, state)
		printTree(w, tree, tree.Children(page.ID), depth+1)
	}
}

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver == "" {
				return errors.New("migrate: storage.driver is not set; pages are kept in memory")
			}
			db, err := storage.Open(cmd.Context(), storage.Config{
				Driver:       cfg.Storage.Driver,
				DSN:          cfg.Storage.DSN,
				MaxOpenConns: cfg.Storage.MaxOpenConns,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := storage.Migrate(cmd.Context(), db, cfg.Storage.Driver); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
