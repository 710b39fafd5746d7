package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	pagescmd "github.com/goliatone/go-pagetree/internal/commands/pages"
	"github.com/goliatone/go-pagetree/internal/pages"
)

func (c *cli) pageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Create, move and delete pages",
	}
	cmd.AddCommand(c.pageCreateCommand(), c.pageMoveCommand(), c.pageDeleteCommand())
	return cmd
}

func parseParent(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("invalid parent id %q: %w", value, err)
	}
	return &id, nil
}

func (c *cli) pageCreateCommand() *cobra.Command {
	var (
		fields pagescmd.PageFields
		parent string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a page to the tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parentID, err := parseParent(parent)
			if err != nil {
				return err
			}
			fields.ParentID = parentID

			m, _, err := c.module(cmd.Context())
			if err != nil {
				return err
			}
			defer m.Close()

			msg := pagescmd.CreatePageCommand{PageFields: fields, Result: &pages.SaveResult{}}
			if err := m.Commands().Create.Execute(cmd.Context(), msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s at %s\n", msg.Result.Page.ID, msg.Result.Page.CachedURL)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&fields.Title, "title", "", "page title")
	flags.StringVar(&fields.Slug, "slug", "", "URL segment")
	flags.StringVar(&fields.TemplateKey, "template", "standard", "template key")
	flags.StringVar(&parent, "parent", "", "parent page id")
	flags.IntVar(&fields.Position, "position", 0, "position among siblings")
	flags.BoolVar(&fields.Active, "active", true, "publish the page")
	flags.BoolVar(&fields.InNavigation, "in-navigation", true, "list the page in navigation")
	flags.StringVar(&fields.OverrideURL, "override-url", "", "absolute URL replacing the derived one")
	flags.StringVar(&fields.RedirectTo, "redirect-to", "", "redirect target URL or page:<id>")
	return cmd
}

func (c *cli) pageMoveCommand() *cobra.Command {
	var (
		parent   string
		position int
	)
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Reparent a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid page id %q: %w", args[0], err)
			}
			parentID, err := parseParent(parent)
			if err != nil {
				return err
			}

			m, _, err := c.module(cmd.Context())
			if err != nil {
				return err
			}
			defer m.Close()

			msg := pagescmd.MovePageCommand{ID: id, ParentID: parentID, Position: position, Result: &pages.SaveResult{}}
			if err := m.Commands().Move.Execute(cmd.Context(), msg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "moved %s to %s\n", id, msg.Result.Page.CachedURL)
			for _, p := range msg.Result.Cascaded {
				fmt.Fprintf(out, "  %s %s\n", p.ID, p.CachedURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "new parent page id; empty moves to the roots")
	cmd.Flags().IntVar(&position, "position", 0, "position among siblings")
	return cmd
}

func (c *cli) pageDeleteCommand() *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid page id %q: %w", args[0], err)
			}

			m, _, err := c.module(cmd.Context())
			if err != nil {
				return err
			}
			defer m.Close()

			msg := pagescmd.DeletePageCommand{ID: id, Cascade: cascade, Result: &pages.DeleteResult{}}
			if err := m.Commands().Delete.Execute(cmd.Context(), msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d pages and %d content items\n",
				len(msg.Result.Pages), msg.Result.ContentItems)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "also delete descendants")
	return cmd
}
