package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/search"
)

func newConnectionsCommand(ctx *commandContext) *cobra.Command {
	listCmd := newConnectionsListCommand(ctx)

	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Manage known MediaCMS connections",
		Args:    cobra.NoArgs,
		RunE:    listCmd.RunE,
	}
	cmd.Flags().AddFlagSet(listCmd.Flags())

	cmd.AddCommand(listCmd)
	cmd.AddCommand(newConnectionsAddCommand(ctx))
	cmd.AddCommand(newConnectionsRemoveCommand(ctx))
	cmd.AddCommand(newConnectionsUseCommand(ctx))
	return cmd
}

func newConnectionsListCommand(ctx *commandContext) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List known connections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				results := search.Connections(filter, a.sessions.Connections())
				if ctx.jsonOutput() {
					return writeJSON(cmd, search.Items(results))
				}

				out := cmd.OutOrStdout()
				if len(results) == 0 {
					if filter != "" {
						fmt.Fprintln(out, "No connections match the filter")
					} else {
						fmt.Fprintln(out, "No connections. Run `reel login <url>` or `reel connections add <url>`.")
					}
					return nil
				}

				activeID := ""
				if active := a.sessions.ActiveConnection(); active != nil {
					activeID = active.ID
				}
				fmt.Fprintln(out, renderConnectionTable(results, activeID, shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Fuzzy filter by name")
	return cmd
}

func newConnectionsAddCommand(ctx *commandContext) *cobra.Command {
	var username, token string
	var use bool

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Register a connection without signing in",
		Long: "Register a guest connection, or one with an existing API token. " +
			"No request is made to the server.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("server URL is required")
			}
			return ctx.withApp(func(a *app) error {
				conn := a.sessions.NewConnection(args[0], strings.TrimSpace(username), strings.TrimSpace(token))
				if err := a.sessions.AddConnection(conn); err != nil {
					return fmt.Errorf("add connection: %w", err)
				}
				if use {
					if err := a.sessions.SetActiveConnection(&conn); err != nil {
						return fmt.Errorf("activate connection: %w", err)
					}
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, conn)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", conn.DisplayName(), conn.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username the token belongs to")
	cmd.Flags().StringVar(&token, "token", "", "Existing API token")
	cmd.Flags().BoolVar(&use, "use", false, "Make the new connection active")
	return cmd
}

func newConnectionsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|name>",
		Aliases: []string{"remove"},
		Short:   "Forget a connection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				conn, err := findConnection(a, args[0])
				if err != nil {
					return err
				}
				if err := a.sessions.RemoveConnection(conn.ID); err != nil {
					return fmt.Errorf("remove connection: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", conn.DisplayName())
				return nil
			})
		},
	}
}

func newConnectionsUseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id|name>",
		Short: "Make a connection active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				conn, err := findConnection(a, args[0])
				if err != nil {
					return err
				}
				if err := a.sessions.SetActiveConnection(&conn); err != nil {
					return fmt.Errorf("activate connection: %w", err)
				}

				out := cmd.OutOrStdout()
				if !conn.Authenticated() {
					fmt.Fprintf(out, "Using %s as guest\n", conn.DisplayName())
					return nil
				}

				reqCtx, cancel := a.requestContext(cmd.Context())
				defer cancel()
				user, err := a.session.RefreshUser(reqCtx)
				if err != nil {
					// The selection stands; a stale token only affects authenticated calls
					fmt.Fprintf(out, "Using %s\n", conn.DisplayName())
					fmt.Fprintln(cmd.ErrOrStderr(), renderNote("could not refresh user: "+err.Error(), shouldColorize(cmd.ErrOrStderr())))
					return nil
				}
				fmt.Fprintf(out, "Using %s as %s\n", conn.DisplayName(), user.DisplayName())
				return nil
			})
		},
	}
}

func findConnection(a *app, ref string) (domain.Connection, error) {
	conn, ok := a.sessions.FindConnection(strings.TrimSpace(ref))
	if !ok {
		return domain.Connection{}, fmt.Errorf("no connection matches %q; see `reel connections`", ref)
	}
	return conn, nil
}
