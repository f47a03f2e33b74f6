package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/reel/internal/domain"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login [url]",
		Short: "Sign in to a MediaCMS server and make it active",
		Long: "Sign in to a MediaCMS server. The URL defaults to the active connection's. " +
			"A URL without a scheme gets https://. The password is read without echo on a terminal, " +
			"or as the next line of stdin otherwise.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				prompt := newPrompter(cmd)

				rawURL := ""
				if len(args) == 1 {
					rawURL = args[0]
				} else if active := a.sessions.ActiveConnection(); active != nil {
					rawURL = active.URL
				} else {
					value, err := prompt.line("Server URL: ")
					if err != nil {
						return err
					}
					rawURL = value
				}
				if strings.TrimSpace(rawURL) == "" {
					return errors.New("server URL is required")
				}

				if strings.TrimSpace(username) == "" {
					value, err := prompt.line("Username: ")
					if err != nil {
						return err
					}
					username = value
				}
				password, err := prompt.secret("Password: ")
				if err != nil {
					return err
				}

				reqCtx, cancel := a.requestContext(cmd.Context())
				defer cancel()

				conn, err := a.sessions.Login(reqCtx, rawURL, username, password)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"connection": conn,
						"user":       a.sessions.CurrentUser(),
					})
				}
				name := conn.Username
				if user := a.sessions.CurrentUser(); user != nil {
					name = user.DisplayName()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s @ %s\n", name, conn.DisplayName())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Deactivate the current connection (its token stays stored)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				active := a.sessions.ActiveConnection()
				if active == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No active connection")
					return nil
				}
				if err := a.session.Logout(); err != nil {
					return fmt.Errorf("logout: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", active.DisplayName())
				return nil
			})
		},
	}
}

func newWhoAmICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user behind the active connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				conn, err := a.activeConnection()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				if !conn.Authenticated() {
					if ctx.jsonOutput() {
						return writeJSON(cmd, map[string]any{"connection": conn, "user": nil})
					}
					fmt.Fprintf(out, "guest @ %s\n", conn.DisplayName())
					return nil
				}

				reqCtx, cancel := a.requestContext(cmd.Context())
				defer cancel()

				user, err := a.session.RefreshUser(reqCtx)
				if err != nil {
					if errors.Is(err, domain.ErrAuthFailed) {
						return fmt.Errorf("token for %s was rejected; run `reel login` again: %w", conn.DisplayName(), err)
					}
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"connection": conn, "user": user})
				}
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderHeading(user.DisplayName()+" @ "+conn.DisplayName(), colorize))
				fmt.Fprintf(out, "  %-9s %s\n", "Username:", user.Username)
				fmt.Fprintf(out, "  %-9s %s\n", "Email:", dash(user.Email))
				if user.Description != "" {
					fmt.Fprintf(out, "  %-9s %s\n", "About:", user.Description)
				}
				return nil
			})
		},
	}
}

// prompter reads interactive answers from the command's stdin
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, reader: bufio.NewReader(in), out: cmd.ErrOrStderr()}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	value, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && value != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// secret reads a password without echo when stdin is a terminal
func (p *prompter) secret(label string) (string, error) {
	if file, ok := p.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(p.out, label)
		data, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(p.out) // Add newline after hidden input
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(data), nil
	}
	value, err := p.line(label)
	if err != nil {
		return "", err
	}
	return value, nil
}
