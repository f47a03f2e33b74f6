package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/tui"
)

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				model := tui.NewModel(tui.Services{
					Sessions: a.sessions,
					Library:  a.library,
					Search:   a.search,
					Playlist: a.playlist,
					Playback: a.playback,
					Session:  a.session,
				}, tui.Options{
					PageSize:    a.cfg.API.PageSize,
					SearchLimit: a.cfg.API.SearchLimit,
					Timeout:     a.cfg.API.Timeout,
				})

				p := tea.NewProgram(
					model,
					tea.WithAltScreen(),
					tea.WithContext(cmd.Context()),
				)

				a.logger.Info("starting TUI")
				if _, err := p.Run(); err != nil {
					a.logger.Error("TUI error", "error", err)
					return fmt.Errorf("TUI error: %w", err)
				}
				a.logger.Info("shutting down")
				return nil
			})
		},
	}
}
