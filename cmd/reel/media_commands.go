package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/domain"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	var limit, offset int
	var all bool

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List media on the active connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if _, err := a.activeConnection(); err != nil {
					return err
				}
				if limit <= 0 {
					limit = a.cfg.API.PageSize
				}

				var (
					videos []domain.Video
					err    error
				)
				if all {
					// No request timeout: the walk may span many pages
					errOut := cmd.ErrOrStderr()
					videos, err = a.library.FetchAll(cmd.Context(), limit, func(loaded, total int) {
						if total < 0 {
							fmt.Fprintf(errOut, "\rLoaded %d", loaded)
							return
						}
						fmt.Fprintf(errOut, "\rLoaded %d/%d", loaded, total)
					})
					fmt.Fprintln(errOut)
				} else {
					reqCtx, cancel := a.requestContext(cmd.Context())
					videos, err = a.library.ListVideos(reqCtx, limit, offset)
					cancel()
				}
				if err != nil {
					return fmt.Errorf("list videos: %w", err)
				}

				return printVideos(cmd, ctx, videos, "No videos")
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Page size (defaults to api.page_size)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of items to skip")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	return cmd
}

func newVideoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "video <token>",
		Short: "Show a video's details (adds it to the watch history)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				reqCtx, cancel := a.requestContext(cmd.Context())
				defer cancel()

				video, err := a.library.GetVideo(reqCtx, args[0])
				if err != nil {
					return describeFetchError("video", args[0], err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, video)
				}
				streamURL, _ := a.playback.StreamURL(*video)
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderVideoDetail(*video, streamURL, shouldColorize(out)))
				return nil
			})
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search media on the active connection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if limit <= 0 {
					limit = a.cfg.API.SearchLimit
				}
				reqCtx, cancel := a.requestContext(cmd.Context())
				defer cancel()

				results, err := a.search.Search(reqCtx, strings.Join(args, " "), limit)
				if err != nil {
					return fmt.Errorf("search: %w", err)
				}
				return printVideos(cmd, ctx, results, "No results")
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (defaults to api.search_limit)")
	return cmd
}

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "playlists",
		Short: "List playlists on the active connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				reqCtx, cancel := a.requestContext(cmd.Context())
				defer cancel()

				playlists, err := a.playlist.GetPlaylists(reqCtx)
				if err != nil {
					return fmt.Errorf("list playlists: %w", err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, playlists)
				}
				out := cmd.OutOrStdout()
				if len(playlists) == 0 {
					fmt.Fprintln(out, "No playlists")
					return nil
				}
				fmt.Fprintln(out, renderPlaylistTable(playlists))
				return nil
			})
		},
	}
}

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "playlist <token>",
		Short: "Show a playlist and its media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				reqCtx, cancel := a.requestContext(cmd.Context())
				defer cancel()

				playlist, err := a.playlist.GetPlaylist(reqCtx, args[0])
				if err != nil {
					return describeFetchError("playlist", args[0], err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, playlist)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderHeading(playlist.Title, shouldColorize(out)))
				if desc := strings.TrimSpace(playlist.Description); desc != "" {
					fmt.Fprintln(out, desc)
				}
				if len(playlist.Media) == 0 {
					fmt.Fprintln(out, "This playlist is empty")
					return nil
				}
				fmt.Fprintln(out, renderVideoTable(playlist.Media))
				return nil
			})
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently watched videos, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				videos := a.search.SearchHistory(strings.TrimSpace(filter))
				empty := "Nothing watched yet"
				if filter != "" {
					empty = "Nothing in the history matches the filter"
				}
				return printVideos(cmd, ctx, videos, empty)
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Fuzzy filter by title")
	return cmd
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "play <token>",
		Short: "Open a video in the external player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				reqCtx, cancel := a.requestContext(cmd.Context())
				defer cancel()

				out := cmd.OutOrStdout()
				if printOnly {
					video, err := a.library.GetVideo(reqCtx, args[0])
					if err != nil {
						return describeFetchError("video", args[0], err)
					}
					streamURL, err := a.playback.StreamURL(*video)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, streamURL)
					return nil
				}

				video, err := a.playback.PlayToken(reqCtx, args[0])
				if err != nil {
					if video == nil {
						return describeFetchError("video", args[0], err)
					}
					return fmt.Errorf("start playback: %w", err)
				}
				fmt.Fprintf(out, "Playing %s\n", video.Title)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print-url", false, "Print the stream URL instead of launching a player")
	return cmd
}

func printVideos(cmd *cobra.Command, ctx *commandContext, videos []domain.Video, empty string) error {
	if ctx.jsonOutput() {
		if videos == nil {
			videos = []domain.Video{}
		}
		return writeJSON(cmd, videos)
	}
	out := cmd.OutOrStdout()
	if len(videos) == 0 {
		fmt.Fprintln(out, empty)
		return nil
	}
	fmt.Fprintln(out, renderVideoTable(videos))
	return nil
}

func describeFetchError(kind, token string, err error) error {
	if errors.Is(err, domain.ErrItemNotFound) {
		return fmt.Errorf("%s %q not found", kind, token)
	}
	return fmt.Errorf("get %s %q: %w", kind, token, err)
}
