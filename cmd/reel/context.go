package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/log"
	"github.com/mmcdole/reel/internal/mediacms"
	"github.com/mmcdole/reel/internal/player"
	"github.com/mmcdole/reel/internal/service"
	"github.com/mmcdole/reel/internal/session"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tui/styles"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// app is everything a command needs, wired from the configuration
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	sessions *session.Service
	library  *service.LibraryService
	search   *service.SearchService
	playlist *service.PlaylistService
	playback *service.PlaybackService
	session  *service.SessionService

	closers []io.Closer
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

// requestContext bounds a single API call by the configured timeout
func (a *app) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.cfg.API.Timeout)
}

// activeConnection returns the active connection or ErrNoActiveConnection
// with a hint on how to pick one
func (a *app) activeConnection() (domain.Connection, error) {
	conn := a.sessions.ActiveConnection()
	if conn == nil {
		return domain.Connection{}, fmt.Errorf("%w; run `reel login <url>` or `reel connections use <id>`", domain.ErrNoActiveConnection)
	}
	return *conn, nil
}

// withApp opens the store and wires the services for the duration of fn
func (c *commandContext) withApp(fn func(*app) error) error {
	a, err := c.openApp()
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

func (c *commandContext) openApp() (*app, error) {
	cfg, err := config.LoadConfig(c.configPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{cfg: cfg}

	logger, logCloser, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	} else {
		a.closers = append(a.closers, logCloser)
	}
	slog.SetDefault(logger)
	a.logger = logger

	kv, err := store.Open(cfg.Store.Path)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.closers = append(a.closers, kv)

	opts := []mediacms.Option{mediacms.WithTimeout(cfg.API.Timeout)}
	auth := mediacms.NewAuthenticator(logger, opts...)
	factory := mediacms.NewFactory(logger, opts...)

	a.sessions = session.NewService(kv, auth, logger)
	a.sessions.LoadConnections()
	a.sessions.LoadWatchHistory()

	launcher := player.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)

	a.library = service.NewLibraryService(a.sessions, factory, logger)
	a.search = service.NewSearchService(a.sessions, factory, logger)
	a.playlist = service.NewPlaylistService(a.sessions, factory, logger)
	a.playback = service.NewPlaybackService(launcher, a.sessions, factory, logger)
	a.session = service.NewSessionService(a.sessions, factory, logger)

	styles.UseTheme(cfg.UI.Theme)

	logger.Debug("app ready", "version", Version, "store", cfg.Store.Path)
	return a, nil
}
