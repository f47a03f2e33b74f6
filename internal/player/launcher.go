package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoPlayer is returned when neither the configured player, a known
// candidate nor the system opener could be started
var ErrNoPlayer = errors.New("no media player available")

// launchPath is one way to start a player on a platform.
// Paths prefixed with "open-a:" go through macOS `open -a`.
type launchPath struct {
	path      string
	openFlags []string
}

// players maps a known player to its launch paths per platform
var players = map[string]map[string][]launchPath{
	"mpv": {
		"darwin":  {{path: "mpv"}},
		"linux":   {{path: "mpv"}},
		"windows": {{path: "mpv"}},
	},
	"vlc": {
		"darwin":  {{path: "vlc"}, {path: "open-a:VLC"}},
		"linux":   {{path: "vlc"}},
		"windows": {{path: "vlc"}},
	},
	"iina": {
		"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}},
	},
	"celluloid": {
		"linux": {{path: "celluloid"}},
	},
	"potplayer": {
		"windows": {{path: "PotPlayerMini64.exe"}, {path: "PotPlayerMini.exe"}},
	},
}

// candidatePlayers is the preferred detection order per platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "vlc", "mpv"},
	"linux":   {"mpv", "celluloid", "vlc"},
	"windows": {"vlc", "mpv", "potplayer"},
}

// Launcher opens stream URLs in an external player
type Launcher struct {
	command string
	args    []string
	logger  *slog.Logger

	goos     string
	lookPath func(string) (string, error)
	run      func(name string, args ...string) error // blocks until exit (open -a)
	start    func(name string, args ...string) error // returns once started
}

// NewLauncher creates a launcher. An empty command auto-detects a player.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Launch opens url in the configured player, then the first detected
// candidate, then the system default handler.
func (l *Launcher) Launch(url string) error {
	if url == "" {
		return errors.New("empty stream URL")
	}

	if l.command != "" {
		l.logger.Info("using configured player", "command", l.command, "url", url)
		return l.launchConfigured(url)
	}

	if name, err := l.detectAndLaunch(url); err == nil {
		l.logger.Info("launched with detected player", "player", name)
		return nil
	}

	l.logger.Info("no candidate players found, using system default")
	return l.launchDefault(url)
}

func (l *Launcher) launchConfigured(url string) error {
	if _, err := l.lookPath(l.command); err != nil && l.goos == "darwin" {
		// GUI apps on macOS are usually not in PATH
		return l.start("open", openArgs(l.command, l.args, darwinOpenFlags(l.command), url)...)
	}

	args := append(append([]string{}, l.args...), url)
	if err := l.start(l.command, args...); err != nil {
		return fmt.Errorf("start %s: %w", l.command, err)
	}
	return nil
}

func (l *Launcher) detectAndLaunch(url string) (string, error) {
	candidates, ok := candidatePlayers[l.goos]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		for _, lp := range players[name][l.goos] {
			var err error
			if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
				err = l.run("open", openArgs(app, nil, lp.openFlags, url)...)
			} else if _, err = l.lookPath(lp.path); err == nil {
				err = l.start(lp.path, url)
			}
			if err == nil {
				return name, nil
			}
			l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
		}
	}
	return "", ErrNoPlayer
}

func (l *Launcher) launchDefault(url string) error {
	var err error
	switch l.goos {
	case "darwin":
		err = l.start("open", url)
	case "windows":
		err = l.start("cmd", "/c", "start", "", url)
	default:
		err = l.start("xdg-open", url)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoPlayer, err)
	}
	return nil
}

// openArgs builds the argument list for `open [flags] -a app [--args ...] url`
func openArgs(app string, playerArgs, openFlags []string, url string) []string {
	args := append([]string{}, openFlags...)
	args = append(args, "-a", app)
	if len(playerArgs) > 0 {
		args = append(args, "--args")
		args = append(args, playerArgs...)
	}
	return append(args, url)
}

func darwinOpenFlags(command string) []string {
	base := strings.ToLower(filepath.Base(command))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, lp := range players[base]["darwin"] {
		if strings.HasPrefix(lp.path, "open-a:") {
			return lp.openFlags
		}
	}
	return nil
}
