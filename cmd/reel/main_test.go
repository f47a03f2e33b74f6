package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/mmcdole/reel/internal/domain"
)

type cliTestEnv struct {
	server     *httptest.Server
	configPath string
	baseDir    string
}

// fakeMediaCMS serves a small catalogue and accepts alice/secret
func fakeMediaCMS(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username != "alice" || req.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"detail":"Invalid credentials."}`)
			return
		}
		io.WriteString(w, `{"token":"good","username":"alice"}`)
	})
	mux.HandleFunc("/api/v1/whoami", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Invalid token."}`)
			return
		}
		io.WriteString(w, `{"username":"alice","name":"Alice","email":"alice@example.com"}`)
	})
	mux.HandleFunc("/api/v1/media", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		const total = 3
		var items []string
		for i := skip; i < total && i < skip+limit; i++ {
			items = append(items, fmt.Sprintf(`{"friendly_token":"v%d","title":"Video %d","url":"/view?m=v%d","views":1500}`, i, i, i))
		}
		fmt.Fprintf(w, `{"count":%d,"results":[%s]}`, total, strings.Join(items, ","))
	})
	mux.HandleFunc("/api/v1/media/", func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.URL.Path, "/api/v1/media/")
		if token == "missing" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"Not found."}`)
			return
		}
		fmt.Fprintf(w, `{"friendly_token":%q,"title":"Detail %s","url":"/view?m=%s",
			"encodings_info":{"original_media_url":"/media/original/%s.mp4"}}`, token, token, token, token)
	})
	mux.HandleFunc("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "cats and dogs" {
			io.WriteString(w, `[]`)
			return
		}
		io.WriteString(w, `[{"friendly_token":"c1","title":"Cats and dogs"}]`)
	})
	mux.HandleFunc("/api/v1/playlists", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"count":1,"results":[{"friendly_token":"pl1","title":"Mix","media_count":1}]}`)
	})
	mux.HandleFunc("/api/v1/playlists/pl1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"friendly_token":"pl1","title":"Mix","playlist_media":[{"friendly_token":"v1","title":"Video 1"}]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)

	configPath := filepath.Join(base, "config.yaml")
	content := fmt.Sprintf(`store:
  path: %q
api:
  timeout: 5s
  page_size: 2
logging:
  file: %q
  level: DEBUG
player:
  command: "true"
ui:
  theme: mono
`, filepath.Join(base, "reel.db"), filepath.Join(base, "reel.log"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		server:     fakeMediaCMS(t),
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, env, "", args...)
	if err != nil {
		t.Fatalf("reel %s: %v (stderr: %s)", strings.Join(args, " "), err, stderr)
	}
	return out
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func listConnections(t *testing.T, env *cliTestEnv) []domain.Connection {
	t.Helper()
	var conns []domain.Connection
	if err := json.Unmarshal([]byte(mustRun(t, env, "--json", "connections")), &conns); err != nil {
		t.Fatalf("decode connections: %v", err)
	}
	return conns
}

func TestLoginUpsertsConnection(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "alice\nsecret\n", "login", env.server.URL+"/")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireContains(t, out, "Logged in as Alice @ ")

	conns := listConnections(t, env)
	if len(conns) != 1 || conns[0].Token != "good" || conns[0].URL != env.server.URL {
		t.Fatalf("unexpected connections: %+v", conns)
	}
	firstID := conns[0].ID

	// No URL argument: defaults to the active connection
	if _, _, err := runCLI(t, env, "secret\n", "login", "--username", "alice"); err != nil {
		t.Fatalf("second login: %v", err)
	}
	conns = listConnections(t, env)
	if len(conns) != 1 || conns[0].ID != firstID {
		t.Fatalf("login should update the existing connection, got %+v", conns)
	}

	requireContains(t, mustRun(t, env, "whoami"), "alice@example.com")
}

func TestLoginFailureShowsServerDetail(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "alice\nwrong\n", "login", env.server.URL)
	if err == nil || err.Error() != "Invalid credentials." {
		t.Fatalf("expected server detail, got %v", err)
	}
	if conns := listConnections(t, env); len(conns) != 0 {
		t.Fatalf("failed login must not store a connection: %+v", conns)
	}
}

func TestCommandsRequireActiveConnection(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, args := range [][]string{{"videos"}, {"search", "x"}, {"playlists"}, {"whoami"}} {
		_, _, err := runCLI(t, env, "", args...)
		if err == nil || !strings.Contains(err.Error(), "no active connection") {
			t.Fatalf("reel %s: expected no active connection error, got %v", args[0], err)
		}
	}
}

func TestBrowsingAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "connections", "add", env.server.URL, "--use")

	out := mustRun(t, env, "videos")
	requireContains(t, out, "Video 0")
	requireContains(t, out, "1.5K")
	if strings.Contains(out, "Video 2") {
		t.Fatalf("page size should limit the listing:\n%s", out)
	}

	requireContains(t, mustRun(t, env, "videos", "--offset", "2"), "Video 2")

	var all []domain.Video
	if err := json.Unmarshal([]byte(mustRun(t, env, "--json", "videos", "--all")), &all); err != nil {
		t.Fatalf("decode videos: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 videos, got %d", len(all))
	}

	requireContains(t, mustRun(t, env, "search", "cats", "and", "dogs"), "Cats and dogs")
	requireContains(t, mustRun(t, env, "search", "birds"), "No results")

	requireContains(t, mustRun(t, env, "history"), "Nothing watched yet")

	out = mustRun(t, env, "video", "v1")
	requireContains(t, out, "Detail v1")
	requireContains(t, out, env.server.URL+"/media/original/v1.mp4")
	mustRun(t, env, "video", "v2")

	out = mustRun(t, env, "history")
	if i, j := strings.Index(out, "Detail v2"), strings.Index(out, "Detail v1"); i < 0 || j < 0 || i > j {
		t.Fatalf("history should list newest first:\n%s", out)
	}
	requireContains(t, mustRun(t, env, "history", "--filter", "zzz"), "matches the filter")

	if _, _, err := runCLI(t, env, "", "video", "missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}

	out = mustRun(t, env, "playlists")
	requireContains(t, out, "Mix")
	requireContains(t, mustRun(t, env, "playlist", "pl1"), "Video 1")
}

func TestPlay(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "connections", "add", env.server.URL, "--use")

	out := mustRun(t, env, "play", "v0", "--print-url")
	if strings.TrimSpace(out) != env.server.URL+"/media/original/v0.mp4" {
		t.Fatalf("unexpected stream URL %q", out)
	}

	requireContains(t, mustRun(t, env, "play", "v1"), "Playing Detail v1")
	requireContains(t, mustRun(t, env, "history"), "Detail v1")
}

func TestConnectionsUseAndRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "connections", "add", "https://one.example")
	mustRun(t, env, "connections", "add", env.server.URL, "--username", "alice", "--token", "good")

	requireContains(t, mustRun(t, env, "connections", "use", "one.example"), "Using one.example as guest")

	out := mustRun(t, env, "connections", "ls", "--filter", "one")
	requireContains(t, out, "one.example")
	if strings.Contains(out, "127.0.0.1") {
		t.Fatalf("filter should hide other connections:\n%s", out)
	}

	requireContains(t, mustRun(t, env, "connections", "use", env.server.URL), "as Alice")

	mustRun(t, env, "connections", "rm", env.server.URL)
	conns := listConnections(t, env)
	if len(conns) != 1 || conns[0].Name != "one.example" {
		t.Fatalf("unexpected connections after rm: %+v", conns)
	}
	requireContains(t, mustRun(t, env, "logout"), "No active connection")

	if _, _, err := runCLI(t, env, "", "connections", "use", "nope"); err == nil {
		t.Fatal("expected error for unknown connection")
	}
}

func TestConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "out", "config.yaml")

	requireContains(t, mustRun(t, env, "config", "init", "--path", target), "Wrote default configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists")
	}
	mustRun(t, env, "config", "init", "--path", target, "--overwrite")

	requireContains(t, mustRun(t, env, "config", "show"), "page_size")
}
