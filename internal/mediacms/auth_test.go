package mediacms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/mmcdole/reel/internal/domain"
)

func TestLoginPostsCredentialsWithoutBearer(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Fatalf("login should be anonymous, got %q", auth)
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Username != "alice" || req.Password != "secret" {
			t.Fatalf("unexpected credentials: %+v", req)
		}
		io.WriteString(w, `{"token":"abc","username":"alice"}`)
	})

	token, err := NewClient(server.URL, "old-token", quietLogger()).Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "abc" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestLoginRejectedCarriesDetail(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"invalid credentials"}`)
	})

	_, err := NewAuthenticator(quietLogger()).Login(context.Background(), server.URL, "alice", "wrong")
	var statusErr *domain.HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest || statusErr.Detail != "invalid credentials" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	if _, err := NewClient(server.URL, "", quietLogger()).Login(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected error when response lacks a token")
	}
}

func TestAuthenticatorWhoAmI(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/whoami" || r.Header.Get("Authorization") != "Bearer abc" {
			t.Fatalf("unexpected request: %s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}
		io.WriteString(w, `{"username":"alice","thumbnail_url":"/media/userlogos/a.png"}`)
	})

	user, err := NewAuthenticator(quietLogger()).WhoAmI(context.Background(), server.URL, "abc")
	if err != nil {
		t.Fatalf("WhoAmI: %v", err)
	}
	if user.Thumbnail != server.URL+"/media/userlogos/a.png" {
		t.Fatalf("unexpected thumbnail: %q", user.Thumbnail)
	}
}
