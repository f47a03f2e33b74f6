package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Connection is a registered MediaCMS server endpoint plus optional credentials
type Connection struct {
	ID       string `json:"id"`                 // Opaque identifier, stable across restarts
	Name     string `json:"name"`               // Display name (host portion of URL)
	URL      string `json:"url"`                // Normalized base URL, no trailing slash
	Username string `json:"username,omitempty"` // Empty for guest connections
	Token    string `json:"token,omitempty"`    // Bearer token, empty until authenticated
}

// Authenticated returns true if the connection carries a bearer token
func (c Connection) Authenticated() bool {
	return c.Token != ""
}

// DisplayName returns the connection name, falling back to its URL
func (c Connection) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.URL
}

// HostName derives a display name from the host portion of a base URL.
// Falls back to the URL with its scheme stripped when it cannot be parsed.
func HostName(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	if i := strings.Index(baseURL, "://"); i >= 0 {
		return baseURL[i+3:]
	}
	return baseURL
}

// User is the identity associated with an authenticated connection
type User struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// DisplayName returns the user's full name, falling back to the username
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Video is a read-only media entry sourced from the server.
// Watch history entries are snapshots of this struct.
type Video struct {
	Token            string        `json:"friendly_token"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	ThumbnailURL     string        `json:"thumbnail_url"`
	URL              string        `json:"url"`                          // Playable path relative to the server
	OriginalMediaURL string        `json:"original_media_url,omitempty"` // From encodings_info
	Author           string        `json:"author"`
	Views            int           `json:"views"`
	Duration         time.Duration `json:"duration"`
	AddedAt          time.Time     `json:"add_date"`
	EditedAt         time.Time     `json:"edit_date"`
	MediaType        string        `json:"media_type"`
	State            string        `json:"state"`
}

// FormattedDuration returns the duration as m:ss (e.g., "12:05")
func (v Video) FormattedDuration() string {
	total := int(v.Duration.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormattedViews returns the abbreviated view count
func (v Video) FormattedViews() string {
	return FormatViews(v.Views)
}

// FormatViews abbreviates a view count: 1500 -> "1.5K", 2300000 -> "2.3M"
func FormatViews(views int) string {
	switch {
	case views >= 1000000:
		return fmt.Sprintf("%.1fM", float64(views)/1000000)
	case views >= 1000:
		return fmt.Sprintf("%.1fK", float64(views)/1000)
	default:
		return fmt.Sprintf("%d", views)
	}
}

// Playlist is a read-only playlist sourced from the server
type Playlist struct {
	Token       string  `json:"friendly_token"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	MediaCount  int     `json:"media_count"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Media       []Video `json:"media,omitempty"` // Only populated by detail fetches
}
