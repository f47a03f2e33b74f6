package mediacms

import "encoding/json"

// Media represents a video entry from the /media, /search and /media/{token} endpoints
type Media struct {
	FriendlyToken string          `json:"friendly_token"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ThumbnailURL  string          `json:"thumbnail_url"`
	ThumbnailTime string          `json:"thumbnail_time,omitempty"`
	URL           string          `json:"url"`
	Author        string          `json:"author,omitempty"`
	AuthorName    string          `json:"author_name,omitempty"`
	User          string          `json:"user,omitempty"`
	Views         int             `json:"views"`
	Duration      float64         `json:"duration"` // Seconds, may be fractional
	AddDate       string          `json:"add_date"`
	EditDate      string          `json:"edit_date"`
	MediaType     string          `json:"media_type"`
	State         string          `json:"state"`
	EncodingsInfo json.RawMessage `json:"encodings_info,omitempty"` // Object keyed by resolution, or [] when empty
}

// User represents the /whoami response
type User struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Playlist represents a playlist from /playlists and /playlists/{token}
type Playlist struct {
	FriendlyToken string  `json:"friendly_token"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	MediaCount    int     `json:"media_count"`
	Thumbnail     string  `json:"thumbnail,omitempty"`
	ThumbnailURL  string  `json:"thumbnail_url,omitempty"`
	PlaylistMedia []Media `json:"playlist_media,omitempty"` // Detail responses only
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response from POST /login
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// errorResponse is the DRF-style error body
type errorResponse struct {
	Detail string `json:"detail"`
}

// listEnvelope is the paginated list shape: {"count": N, "results": [...]}
type listEnvelope struct {
	Count   *int            `json:"count"`
	Results json.RawMessage `json:"results"`
}
