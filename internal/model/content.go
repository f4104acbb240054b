package model

import (
	"fmt"
	"strings"
)

// ContentType identifies what a search result or download item refers to
type ContentType string

const (
	ContentSong     ContentType = "song"
	ContentAlbum    ContentType = "album"
	ContentSingle   ContentType = "single"
	ContentRelease  ContentType = "release"
	ContentArtist   ContentType = "artist"
	ContentPlaylist ContentType = "playlist"
)

// YouTubeMusicWatchURL is the canonical watch URL for a video id
const YouTubeMusicWatchURL = "https://music.youtube.com/watch?v=%s"

// IsCollection reports whether the content is downloaded as a set of songs
func (c ContentType) IsCollection() bool {
	switch c {
	case ContentAlbum, ContentSingle, ContentRelease, ContentPlaylist:
		return true
	}
	return false
}

// ParseContentType maps user input to a ContentType, defaulting to song
func ParseContentType(s string) ContentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "album", "albums":
		return ContentAlbum
	case "single", "singles", "ep":
		return ContentSingle
	case "release", "releases":
		return ContentRelease
	case "artist", "artists":
		return ContentArtist
	case "playlist", "playlists":
		return ContentPlaylist
	default:
		return ContentSong
	}
}

// Song is a single downloadable track
type Song struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Album        string `json:"album,omitempty"`
	AlbumArtist  string `json:"album_artist,omitempty"`
	Duration     string `json:"duration,omitempty"`
	DurationSec  int    `json:"duration_sec,omitempty"`
	TrackNumber  int    `json:"track_number,omitempty"`
	TrackTotal   int    `json:"track_total,omitempty"`
	Year         string `json:"year,omitempty"`
	Genre        string `json:"genre,omitempty"`
	VideoID      string `json:"video_id,omitempty"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Selected     bool   `json:"selected"`
}

// WatchURL returns a URL yt-dlp can download. Placeholder URLs produced for
// tracks without a video id are replaced when the id is known.
func (s *Song) WatchURL() string {
	if s.URL != "" && !strings.Contains(s.URL, "watch?v=song_") {
		return s.URL
	}
	if s.VideoID != "" {
		return fmt.Sprintf(YouTubeMusicWatchURL, s.VideoID)
	}
	return ""
}

// Release is an album, single or EP
type Release struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	Year         string  `json:"year,omitempty"`
	TrackCount   int     `json:"track_count,omitempty"`
	Songs        []*Song `json:"songs,omitempty"`
	ReleaseType  string  `json:"release_type"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// SelectedSongs returns the songs marked for download, or all songs when none is selected
func (r *Release) SelectedSongs() []*Song {
	selected := make([]*Song, 0, len(r.Songs))
	for _, s := range r.Songs {
		if s.Selected {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return r.Songs
	}
	return selected
}

// SelectAll marks every song of the release as selected or not
func (r *Release) SelectAll(selected bool) {
	for _, s := range r.Songs {
		s.Selected = selected
	}
}

// Artist is a channel with releases
type Artist struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Releases     []*Release `json:"releases,omitempty"`
}

// SongCount returns the number of known songs over all releases
func (a *Artist) SongCount() int {
	total := 0
	for _, r := range a.Releases {
		total += len(r.SelectedSongs())
	}
	return total
}

// SearchResult wraps exactly one of Song, Release or Artist
type SearchResult struct {
	Type    ContentType `json:"type"`
	Song    *Song       `json:"song,omitempty"`
	Release *Release    `json:"release,omitempty"`
	Artist  *Artist     `json:"artist,omitempty"`
}

// Title returns the primary display line of the result
func (r *SearchResult) Title() string {
	switch {
	case r.Song != nil:
		return r.Song.Title
	case r.Release != nil:
		return r.Release.Title
	case r.Artist != nil:
		return r.Artist.Name
	}
	return ""
}

// Subtitle returns the secondary display line of the result
func (r *SearchResult) Subtitle() string {
	switch {
	case r.Song != nil:
		parts := []string{r.Song.Artist}
		if r.Song.Album != "" {
			parts = append(parts, r.Song.Album)
		}
		if r.Song.Duration != "" {
			parts = append(parts, r.Song.Duration)
		}
		return strings.Join(nonEmpty(parts), " • ")
	case r.Release != nil:
		parts := []string{r.Release.Artist, capitalize(r.Release.ReleaseType), r.Release.Year}
		return strings.Join(nonEmpty(parts), " • ")
	case r.Artist != nil:
		return "Artist"
	}
	return ""
}

// URL returns the source URL of the result
func (r *SearchResult) URL() string {
	switch {
	case r.Song != nil:
		return r.Song.WatchURL()
	case r.Release != nil:
		return r.Release.URL
	case r.Artist != nil:
		return r.Artist.URL
	}
	return ""
}

// ThumbnailURL returns the result thumbnail, if any
func (r *SearchResult) ThumbnailURL() string {
	switch {
	case r.Song != nil:
		return r.Song.ThumbnailURL
	case r.Release != nil:
		return r.Release.ThumbnailURL
	case r.Artist != nil:
		return r.Artist.ThumbnailURL
	}
	return ""
}

// FormatDuration formats milliseconds as M:SS, or "" when zero
func FormatDuration(milliseconds int64) string {
	if milliseconds <= 0 {
		return ""
	}
	seconds := milliseconds / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatSeconds formats seconds as M:SS, or "" when zero
func FormatSeconds(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
