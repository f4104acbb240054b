package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ytget/mp3me/internal/network"
)

// LRCLibSearchURL is the lrclib.net search endpoint
const LRCLibSearchURL = "https://lrclib.net/api/search"

// ErrNoLyrics is returned when lrclib has nothing for a song
var ErrNoLyrics = errors.New("no lyrics found")

var lrcTimestamp = regexp.MustCompile(`\[\d+:\d+(\.\d+)?\]\s?`)

type lrclibResult struct {
	ID           int    `json:"id"`
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	AlbumName    string `json:"albumName"`
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

// LyricsClient fetches lyrics from lrclib
type LyricsClient struct {
	http    *network.Client
	baseURL string
}

func NewLyricsClient(client *network.Client) *LyricsClient {
	return &LyricsClient{http: client, baseURL: LRCLibSearchURL}
}

// SetBaseURL points the client at another search endpoint
func (c *LyricsClient) SetBaseURL(u string) {
	c.baseURL = u
}

// Find returns plain lyrics, or synced lyrics without timestamps
func (c *LyricsClient) Find(ctx context.Context, artist, title string) (string, error) {
	params := url.Values{}
	params.Set("track_name", title)
	if artist != "" {
		params.Set("artist_name", artist)
	}

	var results []lrclibResult
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &results); err != nil {
		return "", fmt.Errorf("lrclib search failed: %w", err)
	}

	for _, res := range results {
		if res.PlainLyrics != "" {
			return strings.TrimSpace(res.PlainLyrics), nil
		}
		if res.SyncedLyrics != "" {
			lyrics := strings.TrimSpace(lrcTimestamp.ReplaceAllString(res.SyncedLyrics, ""))
			if lyrics != "" {
				return lyrics, nil
			}
		}
	}
	return "", ErrNoLyrics
}
