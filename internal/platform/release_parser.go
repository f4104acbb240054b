package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/mp3me/internal/model"
)

// Timeout constants
const (
	DefaultReleaseParseTimeout = 60 * time.Second
)

// Release title constants
const (
	DefaultReleaseTitle = "Unknown Release"
	MinPrefixLength     = 10
)

// ReleaseTrack is one entry of a release playlist
type ReleaseTrack struct {
	VideoID string
	Title   string
}

// TrackLister lists the entries of a playlist id in order
type TrackLister func(ctx context.Context, playlistID string) ([]ReleaseTrack, error)

// ReleaseParser resolves the track list of an album or single playlist
type ReleaseParser struct {
	timeout time.Duration
	lister  TrackLister
}

// NewReleaseParser creates a parser backed by the ytdlp library
func NewReleaseParser() *ReleaseParser {
	return &ReleaseParser{
		timeout: DefaultReleaseParseTimeout,
		lister:  listPlaylistItems,
	}
}

// SetTimeout sets the timeout for parsing operations
func (p *ReleaseParser) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// SetLister replaces the playlist listing function
func (p *ReleaseParser) SetLister(lister TrackLister) {
	if lister != nil {
		p.lister = lister
	}
}

func listPlaylistItems(ctx context.Context, playlistID string) ([]ReleaseTrack, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	tracks := make([]ReleaseTrack, 0, len(items))
	for _, it := range items {
		tracks = append(tracks, ReleaseTrack{VideoID: it.VideoID, Title: it.Title})
	}
	return tracks, nil
}

// ParseRelease lists the songs of a release URL. Songs get track numbers in
// playlist order and inherit the release artist, album and year.
func (p *ReleaseParser) ParseRelease(ctx context.Context, releaseURL string, release *model.Release) (*model.Release, error) {
	playlistID, err := ExtractPlaylistID(releaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid release URL %s: %w", releaseURL, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	items, err := p.lister(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get release items: %w", err)
	}

	out := &model.Release{ID: playlistID, URL: releaseURL, ReleaseType: "album"}
	if release != nil {
		copied := *release
		out = &copied
		out.Songs = nil
		if out.ID == "" {
			out.ID = playlistID
		}
		if out.URL == "" {
			out.URL = releaseURL
		}
	}

	titles := make([]string, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		titles = append(titles, it.Title)
		out.Songs = append(out.Songs, &model.Song{
			ID:           it.VideoID,
			Title:        it.Title,
			Artist:       out.Artist,
			AlbumArtist:  out.Artist,
			Album:        out.Title,
			Year:         out.Year,
			VideoID:      it.VideoID,
			URL:          VideoURL(it.VideoID),
			ThumbnailURL: out.ThumbnailURL,
			Selected:     true,
		})
	}

	if out.Title == "" {
		out.Title = releaseTitleFromTracks(titles)
		for _, s := range out.Songs {
			s.Album = out.Title
		}
	}

	total := len(out.Songs)
	for i, s := range out.Songs {
		s.TrackNumber = i + 1
		s.TrackTotal = total
	}
	out.TrackCount = total
	return out, nil
}

// releaseTitleFromTracks guesses an album title from the shared prefix of its track titles
func releaseTitleFromTracks(titles []string) string {
	if len(titles) == 0 {
		return DefaultReleaseTitle
	}
	if len(titles) > 1 {
		prefix := titles[0]
		for _, t := range titles[1:] {
			prefix = findCommonPrefix(prefix, t)
		}
		prefix = strings.TrimRight(strings.TrimSpace(strings.ToValidUTF8(prefix, "")), "-–|: ")
		if len(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix)
		}
	}
	return titles[0]
}

// findCommonPrefix finds the common prefix between two strings
func findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
