// Package search finds songs, releases and artists and loads their details.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/platform"
	"github.com/ytget/mp3me/internal/telemetry"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// ErrEmptyQuery is returned for blank queries
var ErrEmptyQuery = errors.New("empty search query")

// ErrNoReleases is returned when an artist page lists nothing downloadable
var ErrNoReleases = errors.New("no releases found")

// DefaultLimit is the per type result limit
const DefaultLimit = 20

// DefaultTypes is the order results are presented in
var DefaultTypes = []model.ContentType{model.ContentArtist, model.ContentAlbum, model.ContentSong}

// Service combines a search backend with yt-dlp detail lookups
type Service struct {
	backend  Backend
	client   ytdlp.Client
	releases *platform.ReleaseParser
	limit    atomic.Int64
}

// NewService creates a search service. parser may be nil, in which case
// release details come from yt-dlp only.
func NewService(backend Backend, client ytdlp.Client, parser *platform.ReleaseParser) *Service {
	s := &Service{backend: backend, client: client, releases: parser}
	s.limit.Store(DefaultLimit)
	return s
}

// SetLimit sets the per type result limit
func (s *Service) SetLimit(n int) {
	if n > 0 {
		s.limit.Store(int64(n))
	}
}

// Search runs the query for each type concurrently. A YouTube URL resolves
// to the single result it points at. Results keep the order of types.
func (s *Service) Search(ctx context.Context, query string, types ...model.ContentType) (results []model.SearchResult, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	span := telemetry.StartSpan(ctx, "search.query", "Search music")
	span.SetTag("query", query)
	ctx = span.Context()
	defer func() { telemetry.Finish(span, err) }()

	if platform.IsYouTubeURL(query) {
		r, err := s.Resolve(ctx, query)
		if err != nil {
			return nil, err
		}
		return []model.SearchResult{*r}, nil
	}

	if len(types) == 0 {
		types = DefaultTypes
	}

	logger := log.WithFields(log.Fields{"module": "search", "function": "Search"})

	limit := int(s.limit.Load())
	perType := make([][]model.SearchResult, len(types))
	errs := make([]error, len(types))
	var wg sync.WaitGroup
	for i, t := range types {
		wg.Add(1)
		go func(i int, t model.ContentType) {
			defer wg.Done()
			perType[i], errs[i] = s.backend.Search(ctx, query, t, limit)
		}(i, t)
	}
	wg.Wait()

	failed := 0
	for i, e := range errs {
		if e != nil {
			failed++
			logger.Warnf("Search for %s failed: %v", types[i], e)
			continue
		}
		results = append(results, perType[i]...)
	}
	if failed == len(types) {
		return nil, fmt.Errorf("search failed: %w", errors.Join(errs...))
	}

	span.SetData("results_count", len(results))
	return results, nil
}

// Resolve turns a YouTube URL into a search result with details loaded
func (s *Service) Resolve(ctx context.Context, rawURL string) (*model.SearchResult, error) {
	ct, err := platform.DetectContentType(rawURL)
	if err != nil {
		return nil, err
	}

	switch ct {
	case model.ContentSong:
		info, err := s.client.Info(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return &model.SearchResult{Type: model.ContentSong, Song: SongFromInfo(info)}, nil

	case model.ContentArtist:
		artist, err := s.ArtistDetails(ctx, &model.Artist{ID: platform.ExtractID(rawURL), URL: rawURL})
		if err != nil {
			return nil, err
		}
		return &model.SearchResult{Type: model.ContentArtist, Artist: artist}, nil

	default:
		release := &model.Release{ID: platform.ExtractID(rawURL), URL: rawURL, ReleaseType: ReleaseAlbum}
		if ct == model.ContentPlaylist {
			release.ReleaseType = ReleasePlaylist
		}
		details, err := s.ReleaseDetails(ctx, release)
		if err != nil {
			return nil, err
		}
		return &model.SearchResult{Type: ct, Release: details}, nil
	}
}

// ReleaseDetails loads the songs of a release. Songs inherit the release
// album, artist, year and thumbnail and are all selected.
func (s *Service) ReleaseDetails(ctx context.Context, release *model.Release) (*model.Release, error) {
	logger := log.WithFields(log.Fields{"module": "search", "function": "ReleaseDetails"})

	if s.releases != nil {
		if _, err := platform.ExtractPlaylistID(release.URL); err == nil {
			out, err := s.releases.ParseRelease(ctx, release.URL, release)
			switch {
			case err != nil:
				logger.Warnf("Release parser failed for %s, falling back to yt-dlp: %v", release.URL, err)
			case len(out.Songs) == 0:
				logger.Warnf("Release parser found no songs in %s, falling back to yt-dlp", release.URL)
			default:
				return out, nil
			}
		}
	}

	entries, err := s.client.ListEntries(ctx, release.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to list release %s: %w", release.URL, err)
	}

	out := *release
	out.Songs = nil
	if out.Title == "" && len(entries) > 0 {
		out.Title = entries[0].PlaylistTitle
	}
	if out.Artist == "" && len(entries) > 0 {
		out.Artist = cleanTopic(entries[0].PlaylistUploader)
		if out.Artist == "" {
			out.Artist = entries[0].ArtistName()
		}
	}
	if out.ThumbnailURL == "" && len(entries) > 0 {
		out.ThumbnailURL = artwork.HighestResThumbnail(entries[0].Thumbnails)
	}

	for _, e := range entries {
		ct, id := classifyEntry(e)
		if ct != model.ContentSong || id == "" {
			continue
		}
		song := songFromEntry(e, id)
		if song.Artist == "" {
			song.Artist = out.Artist
		}
		song.AlbumArtist = out.Artist
		song.Album = out.Title
		song.Year = out.Year
		if out.ThumbnailURL != "" {
			song.ThumbnailURL = out.ThumbnailURL
		}
		out.Songs = append(out.Songs, song)
	}

	total := len(out.Songs)
	for i, song := range out.Songs {
		song.TrackNumber = i + 1
		song.TrackTotal = total
	}
	out.TrackCount = total
	return &out, nil
}

// ArtistDetails loads the releases of an artist from the channel releases
// tab, falling back to the playlists tab. Release songs are not loaded.
func (s *Service) ArtistDetails(ctx context.Context, artist *model.Artist) (*model.Artist, error) {
	logger := log.WithFields(log.Fields{"module": "search", "function": "ArtistDetails"})

	out := *artist
	out.Releases = nil

	for _, tab := range []string{"releases", "playlists"} {
		tabURL := platform.ChannelTabURL(artist.URL, tab)
		entries, err := s.client.ListEntries(ctx, tabURL)
		if err != nil {
			logger.Warnf("Failed to list %s: %v", tabURL, err)
			continue
		}
		for _, e := range entries {
			ct, id := classifyEntry(e)
			if ct != model.ContentRelease || id == "" {
				continue
			}
			r := releaseFromEntry(e, id, ct)
			if out.Name == "" {
				out.Name = cleanTopic(firstNonEmpty(e.PlaylistUploader, e.ArtistName()))
			}
			r.Artist = out.Name
			out.Releases = append(out.Releases, r)
		}
		if len(out.Releases) > 0 {
			break
		}
	}

	if len(out.Releases) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoReleases, artist.URL)
	}
	for _, r := range out.Releases {
		if r.Artist == "" {
			r.Artist = out.Name
		}
	}
	return &out, nil
}

// SongFromInfo builds a song from full yt-dlp video metadata
func SongFromInfo(info *ytdlp.VideoInfo) *model.Song {
	sec := int(info.Duration)
	thumb := artwork.HighestResThumbnail(info.Thumbnails)
	if thumb == "" {
		thumb = info.Thumbnail
	}
	url := info.WebpageURL
	if url == "" {
		url = platform.VideoURL(info.ID)
	}
	return &model.Song{
		ID:           info.ID,
		Title:        info.SongTitle(),
		Artist:       info.ArtistName(),
		Album:        info.Album,
		AlbumArtist:  info.AlbumArtist,
		Duration:     model.FormatSeconds(sec),
		DurationSec:  sec,
		TrackNumber:  info.TrackNumber,
		Year:         info.Year(),
		Genre:        info.Genre,
		VideoID:      info.ID,
		URL:          url,
		ThumbnailURL: thumb,
		Selected:     true,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
