package download

import (
	"context"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/audio"
	"github.com/ytget/mp3me/internal/library"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/tagger"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(model.DownloadItem))
	Add(result *model.SearchResult, format, quality string) (model.DownloadItem, error)
	AddURL(ctx context.Context, rawURL, format, quality string) (model.DownloadItem, error)
	Get(id string) (model.DownloadItem, bool)
	List() []model.DownloadItem
	Cancel(id string) error
	Retry(id string) error
	Remove(id string) error
	ClearFinished() int
	CancelAll()

	// SetMaxParallel sets the maximum number of items downloading at once
	SetMaxParallel(n int)

	// SetOnline pauses or resumes starting new items
	SetOnline(online bool)

	Shutdown(ctx context.Context) error
}

// Resolver loads the songs of collections and turns URLs into results
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (*model.SearchResult, error)
	ReleaseDetails(ctx context.Context, release *model.Release) (*model.Release, error)
	ArtistDetails(ctx context.Context, artist *model.Artist) (*model.Artist, error)
}

// SongEnricher completes song metadata before download
type SongEnricher interface {
	Enrich(ctx context.Context, song *model.Song, info *ytdlp.VideoInfo) string
}

// CoverFinder finds release artwork
type CoverFinder interface {
	Cover(ctx context.Context, req artwork.Request) (*artwork.Image, error)
}

// LyricsFinder looks up song lyrics
type LyricsFinder interface {
	Find(ctx context.Context, artist, title string) (string, error)
}

// TagWriter embeds tags and cover art into a file
type TagWriter interface {
	Write(ctx context.Context, path string, tags tagger.Tags, cover *artwork.Image) error
}

// Normalizer runs the loudness normalization pass
type Normalizer interface {
	Normalize(ctx context.Context, path string, onProgress audio.ProgressFunc) error
}

// History records finished downloads and answers dedup lookups
type History interface {
	RecordDownload(ctx context.Context, rec library.DownloadRecord) error
	HasVideo(ctx context.Context, videoID string) (string, bool, error)
}

// Deps are the collaborators of the service. Only YTDLP is required; any
// other nil dependency disables its pipeline step.
type Deps struct {
	YTDLP    ytdlp.Client
	Resolver Resolver
	Enricher SongEnricher
	Artwork  CoverFinder
	Lyrics   LyricsFinder
	Tagger   TagWriter
	Audio    Normalizer
	History  History
}

var _ Downloader = (*Service)(nil)
