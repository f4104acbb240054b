// Package app builds the service graph shared by the desktop app, the CLI
// and the REST API.
package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/api"
	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/audio"
	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/download"
	"github.com/ytget/mp3me/internal/library"
	"github.com/ytget/mp3me/internal/metadata"
	"github.com/ytget/mp3me/internal/network"
	"github.com/ytget/mp3me/internal/platform"
	"github.com/ytget/mp3me/internal/search"
	"github.com/ytget/mp3me/internal/tagger"
	"github.com/ytget/mp3me/internal/telemetry"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// App holds every long lived service
type App struct {
	Env      *config.Env
	Settings *config.Settings

	YTDLP     *ytdlp.CommandClient
	Audio     *audio.Service
	Artwork   *artwork.Service
	Lyrics    *metadata.LyricsClient
	Tagger    *tagger.Tagger
	Search    *search.Service
	Library   *library.Store
	Scanner   *library.Scanner
	Downloads *download.Service
	Monitor   *network.Monitor

	version string
}

// New wires the services. Optional integrations (YouTube Data API search,
// Spotify enrichment) are enabled when their credentials are present.
func New(ctx context.Context, env *config.Env, settings *config.Settings, version string) (*App, error) {
	logger := log.WithFields(log.Fields{"module": "app", "function": "New"})

	if err := platform.CreateDirectoryIfNotExists(env.DataDir); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	store, err := library.Open(env.DBPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		Env:      env,
		Settings: settings,
		YTDLP:    ytdlp.NewClient(env.YTDLPPath),
		Audio:    audio.NewService(env.FFmpegPath, env.FFprobePath),
		Library:  store,
		Monitor:  network.NewMonitor("", network.DefaultCheckInterval),
		version:  version,
	}

	httpClient := network.NewClient()

	cache, err := artwork.NewCache(env.CacheDir())
	if err != nil {
		logger.Warnf("Artwork cache disabled: %v", err)
		cache = nil
	}
	a.Artwork = artwork.NewService(httpClient, cache)
	a.Artwork.SetMaxCacheMB(settings.GetMaxCacheSizeMB())
	a.Lyrics = metadata.NewLyricsClient(httpClient)
	a.Tagger = tagger.New(a.Audio)
	a.Scanner = library.NewScanner(store, a.Tagger)

	var backend search.Backend = search.NewYTDLPBackend(a.YTDLP)
	if env.YouTube.Enabled() {
		yt, err := search.NewYouTubeAPIBackend(ctx, env.YouTube.APIKey)
		if err != nil {
			logger.Warnf("YouTube Data API unavailable, searching with yt-dlp: %v", err)
		} else {
			logger.Info("Searching with the YouTube Data API")
			backend = yt
		}
	}
	a.Search = search.NewService(backend, a.YTDLP, platform.NewReleaseParser())
	a.Search.SetLimit(settings.GetSearchLimit())

	enricher := metadata.NewEnricher(nil)
	if env.Spotify.Enabled() {
		resolver, err := metadata.NewSpotifyResolver(ctx, env.Spotify.ClientID, env.Spotify.ClientSecret)
		if err != nil {
			logger.Warnf("Spotify enrichment disabled: %v", err)
		} else {
			enricher = metadata.NewEnricher(resolver)
		}
	}

	a.Downloads = download.NewService(settings, download.Deps{
		YTDLP:    a.YTDLP,
		Resolver: a.Search,
		Enricher: enricher,
		Artwork:  a.Artwork,
		Lyrics:   a.Lyrics,
		Tagger:   a.Tagger,
		Audio:    a.Audio,
		History:  store,
	})

	return a, nil
}

// CheckTools logs the yt-dlp and ffmpeg versions. Missing tools are
// reported, not fatal.
func (a *App) CheckTools(ctx context.Context) error {
	logger := log.WithFields(log.Fields{"module": "app", "function": "CheckTools"})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	v, err := a.YTDLP.Version(ctx)
	if err != nil {
		logger.Errorf("yt-dlp not available: %v", err)
		return err
	}
	logger.Infof("yt-dlp %s", v)
	tools := map[string]interface{}{"app": a.version, "yt-dlp": v}

	if v, err := a.Audio.Version(ctx); err != nil {
		logger.Warnf("ffmpeg not available, tagging of flac/ogg/wav and normalization will fail: %v", err)
	} else {
		logger.Infof("ffmpeg %s", v)
		tools["ffmpeg"] = v
	}
	telemetry.SetContext("tools", tools)
	return nil
}

// API builds the REST server over the app services
func (a *App) API() *api.Server {
	return api.New(api.Deps{
		Search:    a.Search,
		Downloads: a.Downloads,
		Library:   a.Library,
		Scanner:   a.Scanner,
		Artwork:   a.Artwork,
		Settings:  a.Settings,
		Version:   a.version,
	})
}

// Close stops the download queue and closes the database
func (a *App) Close(ctx context.Context) error {
	if err := a.Downloads.Shutdown(ctx); err != nil {
		log.WithFields(log.Fields{"module": "app", "function": "Close"}).Warnf("Downloads did not stop cleanly: %v", err)
	}
	return a.Library.Close()
}
