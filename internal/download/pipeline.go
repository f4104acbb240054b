package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/library"
	"github.com/ytget/mp3me/internal/metadata"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/platform"
	"github.com/ytget/mp3me/internal/tagger"
	"github.com/ytget/mp3me/internal/telemetry"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// reportFunc publishes the stage of the song being processed
type reportFunc func(status model.DownloadStatus, percent float64, message string)

// songResult is the outcome of the song pipeline
type songResult struct {
	Path    string
	Dir     string
	Skipped bool
}

func (s *Service) runSong(ctx context.Context, e *entry, song model.Song, format, quality string) error {
	res, err := s.processSong(ctx, &song, format, quality, func(status model.DownloadStatus, percent float64, message string) {
		s.update(e, func(item *model.DownloadItem) {
			item.Status = status
			item.Progress = percent
			item.Message = message
		})
	})
	if err != nil {
		return err
	}

	s.update(e, func(item *model.DownloadItem) {
		enriched := song
		item.Song = &enriched
		item.OutputPath = res.Path
		item.CompletedSongs = 1
		if res.Skipped {
			item.Message = MessageAlreadyExists
		} else {
			item.Message = "Downloaded"
		}
	})
	return nil
}

func (s *Service) runRelease(ctx context.Context, e *entry, release *model.Release, format, quality string) error {
	done, folder, err := s.downloadRelease(ctx, e, release, format, quality)
	if err != nil {
		return err
	}
	total := len(release.SelectedSongs())
	s.update(e, func(item *model.DownloadItem) {
		item.OutputPath = folder
		item.Message = fmt.Sprintf("Downloaded %d/%d songs", done, total)
	})
	return nil
}

// runArtist downloads the releases of an artist one after another
func (s *Service) runArtist(ctx context.Context, e *entry, artist *model.Artist, format, quality string) error {
	logger := log.WithFields(log.Fields{"module": "download", "function": "runArtist"})

	var errs []error
	songs, releases := 0, 0
	outputPath := ""
	for _, release := range artist.Releases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(release.Songs) == 0 {
			continue
		}
		done, folder, err := s.downloadRelease(ctx, e, release, format, quality)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warnf("Release %s failed: %v", release.Title, err)
			errs = append(errs, fmt.Errorf("%s: %w", release.Title, err))
			continue
		}
		releases++
		songs += done
		if outputPath == "" {
			outputPath = folder
			if s.settings.GetUseAlbumFolders() {
				outputPath = filepath.Dir(folder)
			}
		}
	}

	if releases == 0 {
		if len(errs) == 0 {
			return ErrNoSource
		}
		return errors.Join(errs...)
	}

	s.update(e, func(item *model.DownloadItem) {
		item.OutputPath = outputPath
		item.Message = fmt.Sprintf("Downloaded %d songs from %d/%d releases", songs, releases, len(artist.Releases))
	})
	return nil
}

// downloadRelease runs the selected songs of a release concurrently,
// bounded by the parallel limit. It succeeds when at least one song did and
// returns the number of finished songs and the folder they went to.
func (s *Service) downloadRelease(ctx context.Context, e *entry, release *model.Release, format, quality string) (int, string, error) {
	songs := release.SelectedSongs()
	if len(songs) == 0 {
		return 0, "", ErrNoSource
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []error
		done   int
		folder string
	)
	sem := make(chan struct{}, s.parallel())

	for i, src := range songs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		song := *src
		inheritRelease(&song, release)
		label := fmt.Sprintf("%d/%d %s", i+1, len(songs), song.Title)
		current := song

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := s.processSong(ctx, &song, format, quality, func(status model.DownloadStatus, _ float64, message string) {
				s.update(e, func(item *model.DownloadItem) {
					item.Status = status
					item.CurrentSong = &current
					item.Message = label + ": " + message
				})
			})

			if ctx.Err() != nil {
				return
			}
			s.update(e, func(item *model.DownloadItem) {
				if err != nil {
					item.FailedSongs++
				} else {
					item.CompletedSongs++
				}
				item.RecomputeProgress()
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", song.Title, err))
				return
			}
			done++
			if folder == "" {
				folder = res.Dir
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return done, folder, err
	}
	if done == 0 {
		return 0, "", errors.Join(errs...)
	}
	return done, folder, nil
}

func inheritRelease(song *model.Song, release *model.Release) {
	if song.Album == "" {
		song.Album = release.Title
	}
	if song.AlbumArtist == "" {
		song.AlbumArtist = release.Artist
	}
	if song.Artist == "" {
		song.Artist = release.Artist
	}
	if song.Year == "" {
		song.Year = release.Year
	}
	if song.ThumbnailURL == "" {
		song.ThumbnailURL = release.ThumbnailURL
	}
	if song.TrackTotal == 0 {
		song.TrackTotal = len(release.Songs)
	}
}

// processSong enriches, dedups, downloads and tags one song
func (s *Service) processSong(ctx context.Context, song *model.Song, format, quality string, report reportFunc) (res songResult, err error) {
	span := telemetry.StartSpan(ctx, "download.song", "Download song")
	span.SetTag("video_id", song.VideoID)
	ctx = span.Context()
	defer func() {
		if errors.Is(err, context.Canceled) {
			telemetry.Finish(span, nil)
			return
		}
		telemetry.Finish(span, err)
	}()

	logger := log.WithFields(log.Fields{"module": "download", "function": "processSong"})

	url := song.WatchURL()
	if url == "" {
		return res, ErrNoSource
	}

	report(model.StatusDownloading, 0, "Fetching metadata")
	coverURL := s.enrich(ctx, song, url)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	root, err := s.settings.EnsureDownloadDir()
	if err != nil {
		return res, err
	}
	req := ytdlp.DownloadRequest{
		URL:       url,
		OutputDir: platform.OutputDir(root, song, s.settings.GetUseAlbumFolders()),
		BaseName:  platform.BaseFilename(song, s.settings.GetAutoRename()),
		Format:    format,
		Quality:   quality,
	}

	if path, ok := s.existing(ctx, song, req); ok {
		logger.Infof("Skipping %s - %s: already exists at %s", song.Artist, song.Title, path)
		report(model.StatusProcessing, 100, MessageAlreadyExists)
		return songResult{Path: path, Dir: req.OutputDir, Skipped: true}, nil
	}

	report(model.StatusDownloading, 0, "Downloading")
	path, err := s.downloadWithRetry(ctx, req, func(percent float64) {
		report(model.StatusDownloading, percent, fmt.Sprintf("Downloading %.0f%%", percent))
	})
	if err != nil {
		return res, err
	}

	report(model.StatusProcessing, 100, "Processing metadata")
	s.embedMetadata(ctx, path, song, coverURL)

	if s.settings.GetNormalizeAudio() && s.deps.Audio != nil {
		report(model.StatusProcessing, 100, "Normalizing audio")
		if err := s.deps.Audio.Normalize(ctx, path, nil); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			logger.Warnf("Failed to normalize %s: %v", path, err)
		}
	}

	if s.deps.History != nil {
		rec := library.DownloadRecord{
			VideoID: song.VideoID,
			Title:   song.Title,
			Artist:  song.Artist,
			Album:   song.Album,
			Path:    path,
			Format:  format,
			Quality: quality,
		}
		if err := s.deps.History.RecordDownload(ctx, rec); err != nil {
			logger.Warnf("Failed to record download of %s: %v", path, err)
		}
	}

	return songResult{Path: path, Dir: filepath.Dir(path)}, nil
}

// enrich completes song metadata and returns a cover URL candidate
func (s *Service) enrich(ctx context.Context, song *model.Song, url string) string {
	var info *ytdlp.VideoInfo
	if needsInfo(song) {
		var err error
		info, err = s.deps.YTDLP.Info(ctx, url)
		if err != nil {
			log.WithFields(log.Fields{"module": "download", "function": "enrich"}).
				Warnf("Failed to fetch video info for %s: %v", url, err)
			info = nil
		}
	}
	if s.deps.Enricher == nil {
		return ""
	}
	return s.deps.Enricher.Enrich(ctx, song, info)
}

// needsInfo reports whether yt-dlp video info could add anything
func needsInfo(song *model.Song) bool {
	return song.Title == "" || song.Artist == "" || song.Album == "" || song.Year == "" || song.TrackNumber == 0
}

// existing returns the path of a copy of the song that is already on disk
func (s *Service) existing(ctx context.Context, song *model.Song, req ytdlp.DownloadRequest) (string, bool) {
	expected := ytdlp.ExpectedPath(req)
	if platform.FileExists(expected) {
		return expected, true
	}
	if !s.settings.GetCheckDuplicates() {
		return "", false
	}
	if path, ok := platform.FindDuplicate(song, req.OutputDir, req.Format); ok {
		return path, true
	}
	if s.deps.History != nil && song.VideoID != "" {
		path, ok, err := s.deps.History.HasVideo(ctx, song.VideoID)
		if err != nil {
			log.WithFields(log.Fields{"module": "download", "function": "existing"}).Warnf("History lookup failed: %v", err)
			return "", false
		}
		if ok && platform.FileExists(path) {
			return path, true
		}
	}
	return "", false
}

// downloadWithRetry attempts download with retry logic
func (s *Service) downloadWithRetry(ctx context.Context, req ytdlp.DownloadRequest, onProgress ytdlp.ProgressFunc) (string, error) {
	logger := log.WithFields(log.Fields{"module": "download", "function": "downloadWithRetry"})

	s.itemsMutex.RLock()
	delay := s.retryDelay
	s.itemsMutex.RUnlock()

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			// Backoff delay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			logger.Infof("Retrying download of %s, attempt %d", req.URL, attempt+1)
		}

		path, err := s.deps.YTDLP.Download(ctx, req, onProgress)
		if err == nil {
			return path, nil
		}

		lastErr = err
		logger.Warnf("Download attempt %d failed for %s: %v", attempt+1, req.URL, err)

		// Check if we should retry
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, ytdlp.ErrNotInstalled) {
			return "", err
		}
	}
	return "", lastErr
}

// embedMetadata writes cover, lyrics and tags. Failures are logged only.
func (s *Service) embedMetadata(ctx context.Context, path string, song *model.Song, coverURL string) {
	logger := log.WithFields(log.Fields{"module": "download", "function": "embedMetadata"})

	var cover *artwork.Image
	if s.deps.Artwork != nil {
		fallback := coverURL
		if fallback == "" {
			fallback = song.ThumbnailURL
		}
		req := artwork.Request{Release: song.Album, Artist: song.AlbumArtist, FallbackURL: fallback}
		if req.Artist == "" {
			req.Artist = song.Artist
		}
		img, err := s.deps.Artwork.Cover(ctx, req)
		switch {
		case err == nil:
			cover = img
		case errors.Is(err, artwork.ErrNoArtwork):
			logger.Infof("No artwork for %s", song.Title)
		default:
			logger.Warnf("Failed to fetch artwork for %s: %v", song.Title, err)
		}
	}

	lyrics := ""
	if s.settings.GetEmbedLyrics() && s.deps.Lyrics != nil && song.Artist != "" {
		text, err := s.deps.Lyrics.Find(ctx, song.Artist, song.Title)
		switch {
		case err == nil:
			lyrics = text
		case errors.Is(err, metadata.ErrNoLyrics):
		default:
			logger.Warnf("Failed to fetch lyrics for %s: %v", song.Title, err)
		}
	}

	if s.deps.Tagger == nil {
		return
	}
	if err := s.deps.Tagger.Write(ctx, path, tagger.TagsFromSong(song, lyrics), cover); err != nil {
		logger.Warnf("Failed to write tags to %s: %v", path, err)
	}
}
