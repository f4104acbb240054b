package metadata

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// Enricher fills missing song fields. Values already set on a song are
// never overwritten.
type Enricher struct {
	resolver TrackResolver
}

// NewEnricher creates an enricher. resolver may be nil.
func NewEnricher(resolver TrackResolver) *Enricher {
	return &Enricher{resolver: resolver}
}

// Enrich completes song from yt-dlp video info, the video title and the
// resolver. It returns a cover URL found along the way, if any.
func (e *Enricher) Enrich(ctx context.Context, song *model.Song, info *ytdlp.VideoInfo) string {
	if info != nil {
		applyVideoInfo(song, info)
	}

	if song.Artist == "" && song.Title != "" {
		if artist, title := ParseTitle(song.Title); artist != "" {
			song.Artist = artist
			song.Title = title
		}
	}

	coverURL := ""
	if e.resolver != nil && song.Title != "" && needsAlbumData(song) {
		match, err := e.resolver.Resolve(ctx, song.Artist, song.Title)
		switch {
		case err == nil:
			applyMatch(song, match)
			coverURL = match.CoverURL
		case errors.Is(err, ErrNoMatch):
		default:
			log.WithFields(log.Fields{"module": "metadata", "function": "Enrich"}).
				Warnf("Metadata lookup failed for %s: %v", song.Title, err)
		}
	}

	if song.AlbumArtist == "" {
		song.AlbumArtist = song.Artist
	}
	return coverURL
}

func applyVideoInfo(song *model.Song, info *ytdlp.VideoInfo) {
	setIfEmpty(&song.Title, info.SongTitle())
	if song.Artist == "" && (info.Artist != "" || len(info.Artists) > 0) {
		song.Artist = info.ArtistName()
	}
	setIfEmpty(&song.Album, info.Album)
	setIfEmpty(&song.AlbumArtist, info.AlbumArtist)
	setIfEmpty(&song.Year, info.Year())
	setIfEmpty(&song.Genre, info.Genre)
	setIfEmpty(&song.VideoID, info.ID)
	if song.TrackNumber == 0 {
		song.TrackNumber = info.TrackNumber
	}
	if song.DurationSec == 0 && info.Duration > 0 {
		song.DurationSec = int(info.Duration)
		song.Duration = model.FormatSeconds(song.DurationSec)
	}
	if song.ThumbnailURL == "" {
		song.ThumbnailURL = artwork.HighestResThumbnail(info.Thumbnails)
		setIfEmpty(&song.ThumbnailURL, info.Thumbnail)
	}
	// Channel names are a weak artist signal, used only when the title has none
	if song.Artist == "" {
		if artist, _ := ParseTitle(song.Title); artist == "" {
			song.Artist = info.ArtistName()
		}
	}
}

func applyMatch(song *model.Song, m *TrackMatch) {
	setIfEmpty(&song.Artist, m.Artist)
	setIfEmpty(&song.Album, m.Album)
	setIfEmpty(&song.AlbumArtist, m.AlbumArtist)
	setIfEmpty(&song.Year, m.Year)
	setIfEmpty(&song.Genre, m.Genre)
	if song.TrackNumber == 0 {
		song.TrackNumber = m.TrackNumber
	}
}

func needsAlbumData(song *model.Song) bool {
	return song.Album == "" || song.Year == "" || song.Genre == "" || song.TrackNumber == 0
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
