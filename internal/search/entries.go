package search

import (
	"regexp"
	"strings"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/platform"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// Release types
const (
	ReleaseAlbum    = "album"
	ReleaseSingle   = "single"
	ReleasePlaylist = "playlist"
)

var singlePattern = regexp.MustCompile(`(?i:\bsingle\b)|\bEP\b`)

// ReleaseType guesses album or single from a release title
func ReleaseType(title string) string {
	if singlePattern.MatchString(title) {
		return ReleaseSingle
	}
	return ReleaseAlbum
}

// classifyEntry returns the content type and id of a flat yt-dlp entry
func classifyEntry(e ytdlp.Entry) (model.ContentType, string) {
	if e.URL != "" && platform.IsYouTubeURL(e.URL) {
		if ct, err := platform.DetectContentType(e.URL); err == nil {
			if ct == model.ContentPlaylist || ct == model.ContentRelease {
				if id, err := platform.ExtractPlaylistID(e.URL); err == nil {
					return ct, id
				}
			}
			return ct, platform.ExtractID(e.URL)
		}
	}

	switch {
	case platform.IsReleaseID(e.ID):
		return model.ContentRelease, e.ID
	case strings.HasPrefix(e.ID, "UC") && len(e.ID) == 24:
		return model.ContentArtist, e.ID
	case strings.HasPrefix(e.ID, "PL") || strings.HasPrefix(e.ID, "VL"):
		return model.ContentPlaylist, e.ID
	case len(e.ID) == 11:
		return model.ContentSong, e.ID
	}
	return "", ""
}

func songFromEntry(e ytdlp.Entry, id string) *model.Song {
	sec := int(e.Duration)
	return &model.Song{
		ID:           id,
		Title:        e.Title,
		Artist:       e.ArtistName(),
		Duration:     model.FormatSeconds(sec),
		DurationSec:  sec,
		VideoID:      id,
		URL:          platform.VideoURL(id),
		ThumbnailURL: artwork.HighestResThumbnail(e.Thumbnails),
		Selected:     true,
	}
}

func releaseFromEntry(e ytdlp.Entry, id string, ct model.ContentType) *model.Release {
	r := &model.Release{
		ID:           id,
		Title:        e.Title,
		Artist:       e.ArtistName(),
		ReleaseType:  ReleaseType(e.Title),
		ThumbnailURL: artwork.HighestResThumbnail(e.Thumbnails),
	}
	switch {
	case ct == model.ContentPlaylist:
		r.ReleaseType = ReleasePlaylist
		r.URL = platform.PlaylistURL(id)
	case strings.HasPrefix(id, platform.AlbumBrowsePrefix):
		r.URL = platform.BrowseURL(id)
	default:
		r.URL = platform.PlaylistURL(id)
	}
	return r
}

func artistFromEntry(e ytdlp.Entry, id string) *model.Artist {
	name := e.Title
	if name == "" {
		name = e.ArtistName()
	}
	return &model.Artist{
		ID:           id,
		Name:         strings.TrimSuffix(name, " - Topic"),
		URL:          platform.ChannelURL(id),
		ThumbnailURL: artwork.HighestResThumbnail(e.Thumbnails),
	}
}

// resultFromEntry maps an entry when it matches want. Playlists count as
// releases only when their id is a release id.
func resultFromEntry(e ytdlp.Entry, want model.ContentType) (model.SearchResult, bool) {
	ct, id := classifyEntry(e)
	if id == "" {
		return model.SearchResult{}, false
	}

	switch want {
	case model.ContentSong:
		if ct == model.ContentSong {
			return model.SearchResult{Type: model.ContentSong, Song: songFromEntry(e, id)}, true
		}
	case model.ContentArtist:
		if ct == model.ContentArtist {
			return model.SearchResult{Type: model.ContentArtist, Artist: artistFromEntry(e, id)}, true
		}
	default:
		if ct == model.ContentRelease {
			r := releaseFromEntry(e, id, ct)
			return model.SearchResult{Type: model.ContentType(r.ReleaseType), Release: r}, true
		}
	}
	return model.SearchResult{}, false
}
