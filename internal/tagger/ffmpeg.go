package tagger

import (
	"context"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/audio"
)

// FFmpegWriter tags FLAC, OGG and WAV files by remuxing with ffmpeg
type FFmpegWriter struct {
	audio *audio.Service
}

func (w *FFmpegWriter) Write(ctx context.Context, path string, tags Tags, cover *artwork.Image) error {
	var data []byte
	if cover != nil {
		data = cover.Data
	}
	return w.audio.WriteTags(ctx, path, ffmpegMetadata(tags), data)
}

// ffmpegMetadata maps tags to ffmpeg -metadata keys
func ffmpegMetadata(tags Tags) map[string]string {
	return map[string]string{
		"title":        tags.Title,
		"artist":       tags.Artist,
		"album_artist": tags.AlbumArtist,
		"album":        tags.Album,
		"track":        tags.TrackString(),
		"date":         tags.Year,
		"genre":        tags.Genre,
		"lyrics":       tags.Lyrics,
	}
}
