package tagger

import (
	"context"
	"fmt"

	"github.com/zhaarey/go-mp4tag"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/audio"
)

// MP4Writer writes iTunes style atoms into M4A files. The cover is attached
// through ffmpeg afterwards.
type MP4Writer struct {
	audio *audio.Service
}

func (w *MP4Writer) Write(ctx context.Context, path string, tags Tags, cover *artwork.Image) error {
	t := &mp4tag.MP4Tags{
		Title:       tags.Title,
		TitleSort:   tags.Title,
		Artist:      tags.Artist,
		ArtistSort:  tags.Artist,
		Album:       tags.Album,
		AlbumSort:   tags.Album,
		AlbumArtist: tags.AlbumArtist,
		CustomGenre: tags.Genre,
		Date:        tags.Year,
		Lyrics:      tags.Lyrics,
		TrackNumber: int16(tags.TrackNumber),
		TrackTotal:  int16(tags.TrackTotal),
	}

	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open mp4: %w", err)
	}
	err = mp4.Write(t, []string{})
	mp4.Close()
	if err != nil {
		return fmt.Errorf("failed to write mp4 tags: %w", err)
	}

	if cover == nil || len(cover.Data) == 0 || w.audio == nil {
		return nil
	}
	return w.audio.WriteTags(ctx, path, nil, cover.Data)
}
