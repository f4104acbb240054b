package tagger

import (
	"context"
	"fmt"

	"github.com/bogem/id3v2/v2"

	"github.com/ytget/mp3me/internal/artwork"
)

// ID3 frame ids not covered by the id3v2 setters
const (
	frameAlbumArtist = "TPE2"
	frameTrack       = "TRCK"
	frameLyrics      = "USLT"
	framePicture     = "APIC"
	lyricsLanguage   = "eng"
)

// ID3Writer writes ID3v2.4 tags into MP3 files
type ID3Writer struct{}

func (w *ID3Writer) Write(ctx context.Context, path string, tags Tags, cover *artwork.Image) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open id3 tag: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if tags.Year != "" {
		tag.SetYear(tags.Year)
	}
	if tags.Genre != "" {
		tag.SetGenre(tags.Genre)
	}
	if tags.AlbumArtist != "" {
		tag.AddTextFrame(frameAlbumArtist, id3v2.EncodingUTF8, tags.AlbumArtist)
	}
	if track := tags.TrackString(); track != "" {
		tag.AddTextFrame(frameTrack, id3v2.EncodingUTF8, track)
	}

	if tags.Lyrics != "" {
		tag.DeleteFrames(frameLyrics)
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding:          id3v2.EncodingUTF8,
			Language:          lyricsLanguage,
			ContentDescriptor: "",
			Lyrics:            tags.Lyrics,
		})
	}

	if cover != nil && len(cover.Data) > 0 {
		tag.DeleteFrames(framePicture)
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    cover.MIMEType,
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     cover.Data,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save id3 tag: %w", err)
	}
	return nil
}

func readID3(path string) (*Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open id3 tag: %w", err)
	}
	defer tag.Close()

	tags := &Tags{
		Title:       tag.Title(),
		Artist:      tag.Artist(),
		AlbumArtist: tag.GetTextFrame(frameAlbumArtist).Text,
		Album:       tag.Album(),
		Year:        tag.Year(),
		Genre:       tag.Genre(),
	}
	tags.TrackNumber, tags.TrackTotal = parseTrack(tag.GetTextFrame(frameTrack).Text)

	for _, f := range tag.GetFrames(frameLyrics) {
		if uslt, ok := f.(id3v2.UnsynchronisedLyricsFrame); ok && uslt.Lyrics != "" {
			tags.Lyrics = uslt.Lyrics
			break
		}
	}
	return tags, nil
}
