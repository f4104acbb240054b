// Package tagger embeds metadata and cover art into downloaded audio files.
package tagger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/audio"
	"github.com/ytget/mp3me/internal/model"
)

// ErrUnsupportedFormat is returned for extensions no writer handles
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Tags is the metadata written to and read from audio files
type Tags struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	TrackNumber int
	TrackTotal  int
	Year        string
	Genre       string
	Lyrics      string
	Duration    float64 // seconds, filled by Read
}

// TagsFromSong converts a song into tags
func TagsFromSong(song *model.Song, lyrics string) Tags {
	return Tags{
		Title:       song.Title,
		Artist:      song.Artist,
		AlbumArtist: song.AlbumArtist,
		Album:       song.Album,
		TrackNumber: song.TrackNumber,
		TrackTotal:  song.TrackTotal,
		Year:        song.Year,
		Genre:       song.Genre,
		Lyrics:      lyrics,
	}
}

// TrackString formats the track as "n/total", "n" or ""
func (t Tags) TrackString() string {
	switch {
	case t.TrackNumber <= 0:
		return ""
	case t.TrackTotal > 0:
		return fmt.Sprintf("%d/%d", t.TrackNumber, t.TrackTotal)
	default:
		return strconv.Itoa(t.TrackNumber)
	}
}

// Writer embeds tags into one kind of file
type Writer interface {
	Write(ctx context.Context, path string, tags Tags, cover *artwork.Image) error
}

// Tagger picks a writer by file extension
type Tagger struct {
	audio   *audio.Service
	writers map[string]Writer
}

// New creates a tagger. ffmpeg backs the formats without a native writer.
func New(audioSvc *audio.Service) *Tagger {
	ff := &FFmpegWriter{audio: audioSvc}
	return &Tagger{
		audio: audioSvc,
		writers: map[string]Writer{
			".mp3":  &ID3Writer{},
			".m4a":  &MP4Writer{audio: audioSvc},
			".flac": ff,
			".ogg":  ff,
			".wav":  ff,
		},
	}
}

// Write embeds tags and the optional cover into path
func (t *Tagger) Write(ctx context.Context, path string, tags Tags, cover *artwork.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	w, ok := t.writers[ext]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err := w.Write(ctx, path, tags, cover); err != nil {
		return fmt.Errorf("failed to tag %s: %w", filepath.Base(path), err)
	}
	log.WithFields(log.Fields{"module": "tagger", "function": "Write"}).
		Debugf("Tagged %s (cover: %v)", path, cover != nil)
	return nil
}

// Read returns the tags of path. The title falls back to the file name.
func (t *Tagger) Read(ctx context.Context, path string) (*Tags, error) {
	var (
		tags *Tags
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		tags, err = readID3(path)
		if err == nil && t.audio != nil {
			if d, derr := t.audio.GetDuration(ctx, path); derr == nil {
				tags.Duration = d
			}
		}
	} else {
		tags, err = t.readProbe(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	if tags.Title == "" {
		base := filepath.Base(path)
		tags.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return tags, nil
}

func (t *Tagger) readProbe(ctx context.Context, path string) (*Tags, error) {
	if t.audio == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	res, err := t.audio.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	tags := &Tags{
		Title:       res.Title,
		Artist:      res.Artist,
		AlbumArtist: res.AlbumArtist,
		Album:       res.Album,
		Year:        yearFromDate(res.Date),
		Genre:       res.Genre,
		Lyrics:      res.Lyrics,
		Duration:    res.Duration,
	}
	tags.TrackNumber, tags.TrackTotal = parseTrack(res.Track)
	return tags, nil
}

// parseTrack splits "n/total"
func parseTrack(s string) (int, int) {
	num, total, _ := strings.Cut(strings.TrimSpace(s), "/")
	n, _ := strconv.Atoi(strings.TrimSpace(num))
	tot, _ := strconv.Atoi(strings.TrimSpace(total))
	return n, tot
}

func yearFromDate(date string) string {
	if len(date) >= 4 {
		if _, err := strconv.Atoi(date[:4]); err == nil {
			return date[:4]
		}
	}
	return date
}
