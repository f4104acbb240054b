package model

import (
	"strings"
	"time"
)

// DownloadItem represents a single entry of the download queue. A song item
// produces one file; release and artist items produce one file per song.
type DownloadItem struct {
	ID         string
	Type       ContentType
	Song       *Song
	Release    *Release
	Artist     *Artist
	Status     DownloadStatus
	Progress   float64 // 0 to 100
	Message    string  // human readable progress message
	Error      string  // last error message if any
	OutputPath string  // file for songs, folder for collections
	Format     string  // mp3, flac, wav, ogg, m4a
	Quality    string  // high, medium, low

	CurrentSong    *Song
	TotalSongs     int
	CompletedSongs int
	FailedSongs    int

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewDownloadItem builds a queue entry for a search result
func NewDownloadItem(id string, result *SearchResult, format, quality string) *DownloadItem {
	item := &DownloadItem{
		ID:         id,
		Type:       result.Type,
		Song:       result.Song,
		Release:    result.Release,
		Artist:     result.Artist,
		Status:     StatusQueued,
		Format:     format,
		Quality:    quality,
		TotalSongs: 1,
		CreatedAt:  time.Now(),
	}

	switch {
	case item.Release != nil:
		if len(item.Release.Songs) == 0 {
			item.Status = StatusPendingMetadata
		} else {
			item.TotalSongs = len(item.Release.SelectedSongs())
		}
	case item.Artist != nil:
		if item.Artist.SongCount() == 0 {
			item.Status = StatusPendingMetadata
		} else {
			item.TotalSongs = item.Artist.SongCount()
		}
	}
	return item
}

// SourceURL returns the URL the item was created from
func (d *DownloadItem) SourceURL() string {
	switch {
	case d.Song != nil:
		return d.Song.WatchURL()
	case d.Release != nil:
		return d.Release.URL
	case d.Artist != nil:
		return d.Artist.URL
	}
	return ""
}

// IsCollection reports whether the item downloads more than one song
func (d *DownloadItem) IsCollection() bool {
	return d.Song == nil
}

// DisplayTitle returns a human readable title, falling back to the output file name and URL
func (d *DownloadItem) DisplayTitle() string {
	switch {
	case d.Song != nil && d.Song.Title != "":
		if d.Song.Artist != "" {
			return d.Song.Artist + " - " + d.Song.Title
		}
		return d.Song.Title
	case d.Release != nil && d.Release.Title != "":
		if d.Release.Artist != "" {
			return d.Release.Artist + " - " + d.Release.Title
		}
		return d.Release.Title
	case d.Artist != nil && d.Artist.Name != "":
		return d.Artist.Name
	}

	if d.OutputPath != "" {
		parts := strings.FieldsFunc(d.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return d.SourceURL()
}

// RecomputeProgress derives collection progress from song counters
func (d *DownloadItem) RecomputeProgress() {
	if !d.IsCollection() {
		return
	}
	if d.TotalSongs <= 0 {
		d.Progress = 0
		return
	}
	done := d.CompletedSongs + d.FailedSongs
	d.Progress = float64(done) / float64(d.TotalSongs) * 100
	if d.Progress > 100 {
		d.Progress = 100
	}
}

// Snapshot returns a copy safe to hand to UI and API consumers
func (d *DownloadItem) Snapshot() DownloadItem {
	cp := *d
	if d.CurrentSong != nil {
		song := *d.CurrentSong
		cp.CurrentSong = &song
	}
	return cp
}
