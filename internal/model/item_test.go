package model

import (
	"testing"
)

func TestNewDownloadItem(t *testing.T) {
	tests := []struct {
		name       string
		result     *SearchResult
		wantStatus DownloadStatus
		wantTotal  int
	}{
		{
			name:       "song is queued",
			result:     &SearchResult{Type: ContentSong, Song: &Song{Title: "Creep", VideoID: "XFkzRNyygfk"}},
			wantStatus: StatusQueued,
			wantTotal:  1,
		},
		{
			name:       "release without songs waits for metadata",
			result:     &SearchResult{Type: ContentRelease, Release: &Release{Title: "OK Computer"}},
			wantStatus: StatusPendingMetadata,
			wantTotal:  1,
		},
		{
			name: "release with selection counts selected songs",
			result: &SearchResult{Type: ContentRelease, Release: &Release{Title: "OK Computer", Songs: []*Song{
				{Title: "Airbag", Selected: true},
				{Title: "Paranoid Android", Selected: false},
				{Title: "Lucky", Selected: true},
			}}},
			wantStatus: StatusQueued,
			wantTotal:  2,
		},
		{
			name:       "artist without releases waits for metadata",
			result:     &SearchResult{Type: ContentArtist, Artist: &Artist{Name: "Radiohead"}},
			wantStatus: StatusPendingMetadata,
			wantTotal:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewDownloadItem("dl-1", tt.result, "mp3", "high")
			if item.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", item.Status, tt.wantStatus)
			}
			if item.TotalSongs != tt.wantTotal {
				t.Errorf("TotalSongs = %d, want %d", item.TotalSongs, tt.wantTotal)
			}
			if item.Format != "mp3" || item.Quality != "high" {
				t.Errorf("format/quality = %s/%s", item.Format, item.Quality)
			}
		})
	}
}

func TestDownloadItem_DisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		item     *DownloadItem
		expected string
	}{
		{"song with artist", &DownloadItem{Song: &Song{Title: "Creep", Artist: "Radiohead"}}, "Radiohead - Creep"},
		{"song without artist", &DownloadItem{Song: &Song{Title: "Creep"}}, "Creep"},
		{"release", &DownloadItem{Release: &Release{Title: "Kid A", Artist: "Radiohead"}}, "Radiohead - Kid A"},
		{"artist", &DownloadItem{Artist: &Artist{Name: "Radiohead"}}, "Radiohead"},
		{"output path", &DownloadItem{Song: &Song{}, OutputPath: "/music/Radiohead/Singles/Creep.mp3"}, "Creep"},
		{"windows output path", &DownloadItem{Song: &Song{}, OutputPath: `C:\Music\Creep.flac`}, "Creep"},
		{"url fallback", &DownloadItem{Song: &Song{VideoID: "abc"}}, "https://music.youtube.com/watch?v=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.DisplayTitle(); got != tt.expected {
				t.Errorf("DisplayTitle() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestDownloadItem_RecomputeProgress(t *testing.T) {
	item := &DownloadItem{Release: &Release{}, TotalSongs: 4, CompletedSongs: 1, FailedSongs: 1}
	item.RecomputeProgress()
	if item.Progress != 50 {
		t.Errorf("Progress = %v, expected 50", item.Progress)
	}

	item.TotalSongs = 0
	item.RecomputeProgress()
	if item.Progress != 0 {
		t.Errorf("Progress with zero total = %v, expected 0", item.Progress)
	}

	song := &DownloadItem{Song: &Song{}, Progress: 42}
	song.RecomputeProgress()
	if song.Progress != 42 {
		t.Errorf("song progress must not be recomputed, got %v", song.Progress)
	}
}

func TestDownloadItem_Snapshot(t *testing.T) {
	item := &DownloadItem{ID: "dl-1", Song: &Song{Title: "A"}, CurrentSong: &Song{Title: "A"}}
	snap := item.Snapshot()
	snap.CurrentSong.Title = "changed"
	if item.CurrentSong.Title != "A" {
		t.Error("Snapshot must copy CurrentSong")
	}
}
