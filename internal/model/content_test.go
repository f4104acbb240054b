package model

import "testing"

func TestSong_WatchURL(t *testing.T) {
	tests := []struct {
		name     string
		song     Song
		expected string
	}{
		{"explicit url", Song{URL: "https://www.youtube.com/watch?v=x1", VideoID: "x2"}, "https://www.youtube.com/watch?v=x1"},
		{"video id only", Song{VideoID: "x2"}, "https://music.youtube.com/watch?v=x2"},
		{"placeholder url", Song{URL: "https://music.youtube.com/watch?v=song_MPRE_3", VideoID: "x3"}, "https://music.youtube.com/watch?v=x3"},
		{"placeholder without id", Song{URL: "https://music.youtube.com/watch?v=song_MPRE_3"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.song.WatchURL(); got != tt.expected {
				t.Errorf("WatchURL() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRelease_SelectedSongs(t *testing.T) {
	r := &Release{Songs: []*Song{{Title: "a"}, {Title: "b"}}}
	if got := len(r.SelectedSongs()); got != 2 {
		t.Errorf("no selection should return all songs, got %d", got)
	}

	r.Songs[1].Selected = true
	got := r.SelectedSongs()
	if len(got) != 1 || got[0].Title != "b" {
		t.Errorf("SelectedSongs() = %+v", got)
	}

	r.SelectAll(true)
	if len(r.SelectedSongs()) != 2 {
		t.Error("SelectAll(true) should select every song")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		input      string
		expected   ContentType
		collection bool
	}{
		{"song", ContentSong, false},
		{"", ContentSong, false},
		{"Albums", ContentAlbum, true},
		{"ep", ContentSingle, true},
		{"release", ContentRelease, true},
		{"artist", ContentArtist, false},
		{"playlist", ContentPlaylist, true},
	}

	for _, tt := range tests {
		got := ParseContentType(tt.input)
		if got != tt.expected {
			t.Errorf("ParseContentType(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
		if got.IsCollection() != tt.collection {
			t.Errorf("%s.IsCollection() = %v, expected %v", got, got.IsCollection(), tt.collection)
		}
	}
}

func TestSearchResult_Display(t *testing.T) {
	song := &SearchResult{Type: ContentSong, Song: &Song{Title: "Creep", Artist: "Radiohead", Album: "Pablo Honey", Duration: "3:58", VideoID: "id"}}
	if song.Title() != "Creep" {
		t.Errorf("Title() = %q", song.Title())
	}
	if song.Subtitle() != "Radiohead • Pablo Honey • 3:58" {
		t.Errorf("Subtitle() = %q", song.Subtitle())
	}
	if song.URL() != "https://music.youtube.com/watch?v=id" {
		t.Errorf("URL() = %q", song.URL())
	}

	release := &SearchResult{Type: ContentRelease, Release: &Release{Title: "Kid A", Artist: "Radiohead", ReleaseType: "album", Year: "2000"}}
	if release.Subtitle() != "Radiohead • Album • 2000" {
		t.Errorf("Subtitle() = %q", release.Subtitle())
	}

	artist := &SearchResult{Type: ContentArtist, Artist: &Artist{Name: "Radiohead", URL: "https://music.youtube.com/channel/UC1"}}
	if artist.Title() != "Radiohead" || artist.URL() != "https://music.youtube.com/channel/UC1" {
		t.Errorf("artist result = %q %q", artist.Title(), artist.URL())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms       int64
		expected string
	}{
		{0, ""},
		{500, "0:00"},
		{61000, "1:01"},
		{238000, "3:58"},
		{3600000, "60:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.expected {
			t.Errorf("FormatDuration(%d) = %q, expected %q", tt.ms, got, tt.expected)
		}
	}

	if got := FormatSeconds(125); got != "2:05" {
		t.Errorf("FormatSeconds(125) = %q", got)
	}
}
