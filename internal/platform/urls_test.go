package platform

import (
	"testing"

	"github.com/ytget/mp3me/internal/model"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=RDAMVM", "dQw4w9WgXcQ"},
		{"short", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"playlist", "https://music.youtube.com/playlist?list=OLAK5uy_abc123", "OLAK5uy_abc123"},
		{"channel", "https://www.youtube.com/channel/UCabc/releases", "UCabc"},
		{"browse", "https://music.youtube.com/browse/MPREb_xyz", "MPREb_xyz"},
		{"unknown", "not a url", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractID(tt.url); got != tt.want {
				t.Errorf("ExtractID(%s) = %s, want %s", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"https://music.youtube.com/playlist?list=x", true},
		{"https://youtu.be/abc", true},
		{"https://vimeo.com/123", false},
		{"queen bohemian rhapsody", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsYouTubeURL(tt.url); got != tt.want {
				t.Errorf("IsYouTubeURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    model.ContentType
		wantErr bool
	}{
		{"watch", "https://music.youtube.com/watch?v=abc", model.ContentSong, false},
		{"watch inside playlist", "https://www.youtube.com/watch?v=abc&list=PL123", model.ContentSong, false},
		{"album playlist", "https://music.youtube.com/playlist?list=OLAK5uy_abc", model.ContentRelease, false},
		{"user playlist", "https://www.youtube.com/playlist?list=PL123", model.ContentPlaylist, false},
		{"album browse", "https://music.youtube.com/browse/MPREb_abc", model.ContentRelease, false},
		{"artist browse", "https://music.youtube.com/browse/UCabc", model.ContentArtist, false},
		{"channel", "https://www.youtube.com/channel/UCabc", model.ContentArtist, false},
		{"handle", "https://www.youtube.com/@queen", model.ContentArtist, false},
		{"not youtube", "https://example.com/watch?v=abc", "", true},
		{"unsupported", "https://www.youtube.com/feed/trending", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectContentType(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectContentType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectContentType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"playlist", "https://music.youtube.com/playlist?list=OLAK5uy_abc", "OLAK5uy_abc", false},
		{"with params", "https://www.youtube.com/watch?v=x&list=PL1&index=2", "PL1", false},
		{"fragment", "https://www.youtube.com/playlist?list=PL2#top", "PL2", false},
		{"no list", "https://www.youtube.com/watch?v=x", "", true},
		{"empty list", "https://www.youtube.com/playlist?list=&a=b", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPlaylistID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractPlaylistID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractPlaylistID() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestURLBuilders(t *testing.T) {
	if got := VideoURL("abc"); got != "https://music.youtube.com/watch?v=abc" {
		t.Errorf("VideoURL = %s", got)
	}
	if got := PlaylistURL("OLAK5uy_x"); got != "https://music.youtube.com/playlist?list=OLAK5uy_x" {
		t.Errorf("PlaylistURL = %s", got)
	}
	if got := ChannelURL("UCx"); got != "https://www.youtube.com/channel/UCx" {
		t.Errorf("ChannelURL = %s", got)
	}
	if got := BrowseURL("MPREb_x"); got != "https://music.youtube.com/browse/MPREb_x" {
		t.Errorf("BrowseURL = %s", got)
	}
}

func TestChannelTabURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		tab  string
		want string
	}{
		{"channel", "https://www.youtube.com/channel/UCx", "releases", "https://www.youtube.com/channel/UCx/releases"},
		{"trailing slash", "https://www.youtube.com/channel/UCx/", "playlists", "https://www.youtube.com/channel/UCx/playlists"},
		{"replace tab", "https://www.youtube.com/channel/UCx/releases", "playlists", "https://www.youtube.com/channel/UCx/playlists"},
		{"music channel", "https://music.youtube.com/channel/UCx", "releases", "https://www.youtube.com/channel/UCx/releases"},
		{"music browse", "https://music.youtube.com/browse/UCx", "releases", "https://www.youtube.com/channel/UCx/releases"},
		{"handle", "https://www.youtube.com/@queen", "releases", "https://www.youtube.com/@queen/releases"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChannelTabURL(tt.url, tt.tab); got != tt.want {
				t.Errorf("ChannelTabURL() = %s, want %s", got, tt.want)
			}
		})
	}
}
