package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ytget/mp3me/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Bohemian Rhapsody", "Bohemian Rhapsody"},
		{"invalid chars", `AC/DC: Back?In*Black`, "AC_DC_ Back_In_Black"},
		{"dots and spaces trimmed", "  ..Song.. ", "Song"},
		{"repeated spaces", "A   B", "A B"},
		{"empty", "", "Unknown"},
		{"only dots", "...", "Unknown"},
		{"unicode kept", "Кино - Группа крови", "Кино - Группа крови"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputDir(t *testing.T) {
	root := "/music"
	tests := []struct {
		name         string
		song         *model.Song
		albumFolders bool
		want         string
	}{
		{"artist and album", &model.Song{Artist: "Queen", Album: "A Night at the Opera"}, true, filepath.Join(root, "Queen", "A Night at the Opera")},
		{"no album", &model.Song{Artist: "Queen"}, true, filepath.Join(root, "Queen", "Singles")},
		{"no artist", &model.Song{Album: "Hits"}, true, filepath.Join(root, "Singles")},
		{"folders disabled", &model.Song{Artist: "Queen", Album: "Jazz"}, false, filepath.Join(root, "Singles")},
		{"sanitized", &model.Song{Artist: "AC/DC", Album: "Back: In Black"}, true, filepath.Join(root, "AC_DC", "Back_ In Black")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputDir(root, tt.song, tt.albumFolders); got != tt.want {
				t.Errorf("OutputDir() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBaseFilename(t *testing.T) {
	song := &model.Song{Title: "Bicycle Race", Artist: "Queen", TrackNumber: 3}

	if got := BaseFilename(song, true); got != "Queen - Bicycle Race" {
		t.Errorf("auto rename = %s", got)
	}
	if got := BaseFilename(song, false); got != "03 - Bicycle Race" {
		t.Errorf("track name = %s", got)
	}
	if got := BaseFilename(&model.Song{Title: "Intro"}, false); got != "01 - Intro" {
		t.Errorf("default track = %s", got)
	}
}

func TestOutputPath(t *testing.T) {
	song := &model.Song{Title: "Mustapha", Artist: "Queen", Album: "Jazz", TrackNumber: 1}
	want := filepath.Join("/music", "Queen", "Jazz", "Queen - Mustapha.flac")
	if got := OutputPath("/music", song, "flac", true, true); got != want {
		t.Errorf("OutputPath() = %s, want %s", got, want)
	}
}

func TestFindDuplicate(t *testing.T) {
	dir := t.TempDir()
	queen := "Queen - Bohemian Rhapsody (Official Video).mp3"
	daftPunk := "Daft Punk - One More Time.flac"
	for _, name := range []string{queen, daftPunk} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		song   *model.Song
		format string
		want   string
	}{
		{"noise words ignored", &model.Song{Title: "Bohemian Rhapsody", Artist: "Queen"}, "mp3", queen},
		{"case insensitive", &model.Song{Title: "bohemian rhapsody", Artist: "QUEEN"}, "mp3", queen},
		{"other extension", &model.Song{Title: "Bohemian Rhapsody", Artist: "Queen"}, "flac", ""},
		{"different artist", &model.Song{Title: "One More Time", Artist: "Britney Spears"}, "flac", ""},
		{"match flac", &model.Song{Title: "One More Time", Artist: "Daft Punk"}, "flac", daftPunk},
		{"empty artist", &model.Song{Title: "One More Time"}, "flac", ""},
		{"empty title", &model.Song{Artist: "Queen"}, "mp3", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDuplicate(tt.song, dir, tt.format)
			if ok != (tt.want != "") {
				t.Fatalf("FindDuplicate() ok = %v, want match %q", ok, tt.want)
			}
			if ok && got != filepath.Join(dir, tt.want) {
				t.Errorf("FindDuplicate() = %s, want %s", got, filepath.Join(dir, tt.want))
			}
		})
	}

	if _, ok := FindDuplicate(&model.Song{Title: "X Song", Artist: "Y"}, filepath.Join(dir, "missing"), "mp3"); ok {
		t.Error("missing directory should not report duplicates")
	}
}
