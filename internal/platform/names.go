package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytget/mp3me/internal/model"
)

// Folder names used when tags are incomplete
const (
	UnknownName   = "Unknown"
	SinglesFolder = "Singles"
)

const invalidFilenameChars = `<>:"/\|?*`

// Characters and words ignored when comparing a song against existing files
var (
	dedupPunctuation = []string{"(", ")", "[", "]", "{", "}", "-", "_", ".", ",", "'", "\""}
	dedupNoiseWords  = []string{"official", "video", "audio", "lyrics", "ft", "feat", "remix", "version"}
)

// SanitizeFilename replaces characters that are invalid in file names,
// trims dots and spaces from both ends and collapses repeated spaces.
func SanitizeFilename(name string) string {
	if name == "" {
		return UnknownName
	}

	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(invalidFilenameChars, r) || r < 0x20 {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}

	out := strings.Trim(b.String(), ". ")
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	if out == "" {
		return UnknownName
	}
	return out
}

// OutputDir returns the folder a song is written to:
// Artist/Album, Artist/Singles without an album, Singles without an artist
// or when album folders are disabled.
func OutputDir(root string, song *model.Song, useAlbumFolders bool) string {
	if !useAlbumFolders || strings.TrimSpace(song.Artist) == "" {
		return filepath.Join(root, SinglesFolder)
	}
	artistDir := SanitizeFilename(song.Artist)
	if strings.TrimSpace(song.Album) == "" {
		return filepath.Join(root, artistDir, SinglesFolder)
	}
	return filepath.Join(root, artistDir, SanitizeFilename(song.Album))
}

// BaseFilename returns the file name without extension:
// "Artist - Title" with auto rename, "NN - Title" otherwise.
func BaseFilename(song *model.Song, autoRename bool) string {
	if autoRename {
		return fmt.Sprintf("%s - %s", SanitizeFilename(song.Artist), SanitizeFilename(song.Title))
	}
	track := song.TrackNumber
	if track <= 0 {
		track = 1
	}
	return fmt.Sprintf("%02d - %s", track, SanitizeFilename(song.Title))
}

// OutputPath joins OutputDir and BaseFilename with the format extension
func OutputPath(root string, song *model.Song, format string, useAlbumFolders, autoRename bool) string {
	return filepath.Join(OutputDir(root, song, useAlbumFolders), BaseFilename(song, autoRename)+"."+format)
}

// FindDuplicate returns the path of a file in dir of the given format whose
// name contains every word of the song title and artist.
func FindDuplicate(song *model.Song, dir, format string) (string, bool) {
	if strings.TrimSpace(song.Title) == "" || strings.TrimSpace(song.Artist) == "" {
		return "", false
	}

	titleWords := significantWords(normalizeForDedup(song.Title))
	artistWords := significantWords(normalizeForDedup(song.Artist))
	if len(titleWords) == 0 {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	ext := "." + strings.ToLower(format)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ext) {
			continue
		}
		fileClean := normalizeForDedup(strings.TrimSuffix(name, ext))
		if containsAll(fileClean, titleWords) && containsAll(fileClean, artistWords) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

func normalizeForDedup(s string) string {
	s = " " + strings.ToLower(strings.TrimSpace(s)) + " "
	for _, ch := range dedupPunctuation {
		s = strings.ReplaceAll(s, ch, " ")
	}
	for _, word := range dedupNoiseWords {
		s = strings.ReplaceAll(s, " "+word+" ", " ")
	}
	return s
}

func significantWords(s string) []string {
	var words []string
	for _, w := range strings.Fields(s) {
		if len(w) > 1 {
			words = append(words, w)
		}
	}
	return words
}

func containsAll(haystack string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}
