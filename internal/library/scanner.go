package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/platform"
	"github.com/ytget/mp3me/internal/tagger"
)

// TagReader reads the tags of an audio file
type TagReader interface {
	Read(ctx context.Context, path string) (*tagger.Tags, error)
}

// ScanProgress reports scanned files out of total
type ScanProgress func(scanned, total int)

// Scanner indexes a music folder into the store
type Scanner struct {
	store *Store
	tags  TagReader
}

func NewScanner(store *Store, tags TagReader) *Scanner {
	return &Scanner{store: store, tags: tags}
}

// Scan walks root, reads tags of new or changed files and drops tracks whose
// files are gone. It returns the number of audio files found.
func (s *Scanner) Scan(ctx context.Context, root string, onProgress ScanProgress) (int, error) {
	logger := log.WithFields(log.Fields{"module": "library", "function": "Scan"})

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && platform.IsAudioFile(path) {
			files = append(files, path)
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, err
	}

	updated := 0
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		changed, err := s.indexFile(ctx, path)
		if err != nil {
			logger.Warnf("Failed to index %s: %v", path, err)
		} else if changed {
			updated++
		}
		if onProgress != nil {
			onProgress(i+1, len(files))
		}
	}

	removed, err := s.store.DeleteMissing(ctx, root)
	if err != nil {
		return len(files), err
	}

	logger.Infof("Scanned %s: %d files, %d updated, %d removed", root, len(files), updated, removed)
	return len(files), nil
}

func (s *Scanner) indexFile(ctx context.Context, path string) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	known, ok, err := s.store.TrackModTime(ctx, path)
	if err != nil {
		return false, err
	}
	if ok && known.Equal(stat.ModTime().UTC()) {
		return false, nil
	}

	track := Track{Path: path, Size: stat.Size(), ModTime: stat.ModTime()}
	if tags, err := s.tags.Read(ctx, path); err == nil {
		track.Title = tags.Title
		track.Artist = tags.Artist
		track.Album = tags.Album
		track.Duration = tags.Duration
	} else {
		log.WithFields(log.Fields{"module": "library", "function": "indexFile"}).Debugf("No tags for %s: %v", path, err)
		base := filepath.Base(path)
		track.Title = base[:len(base)-len(filepath.Ext(base))]
	}
	return true, s.store.UpsertTrack(ctx, track)
}
