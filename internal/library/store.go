// Package library keeps the download history and an index of the local
// music folder in SQLite.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// timeLayout has a fixed width so stored times sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DownloadRecord is one finished download
type DownloadRecord struct {
	ID           int64     `json:"id"`
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	Artist       string    `json:"artist"`
	Album        string    `json:"album"`
	Path         string    `json:"path"`
	Format       string    `json:"format"`
	Quality      string    `json:"quality"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Track is one audio file of the local library
type Track struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Album     string    `json:"album"`
	Duration  float64   `json:"duration"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Store is the SQLite backed history and library index
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.WithFields(log.Fields{"module": "library", "function": "Open"}).Infof("Database initialized at %s", path)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			artist TEXT NOT NULL DEFAULT '',
			album TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL,
			format TEXT NOT NULL DEFAULT '',
			quality TEXT NOT NULL DEFAULT '',
			downloaded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_video_id ON downloads(video_id)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_downloaded_at ON downloads(downloaded_at DESC)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			path TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			artist TEXT NOT NULL DEFAULT '',
			album TEXT NOT NULL DEFAULT '',
			duration REAL NOT NULL DEFAULT 0,
			size INTEGER NOT NULL DEFAULT 0,
			mod_time TEXT NOT NULL,
			scanned_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_artist_album ON tracks(artist, album)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// RecordDownload inserts a history record. A zero DownloadedAt means now.
func (s *Store) RecordDownload(ctx context.Context, rec DownloadRecord) error {
	if rec.DownloadedAt.IsZero() {
		rec.DownloadedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO downloads (video_id, title, artist, album, path, format, quality, downloaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VideoID, rec.Title, rec.Artist, rec.Album, rec.Path, rec.Format, rec.Quality, formatTime(rec.DownloadedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// HasVideo returns the path of the latest download of videoID
func (s *Store) HasVideo(ctx context.Context, videoID string) (string, bool, error) {
	if videoID == "" {
		return "", false, nil
	}
	var path string
	err := s.db.QueryRowContext(ctx,
		`SELECT path FROM downloads WHERE video_id = ? ORDER BY downloaded_at DESC, id DESC LIMIT 1`,
		videoID,
	).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query download: %w", err)
	}
	return path, true, nil
}

// RecentDownloads returns the latest downloads, newest first
func (s *Store) RecentDownloads(ctx context.Context, limit int) ([]DownloadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, title, artist, album, path, format, quality, downloaded_at
		 FROM downloads
		 ORDER BY downloaded_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []DownloadRecord
	for rows.Next() {
		var r DownloadRecord
		var at string
		if err := rows.Scan(&r.ID, &r.VideoID, &r.Title, &r.Artist, &r.Album, &r.Path, &r.Format, &r.Quality, &at); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		r.DownloadedAt = parseTime(at)
		records = append(records, r)
	}
	return records, rows.Err()
}

// UpsertTrack inserts or replaces a library track
func (s *Store) UpsertTrack(ctx context.Context, t Track) error {
	if t.ScannedAt.IsZero() {
		t.ScannedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracks (path, title, artist, album, duration, size, mod_time, scanned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration = excluded.duration,
			size = excluded.size,
			mod_time = excluded.mod_time,
			scanned_at = excluded.scanned_at`,
		t.Path, t.Title, t.Artist, t.Album, t.Duration, t.Size, formatTime(t.ModTime), formatTime(t.ScannedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert track: %w", err)
	}
	return nil
}

// TrackModTime returns the modification time recorded for path
func (s *Store) TrackModTime(ctx context.Context, path string) (time.Time, bool, error) {
	var mod string
	err := s.db.QueryRowContext(ctx, `SELECT mod_time FROM tracks WHERE path = ?`, path).Scan(&mod)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query track: %w", err)
	}
	return parseTime(mod), true, nil
}

// likeEscaper makes LIKE wildcards in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Tracks returns library tracks whose title, artist or album contains filter
func (s *Store) Tracks(ctx context.Context, filter string) ([]Track, error) {
	query := `SELECT path, title, artist, album, duration, size, mod_time, scanned_at FROM tracks`
	var args []interface{}
	if f := strings.TrimSpace(filter); f != "" {
		query += ` WHERE title LIKE ? ESCAPE '\' OR artist LIKE ? ESCAPE '\' OR album LIKE ? ESCAPE '\'`
		like := "%" + likeEscaper.Replace(f) + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY artist COLLATE NOCASE, album COLLATE NOCASE, path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		var mod, scanned string
		if err := rows.Scan(&t.Path, &t.Title, &t.Artist, &t.Album, &t.Duration, &t.Size, &mod, &scanned); err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		t.ModTime = parseTime(mod)
		t.ScannedAt = parseTime(scanned)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// DeleteMissing removes tracks under root whose files no longer exist
func (s *Store) DeleteMissing(ctx context.Context, root string) (int, error) {
	prefix := filepath.Clean(root) + string(filepath.Separator)
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM tracks WHERE substr(path, 1, ?) = ?`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to query tracks: %w", err)
	}
	var missing []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan track row: %w", err)
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			missing = append(missing, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, p := range missing {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE path = ?`, p); err != nil {
			return 0, fmt.Errorf("failed to delete track: %w", err)
		}
	}
	return len(missing), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
