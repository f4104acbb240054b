package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ytget/mp3me/internal/tagger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "mp3me.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	defer s.Close()

	if err := s.RecordDownload(context.Background(), DownloadRecord{VideoID: "abc", Path: "/x.mp3"}); err != nil {
		t.Fatalf("RecordDownload() error = %v", err)
	}
	if _, ok, _ := s.HasVideo(context.Background(), "abc"); !ok {
		t.Error("in-memory store lost the record")
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mp3me.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordDownload(context.Background(), DownloadRecord{VideoID: "abc", Path: "/x.mp3"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if p, ok, err := s.HasVideo(context.Background(), "abc"); err != nil || !ok || p != "/x.mp3" {
		t.Errorf("HasVideo() = %q, %v, %v", p, ok, err)
	}
}

func TestHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	records := []DownloadRecord{
		{VideoID: "v1", Title: "One", Path: "/m/one.mp3", DownloadedAt: base},
		{VideoID: "v2", Title: "Two", Path: "/m/two.mp3", DownloadedAt: base.Add(500 * time.Millisecond)},
		{VideoID: "v1", Title: "One again", Path: "/m/one (1).mp3", DownloadedAt: base.Add(time.Second)},
	}
	for _, r := range records {
		if err := s.RecordDownload(ctx, r); err != nil {
			t.Fatalf("RecordDownload() error = %v", err)
		}
	}

	t.Run("has video returns latest path", func(t *testing.T) {
		path, ok, err := s.HasVideo(ctx, "v1")
		if err != nil || !ok {
			t.Fatalf("HasVideo() = %v, %v", ok, err)
		}
		if path != "/m/one (1).mp3" {
			t.Errorf("path = %s", path)
		}
	})

	t.Run("unknown and empty ids", func(t *testing.T) {
		for _, id := range []string{"", "nope"} {
			if _, ok, err := s.HasVideo(ctx, id); ok || err != nil {
				t.Errorf("HasVideo(%q) = %v, %v", id, ok, err)
			}
		}
	})

	t.Run("recent newest first", func(t *testing.T) {
		recent, err := s.RecentDownloads(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(recent) != 2 {
			t.Fatalf("got %d records", len(recent))
		}
		if recent[0].Title != "One again" || recent[1].Title != "Two" {
			t.Errorf("order = %s, %s", recent[0].Title, recent[1].Title)
		}
		if !recent[1].DownloadedAt.Equal(base.Add(500 * time.Millisecond)) {
			t.Errorf("DownloadedAt = %v", recent[1].DownloadedAt)
		}
	})
}

func TestTracks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tracks := []Track{
		{Path: "/music/queen/jazz/01.mp3", Title: "Mustapha", Artist: "Queen", Album: "Jazz", ModTime: mod},
		{Path: "/music/abba/arrival/01.mp3", Title: "When I Kissed the Teacher", Artist: "ABBA", Album: "Arrival", ModTime: mod},
		{Path: "/music/crystal waters/storyteller/03.mp3", Title: "100% Pure Love", Artist: "Crystal Waters", Album: "Storyteller", ModTime: mod},
	}
	for _, tr := range tracks {
		if err := s.UpsertTrack(ctx, tr); err != nil {
			t.Fatalf("UpsertTrack() error = %v", err)
		}
	}

	all, err := s.Tracks(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Artist != "ABBA" {
		t.Fatalf("Tracks() = %+v", all)
	}

	tracks[0].Title = "Bicycle Race"
	if err := s.UpsertTrack(ctx, tracks[0]); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		filter string
		want   []string
	}{
		{"queen", []string{"Bicycle Race"}},
		{"arrival", []string{"When I Kissed the Teacher"}},
		{"race", []string{"Bicycle Race"}},
		{"nothing", nil},
		{"%", []string{"100% Pure Love"}},
		{"_", nil},
		{`\`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := s.Tracks(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tracks, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Title != tt.want[i] {
					t.Errorf("track %d = %s, want %s", i, got[i].Title, tt.want[i])
				}
			}
		})
	}

	got, ok, err := s.TrackModTime(ctx, tracks[0].Path)
	if err != nil || !ok || !got.Equal(mod) {
		t.Errorf("TrackModTime() = %v, %v, %v", got, ok, err)
	}
	if _, ok, _ := s.TrackModTime(ctx, "/missing.mp3"); ok {
		t.Error("TrackModTime() found an unknown path")
	}
}

func TestDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root := t.TempDir()

	kept := filepath.Join(root, "kept.mp3")
	if err := os.WriteFile(kept, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(root+"-other", "gone.mp3")
	for _, p := range []string{kept, filepath.Join(root, "gone.mp3"), outside} {
		if err := s.UpsertTrack(ctx, Track{Path: p, Title: filepath.Base(p)}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.DeleteMissing(ctx, root)
	if err != nil {
		t.Fatalf("DeleteMissing() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok, _ := s.TrackModTime(ctx, outside); !ok {
		t.Error("track outside root should be left alone")
	}
}

type fakeTags struct {
	mu    sync.Mutex
	reads []string
	fail  map[string]bool
}

func (f *fakeTags) Read(ctx context.Context, path string) (*tagger.Tags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, filepath.Base(path))
	if f.fail[filepath.Base(path)] {
		return nil, errors.New("broken tags")
	}
	return &tagger.Tags{Title: "T " + filepath.Base(path), Artist: "Artist", Album: "Album", Duration: 180}, nil
}

func TestScanner_Scan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root := t.TempDir()

	files := map[string]string{
		"a.mp3":            "a",
		"album/b.flac":     "b",
		"album/cover.jpg":  "img",
		"album/broken.m4a": "c",
		"notes.txt":        "txt",
	}
	for name, data := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tags := &fakeTags{fail: map[string]bool{"broken.m4a": true}}
	scanner := NewScanner(s, tags)

	var progress [][2]int
	count, err := scanner.Scan(ctx, root, func(scanned, total int) {
		progress = append(progress, [2]int{scanned, total})
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if len(progress) != 3 || progress[2] != [2]int{3, 3} {
		t.Errorf("progress = %v", progress)
	}

	tracks, err := s.Tracks(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 3 {
		t.Fatalf("indexed %d tracks, want 3", len(tracks))
	}
	titles := map[string]bool{}
	for _, tr := range tracks {
		titles[tr.Title] = true
	}
	for _, want := range []string{"T a.mp3", "T b.flac", "broken"} {
		if !titles[want] {
			t.Errorf("missing title %q in %v", want, titles)
		}
	}

	t.Run("unchanged files are skipped", func(t *testing.T) {
		tags.reads = nil
		if _, err := scanner.Scan(ctx, root, nil); err != nil {
			t.Fatal(err)
		}
		if len(tags.reads) != 0 {
			t.Errorf("re-read %v", tags.reads)
		}
	})

	t.Run("removed files leave the index", func(t *testing.T) {
		if err := os.Remove(filepath.Join(root, "a.mp3")); err != nil {
			t.Fatal(err)
		}
		count, err := scanner.Scan(ctx, root, nil)
		if err != nil || count != 2 {
			t.Fatalf("Scan() = %d, %v", count, err)
		}
		tracks, _ := s.Tracks(ctx, "")
		if len(tracks) != 2 {
			t.Errorf("indexed %d tracks after removal", len(tracks))
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := scanner.Scan(cctx, root, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
