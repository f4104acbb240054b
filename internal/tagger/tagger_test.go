package tagger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/audio"
	"github.com/ytget/mp3me/internal/model"
)

var jpegCover = &artwork.Image{
	Data:     []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"),
	MIMEType: "image/jpeg",
}

func writeFakeBinary(t *testing.T, name, script string) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestTrackString(t *testing.T) {
	tests := []struct {
		name string
		tags Tags
		want string
	}{
		{"none", Tags{}, ""},
		{"number", Tags{TrackNumber: 3}, "3"},
		{"with total", Tags{TrackNumber: 3, TrackTotal: 12}, "3/12"},
		{"total only", Tags{TrackTotal: 12}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tags.TrackString(); got != tt.want {
				t.Errorf("TrackString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTagsFromSong(t *testing.T) {
	song := &model.Song{Title: "Mustapha", Artist: "Queen", AlbumArtist: "Queen", Album: "Jazz", TrackNumber: 1, TrackTotal: 13, Year: "1978", Genre: "Rock"}
	tags := TagsFromSong(song, "Allah, Allah")
	want := Tags{Title: "Mustapha", Artist: "Queen", AlbumArtist: "Queen", Album: "Jazz", TrackNumber: 1, TrackTotal: 13, Year: "1978", Genre: "Rock", Lyrics: "Allah, Allah"}
	if tags != want {
		t.Errorf("TagsFromSong() = %+v, want %+v", tags, want)
	}
}

func TestWriteRead_MP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01 - Mustapha.mp3")
	if err := os.WriteFile(path, []byte("\xff\xfb\x90\x00fake mpeg frame"), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := New(nil)
	in := Tags{
		Title: "Mustapha", Artist: "Queen", AlbumArtist: "Queen", Album: "Jazz",
		TrackNumber: 1, TrackTotal: 13, Year: "1978", Genre: "Rock", Lyrics: "Ibrahim",
	}
	if err := tagger.Write(context.Background(), path, in, jpegCover); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out, err := tagger.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if *out != in {
		t.Errorf("Read() = %+v, want %+v", *out, in)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()
	pics := tag.GetFrames("APIC")
	if len(pics) != 1 {
		t.Fatalf("expected 1 picture frame, got %d", len(pics))
	}
	pic, ok := pics[0].(id3v2.PictureFrame)
	if !ok || pic.PictureType != id3v2.PTFrontCover || pic.MimeType != "image/jpeg" {
		t.Errorf("unexpected picture frame %+v", pics[0])
	}

	// Writing again replaces the cover instead of adding a second one
	if err := tagger.Write(context.Background(), path, in, jpegCover); err != nil {
		t.Fatal(err)
	}
	tag2, _ := id3v2.Open(path, id3v2.Options{Parse: true})
	defer tag2.Close()
	if n := len(tag2.GetFrames("APIC")); n != 1 {
		t.Errorf("expected 1 picture frame after rewrite, got %d", n)
	}
}

func TestRead_TitleFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Queen - Mustapha.mp3")
	os.WriteFile(path, []byte("\xff\xfb\x90\x00"), 0644)

	tags, err := New(nil).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tags.Title != "Queen - Mustapha" {
		t.Errorf("Title = %q", tags.Title)
	}
}

func TestWrite_FFmpegFormats(t *testing.T) {
	for _, ext := range []string{".flac", ".ogg", ".wav"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			argsFile := filepath.Join(dir, "args")
			path := filepath.Join(dir, "song"+ext)
			os.WriteFile(path, []byte("audio"), 0644)

			ffmpeg := writeFakeBinary(t, "ffmpeg", `echo "$@" > `+argsFile+`
for last; do true; done
echo tagged > "$last"
`)
			tagger := New(audio.NewService(ffmpeg, ""))
			err := tagger.Write(context.Background(), path, Tags{Title: "Song", TrackNumber: 2, TrackTotal: 9}, jpegCover)
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			args, _ := os.ReadFile(argsFile)
			if !strings.Contains(string(args), "title=Song") || !strings.Contains(string(args), "track=2/9") {
				t.Errorf("unexpected args: %s", args)
			}
			wantCover := ext == ".flac"
			if strings.Contains(string(args), "attached_pic") != wantCover {
				t.Errorf("cover attached = %v, want %v: %s", !wantCover, wantCover, args)
			}
		})
	}
}

func TestWrite_Unsupported(t *testing.T) {
	err := New(nil).Write(context.Background(), "/music/song.aiff", Tags{}, nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRead_Probe(t *testing.T) {
	ffprobe := writeFakeBinary(t, "ffprobe", `echo '{"format":{"duration":"200.5","tags":{"TITLE":"Song","ARTIST":"Band","ALBUM":"LP","DATE":"2001-05-01","TRACKNUMBER":"4/10","album_artist":"Band"}}}'`)
	tagger := New(audio.NewService("", ffprobe))

	tags, err := tagger.Read(context.Background(), "/music/song.flac")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := Tags{Title: "Song", Artist: "Band", AlbumArtist: "Band", Album: "LP", Year: "2001", TrackNumber: 4, TrackTotal: 10, Duration: 200.5}
	if *tags != want {
		t.Errorf("Read() = %+v, want %+v", *tags, want)
	}
}
