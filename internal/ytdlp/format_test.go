package ytdlp

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatSelector(t *testing.T) {
	tests := []struct {
		format  string
		quality string
		want    string
	}{
		{"mp3", QualityHigh, "bestaudio[acodec!=opus]/bestaudio[abr>=256]/bestaudio"},
		{"flac", QualityHigh, "bestaudio[acodec!=opus]/bestaudio[acodec=flac]/bestaudio"},
		{"wav", QualityHigh, "bestaudio[acodec!=opus]/bestaudio/bestaudio"},
		{"ogg", QualityHigh, "bestaudio[acodec!=opus]/bestaudio[acodec=vorbis]/bestaudio"},
		{"m4a", QualityHigh, "bestaudio[ext=m4a][abr>=256]/bestaudio[acodec!=opus]/bestaudio"},
		{"mp3", QualityMedium, "bestaudio[acodec!=opus]/bestaudio[abr>=192][abr<=256]/bestaudio[acodec!=opus]/bestaudio"},
		{"flac", QualityLow, "bestaudio[acodec!=opus]/bestaudio[abr>=128][abr<=192]/bestaudio[acodec!=opus]/bestaudio"},
		{"mp3", "ultra", BaseFormat},
		{"aiff", QualityHigh, BaseFormat},
	}
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.quality, func(t *testing.T) {
			if got := FormatSelector(tt.format, tt.quality); got != tt.want {
				t.Errorf("FormatSelector() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildDownloadArgs(t *testing.T) {
	req := DownloadRequest{
		URL:       "https://music.youtube.com/watch?v=abc",
		OutputDir: "/music/Queen/Jazz",
		BaseName:  "Queen - Mustapha",
		Format:    "mp3",
		Quality:   QualityHigh,
	}

	args := BuildDownloadArgs(req)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"--extract-audio",
		"--audio-format mp3",
		"--audio-quality 0",
		"--embed-thumbnail",
		"--add-metadata",
		"--no-playlist",
		"--newline",
		"--retries 10",
		"--fragment-retries 10",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != req.URL {
		t.Errorf("URL must be last, got %s", args[len(args)-1])
	}

	idx := indexOf(args, "-o")
	if idx < 0 || args[idx+1] != filepath.Join("/music/Queen/Jazz", "Queen - Mustapha.%(ext)s") {
		t.Errorf("unexpected output template in %v", args)
	}
	idx = indexOf(args, "--postprocessor-args")
	if idx < 0 || args[idx+1] != "ffmpeg:-ar 44100 -ac 2" {
		t.Errorf("mp3 should resample to 44.1kHz stereo: %v", args)
	}
}

func TestBuildDownloadArgs_PerFormat(t *testing.T) {
	tests := []struct {
		format        string
		wantThumbnail bool
		wantPP        string
	}{
		{"flac", true, "ffmpeg:-compression_level 12 -sample_fmt s16"},
		{"m4a", true, "ffmpeg:-ar 44100 -ac 2"},
		{"wav", false, ""},
		{"ogg", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			args := BuildDownloadArgs(DownloadRequest{URL: "u", OutputDir: "/d", BaseName: "b", Format: tt.format, Quality: QualityHigh})
			if got := indexOf(args, "--embed-thumbnail") >= 0; got != tt.wantThumbnail {
				t.Errorf("embed thumbnail = %v, want %v", got, tt.wantThumbnail)
			}
			idx := indexOf(args, "--postprocessor-args")
			switch {
			case tt.wantPP == "" && idx >= 0:
				t.Errorf("unexpected postprocessor args %s", args[idx+1])
			case tt.wantPP != "" && (idx < 0 || args[idx+1] != tt.wantPP):
				t.Errorf("postprocessor args missing or wrong: %v", args)
			}
		})
	}
}

func TestExpectedPath(t *testing.T) {
	req := DownloadRequest{OutputDir: "/music", BaseName: "Song", Format: "ogg"}
	if got := ExpectedPath(req); got != filepath.Join("/music", "Song.ogg") {
		t.Errorf("ExpectedPath() = %s", got)
	}
}

func indexOf(args []string, v string) int {
	for i, a := range args {
		if a == v {
			return i
		}
	}
	return -1
}
