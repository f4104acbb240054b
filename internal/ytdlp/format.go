package ytdlp

import (
	"path/filepath"
)

// Audio quality tiers
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// BaseFormat prefers real audio streams over opus video soundtracks
const BaseFormat = "bestaudio[acodec!=opus]/bestaudio"

// Retry counts passed to yt-dlp
const (
	Retries         = "10"
	FragmentRetries = "10"
)

// FormatSelector returns the yt-dlp -f selector for an output format and quality
func FormatSelector(format, quality string) string {
	switch quality {
	case QualityHigh:
		switch format {
		case "mp3":
			return BaseFormat + "[abr>=256]/bestaudio"
		case "flac":
			return BaseFormat + "[acodec=flac]/bestaudio"
		case "wav":
			return BaseFormat + "/bestaudio"
		case "ogg":
			return BaseFormat + "[acodec=vorbis]/bestaudio"
		case "m4a":
			return "bestaudio[ext=m4a][abr>=256]/" + BaseFormat
		}
	case QualityMedium:
		return BaseFormat + "[abr>=192][abr<=256]/" + BaseFormat
	case QualityLow:
		return BaseFormat + "[abr>=128][abr<=192]/" + BaseFormat
	}
	return BaseFormat
}

// OutputTemplate is the -o value for a request
func OutputTemplate(req DownloadRequest) string {
	return filepath.Join(req.OutputDir, req.BaseName+".%(ext)s")
}

// ExpectedPath is where the converted file should end up
func ExpectedPath(req DownloadRequest) string {
	return filepath.Join(req.OutputDir, req.BaseName+"."+req.Format)
}

// BuildDownloadArgs builds the yt-dlp arguments for an audio download
func BuildDownloadArgs(req DownloadRequest) []string {
	args := []string{
		"-f", FormatSelector(req.Format, req.Quality),
		"-o", OutputTemplate(req),
		"--extract-audio",
		"--audio-format", req.Format,
		"--audio-quality", "0",
	}
	// WAV has no cover art container
	if req.Format != "wav" {
		args = append(args, "--embed-thumbnail")
	}
	args = append(args,
		"--add-metadata",
		"--no-playlist",
		"--newline",
		"--no-warnings",
		"--retries", Retries,
		"--fragment-retries", FragmentRetries,
	)

	switch req.Format {
	case "mp3", "m4a":
		args = append(args, "--postprocessor-args", "ffmpeg:-ar 44100 -ac 2")
	case "flac":
		args = append(args, "--postprocessor-args", "ffmpeg:-compression_level 12 -sample_fmt s16")
	}

	return append(args, req.URL)
}
