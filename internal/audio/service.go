// Package audio runs ffmpeg and ffprobe over downloaded files: probing,
// tag remuxing with cover art and loudness normalization.
package audio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// FFmpeg constants
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	JobIDPrefix         = "audio-"

	// EBU R128 targets used by streaming services
	LoudnormFilter = "loudnorm=I=-14:TP=-1.5:LRA=11"
)

// ErrNotInstalled is returned when ffmpeg or ffprobe cannot be started
var ErrNotInstalled = errors.New("ffmpeg not installed")

// ProgressFunc receives normalization progress in 0..100
type ProgressFunc func(percent float64)

// ProbeResult is the container level information of a file
type ProbeResult struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Date        string
	Track       string
	Lyrics      string
	Duration    float64
}

// Service runs ffmpeg jobs
type Service struct {
	FFmpegPath  string
	FFprobePath string
}

// NewService creates a service. Empty paths use the binaries from PATH.
func NewService(ffmpegPath, ffprobePath string) *Service {
	return &Service{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

func (s *Service) ffmpeg() string {
	if s.FFmpegPath != "" {
		return s.FFmpegPath
	}
	return FFmpegCommand
}

func (s *Service) ffprobe() string {
	if s.FFprobePath != "" {
		return s.FFprobePath
	}
	return FFprobeCommand
}

// Version returns the first line of ffmpeg -version
func (s *Service) Version(ctx context.Context) (string, error) {
	out, err := s.output(ctx, s.ffmpeg(), "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}

// GetDuration returns the duration of a media file in seconds
func (s *Service) GetDuration(ctx context.Context, filePath string) (float64, error) {
	out, err := s.output(ctx, s.ffprobe(), "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

type probeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// Probe reads the format tags and duration of a file
func (s *Service) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	out, err := s.output(ctx, s.ffprobe(), "-v", FFprobeLogLevel, "-show_format", "-of", "json", filePath)
	if err != nil {
		return nil, err
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	// Tag keys differ in case between containers
	tags := make(map[string]string, len(probe.Format.Tags))
	for k, v := range probe.Format.Tags {
		tags[strings.ToLower(k)] = v
	}

	res := &ProbeResult{
		Title:       tags["title"],
		Artist:      tags["artist"],
		AlbumArtist: firstTag(tags, "album_artist", "albumartist"),
		Album:       tags["album"],
		Genre:       tags["genre"],
		Date:        firstTag(tags, "date", "year"),
		Track:       firstTag(tags, "track", "tracknumber"),
		Lyrics:      firstTag(tags, "lyrics", "unsyncedlyrics"),
	}
	if probe.Format.Duration != "" {
		res.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	}
	return res, nil
}

// WriteTags remuxes filePath with the given metadata. For flac and m4a the
// cover is attached as a picture stream. The original is replaced only after
// ffmpeg succeeds.
func (s *Service) WriteTags(ctx context.Context, filePath string, metadata map[string]string, cover []byte) error {
	logger := log.WithFields(log.Fields{"module": "audio", "function": "WriteTags"})
	jobID := generateJobID()

	coverPath := ""
	if len(cover) > 0 && SupportsAttachedPicture(filePath) {
		coverPath = filepath.Join(os.TempDir(), jobID+".jpg")
		if err := os.WriteFile(coverPath, cover, 0644); err != nil {
			return fmt.Errorf("failed to write cover: %w", err)
		}
		defer os.Remove(coverPath)
	}

	tmpPath := tempPath(filePath, jobID)
	args := s.BuildTagArgs(filePath, tmpPath, metadata, coverPath)
	logger.Debugf("[%s] ffmpeg %s", jobID, strings.Join(args, " "))

	if _, err := s.output(ctx, s.ffmpeg(), args...); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", filePath, err)
	}
	return nil
}

// BuildTagArgs builds the ffmpeg arguments of a tag remux
func (s *Service) BuildTagArgs(inputPath, outputPath string, metadata map[string]string, coverPath string) []string {
	args := []string{"-y", "-i", inputPath}
	if coverPath != "" {
		args = append(args, "-i", coverPath, "-map", "0:a", "-map", "1:0")
	} else {
		args = append(args, "-map", "0")
	}
	args = append(args, "-c", "copy", "-map_metadata", "0")

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if metadata[k] == "" {
			continue
		}
		args = append(args, "-metadata", k+"="+metadata[k])
	}

	if coverPath != "" {
		args = append(args,
			"-metadata:s:v", "title=Album cover",
			"-metadata:s:v", "comment=Cover (front)",
			"-disposition:v:0", "attached_pic",
		)
	}
	return append(args, outputPath)
}

// Normalize applies a loudness normalization pass in place
func (s *Service) Normalize(ctx context.Context, filePath string, onProgress ProgressFunc) error {
	logger := log.WithFields(log.Fields{"module": "audio", "function": "Normalize"})
	jobID := generateJobID()

	duration, err := s.GetDuration(ctx, filePath)
	if err != nil {
		logger.Warnf("[%s] Failed to get duration for %s: %v", jobID, filePath, err)
	}

	tmpPath := tempPath(filePath, jobID)
	args := s.BuildNormalizeArgs(filePath, tmpPath)
	cmd := exec.CommandContext(ctx, s.ffmpeg(), args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return startError(err)
	}

	lastLine := monitorProgress(stderr, duration, onProgress)
	err = cmd.Wait()

	if ctx.Err() != nil {
		os.Remove(tmpPath)
		return ctx.Err()
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ffmpeg loudnorm failed: %w: %s", err, lastLine)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", filePath, err)
	}
	if onProgress != nil {
		onProgress(100)
	}
	logger.Debugf("[%s] Normalized %s", jobID, filePath)
	return nil
}

// BuildNormalizeArgs builds the ffmpeg arguments of a loudnorm pass
func (s *Service) BuildNormalizeArgs(inputPath, outputPath string) []string {
	args := []string{
		"-y",
		"-i", inputPath,
		"-map", "0:a",
		"-map", "0:v?",
		"-c:v", "copy",
		"-map_metadata", "0",
		"-af", LoudnormFilter,
	}
	args = append(args, encoderArgs(filepath.Ext(inputPath))...)
	return append(args,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	)
}

// SupportsAttachedPicture reports whether ffmpeg can embed a cover stream for the file
func SupportsAttachedPicture(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".flac", ".m4a", ".mp3":
		return true
	}
	return false
}

func encoderArgs(ext string) []string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return []string{"-c:a", "libmp3lame", "-b:a", "320k"}
	case ".m4a":
		return []string{"-c:a", "aac", "-b:a", "256k"}
	case ".flac":
		return []string{"-c:a", "flac", "-compression_level", "12"}
	case ".ogg":
		return []string{"-c:a", "libvorbis", "-q:a", "8"}
	case ".wav":
		return []string{"-c:a", "pcm_s16le"}
	}
	return nil
}

// monitorProgress reads -progress output and returns the last non progress line
func monitorProgress(r io.Reader, totalDuration float64, onProgress ProgressFunc) string {
	var last string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ProgressTimePrefix) {
			if line != "" && !strings.Contains(line, "=") {
				last = line
			}
			continue
		}
		if totalDuration <= 0 || onProgress == nil {
			continue
		}
		us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
		if err != nil {
			continue
		}
		progress := float64(us) / 1000000.0 / totalDuration * 100
		if progress > 100 {
			progress = 100
		}
		if progress < 0 {
			progress = 0
		}
		onProgress(progress)
	}
	return last
}

func (s *Service) output(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, startError(err)
		}
		return nil, fmt.Errorf("%s failed: %w: %s", filepath.Base(bin), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func startError(err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}
	return fmt.Errorf("failed to start ffmpeg: %w", err)
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}

// tempPath keeps the extension so ffmpeg picks the same muxer
func tempPath(filePath, jobID string) string {
	ext := filepath.Ext(filePath)
	return strings.TrimSuffix(filePath, ext) + "." + jobID + ext
}

// generateJobID generates a unique job ID using UUID v7
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(JobIDPrefix+"%d", time.Now().UnixNano())
	}
	return JobIDPrefix + id.String()
}
