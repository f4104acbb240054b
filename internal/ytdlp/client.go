package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/platform"
)

// ErrNotInstalled is returned when the yt-dlp binary cannot be started
var ErrNotInstalled = errors.New("yt-dlp is not installed")

// DefaultBinary is looked up in PATH when no binary path is configured
const DefaultBinary = "yt-dlp"

// YouTube Music search sections understood by yt-dlp
const (
	SectionSongs   = "songs"
	SectionAlbums  = "albums"
	SectionArtists = "artists"
)

const musicSearchURL = "https://music.youtube.com/search?q=%s#%s"

// Progress line markers
const (
	progressMarker  = "[download]"
	progressPercent = "%"
)

// Client defines the yt-dlp operations used by search and download
type Client interface {
	Version(ctx context.Context) (string, error)
	Search(ctx context.Context, query, section string, limit int) ([]Entry, error)
	ListEntries(ctx context.Context, pageURL string) ([]Entry, error)
	Info(ctx context.Context, videoURL string) (*VideoInfo, error)
	Download(ctx context.Context, req DownloadRequest, onProgress ProgressFunc) (string, error)
}

// CommandClient implements Client by calling the yt-dlp binary.
type CommandClient struct {
	// BinaryPath is the path to the yt-dlp executable. Defaults to "yt-dlp".
	BinaryPath string
}

// NewClient creates a new yt-dlp CommandClient.
func NewClient(binaryPath string) *CommandClient {
	if binaryPath == "" {
		binaryPath = DefaultBinary
	}
	return &CommandClient{BinaryPath: binaryPath}
}

func (c *CommandClient) bin() string {
	if c.BinaryPath == "" {
		return DefaultBinary
	}
	return c.BinaryPath
}

// Version returns the yt-dlp version string
func (c *CommandClient) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// Search runs a YouTube Music search restricted to one section
func (c *CommandClient) Search(ctx context.Context, query, section string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	searchURL := fmt.Sprintf(musicSearchURL, url.QueryEscape(query), section)
	out, err := c.run(ctx,
		"--flat-playlist", "--dump-json", "--no-warnings",
		"--playlist-end", strconv.Itoa(limit),
		searchURL,
	)
	if err != nil {
		return nil, err
	}
	return decodeEntries(out)
}

// ListEntries fetches the flat entries of a playlist or channel tab
func (c *CommandClient) ListEntries(ctx context.Context, pageURL string) ([]Entry, error) {
	out, err := c.run(ctx, "--flat-playlist", "--dump-json", "--no-warnings", pageURL)
	if err != nil {
		return nil, err
	}
	return decodeEntries(out)
}

// Info fetches full metadata of a single video
func (c *CommandClient) Info(ctx context.Context, videoURL string) (*VideoInfo, error) {
	out, err := c.run(ctx, "--dump-json", "--no-playlist", "--no-warnings", videoURL)
	if err != nil {
		return nil, err
	}
	var info VideoInfo
	if err := json.NewDecoder(out).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	return &info, nil
}

// Download fetches and converts one song, reporting progress from the
// [download] lines. It returns the path of the produced file.
func (c *CommandClient) Download(ctx context.Context, req DownloadRequest, onProgress ProgressFunc) (string, error) {
	logger := log.WithFields(log.Fields{"module": "ytdlp", "function": "Download"})

	if err := platform.CreateDirectoryIfNotExists(req.OutputDir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	args := BuildDownloadArgs(req)
	logger.Debugf("Running yt-dlp %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.bin(), args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return "", startError(err)
	}

	lastLine := scanOutput(stdout, onProgress, logger)
	err = cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	expected := ExpectedPath(req)
	if err != nil {
		if platform.FileExists(expected) {
			logger.Warnf("yt-dlp exited with %v but %s exists, continuing", err, expected)
			return expected, nil
		}
		if lastLine == "" {
			lastLine = "Unknown error"
		}
		return "", fmt.Errorf("yt-dlp error: %w - %s", err, lastLine)
	}

	path, err := platform.FindFileWithFallback(expected)
	if err != nil {
		return "", fmt.Errorf("yt-dlp finished but output is missing: %w", err)
	}
	return path, nil
}

// ParseProgress extracts the percentage of a "[download]  42.5% of ..." line
func ParseProgress(line string) (float64, bool) {
	idx := strings.Index(line, progressMarker)
	if idx < 0 || !strings.Contains(line, progressPercent) {
		return 0, false
	}
	rest := line[idx+len(progressMarker):]
	end := strings.Index(rest, progressPercent)
	if end < 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(rest[:end]), 64)
	if err != nil {
		return 0, false
	}
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return value, true
}

func scanOutput(r io.Reader, onProgress ProgressFunc, logger *log.Entry) string {
	var last string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		last = line
		logger.Debugf("yt-dlp output: %s", line)
		if p, ok := ParseProgress(line); ok && onProgress != nil {
			onProgress(p)
		}
	}
	return last
}

func (c *CommandClient) run(ctx context.Context, args ...string) (*bytes.Buffer, error) {
	cmd := exec.CommandContext(ctx, c.bin(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, startError(err)
		}
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return &stdout, nil
}

func startError(err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}
	return fmt.Errorf("failed to start yt-dlp: %w", err)
}

func decodeEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	dec := json.NewDecoder(r)
	for {
		var entry Entry
		if err := dec.Decode(&entry); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
