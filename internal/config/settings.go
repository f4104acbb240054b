package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ytget/mp3me/internal/platform"
)

// Audio quality tiers passed to the yt-dlp format selector
type AudioQuality string

const (
	QualityHigh   AudioQuality = "high"
	QualityMedium AudioQuality = "medium"
	QualityLow    AudioQuality = "low"
)

// Settings keys
const (
	KeyDownloadDir      = "download_dir"
	KeyThreads          = "threads"
	KeyFormat           = "format"
	KeyAudioQuality     = "audio_quality"
	KeyAutoRename       = "auto_rename"
	KeyUseAlbumFolders  = "use_album_folders"
	KeyNormalizeAudio   = "normalize_audio"
	KeyEmbedLyrics      = "embed_lyrics"
	KeyNotifyOnComplete = "notify_on_complete"
	KeyCheckDuplicates  = "check_duplicates"
	KeyMaxCacheSizeMB   = "max_cache_size_mb"
	KeyAccentColor      = "accent_color"
	KeyLanguage         = "language"
	KeySearchLimit      = "search_limit"
)

// Default values
const (
	DefaultThreads          = 3
	DefaultFormat           = "mp3"
	DefaultAudioQuality     = QualityHigh
	DefaultAutoRename       = true
	DefaultUseAlbumFolders  = true
	DefaultNormalizeAudio   = false
	DefaultEmbedLyrics      = true
	DefaultNotifyOnComplete = true
	DefaultCheckDuplicates  = true
	DefaultMaxCacheSizeMB   = 500
	DefaultAccentColor      = "#4d8ffd"
	DefaultLanguage         = "en"
	DefaultSearchLimit      = 20
)

var supportedFormats = []string{"mp3", "flac", "wav", "ogg", "m4a"}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Values is a point-in-time copy of every setting
type Values struct {
	DownloadDir      string `json:"download_dir" yaml:"download_dir"`
	Threads          int    `json:"threads" yaml:"threads"`
	Format           string `json:"format" yaml:"format"`
	AudioQuality     string `json:"audio_quality" yaml:"audio_quality"`
	AutoRename       bool   `json:"auto_rename" yaml:"auto_rename"`
	UseAlbumFolders  bool   `json:"use_album_folders" yaml:"use_album_folders"`
	NormalizeAudio   bool   `json:"normalize_audio" yaml:"normalize_audio"`
	EmbedLyrics      bool   `json:"embed_lyrics" yaml:"embed_lyrics"`
	NotifyOnComplete bool   `json:"notify_on_complete" yaml:"notify_on_complete"`
	CheckDuplicates  bool   `json:"check_duplicates" yaml:"check_duplicates"`
	MaxCacheSizeMB   int    `json:"max_cache_size_mb" yaml:"max_cache_size_mb"`
	AccentColor      string `json:"accent_color" yaml:"accent_color"`
	Language         string `json:"language" yaml:"language"`
	SearchLimit      int    `json:"search_limit" yaml:"search_limit"`
}

// Settings manages application configuration
type Settings struct {
	store Store
}

// NewSettings creates a new settings manager
func NewSettings(store Store) *Settings {
	return &Settings{store: store}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.store.StringWithFallback(KeyDownloadDir, "")
	if dir == "" {
		dir = platform.DefaultMusicDir()
		s.SetDownloadDirectory(dir)
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.store.SetString(KeyDownloadDir, strings.TrimSpace(dir))
}

// EnsureDownloadDir creates the download directory, falling back to
// ~/Downloads and then the working directory when it cannot be created.
func (s *Settings) EnsureDownloadDir() (string, error) {
	dir := s.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(dir); err == nil {
		return dir, nil
	}

	if downloads, err := platform.GetHomeDownloadsDir(); err == nil {
		if err := platform.CreateDirectoryIfNotExists(downloads); err == nil {
			s.SetDownloadDirectory(downloads)
			return downloads, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("no usable download directory: %w", err)
	}
	s.SetDownloadDirectory(cwd)
	return cwd, nil
}

// GetThreads returns the number of parallel downloads
func (s *Settings) GetThreads() int {
	return clamp(s.store.IntWithFallback(KeyThreads, DefaultThreads), 1, 10)
}

// SetThreads sets the number of parallel downloads
func (s *Settings) SetThreads(count int) {
	s.store.SetInt(KeyThreads, clamp(count, 1, 10))
}

// GetFormat returns the target audio format
func (s *Settings) GetFormat() string {
	f := s.store.StringWithFallback(KeyFormat, DefaultFormat)
	if !IsSupportedFormat(f) {
		return DefaultFormat
	}
	return f
}

// SetFormat sets the target audio format
func (s *Settings) SetFormat(format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if !IsSupportedFormat(format) {
		return fmt.Errorf("unsupported format: %s", format)
	}
	s.store.SetString(KeyFormat, format)
	return nil
}

// GetAudioQuality returns the configured quality tier
func (s *Settings) GetAudioQuality() AudioQuality {
	q := AudioQuality(s.store.StringWithFallback(KeyAudioQuality, string(DefaultAudioQuality)))
	if !isQuality(q) {
		return DefaultAudioQuality
	}
	return q
}

// SetAudioQuality sets the quality tier
func (s *Settings) SetAudioQuality(q AudioQuality) error {
	if !isQuality(q) {
		return fmt.Errorf("unsupported audio quality: %s", q)
	}
	s.store.SetString(KeyAudioQuality, string(q))
	return nil
}

func (s *Settings) GetAutoRename() bool {
	return s.store.BoolWithFallback(KeyAutoRename, DefaultAutoRename)
}

func (s *Settings) SetAutoRename(v bool) {
	s.store.SetBool(KeyAutoRename, v)
}

func (s *Settings) GetUseAlbumFolders() bool {
	return s.store.BoolWithFallback(KeyUseAlbumFolders, DefaultUseAlbumFolders)
}

func (s *Settings) SetUseAlbumFolders(v bool) {
	s.store.SetBool(KeyUseAlbumFolders, v)
}

func (s *Settings) GetNormalizeAudio() bool {
	return s.store.BoolWithFallback(KeyNormalizeAudio, DefaultNormalizeAudio)
}

func (s *Settings) SetNormalizeAudio(v bool) {
	s.store.SetBool(KeyNormalizeAudio, v)
}

func (s *Settings) GetEmbedLyrics() bool {
	return s.store.BoolWithFallback(KeyEmbedLyrics, DefaultEmbedLyrics)
}

func (s *Settings) SetEmbedLyrics(v bool) {
	s.store.SetBool(KeyEmbedLyrics, v)
}

func (s *Settings) GetNotifyOnComplete() bool {
	return s.store.BoolWithFallback(KeyNotifyOnComplete, DefaultNotifyOnComplete)
}

func (s *Settings) SetNotifyOnComplete(v bool) {
	s.store.SetBool(KeyNotifyOnComplete, v)
}

func (s *Settings) GetCheckDuplicates() bool {
	return s.store.BoolWithFallback(KeyCheckDuplicates, DefaultCheckDuplicates)
}

func (s *Settings) SetCheckDuplicates(v bool) {
	s.store.SetBool(KeyCheckDuplicates, v)
}

// GetMaxCacheSizeMB returns the artwork cache limit in megabytes
func (s *Settings) GetMaxCacheSizeMB() int {
	return clamp(s.store.IntWithFallback(KeyMaxCacheSizeMB, DefaultMaxCacheSizeMB), 50, 5000)
}

// SetMaxCacheSizeMB sets the artwork cache limit in megabytes
func (s *Settings) SetMaxCacheSizeMB(mb int) {
	s.store.SetInt(KeyMaxCacheSizeMB, clamp(mb, 50, 5000))
}

// GetAccentColor returns the UI accent color as #rrggbb
func (s *Settings) GetAccentColor() string {
	c := s.store.StringWithFallback(KeyAccentColor, DefaultAccentColor)
	if !hexColor.MatchString(c) {
		return DefaultAccentColor
	}
	return c
}

// SetAccentColor sets the UI accent color
func (s *Settings) SetAccentColor(c string) error {
	if !hexColor.MatchString(c) {
		return fmt.Errorf("invalid color %q, expected #rrggbb", c)
	}
	s.store.SetString(KeyAccentColor, strings.ToLower(c))
	return nil
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.store.StringWithFallback(KeyLanguage, DefaultLanguage)
	if _, ok := s.GetLanguageOptions()[lang]; !ok {
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.store.SetString(KeyLanguage, lang)
}

// GetSearchLimit returns the maximum number of results per content type
func (s *Settings) GetSearchLimit() int {
	return clamp(s.store.IntWithFallback(KeySearchLimit, DefaultSearchLimit), 1, 50)
}

// SetSearchLimit sets the maximum number of results per content type
func (s *Settings) SetSearchLimit(n int) {
	s.store.SetInt(KeySearchLimit, clamp(n, 1, 50))
}

// GetFormatOptions returns the supported output formats
func (s *Settings) GetFormatOptions() []string {
	out := make([]string, len(supportedFormats))
	copy(out, supportedFormats)
	return out
}

// GetQualityOptions returns available quality tiers
func (s *Settings) GetQualityOptions() []AudioQuality {
	return []AudioQuality{QualityHigh, QualityMedium, QualityLow}
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// Snapshot returns the current values of every setting
func (s *Settings) Snapshot() Values {
	return Values{
		DownloadDir:      s.GetDownloadDirectory(),
		Threads:          s.GetThreads(),
		Format:           s.GetFormat(),
		AudioQuality:     string(s.GetAudioQuality()),
		AutoRename:       s.GetAutoRename(),
		UseAlbumFolders:  s.GetUseAlbumFolders(),
		NormalizeAudio:   s.GetNormalizeAudio(),
		EmbedLyrics:      s.GetEmbedLyrics(),
		NotifyOnComplete: s.GetNotifyOnComplete(),
		CheckDuplicates:  s.GetCheckDuplicates(),
		MaxCacheSizeMB:   s.GetMaxCacheSizeMB(),
		AccentColor:      s.GetAccentColor(),
		Language:         s.GetLanguage(),
		SearchLimit:      s.GetSearchLimit(),
	}
}

// Apply validates v and stores every value. Nothing is written when
// validation fails.
func (s *Settings) Apply(v Values) error {
	format := strings.ToLower(strings.TrimSpace(v.Format))
	if !IsSupportedFormat(format) {
		return fmt.Errorf("unsupported format: %s", v.Format)
	}
	if !isQuality(AudioQuality(v.AudioQuality)) {
		return fmt.Errorf("unsupported audio quality: %s", v.AudioQuality)
	}
	if !hexColor.MatchString(v.AccentColor) {
		return fmt.Errorf("invalid color %q, expected #rrggbb", v.AccentColor)
	}
	if strings.TrimSpace(v.DownloadDir) == "" {
		return fmt.Errorf("download directory must not be empty")
	}
	if _, ok := s.GetLanguageOptions()[v.Language]; !ok {
		return fmt.Errorf("unsupported language: %s", v.Language)
	}

	s.SetDownloadDirectory(v.DownloadDir)
	s.SetThreads(v.Threads)
	s.store.SetString(KeyFormat, format)
	s.store.SetString(KeyAudioQuality, v.AudioQuality)
	s.SetAutoRename(v.AutoRename)
	s.SetUseAlbumFolders(v.UseAlbumFolders)
	s.SetNormalizeAudio(v.NormalizeAudio)
	s.SetEmbedLyrics(v.EmbedLyrics)
	s.SetNotifyOnComplete(v.NotifyOnComplete)
	s.SetCheckDuplicates(v.CheckDuplicates)
	s.SetMaxCacheSizeMB(v.MaxCacheSizeMB)
	s.store.SetString(KeyAccentColor, strings.ToLower(v.AccentColor))
	s.SetLanguage(v.Language)
	s.SetSearchLimit(v.SearchLimit)
	return nil
}

// Set assigns a single setting from its string form, as typed on the command line
func (s *Settings) Set(key, value string) error {
	v := s.Snapshot()
	switch key {
	case KeyDownloadDir:
		v.DownloadDir = value
	case KeyThreads, KeyMaxCacheSizeMB, KeySearchLimit:
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("%s expects a number: %w", key, err)
		}
		switch key {
		case KeyThreads:
			v.Threads = n
		case KeyMaxCacheSizeMB:
			v.MaxCacheSizeMB = n
		default:
			v.SearchLimit = n
		}
	case KeyFormat:
		v.Format = value
	case KeyAudioQuality:
		v.AudioQuality = value
	case KeyAutoRename, KeyUseAlbumFolders, KeyNormalizeAudio, KeyEmbedLyrics, KeyNotifyOnComplete, KeyCheckDuplicates:
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case KeyAutoRename:
			v.AutoRename = b
		case KeyUseAlbumFolders:
			v.UseAlbumFolders = b
		case KeyNormalizeAudio:
			v.NormalizeAudio = b
		case KeyEmbedLyrics:
			v.EmbedLyrics = b
		case KeyNotifyOnComplete:
			v.NotifyOnComplete = b
		default:
			v.CheckDuplicates = b
		}
	case KeyAccentColor:
		v.AccentColor = value
	case KeyLanguage:
		if _, ok := s.GetLanguageOptions()[value]; !ok {
			return fmt.Errorf("unsupported language: %s", value)
		}
		v.Language = value
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	return s.Apply(v)
}

// IsSupportedFormat reports whether format is one of the output formats
func IsSupportedFormat(format string) bool {
	for _, f := range supportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

func isQuality(q AudioQuality) bool {
	return q == QualityHigh || q == QualityMedium || q == QualityLow
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
