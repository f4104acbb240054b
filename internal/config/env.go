package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/platform"
)

// Env holds process level configuration read from the environment
type Env struct {
	YTDLPPath   string
	FFmpegPath  string
	FFprobePath string
	DataDir     string
	DBPath      string
	APIAddr     string
	ServeAPI    bool // GUI also serves the REST API
	LogLevel    string
	SentryDSN   string
	Release     string
	YouTube     YouTubeConfig
	Spotify     SpotifyConfig
}

type YouTubeConfig struct {
	APIKey string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether Spotify metadata enrichment can be used
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// Enabled reports whether the YouTube Data API search backend can be used
func (y YouTubeConfig) Enabled() bool {
	return y.APIKey != ""
}

// LoadEnv reads an optional .env file and the process environment
func LoadEnv() *Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithFields(log.Fields{"module": "config", "function": "LoadEnv"}).Warnf("Error loading .env file: %v", err)
	}

	dataDir := getEnv("MP3ME_DATA_DIR", platform.AppDataDir())
	return &Env{
		YTDLPPath:   getEnv("MP3ME_YTDLP_PATH", "yt-dlp"),
		FFmpegPath:  getEnv("MP3ME_FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("MP3ME_FFPROBE_PATH", "ffprobe"),
		DataDir:     dataDir,
		DBPath:      getEnv("MP3ME_DB_PATH", filepath.Join(dataDir, "mp3me.db")),
		APIAddr:     getEnv("MP3ME_API_ADDR", "127.0.0.1:8765"),
		ServeAPI:    getEnv("MP3ME_SERVE_API", "") == "true",
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Release:     os.Getenv("RELEASE"),
		YouTube: YouTubeConfig{
			APIKey: os.Getenv("YOUTUBE_API_KEY"),
		},
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		},
	}
}

// CacheDir is where downloaded artwork is kept
func (e *Env) CacheDir() string {
	return filepath.Join(e.DataDir, "cache")
}

// SettingsFile is the YAML settings file used outside the GUI
func (e *Env) SettingsFile() string {
	return filepath.Join(e.DataDir, "settings.yaml")
}

// LogFile is the application log file
func (e *Env) LogFile() string {
	return filepath.Join(e.DataDir, "mp3me.log")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
