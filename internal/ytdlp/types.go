package ytdlp

import (
	"strconv"
	"strings"
)

// Thumbnail is one entry of a yt-dlp thumbnails list
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Entry is one line of --flat-playlist --dump-json output
type Entry struct {
	Type       string      `json:"_type"`
	IEKey      string      `json:"ie_key"`
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	Channel    string      `json:"channel"`
	ChannelID  string      `json:"channel_id"`
	ChannelURL string      `json:"channel_url"`
	Uploader   string      `json:"uploader"`
	Artists    []string    `json:"artists"`
	Duration   float64     `json:"duration"`
	Thumbnails []Thumbnail `json:"thumbnails"`

	PlaylistTitle    string `json:"playlist_title"`
	PlaylistUploader string `json:"playlist_uploader"`
}

// ArtistName returns the best artist guess of a flat entry
func (e Entry) ArtistName() string {
	if len(e.Artists) > 0 && e.Artists[0] != "" {
		return e.Artists[0]
	}
	return cleanChannelName(firstNonEmpty(e.Channel, e.Uploader))
}

// VideoInfo is the --dump-json output for a single video
type VideoInfo struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Track       string      `json:"track"`
	Artist      string      `json:"artist"`
	Artists     []string    `json:"artists"`
	Creator     string      `json:"creator"`
	Album       string      `json:"album"`
	AlbumArtist string      `json:"album_artist"`
	Genre       string      `json:"genre"`
	TrackNumber int         `json:"track_number"`
	ReleaseYear int         `json:"release_year"`
	ReleaseDate string      `json:"release_date"`
	UploadDate  string      `json:"upload_date"`
	Channel     string      `json:"channel"`
	ChannelID   string      `json:"channel_id"`
	ChannelURL  string      `json:"channel_url"`
	Uploader    string      `json:"uploader"`
	Duration    float64     `json:"duration"`
	Thumbnail   string      `json:"thumbnail"`
	Thumbnails  []Thumbnail `json:"thumbnails"`
	WebpageURL  string      `json:"webpage_url"`
}

// SongTitle prefers the music track name over the video title
func (v *VideoInfo) SongTitle() string {
	return firstNonEmpty(v.Track, v.Title)
}

// ArtistName returns the credited artist, falling back to the channel
func (v *VideoInfo) ArtistName() string {
	if v.Artist != "" {
		// yt-dlp joins multiple artists with ", "
		return strings.Split(v.Artist, ", ")[0]
	}
	if len(v.Artists) > 0 && v.Artists[0] != "" {
		return v.Artists[0]
	}
	return cleanChannelName(firstNonEmpty(v.Creator, v.Channel, v.Uploader))
}

// Year returns the release year, derived from dates when not set
func (v *VideoInfo) Year() string {
	if v.ReleaseYear > 0 {
		return strconv.Itoa(v.ReleaseYear)
	}
	for _, d := range []string{v.ReleaseDate, v.UploadDate} {
		if len(d) >= 4 {
			if _, err := strconv.Atoi(d[:4]); err == nil {
				return d[:4]
			}
		}
	}
	return ""
}

// DownloadRequest describes one audio download
type DownloadRequest struct {
	URL       string
	OutputDir string
	BaseName  string // file name without extension
	Format    string // mp3, flac, wav, ogg, m4a
	Quality   string // high, medium, low
}

// ProgressFunc receives download percentages in 0..100
type ProgressFunc func(percent float64)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func cleanChannelName(name string) string {
	return strings.TrimSpace(strings.TrimSuffix(name, " - Topic"))
}
