package platform

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ytget/mp3me/internal/model"
)

// URL templates
const (
	YouTubeVideoURLTemplate    = "https://music.youtube.com/watch?v=%s"
	YouTubePlaylistURLTemplate = "https://music.youtube.com/playlist?list=%s"
	YouTubeChannelURLTemplate  = "https://www.youtube.com/channel/%s"
	YouTubeBrowseURLTemplate   = "https://music.youtube.com/browse/%s"
)

// URL parameters
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// Release playlist prefixes used by YouTube Music
const (
	AlbumPlaylistPrefix = "OLAK5uy_"
	AlbumBrowsePrefix   = "MPREb_"
)

var (
	videoIDPattern   = regexp.MustCompile(`watch\?v=([a-zA-Z0-9_-]+)`)
	shortIDPattern   = regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]+)`)
	listIDPattern    = regexp.MustCompile(`list=([a-zA-Z0-9_-]+)`)
	channelIDPattern = regexp.MustCompile(`channel/([a-zA-Z0-9_-]+)`)
	browseIDPattern  = regexp.MustCompile(`browse/([a-zA-Z0-9_-]+)`)
	handlePattern    = regexp.MustCompile(`youtube\.com/(@[a-zA-Z0-9_.-]+)`)
)

// ExtractID returns the video, playlist, channel or browse id of a YouTube
// URL, in that order of preference. Input without a known id is returned unchanged.
func ExtractID(rawURL string) string {
	for _, re := range []*regexp.Regexp{videoIDPattern, shortIDPattern, listIDPattern, channelIDPattern, browseIDPattern} {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return rawURL
}

// IsYouTubeURL reports whether s points to youtube.com, music.youtube.com or youtu.be
func IsYouTubeURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == "youtube.com" || host == "music.youtube.com" || host == "m.youtube.com" || host == "youtu.be"
}

// DetectContentType classifies a YouTube URL as song, release or artist.
// A watch URL is a song even when it carries a list parameter.
func DetectContentType(rawURL string) (model.ContentType, error) {
	if !IsYouTubeURL(rawURL) {
		return "", fmt.Errorf("not a YouTube URL: %s", rawURL)
	}

	switch {
	case videoIDPattern.MatchString(rawURL) || shortIDPattern.MatchString(rawURL):
		return model.ContentSong, nil
	case listIDPattern.MatchString(rawURL):
		id := listIDPattern.FindStringSubmatch(rawURL)[1]
		if IsReleaseID(id) {
			return model.ContentRelease, nil
		}
		return model.ContentPlaylist, nil
	case browseIDPattern.MatchString(rawURL):
		id := browseIDPattern.FindStringSubmatch(rawURL)[1]
		if strings.HasPrefix(id, "UC") {
			return model.ContentArtist, nil
		}
		return model.ContentRelease, nil
	case channelIDPattern.MatchString(rawURL) || handlePattern.MatchString(rawURL):
		return model.ContentArtist, nil
	}
	return "", fmt.Errorf("unsupported YouTube URL: %s", rawURL)
}

// IsReleaseID reports whether a playlist or browse id belongs to an album or single
func IsReleaseID(id string) bool {
	return strings.HasPrefix(id, AlbumPlaylistPrefix) || strings.HasPrefix(id, AlbumBrowsePrefix)
}

// ExtractPlaylistID returns the list= parameter of a URL
func ExtractPlaylistID(rawURL string) (string, error) {
	if !strings.Contains(rawURL, PlaylistParam) {
		return "", fmt.Errorf("URL does not contain playlist parameter")
	}
	parts := strings.SplitN(rawURL, PlaylistParam, 2)
	id := parts[1]
	if idx := strings.IndexAny(id, ParamSeparator+"#"); idx >= 0 {
		id = id[:idx]
	}
	if id == "" {
		return "", fmt.Errorf("empty playlist ID")
	}
	return id, nil
}

// VideoURL returns the YouTube Music watch URL for a video id
func VideoURL(id string) string {
	return fmt.Sprintf(YouTubeVideoURLTemplate, id)
}

// PlaylistURL returns the YouTube Music playlist URL for a playlist id
func PlaylistURL(id string) string {
	return fmt.Sprintf(YouTubePlaylistURLTemplate, id)
}

// ChannelURL returns the YouTube channel URL for a channel id
func ChannelURL(id string) string {
	return fmt.Sprintf(YouTubeChannelURLTemplate, id)
}

// BrowseURL returns the YouTube Music browse URL for an album or artist id
func BrowseURL(id string) string {
	return fmt.Sprintf(YouTubeBrowseURLTemplate, id)
}

// ChannelTabURL points a channel or handle URL at one of its tabs (releases, playlists)
func ChannelTabURL(channelURL, tab string) string {
	u := strings.TrimSuffix(strings.TrimSpace(channelURL), "/")
	if m := channelIDPattern.FindStringSubmatch(u); m != nil && strings.Contains(u, "music.youtube.com") {
		u = ChannelURL(m[1])
	}
	if m := browseIDPattern.FindStringSubmatch(u); m != nil && strings.HasPrefix(m[1], "UC") {
		u = ChannelURL(m[1])
	}
	for _, known := range []string{"/releases", "/playlists", "/videos", "/shorts", "/streams", "/featured"} {
		if strings.HasSuffix(u, known) {
			u = strings.TrimSuffix(u, known)
			break
		}
	}
	return u + "/" + tab
}
