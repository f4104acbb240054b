package search

import (
	"context"
	"fmt"
	"html"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/platform"
)

// MusicCategoryID is the YouTube video category of music
const MusicCategoryID = "10"

// YouTubeAPIBackend searches through the YouTube Data API v3
type YouTubeAPIBackend struct {
	service *ytapi.Service
}

// NewYouTubeAPIBackend creates a backend authenticated with an API key
func NewYouTubeAPIBackend(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeAPIBackend, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating YouTube client: %w", err)
	}
	return &YouTubeAPIBackend{service: service}, nil
}

func (b *YouTubeAPIBackend) Search(ctx context.Context, query string, contentType model.ContentType, limit int) ([]model.SearchResult, error) {
	logger := log.WithFields(log.Fields{"module": "search", "function": "YouTubeAPIBackend.Search"})

	call := b.service.Search.List([]string{"snippet"}).
		Q(query).
		MaxResults(int64(limit)).
		Context(ctx)

	switch {
	case contentType == model.ContentArtist:
		call = call.Type("channel")
	case contentType.IsCollection():
		call = call.Type("playlist")
	default:
		call = call.Type("video").VideoCategoryId(MusicCategoryID)
	}

	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("error querying YouTube: %w", err)
	}

	results := make([]model.SearchResult, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Snippet == nil {
			continue
		}
		title := html.UnescapeString(item.Snippet.Title)
		channel := html.UnescapeString(item.Snippet.ChannelTitle)
		thumb := snippetThumbnail(item.Snippet.Thumbnails)

		switch item.Id.Kind {
		case "youtube#video":
			results = append(results, model.SearchResult{Type: model.ContentSong, Song: &model.Song{
				ID:           item.Id.VideoId,
				Title:        title,
				Artist:       cleanTopic(channel),
				Year:         yearOf(item.Snippet.PublishedAt),
				VideoID:      item.Id.VideoId,
				URL:          platform.VideoURL(item.Id.VideoId),
				ThumbnailURL: thumb,
				Selected:     true,
			}})
		case "youtube#playlist":
			r := &model.Release{
				ID:           item.Id.PlaylistId,
				Title:        title,
				Artist:       cleanTopic(channel),
				Year:         yearOf(item.Snippet.PublishedAt),
				ReleaseType:  ReleaseType(title),
				URL:          platform.PlaylistURL(item.Id.PlaylistId),
				ThumbnailURL: thumb,
			}
			ct := model.ContentType(r.ReleaseType)
			if !platform.IsReleaseID(r.ID) {
				r.ReleaseType = ReleasePlaylist
				ct = model.ContentPlaylist
			}
			results = append(results, model.SearchResult{Type: ct, Release: r})
		case "youtube#channel":
			results = append(results, model.SearchResult{Type: model.ContentArtist, Artist: &model.Artist{
				ID:           item.Id.ChannelId,
				Name:         cleanTopic(title),
				URL:          platform.ChannelURL(item.Id.ChannelId),
				ThumbnailURL: thumb,
			}})
		}
	}

	logger.Tracef("found %d results for %q", len(results), query)
	return results, nil
}

func snippetThumbnail(t *ytapi.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*ytapi.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

func cleanTopic(name string) string {
	return strings.TrimSuffix(name, " - Topic")
}

func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}
