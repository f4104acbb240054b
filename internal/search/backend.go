package search

import (
	"context"

	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// Backend runs a search restricted to one content type
type Backend interface {
	Search(ctx context.Context, query string, contentType model.ContentType, limit int) ([]model.SearchResult, error)
}

// YTDLPBackend searches YouTube Music through yt-dlp
type YTDLPBackend struct {
	client ytdlp.Client
}

func NewYTDLPBackend(client ytdlp.Client) *YTDLPBackend {
	return &YTDLPBackend{client: client}
}

func (b *YTDLPBackend) Search(ctx context.Context, query string, contentType model.ContentType, limit int) ([]model.SearchResult, error) {
	section := ytdlp.SectionSongs
	switch {
	case contentType == model.ContentArtist:
		section = ytdlp.SectionArtists
	case contentType.IsCollection():
		section = ytdlp.SectionAlbums
	}

	entries, err := b.client.Search(ctx, query, section, limit)
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(entries))
	for _, e := range entries {
		if r, ok := resultFromEntry(e, contentType); ok {
			results = append(results, r)
		}
	}
	return results, nil
}
