package api

import (
	"time"

	"github.com/ytget/mp3me/internal/model"
)

type resultDTO struct {
	Type         model.ContentType `json:"type"`
	Title        string            `json:"title"`
	Subtitle     string            `json:"subtitle"`
	URL          string            `json:"url"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	Song         *model.Song       `json:"song,omitempty"`
	Release      *model.Release    `json:"release,omitempty"`
	Artist       *model.Artist     `json:"artist,omitempty"`
}

func newResultDTO(r *model.SearchResult) resultDTO {
	return resultDTO{
		Type:         r.Type,
		Title:        r.Title(),
		Subtitle:     r.Subtitle(),
		URL:          r.URL(),
		ThumbnailURL: r.ThumbnailURL(),
		Song:         r.Song,
		Release:      r.Release,
		Artist:       r.Artist,
	}
}

type itemDTO struct {
	ID             string            `json:"id"`
	Type           model.ContentType `json:"type"`
	Title          string            `json:"title"`
	URL            string            `json:"url"`
	Status         string            `json:"status"`
	Progress       float64           `json:"progress"`
	Message        string            `json:"message,omitempty"`
	Error          string            `json:"error,omitempty"`
	OutputPath     string            `json:"output_path,omitempty"`
	Format         string            `json:"format"`
	Quality        string            `json:"quality"`
	CurrentSong    string            `json:"current_song,omitempty"`
	TotalSongs     int               `json:"total_songs"`
	CompletedSongs int               `json:"completed_songs"`
	FailedSongs    int               `json:"failed_songs"`
	CreatedAt      time.Time         `json:"created_at"`
	StartedAt      *time.Time        `json:"started_at,omitempty"`
	FinishedAt     *time.Time        `json:"finished_at,omitempty"`
}

func newItemDTO(item *model.DownloadItem) itemDTO {
	dto := itemDTO{
		ID:             item.ID,
		Type:           item.Type,
		Title:          item.DisplayTitle(),
		URL:            item.SourceURL(),
		Status:         item.Status.String(),
		Progress:       item.Progress,
		Message:        item.Message,
		Error:          item.Error,
		OutputPath:     item.OutputPath,
		Format:         item.Format,
		Quality:        item.Quality,
		TotalSongs:     item.TotalSongs,
		CompletedSongs: item.CompletedSongs,
		FailedSongs:    item.FailedSongs,
		CreatedAt:      item.CreatedAt,
		StartedAt:      timePtr(item.StartedAt),
		FinishedAt:     timePtr(item.FinishedAt),
	}
	if item.CurrentSong != nil {
		dto.CurrentSong = item.CurrentSong.Title
	}
	return dto
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
