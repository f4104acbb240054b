package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ytget/mp3me/internal/download"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/search"
	"github.com/ytget/mp3me/internal/telemetry"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.deps.Version, "telemetry": telemetry.Enabled()})
}

func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		abort(c, http.StatusBadRequest, search.ErrEmptyQuery)
		return
	}

	var types []model.ContentType
	if t := c.Query("type"); t != "" {
		for _, part := range strings.Split(t, ",") {
			types = append(types, searchType(part))
		}
	}

	results, err := s.deps.Search.Search(c.Request.Context(), query, types...)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			abort(c, http.StatusBadRequest, err)
			return
		}
		abort(c, http.StatusInternalServerError, err)
		return
	}

	out := make([]resultDTO, 0, len(results))
	for i := range results {
		out = append(out, newResultDTO(&results[i]))
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": out})
}

// searchType maps the type parameter to a search section. Albums and
// singles are both searched as releases.
func searchType(s string) model.ContentType {
	switch ct := model.ParseContentType(s); ct {
	case model.ContentSingle, model.ContentRelease:
		return model.ContentAlbum
	default:
		return ct
	}
}

func (s *Server) listDownloads(c *gin.Context) {
	items := s.deps.Downloads.List()
	out := make([]itemDTO, 0, len(items))
	for i := range items {
		out = append(out, newItemDTO(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"downloads": out})
}

type addDownloadRequest struct {
	URL     string              `json:"url"`
	Result  *model.SearchResult `json:"result"`
	Format  string              `json:"format"`
	Quality string              `json:"quality"`
}

func (s *Server) addDownload(c *gin.Context) {
	var req addDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	var (
		item model.DownloadItem
		err  error
	)
	switch {
	case strings.TrimSpace(req.URL) != "":
		item, err = s.deps.Downloads.AddURL(c.Request.Context(), strings.TrimSpace(req.URL), req.Format, req.Quality)
	case req.Result != nil:
		item, err = s.deps.Downloads.Add(req.Result, req.Format, req.Quality)
	default:
		abort(c, http.StatusBadRequest, errors.New("url or result is required"))
		return
	}

	switch {
	case err == nil:
		c.JSON(http.StatusCreated, newItemDTO(&item))
	case errors.Is(err, download.ErrDuplicate):
		abort(c, http.StatusConflict, err)
	case errors.Is(err, download.ErrNoSource), errors.Is(err, download.ErrUnsupportedFormat):
		abort(c, http.StatusBadRequest, err)
	default:
		abort(c, http.StatusInternalServerError, err)
	}
}

// deleteDownload cancels an unfinished item and removes a finished one
func (s *Server) deleteDownload(c *gin.Context) {
	id := c.Param("id")
	item, ok := s.deps.Downloads.Get(id)
	if !ok {
		abort(c, http.StatusNotFound, download.ErrNotFound)
		return
	}

	action := "cancelled"
	var err error
	if item.Status.IsFinished() {
		action = "removed"
		err = s.deps.Downloads.Remove(id)
	} else {
		err = s.deps.Downloads.Cancel(id)
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"id": id, "status": action})
	case errors.Is(err, download.ErrNotFound):
		abort(c, http.StatusNotFound, err)
	case errors.Is(err, download.ErrNotActive), errors.Is(err, download.ErrNotFinished):
		abort(c, http.StatusConflict, err)
	default:
		abort(c, http.StatusInternalServerError, err)
	}
}

func (s *Server) retryDownload(c *gin.Context) {
	id := c.Param("id")
	err := s.deps.Downloads.Retry(id)
	switch {
	case err == nil:
		item, _ := s.deps.Downloads.Get(id)
		c.JSON(http.StatusOK, newItemDTO(&item))
	case errors.Is(err, download.ErrNotFound):
		abort(c, http.StatusNotFound, err)
	case errors.Is(err, download.ErrNotFinished):
		abort(c, http.StatusConflict, err)
	default:
		abort(c, http.StatusInternalServerError, err)
	}
}

func (s *Server) listLibrary(c *gin.Context) {
	tracks, err := s.deps.Library.Tracks(c.Request.Context(), c.Query("q"))
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": tracks, "count": len(tracks)})
}

func (s *Server) scanLibrary(c *gin.Context) {
	root := s.deps.Settings.GetDownloadDirectory()
	count, err := s.deps.Scanner.Scan(c.Request.Context(), root, nil)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"root": root, "scanned": count})
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Settings.Snapshot())
}

// putSettings applies a partial update. Fields missing from the body keep
// their current value.
func (s *Server) putSettings(c *gin.Context) {
	values := s.deps.Settings.Snapshot()
	if err := c.ShouldBindJSON(&values); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Settings.Apply(values); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	s.applySettings()
	c.JSON(http.StatusOK, s.deps.Settings.Snapshot())
}

// applySettings pushes the stored settings to the running services
func (s *Server) applySettings() {
	settings := s.deps.Settings
	s.deps.Downloads.SetMaxParallel(settings.GetThreads())
	s.deps.Search.SetLimit(settings.GetSearchLimit())
	if s.deps.Artwork != nil {
		s.deps.Artwork.SetMaxCacheMB(settings.GetMaxCacheSizeMB())
	}
}
