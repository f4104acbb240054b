package download

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/telemetry"
)

var (
	ErrNotFound    = errors.New("download not found")
	ErrDuplicate   = errors.New("download already queued")
	ErrNotActive   = errors.New("download is not active")
	ErrNotFinished = errors.New("download is not finished")
	ErrNoSource    = errors.New("nothing to download")
	ErrClosed      = errors.New("download service is shut down")

	ErrUnsupportedFormat = errors.New("unsupported format")
)

const (
	// ItemIDPrefix starts every download item id
	ItemIDPrefix = "dl-"

	// MaxRetries is the number of extra yt-dlp attempts per song
	MaxRetries = 1

	// DefaultRetryDelay is the backoff before a retry
	DefaultRetryDelay = 2 * time.Second

	MaxParallelLimit = 10

	MessageAlreadyExists = "Already exists"
)

type entry struct {
	item      *model.DownloadItem
	cancel    context.CancelFunc
	running   bool
	resolving bool
}

// Service handles the download queue
type Service struct {
	settings *config.Settings
	deps     Deps

	items       map[string]*entry
	order       []string
	itemsMutex  sync.RWMutex
	maxParallel int
	activeCount int
	online      bool
	closed      bool
	retryDelay  time.Duration
	onUpdate    func(model.DownloadItem) // callback for UI updates

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewService creates a new download service. The parallel limit starts at
// the threads setting.
func NewService(settings *config.Settings, deps Deps) *Service {
	ctx, stop := context.WithCancel(context.Background())
	return &Service{
		settings:    settings,
		deps:        deps,
		items:       make(map[string]*entry),
		maxParallel: settings.GetThreads(),
		online:      true,
		retryDelay:  DefaultRetryDelay,
		ctx:         ctx,
		stop:        stop,
	}
}

// SetUpdateCallback sets the callback function for item updates
func (s *Service) SetUpdateCallback(callback func(model.DownloadItem)) {
	s.itemsMutex.Lock()
	s.onUpdate = callback
	s.itemsMutex.Unlock()
}

// SetRetryDelay changes the backoff between yt-dlp attempts
func (s *Service) SetRetryDelay(d time.Duration) {
	s.itemsMutex.Lock()
	s.retryDelay = d
	s.itemsMutex.Unlock()
}

// Add queues a search result. Empty format and quality use the settings.
func (s *Service) Add(result *model.SearchResult, format, quality string) (model.DownloadItem, error) {
	if result == nil {
		return model.DownloadItem{}, ErrNoSource
	}
	if format == "" {
		format = s.settings.GetFormat()
	}
	if quality == "" {
		quality = string(s.settings.GetAudioQuality())
	}
	if !config.IsSupportedFormat(format) {
		return model.DownloadItem{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	item := model.NewDownloadItem(generateItemID(), result, format, quality)
	url := item.SourceURL()
	if url == "" {
		return model.DownloadItem{}, ErrNoSource
	}

	s.itemsMutex.Lock()
	if s.closed {
		s.itemsMutex.Unlock()
		return model.DownloadItem{}, ErrClosed
	}
	// Check for duplicate URLs
	for _, id := range s.order {
		existing := s.items[id].item
		if existing.SourceURL() == url && !existing.Status.IsFinished() {
			s.itemsMutex.Unlock()
			return model.DownloadItem{}, fmt.Errorf("%w: %s", ErrDuplicate, url)
		}
	}
	s.items[item.ID] = &entry{item: item}
	s.order = append(s.order, item.ID)
	snap := item.Snapshot()
	s.itemsMutex.Unlock()

	log.WithFields(log.Fields{"module": "download", "function": "Add"}).
		Infof("Queued %s %s as %s (%s)", item.Type, item.DisplayTitle(), item.ID, item.Status)

	s.notifyUpdate(snap)
	s.schedule()
	return snap, nil
}

// AddURL resolves a YouTube URL and queues the result
func (s *Service) AddURL(ctx context.Context, rawURL, format, quality string) (model.DownloadItem, error) {
	if s.deps.Resolver == nil {
		return model.DownloadItem{}, errors.New("no resolver configured")
	}
	result, err := s.deps.Resolver.Resolve(ctx, rawURL)
	if err != nil {
		return model.DownloadItem{}, fmt.Errorf("failed to resolve %s: %w", rawURL, err)
	}
	return s.Add(result, format, quality)
}

// Get returns a snapshot of an item by ID
func (s *Service) Get(id string) (model.DownloadItem, bool) {
	s.itemsMutex.RLock()
	defer s.itemsMutex.RUnlock()
	e, exists := s.items[id]
	if !exists {
		return model.DownloadItem{}, false
	}
	return e.item.Snapshot(), true
}

// List returns snapshots of all items in insertion order
func (s *Service) List() []model.DownloadItem {
	s.itemsMutex.RLock()
	defer s.itemsMutex.RUnlock()

	items := make([]model.DownloadItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id].item.Snapshot())
	}
	return items
}

// Wait blocks until the item finishes or disappears from the queue
func (s *Service) Wait(ctx context.Context, id string) (model.DownloadItem, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		item, ok := s.Get(id)
		if !ok {
			return model.DownloadItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if item.Status.IsFinished() {
			return item, nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return item, ctx.Err()
		}
	}
}

// Cancel stops an active item or drops a waiting one from the queue
func (s *Service) Cancel(id string) error {
	s.itemsMutex.Lock()
	e, exists := s.items[id]
	if !exists {
		s.itemsMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	status := e.item.Status
	switch {
	case status.IsActive():
		// The goroutine releases the slot once yt-dlp is killed
		e.cancel()
	case status.IsWaiting():
		if e.cancel != nil {
			e.cancel()
		}
		s.removeLocked(id)
	default:
		s.itemsMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrNotActive, status)
	}
	e.item.Status = model.StatusCancelled
	e.item.Message = "Cancelled"
	e.item.FinishedAt = time.Now()
	snap := e.item.Snapshot()
	s.itemsMutex.Unlock()

	log.WithFields(log.Fields{"module": "download", "function": "Cancel"}).Infof("Cancelled %s", id)
	s.notifyUpdate(snap)
	return nil
}

// Retry queues a failed or cancelled item again
func (s *Service) Retry(id string) error {
	s.itemsMutex.Lock()
	e, exists := s.items[id]
	if !exists {
		s.itemsMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.running || (e.item.Status != model.StatusFailed && e.item.Status != model.StatusCancelled) {
		s.itemsMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFinished, e.item.Status)
	}

	item := e.item
	item.Status = model.StatusQueued
	if item.Release != nil && len(item.Release.Songs) == 0 || item.Artist != nil && item.Artist.SongCount() == 0 {
		item.Status = model.StatusPendingMetadata
	}
	item.Progress = 0
	item.Message = ""
	item.Error = ""
	item.CurrentSong = nil
	item.CompletedSongs = 0
	item.FailedSongs = 0
	item.StartedAt = time.Time{}
	item.FinishedAt = time.Time{}
	snap := item.Snapshot()
	s.itemsMutex.Unlock()

	s.notifyUpdate(snap)
	s.schedule()
	return nil
}

// Remove deletes a finished item from the list
func (s *Service) Remove(id string) error {
	s.itemsMutex.Lock()
	defer s.itemsMutex.Unlock()

	e, exists := s.items[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.running || !e.item.Status.IsFinished() {
		return fmt.Errorf("%w: %s", ErrNotFinished, e.item.Status)
	}
	s.removeLocked(id)
	return nil
}

// ClearFinished removes every finished item and returns how many were removed
func (s *Service) ClearFinished() int {
	s.itemsMutex.Lock()
	defer s.itemsMutex.Unlock()

	removed := 0
	for _, id := range append([]string(nil), s.order...) {
		e := s.items[id]
		if !e.running && e.item.Status.IsFinished() {
			s.removeLocked(id)
			removed++
		}
	}
	return removed
}

// CancelAll cancels every unfinished item
func (s *Service) CancelAll() {
	s.itemsMutex.RLock()
	ids := append([]string(nil), s.order...)
	s.itemsMutex.RUnlock()

	for _, id := range ids {
		if err := s.Cancel(id); err != nil && !errors.Is(err, ErrNotActive) && !errors.Is(err, ErrNotFound) {
			log.WithFields(log.Fields{"module": "download", "function": "CancelAll"}).Warnf("Failed to cancel %s: %v", id, err)
		}
	}
}

// Shutdown cancels all work and waits for running items to stop
func (s *Service) Shutdown(ctx context.Context) error {
	s.itemsMutex.Lock()
	s.closed = true
	s.itemsMutex.Unlock()

	s.CancelAll()
	s.stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetMaxParallel sets the maximum number of parallel downloads
func (s *Service) SetMaxParallel(n int) {
	n = max(1, min(n, MaxParallelLimit))
	s.itemsMutex.Lock()
	s.maxParallel = n
	s.itemsMutex.Unlock()
	s.schedule()
}

// SetOnline pauses the queue while offline. Running items are left alone.
func (s *Service) SetOnline(online bool) {
	s.itemsMutex.Lock()
	changed := s.online != online
	s.online = online
	s.itemsMutex.Unlock()

	if !changed {
		return
	}
	logger := log.WithFields(log.Fields{"module": "download", "function": "SetOnline"})
	if online {
		logger.Info("Network is back, resuming queue")
		s.schedule()
	} else {
		logger.Warn("Network is offline, pausing queue")
	}
}

func (s *Service) parallel() int {
	s.itemsMutex.RLock()
	defer s.itemsMutex.RUnlock()
	return s.maxParallel
}

// schedule resolves pending collections and starts queued items in
// insertion order while slots are free
func (s *Service) schedule() {
	s.itemsMutex.Lock()
	if s.closed || !s.online {
		s.itemsMutex.Unlock()
		return
	}

	var started []model.DownloadItem
	for _, id := range s.order {
		e := s.items[id]
		switch e.item.Status {
		case model.StatusPendingMetadata:
			if !e.resolving {
				s.startResolveLocked(e)
			}
		case model.StatusQueued:
			if s.activeCount < s.maxParallel {
				s.startLocked(e)
				started = append(started, e.item.Snapshot())
			}
		}
	}
	s.itemsMutex.Unlock()

	for _, snap := range started {
		s.notifyUpdate(snap)
	}
}

func (s *Service) startResolveLocked(e *entry) {
	ctx, cancel := context.WithCancel(s.ctx)
	e.cancel = cancel
	e.resolving = true
	s.wg.Add(1)
	go s.resolve(ctx, e)
}

func (s *Service) startLocked(e *entry) {
	ctx, cancel := context.WithCancel(s.ctx)
	e.cancel = cancel
	e.running = true
	s.activeCount++

	item := e.item
	item.Status = model.StatusDownloading
	item.Message = "Starting"
	item.StartedAt = time.Now()

	s.wg.Add(1)
	go s.startItem(ctx, e)
}

// resolve loads the songs of a Pending Metadata collection
func (s *Service) resolve(ctx context.Context, e *entry) {
	defer s.wg.Done()
	logger := log.WithFields(log.Fields{"module": "download", "function": "resolve"})

	s.itemsMutex.RLock()
	release, artist := e.item.Release, e.item.Artist
	s.itemsMutex.RUnlock()

	span := telemetry.StartSpan(ctx, "download.resolve", "Resolve collection")
	ctx = span.Context()

	var err error
	switch {
	case s.deps.Resolver == nil:
		err = errors.New("no resolver configured")
	case release != nil:
		release, err = s.resolveRelease(ctx, release)
	case artist != nil:
		artist, err = s.resolveArtist(ctx, artist)
	default:
		err = ErrNoSource
	}
	if ctx.Err() != nil {
		telemetry.Finish(span, nil)
	} else {
		telemetry.Finish(span, err)
	}

	s.itemsMutex.Lock()
	e.resolving = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if current, ok := s.items[e.item.ID]; !ok || current != e || e.item.Status != model.StatusPendingMetadata {
		s.itemsMutex.Unlock()
		return
	}

	item := e.item
	if err != nil {
		if ctx.Err() != nil {
			// Shutdown
			s.itemsMutex.Unlock()
			return
		}
		item.Status = model.StatusFailed
		item.Error = err.Error()
		item.FinishedAt = time.Now()
		logger.Errorf("Failed to load details of %s: %v", item.DisplayTitle(), err)
	} else {
		if release != nil {
			item.Release = release
			item.TotalSongs = len(release.SelectedSongs())
		} else {
			item.Artist = artist
			item.TotalSongs = artist.SongCount()
		}
		item.Status = model.StatusQueued
		logger.Infof("Resolved %s: %d songs", item.DisplayTitle(), item.TotalSongs)
	}
	snap := item.Snapshot()
	s.itemsMutex.Unlock()

	s.notifyUpdate(snap)
	s.schedule()
}

func (s *Service) resolveRelease(ctx context.Context, release *model.Release) (*model.Release, error) {
	details, err := s.deps.Resolver.ReleaseDetails(ctx, release)
	if err != nil {
		return nil, err
	}
	if len(details.Songs) == 0 {
		return nil, fmt.Errorf("%w: no songs in %s", ErrNoSource, release.URL)
	}
	return details, nil
}

func (s *Service) resolveArtist(ctx context.Context, artist *model.Artist) (*model.Artist, error) {
	logger := log.WithFields(log.Fields{"module": "download", "function": "resolveArtist"})

	details, err := s.deps.Resolver.ArtistDetails(ctx, artist)
	if err != nil {
		return nil, err
	}

	releases := make([]*model.Release, 0, len(details.Releases))
	for _, r := range details.Releases {
		if len(r.Songs) == 0 {
			full, err := s.resolveRelease(ctx, r)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warnf("Skipping release %s: %v", r.Title, err)
				continue
			}
			r = full
		}
		releases = append(releases, r)
	}
	if len(releases) == 0 {
		return nil, fmt.Errorf("%w: no downloadable releases for %s", ErrNoSource, details.Name)
	}
	details.Releases = releases
	return details, nil
}

// startItem runs an item and records its final status
func (s *Service) startItem(ctx context.Context, e *entry) {
	defer s.wg.Done()

	s.itemsMutex.RLock()
	id, kind := e.item.ID, e.item.Type
	song, release, artist := e.item.Song, e.item.Release, e.item.Artist
	format, quality := e.item.Format, e.item.Quality
	s.itemsMutex.RUnlock()

	span := telemetry.StartSpan(ctx, "download.item", "Download queue item")
	span.SetTag("type", string(kind))
	span.SetTag("item_id", id)
	ctx = span.Context()

	var err error
	switch {
	case song != nil:
		err = s.runSong(ctx, e, *song, format, quality)
	case release != nil:
		err = s.runRelease(ctx, e, release, format, quality)
	case artist != nil:
		err = s.runArtist(ctx, e, artist, format, quality)
	default:
		err = ErrNoSource
	}

	if errors.Is(err, context.Canceled) {
		telemetry.Finish(span, nil)
	} else {
		telemetry.Finish(span, err)
	}
	s.finish(ctx, e, err)
}

func (s *Service) finish(ctx context.Context, e *entry, err error) {
	logger := log.WithFields(log.Fields{"module": "download", "function": "finish"})

	s.itemsMutex.Lock()
	s.activeCount--
	e.running = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	item := e.item
	switch {
	case item.Status == model.StatusCancelled:
		// Cancel already reported it
	case ctx.Err() != nil:
		item.Status = model.StatusCancelled
		item.Message = "Cancelled"
	case err != nil:
		item.Status = model.StatusFailed
		item.Error = err.Error()
		item.Message = ""
	default:
		item.Status = model.StatusCompleted
		item.Progress = 100
	}
	if item.FinishedAt.IsZero() || item.FinishedAt.Before(item.StartedAt) {
		item.FinishedAt = time.Now()
	}
	item.CurrentSong = nil
	snap := item.Snapshot()
	s.itemsMutex.Unlock()

	switch snap.Status {
	case model.StatusFailed:
		logger.Errorf("Download %s failed: %s", snap.ID, snap.Error)
	case model.StatusCompleted:
		logger.Infof("Download %s completed: %s", snap.ID, snap.Message)
	}

	s.notifyUpdate(snap)
	s.schedule()
}

// update mutates an item under the lock and publishes the result.
// Cancelled items are frozen.
func (s *Service) update(e *entry, fn func(item *model.DownloadItem)) {
	s.itemsMutex.Lock()
	if e.item.Status == model.StatusCancelled {
		s.itemsMutex.Unlock()
		return
	}
	fn(e.item)
	snap := e.item.Snapshot()
	s.itemsMutex.Unlock()

	s.notifyUpdate(snap)
}

func (s *Service) removeLocked(id string) {
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(item model.DownloadItem) {
	s.itemsMutex.RLock()
	callback := s.onUpdate
	s.itemsMutex.RUnlock()
	if callback != nil {
		callback(item)
	}
}

// generateItemID generates a unique item ID using UUID v7
func generateItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(ItemIDPrefix+"%d", time.Now().UnixNano())
	}
	return ItemIDPrefix + id.String()
}
