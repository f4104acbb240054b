// Package artwork finds and caches release cover images. Official artwork
// from iTunes is preferred over the Apple Music page and YouTube thumbnails.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/network"
	"github.com/ytget/mp3me/internal/telemetry"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// ErrNoArtwork is returned when no source produced an image
var ErrNoArtwork = errors.New("no artwork found")

// Artwork sources
const (
	SourceITunes     = "itunes"
	SourceAppleMusic = "applemusic"
	SourceThumbnail  = "thumbnail"
)

// Image is a downloaded cover
type Image struct {
	Data     []byte
	MIMEType string
	Source   string
	URL      string
}

// Request identifies the cover to look up
type Request struct {
	Release     string
	Artist      string
	FallbackURL string // usually the YouTube thumbnail
}

// Service resolves covers through iTunes, Apple Music and the fallback URL
type Service struct {
	http          *network.Client
	itunes        *ITunesClient
	scraper       *AppleMusicScraper
	cache         *Cache
	maxCacheBytes atomic.Int64
}

// NewService creates a service. cache may be nil.
func NewService(client *network.Client, cache *Cache) *Service {
	s := &Service{
		http:    client,
		itunes:  NewITunesClient(client),
		scraper: NewAppleMusicScraper(client),
		cache:   cache,
	}
	s.maxCacheBytes.Store(500 * 1024 * 1024)
	return s
}

// ITunes exposes the iTunes client, used for genre and year lookups
func (s *Service) ITunes() *ITunesClient {
	return s.itunes
}

// Cache returns the image cache, nil when disabled
func (s *Service) Cache() *Cache {
	return s.cache
}

// SetMaxCacheMB sets the cache size limit enforced after each fetch
func (s *Service) SetMaxCacheMB(mb int) {
	s.maxCacheBytes.Store(int64(mb) * 1024 * 1024)
}

// Cover returns the best available cover for a release
func (s *Service) Cover(ctx context.Context, req Request) (img *Image, err error) {
	span := telemetry.StartSpan(ctx, "artwork.cover", "Find release cover")
	span.SetTag("release", req.Release)
	span.SetTag("artist", req.Artist)
	ctx = span.Context()
	defer func() {
		if errors.Is(err, ErrNoArtwork) {
			telemetry.Finish(span, nil)
			return
		}
		telemetry.Finish(span, err)
	}()

	logger := log.WithFields(log.Fields{"module": "artwork", "function": "Cover"})

	if strings.TrimSpace(req.Release) != "" && strings.TrimSpace(req.Artist) != "" {
		album, err := s.itunes.Find(ctx, req.Release, req.Artist)
		if err != nil {
			logger.Warnf("Failed to fetch better release art: %v", err)
		}
		if album != nil {
			if u := album.ArtworkURL(); u != "" {
				if img, err := s.Fetch(ctx, u); err == nil {
					img.Source = SourceITunes
					return img, nil
				}
			}
			if album.CollectionViewURL != "" {
				if u, err := s.scraper.Find(ctx, album.CollectionViewURL); err == nil {
					if img, err := s.Fetch(ctx, u); err == nil {
						img.Source = SourceAppleMusic
						return img, nil
					}
				} else {
					logger.Debugf("Apple Music scrape failed: %v", err)
				}
			}
		}
	}

	if req.FallbackURL != "" {
		img, err := s.Fetch(ctx, req.FallbackURL)
		if err == nil {
			img.Source = SourceThumbnail
			return img, nil
		}
		logger.Warnf("Error downloading thumbnail: %v", err)
	}

	return nil, ErrNoArtwork
}

// Fetch downloads an image, going through the cache
func (s *Service) Fetch(ctx context.Context, url string) (*Image, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(url); ok {
			return newImage(url, data)
		}
	}

	data, err := s.http.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := newImage(url, data)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(url, data); err != nil {
			log.WithFields(log.Fields{"module": "artwork", "function": "Fetch"}).Warnf("Failed to cache %s: %v", url, err)
		} else if _, err := s.cache.Clean(s.maxCacheBytes.Load()); err != nil {
			log.WithFields(log.Fields{"module": "artwork", "function": "Fetch"}).Warnf("Failed to clean cache: %v", err)
		}
	}
	return img, nil
}

func newImage(url string, data []byte) (*Image, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", url, mime)
	}
	return &Image{Data: data, MIMEType: mime, URL: url}, nil
}

// HighestResThumbnail returns the URL of the widest thumbnail
func HighestResThumbnail(thumbs []ytdlp.Thumbnail) string {
	best := -1
	for i, t := range thumbs {
		if t.URL == "" {
			continue
		}
		if best < 0 || t.Width > thumbs[best].Width {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return thumbs[best].URL
}
