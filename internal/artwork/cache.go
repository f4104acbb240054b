package artwork

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/platform"
)

// DefaultMaxAge is how long cached images are kept when the cache is over its limit
const DefaultMaxAge = 30 * 24 * time.Hour

// Cache stores downloaded images on disk keyed by URL
type Cache struct {
	dir    string
	maxAge time.Duration
	mu     sync.Mutex
}

// NewCache creates the cache directory if needed
func NewCache(dir string) (*Cache, error) {
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, maxAge: DefaultMaxAge}, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(url string) string {
	sum := md5.Sum([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".jpg")
}

// Get returns the cached bytes for url
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := os.ReadFile(c.path(url))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Put stores data for url
func (c *Cache) Put(url string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.WriteFile(c.path(url), data, 0644)
}

type cacheFile struct {
	path    string
	size    int64
	modTime time.Time
}

func (c *Cache) files() ([]cacheFile, int64, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, 0, err
	}
	var files []cacheFile
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, cacheFile{
			path:    filepath.Join(c.dir, e.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		total += info.Size()
	}
	return files, total, nil
}

// Size returns the total size of cached files in bytes
func (c *Cache) Size() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, total, err := c.files()
	return total, err
}

// Clean enforces maxBytes. When over the limit, files older than the max
// age go first, then the oldest files until the cache fits.
func (c *Cache) Clean(maxBytes int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := log.WithFields(log.Fields{"module": "artwork", "function": "Cache.Clean"})

	files, total, err := c.files()
	if err != nil || total <= maxBytes {
		return 0, err
	}
	logger.Infof("Cache size (%.2fMB) exceeds limit, cleaning old files", float64(total)/(1024*1024))

	removed := 0
	cutoff := time.Now().Add(-c.maxAge)
	kept := files[:0]
	for _, f := range files {
		if f.modTime.Before(cutoff) {
			if err := os.Remove(f.path); err != nil {
				logger.Errorf("Error removing old cache file %s: %v", f.path, err)
				kept = append(kept, f)
				continue
			}
			total -= f.size
			removed++
			continue
		}
		kept = append(kept, f)
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].modTime.Before(kept[j].modTime)
	})
	for _, f := range kept {
		if total <= maxBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			logger.Errorf("Error removing cache file %s: %v", f.path, err)
			continue
		}
		total -= f.size
		removed++
	}

	logger.Infof("Cache cleaned, removed %d files, new size: %.2fMB", removed, float64(total)/(1024*1024))
	return removed, nil
}

// Clear removes every cached file
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	files, _, err := c.files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f.path); err != nil {
			return err
		}
	}
	return nil
}
