package artwork

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/network"
)

// AppleMusicScraper reads the cover image from an Apple Music album page
type AppleMusicScraper struct {
	http *network.Client
}

// NewAppleMusicScraper creates a scraper over the shared HTTP client
func NewAppleMusicScraper(client *network.Client) *AppleMusicScraper {
	return &AppleMusicScraper{http: client}
}

// Find fetches pageURL and returns the album image URL
func (s *AppleMusicScraper) Find(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", ErrNoArtwork
	}

	body, err := s.http.GetBytes(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Try JSON-LD first (most reliable)
	image, err := imageFromJSONLD(doc)
	if err == nil {
		return image, nil
	}
	log.WithFields(log.Fields{"module": "artwork", "function": "Find"}).Debugf("JSON-LD extraction failed (%v), trying Open Graph fallback", err)

	image, _ = doc.Find("meta[property='og:image']").Attr("content")
	if image == "" {
		image, _ = doc.Find("meta[name='twitter:image']").Attr("content")
	}
	if image == "" {
		return "", ErrNoArtwork
	}
	return image, nil
}

func imageFromJSONLD(doc *goquery.Document) (string, error) {
	var image string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		switch v := data["image"].(type) {
		case string:
			image = v
		case map[string]interface{}:
			image, _ = v["url"].(string)
		case []interface{}:
			if len(v) > 0 {
				image, _ = v[0].(string)
			}
		}
		return image == ""
	})
	if image == "" {
		return "", errors.New("no JSON-LD image found")
	}
	return image, nil
}
