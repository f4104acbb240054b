package artwork

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/network"
)

// ITunesSearchURL is the public iTunes Search API endpoint
const ITunesSearchURL = "https://itunes.apple.com/search"

// Artwork sizes in iTunes artwork URLs
const (
	ITunesThumbSize = "100x100bb"
	ITunesCoverSize = "600x600bb"
	ITunesLimit     = 5
)

// ITunesAlbum is one album result of the search API
type ITunesAlbum struct {
	CollectionName    string `json:"collectionName"`
	ArtistName        string `json:"artistName"`
	ArtworkURL100     string `json:"artworkUrl100"`
	CollectionViewURL string `json:"collectionViewUrl"`
	PrimaryGenreName  string `json:"primaryGenreName"`
	ReleaseDate       string `json:"releaseDate"`
	TrackCount        int    `json:"trackCount"`
}

// ArtworkURL returns the 600x600 cover URL
func (a *ITunesAlbum) ArtworkURL() string {
	return strings.Replace(a.ArtworkURL100, ITunesThumbSize, ITunesCoverSize, 1)
}

// Year returns the release year from ReleaseDate
func (a *ITunesAlbum) Year() string {
	if len(a.ReleaseDate) >= 4 {
		return a.ReleaseDate[:4]
	}
	return ""
}

type itunesResponse struct {
	ResultCount int           `json:"resultCount"`
	Results     []ITunesAlbum `json:"results"`
}

// ITunesClient looks up official release artwork
type ITunesClient struct {
	http    *network.Client
	baseURL string
}

// NewITunesClient creates a client over the shared retrying HTTP client
func NewITunesClient(client *network.Client) *ITunesClient {
	return &ITunesClient{http: client, baseURL: ITunesSearchURL}
}

// SetBaseURL points the client at another search endpoint
func (c *ITunesClient) SetBaseURL(u string) {
	c.baseURL = u
}

// Find returns the album whose name contains release and whose artist
// contains artist, or the first result when nothing matches.
func (c *ITunesClient) Find(ctx context.Context, release, artist string) (*ITunesAlbum, error) {
	params := url.Values{}
	params.Set("term", strings.TrimSpace(release+" "+artist))
	params.Set("entity", "album")
	params.Set("limit", fmt.Sprint(ITunesLimit))

	var resp itunesResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("itunes search failed: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoArtwork
	}

	releaseLower := strings.ToLower(release)
	artistLower := strings.ToLower(artist)
	for i := range resp.Results {
		r := &resp.Results[i]
		if r.ArtworkURL100 == "" {
			continue
		}
		if strings.Contains(strings.ToLower(r.CollectionName), releaseLower) &&
			strings.Contains(strings.ToLower(r.ArtistName), artistLower) {
			return r, nil
		}
	}

	log.WithFields(log.Fields{"module": "artwork", "function": "ITunesClient.Find"}).
		Debugf("No exact iTunes match for %q by %q, using first result", release, artist)
	first := &resp.Results[0]
	if first.ArtworkURL100 == "" {
		return first, ErrNoArtwork
	}
	return first, nil
}
