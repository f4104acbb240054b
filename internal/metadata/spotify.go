package metadata

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	spotify "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ytget/mp3me/internal/telemetry"
)

// ErrNoMatch is returned when no candidate reaches MinConfidence
var ErrNoMatch = errors.New("no confident match")

// SpotifySearchLimit is how many tracks are compared per lookup
const SpotifySearchLimit = 5

// TrackMatch is album level data found for a song
type TrackMatch struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	TrackNumber int
	Year        string
	Genre       string
	CoverURL    string
	Confidence  int
}

// TrackResolver looks up album data for an artist and title
type TrackResolver interface {
	Resolve(ctx context.Context, artist, title string) (*TrackMatch, error)
}

// SpotifyResolver resolves tracks through the Spotify Web API
type SpotifyResolver struct {
	client *spotify.Client
}

// NewSpotifyResolver authenticates with client credentials. The returned
// client refreshes its token on its own.
func NewSpotifyResolver(ctx context.Context, clientID, clientSecret string) (*SpotifyResolver, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := cfg.Token(ctx); err != nil {
		telemetry.CaptureError(err)
		return nil, fmt.Errorf("spotify auth failed: %w", err)
	}
	return &SpotifyResolver{client: spotify.New(cfg.Client(context.Background()))}, nil
}

// NewSpotifyResolverWithClient wraps an existing API client
func NewSpotifyResolverWithClient(client *spotify.Client) *SpotifyResolver {
	return &SpotifyResolver{client: client}
}

// Resolve searches Spotify and returns the best match scoring at least MinConfidence
func (r *SpotifyResolver) Resolve(ctx context.Context, artist, title string) (match *TrackMatch, err error) {
	span := telemetry.StartSpan(ctx, "spotify.search", "Search Spotify API")
	span.SetTag("artist", artist)
	span.SetTag("title", title)
	ctx = span.Context()
	defer func() {
		if errors.Is(err, ErrNoMatch) {
			telemetry.Finish(span, nil)
			return
		}
		telemetry.Finish(span, err)
	}()

	logger := log.WithFields(log.Fields{"module": "metadata", "function": "SpotifyResolver.Resolve"})

	query := title
	if artist != "" {
		query = fmt.Sprintf("track:%s artist:%s", title, artist)
	}
	results, err := r.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(SpotifySearchLimit))
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, ErrNoMatch
	}

	var best *spotify.FullTrack
	bestScore := -1
	for i := range results.Tracks.Tracks {
		t := &results.Tracks.Tracks[i]
		score := Confidence(artist, title, artistNames(t.Artists), t.Name)
		if score > bestScore {
			best, bestScore = t, score
		}
	}
	if bestScore < MinConfidence {
		logger.Debugf("Best Spotify match for %q - %q scored %d", artist, title, bestScore)
		return nil, ErrNoMatch
	}

	match = &TrackMatch{
		Title:       best.Name,
		Artist:      artistNames(best.Artists),
		Album:       best.Album.Name,
		AlbumArtist: artistNames(best.Album.Artists),
		TrackNumber: int(best.TrackNumber),
		Year:        yearOf(best.Album.ReleaseDate),
		Confidence:  bestScore,
	}
	if len(best.Album.Images) > 0 {
		match.CoverURL = best.Album.Images[0].URL
	}

	if len(best.Artists) > 0 && best.Artists[0].ID != "" {
		full, err := r.client.GetArtist(ctx, best.Artists[0].ID)
		if err != nil {
			logger.Warnf("Failed to fetch Spotify artist %s: %v", best.Artists[0].ID, err)
		} else if len(full.Genres) > 0 {
			match.Genre = full.Genres[0]
		}
	}

	logger.Debugf("Spotify match %q by %s (confidence %d)", match.Title, match.Artist, bestScore)
	return match, nil
}

func artistNames(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}

func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}
