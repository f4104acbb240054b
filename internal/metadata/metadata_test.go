package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	spotify "github.com/zmb3/spotify/v2"

	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/network"
	"github.com/ytget/mp3me/internal/ytdlp"
)

const spotifySearchJSON = `{"tracks":{"href":"","limit":5,"offset":0,"total":2,"items":[
	{"id":"t0","name":"Bohemian Rhapsody","track_number":3,"artists":[{"id":"a9","name":"Panic! At The Disco"}],
	 "album":{"name":"Suicide Squad","release_date":"2016-08-05","artists":[{"name":"Various Artists"}]}},
	{"id":"t1","name":"Bohemian Rhapsody","track_number":11,"artists":[{"id":"a1","name":"Queen"}],
	 "album":{"name":"A Night At The Opera","release_date":"1975-11-21","artists":[{"id":"a1","name":"Queen"}],
	          "images":[{"url":"https://i.scdn.co/cover.jpg","width":640,"height":640}]}}
]}}`

func newSpotifyServer(t *testing.T, searchJSON string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/v1/search":
			if r.URL.Query().Get("type") != "track" {
				t.Errorf("type = %s", r.URL.Query().Get("type"))
			}
			fmt.Fprint(w, searchJSON)
		case r.URL.Path == "/v1/artists/a1":
			fmt.Fprint(w, `{"id":"a1","name":"Queen","genres":["classic rock","glam rock"]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// rewriteTransport sends every request to the test server
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestResolver(t *testing.T, srv *httptest.Server) *SpotifyResolver {
	t.Helper()
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return NewSpotifyResolverWithClient(spotify.New(&http.Client{Transport: rewriteTransport{target: target}}))
}

func TestSpotifyResolver_Resolve(t *testing.T) {
	srv := newSpotifyServer(t, spotifySearchJSON)
	r := newTestResolver(t, srv)

	match, err := r.Resolve(context.Background(), "Queen", "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := TrackMatch{
		Title:       "Bohemian Rhapsody",
		Artist:      "Queen",
		Album:       "A Night At The Opera",
		AlbumArtist: "Queen",
		TrackNumber: 11,
		Year:        "1975",
		Genre:       "classic rock",
		CoverURL:    "https://i.scdn.co/cover.jpg",
		Confidence:  100,
	}
	if *match != want {
		t.Errorf("Resolve() = %+v, want %+v", *match, want)
	}
}

func TestSpotifyResolver_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"empty", `{"tracks":{"items":[]}}`},
		{"low confidence", `{"tracks":{"items":[{"id":"x","name":"One","artists":[{"name":"Metallica"}],"album":{"name":"...And Justice for All"}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newSpotifyServer(t, tt.json)
			r := newTestResolver(t, srv)
			if _, err := r.Resolve(context.Background(), "Queen", "Bohemian Rhapsody"); !errors.Is(err, ErrNoMatch) {
				t.Errorf("expected ErrNoMatch, got %v", err)
			}
		})
	}
}

func TestLyricsClient_Find(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{"plain", `[{"trackName":"Song","plainLyrics":"line one\nline two\n","syncedLyrics":"[00:01.00] other"}]`, "line one\nline two", nil},
		{"synced only", `[{"trackName":"Song","syncedLyrics":"[00:01.00] line one\n[00:05.50] line two"}]`, "line one\nline two", nil},
		{"skips empty results", `[{"trackName":"A"},{"trackName":"B","plainLyrics":"found"}]`, "found", nil},
		{"none", `[]`, "", ErrNoLyrics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("track_name") != "Song" || r.URL.Query().Get("artist_name") != "Artist" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			httpClient := network.NewClient()
			httpClient.SetDelays(0, 0, 0)
			c := NewLyricsClient(httpClient)
			c.SetBaseURL(srv.URL)

			got, err := c.Find(context.Background(), "Artist", "Song")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Find() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Find() = %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeResolver struct {
	match *TrackMatch
	err   error
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, artist, title string) (*TrackMatch, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if !strings.EqualFold(artist, f.match.Artist) {
		return nil, ErrNoMatch
	}
	return f.match, nil
}

func TestEnricher_Enrich(t *testing.T) {
	resolver := &fakeResolver{match: &TrackMatch{
		Artist: "Queen", Album: "A Night At The Opera", AlbumArtist: "Queen",
		TrackNumber: 11, Year: "1975", Genre: "Rock", CoverURL: "https://cover",
	}}

	t.Run("parses title and resolves", func(t *testing.T) {
		song := &model.Song{Title: "Queen - Bohemian Rhapsody (Official Video)"}
		cover := NewEnricher(resolver).Enrich(context.Background(), song, nil)
		if song.Artist != "Queen" || song.Title != "Bohemian Rhapsody" {
			t.Errorf("artist/title = %q/%q", song.Artist, song.Title)
		}
		if song.Album != "A Night At The Opera" || song.TrackNumber != 11 || song.Year != "1975" || song.Genre != "Rock" {
			t.Errorf("album data not applied: %+v", song)
		}
		if cover != "https://cover" {
			t.Errorf("cover = %q", cover)
		}
	})

	t.Run("keeps catalogue values", func(t *testing.T) {
		song := &model.Song{Title: "Bohemian Rhapsody", Artist: "Queen", Album: "Greatest Hits", Year: "1981", TrackNumber: 1}
		NewEnricher(resolver).Enrich(context.Background(), song, nil)
		if song.Album != "Greatest Hits" || song.Year != "1981" || song.TrackNumber != 1 {
			t.Errorf("catalogue values overwritten: %+v", song)
		}
		if song.Genre != "Rock" {
			t.Errorf("Genre = %q, want Rock", song.Genre)
		}
	})

	t.Run("video info", func(t *testing.T) {
		song := &model.Song{}
		info := &ytdlp.VideoInfo{
			ID: "abc", Title: "Queen - Bohemian Rhapsody (Official Video)", Channel: "Queen Official",
			Duration: 354, UploadDate: "20081101",
			Thumbnails: []ytdlp.Thumbnail{{URL: "small", Width: 120}, {URL: "big", Width: 1280}},
		}
		NewEnricher(nil).Enrich(context.Background(), song, info)
		if song.Artist != "Queen" || song.Title != "Bohemian Rhapsody" {
			t.Errorf("artist/title = %q/%q", song.Artist, song.Title)
		}
		if song.VideoID != "abc" || song.Duration != "5:54" || song.Year != "2008" || song.ThumbnailURL != "big" {
			t.Errorf("video info not applied: %+v", song)
		}
		if song.AlbumArtist != "Queen" {
			t.Errorf("AlbumArtist = %q", song.AlbumArtist)
		}
	})

	t.Run("channel fallback", func(t *testing.T) {
		song := &model.Song{}
		info := &ytdlp.VideoInfo{ID: "abc", Title: "Untitled Jam", Channel: "Some Band - Topic"}
		NewEnricher(nil).Enrich(context.Background(), song, info)
		if song.Artist != "Some Band" || song.Title != "Untitled Jam" {
			t.Errorf("artist/title = %q/%q", song.Artist, song.Title)
		}
	})

	t.Run("resolver errors are not fatal", func(t *testing.T) {
		song := &model.Song{Title: "Song", Artist: "Artist"}
		NewEnricher(&fakeResolver{err: errors.New("boom")}).Enrich(context.Background(), song, nil)
		if song.Album != "" || song.AlbumArtist != "Artist" {
			t.Errorf("unexpected song %+v", song)
		}
	})
}
