package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"

	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/platform"
	"github.com/ytget/mp3me/internal/ytdlp"
)

// fakeClient serves canned yt-dlp results
type fakeClient struct {
	mu        sync.Mutex
	search    map[string][]ytdlp.Entry
	searchErr map[string]error
	lists     map[string][]ytdlp.Entry
	info      *ytdlp.VideoInfo
	listed    []string
}

func (f *fakeClient) Version(ctx context.Context) (string, error) { return "test", nil }

func (f *fakeClient) Search(ctx context.Context, query, section string, limit int) ([]ytdlp.Entry, error) {
	if err := f.searchErr[section]; err != nil {
		return nil, err
	}
	entries := f.search[section]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeClient) ListEntries(ctx context.Context, pageURL string) ([]ytdlp.Entry, error) {
	f.mu.Lock()
	f.listed = append(f.listed, pageURL)
	f.mu.Unlock()
	entries, ok := f.lists[pageURL]
	if !ok {
		return nil, fmt.Errorf("no page %s", pageURL)
	}
	return entries, nil
}

func (f *fakeClient) Info(ctx context.Context, videoURL string) (*ytdlp.VideoInfo, error) {
	if f.info == nil {
		return nil, errors.New("not found")
	}
	return f.info, nil
}

func (f *fakeClient) Download(ctx context.Context, req ytdlp.DownloadRequest, onProgress ytdlp.ProgressFunc) (string, error) {
	return "", errors.New("not supported")
}

var musicEntries = map[string][]ytdlp.Entry{
	ytdlp.SectionSongs: {
		{ID: "fJ9rUzIMcZQ", Title: "Bohemian Rhapsody", Channel: "Queen - Topic", Duration: 355, URL: "https://music.youtube.com/watch?v=fJ9rUzIMcZQ"},
		{ID: "OLAK5uy_notasong", Title: "stray", URL: "https://music.youtube.com/playlist?list=OLAK5uy_notasong"},
		{ID: "2ZBtPf7FOoM", Title: "Under Pressure", Artists: []string{"Queen", "David Bowie"}},
	},
	ytdlp.SectionAlbums: {
		{ID: "OLAK5uy_abc", Title: "A Night at the Opera", Channel: "Queen", URL: "https://music.youtube.com/playlist?list=OLAK5uy_abc"},
		{ID: "MPREb_xyz", Title: "Innuendo - Single", URL: "https://music.youtube.com/browse/MPREb_xyz"},
		{ID: "PLuserlist", Title: "My mix", URL: "https://www.youtube.com/playlist?list=PLuserlist"},
	},
	ytdlp.SectionArtists: {
		{ID: "UCiMhD4jzUqG-IgPzUmmytRQ", Title: "Queen", URL: "https://www.youtube.com/channel/UCiMhD4jzUqG-IgPzUmmytRQ"},
	},
}

func TestReleaseType(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"A Night at the Opera", ReleaseAlbum},
		{"Innuendo - Single", ReleaseSingle},
		{"Spring EP", ReleaseSingle},
		{"Deep Cuts", ReleaseAlbum},
		{"Singles Collection", ReleaseAlbum},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := ReleaseType(tt.title); got != tt.want {
				t.Errorf("ReleaseType(%q) = %s, want %s", tt.title, got, tt.want)
			}
		})
	}
}

func TestYTDLPBackend_Search(t *testing.T) {
	b := NewYTDLPBackend(&fakeClient{search: musicEntries})

	songs, err := b.Search(context.Background(), "queen", model.ContentSong, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}
	s := songs[0].Song
	if s.Artist != "Queen" || s.Duration != "5:55" || s.URL != platform.VideoURL("fJ9rUzIMcZQ") {
		t.Errorf("unexpected song %+v", s)
	}
	if songs[1].Song.Artist != "Queen" {
		t.Errorf("Artist = %q", songs[1].Song.Artist)
	}

	releases, err := b.Search(context.Background(), "queen", model.ContentAlbum, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(releases) != 2 {
		t.Fatalf("expected 2 releases, got %d", len(releases))
	}
	if releases[0].Type != model.ContentAlbum || releases[0].Release.URL != platform.PlaylistURL("OLAK5uy_abc") {
		t.Errorf("unexpected release %+v", releases[0].Release)
	}
	if releases[1].Type != model.ContentSingle || releases[1].Release.URL != platform.BrowseURL("MPREb_xyz") {
		t.Errorf("unexpected single %+v", releases[1].Release)
	}

	artists, err := b.Search(context.Background(), "queen", model.ContentArtist, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(artists) != 1 || artists[0].Artist.Name != "Queen" {
		t.Fatalf("unexpected artists %+v", artists)
	}
}

func TestService_Search(t *testing.T) {
	svc := NewService(NewYTDLPBackend(&fakeClient{search: musicEntries}), nil, nil)

	results, err := svc.Search(context.Background(), "  queen  ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	var types []model.ContentType
	for _, r := range results {
		types = append(types, r.Type)
	}
	want := []model.ContentType{model.ContentArtist, model.ContentAlbum, model.ContentSingle, model.ContentSong, model.ContentSong}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Errorf("types = %v, want %v", types, want)
	}
}

func TestService_SetLimitWhileSearching(t *testing.T) {
	svc := NewService(NewYTDLPBackend(&fakeClient{search: musicEntries}), nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.Search(context.Background(), "queen"); err != nil {
				t.Errorf("Search() error = %v", err)
			}
		}()
		go func(n int) {
			defer wg.Done()
			svc.SetLimit(n)
		}(i + 1)
	}
	wg.Wait()

	svc.SetLimit(1)
	results, err := svc.Search(context.Background(), "queen", model.ContentSong)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results with limit 1", len(results))
	}
}

func TestService_SearchErrors(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		searchErr map[string]error
		wantErr   error
		wantCount int
	}{
		{"empty", "   ", nil, ErrEmptyQuery, 0},
		{"partial failure", "queen", map[string]error{ytdlp.SectionArtists: errors.New("boom")}, nil, 4},
		{"all failed", "queen", map[string]error{
			ytdlp.SectionArtists: errors.New("a"),
			ytdlp.SectionAlbums:  errors.New("b"),
			ytdlp.SectionSongs:   errors.New("c"),
		}, errors.New("search failed"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewYTDLPBackend(&fakeClient{search: musicEntries, searchErr: tt.searchErr}), nil, nil)
			results, err := svc.Search(context.Background(), tt.query)
			switch {
			case tt.wantErr == nil && err != nil:
				t.Fatalf("unexpected error %v", err)
			case tt.wantErr != nil && err == nil:
				t.Fatalf("expected error %v", tt.wantErr)
			case errors.Is(tt.wantErr, ErrEmptyQuery) && !errors.Is(err, ErrEmptyQuery):
				t.Fatalf("expected ErrEmptyQuery, got %v", err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestService_ResolveSong(t *testing.T) {
	client := &fakeClient{info: &ytdlp.VideoInfo{
		ID: "fJ9rUzIMcZQ", Title: "Queen - Bohemian Rhapsody (Official Video)", Track: "Bohemian Rhapsody",
		Artist: "Queen", Album: "A Night at the Opera", ReleaseYear: 1975, Duration: 355,
	}}
	svc := NewService(nil, client, nil)

	results, err := svc.Search(context.Background(), "https://music.youtube.com/watch?v=fJ9rUzIMcZQ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Type != model.ContentSong {
		t.Fatalf("unexpected results %+v", results)
	}
	song := results[0].Song
	if song.Title != "Bohemian Rhapsody" || song.Album != "A Night at the Opera" || song.Year != "1975" || song.Duration != "5:55" {
		t.Errorf("unexpected song %+v", song)
	}
	if song.URL != platform.VideoURL("fJ9rUzIMcZQ") {
		t.Errorf("URL = %s", song.URL)
	}
}

func TestService_ReleaseDetails(t *testing.T) {
	releaseURL := platform.PlaylistURL("OLAK5uy_abc")
	release := &model.Release{ID: "OLAK5uy_abc", Title: "Jazz", Artist: "Queen", Year: "1978", URL: releaseURL, ThumbnailURL: "cover"}

	t.Run("parser", func(t *testing.T) {
		parser := platform.NewReleaseParser()
		parser.SetLister(func(ctx context.Context, id string) ([]platform.ReleaseTrack, error) {
			return []platform.ReleaseTrack{{VideoID: "v1", Title: "Mustapha"}, {VideoID: "", Title: "gone"}, {VideoID: "v2", Title: "Fat Bottomed Girls"}}, nil
		})
		client := &fakeClient{}
		out, err := NewService(nil, client, parser).ReleaseDetails(context.Background(), release)
		if err != nil {
			t.Fatalf("ReleaseDetails() error = %v", err)
		}
		if len(out.Songs) != 2 || out.Songs[1].TrackNumber != 2 || out.Songs[1].Album != "Jazz" {
			t.Errorf("unexpected songs %+v", out.Songs)
		}
		if len(client.listed) != 0 {
			t.Errorf("yt-dlp should not be used, listed %v", client.listed)
		}
	})

	t.Run("yt-dlp fallback", func(t *testing.T) {
		parser := platform.NewReleaseParser()
		parser.SetLister(func(ctx context.Context, id string) ([]platform.ReleaseTrack, error) {
			return nil, errors.New("innertube down")
		})
		client := &fakeClient{lists: map[string][]ytdlp.Entry{
			releaseURL: {
				{ID: "v1", Title: "Mustapha", URL: "https://music.youtube.com/watch?v=v1xxxxxxxxx"},
				{ID: "", Title: "private"},
				{ID: "v2xxxxxxxxx", Title: "Fat Bottomed Girls"},
			},
		}}
		out, err := NewService(nil, client, parser).ReleaseDetails(context.Background(), release)
		if err != nil {
			t.Fatalf("ReleaseDetails() error = %v", err)
		}
		if len(out.Songs) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(out.Songs))
		}
		for i, s := range out.Songs {
			if s.TrackNumber != i+1 || s.TrackTotal != 2 || s.Album != "Jazz" || s.Artist != "Queen" || s.Year != "1978" || s.ThumbnailURL != "cover" || !s.Selected {
				t.Errorf("song %d not inherited: %+v", i, s)
			}
		}
		if out.TrackCount != 2 {
			t.Errorf("TrackCount = %d", out.TrackCount)
		}
	})
}

func TestService_ArtistDetails(t *testing.T) {
	channel := "https://www.youtube.com/channel/UCiMhD4jzUqG-IgPzUmmytRQ"
	client := &fakeClient{lists: map[string][]ytdlp.Entry{
		channel + "/playlists": {
			{ID: "OLAK5uy_one", Title: "Jazz", PlaylistUploader: "Queen", URL: "https://www.youtube.com/playlist?list=OLAK5uy_one"},
			{ID: "PLfans", Title: "Fan mix", URL: "https://www.youtube.com/playlist?list=PLfans"},
			{ID: "OLAK5uy_two", Title: "Flash - EP", URL: "https://www.youtube.com/playlist?list=OLAK5uy_two"},
		},
	}}
	svc := NewService(nil, client, nil)

	artist, err := svc.ArtistDetails(context.Background(), &model.Artist{URL: channel})
	if err != nil {
		t.Fatalf("ArtistDetails() error = %v", err)
	}
	if artist.Name != "Queen" || len(artist.Releases) != 2 {
		t.Fatalf("unexpected artist %+v", artist)
	}
	if artist.Releases[1].ReleaseType != ReleaseSingle || artist.Releases[1].Artist != "Queen" {
		t.Errorf("unexpected release %+v", artist.Releases[1])
	}
	if client.listed[0] != channel+"/releases" {
		t.Errorf("releases tab should be tried first, listed %v", client.listed)
	}

	if _, err := svc.ArtistDetails(context.Background(), &model.Artist{URL: "https://www.youtube.com/channel/UCnothing0000000000000"}); !errors.Is(err, ErrNoReleases) {
		t.Errorf("expected ErrNoReleases, got %v", err)
	}
}

func TestYouTubeAPIBackend_Search(t *testing.T) {
	var gotType, gotCategory string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/search") {
			http.NotFound(w, r)
			return
		}
		gotType = r.URL.Query().Get("type")
		gotCategory = r.URL.Query().Get("videoCategoryId")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"id":{"kind":"youtube#video","videoId":"fJ9rUzIMcZQ"},"snippet":{"title":"Queen &amp; Bowie","channelTitle":"Queen - Topic","publishedAt":"2008-08-01T00:00:00Z","thumbnails":{"high":{"url":"https://i.ytimg.com/hq.jpg"}}}},
			{"id":{"kind":"youtube#playlist","playlistId":"OLAK5uy_abc"},"snippet":{"title":"Jazz","channelTitle":"Queen"}},
			{"id":{"kind":"youtube#playlist","playlistId":"PLmix"},"snippet":{"title":"Mix","channelTitle":"Someone"}},
			{"id":{"kind":"youtube#channel","channelId":"UCiMhD4jzUqG-IgPzUmmytRQ"},"snippet":{"title":"Queen"}}
		]}`)
	}))
	defer srv.Close()

	b, err := NewYouTubeAPIBackend(context.Background(), "key", option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}

	results, err := b.Search(context.Background(), "queen", model.ContentSong, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotType != "video" || gotCategory != MusicCategoryID {
		t.Errorf("type/category = %s/%s", gotType, gotCategory)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	song := results[0].Song
	if song.Title != "Queen & Bowie" || song.Artist != "Queen" || song.Year != "2008" || song.ThumbnailURL != "https://i.ytimg.com/hq.jpg" {
		t.Errorf("unexpected song %+v", song)
	}
	if results[1].Type != model.ContentAlbum || results[2].Type != model.ContentPlaylist {
		t.Errorf("release types = %s, %s", results[1].Type, results[2].Type)
	}
	if results[3].Artist.URL != platform.ChannelURL("UCiMhD4jzUqG-IgPzUmmytRQ") {
		t.Errorf("artist URL = %s", results[3].Artist.URL)
	}

	if _, err := b.Search(context.Background(), "queen", model.ContentArtist, 5); err != nil {
		t.Fatal(err)
	}
	if gotType != "channel" {
		t.Errorf("type = %s, want channel", gotType)
	}
}
