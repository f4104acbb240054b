package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ytget/mp3me/internal/app"
	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/platform"
)

const shutdownTimeout = 10 * time.Second

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
)

func runSearch(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("search <query>", stderr)
	kind := fs.StringP("type", "t", "", "Limit results to song, release or artist")
	limit := fs.IntP("limit", "n", a.Settings.GetSearchLimit(), "Results per type")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fs.Usage()
		return 2
	}

	a.Search.SetLimit(*limit)
	var types []model.ContentType
	if *kind != "" {
		ct := model.ParseContentType(*kind)
		if ct == model.ContentRelease || ct == model.ContentSingle {
			ct = model.ContentAlbum
		}
		types = append(types, ct)
	}

	results, err := a.Search.Search(ctx, query, types...)
	if err != nil {
		red.Fprintf(stderr, "Search failed: %v\n", err)
		return 1
	}
	if len(results) == 0 {
		yellow.Fprintln(stdout, "No results.")
		return 0
	}
	printResults(stdout, results)
	return 0
}

func runDownload(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("download <url|query>", stderr)
	format := fs.StringP("format", "f", a.Settings.GetFormat(), "Output format: "+strings.Join(a.Settings.GetFormatOptions(), ", "))
	quality := fs.StringP("quality", "q", string(a.Settings.GetAudioQuality()), "Audio quality: high, medium or low")
	list := fs.BoolP("list", "l", false, "List the songs matching a query instead of downloading the first")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	target := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if target == "" {
		fs.Usage()
		return 2
	}

	if err := a.CheckTools(ctx); err != nil {
		red.Fprintf(stderr, "yt-dlp is required: %v\n", err)
		return 1
	}

	var (
		item model.DownloadItem
		err  error
	)
	if platform.IsYouTubeURL(target) {
		cyan.Fprintf(stdout, "Resolving %s\n", target)
		item, err = a.Downloads.AddURL(ctx, target, *format, *quality)
	} else {
		cyan.Fprintf(stdout, "Searching for %q\n", target)
		var song *model.SearchResult
		song, err = firstSong(ctx, a.Search, target, *list, stdout)
		if err == nil && song == nil {
			return 0
		}
		if err == nil {
			item, err = a.Downloads.Add(song, *format, *quality)
		}
	}
	if err != nil {
		red.Fprintf(stderr, "Download failed: %v\n", err)
		return 1
	}

	progress := newProgressPrinter(stdout)
	a.Downloads.SetUpdateCallback(func(it model.DownloadItem) {
		if it.ID == item.ID {
			progress.update(it)
		}
	})

	final, err := a.Downloads.Wait(ctx, item.ID)
	if err != nil {
		a.Downloads.CancelAll()
		red.Fprintf(stderr, "\nInterrupted: %v\n", err)
		return 1
	}
	progress.done()

	switch final.Status {
	case model.StatusCompleted:
		green.Fprintf(stdout, "Done: %s\n", final.OutputPath)
		if final.IsCollection() && final.FailedSongs > 0 {
			yellow.Fprintf(stdout, "%d of %d songs failed\n", final.FailedSongs, final.TotalSongs)
		}
		return 0
	default:
		red.Fprintf(stderr, "%s: %s\n", final.Status, final.Error)
		return 1
	}
}

// songSearcher finds songs for a free text query
type songSearcher interface {
	Search(ctx context.Context, query string, types ...model.ContentType) ([]model.SearchResult, error)
}

// firstSong returns the first song hit for query. With list set every hit
// is printed and nil is returned.
func firstSong(ctx context.Context, s songSearcher, query string, list bool, stdout io.Writer) (*model.SearchResult, error) {
	results, err := s.Search(ctx, query, model.ContentSong)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.New("no songs found")
	}
	if list {
		printResults(stdout, results)
		return nil, nil
	}
	fmt.Fprintf(stdout, "Found %s - %s\n", results[0].Title(), results[0].Subtitle())
	return &results[0], nil
}

func runLibrary(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: mp3me library scan|list [--filter text]")
		return 2
	}

	switch args[0] {
	case "scan":
		root := a.Settings.GetDownloadDirectory()
		cyan.Fprintf(stdout, "Scanning %s\n", root)
		count, err := a.Scanner.Scan(ctx, root, func(scanned, total int) {
			fmt.Fprintf(stdout, "\r%d/%d", scanned, total)
		})
		fmt.Fprintln(stdout)
		if err != nil {
			red.Fprintf(stderr, "Scan failed: %v\n", err)
			return 1
		}
		green.Fprintf(stdout, "Indexed %d files\n", count)
		return 0

	case "list":
		fs := newFlagSet("library list", stderr)
		filter := fs.StringP("filter", "F", "", "Only tracks whose title, artist or album contain this text")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		tracks, err := a.Library.Tracks(ctx, *filter)
		if err != nil {
			red.Fprintf(stderr, "Failed to list library: %v\n", err)
			return 1
		}
		printTracks(stdout, tracks)
		return 0
	}

	fmt.Fprintf(stderr, "unknown library command %q\n", args[0])
	return 2
}

func runServe(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("serve", stderr)
	addr := fs.String("addr", a.Env.APIAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a.CheckTools(ctx)
	a.Monitor.OnChange(a.Downloads.SetOnline)
	go a.Monitor.Run(ctx)

	if err := a.API().Run(ctx, *addr); err != nil {
		red.Fprintf(stderr, "Server failed: %v\n", err)
		return 1
	}
	return 0
}

func runSettings(args []string, settings *config.Settings, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		args = []string{"get"}
	}

	switch args[0] {
	case "get":
		values := settingsMap(settings.Snapshot())
		if len(args) > 1 {
			v, ok := values[args[1]]
			if !ok {
				fmt.Fprintf(stderr, "unknown setting: %s\n", args[1])
				return 1
			}
			fmt.Fprintln(stdout, v)
			return 0
		}
		printSettings(stdout, values)
		return 0

	case "set":
		if len(args) != 3 {
			fmt.Fprintln(stderr, "Usage: mp3me settings set <key> <value>")
			return 2
		}
		if err := settings.Set(args[1], args[2]); err != nil {
			red.Fprintln(stderr, err)
			return 1
		}
		green.Fprintf(stdout, "%s = %s\n", args[1], settingsMap(settings.Snapshot())[args[1]])
		return 0
	}

	fmt.Fprintf(stderr, "unknown settings command %q\n", args[0])
	return 2
}

func settingsMap(v config.Values) map[string]string {
	return map[string]string{
		config.KeyDownloadDir:      v.DownloadDir,
		config.KeyThreads:          fmt.Sprint(v.Threads),
		config.KeyFormat:           v.Format,
		config.KeyAudioQuality:     v.AudioQuality,
		config.KeyAutoRename:       fmt.Sprint(v.AutoRename),
		config.KeyUseAlbumFolders:  fmt.Sprint(v.UseAlbumFolders),
		config.KeyNormalizeAudio:   fmt.Sprint(v.NormalizeAudio),
		config.KeyEmbedLyrics:      fmt.Sprint(v.EmbedLyrics),
		config.KeyNotifyOnComplete: fmt.Sprint(v.NotifyOnComplete),
		config.KeyCheckDuplicates:  fmt.Sprint(v.CheckDuplicates),
		config.KeyMaxCacheSizeMB:   fmt.Sprint(v.MaxCacheSizeMB),
		config.KeyAccentColor:      v.AccentColor,
		config.KeyLanguage:         v.Language,
		config.KeySearchLimit:      fmt.Sprint(v.SearchLimit),
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

