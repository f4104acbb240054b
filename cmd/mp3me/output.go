package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/ytget/mp3me/internal/library"
	"github.com/ytget/mp3me/internal/model"
)

func printResults(w io.Writer, results []model.SearchResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Type", "Title", "Details", "URL"})
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	for i := range results {
		r := &results[i]
		table.Append([]string{fmt.Sprint(i + 1), string(r.Type), r.Title(), r.Subtitle(), r.URL()})
	}
	table.Render()
}

func printTracks(w io.Writer, tracks []library.Track) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Artist", "Title", "Album", "Length", "Path"})
	table.SetAutoWrapText(false)
	for _, t := range tracks {
		table.Append([]string{t.Artist, t.Title, t.Album, model.FormatSeconds(int(t.Duration)), t.Path})
	}
	table.SetFooter([]string{"", "", "", "Total", fmt.Sprint(len(tracks))})
	table.Render()
}

func printSettings(w io.Writer, values map[string]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Setting", "Value"})
	table.SetAutoWrapText(false)
	for _, k := range sortedKeys(values) {
		table.Append([]string{k, values[k]})
	}
	table.Render()
}

// progressPrinter redraws a single status line per item
type progressPrinter struct {
	mu       sync.Mutex
	w        io.Writer
	lastLine string
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

func (p *progressPrinter) update(item model.DownloadItem) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("[%-19s] %5.1f%% %s", item.Status, item.Progress, item.Message)
	if item.CurrentSong != nil && item.IsCollection() {
		line += " (" + item.CurrentSong.Title + ")"
	}
	if line == p.lastLine {
		return
	}
	pad := ""
	if n := len(p.lastLine) - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(p.w, "\r%s%s", line, pad)
	p.lastLine = line
}

func (p *progressPrinter) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastLine != "" {
		fmt.Fprintln(p.w)
	}
}
