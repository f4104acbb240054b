package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/download"
	"github.com/ytget/mp3me/internal/model"
)

// searchTypeKeys is the order of the type selector
var searchTypeKeys = []string{KeyTypeAll, KeyTypeSongs, KeyTypeAlbums, KeyTypeArtists}

// searchTypes maps a type selector index to content types. nil searches
// every type.
func searchTypes(index int) []model.ContentType {
	switch index {
	case 1:
		return []model.ContentType{model.ContentSong}
	case 2:
		return []model.ContentType{model.ContentAlbum}
	case 3:
		return []model.ContentType{model.ContentArtist}
	default:
		return nil
	}
}

// resultIcon returns the glyph shown in front of a result
func resultIcon(t model.ContentType) string {
	switch {
	case t == model.ContentArtist:
		return "👤"
	case t.IsCollection():
		return "💿"
	default:
		return IconMusic
	}
}

// SearchView is the search tab: a query row and a list of results
type SearchView struct {
	window       fyne.Window
	localization *Localization
	search       Searcher
	downloads    download.Downloader
	settings     *config.Settings
	notify       func(string)

	entry      *widget.Entry
	typeSelect *widget.Select
	list       *widget.List
	status     *widget.Label
	spinner    *widget.ProgressBarInfinite

	results []model.SearchResult

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSearchView creates the search tab. notify shows short messages and
// may be called from any goroutine.
func NewSearchView(window fyne.Window, localization *Localization, search Searcher, downloads download.Downloader, settings *config.Settings, notify func(string)) *SearchView {
	sv := &SearchView{
		window:       window,
		localization: localization,
		search:       search,
		downloads:    downloads,
		settings:     settings,
		notify:       notify,
	}
	sv.createUI()
	return sv
}

// Content returns the tab content
func (sv *SearchView) Content() fyne.CanvasObject {
	top := container.NewVBox(
		container.NewBorder(nil, nil, sv.typeSelect, widget.NewButton(sv.localization.GetText(KeySearch), sv.Submit), sv.entry),
		container.NewBorder(nil, nil, nil, sv.spinner, sv.status),
	)
	return container.NewBorder(top, nil, nil, nil, sv.list)
}

func (sv *SearchView) createUI() {
	l := sv.localization

	sv.entry = widget.NewEntry()
	sv.entry.SetPlaceHolder(l.GetText(KeySearchPlaceholder))
	sv.entry.OnSubmitted = func(string) { sv.Submit() }

	options := make([]string, len(searchTypeKeys))
	for i, k := range searchTypeKeys {
		options[i] = l.GetText(k)
	}
	sv.typeSelect = widget.NewSelect(options, nil)
	sv.typeSelect.SetSelectedIndex(0)

	sv.status = widget.NewLabel("")
	sv.spinner = widget.NewProgressBarInfinite()
	sv.spinner.Hide()

	sv.list = widget.NewList(
		func() int { return len(sv.results) },
		sv.createResultItem,
		sv.updateResultItem,
	)
}

func (sv *SearchView) createResultItem() fyne.CanvasObject {
	icon := widget.NewLabel(IconMusic)
	title := widget.NewLabel("")
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Truncation = fyne.TextTruncateEllipsis
	subtitle := widget.NewLabel("")
	subtitle.Truncation = fyne.TextTruncateEllipsis

	details := widget.NewButton(sv.localization.GetText(KeyDetails), nil)
	downloadBtn := widget.NewButton(sv.localization.GetText(KeyDownload), nil)
	downloadBtn.Importance = widget.HighImportance

	return container.NewBorder(nil, nil, icon, container.NewHBox(details, downloadBtn),
		container.NewVBox(title, subtitle))
}

func (sv *SearchView) updateResultItem(id widget.ListItemID, obj fyne.CanvasObject) {
	if id >= len(sv.results) {
		return
	}
	result := sv.results[id]

	// Border children order: center, then left, then right
	row := obj.(*fyne.Container)
	texts := row.Objects[0].(*fyne.Container)
	icon := row.Objects[1].(*widget.Label)
	buttons := row.Objects[2].(*fyne.Container)

	icon.SetText(resultIcon(result.Type))
	texts.Objects[0].(*widget.Label).SetText(result.Title())
	texts.Objects[1].(*widget.Label).SetText(result.Subtitle())

	details := buttons.Objects[0].(*widget.Button)
	downloadBtn := buttons.Objects[1].(*widget.Button)
	if result.Release != nil {
		details.Show()
		details.OnTapped = func() { sv.showRelease(result) }
	} else {
		details.Hide()
	}
	downloadBtn.OnTapped = func() { sv.onDownload(result) }
}

// Submit runs the query in the entry. A running search is cancelled.
func (sv *SearchView) Submit() {
	query := strings.TrimSpace(sv.entry.Text)
	if query == "" {
		return
	}
	types := searchTypes(sv.typeSelect.SelectedIndex())

	sv.mu.Lock()
	if sv.cancel != nil {
		sv.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), SearchTimeout)
	sv.cancel = cancel
	sv.mu.Unlock()

	sv.status.SetText(sv.localization.GetText(KeySearching))
	sv.spinner.Show()

	go func() {
		defer cancel()
		results, err := sv.search.Search(ctx, query, types...)
		if errors.Is(err, context.Canceled) {
			return
		}
		fyne.Do(func() { sv.showResults(results, err) })
	}()
}

func (sv *SearchView) showResults(results []model.SearchResult, err error) {
	sv.spinner.Hide()
	if err != nil {
		log.WithFields(log.Fields{"module": "ui", "function": "showResults"}).Warnf("Search failed: %v", err)
		sv.status.SetText(fmt.Sprintf("%s: %v", sv.localization.GetText(KeySearchFailed), err))
		return
	}

	sv.results = results
	sv.list.UnselectAll()
	sv.list.ScrollToTop()
	sv.list.Refresh()
	if len(results) == 0 {
		sv.status.SetText(sv.localization.GetText(KeyNoResults))
	} else {
		sv.status.SetText(fmt.Sprintf("%d", len(results)))
	}
}

// onDownload queues a result. Releases go through the track selection first.
func (sv *SearchView) onDownload(result model.SearchResult) {
	if result.Release != nil {
		sv.showRelease(result)
		return
	}
	sv.add(result)
}

// showRelease loads the track list when needed and opens the selection dialog
func (sv *SearchView) showRelease(result model.SearchResult) {
	open := func(release *model.Release) {
		NewReleaseDialog(sv.window, sv.localization, release, func(selected *model.Release) {
			r := result
			r.Release = selected
			sv.add(r)
		}).Show()
	}

	if len(result.Release.Songs) > 0 {
		open(result.Release)
		return
	}

	sv.status.SetText(sv.localization.GetText(KeyLoadingDetails))
	sv.spinner.Show()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), DetailsTimeout)
		defer cancel()
		release, err := sv.search.ReleaseDetails(ctx, result.Release)
		fyne.Do(func() {
			sv.spinner.Hide()
			sv.status.SetText("")
			if err != nil {
				dialog.ShowError(err, sv.window)
				return
			}
			open(release)
		})
	}()
}

func (sv *SearchView) add(result model.SearchResult) {
	item, err := sv.downloads.Add(&result, sv.settings.GetFormat(), string(sv.settings.GetAudioQuality()))
	switch {
	case errors.Is(err, download.ErrDuplicate):
		sv.notify(sv.localization.GetText(KeyAlreadyInQueue))
	case err != nil:
		log.WithFields(log.Fields{"module": "ui", "function": "add"}).Errorf("Add failed: %v", err)
		dialog.ShowError(fmt.Errorf("%s: %w", sv.localization.GetText(KeyAddFailed), err), sv.window)
	default:
		sv.notify(sv.localization.Format(KeyTaskAdded, item.DisplayTitle()))
	}
}
