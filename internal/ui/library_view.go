package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/library"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/platform"
)

// libraryColumns is the table column order
var libraryColumns = []string{KeyColumnArtist, KeyColumnTitle, KeyColumnAlbum, KeyColumnLength}

// trackCell returns the text of one table cell
func trackCell(t library.Track, col int) string {
	switch col {
	case 0:
		return t.Artist
	case 1:
		if t.Title == "" {
			return strings.TrimSuffix(filepath.Base(t.Path), filepath.Ext(t.Path))
		}
		return t.Title
	case 2:
		return t.Album
	case 3:
		return model.FormatSeconds(int(t.Duration))
	}
	return ""
}

// LibraryView is the library tab listing the indexed music folder
type LibraryView struct {
	window       fyne.Window
	localization *Localization
	index        TrackIndex
	scanner      LibraryScanner
	settings     *config.Settings

	filterEntry *widget.Entry
	scanBtn     *widget.Button
	progress    *widget.ProgressBar
	status      *widget.Label
	table       *widget.Table

	tracks []library.Track
}

// NewLibraryView creates the library tab
func NewLibraryView(window fyne.Window, localization *Localization, index TrackIndex, scanner LibraryScanner, settings *config.Settings) *LibraryView {
	lv := &LibraryView{
		window:       window,
		localization: localization,
		index:        index,
		scanner:      scanner,
		settings:     settings,
	}
	lv.createUI()
	return lv
}

// Content returns the tab content
func (lv *LibraryView) Content() fyne.CanvasObject {
	openBtn := widget.NewButton(IconFolder, func() {
		if err := platform.OpenFolder(lv.settings.GetDownloadDirectory()); err != nil {
			dialog.ShowError(err, lv.window)
		}
	})
	top := container.NewVBox(
		container.NewBorder(nil, nil, nil, container.NewHBox(lv.scanBtn, openBtn), lv.filterEntry),
		container.NewBorder(nil, nil, nil, lv.status, lv.progress),
	)
	return container.NewBorder(top, nil, nil, nil, lv.table)
}

func (lv *LibraryView) createUI() {
	l := lv.localization

	lv.filterEntry = widget.NewEntry()
	lv.filterEntry.SetPlaceHolder(l.GetText(KeyFilter))
	lv.filterEntry.OnChanged = func(string) { lv.Reload() }

	lv.scanBtn = widget.NewButton(l.GetText(KeyScan), lv.Scan)
	lv.progress = widget.NewProgressBar()
	lv.progress.Hide()
	lv.status = widget.NewLabel("")

	lv.table = widget.NewTableWithHeaders(
		func() (int, int) { return len(lv.tracks), len(libraryColumns) },
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			if id.Row >= len(lv.tracks) {
				return
			}
			obj.(*widget.Label).SetText(trackCell(lv.tracks[id.Row], id.Col))
		},
	)
	lv.table.ShowHeaderColumn = false
	lv.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	lv.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(libraryColumns) {
			obj.(*widget.Label).SetText(l.GetText(libraryColumns[id.Col]))
		}
	}
	for i := range libraryColumns {
		lv.table.SetColumnWidth(i, LibraryColumnWidth)
	}
	lv.table.OnSelected = func(id widget.TableCellID) {
		if id.Row < 0 || id.Row >= len(lv.tracks) {
			return
		}
		if err := platform.OpenFileInManager(lv.tracks[id.Row].Path); err != nil {
			dialog.ShowError(err, lv.window)
		}
		lv.table.UnselectAll()
	}
}

// Reload queries the index with the current filter
func (lv *LibraryView) Reload() {
	if lv.index == nil {
		return
	}
	filter := strings.TrimSpace(lv.filterEntry.Text)
	go func() {
		tracks, err := lv.index.Tracks(context.Background(), filter)
		fyne.Do(func() {
			if err != nil {
				log.WithFields(log.Fields{"module": "ui", "function": "Reload"}).Warnf("Library query failed: %v", err)
				lv.status.SetText(lv.localization.GetText(KeyError))
				return
			}
			lv.tracks = tracks
			lv.table.Refresh()
			lv.status.SetText(lv.localization.Format(KeyScanDone, len(tracks)))
		})
	}()
}

// Scan indexes the download directory and reloads the table
func (lv *LibraryView) Scan() {
	if lv.scanner == nil {
		return
	}
	root := lv.settings.GetDownloadDirectory()
	lv.scanBtn.Disable()
	lv.progress.SetValue(0)
	lv.progress.Show()

	go func() {
		n, err := lv.scanner.Scan(context.Background(), root, func(scanned, total int) {
			fyne.Do(func() {
				if total > 0 {
					lv.progress.SetValue(float64(scanned) / float64(total))
				}
				lv.status.SetText(lv.localization.Format(KeyScanning, scanned, total))
			})
		})
		fyne.Do(func() {
			lv.scanBtn.Enable()
			lv.progress.Hide()
			if err != nil {
				dialog.ShowError(fmt.Errorf("%s: %w", root, err), lv.window)
				return
			}
			log.WithFields(log.Fields{"module": "ui", "function": "Scan"}).Infof("Indexed %d files under %s", n, root)
			lv.Reload()
		})
	}()
}
