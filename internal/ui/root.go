package ui

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/artwork"
	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/download"
	"github.com/ytget/mp3me/internal/library"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/platform"
)

// Searcher finds music and loads the track lists of releases
type Searcher interface {
	Search(ctx context.Context, query string, types ...model.ContentType) ([]model.SearchResult, error)
	ReleaseDetails(ctx context.Context, release *model.Release) (*model.Release, error)
	SetLimit(n int)
}

// TrackIndex lists indexed library tracks
type TrackIndex interface {
	Tracks(ctx context.Context, filter string) ([]library.Track, error)
}

// LibraryScanner indexes a music folder
type LibraryScanner interface {
	Scan(ctx context.Context, root string, onProgress library.ScanProgress) (int, error)
}

// Deps are the services the window talks to
type Deps struct {
	Settings  *config.Settings
	Search    Searcher
	Downloads download.Downloader
	Library   TrackIndex
	Scanner   LibraryScanner
	Artwork   *artwork.Service // optional
	LogFile   string
	Version   string
}

// StatusFilter enumerates visible subsets of the download queue
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterActive
	FilterWaiting
	FilterCompleted
	FilterFailed
)

// statusFilters is the tab order
var statusFilters = []StatusFilter{FilterAll, FilterActive, FilterWaiting, FilterCompleted, FilterFailed}

// Key returns the localization key of the filter tab
func (sf StatusFilter) Key() string {
	switch sf {
	case FilterActive:
		return KeyFilterActive
	case FilterWaiting:
		return KeyFilterWaiting
	case FilterCompleted:
		return KeyFilterCompleted
	case FilterFailed:
		return KeyFilterFailed
	default:
		return KeyFilterAll
	}
}

// Matches reports whether an item with status s is shown under the filter.
// Cancelled items count as failed.
func (sf StatusFilter) Matches(s model.DownloadStatus) bool {
	switch sf {
	case FilterActive:
		return s.IsActive()
	case FilterWaiting:
		return s.IsWaiting()
	case FilterCompleted:
		return s == model.StatusCompleted
	case FilterFailed:
		return s == model.StatusFailed || s == model.StatusCancelled
	default:
		return true
	}
}

// filterItems keeps the items matching sf, newest first
func filterItems(items []model.DownloadItem, sf StatusFilter) []model.DownloadItem {
	out := make([]model.DownloadItem, 0, len(items))
	for _, it := range items {
		if sf.Matches(it.Status) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// finishedTransition reports whether an update moved an item into
// Completed or Failed. Cancellation is user initiated and not announced.
func finishedTransition(prev, next model.DownloadStatus) bool {
	if prev == next || prev.IsFinished() {
		return false
	}
	return next == model.StatusCompleted || next == model.StatusFailed
}

// RootUI represents the main window
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	deps         Deps
	localization *Localization

	tabs        *container.AppTabs
	searchView  *SearchView
	libraryView *LibraryView

	taskList      *widget.List
	filterTabs    *container.AppTabs
	currentFilter StatusFilter
	visible       []model.DownloadItem
	countLabel    *widget.Label

	noticeLabel *widget.Label
	onlineLabel *widget.Label
	online      bool

	trayMenu      *fyne.Menu
	trayStatus    *fyne.MenuItem
	trayActive    int
	trayHintShown bool

	mu           sync.Mutex
	lastStatus   map[string]model.DownloadStatus
	refreshTimer *time.Timer
}

// NewRootUI builds the window content and subscribes to queue updates
func NewRootUI(window fyne.Window, app fyne.App, deps Deps) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(deps.Settings.GetLanguage())

	if _, err := deps.Settings.EnsureDownloadDir(); err != nil {
		log.WithFields(log.Fields{"module": "ui", "function": "NewRootUI"}).Warnf("Download directory unavailable: %v", err)
	}

	ui := &RootUI{
		window:       window,
		app:          app,
		deps:         deps,
		localization: localization,
		online:       true,
		lastStatus:   make(map[string]model.DownloadStatus),
	}

	deps.Downloads.SetUpdateCallback(ui.onItemUpdate)
	ui.setupUI()
	ui.setupCloseToTray()
	return ui
}

// setupUI creates and arranges all components. It is called again after
// a language change.
func (ui *RootUI) setupUI() {
	l := ui.localization
	ui.window.SetTitle(l.GetText(KeyAppTitle))
	ui.createMenu()

	ui.searchView = NewSearchView(ui.window, l, ui.deps.Search, ui.deps.Downloads, ui.deps.Settings, ui.showNotice)
	ui.libraryView = NewLibraryView(ui.window, l, ui.deps.Library, ui.deps.Scanner, ui.deps.Settings)

	ui.tabs = container.NewAppTabs(
		container.NewTabItem(l.GetText(KeySearch), ui.searchView.Content()),
		container.NewTabItem(l.GetText(KeyDownloads), ui.createDownloadsTab()),
		container.NewTabItem(l.GetText(KeyLibrary), ui.libraryView.Content()),
	)
	ui.tabs.OnSelected = func(tab *container.TabItem) {
		if tab.Text == l.GetText(KeyLibrary) {
			ui.libraryView.Reload()
		}
	}

	ui.noticeLabel = widget.NewLabel("")
	ui.noticeLabel.Truncation = fyne.TextTruncateEllipsis
	ui.onlineLabel = widget.NewLabel("")
	ui.SetOnline(ui.online)
	version := widget.NewLabel(ui.deps.Version)
	status := container.NewBorder(nil, nil, ui.onlineLabel, version, ui.noticeLabel)

	ui.window.SetContent(container.NewBorder(nil, status, nil, nil, ui.tabs))
	ui.setupTray()
	ui.setupShortcuts()
	ui.refreshTasks()
}

func (ui *RootUI) createDownloadsTab() fyne.CanvasObject {
	l := ui.localization
	ui.currentFilter = FilterAll

	ui.taskList = widget.NewList(
		func() int { return len(ui.visible) },
		func() fyne.CanvasObject {
			row := NewTaskRow(l)
			row.SetCallbacks(ui.onCancel, ui.onRetry, ui.onRemove, ui.onOpenFolder, ui.onOpenFile)
			return row
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(ui.visible) {
				return
			}
			if row, ok := obj.(*TaskRow); ok {
				row.Update(ui.visible[id])
			}
		},
	)

	items := make([]*container.TabItem, 0, len(statusFilters))
	for _, sf := range statusFilters {
		items = append(items, container.NewTabItem(l.GetText(sf.Key()), widget.NewLabel("")))
	}
	ui.filterTabs = container.NewAppTabs(items...)
	ui.filterTabs.SetTabLocation(container.TabLocationTop)
	ui.filterTabs.OnSelected = func(*container.TabItem) {
		ui.currentFilter = statusFilters[ui.filterTabs.SelectedIndex()]
		ui.refreshTasks()
	}

	clearBtn := widget.NewButton(l.GetText(KeyClearFinished), func() {
		n := ui.deps.Downloads.ClearFinished()
		log.WithFields(log.Fields{"module": "ui", "function": "clearFinished"}).Debugf("Removed %d finished items", n)
		ui.refreshTasks()
	})
	cancelAllBtn := widget.NewButton(l.GetText(KeyCancelAll), func() {
		ui.deps.Downloads.CancelAll()
	})
	cancelAllBtn.Importance = widget.DangerImportance
	ui.countLabel = widget.NewLabel("")

	// The filter tabs only carry labels; the list below is shared.
	header := container.NewVBox(
		container.NewBorder(nil, nil, nil, container.NewHBox(clearBtn, cancelAllBtn), ui.countLabel),
		ui.filterTabs,
	)
	return container.NewBorder(header, nil, nil, nil, ui.taskList)
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	l := ui.localization

	fileMenu := fyne.NewMenu(l.GetText(KeyFile),
		fyne.NewMenuItem(l.GetText(KeySettings), ui.onShowSettings),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(l.GetText(KeyOpenDownloads), func() {
			ui.openFolder(ui.deps.Settings.GetDownloadDirectory())
		}),
		fyne.NewMenuItem(l.GetText(KeyOpenLogFile), func() {
			if ui.deps.LogFile == "" {
				return
			}
			if err := platform.OpenFileInManager(ui.deps.LogFile); err != nil {
				ui.showError(err)
			}
		}),
		fyne.NewMenuItem(l.GetText(KeyClearCache), ui.onClearCache),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(l.GetText(KeyAbout), ui.onShowAbout),
	)

	languageMenu := fyne.NewMenu(l.GetText(KeyLanguage))
	languages := l.GetAvailableLanguages()
	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		langCode := code
		item := fyne.NewMenuItem(languages[code], func() { ui.onLanguageChange(langCode) })
		item.Checked = code == l.GetCurrentLanguage()
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(fileMenu, languageMenu))
}

func (ui *RootUI) onLanguageChange(langCode string) {
	if langCode == ui.localization.GetCurrentLanguage() {
		return
	}
	ui.localization.SetLanguage(langCode)
	ui.deps.Settings.SetLanguage(langCode)
	ui.setupUI()
}

func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.deps.Settings, ui.window, ui.localization, ui.applySettings).Show()
}

// applySettings pushes saved settings into the running services
func (ui *RootUI) applySettings(v config.Values) {
	ui.deps.Downloads.SetMaxParallel(v.Threads)
	ui.deps.Search.SetLimit(v.SearchLimit)
	if ui.deps.Artwork != nil {
		ui.deps.Artwork.SetMaxCacheMB(v.MaxCacheSizeMB)
	}
	if ui.app != nil {
		ui.app.Settings().SetTheme(NewCompactTheme(v.AccentColor))
	}

	if v.Language != ui.localization.GetCurrentLanguage() {
		ui.localization.SetLanguage(v.Language)
		ui.setupUI()
	}
	ui.showNotice(ui.localization.GetText(KeySettingsSaved))
}

func (ui *RootUI) onClearCache() {
	if ui.deps.Artwork == nil || ui.deps.Artwork.Cache() == nil {
		return
	}
	if err := ui.deps.Artwork.Cache().Clear(); err != nil {
		ui.showError(err)
		return
	}
	ui.showNotice(ui.localization.GetText(KeyCacheCleared))
}

// SetOnline updates the connectivity indicator. Call it on the UI thread.
func (ui *RootUI) SetOnline(online bool) {
	ui.online = online
	if ui.onlineLabel == nil {
		return
	}
	if online {
		ui.onlineLabel.SetText(IconOnline + " " + ui.localization.GetText(KeyOnline))
	} else {
		ui.onlineLabel.SetText(IconOffline + " " + ui.localization.GetText(KeyOffline))
	}
}

// onItemUpdate runs on download goroutines
func (ui *RootUI) onItemUpdate(item model.DownloadItem) {
	ui.mu.Lock()
	prev, seen := ui.lastStatus[item.ID]
	ui.lastStatus[item.ID] = item.Status
	announce := seen && finishedTransition(prev, item.Status)
	ui.mu.Unlock()

	if announce && ui.deps.Settings.GetNotifyOnComplete() {
		fyne.Do(func() { ui.notifyFinished(item) })
	}
	ui.scheduleRefresh()
}

// scheduleRefresh coalesces bursts of progress updates into one redraw
func (ui *RootUI) scheduleRefresh() {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if ui.refreshTimer != nil {
		return
	}
	ui.refreshTimer = time.AfterFunc(UIUpdateDebounce, func() {
		ui.mu.Lock()
		ui.refreshTimer = nil
		ui.mu.Unlock()
		fyne.Do(ui.refreshTasks)
	})
}

// refreshTasks reloads the queue into the list. UI thread only.
func (ui *RootUI) refreshTasks() {
	if ui.taskList == nil {
		return
	}
	all := ui.deps.Downloads.List()
	ui.visible = filterItems(all, ui.currentFilter)
	ui.taskList.Refresh()

	active := countActive(all)
	ui.countLabel.SetText(fmt.Sprintf("%d / %d", active, len(all)))
	ui.updateTray(active)
}

func (ui *RootUI) notifyFinished(item model.DownloadItem) {
	title := ui.localization.GetText(KeyDownloadCompleted)
	content := item.DisplayTitle()
	if item.Status == model.StatusFailed {
		title = ui.localization.GetText(KeyDownloadFailed)
		if item.Error != "" {
			content += MiddleDotSeparator + item.Error
		}
	}

	if ui.app != nil {
		ui.app.SendNotification(fyne.NewNotification(title, content))
	}
	ui.showToast(title, content, item)
}

// showToast shows an in-app notification in the top-right corner
func (ui *RootUI) showToast(title, message string, item model.DownloadItem) {
	titleLabel := widget.NewLabel(title)
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	messageLabel := widget.NewLabel(message)
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	var popup *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() { popup.Hide() })
	closeBtn.Importance = widget.LowImportance

	actions := container.NewHBox()
	if item.Status == model.StatusCompleted && item.OutputPath != "" {
		openBtn := widget.NewButton(withIcon(IconFolder, ui.localization.GetText(KeyOpenFolder)), func() {
			popup.Hide()
			ui.onOpenFolder(item.OutputPath)
		})
		openBtn.Importance = widget.HighImportance
		actions.Add(openBtn)
	}

	content := container.NewVBox(
		container.NewBorder(nil, nil, titleLabel, closeBtn),
		messageLabel,
		actions,
	)
	popup = widget.NewPopUp(content, ui.window.Canvas())

	canvasSize := ui.window.Canvas().Size()
	popup.Resize(fyne.NewSize(ToastWidth, ToastHeight))
	popup.Move(fyne.NewPos(canvasSize.Width-ToastWidth-ToastMargin, ToastMargin))
	popup.Show()

	time.AfterFunc(ToastAutoHide, func() {
		fyne.Do(popup.Hide)
	})
}

// showNotice shows a short message in the status bar. Safe from any goroutine.
func (ui *RootUI) showNotice(message string) {
	fyne.Do(func() {
		if ui.noticeLabel != nil {
			ui.noticeLabel.SetText(message)
		}
	})
}

func (ui *RootUI) showError(err error) {
	log.WithFields(log.Fields{"module": "ui", "function": "showError"}).Error(err)
	dialog.ShowError(err, ui.window)
}

func (ui *RootUI) onCancel(id string) {
	if err := ui.deps.Downloads.Cancel(id); err != nil {
		log.WithFields(log.Fields{"module": "ui", "function": "onCancel"}).Warnf("Cancel %s: %v", id, err)
	}
}

func (ui *RootUI) onRetry(id string) {
	if err := ui.deps.Downloads.Retry(id); err != nil {
		ui.showError(err)
	}
}

func (ui *RootUI) onRemove(id string) {
	if err := ui.deps.Downloads.Remove(id); err != nil {
		ui.showError(err)
		return
	}
	ui.mu.Lock()
	delete(ui.lastStatus, id)
	ui.mu.Unlock()
	ui.refreshTasks()
}

// onOpenFolder reveals a file, or opens a folder, in the file manager
func (ui *RootUI) onOpenFolder(path string) {
	if path == "" {
		return
	}
	if err := platform.OpenFileInManager(path); err != nil {
		ui.showError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err))
	}
}

func (ui *RootUI) openFolder(dir string) {
	if err := platform.OpenFolder(dir); err != nil {
		ui.showError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err))
	}
}

func (ui *RootUI) onOpenFile(path string) {
	if path == "" {
		return
	}
	if err := platform.OpenFileWithDefaultApp(path); err != nil {
		ui.showError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err))
	}
}

func withIcon(icon, text string) string {
	return icon + " " + text
}
