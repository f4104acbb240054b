package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mp3me/internal/config"
)

// SettingsDialog edits every user setting. Changes are applied atomically on
// save; invalid input keeps the dialog values and shows the error.
type SettingsDialog struct {
	settings     *config.Settings
	window       fyne.Window
	localization *Localization
	dialog       *dialog.ConfirmDialog
	onSaved      func(config.Values)

	downloadDirEntry *widget.Entry
	threadsEntry     *widget.Entry
	formatSelect     *widget.Select
	qualitySelect    *widget.Select
	autoRenameCheck  *widget.Check
	albumFolderCheck *widget.Check
	normalizeCheck   *widget.Check
	lyricsCheck      *widget.Check
	notifyCheck      *widget.Check
	duplicatesCheck  *widget.Check
	cacheSizeEntry   *widget.Entry
	accentEntry      *widget.Entry
	languageSelect   *widget.Select
	searchLimitEntry *widget.Entry

	languageCodes map[string]string // display name -> code
}

// NewSettingsDialog creates a settings dialog. onSaved runs after the values
// were stored.
func NewSettingsDialog(settings *config.Settings, window fyne.Window, localization *Localization, onSaved func(config.Values)) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		window:       window,
		localization: localization,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	sd.threadsEntry = widget.NewEntry()
	sd.threadsEntry.SetPlaceHolder("1-10")
	sd.threadsEntry.Validator = intValidator(1, 10)

	sd.formatSelect = widget.NewSelect(sd.settings.GetFormatOptions(), nil)

	qualities := []string{}
	for _, q := range sd.settings.GetQualityOptions() {
		qualities = append(qualities, string(q))
	}
	sd.qualitySelect = widget.NewSelect(qualities, nil)

	sd.autoRenameCheck = widget.NewCheck(l.GetText(KeyAutoRename), nil)
	sd.albumFolderCheck = widget.NewCheck(l.GetText(KeyUseAlbumFolders), nil)
	sd.normalizeCheck = widget.NewCheck(l.GetText(KeyNormalizeAudio), nil)
	sd.lyricsCheck = widget.NewCheck(l.GetText(KeyEmbedLyrics), nil)
	sd.notifyCheck = widget.NewCheck(l.GetText(KeyNotifyOnComplete), nil)
	sd.duplicatesCheck = widget.NewCheck(l.GetText(KeyCheckDuplicates), nil)

	sd.cacheSizeEntry = widget.NewEntry()
	sd.cacheSizeEntry.SetPlaceHolder("50-5000")
	sd.cacheSizeEntry.Validator = intValidator(50, 5000)

	sd.accentEntry = widget.NewEntry()
	sd.accentEntry.SetPlaceHolder(config.DefaultAccentColor)
	sd.accentEntry.Validator = func(s string) error {
		_, err := ParseHexColor(strings.TrimSpace(s))
		return err
	}

	sd.languageCodes = map[string]string{}
	names := []string{}
	for code, name := range sd.settings.GetLanguageOptions() {
		sd.languageCodes[name] = code
		names = append(names, name)
	}
	sort.Strings(names)
	sd.languageSelect = widget.NewSelect(names, nil)

	sd.searchLimitEntry = widget.NewEntry()
	sd.searchLimitEntry.SetPlaceHolder("1-50")
	sd.searchLimitEntry.Validator = intValidator(1, 50)

	form := widget.NewForm(
		widget.NewFormItem(l.GetText(KeyDownloadDirectory), downloadDirRow),
		widget.NewFormItem(l.GetText(KeyThreads), sd.threadsEntry),
		widget.NewFormItem(l.GetText(KeyFormat), sd.formatSelect),
		widget.NewFormItem(l.GetText(KeyAudioQuality), sd.qualitySelect),
		widget.NewFormItem("", container.NewVBox(
			sd.autoRenameCheck,
			sd.albumFolderCheck,
			sd.normalizeCheck,
			sd.lyricsCheck,
			sd.duplicatesCheck,
			sd.notifyCheck,
		)),
		widget.NewFormItem(l.GetText(KeyMaxCacheSize), sd.cacheSizeEntry),
		widget.NewFormItem(l.GetText(KeySearchLimit), sd.searchLimitEntry),
		widget.NewFormItem(l.GetText(KeyAccentColor), sd.accentEntry),
		widget.NewFormItem(l.GetText(KeyLanguage), sd.languageSelect),
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		container.NewVScroll(form),
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	v := sd.settings.Snapshot()
	sd.downloadDirEntry.SetText(v.DownloadDir)
	sd.threadsEntry.SetText(strconv.Itoa(v.Threads))
	sd.formatSelect.SetSelected(v.Format)
	sd.qualitySelect.SetSelected(v.AudioQuality)
	sd.autoRenameCheck.SetChecked(v.AutoRename)
	sd.albumFolderCheck.SetChecked(v.UseAlbumFolders)
	sd.normalizeCheck.SetChecked(v.NormalizeAudio)
	sd.lyricsCheck.SetChecked(v.EmbedLyrics)
	sd.notifyCheck.SetChecked(v.NotifyOnComplete)
	sd.duplicatesCheck.SetChecked(v.CheckDuplicates)
	sd.cacheSizeEntry.SetText(strconv.Itoa(v.MaxCacheSizeMB))
	sd.accentEntry.SetText(v.AccentColor)
	sd.languageSelect.SetSelected(sd.settings.GetLanguageOptions()[v.Language])
	sd.searchLimitEntry.SetText(strconv.Itoa(v.SearchLimit))
}

// values reads the form. Numbers are validated here, everything else by
// Settings.Apply.
func (sd *SettingsDialog) values() (config.Values, error) {
	v := sd.settings.Snapshot()

	v.DownloadDir = strings.TrimSpace(sd.downloadDirEntry.Text)
	v.Format = sd.formatSelect.Selected
	v.AudioQuality = sd.qualitySelect.Selected
	v.AutoRename = sd.autoRenameCheck.Checked
	v.UseAlbumFolders = sd.albumFolderCheck.Checked
	v.NormalizeAudio = sd.normalizeCheck.Checked
	v.EmbedLyrics = sd.lyricsCheck.Checked
	v.NotifyOnComplete = sd.notifyCheck.Checked
	v.CheckDuplicates = sd.duplicatesCheck.Checked
	v.AccentColor = strings.ToLower(strings.TrimSpace(sd.accentEntry.Text))
	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		v.Language = code
	}

	ints := []struct {
		entry *widget.Entry
		dst   *int
		name  string
	}{
		{sd.threadsEntry, &v.Threads, sd.localization.GetText(KeyThreads)},
		{sd.cacheSizeEntry, &v.MaxCacheSizeMB, sd.localization.GetText(KeyMaxCacheSize)},
		{sd.searchLimitEntry, &v.SearchLimit, sd.localization.GetText(KeySearchLimit)},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(f.entry.Text))
		if err != nil {
			return v, fmt.Errorf("%s: %q is not a number", f.name, f.entry.Text)
		}
		*f.dst = n
	}
	return v, nil
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	if err := sd.save(); err != nil {
		dialog.ShowError(err, sd.window)
	}
}

func (sd *SettingsDialog) save() error {
	v, err := sd.values()
	if err != nil {
		return err
	}
	if err := sd.settings.Apply(v); err != nil {
		return err
	}
	if sd.onSaved != nil {
		sd.onSaved(sd.settings.Snapshot())
	}
	return nil
}

func intValidator(lo, hi int) fyne.StringValidator {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("expected a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("expected %d-%d", lo, hi)
		}
		return nil
	}
}
