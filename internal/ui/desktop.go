package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/model"
)

// Keyboard shortcuts of the main window
var (
	ShortcutFocusSearch = &desktop.CustomShortcut{KeyName: fyne.KeyF, Modifier: fyne.KeyModifierShortcutDefault}
	ShortcutQuit        = &desktop.CustomShortcut{KeyName: fyne.KeyQ, Modifier: fyne.KeyModifierShortcutDefault}
	ShortcutNextTab     = &desktop.CustomShortcut{KeyName: fyne.KeyTab, Modifier: fyne.KeyModifierControl}
	ShortcutPrevTab     = &desktop.CustomShortcut{KeyName: fyne.KeyTab, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift}
)

// countActive returns how many items have not finished yet
func countActive(items []model.DownloadItem) int {
	active := 0
	for _, it := range items {
		if !it.Status.IsFinished() {
			active++
		}
	}
	return active
}

// setupCloseToTray hides the window on close when a system tray exists.
// Without a tray closing the window quits as usual.
func (ui *RootUI) setupCloseToTray() {
	if _, ok := ui.app.(desktop.App); !ok {
		return
	}
	ui.window.SetCloseIntercept(func() {
		ui.window.Hide()
		if !ui.trayHintShown {
			ui.trayHintShown = true
			ui.app.SendNotification(fyne.NewNotification(ui.localization.GetText(KeyAppTitle), ui.localization.GetText(KeyMinimizedToTray)))
		}
	})
}

// setupTray installs the system tray menu. Called again after a language change.
func (ui *RootUI) setupTray() {
	desk, ok := ui.app.(desktop.App)
	if !ok {
		return
	}
	l := ui.localization

	show := fyne.NewMenuItem(l.GetText(KeyShow), func() {
		ui.window.Show()
		ui.window.RequestFocus()
	})
	ui.trayStatus = fyne.NewMenuItem(l.Format(KeyTrayActive, ui.trayActive), nil)
	ui.trayStatus.Disabled = true
	quit := fyne.NewMenuItem(l.GetText(KeyQuit), ui.Quit)
	quit.IsQuit = true

	ui.trayMenu = fyne.NewMenu(l.GetText(KeyAppTitle), show, ui.trayStatus, fyne.NewMenuItemSeparator(), quit)
	desk.SetSystemTrayMenu(ui.trayMenu)
}

// updateTray shows the active download count in the tray menu
func (ui *RootUI) updateTray(active int) {
	if ui.trayStatus == nil || active == ui.trayActive {
		ui.trayActive = active
		return
	}
	ui.trayActive = active
	ui.trayStatus.Label = ui.localization.Format(KeyTrayActive, active)
	ui.trayMenu.Refresh()
}

// setupShortcuts registers the window keyboard shortcuts
func (ui *RootUI) setupShortcuts() {
	c := ui.window.Canvas()
	c.AddShortcut(ShortcutFocusSearch, func(fyne.Shortcut) { ui.focusSearch() })
	c.AddShortcut(ShortcutQuit, func(fyne.Shortcut) { ui.Quit() })
	c.AddShortcut(ShortcutNextTab, func(fyne.Shortcut) { ui.switchTab(1) })
	c.AddShortcut(ShortcutPrevTab, func(fyne.Shortcut) { ui.switchTab(-1) })
}

// focusSearch selects the search tab and focuses the query entry
func (ui *RootUI) focusSearch() {
	if ui.tabs == nil || ui.searchView == nil {
		return
	}
	ui.tabs.SelectIndex(0)
	ui.window.Canvas().Focus(ui.searchView.entry)
}

// switchTab moves the tab selection by delta, wrapping around
func (ui *RootUI) switchTab(delta int) {
	if ui.tabs == nil {
		return
	}
	n := len(ui.tabs.Items)
	ui.tabs.SelectIndex(((ui.tabs.SelectedIndex()+delta)%n + n) % n)
}

// Quit exits the application, asking first when downloads are running
func (ui *RootUI) Quit() {
	if ui.app == nil {
		return
	}
	active := countActive(ui.deps.Downloads.List())
	if active == 0 {
		ui.app.Quit()
		return
	}
	ui.window.Show()
	dialog.ShowConfirm(ui.localization.GetText(KeyQuit), ui.localization.GetText(KeyQuitConfirm), func(ok bool) {
		if !ok {
			return
		}
		log.WithFields(log.Fields{"module": "ui", "function": "Quit"}).Infof("Quitting with %d active downloads", active)
		ui.deps.Downloads.CancelAll()
		ui.app.Quit()
	}, ui.window)
}

func (ui *RootUI) onShowAbout() {
	l := ui.localization
	dialog.ShowInformation(l.GetText(KeyAbout), l.Format(KeyAboutText, l.GetText(KeyAppTitle), ui.deps.Version), ui.window)
}
