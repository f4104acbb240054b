package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mp3me/internal/model"
)

// ReleaseDialog lets the user pick which tracks of a release to download.
// It works on a copy so the search result keeps its original selection.
type ReleaseDialog struct {
	window       fyne.Window
	localization *Localization
	release      *model.Release
	onConfirm    func(*model.Release)

	list       *widget.List
	countLabel *widget.Label
	dialog     *dialog.ConfirmDialog
}

// NewReleaseDialog builds the dialog. Every track starts selected.
func NewReleaseDialog(window fyne.Window, localization *Localization, release *model.Release, onConfirm func(*model.Release)) *ReleaseDialog {
	rd := &ReleaseDialog{
		window:       window,
		localization: localization,
		release:      cloneRelease(release),
		onConfirm:    onConfirm,
	}
	rd.release.SelectAll(true)
	rd.createUI()
	return rd
}

// Show displays the dialog
func (rd *ReleaseDialog) Show() {
	rd.dialog.Show()
}

// Release returns the working copy with the current selection
func (rd *ReleaseDialog) Release() *model.Release {
	return rd.release
}

// SelectAll selects or clears every track
func (rd *ReleaseDialog) SelectAll(selected bool) {
	rd.release.SelectAll(selected)
	rd.list.Refresh()
	rd.updateCount()
}

// Toggle flips the selection of track i
func (rd *ReleaseDialog) Toggle(i int) {
	if i < 0 || i >= len(rd.release.Songs) {
		return
	}
	rd.release.Songs[i].Selected = !rd.release.Songs[i].Selected
	rd.list.RefreshItem(i)
	rd.updateCount()
}

// SelectedCount returns the number of checked tracks
func (rd *ReleaseDialog) SelectedCount() int {
	n := 0
	for _, s := range rd.release.Songs {
		if s.Selected {
			n++
		}
	}
	return n
}

func (rd *ReleaseDialog) createUI() {
	rd.list = widget.NewList(
		func() int { return len(rd.release.Songs) },
		func() fyne.CanvasObject {
			check := widget.NewCheck("", nil)
			duration := widget.NewLabel("")
			duration.Alignment = fyne.TextAlignTrailing
			return container.NewBorder(nil, nil, nil, duration, check)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(rd.release.Songs) {
				return
			}
			song := rd.release.Songs[id]
			row := obj.(*fyne.Container)
			check := row.Objects[0].(*widget.Check)
			duration := row.Objects[1].(*widget.Label)

			check.OnChanged = nil
			check.SetText(trackLabel(id, song))
			check.SetChecked(song.Selected)
			check.OnChanged = func(v bool) {
				song.Selected = v
				rd.updateCount()
			}
			duration.SetText(song.Duration)
		},
	)

	rd.countLabel = widget.NewLabel("")
	selectAll := widget.NewButton(rd.localization.GetText(KeySelectAll), func() { rd.SelectAll(true) })
	selectNone := widget.NewButton(rd.localization.GetText(KeySelectNone), func() { rd.SelectAll(false) })

	header := widget.NewLabelWithStyle(releaseHeading(rd.release), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	header.Truncation = fyne.TextTruncateEllipsis
	top := container.NewVBox(header, container.NewBorder(nil, nil, nil, container.NewHBox(selectAll, selectNone), rd.countLabel))
	content := container.NewBorder(top, nil, nil, nil, rd.list)

	rd.dialog = dialog.NewCustomConfirm(
		rd.release.Title,
		rd.localization.GetText(KeyDownload),
		rd.localization.GetText(KeyCancel),
		content,
		func(confirmed bool) {
			if confirmed && rd.onConfirm != nil && rd.SelectedCount() > 0 {
				rd.onConfirm(rd.release)
			}
		},
		rd.window,
	)
	rd.dialog.Resize(fyne.NewSize(ReleaseDialogWidth, ReleaseDialogHeight))
	rd.updateCount()
}

func (rd *ReleaseDialog) updateCount() {
	rd.countLabel.SetText(rd.localization.Format(KeyTracksSelected, rd.SelectedCount(), len(rd.release.Songs)))
}

func trackLabel(i int, song *model.Song) string {
	n := song.TrackNumber
	if n == 0 {
		n = i + 1
	}
	return fmt.Sprintf("%d. %s", n, song.Title)
}

func releaseHeading(r *model.Release) string {
	s := r.Artist
	if r.Year != "" {
		s += MiddleDotSeparator + r.Year
	}
	if r.ReleaseType != "" {
		s += MiddleDotSeparator + r.ReleaseType
	}
	return s
}

func cloneRelease(r *model.Release) *model.Release {
	c := *r
	c.Songs = make([]*model.Song, len(r.Songs))
	for i, s := range r.Songs {
		song := *s
		c.Songs[i] = &song
	}
	return &c
}
