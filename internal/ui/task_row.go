package ui

import (
	"fmt"
	"image/color"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/mp3me/internal/model"
)

// TaskRow renders one download queue item
type TaskRow struct {
	widget.BaseWidget

	item         model.DownloadItem
	localization *Localization

	titleLabel    *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	messageLabel  *widget.Label
	progressBar   *widget.ProgressBar

	actionBtn *widget.Button // cancel or retry depending on status
	folderBtn *widget.Button
	playBtn   *widget.Button
	removeBtn *widget.Button

	onCancel     func(id string)
	onRetry      func(id string)
	onRemove     func(id string)
	onOpenFolder func(path string)
	onOpenFile   func(path string)
}

// NewTaskRow creates a row. Call Update to bind it to an item.
func NewTaskRow(localization *Localization) *TaskRow {
	tr := &TaskRow{localization: localization}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	return tr
}

// SetCallbacks sets the action callbacks
func (tr *TaskRow) SetCallbacks(
	onCancel func(id string),
	onRetry func(id string),
	onRemove func(id string),
	onOpenFolder func(path string),
	onOpenFile func(path string),
) {
	tr.onCancel = onCancel
	tr.onRetry = onRetry
	tr.onRemove = onRemove
	tr.onOpenFolder = onOpenFolder
	tr.onOpenFile = onOpenFile
}

// Update binds the row to item and refreshes every label and button
func (tr *TaskRow) Update(item model.DownloadItem) {
	tr.item = item
	tr.updateFromItem()
	tr.Refresh()
}

func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Alignment = fyne.TextAlignTrailing
	tr.progressLabel = widget.NewLabel("")
	tr.progressLabel.Alignment = fyne.TextAlignTrailing
	tr.messageLabel = widget.NewLabel("")
	tr.messageLabel.Truncation = fyne.TextTruncateEllipsis
	tr.messageLabel.Importance = widget.LowImportance

	tr.progressBar = widget.NewProgressBar()
	tr.progressBar.Max = 100
	tr.progressBar.TextFormatter = func() string { return "" }

	tr.actionBtn = widget.NewButton(tr.localization.GetText(KeyCancel), func() {
		switch {
		case tr.item.Status.IsFinished() && tr.item.Status != model.StatusCompleted:
			if tr.onRetry != nil {
				tr.onRetry(tr.item.ID)
			}
		case !tr.item.Status.IsFinished():
			if tr.onCancel != nil {
				tr.onCancel(tr.item.ID)
			}
		}
	})

	tr.folderBtn = widget.NewButton(IconFolder, func() {
		if tr.onOpenFolder != nil && tr.item.OutputPath != "" {
			tr.onOpenFolder(tr.item.OutputPath)
		}
	})
	tr.playBtn = widget.NewButton(IconPlay, func() {
		if tr.onOpenFile != nil && tr.item.OutputPath != "" {
			tr.onOpenFile(tr.item.OutputPath)
		}
	})
	tr.removeBtn = widget.NewButton(IconClose, func() {
		if tr.onRemove != nil {
			tr.onRemove(tr.item.ID)
		}
	})
	tr.removeBtn.Importance = widget.LowImportance
}

func (tr *TaskRow) updateFromItem() {
	item := &tr.item

	tr.titleLabel.SetText(item.DisplayTitle())

	tr.statusLabel.Importance = statusImportance(item.Status)
	tr.statusLabel.SetText(statusText(item.Status))

	tr.progressBar.SetValue(item.Progress)
	if item.Status == model.StatusCompleted {
		tr.progressLabel.SetText("")
	} else {
		tr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, int(item.Progress)))
	}

	tr.messageLabel.SetText(itemMessage(item))
	tr.updateButtons()
}

func (tr *TaskRow) updateButtons() {
	item := &tr.item

	switch {
	case item.Status == model.StatusCompleted:
		tr.actionBtn.Hide()
	case item.Status.IsFinished():
		tr.actionBtn.SetText(tr.localization.GetText(KeyRetry))
		tr.actionBtn.Importance = widget.HighImportance
		tr.actionBtn.Show()
	default:
		tr.actionBtn.SetText(tr.localization.GetText(KeyCancel))
		tr.actionBtn.Importance = widget.MediumImportance
		tr.actionBtn.Show()
	}

	if item.OutputPath != "" {
		tr.folderBtn.Enable()
	} else {
		tr.folderBtn.Disable()
	}

	// Collections produce a folder, only single songs can be played directly
	if item.Status == model.StatusCompleted && !item.IsCollection() && filepath.Ext(item.OutputPath) != "" {
		tr.playBtn.Enable()
	} else {
		tr.playBtn.Disable()
	}

	if item.Status.IsFinished() {
		tr.removeBtn.Enable()
	} else {
		tr.removeBtn.Disable()
	}
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.Transparent)
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	actions := container.NewHBox(tr.actionBtn, tr.folderBtn, tr.playBtn, tr.removeBtn)
	info := container.NewHBox(fixedWidth(StatusLabelWidth, tr.statusLabel), fixedWidth(PercentLabelWidth, tr.progressLabel))
	header := container.NewBorder(nil, nil, nil, container.NewHBox(info, actions), tr.titleLabel)

	content := container.NewVBox(
		header,
		tr.progressBar,
		tr.messageLabel,
		widget.NewSeparator(),
	)
	return widget.NewSimpleRenderer(content)
}

// MinSize keeps rows wide enough for the action buttons
func (tr *TaskRow) MinSize() fyne.Size {
	size := tr.BaseWidget.MinSize()
	if size.Width < RowMinWidth {
		size.Width = RowMinWidth
	}
	return size
}

func statusImportance(s model.DownloadStatus) widget.Importance {
	switch s {
	case model.StatusCompleted:
		return widget.SuccessImportance
	case model.StatusFailed:
		return widget.DangerImportance
	case model.StatusDownloading, model.StatusProcessing:
		return widget.HighImportance
	case model.StatusCancelled:
		return widget.LowImportance
	default:
		return widget.MediumImportance
	}
}

func statusText(s model.DownloadStatus) string {
	switch s {
	case model.StatusCompleted:
		return IconDone + " " + s.String()
	case model.StatusFailed:
		return IconError + " " + s.String()
	case model.StatusDownloading, model.StatusProcessing:
		return IconPlay + " " + s.String()
	case model.StatusCancelled:
		return IconCancel + " " + s.String()
	default:
		return IconWait + " " + s.String()
	}
}

// itemMessage is the second line of a row: the error for failed items,
// otherwise the progress message and the current song of collections
func itemMessage(item *model.DownloadItem) string {
	if item.Status == model.StatusFailed && item.Error != "" {
		return item.Error
	}
	msg := item.Message
	if item.IsCollection() && item.CurrentSong != nil && !item.Status.IsFinished() {
		if msg != "" {
			msg += MiddleDotSeparator
		}
		msg += IconMusic + " " + item.CurrentSong.Title
	}
	if msg == "" {
		return DashPlaceholder
	}
	return msg
}
