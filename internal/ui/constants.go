package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconPlay     = "▶"
	IconFolder   = "📁"
	IconFile     = "📄"
	IconClose    = "×"
	IconError    = "❌"
	IconDone     = "✔"
	IconWait     = "⏳"
	IconCancel   = "⏹"
	IconMusic    = "🎵"
	IconOnline   = "●"
	IconOffline  = "○"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
)

// Layout sizing
const (
	StatusLabelWidth  float32 = 150
	PercentLabelWidth float32 = 48

	RowMinWidth float32 = 400

	WindowWidth  float32 = 900
	WindowHeight float32 = 640

	SettingsDialogWidth  float32 = 520
	SettingsDialogHeight float32 = 600

	ReleaseDialogWidth  float32 = 520
	ReleaseDialogHeight float32 = 480

	LibraryColumnWidth float32 = 200
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 300
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)

// Debounce durations
const (
	UIUpdateDebounce = 100 * time.Millisecond
)

// Timeouts for work started from the UI
const (
	SearchTimeout  = 60 * time.Second
	DetailsTimeout = 90 * time.Second
)
