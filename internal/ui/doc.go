// Package ui contains the Fyne desktop interface. It wires the search,
// download queue and library services to three tabs and renders queue
// updates, notifications and settings. All UI strings are localized via
// Localization.
package ui
