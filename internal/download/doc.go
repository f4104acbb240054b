// Package download implements the download queue built on top of yt-dlp
// (via internal/ytdlp). It manages the item lifecycle and concurrency
// limits. It resolves pending collections and runs the per-song pipeline
// of enrichment, dedup, download, artwork, lyrics, tags and history, then
// propagates progress to the UI, the CLI and the REST API.
package download
