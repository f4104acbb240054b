package model

// DownloadStatus represents the status of a download item
type DownloadStatus string

const (
	// StatusQueued means the item waits for a free download slot
	StatusQueued DownloadStatus = "Queued"

	// StatusPendingMetadata means the item is a collection whose track list is not known yet
	StatusPendingMetadata DownloadStatus = "Pending Metadata"

	// StatusDownloading means yt-dlp is running for the item
	StatusDownloading DownloadStatus = "Downloading"

	// StatusProcessing means audio was downloaded and tags/artwork are being written
	StatusProcessing DownloadStatus = "Processing Metadata"

	// StatusCompleted means the item finished successfully
	StatusCompleted DownloadStatus = "Completed"

	// StatusFailed means the item failed with an error
	StatusFailed DownloadStatus = "Failed"

	// StatusCancelled means the item was cancelled by user
	StatusCancelled DownloadStatus = "Cancelled"
)

// String returns the string representation of DownloadStatus
func (s DownloadStatus) String() string {
	return string(s)
}

// IsActive returns true if the item is currently occupying a download slot
func (s DownloadStatus) IsActive() bool {
	return s == StatusDownloading || s == StatusProcessing
}

// IsFinished returns true if the item is in a final state (completed, failed, or cancelled)
func (s DownloadStatus) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// IsWaiting returns true if the item has not started yet
func (s DownloadStatus) IsWaiting() bool {
	return s == StatusQueued || s == StatusPendingMetadata
}
