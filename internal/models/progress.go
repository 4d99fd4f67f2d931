package models

// DownloadProgress exists only while a download is active. It is never
// persisted; it is discarded on completion or cancellation.
type DownloadProgress struct {
	TotalBytes      int64   `json:"total_bytes"`
	WrittenBytes    int64   `json:"written_bytes"`
	ProgressPercent float64 `json:"progress_percent"`
}

// ProgressUpdate is the payload broadcast over the websocket hub.
type ProgressUpdate struct {
	JobID    string  `json:"jobId"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"` // e.g. "in_progress", "completed", "failed"
	Done     bool    `json:"done"`
}
