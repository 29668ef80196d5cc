package scanapi

import (
	"io"
	"time"
)

// FileRecord is one entry from the folder listing endpoint.
type FileRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	ModifiedTime time.Time `json:"modifiedTime"`
}

// Export is a completed scan's artifact stream. The caller must close Body.
type Export struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64 // -1 when the service does not report a length
}

type startRequest struct {
	FolderID string `json:"folder_id"`
}

type startResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

type listResponse struct {
	Files []FileRecord `json:"files"`
}

// apiError is the service's error envelope.
type apiError struct {
	Detail string `json:"detail"`
}
