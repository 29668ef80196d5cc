package scansim

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// job is the mutable per-scan record, guarded by Server.mu.
type job struct {
	Status   string
	Message  string
	Progress int

	export []byte // CSV bytes, set once the job completes
}

// FileEntry describes one simulated Drive file or folder.
type FileEntry struct {
	ID       string
	Name     string
	MimeType string
	Modified time.Time

	// Size is the Drive-reported size in bytes as a string, or "N/A"
	// for folders and native Google documents.
	Size string

	// Path is the folder path above the entry, empty at the scan root.
	Path string
}

// Link returns the Drive view link for the entry.
func (f FileEntry) Link() string {
	return "https://drive.google.com/file/d/" + f.ID + "/view?usp=drive_link"
}

// runScan walks a job through the service's milestones. Failures
// configured for the folder surface after the scanning milestone, the
// way a listing error would.
func (s *Server) runScan(jobID, folderID string) {
	s.updateJob(jobID, func(j *job) {
		j.Message = "Authenticating with Google Drive"
	})
	time.Sleep(s.opts.StepInterval)

	s.updateJob(jobID, func(j *job) {
		j.Message = "Scanning Google Drive"
		j.Progress = 10
	})
	time.Sleep(s.opts.StepInterval)

	if reason, ok := s.opts.Failures[folderID]; ok {
		s.updateJob(jobID, func(j *job) {
			j.Status = statusFailed
			j.Message = "Error: " + reason
		})
		s.logger.Warn("scan failed", "job_id", jobID, "folder_id", folderID, "reason", reason)
		return
	}

	s.updateJob(jobID, func(j *job) {
		j.Message = "Exporting results to CSV"
		j.Progress = 90
	})
	time.Sleep(s.opts.StepInterval)

	export := renderCSV(s.opts.Files)
	s.updateJob(jobID, func(j *job) {
		j.Status = statusCompleted
		j.Message = fmt.Sprintf("Found %d files and folders", len(s.opts.Files))
		j.Progress = 100
		j.export = export
	})
	s.logger.Info("scan completed", "job_id", jobID, "files", len(s.opts.Files))
}

func (s *Server) getJob(id string) (job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return job{}, false
	}
	return *j, true
}

func (s *Server) updateJob(id string, fn func(*job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		fn(j)
	}
}

// renderCSV writes the export the real service produces: one row per
// entry with its name, view link, size, type and folder path.
func renderCSV(files []FileEntry) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"name", "link", "size", "file_type", "entire_folder_path"})
	for _, f := range files {
		w.Write([]string{f.Name, f.Link(), f.Size, f.MimeType, f.Path})
	}

	w.Flush()
	return buf.Bytes()
}

// defaultFiles is the fixture served when Options.Files is nil: a small
// folder tree with a native folder entry, office files and a plain text
// file at the root.
func defaultFiles() []FileEntry {
	return []FileEntry{
		{
			ID:       "1gQhV2TkRbNpXcD8wfA0uLmJ4",
			Name:     "Reports",
			MimeType: "application/vnd.google-apps.folder",
			Modified: time.Date(2025, 6, 2, 14, 5, 0, 0, time.UTC),
			Size:     "N/A",
		},
		{
			ID:       "1aB3dE5fG7hJ9kL1mN3pQ5rS7",
			Name:     "q3-summary.pdf",
			MimeType: "application/pdf",
			Modified: time.Date(2025, 7, 14, 9, 30, 0, 0, time.UTC),
			Size:     "482133",
			Path:     "Reports",
		},
		{
			ID:       "1zY8xW6vU4tS2rQ0oN8mL6kJ4",
			Name:     "budget.xlsx",
			MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Modified: time.Date(2025, 7, 21, 16, 45, 0, 0, time.UTC),
			Size:     "20841",
			Path:     "Reports",
		},
		{
			ID:       "1mN0pQ1rS3tU5vW7xY9zA1bC3",
			Name:     "notes.txt",
			MimeType: "text/plain",
			Modified: time.Date(2025, 8, 3, 11, 12, 0, 0, time.UTC),
			Size:     "1311",
		},
	}
}
