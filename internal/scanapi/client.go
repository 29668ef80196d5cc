package scanapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/solenne/dredge/pkg/scanjob"
)

// Common errors.
var (
	ErrJobNotFound    = errors.New("scanapi: job not found")
	ErrExportNotReady = errors.New("scanapi: scan not completed yet")
)

// DefaultTimeout bounds each request. Every call carries a small JSON or CSV
// payload; a poll that takes longer than this is a transport failure.
const DefaultTimeout = 15 * time.Second

// Client communicates with a folder scan service. It satisfies
// scanjob.Service, so it can drive a scanjob.Controller directly.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

var _ scanjob.Service = (*Client)(nil)

// New creates a client with default HTTP settings.
func New(baseURL string, logger *slog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: DefaultTimeout}, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With(slog.String("component", "scanapi")),
	}
}

// StartScan submits a scan of the given folder and returns the job id the
// service assigned to it.
func (c *Client) StartScan(ctx context.Context, folder string) (string, error) {
	body, err := json.Marshal(startRequest{FolderID: folder})
	if err != nil {
		return "", fmt.Errorf("marshal scan request: %w", err)
	}

	var resp startResponse
	if err := c.postJSON(ctx, "/api/scan", bytes.NewReader(body), &resp); err != nil {
		return "", fmt.Errorf("start scan: %w", err)
	}
	if resp.JobID == "" {
		return "", errors.New("scanapi: service returned no job id")
	}
	c.logger.Debug("scan started", "job_id", resp.JobID, "message", resp.Message)
	return resp.JobID, nil
}

// JobStatus reports the current status of a job. The error wraps
// ErrJobNotFound when the service does not know the id.
func (c *Client) JobStatus(ctx context.Context, jobID string) (scanjob.StatusUpdate, error) {
	var resp statusResponse
	if err := c.get(ctx, "/api/scan/"+url.PathEscape(jobID)+"/status", &resp); err != nil {
		return scanjob.StatusUpdate{}, fmt.Errorf("job status: %w", err)
	}
	return scanjob.StatusUpdate{
		Status:   resp.Status,
		Progress: resp.Progress,
		Message:  resp.Message,
	}, nil
}

// ListFiles returns the service's current folder listing.
func (c *Client) ListFiles(ctx context.Context) ([]FileRecord, error) {
	var resp listResponse
	if err := c.get(ctx, "/api/scan", &resp); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return resp.Files, nil
}

// ExportURL returns the download URL for a job's artifact. It is a pure
// computation; no request is made and the job need not exist.
func (c *Client) ExportURL(jobID string) string {
	return c.baseURL + "/api/scan/" + url.PathEscape(jobID) + "/download"
}

// FetchExport streams a completed job's artifact. The caller must close the
// returned body.
//
// Returns an error if:
//   - The scan has not completed yet (ErrExportNotReady)
//   - The job id is unknown (ErrJobNotFound)
//   - The request itself failed
func (c *Client) FetchExport(ctx context.Context, jobID string) (*Export, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(jobID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch export: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return nil, fmt.Errorf("fetch export: %w", ErrExportNotReady)
		case http.StatusNotFound:
			return nil, fmt.Errorf("fetch export: %w", ErrJobNotFound)
		}
		return nil, fmt.Errorf("fetch export: unexpected status %d: %s", resp.StatusCode, readDetail(resp.Body))
	}

	export := &Export{
		Body:        resp.Body,
		Filename:    exportFilename(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	c.logger.Debug("export stream opened",
		"job_id", jobID, "filename", export.Filename, "size", export.Size)
	return export, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// checkResponse maps a non-2xx response to an error. The service's only 404
// is an unknown job id.
func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrJobNotFound
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readDetail(resp.Body))
	}
}

// readDetail extracts the service's error envelope, falling back to the raw
// body.
func readDetail(r io.Reader) string {
	body, _ := io.ReadAll(r)
	var e apiError
	if json.Unmarshal(body, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(body))
}

// exportFilename pulls the artifact name out of a Content-Disposition header.
func exportFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		return params["filename"]
	}
	return ""
}
