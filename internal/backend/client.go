package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"narraive/internal/domain"
	"narraive/internal/logging"
)

const (
	uploadPath  = "/api/upload"
	queryPath   = "/api/query"
	themePath   = "/api/theme"
	narratePath = "/api/narrate"
)

// Client talks to the document Q&A service over its REST endpoints.
// Requests are sent once; there is no retry.
type Client struct {
	baseURL string
	client  *http.Client
}

// Config configures the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a backend client using the provided configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:8000"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: t},
	}
}

// BaseURL returns the service root the client posts to.
func (c *Client) BaseURL() string { return c.baseURL }

// Upload sends one file as multipart field "file" and returns the extracted text.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	logging.LogRequest("out", uploadPath, filepath.Base(filename))

	var out struct {
		Text string `json:"text"`
	}
	if err := c.do(req, uploadPath, uploadSchema, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// Query sends the question with every document in one request and returns
// the answers in the order the service produced them.
func (c *Client) Query(ctx context.Context, q domain.QueryRequest) ([]domain.Answer, error) {
	if q.Documents == nil {
		q.Documents = []domain.DocumentRef{}
	}
	var out []domain.Answer
	if err := c.postJSON(ctx, queryPath, q, querySchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Theme asks the service for the main theme of text.
func (c *Client) Theme(ctx context.Context, text string) (string, error) {
	var out struct {
		Theme string `json:"theme"`
	}
	if err := c.postJSON(ctx, themePath, textInput{Input: text}, themeSchema, &out); err != nil {
		return "", err
	}
	return out.Theme, nil
}

// Narrate asks the service for a storytelling-style summary of text.
func (c *Client) Narrate(ctx context.Context, text string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.postJSON(ctx, narratePath, textInput{Input: text}, narrateSchema, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

type textInput struct {
	Input string `json:"input"`
}

func (c *Client) postJSON(ctx context.Context, path string, body any, schema string, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	logging.LogRequest("out", path, data)
	return c.do(req, path, schema, out)
}

func (c *Client) do(req *http.Request, path, schema string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("POST %s: read response: %w", path, err)
	}
	logging.LogRequest("in", path, payload)
	if resp.StatusCode >= 300 {
		return &StatusError{Path: path, Status: resp.Status, Code: resp.StatusCode}
	}
	if err := validate(schema, payload); err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("POST %s: decode response: %w", path, err)
	}
	logging.LogDebug(path+" response", out)
	return nil
}

// StatusError reports a non-2xx reply from the service.
type StatusError struct {
	Path   string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("POST %s failed: %s", e.Path, e.Status)
}
