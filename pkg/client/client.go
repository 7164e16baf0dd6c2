// Package client calls the Numeral HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/numeral/pkg/classifier"
	"github.com/JaimeStill/numeral/pkg/raster"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("numeral api: %d: %s", e.Status, e.Message)
}

// Submission mirrors the stored submission payload.
type Submission struct {
	ID          uuid.UUID               `json:"id"`
	Timestamp   time.Time               `json:"timestamp"`
	Image       []byte                  `json:"png_base64"`
	Label       int                     `json:"label"`
	Predictions []classifier.Prediction `json:"predictions"`
}

// Raster decodes the stored PNG.
func (s Submission) Raster() (raster.Raster, error) {
	return raster.Decode(s.Image)
}

// CanvasResult is the normalized raster and predictions for a canvas upload.
type CanvasResult struct {
	Pixels      [][]int                 `json:"pixels"`
	Blank       bool                    `json:"blank"`
	Predictions []classifier.Prediction `json:"predictions"`
}

type digitData struct {
	Pixels [][]int `json:"pixels"`
}

type submitRequest struct {
	Digit digitData `json:"digit"`
	Label int       `json:"label"`
}

// Client talks to one Numeral server. Paths resolve against the base URL,
// which should include the API prefix (e.g. http://localhost:8080/api).
type Client struct {
	base *url.URL
	http *http.Client
}

// New parses baseURL and returns a Client. A nil hc uses http.DefaultClient.
func New(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}

	if hc == nil {
		hc = http.DefaultClient
	}

	return &Client{base: u, http: hc}, nil
}

// RecognizeDigit scores r with every server-side model.
func (c *Client) RecognizeDigit(ctx context.Context, r raster.Raster) ([]classifier.Prediction, error) {
	var preds []classifier.Prediction
	if err := c.postJSON(ctx, "/recognize-digit", digitData{Pixels: r.Pixels()}, &preds); err != nil {
		return nil, err
	}
	return preds, nil
}

// SubmitDigit scores r and archives it under label.
func (c *Client) SubmitDigit(ctx context.Context, r raster.Raster, label int) (*Submission, error) {
	req := submitRequest{Digit: digitData{Pixels: r.Pixels()}, Label: label}

	var sub Submission
	if err := c.postJSON(ctx, "/submit-digit", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// RecognizeCanvas uploads a canvas PNG export for normalization and scoring.
func (c *Client) RecognizeCanvas(ctx context.Context, png io.Reader) (*CanvasResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "canvas.png")
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	if _, err := io.Copy(part, png); err != nil {
		return nil, fmt.Errorf("copy canvas: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var result CanvasResult
	if err := c.do(ctx, http.MethodPost, "/recognize-canvas", nil, body, writer.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecentSubmissions returns up to count submissions, newest first.
func (c *Client) RecentSubmissions(ctx context.Context, count int) ([]Submission, error) {
	query := url.Values{"count": {strconv.Itoa(count)}}

	subs := make([]Submission, 0)
	if err := c.do(ctx, http.MethodGet, "/recent-submissions", query, nil, "", &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Models lists the server's ensemble in evaluation order.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var result struct {
		Models []string `json:"models"`
	}
	if err := c.do(ctx, http.MethodGet, "/models", nil, nil, "", &result); err != nil {
		return nil, err
	}
	return result.Models, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(data), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Error string `json:"error"`
	}
	msg := string(bytes.TrimSpace(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &APIError{Status: resp.StatusCode, Message: msg}
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
