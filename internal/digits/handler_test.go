package digits_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/numeral/internal/digits"
	"github.com/JaimeStill/numeral/internal/submissions"
	"github.com/JaimeStill/numeral/pkg/classifier"
	"github.com/JaimeStill/numeral/pkg/middleware"
	"github.com/JaimeStill/numeral/pkg/raster"
	"github.com/JaimeStill/numeral/pkg/routes"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockPredictor struct {
	err  error
	seen []raster.Raster
}

func (m *mockPredictor) Predict(_ context.Context, r raster.Raster) ([]classifier.Prediction, error) {
	m.seen = append(m.seen, r)
	if m.err != nil {
		return nil, m.err
	}
	return []classifier.Prediction{
		{Model: "random", Digit: 4, Confidence: 0},
		{Model: "nn-centered", Digit: 7, Confidence: 0.9},
	}, nil
}

func (m *mockPredictor) Names() []string {
	return []string{"random", "nn-centered"}
}

func setupMux(p digits.Predictor, store submissions.System) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, digits.NewHandler(p, store, discard()).Routes())
	return mux
}

func gridJSON(fill int) string {
	rows := make([]string, raster.Height)
	for y := range rows {
		cells := make([]string, raster.Width)
		for x := range cells {
			cells[x] = fmt.Sprint(fill)
		}
		rows[y] = "[" + strings.Join(cells, ",") + "]"
	}
	return `{"pixels": [` + strings.Join(rows, ",") + `]}`
}

func post(t *testing.T, h http.Handler, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecognize(t *testing.T) {
	p := &mockPredictor{}
	rec := post(t, setupMux(p, submissions.NewMemory(discard())), "/recognize-digit", gridJSON(255))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var preds []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&preds); err != nil {
		t.Fatal(err)
	}
	if len(preds) != 2 {
		t.Fatalf("len = %d, want 2", len(preds))
	}
	for _, field := range []string{"model", "predicted_digit", "confidence"} {
		if _, ok := preds[1][field]; !ok {
			t.Errorf("missing field %q", field)
		}
	}
	if len(p.seen) != 1 || p.seen[0] != raster.Blank() {
		t.Error("predictor did not receive the posted raster")
	}
}

func TestRecognizeRejects(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{"pixels": [[1, 2`, http.StatusBadRequest},
		{"missing pixels", `{}`, http.StatusBadRequest},
		{"short grid", `{"pixels": [[0, 0], [0, 0]]}`, http.StatusBadRequest},
		{"out of range", strings.Replace(gridJSON(0), "0", "256", 1), http.StatusBadRequest},
		{"fractional", strings.Replace(gridJSON(0), "0", "0.5", 1), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockPredictor{}
			rec := post(t, setupMux(p, submissions.NewMemory(discard())), "/recognize-digit", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if len(p.seen) != 0 {
				t.Error("predictor ran for an invalid request")
			}
		})
	}
}

func TestRecognizeModelFailure(t *testing.T) {
	p := &mockPredictor{err: fmt.Errorf("%w: nn: session closed", classifier.ErrModelFailure)}
	rec := post(t, setupMux(p, submissions.NewMemory(discard())), "/recognize-digit", gridJSON(0))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRecognizeModelInputRejected(t *testing.T) {
	p := &mockPredictor{err: fmt.Errorf("%w: nn: %w", classifier.ErrModelFailure, raster.ErrShapeMismatch)}
	rec := post(t, setupMux(p, submissions.NewMemory(discard())), "/recognize-digit", gridJSON(0))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	store := submissions.NewMemory(discard())
	mux := setupMux(&mockPredictor{}, store)

	body := `{"digit": ` + gridJSON(128) + `, "label": 7}`
	rec := post(t, mux, "/submit-digit", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var sub submissions.Submission
	if err := json.NewDecoder(rec.Body).Decode(&sub); err != nil {
		t.Fatal(err)
	}
	if sub.Label != 7 || len(sub.Predictions) != 2 {
		t.Errorf("submission = %+v", sub)
	}

	stored, err := store.Recent(ctx, 10, submissions.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].ID != sub.ID {
		t.Fatalf("stored = %v", stored)
	}

	r, err := stored[0].Raster()
	if err != nil {
		t.Fatal(err)
	}
	if r[0][0] != 128 {
		t.Errorf("stored pixel = %d, want 128", r[0][0])
	}
}

func TestSubmitRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"label too high", `{"digit": ` + gridJSON(0) + `, "label": 10}`},
		{"label negative", `{"digit": ` + gridJSON(0) + `, "label": -1}`},
		{"label missing", `{"digit": ` + gridJSON(0) + `}`},
		{"digit missing", `{"label": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockPredictor{}
			store := submissions.NewMemory(discard())
			rec := post(t, setupMux(p, store), "/submit-digit", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if len(p.seen) != 0 {
				t.Error("predictor ran for a rejected submission")
			}

			stored, _ := store.Recent(context.Background(), 10, submissions.Filters{})
			if len(stored) != 0 {
				t.Errorf("stored %d submissions, want 0", len(stored))
			}
		})
	}
}

type failingStore struct {
	submissions.System
}

func (failingStore) Add(context.Context, submissions.CreateCommand) (*submissions.Submission, error) {
	return nil, fmt.Errorf("%w: connection refused", submissions.ErrStorageUnavailable)
}

func TestSubmitStorageUnavailable(t *testing.T) {
	store := failingStore{submissions.NewMemory(discard())}
	rec := post(t, setupMux(&mockPredictor{}, store), "/submit-digit", `{"digit": `+gridJSON(0)+`, "label": 1}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func canvasUpload(t *testing.T, field string, w, h int, ink color.Color) *http.Request {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, ink)
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "canvas.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(part, img); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/recognize-canvas", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRecognizeCanvas(t *testing.T) {
	black := color.NRGBA{A: 255}

	tests := []struct {
		name      string
		w, h      int
		wantBlank bool
		wantPixel int
	}{
		{"compatible", 280, 280, false, 0},
		{"incompatible", 600, 300, true, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockPredictor{}
			rec := httptest.NewRecorder()
			setupMux(p, submissions.NewMemory(discard())).ServeHTTP(rec, canvasUpload(t, "image", tt.w, tt.h, black))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}

			var result digits.CanvasResult
			if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
				t.Fatal(err)
			}
			if result.Blank != tt.wantBlank {
				t.Errorf("blank = %v, want %v", result.Blank, tt.wantBlank)
			}
			if len(result.Pixels) != raster.Height || result.Pixels[10][10] != tt.wantPixel {
				t.Errorf("pixel = %d, want %d", result.Pixels[10][10], tt.wantPixel)
			}
			if len(result.Predictions) != 2 {
				t.Errorf("predictions = %d, want 2", len(result.Predictions))
			}
		})
	}
}

func TestRecognizeCanvasMissingField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := canvasUpload(t, "file", 28, 28, color.White)
	setupMux(&mockPredictor{}, submissions.NewMemory(discard())).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantSize   int
	}{
		{"default scale", "/preview", http.StatusOK, 224},
		{"custom scale", "/preview?scale=2", http.StatusOK, 56},
		{"zero scale", "/preview?scale=0", http.StatusBadRequest, 0},
		{"huge scale", "/preview?scale=1000", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, setupMux(&mockPredictor{}, submissions.NewMemory(discard())), tt.url, gridJSON(0))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("content type = %s", ct)
			}
			img, err := png.Decode(rec.Body)
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantSize || b.Dy() != tt.wantSize {
				t.Errorf("bounds = %v, want %dx%d", b, tt.wantSize, tt.wantSize)
			}
		})
	}
}

func TestModels(t *testing.T) {
	rec := httptest.NewRecorder()
	setupMux(&mockPredictor{}, submissions.NewMemory(discard())).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models", nil))

	var result digits.ModelsResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Models) != 2 || result.Models[0] != "random" {
		t.Errorf("models = %v", result.Models)
	}
}

func TestBodyLimit(t *testing.T) {
	h := middleware.MaxBytes(64)(setupMux(&mockPredictor{}, submissions.NewMemory(discard())))
	rec := post(t, h, "/recognize-digit", gridJSON(0))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{raster.ErrShapeMismatch, http.StatusBadRequest},
		{raster.ErrOutOfRange, http.StatusBadRequest},
		{submissions.ErrInvalidLabel, http.StatusBadRequest},
		{digits.ErrInvalidRequest, http.StatusBadRequest},
		{submissions.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{classifier.ErrModelFailure, http.StatusInternalServerError},
		{fmt.Errorf("%w: nn: %w", classifier.ErrModelFailure, raster.ErrShapeMismatch), http.StatusInternalServerError},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := digits.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
