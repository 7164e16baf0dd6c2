package digits

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/numeral/internal/submissions"
	"github.com/JaimeStill/numeral/pkg/handlers"
	"github.com/JaimeStill/numeral/pkg/raster"
	"github.com/JaimeStill/numeral/pkg/routes"
)

const (
	defaultPreviewScale = 8
	maxPreviewScale     = 32
)

// Handler provides HTTP endpoints for digit recognition and submission.
type Handler struct {
	predictor Predictor
	store     submissions.System
	logger    *slog.Logger
}

// NewHandler creates a Handler that scores with predictor and records
// submissions in store.
func NewHandler(predictor Predictor, store submissions.System, logger *slog.Logger) *Handler {
	return &Handler{
		predictor: predictor,
		store:     store,
		logger:    logger.With("handler", "digits"),
	}
}

// Routes returns the route group definition for digit endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Path: "/recognize-digit", Handler: h.Recognize, OpenAPI: opRecognize},
			{Method: "POST", Path: "/submit-digit", Handler: h.Submit, OpenAPI: opSubmit},
			{Method: "POST", Path: "/recognize-canvas", Handler: h.RecognizeCanvas, OpenAPI: opRecognizeCanvas},
			{Method: "POST", Path: "/preview", Handler: h.Preview, OpenAPI: opPreview},
			{Method: "GET", Path: "/models", Handler: h.Models, OpenAPI: opModels},
		},
	}
}

// Recognize returns one prediction per model for a pixel grid.
func (h *Handler) Recognize(w http.ResponseWriter, r *http.Request) {
	var data DigitData
	if err := decode(r, &data); err != nil {
		h.fail(w, err)
		return
	}

	img, err := data.Raster()
	if err != nil {
		h.fail(w, err)
		return
	}

	preds, err := h.predictor.Predict(r.Context(), img)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, preds)
}

// Submit scores a labelled drawing and stores it with its predictions.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	if req.Label == nil {
		h.fail(w, fmt.Errorf("%w: label required", ErrInvalidRequest))
		return
	}
	if err := submissions.ValidateLabel(*req.Label); err != nil {
		h.fail(w, err)
		return
	}

	img, err := req.Digit.Raster()
	if err != nil {
		h.fail(w, err)
		return
	}

	preds, err := h.predictor.Predict(r.Context(), img)
	if err != nil {
		h.fail(w, err)
		return
	}

	sub, err := h.store.Add(r.Context(), submissions.CreateCommand{
		Raster:      img,
		Label:       *req.Label,
		Predictions: preds,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, sub)
}

// RecognizeCanvas normalizes an uploaded canvas export and scores it.
// The multipart field "image" carries the PNG.
func (h *Handler) RecognizeCanvas(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("image")
	if err != nil {
		h.fail(w, canvasError(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, err)
		return
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		h.fail(w, fmt.Errorf("%w: image field is not a PNG: %w", ErrInvalidRequest, err))
		return
	}

	canvas := raster.CanvasFromImage(decoded)
	img, blank := raster.NormalizeOrBlank(canvas)
	if blank {
		h.logger.Warn("canvas shape incompatible, scoring blank raster",
			"height", canvas.Height,
			"width", canvas.Width,
		)
	}

	preds, err := h.predictor.Predict(r.Context(), img)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, CanvasResult{
		Pixels:      img.Pixels(),
		Blank:       blank,
		Predictions: preds,
	})
}

// Preview renders a pixel grid at drawing scale as a PNG.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	scale, err := previewScale(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var data DigitData
	if err := decode(r, &data); err != nil {
		h.fail(w, err)
		return
	}

	img, err := data.Raster()
	if err != nil {
		h.fail(w, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, raster.Preview(img, scale)); err != nil {
		h.fail(w, fmt.Errorf("encode preview: %w", err))
		return
	}

	handlers.RespondBytes(w, http.StatusOK, "image/png", buf.Bytes())
}

// Models lists the ensemble in evaluation order.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, ModelsResult{Models: h.predictor.Names()})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

func canvasError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: multipart field image: %w", ErrInvalidRequest, err)
}

func previewScale(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("scale")
	if raw == "" {
		return defaultPreviewScale, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxPreviewScale {
		return 0, fmt.Errorf("%w: %q, expected 1-%d", ErrInvalidScale, raw, maxPreviewScale)
	}
	return n, nil
}
