package digits

import (
	"github.com/JaimeStill/numeral/pkg/openapi"
	"github.com/JaimeStill/numeral/pkg/raster"
)

// Schemas returns the component schemas the digit operations reference.
func Schemas() map[string]*openapi.Schema {
	grid := openapi.Array(
		openapi.Array(openapi.Integer("greyscale intensity", 0, 255), raster.Width),
		raster.Height,
	)

	return map[string]*openapi.Schema{
		"DigitData": {
			Type:       "object",
			Required:   []string{"pixels"},
			Properties: map[string]*openapi.Schema{"pixels": grid},
		},
		"SubmitRequest": {
			Type:     "object",
			Required: []string{"digit", "label"},
			Properties: map[string]*openapi.Schema{
				"digit": openapi.SchemaRef("DigitData"),
				"label": openapi.Integer("intended digit", 0, 9),
			},
		},
		"Prediction": {
			Type:     "object",
			Required: []string{"model", "predicted_digit", "confidence"},
			Properties: map[string]*openapi.Schema{
				"model":           {Type: "string"},
				"predicted_digit": openapi.Integer("", 0, 9),
				"confidence":      {Type: "number", Format: "double"},
			},
		},
		"Predictions": {Type: "array", Items: openapi.SchemaRef("Prediction")},
		"CanvasResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"pixels":      grid,
				"blank":       {Type: "boolean", Description: "canvas size was incompatible and a blank raster was scored"},
				"predictions": openapi.SchemaRef("Predictions"),
			},
		},
		"ModelsResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"models": {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
	}
}

var (
	opRecognize = &openapi.Operation{
		Summary:     "Score a 28×28 pixel grid with every model",
		Tags:        []string{"Digits"},
		RequestBody: openapi.RequestBodyJSON("DigitData"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("One prediction per model, in ensemble order", openapi.SchemaRef("Predictions")),
			400: openapi.ResponseRef("BadRequest"),
			413: openapi.ResponseRef("PayloadTooLarge"),
			500: openapi.ResponseRef("InternalError"),
		},
	}

	opSubmit = &openapi.Operation{
		Summary:     "Score and archive a labelled drawing",
		Tags:        []string{"Digits"},
		RequestBody: openapi.RequestBodyJSON("SubmitRequest"),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Stored submission", openapi.SchemaRef("Submission")),
			400: openapi.ResponseRef("BadRequest"),
			413: openapi.ResponseRef("PayloadTooLarge"),
			500: openapi.ResponseRef("InternalError"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	}

	opRecognizeCanvas = &openapi.Operation{
		Summary:     "Normalize a 280×280 canvas PNG and score it",
		Tags:        []string{"Digits"},
		RequestBody: openapi.RequestBodyMultipart("image", "canvas export as PNG"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Normalized raster with predictions", openapi.SchemaRef("CanvasResult")),
			400: openapi.ResponseRef("BadRequest"),
			413: openapi.ResponseRef("PayloadTooLarge"),
			500: openapi.ResponseRef("InternalError"),
		},
	}

	opPreview = &openapi.Operation{
		Summary: "Render a pixel grid as an upscaled PNG",
		Tags:    []string{"Digits"},
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("scale", "pixels per cell, default 8", openapi.Integer("", 1, maxPreviewScale)),
		},
		RequestBody: openapi.RequestBodyJSON("DigitData"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseBinary("Preview image", "image/png"),
			400: openapi.ResponseRef("BadRequest"),
		},
	}

	opModels = &openapi.Operation{
		Summary: "List ensemble models in evaluation order",
		Tags:    []string{"Digits"},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Model names", openapi.SchemaRef("ModelsResult")),
		},
	}
)
