package submissions

import "github.com/JaimeStill/numeral/pkg/openapi"

// Schemas returns the component schemas the submission operations reference.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Submission": {
			Type:     "object",
			Required: []string{"id", "timestamp", "png_base64", "label", "predictions"},
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"timestamp":   {Type: "string", Format: "date-time"},
				"png_base64":  {Type: "string", Format: "byte", Description: "28×28 greyscale PNG"},
				"label":       openapi.Integer("intended digit", 0, 9),
				"predictions": openapi.SchemaRef("Predictions"),
			},
		},
		"Submissions": {Type: "array", Items: openapi.SchemaRef("Submission")},
	}
}

func (h *Handler) recentOp() *openapi.Operation {
	return &openapi.Operation{
		Summary: "Newest submissions first",
		Tags:    []string{"Submissions"},
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("count", "number of submissions to return",
				openapi.Integer("", 0, float64(h.limits.MaxCount))),
			openapi.QueryParam("label", "only submissions with this label",
				openapi.Integer("", 0, 9)),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Submissions, newest first", openapi.SchemaRef("Submissions")),
			400: openapi.ResponseRef("BadRequest"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	}
}

var (
	opFind = &openapi.Operation{
		Summary:    "Fetch one submission",
		Tags:       []string{"Submissions"},
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "submission UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Submission", openapi.SchemaRef("Submission")),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	}

	opImage = &openapi.Operation{
		Summary:    "Fetch the stored PNG of a submission",
		Tags:       []string{"Submissions"},
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "submission UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseBinary("28×28 greyscale PNG", "image/png"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	}
)
