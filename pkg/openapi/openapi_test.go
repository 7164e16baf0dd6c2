package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/numeral/pkg/openapi"
)

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Numeral API", "1.0.0", "digits")

	get := &openapi.Operation{Summary: "find"}
	img := &openapi.Operation{Summary: "image"}
	spec.AddOperation(http.MethodGet, "/api/submissions/{id}", get)
	spec.AddOperation(http.MethodGet, "/api/blobs/{key...}", img)
	spec.AddOperation(http.MethodPost, "/api/submissions/{id}", &openapi.Operation{Summary: "post"})

	item := spec.Paths["/api/submissions/{id}"]
	if item == nil || item.Get != get || item.Post == nil {
		t.Fatalf("path item = %+v", item)
	}
	if spec.Paths["/api/blobs/{key}"] == nil {
		t.Error("wildcard suffix not reduced")
	}
}

func TestMarshalAndServe(t *testing.T) {
	spec := openapi.NewSpec("Numeral API", "1.0.0", "")
	spec.AddServer("/")
	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Grid": openapi.Array(openapi.Array(openapi.Integer("intensity", 0, 255), 28), 28),
	})
	spec.AddOperation(http.MethodGet, "/api/models", &openapi.Operation{
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("names", &openapi.Schema{Type: "array"}),
			500: openapi.ResponseRef("InternalError"),
		},
	})

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("served document is not JSON: %v", err)
	}
	if doc["openapi"] != "3.1.0" {
		t.Errorf("openapi = %v", doc["openapi"])
	}

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	grid := schemas["Grid"].(map[string]any)
	if grid["minItems"] != float64(28) || grid["maxItems"] != float64(28) {
		t.Errorf("grid bounds = %v/%v", grid["minItems"], grid["maxItems"])
	}
	if _, ok := schemas["Error"]; !ok {
		t.Error("shared Error schema missing")
	}

	responses := doc["paths"].(map[string]any)["/api/models"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	if ref := responses["500"].(map[string]any)["$ref"]; ref != "#/components/responses/InternalError" {
		t.Errorf("500 ref = %v", ref)
	}
}
