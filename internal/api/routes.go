package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/numeral/internal/digits"
	"github.com/JaimeStill/numeral/internal/submissions"
	"github.com/JaimeStill/numeral/pkg/openapi"
	"github.com/JaimeStill/numeral/pkg/routes"
)

const (
	specTitle       = "Numeral API"
	specDescription = "Handwritten digit recognition over 28×28 greyscale rasters, with an archive of labelled submissions."
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) error {
	recognition := digits.NewHandler(
		domain.Models.Ensemble(),
		domain.Submissions,
		runtime.Logger,
	)

	groups := []routes.Group{
		recognition.Routes(),
		domain.Submissions.Handler(runtime.Limits).Routes(),
	}

	specBytes, err := buildSpec(runtime, groups)
	if err != nil {
		return err
	}

	patterns := routes.Register(mux, groups...)
	patterns = append(patterns, routes.Register(mux, routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Path: "/openapi.json", Handler: openapi.ServeSpec(specBytes)},
		},
	})...)

	runtime.Logger.Debug("api routes registered", "patterns", patterns)
	return nil
}

func buildSpec(runtime *Runtime, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(specTitle, runtime.Version, specDescription)
	spec.AddServer("/")
	spec.Components.AddSchemas(digits.Schemas())
	spec.Components.AddSchemas(submissions.Schemas())

	routes.Describe(spec, runtime.BasePath, groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
