package routes

import (
	"net/http"

	"github.com/JaimeStill/numeral/pkg/openapi"
)

// Route binds an HTTP method and path to a handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Pattern returns the ServeMux pattern for the route under prefix.
func (r Route) Pattern(prefix string) string {
	if r.Method == "" {
		return prefix + r.Path
	}
	return r.Method + " " + prefix + r.Path
}
