// Package routes declares method-qualified routes in nested prefix groups.
package routes

import (
	"net/http"

	"github.com/JaimeStill/numeral/pkg/openapi"
)

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux and returns the
// registered patterns in declaration order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		patterns = registerGroup(mux, "", group, patterns)
	}
	return patterns
}

func registerGroup(mux *http.ServeMux, parent string, group Group, patterns []string) []string {
	prefix := parent + group.Prefix
	for _, route := range group.Routes {
		pattern := route.Pattern(prefix)
		mux.HandleFunc(pattern, route.Handler)
		patterns = append(patterns, pattern)
	}
	for _, child := range group.Children {
		patterns = registerGroup(mux, prefix, child, patterns)
	}
	return patterns
}

// Describe adds every route carrying an OpenAPI operation to spec, with base
// prepended to the group prefixes.
func Describe(spec *openapi.Spec, base string, groups ...Group) {
	for _, group := range groups {
		describeGroup(spec, base, group)
	}
}

func describeGroup(spec *openapi.Spec, parent string, group Group) {
	prefix := parent + group.Prefix
	for _, route := range group.Routes {
		if route.OpenAPI != nil {
			spec.AddOperation(route.Method, prefix+route.Path, route.OpenAPI)
		}
	}
	for _, child := range group.Children {
		describeGroup(spec, prefix, child)
	}
}
