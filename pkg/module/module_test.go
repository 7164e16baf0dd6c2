package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/numeral/pkg/module"
)

func TestNewInvalidPrefixPanics(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"nested path", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic for invalid prefix")
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestServePrefixStripping(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/recognize-digit", "/recognize-digit"},
		{"/api", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var received string
			m := module.New("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				received = r.URL.Path
			}))

			req := httptest.NewRequest("GET", tt.path, nil)
			m.Serve(httptest.NewRecorder(), req)

			if received != tt.want {
				t.Errorf("inner path: got %s, want %s", received, tt.want)
			}
			if req.URL.Path != tt.path {
				t.Errorf("original request mutated: %s", req.URL.Path)
			}
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	m := module.New("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var calls int
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			next.ServeHTTP(w, r)
		})
	})

	for range 2 {
		m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))
	}

	if calls != 2 {
		t.Errorf("middleware calls: got %d, want 2", calls)
	}
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /models", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api"))
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", apiMux))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("native"))
	})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"module", "/api/models", http.StatusOK, "api"},
		{"trailing slash", "/api/models/", http.StatusOK, "api"},
		{"native fallback", "/healthz", http.StatusOK, "native"},
		{"unknown", "/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}

	if got := router.Prefixes(); len(got) != 1 || got[0] != "/api" {
		t.Errorf("prefixes: got %v", got)
	}
}
