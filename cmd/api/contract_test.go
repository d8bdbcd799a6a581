package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

var specPath = filepath.Join("..", "..", "docs", "api", "openapi.yaml")

// loadSpec loads and validates the OpenAPI document.
func loadSpec(t *testing.T) (*openapi3.T, routers.Router) {
	t.Helper()

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromFile(specPath)
	if err != nil {
		t.Fatalf("Failed to load OpenAPI spec from %s: %v", specPath, err)
	}

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		t.Fatalf("Failed to create router from spec: %v", err)
	}

	return spec, router
}

func TestOpenAPISpecValid(t *testing.T) {
	spec, _ := loadSpec(t)

	for _, path := range []string{"/", "/healthz", "/readyz", "/metrics", "/register", "/match/{id}"} {
		if spec.Paths.Find(path) == nil {
			t.Errorf("Expected path %s not found in spec", path)
		}
	}
}

// TestResponsesMatchOpenAPI drives the real router and validates each request
// and response pair against the OpenAPI document.
func TestResponsesMatchOpenAPI(t *testing.T) {
	_, router := loadSpec(t)
	app := newTestApp(t, nil)

	cases := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"Home", http.MethodGet, "/", "", http.StatusOK},
		{"Healthz", http.MethodGet, "/healthz", "", http.StatusOK},
		{"Readyz", http.MethodGet, "/readyz", "", http.StatusOK},
		{"RegisterFirst", http.MethodPost, "/register", registerBody("Ada", "1990-04-15"), http.StatusCreated},
		{"RegisterSecond", http.MethodPost, "/register", registerBody("Ben", "1991-08-01"), http.StatusCreated},
		{"RegisterMissingFields", http.MethodPost, "/register", `{"name":"Cy"}`, http.StatusBadRequest},
		{"RegisterNoJSON", http.MethodPost, "/register", `not json`, http.StatusBadRequest},
		{"Match", http.MethodGet, "/match/1", "", http.StatusOK},
		{"MatchUnknown", http.MethodGet, "/match/99", "", http.StatusNotFound},
		{"MatchBadID", http.MethodGet, "/match/abc", "", http.StatusBadRequest},
		{"Metrics", http.MethodGet, "/metrics", "", http.StatusOK},
	}

	// Cases share one store and run in order.
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := app.do(t, tc.method, tc.path, tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.wantStatus, rec.Body)
			}

			req := httptest.NewRequest(tc.method, tc.path, nil)
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				t.Fatalf("Could not find route in spec: %v", err)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
			}

			if tc.wantStatus < 400 && tc.body != "" {
				req.Body = io.NopCloser(strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
				if err := openapi3filter.ValidateRequest(context.Background(), input); err != nil {
					t.Errorf("Request validation failed: %v", err)
				}
			}

			err = openapi3filter.ValidateResponse(context.Background(), &openapi3filter.ResponseValidationInput{
				RequestValidationInput: input,
				Status:                 rec.Code,
				Header:                 rec.Header(),
				Body:                   io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
			})
			if err != nil {
				t.Errorf("Response validation failed: %v\nBody: %s", err, rec.Body)
			}
		})
	}
}
