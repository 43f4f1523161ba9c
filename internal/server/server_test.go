package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/svgslice/pkg/pipeline"
	"github.com/matzehuels/svgslice/pkg/profile"
	"github.com/matzehuels/svgslice/pkg/store"
)

const testSource = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="800" height="400">
<path d="M40 100 H240 V220 H40 Z" fill="#E7C9A9"/>
<path d="M300 100 H500 V220 H300 Z" fill="#E7C9A9"/>
<path d="M560 100 H760 V220 H560 Z" fill="#E7C9A9"/>
</svg>`

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	runner := pipeline.NewRunner(nil, nil, nil)
	return New(runner, st, profile.Default(), nil), st
}

func postSlice(t *testing.T, srv http.Handler) store.Run {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/slice", strings.NewReader(testSource))
	req.Header.Set("X-Source-Name", "hold.svg")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got, want := rec.Code, http.StatusCreated; got != want {
		t.Fatalf("POST /slice status = %d, want %d (body %s)", got, want, rec.Body.String())
	}
	var run store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return run
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got, want := rec.Code, http.StatusOK; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
}

func TestSlice(t *testing.T) {
	s, st := newTestServer(t)
	run := postSlice(t, s.Router())

	if run.ID == "" {
		t.Error("response run has empty ID")
	}
	if got, want := run.SourceName, "hold.svg"; got != want {
		t.Errorf("SourceName = %q, want %q", got, want)
	}
	if got, want := len(run.Slices), 3; got != want {
		t.Errorf("len(Slices) = %d, want %d", got, want)
	}

	// The run is in the store, including the documents the JSON
	// response omits.
	stored, err := st.Get(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if got := stored.Slice("AKE"); len(got) == 0 {
		t.Error("stored run has no AKE document")
	}
}

func TestSlice_InvalidDocument(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/slice", strings.NewReader("not svg"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got, want := rec.Code, http.StatusBadRequest; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if got, want := resp.Code, "INVALID_DOCUMENT"; got != want {
		t.Errorf("error code = %q, want %q", got, want)
	}
}

func TestSlice_InsufficientClusters(t *testing.T) {
	s, _ := newTestServer(t)
	one := `<svg><path d="M40 100 H240 V220 H40 Z" fill="#E7C9A9"/></svg>`
	req := httptest.NewRequest(http.MethodPost, "/slice", strings.NewReader(one))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got, want := rec.Code, http.StatusUnprocessableEntity; got != want {
		t.Errorf("status = %d, want %d (body %s)", got, want, rec.Body.String())
	}
}

func TestGetRun(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()
	run := postSlice(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil))

	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}
	var got store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("ID = %q, want %q", got.ID, run.ID)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/missing", nil))

	if got, want := rec.Code, http.StatusNotFound; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
}

func TestGetSlice(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()
	run := postSlice(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID+"/slices/AKE", nil))

	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}
	if got, want := rec.Header().Get("Content-Type"), "image/svg+xml"; got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Error("body is not an svg document")
	}
}

func TestGetSlice_UnknownName(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()
	run := postSlice(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID+"/slices/XYZ", nil))

	if got, want := rec.Code, http.StatusNotFound; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
}

func TestListRuns(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	if got, want := rec.Body.String(), "[]\n"; got != want {
		t.Errorf("empty list body = %q, want %q", got, want)
	}

	postSlice(t, router)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))

	var runs []store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got, want := len(runs), 1; got != want {
		t.Errorf("len(runs) = %d, want %d", got, want)
	}
}

func TestListRuns_BadLimit(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs?limit=zero", nil))

	if got, want := rec.Code, http.StatusBadRequest; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
}
