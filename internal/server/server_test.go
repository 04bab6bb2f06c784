package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hakim/domainvet/internal/models"
	"github.com/hakim/domainvet/internal/pipeline"
	"github.com/hakim/domainvet/internal/storage"
)

// stubValidator marks domains starting with "ok" valid and everything else
// invalid.
type stubValidator struct{}

func (stubValidator) Validate(_ context.Context, domain string) models.ValidationResult {
	d := models.NormalizeDomain(domain)
	if strings.HasPrefix(d, "ok") {
		return models.ValidationResult{Domain: d, Classification: models.ClassValid, Reason: "Domain passed all checks"}
	}
	return models.InvalidResult(d, "Failed all connection attempts")
}

func newTestServer(t *testing.T, withStore bool) (*httptest.Server, *storage.Store) {
	t.Helper()

	d := Deps{
		Validator: stubValidator{},
		Profile:   "v2",
		Batch:     pipeline.BatchConfig{Concurrency: 4},
	}

	var store *storage.Store
	if withStore {
		var err error
		store, err = storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		d.Store = store
	}

	srv := httptest.NewServer(NewRouter(d))
	t.Cleanup(srv.Close)
	return srv, store
}

func postValidate(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/validate", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /v1/validate: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Fatalf("body = %v, %v", body, err)
	}
}

func TestValidatePersistsRun(t *testing.T) {
	srv, store := newTestServer(t, true)

	resp := postValidate(t, srv, `{"domains": ["ok.example.com", "bad.example.com", "  "]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Summary.Total != 2 || got.Summary.Valid != 1 || got.Summary.Invalid != 1 {
		t.Fatalf("summary = %+v", got.Summary)
	}
	if len(got.Results) != 2 || got.Status != models.StatusComplete {
		t.Fatalf("response = %+v", got)
	}

	meta, err := store.GetRun(got.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if meta.InputFile != APIInputName || meta.Profile != "v2" || meta.Status != models.StatusComplete {
		t.Fatalf("stored meta = %+v", meta)
	}
	results, err := store.GetResults(got.RunID)
	if err != nil || len(results) != 2 {
		t.Fatalf("stored results = %d, %v", len(results), err)
	}
}

func TestValidateRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, false)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"domains":`, http.StatusBadRequest},
		{"empty list", `{"domains": []}`, http.StatusBadRequest},
		{"blank entries", `{"domains": ["", " "]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postValidate(t, srv, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
				t.Fatalf("error body = %+v, %v", e, err)
			}
		})
	}
}

func TestValidateTooManyDomains(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Deps{
		Validator:  stubValidator{},
		Batch:      pipeline.BatchConfig{Concurrency: 1},
		MaxDomains: 2,
	}))
	defer srv.Close()

	resp := postValidate(t, srv, `{"domains": ["a.com", "b.com", "c.com"]}`)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestValidateWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp := postValidate(t, srv, `{"domains": ["ok.com"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	runs, err := http.Get(srv.URL + "/v1/runs")
	if err != nil {
		t.Fatalf("GET /v1/runs: %v", err)
	}
	defer runs.Body.Close()
	if runs.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("runs status = %d", runs.StatusCode)
	}
}

func TestRunEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var created validateResponse
	resp := postValidate(t, srv, `{"domains": ["ok.com", "nope.com"]}`)
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/runs?input=" + APIInputName)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()

		var runs []models.RunMeta
		if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(runs) != 1 || runs[0].ID != created.RunID {
			t.Fatalf("runs = %+v", runs)
		}
	})

	t.Run("get json", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/runs/" + created.RunID)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()

		var got runResponse
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Run == nil || got.Run.ID != created.RunID || len(got.Results) != 2 {
			t.Fatalf("run = %+v", got)
		}
	})

	t.Run("get markdown", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/runs/" + created.RunID + "?format=md")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()

		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown") {
			t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
		}
		if !strings.Contains(buf.String(), "# Domain Validation Report") {
			t.Fatalf("body = %s", buf.String())
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/runs/does-not-exist")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	})
}
