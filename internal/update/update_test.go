package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testChecker(srv *httptest.Server) *Checker {
	return &Checker{url: srv.URL, client: srv.Client()}
}

func TestCheckReportsNewerVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept header = %q", got)
		}
		w.Write([]byte(`{"tag_name":"v1.2.0"}`))
	}))
	defer srv.Close()

	res := testChecker(srv).Check(context.Background(), "1.1.0")
	if res == nil || res.LatestVersion != "1.2.0" {
		t.Errorf("expected 1.2.0, got %+v", res)
	}
}

func TestCheckSameVersionIsQuiet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"tag_name":"v1.1.0"}`))
	}))
	defer srv.Close()

	if res := testChecker(srv).Check(context.Background(), "v1.1.0"); res != nil {
		t.Errorf("same version should report nothing, got %+v", res)
	}
}

func TestCheckFailuresAreQuiet(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`not json`))
		}},
		{"empty tag", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"tag_name":""}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			if res := testChecker(srv).Check(context.Background(), "1.0.0"); res != nil {
				t.Errorf("failure should report nothing, got %+v", res)
			}
		})
	}
}
