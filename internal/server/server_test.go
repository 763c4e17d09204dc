package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"summymail/internal/config"
	"summymail/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	reply string
}

func (s stubAnalyzer) Analyze(_ context.Context, _ string) (string, error) {
	return s.reply, nil
}

type stubDigests struct{}

func (stubDigests) SendDigest(context.Context, string, session.Snapshot) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := New(&config.Config{Version: "test"}, stubAnalyzer{reply: "ACTION ITEMS FOR EDUARDO MANGARELLI:\n- Reply to Alice\nPARTICIPANTS:\n- Alice"}, stubDigests{}, zerolog.Nop())
	srv.Initialize()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestServer_Routes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		contains       string
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK, `"status":"healthy"`},
		{"root api", http.MethodGet, "/api/", "", http.StatusOK, "sumMyMail API"},
		{"initial state", http.MethodGet, "/api/state", "", http.StatusOK, `"state":"idle"`},
		{"ui page", http.MethodGet, "/", "", http.StatusOK, "Email Thread Summarizer"},
		{"swagger doc", http.MethodGet, "/swagger/doc.json", "", http.StatusOK, "/api/analyze"},
		{"empty thread", http.MethodPost, "/api/analyze", `{"thread":""}`, http.StatusBadRequest, "Input Required"},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.contains)
		})
	}
}

func TestServer_AnalyzeThenToggle(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(`{"thread":"From: Alice\nPing"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap session.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, []session.ActionItem{{Text: "Reply to Alice"}}, snap.ActionItems)

	toggle, err := http.Post(ts.URL+"/api/action-items/0/toggle", "application/json", nil)
	require.NoError(t, err)
	defer toggle.Body.Close()
	require.Equal(t, http.StatusOK, toggle.StatusCode)

	require.NoError(t, json.NewDecoder(toggle.Body).Decode(&snap))
	assert.True(t, snap.ActionItems[0].Done)
}

type panickingAnalyzer struct {
	calls *int
}

func (p panickingAnalyzer) Analyze(_ context.Context, _ string) (string, error) {
	*p.calls++
	if *p.calls == 1 {
		panic("analyzer crashed")
	}
	return "ACTION ITEMS FOR EDUARDO MANGARELLI:\n- Reply to Alice", nil
}

func TestServer_RecoversFromAnalyzerPanic(t *testing.T) {
	calls := 0
	srv := New(&config.Config{Version: "test"}, panickingAnalyzer{calls: &calls}, stubDigests{}, zerolog.Nop())
	srv.Initialize()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	post := func() int {
		resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(`{"thread":"hello"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusInternalServerError, post())

	resp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	var snap session.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, session.StateError, snap.State)

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, 2, calls)
}
