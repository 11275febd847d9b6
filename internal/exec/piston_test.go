package exec

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestClient_RunForwardsBodyVerbatim(t *testing.T) {
	const result = `{"run":{"output":"hello\n","code":0},"language":"python","version":"3.10.0"}`

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(result))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())
	raw, err := c.Run(context.Background(), Request{
		Language: "python",
		Version:  "3.10",
		Code:     `print("hello")`,
		Stdin:    "in",
	})
	require.NoError(t, err)
	assert.Equal(t, result, string(raw), "response body must pass through untouched")

	// Wire shape the service expects.
	var wire struct {
		Language string `json:"language"`
		Version  string `json:"version"`
		Files    []struct {
			Content string `json:"content"`
		} `json:"files"`
		Stdin string `json:"stdin"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &wire))
	assert.Equal(t, "python", wire.Language)
	assert.Equal(t, "3.10", wire.Version)
	require.Len(t, wire.Files, 1)
	assert.Equal(t, `print("hello")`, wire.Files[0].Content)
	assert.Equal(t, "in", wire.Stdin)
}

func TestClient_RunErrors(t *testing.T) {
	tests := []struct {
		name  string
		serve func(w http.ResponseWriter, r *http.Request)
	}{
		{
			name: "server error status",
			serve: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "client error status",
			serve: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad language", http.StatusBadRequest)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(tt.serve))
			defer srv.Close()

			c := New(srv.URL, 5*time.Second, testLogger())
			_, err := c.Run(context.Background(), Request{Language: "go"})
			assert.Error(t, err)
		})
	}
}

func TestClient_RunUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := New(srv.URL, time.Second, testLogger())
	_, err := c.Run(context.Background(), Request{Language: "go"})
	assert.Error(t, err)
}

func TestClient_RunTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 100*time.Millisecond, testLogger())
	_, err := c.Run(context.Background(), Request{Language: "go"})
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	base := Request{Language: "go", Version: "1.22", Code: "main", Stdin: "x"}

	assert.Equal(t, cacheKey(base), cacheKey(base))
	for _, other := range []Request{
		{Language: "py", Version: "1.22", Code: "main", Stdin: "x"},
		{Language: "go", Version: "1.21", Code: "main", Stdin: "x"},
		{Language: "go", Version: "1.22", Code: "other", Stdin: "x"},
		{Language: "go", Version: "1.22", Code: "main", Stdin: "y"},
	} {
		assert.NotEqual(t, cacheKey(base), cacheKey(other))
	}
}
