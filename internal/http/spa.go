package httpx

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPA serves the prebuilt frontend bundle. Paths that match a real file
// are served as-is; every other path gets the bundle's index.html so
// client-side routing works after a hard reload. The websocket and ops
// paths never reach this handler (they are routed first).
type SPA struct {
	dir   string
	files http.Handler
	log   *slog.Logger
}

func NewSPA(dir string, log *slog.Logger) *SPA {
	return &SPA{dir: dir, files: http.FileServer(http.Dir(dir)), log: log}
}

func (s *SPA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The API namespace is never the frontend's: an unknown /api path
	// is a 404, not index.html with a 200.
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}

	p := filepath.Join(s.dir, filepath.Clean("/"+r.URL.Path))
	if st, err := os.Stat(p); err == nil && !st.IsDir() {
		s.files.ServeHTTP(w, r)
		return
	}

	// SPA fallback. Asset-looking paths that are simply missing still
	// get a 404 rather than index.html with a 200.
	if ext := filepath.Ext(r.URL.Path); ext != "" && !strings.HasSuffix(r.URL.Path, ".html") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, "index.html"))
}
