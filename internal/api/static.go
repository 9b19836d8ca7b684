package api

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sydlexius/mintfront/internal/config"
)

// StaticAssets manages static file serving with content-hash cache busting.
// Page assets are served with a version query parameter (e.g.,
// /static/css/styles.css?v=abc123). When the hash matches, responses include
// immutable cache headers. Metadata files under NFTs/ are not hashed: they
// can be overwritten at any time and are always served with no-cache.
type StaticAssets struct {
	mu       sync.RWMutex
	hashes   map[string]string // path -> content hash
	dir      string
	basePath string
	logger   *slog.Logger
}

// NewStaticAssets creates a StaticAssets manager that scans the given directory.
func NewStaticAssets(dir, basePath string, logger *slog.Logger) *StaticAssets {
	sa := &StaticAssets{
		hashes:   make(map[string]string),
		dir:      dir,
		basePath: basePath,
		logger:   logger,
	}
	sa.scan()
	return sa
}

// Path returns a cache-busted URL for a static file.
// Example: Path("/css/styles.css") returns "/static/css/styles.css?v=a1b2c3d4e5f6"
func (sa *StaticAssets) Path(filePath string) string {
	sa.mu.RLock()
	hash, ok := sa.hashes[filePath]
	sa.mu.RUnlock()

	if !ok {
		return sa.basePath + "/static" + filePath
	}
	return sa.basePath + "/static" + filePath + "?v=" + hash[:12]
}

// Handler returns an HTTP handler that serves static files with appropriate
// cache headers. Directory listings are not served.
func (sa *StaticAssets) Handler() http.Handler {
	prefix := sa.basePath + "/static"
	stripped := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(sa.dir)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relativePath := strings.TrimPrefix(r.URL.Path, prefix)
		if strings.HasSuffix(relativePath, "/") {
			http.NotFound(w, r)
			return
		}

		switch {
		case strings.HasPrefix(relativePath, "/"+config.NFTDirName+"/"):
			w.Header().Set("Cache-Control", "no-cache")
		case r.URL.Query().Get("v") != "":
			sa.mu.RLock()
			expectedHash, exists := sa.hashes[relativePath]
			sa.mu.RUnlock()

			if exists && strings.HasPrefix(expectedHash, r.URL.Query().Get("v")) {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			} else {
				// Hash mismatch - serve but don't cache aggressively
				w.Header().Set("Cache-Control", "public, max-age=3600")
			}
		default:
			// No version parameter - short cache to allow updates
			w.Header().Set("Cache-Control", "public, max-age=300")
		}

		stripped.ServeHTTP(w, r)
	})
}

// Rescan rescans the static directory and updates hashes.
func (sa *StaticAssets) Rescan() {
	sa.scan()
}

func (sa *StaticAssets) scan() {
	hashes := make(map[string]string)
	nftDir := filepath.Join(sa.dir, config.NFTDirName)

	err := filepath.WalkDir(sa.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path == nftDir {
				return filepath.SkipDir
			}
			return nil
		}

		data, err := os.ReadFile(path) //nolint:gosec // G304: walking the configured static tree
		if err != nil {
			sa.logger.Warn("failed to hash static file", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(sa.dir, path)
		if err != nil {
			return nil
		}
		h := sha256.Sum256(data)
		hashes["/"+filepath.ToSlash(rel)] = hex.EncodeToString(h[:])
		return nil
	})
	if err != nil {
		sa.logger.Warn("scanning static directory", "dir", sa.dir, "error", err)
	}

	sa.mu.Lock()
	sa.hashes = hashes
	sa.mu.Unlock()

	sa.logger.Info("static assets scanned", slog.Int("files", len(hashes)))
}
