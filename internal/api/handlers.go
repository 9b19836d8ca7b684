package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/fxamacker/cbor/v2"
	"github.com/sydlexius/mintfront/internal/version"
	"github.com/sydlexius/mintfront/web/templates"
)

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleMaintenanceStatus(w http.ResponseWriter, req *http.Request) {
	st, err := r.maintenance.Status(req.Context())
	if err != nil {
		r.logger.Error("reading maintenance status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// assets returns cache-busted asset paths for templates.
func (r *Router) assets() templates.AssetPaths {
	return templates.AssetPaths{
		BasePath: r.basePath,
		CSS:      r.staticAssets.Path("/css/styles.css"),
		MintJS:   r.staticAssets.Path("/js/mint.js"),
		Favicon:  r.basePath + "/favicon.png",
	}
}

func (r *Router) handleFavicon(w http.ResponseWriter, req *http.Request) {
	r.serveIcon(w, req, 32)
}

// handleIcon serves /icons/{size}.png.
func (r *Router) handleIcon(w http.ResponseWriter, req *http.Request) {
	file := req.PathValue("file")
	size, err := strconv.Atoi(strings.TrimSuffix(file, ".png"))
	if err != nil || !strings.HasSuffix(file, ".png") {
		http.NotFound(w, req)
		return
	}
	r.serveIcon(w, req, size)
}

func (r *Router) serveIcon(w http.ResponseWriter, req *http.Request, size int) {
	data, err := r.icons.PNG(size)
	if err != nil {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

func renderTempl(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// writeError sends a JSON error body of the form {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

const cborContentType = "application/cbor"

var cborEnc = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// acceptsCBOR reports whether the client asked for CBOR instead of JSON.
func acceptsCBOR(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), cborContentType)
}

func writeCBOR(w http.ResponseWriter, status int, v any) {
	data, err := cborEnc.Marshal(v)
	if err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", cborContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
