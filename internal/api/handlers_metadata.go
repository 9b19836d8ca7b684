package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/sydlexius/mintfront/internal/catalog"
	"github.com/sydlexius/mintfront/internal/config"
	"github.com/sydlexius/mintfront/internal/event"
	"github.com/sydlexius/mintfront/internal/metadata"
)

// handleUploadMetadata stores the posted JSON object as
// <static>/NFTs/<artist>-<name>.json and returns its public URL.
func (r *Router) handleUploadMetadata(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, r.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := metadata.Parse(body)
	if err != nil {
		var ve *metadata.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	path, err := r.store.Save(req.Context(), rec)
	if err != nil {
		r.logger.Error("saving metadata",
			slog.String("filename", rec.Filename()),
			slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	filename := filepath.Base(path)
	fileURL := r.fileURL(req, filename)

	if r.eventBus != nil {
		r.eventBus.Publish(event.Event{
			Type: event.MetadataUploaded,
			Data: map[string]any{
				"filename": filename,
				"artist":   rec.Artist,
				"name":     rec.Name,
				"url":      fileURL,
				"size":     len(rec.Raw),
			},
		})
	}

	r.logger.Info("metadata stored", slog.String("filename", filename))
	writeJSON(w, http.StatusOK, map[string]string{"url": fileURL})
}

func (r *Router) handleListMetadata(w http.ResponseWriter, req *http.Request) {
	if r.catalog == nil {
		writeJSON(w, http.StatusOK, []catalog.Entry{})
		return
	}
	entries, err := r.catalog.List(req.Context())
	if err != nil {
		r.logger.Error("listing catalog", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	for i := range entries {
		entries[i].URL = r.metadataURL(req, entries[i])
	}
	if acceptsCBOR(req) {
		writeCBOR(w, http.StatusOK, entries)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetMetadata returns the catalog entry for one metadata file.
func (r *Router) handleGetMetadata(w http.ResponseWriter, req *http.Request) {
	if r.catalog == nil {
		writeError(w, http.StatusNotFound, "metadata not found")
		return
	}
	e, err := r.catalog.GetByFilename(req.Context(), req.PathValue("filename"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "metadata not found")
		return
	}
	if err != nil {
		r.logger.Error("getting catalog entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	e.URL = r.metadataURL(req, *e)
	if acceptsCBOR(req) {
		writeCBOR(w, http.StatusOK, e)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// fileURL builds the absolute URL of a stored metadata file.
func (r *Router) fileURL(req *http.Request, filename string) string {
	return r.baseURL(req) + r.basePath + "/static/" + config.NFTDirName + "/" + url.PathEscape(filename)
}

// metadataURL prefers the URL recorded at upload time; entries discovered on
// disk get one derived from the current request.
func (r *Router) metadataURL(req *http.Request, e catalog.Entry) string {
	if e.URL != "" {
		return e.URL
	}
	return r.fileURL(req, e.Filename)
}

// baseURL returns the configured public URL, or scheme://host of the request.
func (r *Router) baseURL(req *http.Request) string {
	if r.publicURL != "" {
		return r.publicURL
	}
	scheme := "http"
	if req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + req.Host
}
