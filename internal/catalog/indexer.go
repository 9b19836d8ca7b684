package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sydlexius/mintfront/internal/event"
	"github.com/sydlexius/mintfront/internal/metadata"
)

// FileSource lists and reads the metadata files currently on disk.
type FileSource interface {
	List() ([]metadata.FileInfo, error)
	Read(filename string) ([]byte, error)
}

// Indexer keeps the catalog in step with the metadata directory. It is fed by
// upload and watcher events and can reconcile against the directory on demand.
type Indexer struct {
	catalog *Service
	files   FileSource
	logger  *slog.Logger
	timeout time.Duration
}

// NewIndexer creates an Indexer.
func NewIndexer(catalog *Service, files FileSource, logger *slog.Logger) *Indexer {
	return &Indexer{
		catalog: catalog,
		files:   files,
		logger:  logger.With("component", "catalog-indexer"),
		timeout: 5 * time.Second,
	}
}

// Subscribe registers the indexer's handlers on the bus.
func (ix *Indexer) Subscribe(bus *event.Bus) {
	bus.Subscribe(event.MetadataUploaded, ix.handleUpsert)
	bus.Subscribe(event.MetadataFileCreated, ix.handleUpsert)
	bus.Subscribe(event.MetadataFileRemoved, ix.handleRemove)
}

// Sync upserts every metadata file on disk and drops entries whose file is
// gone. It returns the number of entries added or refreshed and removed.
func (ix *Indexer) Sync(ctx context.Context) (upserted, removed int, err error) {
	files, err := ix.files.List()
	if err != nil {
		return 0, 0, fmt.Errorf("listing metadata files: %w", err)
	}

	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[f.Filename] = struct{}{}
		artist, name := ix.segments(f.Filename)
		if err := ix.catalog.Upsert(ctx, &Entry{
			Filename: f.Filename,
			Artist:   artist,
			Name:     name,
			Size:     f.Size,
		}); err != nil {
			return upserted, removed, err
		}
		upserted++
	}

	entries, err := ix.catalog.List(ctx)
	if err != nil {
		return upserted, removed, err
	}
	for _, e := range entries {
		if _, ok := onDisk[e.Filename]; ok {
			continue
		}
		if err := ix.catalog.Remove(ctx, e.Filename); err != nil {
			return upserted, removed, err
		}
		removed++
	}

	ix.logger.Info("catalog synced",
		slog.Int("upserted", upserted),
		slog.Int("removed", removed))
	return upserted, removed, nil
}

// segments recovers the artist and name a file was saved under by parsing the
// stored body. Splitting the filename is the fallback and cannot recover a
// hyphenated artist.
func (ix *Indexer) segments(filename string) (artist, name string) {
	body, err := ix.files.Read(filename)
	if err == nil {
		var rec *metadata.Record
		if rec, err = metadata.Parse(body); err == nil {
			return rec.Artist, rec.Name
		}
	}
	if !errors.Is(err, metadata.ErrNotFound) {
		ix.logger.Debug("deriving catalog fields from filename", "filename", filename, "error", err)
	}
	return metadata.SplitFilename(filename)
}

func (ix *Indexer) handleUpsert(e event.Event) {
	filename := e.String("filename")
	if filename == "" {
		return
	}

	artist, name := e.String("artist"), e.String("name")
	if artist == "" && name == "" {
		artist, name = ix.segments(filename)
	}

	var size int64
	switch v := e.Data["size"].(type) {
	case int:
		size = int64(v)
	case int64:
		size = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), ix.timeout)
	defer cancel()

	entry := &Entry{
		Filename: filename,
		Artist:   artist,
		Name:     name,
		URL:      e.String("url"),
		Size:     size,
	}
	if err := ix.catalog.Upsert(ctx, entry); err != nil {
		ix.logger.Error("indexing metadata file", "filename", filename, "error", err)
		return
	}
	ix.logger.Debug("indexed metadata file", "filename", filename, "event", string(e.Type))
}

func (ix *Indexer) handleRemove(e event.Event) {
	filename := e.String("filename")
	if filename == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ix.timeout)
	defer cancel()

	if err := ix.catalog.Remove(ctx, filename); err != nil {
		ix.logger.Error("removing catalog entry", "filename", filename, "error", err)
		return
	}
	ix.logger.Debug("removed catalog entry", "filename", filename)
}
