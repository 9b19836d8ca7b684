package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sydlexius/mintfront/internal/event"
	"github.com/sydlexius/mintfront/internal/metadata"
)

// Service watches the metadata directory and publishes an event for each
// metadata file that appears, changes, or disappears, including files placed
// there by something other than the upload endpoint.
type Service struct {
	dir      string
	eventBus *event.Bus
	logger   *slog.Logger
	debounce time.Duration
	ready    chan struct{}
}

// NewService creates a watcher for dir.
func NewService(dir string, eventBus *event.Bus, logger *slog.Logger) *Service {
	return &Service{
		dir:      dir,
		eventBus: eventBus,
		logger:   logger.With("component", "fs-watcher"),
		debounce: 250 * time.Millisecond,
		ready:    make(chan struct{}),
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Ready is closed once the directory watch is in place.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Start blocks until ctx is canceled. Bursts of events for the same file
// (a truncate followed by writes, or a temp file renamed into place) are
// coalesced: once the directory has been quiet for the debounce interval,
// each touched file is checked on disk and reported as created or removed.
func (s *Service) Start(ctx context.Context) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("fsnotify unavailable, metadata watcher disabled", "error", err)
		return
	}
	defer w.Close() //nolint:errcheck

	if err := w.Add(s.dir); err != nil {
		s.logger.Error("failed to watch metadata directory", "path", s.dir, "error", err)
		return
	}
	close(s.ready)
	s.logger.Info("watching metadata directory", "path", s.dir)

	// Starts stopped; reset on each relevant event.
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("metadata watcher stopping")
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if !metadata.IsMetadataFile(name) {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending[name] = struct{}{}
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(s.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-debounceTimer.C:
			for name := range pending {
				s.publish(name)
			}
			clear(pending)
		}
	}
}

func (s *Service) publish(name string) {
	info, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil || info.IsDir() {
		s.logger.Info("metadata file removed", "filename", name)
		s.eventBus.Publish(event.Event{
			Type: event.MetadataFileRemoved,
			Data: map[string]any{"filename": name},
		})
		return
	}

	s.logger.Debug("metadata file changed", "filename", name, "size", info.Size())
	s.eventBus.Publish(event.Event{
		Type: event.MetadataFileCreated,
		Data: map[string]any{
			"filename": name,
			"size":     info.Size(),
		},
	})
}
