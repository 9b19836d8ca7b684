package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sydlexius/mintfront/internal/event"
	"github.com/sydlexius/mintfront/internal/version"
)

const (
	maxRetries     = 3
	requestTimeout = 10 * time.Second
)

// Dispatcher sends events to matching webhooks.
type Dispatcher struct {
	webhooks   []Webhook
	httpClient *http.Client
	logger     *slog.Logger
	backoff    time.Duration
	wg         sync.WaitGroup
}

// NewDispatcher creates a webhook dispatcher.
func NewDispatcher(webhooks []Webhook, logger *slog.Logger) *Dispatcher {
	return NewDispatcherWithHTTPClient(webhooks, &http.Client{Timeout: requestTimeout}, logger)
}

// NewDispatcherWithHTTPClient creates a dispatcher with a custom HTTP client (for testing).
func NewDispatcherWithHTTPClient(webhooks []Webhook, httpClient *http.Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		webhooks:   webhooks,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "webhook-dispatcher")),
		backoff:    time.Second,
	}
}

// Subscribe registers the dispatcher for every metadata event type.
func (d *Dispatcher) Subscribe(bus *event.Bus) {
	for _, t := range []event.Type{event.MetadataUploaded, event.MetadataFileCreated, event.MetadataFileRemoved} {
		bus.Subscribe(t, d.HandleEvent)
	}
}

// HandleEvent is an event.Handler that dispatches the event to all matching
// webhooks. Deliveries run in the background.
func (d *Dispatcher) HandleEvent(e event.Event) {
	for i := range d.webhooks {
		w := d.webhooks[i]
		if !w.Matches(string(e.Type)) {
			continue
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(w, e)
		}()
	}
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(w Webhook, e event.Event) {
	body, contentType := formatPayload(&w, e)

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			time.Sleep(d.backoff * time.Duration(1<<uint(attempt-1)))
		}

		lastErr = d.send(w.URL, body, contentType)
		if lastErr == nil {
			d.logger.Debug("webhook delivered",
				"webhook", w.Name,
				"event", string(e.Type),
				"attempt", attempt+1,
			)
			return
		}

		d.logger.Warn("webhook delivery failed",
			"webhook", w.Name,
			"event", string(e.Type),
			"attempt", attempt+1,
			"error", lastErr,
		)
	}

	d.logger.Error("webhook delivery exhausted retries",
		"webhook", w.Name,
		"event", string(e.Type),
		"error", lastErr,
	)
}

func (d *Dispatcher) send(url string, body []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "mintfront-webhook/"+version.Version)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()        //nolint:errcheck
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
