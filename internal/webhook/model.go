package webhook

import (
	"fmt"
	"net/url"
	"slices"
)

// Webhook represents a configured outbound notification endpoint.
type Webhook struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
	Type string `yaml:"type" json:"type"`
	// Events lists the event types delivered to this endpoint. Empty means
	// every metadata event.
	Events []string `yaml:"events" json:"events,omitempty"`
}

// Webhook types.
const (
	TypeGeneric = "generic"
	TypeDiscord = "discord"
	TypeSlack   = "slack"
	TypeGotify  = "gotify"
)

// Validate checks the endpoint URL and type.
func (w *Webhook) Validate() error {
	u, err := url.Parse(w.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook %q: invalid url %q", w.Name, w.URL)
	}
	switch w.Type {
	case "", TypeGeneric, TypeDiscord, TypeSlack, TypeGotify:
	default:
		return fmt.Errorf("webhook %q: unknown type %q", w.Name, w.Type)
	}
	return nil
}

// Matches reports whether the webhook subscribes to eventType.
func (w *Webhook) Matches(eventType string) bool {
	return len(w.Events) == 0 || slices.Contains(w.Events, eventType)
}
