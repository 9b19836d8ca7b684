package webhook

import (
	"testing"

	"github.com/sydlexius/mintfront/internal/event"
)

func TestWebhook_Validate(t *testing.T) {
	tests := []struct {
		name    string
		hook    Webhook
		wantErr bool
	}{
		{"generic", Webhook{Name: "a", URL: "https://hooks.example.com/x"}, false},
		{"slack", Webhook{Name: "a", URL: "http://localhost:8080/hook", Type: TypeSlack}, false},
		{"no scheme", Webhook{Name: "a", URL: "hooks.example.com"}, true},
		{"ftp", Webhook{Name: "a", URL: "ftp://hooks.example.com"}, true},
		{"unknown type", Webhook{Name: "a", URL: "https://hooks.example.com", Type: "teams"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.hook.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWebhook_Matches(t *testing.T) {
	all := Webhook{}
	if !all.Matches(string(event.MetadataFileCreated)) {
		t.Error("empty event list should match everything")
	}
	some := Webhook{Events: []string{string(event.MetadataUploaded)}}
	if !some.Matches(string(event.MetadataUploaded)) || some.Matches(string(event.MetadataFileRemoved)) {
		t.Error("event filter not applied")
	}
}

func TestFormatDescription(t *testing.T) {
	tests := []struct {
		e    event.Event
		want string
	}{
		{event.Event{Type: event.MetadataFileCreated, Data: map[string]any{"filename": "A-B.json"}}, "A-B.json written"},
		{event.Event{Type: event.MetadataFileRemoved, Data: map[string]any{"filename": "A-B.json"}}, "A-B.json removed"},
		{event.Event{Type: event.MetadataUploaded, Data: map[string]any{"filename": "A-B.json"}}, "A-B.json uploaded"},
		{event.Event{Type: event.MetadataUploaded}, "metadata.uploaded"},
	}
	for _, tt := range tests {
		if got := formatDescription(tt.e); got != tt.want {
			t.Errorf("formatDescription(%v) = %q, want %q", tt.e.Type, got, tt.want)
		}
	}
}
