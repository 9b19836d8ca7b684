package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/sydlexius/mintfront/internal/event"
)

// formatPayload returns the request body and content-type for a webhook delivery.
func formatPayload(w *Webhook, e event.Event) ([]byte, string) {
	switch w.Type {
	case TypeDiscord:
		return formatDiscord(e)
	case TypeSlack:
		return formatSlack(e)
	case TypeGotify:
		return formatGotify(e)
	default:
		return formatGeneric(e)
	}
}

func formatGeneric(e event.Event) ([]byte, string) {
	payload := map[string]any{
		"event":     string(e.Type),
		"timestamp": e.Timestamp,
		"data":      e.Data,
	}
	body, _ := json.Marshal(payload)
	return body, "application/json"
}

func formatDiscord(e event.Event) ([]byte, string) {
	payload := map[string]any{
		"embeds": []map[string]any{
			{
				"title":       fmt.Sprintf("mintfront: %s", e.Type),
				"description": formatDescription(e),
				"color":       8141549, // #7C3AED
				"timestamp":   e.Timestamp.Format("2006-01-02T15:04:05Z"),
			},
		},
	}
	body, _ := json.Marshal(payload)
	return body, "application/json"
}

func formatSlack(e event.Event) ([]byte, string) {
	text := fmt.Sprintf("*mintfront: %s*\n%s", e.Type, formatDescription(e))
	body, _ := json.Marshal(map[string]any{"text": text})
	return body, "application/json"
}

func formatGotify(e event.Event) ([]byte, string) {
	payload := map[string]any{
		"title":   fmt.Sprintf("mintfront: %s", e.Type),
		"message": formatDescription(e),
	}
	body, _ := json.Marshal(payload)
	return body, "application/json"
}

// formatDescription renders a one-line human summary of a metadata event.
func formatDescription(e event.Event) string {
	filename := e.String("filename")
	if filename == "" {
		if e.Data == nil {
			return string(e.Type)
		}
		b, _ := json.Marshal(e.Data)
		return string(b)
	}

	switch e.Type {
	case event.MetadataUploaded:
		if u := e.String("url"); u != "" {
			return fmt.Sprintf("%s uploaded: %s", filename, u)
		}
		return filename + " uploaded"
	case event.MetadataFileCreated:
		return filename + " written"
	case event.MetadataFileRemoved:
		return filename + " removed"
	default:
		return filename
	}
}
