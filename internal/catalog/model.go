package catalog

import "time"

// Entry indexes one metadata file written under the static tree.
type Entry struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Artist    string    `json:"artist"`
	Name      string    `json:"name"`
	URL       string    `json:"url,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
