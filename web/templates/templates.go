// Package templates holds the site's templ page components and the types
// handlers fill in for them.
package templates

import "time"

// AssetPaths holds the cache-busted URLs of static assets referenced by the
// layout and page scripts.
type AssetPaths struct {
	BasePath string
	CSS      string
	MintJS   string
	Favicon  string
}

// MintData is the context for the mint page.
type MintData struct {
	UploadURL string
}

// ViewData is the context for the NFT display page.
type ViewData struct {
	ContractAddress string
	TokenID         string
}

// MarketItem is one metadata file shown on the market page.
type MarketItem struct {
	Artist    string
	Name      string
	Filename  string
	URL       string
	Size      int64
	UpdatedAt time.Time
}

// MarketData is the context for the market page.
type MarketData struct {
	Items []MarketItem
}
