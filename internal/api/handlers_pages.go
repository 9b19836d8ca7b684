package api

import (
	"net/http"

	"github.com/sydlexius/mintfront/web/templates"
)

func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) {
	renderTempl(w, req, templates.Index(r.assets()))
}

func (r *Router) handleMint(w http.ResponseWriter, req *http.Request) {
	renderTempl(w, req, templates.Mint(r.assets(), templates.MintData{
		UploadURL: r.basePath + "/upload-metadata",
	}))
}

// handleView serves both /view and /view/{address}/{id}. The bare route shows
// token 0 of contract 0.
func (r *Router) handleView(w http.ResponseWriter, req *http.Request) {
	address, id := req.PathValue("address"), req.PathValue("id")
	if address == "" {
		address = "0"
	}
	if id == "" {
		id = "0"
	}
	renderTempl(w, req, templates.View(r.assets(), templates.ViewData{
		ContractAddress: address,
		TokenID:         id,
	}))
}

func (r *Router) handleMarket(w http.ResponseWriter, req *http.Request) {
	var items []templates.MarketItem
	if r.catalog != nil {
		entries, err := r.catalog.List(req.Context())
		if err != nil {
			r.logger.Error("listing catalog for market page", "error", err)
		}
		for _, e := range entries {
			items = append(items, templates.MarketItem{
				Artist:    e.Artist,
				Name:      e.Name,
				Filename:  e.Filename,
				URL:       r.metadataURL(req, e),
				Size:      e.Size,
				UpdatedAt: e.UpdatedAt,
			})
		}
	}
	renderTempl(w, req, templates.Market(r.assets(), templates.MarketData{Items: items}))
}
