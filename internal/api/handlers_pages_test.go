package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/sydlexius/mintfront/internal/catalog"
)

func TestPages_OK(t *testing.T) {
	env := testRouter(t)
	for _, path := range []string{"/", "/mint", "/market", "/view"} {
		t.Run(path, func(t *testing.T) {
			w := env.do(http.MethodGet, path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
			if w.Body.Len() == 0 {
				t.Error("empty body")
			}
		})
	}
}

func TestView_PathValues(t *testing.T) {
	env := testRouter(t)
	w := env.do(http.MethodGet, "/view/0xABC/42", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"0xABC", "42"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestView_Defaults(t *testing.T) {
	env := testRouter(t)
	body := env.do(http.MethodGet, "/view", "").Body.String()
	if !strings.Contains(body, `data-contract-address="0"`) || !strings.Contains(body, `data-token-id="0"`) {
		t.Errorf("defaults not rendered: %s", body)
	}
}

func TestMint_UploadURL(t *testing.T) {
	env := testRouter(t)
	body := env.do(http.MethodGet, "/mint", "").Body.String()
	if !strings.Contains(body, `data-upload-url="/upload-metadata"`) {
		t.Error("mint form missing upload URL")
	}
	if !strings.Contains(body, "/static/js/mint.js?v=") {
		t.Error("mint script not cache-busted")
	}
}

func TestMarket_ListsCatalog(t *testing.T) {
	env := testRouter(t)
	if err := env.catalog.Upsert(context.Background(), &catalog.Entry{
		Filename: "Alice-Cat.json",
		Artist:   "Alice",
		Name:     "Cat",
		Size:     42,
	}); err != nil {
		t.Fatal(err)
	}

	body := env.do(http.MethodGet, "/market", "").Body.String()
	if !strings.Contains(body, "Alice") || !strings.Contains(body, "http://example.com/static/NFTs/Alice-Cat.json") {
		t.Errorf("market page missing entry: %s", body)
	}
}

func TestMarket_NoCatalog(t *testing.T) {
	env := testRouter(t, func(d *RouterDeps) { d.Catalog = nil })
	w := env.do(http.MethodGet, "/market", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No NFTs have been minted yet.") {
		t.Error("expected empty listing")
	}
}
