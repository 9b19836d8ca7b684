package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sydlexius/mintfront/internal/catalog"
	"github.com/sydlexius/mintfront/internal/database"
	"github.com/sydlexius/mintfront/internal/event"
	"github.com/sydlexius/mintfront/internal/maintenance"
	"github.com/sydlexius/mintfront/internal/metadata"
)

type testEnv struct {
	db        *sql.DB
	router    *Router
	handler   http.Handler
	staticDir string
	nftDir    string
	store     *metadata.Store
	catalog   *catalog.Service
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testRouter creates a Router over a temporary static tree and an in-memory
// catalog. The event bus is running and feeds the catalog indexer.
func testRouter(t *testing.T, mutate ...func(*RouterDeps)) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	staticDir := t.TempDir()
	writeTestFile(t, filepath.Join(staticDir, "css", "styles.css"), "body{}")
	writeTestFile(t, filepath.Join(staticDir, "js", "mint.js"), "// mint")

	logger := testLogger()
	store := metadata.NewStore(filepath.Join(staticDir, "NFTs"), false)
	if err := store.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	catalogSvc := catalog.NewService(db)

	bus := event.NewBus(logger, 16)
	catalog.NewIndexer(catalogSvc, store, logger).Subscribe(bus)
	go bus.Start()
	t.Cleanup(func() {
		bus.Stop()
		bus.Wait()
	})

	deps := RouterDeps{
		Store:     store,
		Catalog:   catalogSvc,
		EventBus:  bus,
		Logger:    logger,
		StaticDir: staticDir,
	}
	for _, m := range mutate {
		m(&deps)
	}

	r := NewRouter(deps)
	return &testEnv{
		db:        db,
		router:    r,
		handler:   r.Handler(),
		staticDir: staticDir,
		nftDir:    store.Dir(),
		store:     store,
		catalog:   catalogSvc,
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := testRouter(t)
	w := env.do(http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	env := testRouter(t)
	for _, path := range []string{"/nope", "/view/only-one", "/mint/extra"} {
		if w := env.do(http.MethodGet, path, ""); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestMiddlewareApplied(t *testing.T) {
	env := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://wallet.example")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestBasePath(t *testing.T) {
	env := testRouter(t, func(d *RouterDeps) { d.BasePath = "/nft" })

	if w := env.do(http.MethodGet, "/nft/", ""); w.Code != http.StatusOK {
		t.Errorf("GET /nft/ = %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/mint", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET /mint without base path = %d, want 404", w.Code)
	}

	w := env.do(http.MethodPost, "/nft/upload-metadata", `{"name":"Cat","artist":"Alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http://example.com/nft/static/NFTs/Alice-Cat.json") {
		t.Errorf("body = %s", w.Body.String())
	}
	if w := env.do(http.MethodGet, "/nft/static/NFTs/Alice-Cat.json", ""); w.Code != http.StatusOK {
		t.Errorf("GET uploaded file under base path = %d", w.Code)
	}
}

func TestIcons(t *testing.T) {
	env := testRouter(t)

	w := env.do(http.MethodGet, "/favicon.png", "")
	if w.Code != http.StatusOK {
		t.Fatalf("favicon status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}

	if w := env.do(http.MethodGet, "/icons/192.png", ""); w.Code != http.StatusOK {
		t.Errorf("GET /icons/192.png = %d", w.Code)
	}
	for _, path := range []string{"/icons/17.png", "/icons/32.gif", "/icons/big.png"} {
		if w := env.do(http.MethodGet, path, ""); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestMaintenanceStatus(t *testing.T) {
	env := testRouter(t)
	if w := env.do(http.MethodGet, "/api/v1/maintenance", ""); w.Code != http.StatusNotFound {
		t.Errorf("without a maintenance service: status = %d, want 404", w.Code)
	}

	env = testRouter(t)
	logger := testLogger()
	env.router.maintenance = maintenance.NewService(env.db, ":memory:", catalog.NewIndexer(env.catalog, env.store, logger), logger)
	env.handler = env.router.Handler()
	if err := env.router.maintenance.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	w := env.do(http.MethodGet, "/api/v1/maintenance", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"last_run_at"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}
