package api

import (
	"log/slog"
	"net/http"

	"github.com/sydlexius/mintfront/internal/api/middleware"
	"github.com/sydlexius/mintfront/internal/catalog"
	"github.com/sydlexius/mintfront/internal/event"
	"github.com/sydlexius/mintfront/internal/icon"
	"github.com/sydlexius/mintfront/internal/maintenance"
	"github.com/sydlexius/mintfront/internal/metadata"
)

const defaultMaxBodyBytes = 1 << 20

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Store         *metadata.Store
	Catalog       *catalog.Service
	EventBus      *event.Bus
	Maintenance   *maintenance.Service
	UploadLimiter *middleware.RateLimiter
	Logger        *slog.Logger
	BasePath      string
	PublicURL     string
	StaticDir     string
	CORSOrigins   []string
	MaxBodyBytes  int64
}

// Router sets up all HTTP routes for the application.
type Router struct {
	store         *metadata.Store
	catalog       *catalog.Service
	eventBus      *event.Bus
	maintenance   *maintenance.Service
	uploadLimiter *middleware.RateLimiter
	logger        *slog.Logger
	basePath      string
	publicURL     string
	corsOrigins   []string
	maxBodyBytes  int64
	staticAssets  *StaticAssets
	icons         *icon.Cache
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Router{
		store:         deps.Store,
		catalog:       deps.Catalog,
		eventBus:      deps.EventBus,
		maintenance:   deps.Maintenance,
		uploadLimiter: deps.UploadLimiter,
		logger:        deps.Logger,
		basePath:      deps.BasePath,
		publicURL:     deps.PublicURL,
		corsOrigins:   deps.CORSOrigins,
		maxBodyBytes:  maxBody,
		staticAssets:  NewStaticAssets(deps.StaticDir, deps.BasePath, deps.Logger),
		icons:         icon.NewCache(),
	}
}

// RescanStatic recomputes the content hashes of page assets.
func (r *Router) RescanStatic() {
	r.staticAssets.Rescan()
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	bp := r.basePath

	mux.Handle("GET "+bp+"/static/", r.staticAssets.Handler())
	mux.HandleFunc("GET "+bp+"/favicon.png", r.handleFavicon)
	mux.HandleFunc("GET "+bp+"/icons/{file}", r.handleIcon)

	// Pages
	mux.HandleFunc("GET "+bp+"/{$}", r.handleIndex)
	mux.HandleFunc("GET "+bp+"/mint", r.handleMint)
	mux.HandleFunc("GET "+bp+"/view", r.handleView)
	mux.HandleFunc("GET "+bp+"/view/{address}/{id}", r.handleView)
	mux.HandleFunc("GET "+bp+"/market", r.handleMarket)

	// Metadata
	var upload http.Handler = http.HandlerFunc(r.handleUploadMetadata)
	if r.uploadLimiter != nil {
		upload = r.uploadLimiter.Middleware(upload)
	}
	mux.Handle("POST "+bp+"/upload-metadata", upload)
	mux.HandleFunc("GET "+bp+"/api/v1/metadata", r.handleListMetadata)
	mux.HandleFunc("GET "+bp+"/api/v1/metadata/{filename}", r.handleGetMetadata)

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)
	if r.maintenance != nil {
		mux.HandleFunc("GET "+bp+"/api/v1/maintenance", r.handleMaintenanceStatus)
	}

	var h http.Handler = mux
	h = middleware.CORS(r.corsOrigins, r.logger)(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.Logging(r.logger)(h)
	h = middleware.Recovery(r.logger)(h)
	return h
}
