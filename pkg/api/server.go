package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yomikata/yomikata/pkg/catalog"
	"github.com/yomikata/yomikata/pkg/httputil"
	"github.com/yomikata/yomikata/pkg/observability"
)

// Server represents our API server
type Server struct {
	catalog *catalog.Service
	router  *mux.Router
	log     *logrus.Logger
	metrics *observability.Metrics

	// repoURL is the default extension repository, used when a request
	// does not carry ?repo_url=.
	repoURL string

	// dispatchTimeout bounds one catalog read against an extension.
	dispatchTimeout time.Duration
}

// Options configures optional server collaborators.
type Options struct {
	Metrics         *observability.Metrics
	AllowedOrigins  []string
	DispatchTimeout time.Duration
}

// NewServer creates a new API server
func NewServer(svc *catalog.Service, repoURL string, log *logrus.Logger, opts Options) *Server {
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		catalog:         svc,
		router:          mux.NewRouter(),
		log:             log,
		metrics:         opts.Metrics,
		repoURL:         repoURL,
		dispatchTimeout: opts.DispatchTimeout,
	}

	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(log))
	s.router.Use(httputil.RecoveryMiddleware(log))
	if len(opts.AllowedOrigins) > 0 {
		s.router.Use(httputil.CORSMiddleware(opts.AllowedOrigins))
	}
	if s.metrics != nil {
		s.router.Use(mux.MiddlewareFunc(s.metrics.Middleware(routeTemplate)))
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	// Lifecycle and listing routes
	s.router.HandleFunc("/api/sources", s.listInstalledSources).Methods("GET")
	s.router.HandleFunc("/api/sources/available", s.listAvailableSources).Methods("GET")
	s.router.HandleFunc("/api/sources/updates", s.checkUpdates).Methods("GET")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}", s.getSource).Methods("GET")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}", s.uninstallSource).Methods("DELETE")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}/install", s.installSource).Methods("POST")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}/update", s.updateSource).Methods("POST")

	// Catalog dispatch routes
	s.router.HandleFunc("/api/sources/{id:[0-9]+}/popular", s.getPopularManga).Methods("GET")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}/latest", s.getLatestManga).Methods("GET")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}/search", s.searchManga).Methods("GET")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}/manga", s.getMangaDetail).Methods("GET")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}/chapters", s.getChapters).Methods("GET")
	s.router.HandleFunc("/api/sources/{id:[0-9]+}/pages", s.getPages).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routeTemplate resolves the mux route pattern for metric labels, keeping
// cardinality bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
