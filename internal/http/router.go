package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthzRoute 存活探针
func (r *Router) RegisterHealthzRoute() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
}

// RegisterTaxonomyRoutes 目录只读接口
func (r *Router) RegisterTaxonomyRoutes(h *TaxonomyHandler) {
	const prefix = "/api/v1/taxonomy"

	r.Handle(prefix, methodGuard(http.MethodGet, h.GetTaxonomy))
	r.Handle(prefix+"/categories", methodGuard(http.MethodGet, h.ListCategories))
	r.Handle(prefix+"/biomarkers", methodGuard(http.MethodGet, h.ListBiomarkers))
	r.Handle(prefix+"/data-sources", methodGuard(http.MethodGet, h.ListDataSources))
	r.Handle(prefix+"/weights", methodGuard(http.MethodGet, h.ListWeights))
	r.Handle(prefix+"/export", methodGuard(http.MethodGet, h.Export))

	// categories/{name}/biomarkers
	r.Handle(prefix+"/categories/", methodGuard(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, prefix+"/categories/")
		name, tail, ok := strings.Cut(rest, "/")
		if !ok || name == "" || tail != "biomarkers" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.ListCategoryBiomarkers(w, req, name)
	}))

	// weights/{code}
	r.Handle(prefix+"/weights/", methodGuard(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		code := strings.TrimPrefix(req.URL.Path, prefix+"/weights/")
		if code == "" || strings.Contains(code, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetWeight(w, req, code)
	}))
}

// RegisterHealthRoutes 健康数据快照与外部健康指数
func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/api/v1/health/snapshot", methodGuard(http.MethodGet, h.GetSnapshot))
	r.Handle("/api/v1/health/index", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.GetIndex(w, req)
		case http.MethodPut:
			h.PutIndex(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
