package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkarlsen/fedsync/internal/metrics"
	"github.com/mkarlsen/fedsync/internal/sync"
)

// Router provides the HTTP handlers for the sync pipeline.
// Endpoints:
//
//	GET  /api/v1/sync/check    query: force=true (optional)
//	POST /api/v1/sync/run      body: {"force": bool} (optional)
//	PUT  /api/v1/sync/config   body: UpdateConfigParams JSON
//	GET  /api/v1/sync/status
//	GET  /healthz
//	GET  /metrics
type Router struct {
	svc *sync.Service
}

// NewRouter constructs a Router around the sync service.
func NewRouter(svc *sync.Service) *Router {
	return &Router{svc: svc}
}

// Handler returns an http.Handler powered by gin that can be mounted in
// any server/mux.
func (r *Router) Handler() http.Handler {
	metrics.Register(prometheus.DefaultRegisterer)

	g := gin.New()
	g.Use(gin.Recovery())

	api := g.Group("/api/v1/sync")
	api.GET("/check", r.handleCheck)
	api.POST("/run", r.handleRun)
	api.PUT("/config", r.handleConfig)
	api.GET("/status", r.handleStatus)

	g.GET("/healthz", r.handleHealth)
	g.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Shut it down via http.Server's Shutdown or Close.
func NewServer(addr string, svc *sync.Service) *http.Server {
	r := NewRouter(svc)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// A forced sync run blocks the request until the full scrape
		// finishes; give it room.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

type errorResp struct {
	Error string `json:"error"`
}

func (r *Router) handleCheck(c *gin.Context) {
	force := c.Query("force") == "true"
	res, err := r.svc.CheckSyncNeeded(c.Request.Context(), force)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

type runReq struct {
	Force bool `json:"force"`
}

func (r *Router) handleRun(c *gin.Context) {
	var req runReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
			return
		}
	}
	res := r.svc.RunSync(c.Request.Context(), req.Force)
	c.JSON(statusFor(res), res)
}

// statusFor maps a run outcome to an HTTP status. Refusals are
// conflicts, a missing configuration is the caller's problem, and
// anything else that failed is a server error.
func statusFor(res sync.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.State {
	case sync.StateNeverConfigured:
		return http.StatusBadRequest
	case sync.StateDisabled, sync.StateUpToDate, sync.StateRunning:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) handleConfig(c *gin.Context) {
	var params sync.UpdateConfigParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	cfg, err := r.svc.UpdateConfig(c.Request.Context(), params)
	if err != nil {
		var verr *sync.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, errorResp{Error: verr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (r *Router) handleStatus(c *gin.Context) {
	meta, err := r.svc.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, errorResp{Error: "no sync has run yet"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (r *Router) handleHealth(c *gin.Context) {
	if err := r.svc.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
