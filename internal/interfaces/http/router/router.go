package router

import (
	"net/http"

	"github.com/academy/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAPIMiddleware adds middleware applied to every versioned route,
// typically authentication
func WithAPIMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, middleware...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup creates a route group for a specific domain
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:       name,
		prefix:     prefix,
		routes:     make([]routeDefinition, 0),
		subgroups:  make([]*DomainGroup, 0),
		middleware: make([]gin.HandlerFunc, 0),
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:   method,
		path:     path,
		handlers: handlers,
	})
	return dg
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}

	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// BillingRoutes mounts the ledger, payment and charge endpoints. limit
// guards the write routes and may be nil.
func BillingRoutes(h *handler.BillingHandler, limit gin.HandlerFunc) *DomainGroup {
	writes := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if limit == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{limit, fn}
	}

	billing := NewDomainGroup("billing", "")
	billing.GET("/charge-types", h.ListChargeTypes)

	billing.Group("enrollments", "/enrollments").
		GET("/:id/ledger", h.GetLedger).
		GET("/:id/allocation-suggestion", h.SuggestAllocations).
		POST("/:id/payments", writes(h.PostPayment)...).
		POST("/:id/charges", writes(h.CreateCharge)...)

	billing.Group("charges", "/charges").
		POST("/:id/void", writes(h.VoidCharge)...)

	return billing
}

// CollectionsRoutes mounts the worklist, dashboard and report endpoints
func CollectionsRoutes(h *handler.CollectionsHandler) *DomainGroup {
	collections := NewDomainGroup("collections", "").
		GET("/pending", h.ListPending).
		GET("/teams", h.ListTeams).
		GET("/dashboard", h.GetDashboard)

	collections.Group("reports", "/reports").
		GET("/daily-cut", h.DailyCut).
		GET("/monthly-summary", h.MonthlySummary)

	return collections
}

// RegisterSystemRoutes mounts the unauthenticated probes at the root
func RegisterSystemRoutes(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
}
