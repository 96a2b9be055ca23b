// Package router assembles the versioned HTTP API from route groups.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultAPIVersion = "v1"

// RouteRegistrar mounts its routes on a parent gin group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion replaces the "v1" path segment
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router for engine
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: defaultAPIVersion}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars; nothing is mounted until Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every queued registrar
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Route is one method/path binding of a DomainGroup
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// DomainGroup collects the routes of one area of the API under a common
// prefix. Groups nest; middleware added with Use applies to nested groups too.
type DomainGroup struct {
	name       string
	prefix     string
	routes     []Route
	children   []*DomainGroup
	middleware []gin.HandlerFunc
}

// NewDomainGroup creates an empty group mounted at prefix
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Name returns the group name
func (dg *DomainGroup) Name() string { return dg.name }

// Prefix returns the path prefix relative to the parent
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// Routes returns the routes added directly to this group
func (dg *DomainGroup) Routes() []Route { return dg.routes }

// Use appends middleware run before every handler of the group
func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, mw...)
	return dg
}

// Handle adds a route for an arbitrary method
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, Route{Method: method, Path: path, Handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, h...)
}

func (dg *DomainGroup) POST(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, h...)
}

func (dg *DomainGroup) PUT(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, h...)
}

func (dg *DomainGroup) PATCH(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, path, h...)
}

func (dg *DomainGroup) DELETE(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, h...)
}

// Group nests a new group under this one and returns it
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	dg.children = append(dg.children, child)
	return child
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.Method, route.Path, route.Handlers...)
	}
	for _, child := range dg.children {
		child.RegisterRoutes(group)
	}
}
