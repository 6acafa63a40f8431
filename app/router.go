package app

import (
	"regexp"

	"github.com/commonpool/pool"
	"github.com/commonpool/pool/errors"
)

var isPath = regexp.MustCompile(`^[a-z0-9_/]{4,32}$`).MatchString

// Router maps message paths to handlers.
type Router struct {
	routes map[string]pool.Handler
}

var _ pool.Registry = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]pool.Handler),
	}
}

// Handle adds a route, panics on duplicates or invalid paths. Routing
// is set up once at construction, a bad route is a programming error.
func (r *Router) Handle(path string, h pool.Handler) {
	if !isPath(path) {
		panic("invalid path: " + path)
	}
	if _, ok := r.routes[path]; ok {
		panic("duplicate path: " + path)
	}
	r.routes[path] = h
}

// Handler returns the registered handler, or the notFoundHandler which
// rejects everything with ErrNotFound.
func (r *Router) Handler(path string) pool.Handler {
	h, ok := r.routes[path]
	if !ok {
		return notFoundHandler(path)
	}
	return h
}

// notFoundHandler always returns ErrNotFound carrying the missing
// path.
type notFoundHandler string

var _ pool.Handler = notFoundHandler("")

func (p notFoundHandler) Check(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", string(p))
}

func (p notFoundHandler) Deliver(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", string(p))
}
