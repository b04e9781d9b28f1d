package accounts

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux and chi.Router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Path returns the route of op relative to the base path.
func (p Paths) Path(op Operation) string {
	switch op {
	case OpRegister:
		return p.Register
	case OpLogin:
		return p.Login
	case OpRequestReset:
		return p.RequestReset
	case OpPerformReset:
		return p.PerformReset
	}
	return ""
}

// MountPath returns the full mount path of op under basePath.
func MountPath(basePath string, op Operation, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.Paths.Path(op))
}

// Endpoint returns the URL the forms of op post to.
func (c *Component) Endpoint(op Operation) string {
	return mountPath(c.opts.BasePath, c.opts.Paths.Path(op))
}

// RegisterRoutes registers the four operation handlers and the token
// handler under basePath on mux. An empty basePath uses the configured one.
func (c *Component) RegisterRoutes(mux Mux, basePath string) ([]string, error) {
	if mux == nil {
		return nil, fmt.Errorf("accounts: missing mux")
	}
	if strings.TrimSpace(basePath) == "" {
		basePath = c.opts.BasePath
	}
	patterns := make([]string, 0, len(Operations())+1)
	for _, op := range Operations() {
		pattern := mountPath(basePath, c.opts.Paths.Path(op))
		mux.Handle(pattern, c.Handler(op))
		patterns = append(patterns, pattern)
	}
	pattern := mountPath(basePath, c.opts.Paths.Token)
	mux.Handle(pattern, c.TokenHandler())
	return append(patterns, pattern), nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
