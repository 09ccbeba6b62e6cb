package http

import (
	"context"
	"net/http"

	"github.com/w-h-a/roomrag/server"
)

type middlewareKey struct{}

func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

type routesKey struct{}

// WithRoutes registers the handler whose routes the server mounts.
func WithRoutes(r Routes) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, routesKey{}, r)
	}
}

func RoutesFrom(ctx context.Context) (Routes, bool) {
	r, ok := ctx.Value(routesKey{}).(Routes)
	return r, ok
}
