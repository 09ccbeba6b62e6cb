package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/w-h-a/roomrag/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Routes mounts endpoints on a router.
type Routes interface {
	Register(r *mux.Router)
}

type httpServer struct {
	options server.Options
	router  *mux.Router
	handler http.Handler
	addr    string
	mtx     sync.RWMutex
}

func (s *httpServer) Handler() http.Handler {
	return s.handler
}

func (s *httpServer) Address() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if len(s.addr) > 0 {
		return s.addr
	}
	return s.options.Address
}

// Start serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *httpServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	s.addr = ln.Addr().String()
	s.mtx.Unlock()

	srv := &http.Server{
		Handler: s.handler,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errCh := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "http server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.options.ShutdownTimeout)
	defer cancel()

	slog.InfoContext(ctx, "http server shutting down", "address", s.Address())

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

func NewServer(opts ...server.Option) *httpServer {
	options := server.NewOptions(opts...)

	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if routes, ok := RoutesFrom(options.Context); ok {
		routes.Register(router)
	}

	var handler http.Handler = router

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	handler = otelhttp.NewHandler(handler, "roomrag")

	return &httpServer{
		options: options,
		router:  router,
		handler: handler,
	}
}
