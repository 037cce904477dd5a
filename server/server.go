// Package server exposes a simulator over HTTP.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
	"github.com/vkngwrapper/heapsim/trace"
)

const (
	DefaultTickInterval = 50 * time.Millisecond
	DefaultTraceLimit   = 1000
)

// Options contains optional settings for a Server
type Options struct {
	// Limits clamps requested allocation sizes. The zero value uses heap.DefaultSizeLimits.
	Limits heap.SizeLimits
	// DefaultSize is used for allocation requests without a size. Zero uses heap.DefaultAllocationSize.
	DefaultSize int
	// DefaultStrategy is used for allocation requests without a strategy. Zero uses first fit.
	DefaultStrategy metadata.AllocationStrategy
	// TraceLimit is the number of trace records kept for /api/trace. Zero uses DefaultTraceLimit.
	TraceLimit int
	// TickInterval is how often RunClock advances the engine. Zero uses DefaultTickInterval.
	TickInterval time.Duration
}

// Server serves one simulator. Requests and the clock are serialized so that the engine never
// moves while a request is scheduling phases.
type Server struct {
	logger *slog.Logger
	sim    *heap.Simulator
	engine timing.Engine
	trace  *trace.MemoryWriter

	limits          heap.SizeLimits
	defaultSize     int
	defaultStrategy metadata.AllocationStrategy
	tickInterval    time.Duration

	lock   sync.Mutex
	router chi.Router
}

// New creates a Server for sim, which must schedule its phases on engine
func New(logger *slog.Logger, sim *heap.Simulator, engine timing.Engine, options Options) *Server {
	if options.Limits == (heap.SizeLimits{}) {
		options.Limits = heap.DefaultSizeLimits
	}
	if options.DefaultSize == 0 {
		options.DefaultSize = heap.DefaultAllocationSize
	}
	if options.DefaultStrategy == 0 {
		options.DefaultStrategy = metadata.AllocationStrategyFirstFit
	}
	if options.TraceLimit == 0 {
		options.TraceLimit = DefaultTraceLimit
	}
	if options.TickInterval == 0 {
		options.TickInterval = DefaultTickInterval
	}

	s := &Server{
		logger:          logger,
		sim:             sim,
		engine:          engine,
		trace:           trace.NewMemoryWriter(options.TraceLimit),
		limits:          options.Limits,
		defaultSize:     options.Limits.Clamp(options.DefaultSize),
		defaultStrategy: options.DefaultStrategy,
		tickInterval:    options.TickInterval,
	}
	sim.AcceptHook(trace.NewTracer(s.trace))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Get("/heap", s.getHeap)
		r.Post("/allocate", s.allocate)
		r.Post("/blocks/{id}/free", s.free)
		r.Post("/reset", s.reset)
		r.Get("/trace", s.getTrace)
	})
	s.router = r

	return s
}

// Handler returns the HTTP handler for the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// RunClock advances the engine by the wall time that has passed, once per tick, until ctx is done
func (s *Server) RunClock(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.lock.Lock()
			err := s.engine.Advance(now.Sub(last))
			s.lock.Unlock()
			last = now

			if err != nil {
				s.logger.LogAttrs(ctx, slog.LevelError, "engine advance failed", slog.Any("error", err))
			}
		}
	}
}

// Serve runs the clock and serves the API on listener until ctx is done
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	clockCtx, stopClock := context.WithCancel(ctx)
	defer stopClock()
	go s.RunClock(clockCtx)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.LogAttrs(ctx, slog.LevelInfo, "serving heap simulator", slog.String("addr", listener.Addr().String()))

	err := httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
