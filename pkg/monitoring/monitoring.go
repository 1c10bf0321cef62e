package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sunxi-defe/defe/pkg/config"
	"github.com/sunxi-defe/defe/pkg/logger"
)

type Monitoring struct {
	conf   config.Monitoring
	server *http.Server
	ln     net.Listener
	log    *logger.Logger
}

// New creates new monitoring service.
// Metrics are taken from the given gatherer, usually the registry the
// register sinks are instrumented with.
func New(conf config.Monitoring, gatherer prometheus.Gatherer, log *logger.Logger) *Monitoring {
	if log == nil {
		log = logger.Default()
	}
	log = log.Extend(log.With().Str("service", "monitoring"))

	h := http.NewServeMux()
	if conf.ProfilingEnabled {
		prefix := conf.URLPrefix + "/debug/pprof"
		log.Info().Msgf("Profiling is enabled at %v", prefix)
		h.HandleFunc(prefix+"/", pprof.Index)
		h.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
		h.HandleFunc(prefix+"/profile", pprof.Profile)
		h.HandleFunc(prefix+"/symbol", pprof.Symbol)
		h.HandleFunc(prefix+"/trace", pprof.Trace)
		// named profiles are not routed by Index under a custom prefix
		for _, p := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			h.Handle(prefix+"/"+p, pprof.Handler(p))
		}
	}
	if conf.MetricEnabled {
		path := conf.URLPrefix + "/metrics"
		log.Info().Msgf("Prometheus metric is enabled at %v", path)
		h.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return &Monitoring{
		conf: conf,
		log:  log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", conf.Port),
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the routes of the server.
func (m *Monitoring) Handler() http.Handler { return m.server.Handler }

// Listen binds the server address.
func (m *Monitoring) Listen() error {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return err
	}
	m.ln = ln
	return nil
}

// Addr is the bound address, or the configured one before Listen.
func (m *Monitoring) Addr() string {
	if m.ln != nil {
		return m.ln.Addr().String()
	}
	return m.server.Addr
}

func (m *Monitoring) Run() {
	if m.ln == nil {
		if err := m.Listen(); err != nil {
			m.log.Error().Err(err).Msg("monitoring listen")
			return
		}
	}
	m.log.Info().Msgf("Starting monitoring server at %v", m.Addr())
	go func() {
		if err := m.server.Serve(m.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Msg("monitoring server")
		}
	}()
}

func (m *Monitoring) Shutdown(ctx context.Context) error {
	m.log.Info().Msg("Shutting down monitoring server")
	return m.server.Shutdown(ctx)
}

func (m *Monitoring) String() string {
	return fmt.Sprintf("monitoring::%s:%d", m.conf.URLPrefix, m.conf.Port)
}
