// Command defeagent serves the front end registers of a board to defectl
// running elsewhere.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
	"github.com/sunxi-defe/defe/pkg/config"
	"github.com/sunxi-defe/defe/pkg/defe/regs"
	"github.com/sunxi-defe/defe/pkg/logger"
	"github.com/sunxi-defe/defe/pkg/monitoring"
	dos "github.com/sunxi-defe/defe/pkg/os"
	"github.com/sunxi-defe/defe/pkg/regio"
	"github.com/sunxi-defe/defe/pkg/service"
)

var Version = ""

// Path is where the agent accepts websocket connections.
const Path = "/regs"

type server struct {
	http.Server
	log *logger.Logger
}

func newServer(addr string, agent *regio.Agent, log *logger.Logger) *server {
	mux := http.NewServeMux()
	mux.Handle(Path, agent)
	return &server{
		Server: http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		log:    log,
	}
}

func (s *server) Run() {
	s.log.Info().Msgf("Serving registers at ws://%v%v", s.Addr, Path)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("agent server")
		}
	}()
}

func (s *server) String() string { return "agent::" + s.Addr }

// openSink maps the device, or makes a register file in memory.
func openSink(conf config.Config, inMemory bool) (regio.Sink, func() error, error) {
	if inMemory {
		return regio.NewMem(regs.Size), func() error { return nil }, nil
	}
	path := conf.Device.Lock
	if path == "" {
		path = dos.LockPath(conf.Device.Path)
	}
	lock, err := dos.NewFileLock(path)
	if err != nil {
		return nil, nil, err
	}
	if err = lock.TryLock(); err != nil {
		return nil, nil, err
	}
	base, size, err := conf.Device.Region()
	if err == nil {
		var m *regio.MMIO
		if m, err = regio.OpenMMIO(conf.Device.Path, base, size); err == nil {
			return m, func() error { return errors.Join(m.Close(), lock.Unlock()) }, nil
		}
	}
	_ = lock.Unlock()
	return nil, nil, err
}

func run() error {
	conf, err := config.NewConfig("")
	if err != nil {
		return err
	}
	fs := flag.CommandLine
	inMemory := fs.Bool("mem", false, "Serve an in-memory register file instead of the device")
	noColor := fs.Bool("no-color", false, "Plain log output")
	conf.WithFlags(fs)
	flag.Parse()

	log := logger.NewConsole(conf.Debug, "agent", *noColor)
	log.Info().Msgf("version: %v", Version)

	sink, closeSink, err := openSink(conf, *inMemory)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.Error().Err(err).Msg("device close")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	instrumented, err := regio.NewInstrumented(sink, reg)
	if err != nil {
		return err
	}

	var services service.Group
	services.Add(newServer(conf.Agent.Address, regio.NewAgent(instrumented, log), log))
	if conf.Monitoring.IsEnabled() {
		services.Add(monitoring.New(conf.Monitoring, reg, log))
	}
	services.Start()

	<-dos.ExpectTermination()
	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return services.Shutdown(ctx)
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "defeagent: %v\n", err)
		os.Exit(1)
	}
}
