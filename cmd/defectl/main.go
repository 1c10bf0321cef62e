// Command defectl programs a display engine front end: it converts a tiled
// YUV420 input of one size into ARGB8888 frames of another.
package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	flag "github.com/spf13/pflag"
	"github.com/sunxi-defe/defe/pkg/config"
	"github.com/sunxi-defe/defe/pkg/defe"
	"github.com/sunxi-defe/defe/pkg/defe/regs"
	"github.com/sunxi-defe/defe/pkg/logger"
	dos "github.com/sunxi-defe/defe/pkg/os"
	"github.com/sunxi-defe/defe/pkg/preview"
	"github.com/sunxi-defe/defe/pkg/regio"
)

var Version = ""

// errNoInterval refuses back to back frame starts, the previous frame may
// still be in flight.
var errNoInterval = errors.New("--frames above 1 needs an --interval")

type options struct {
	dir      string
	dryRun   bool
	asJSON   bool
	frames   int
	interval time.Duration
	preview  string
	noColor  bool
}

// sink is an opened register file with its cleanup.
type sink struct {
	regio.Sink
	close func() error
}

func confDir(args []string) string {
	fs := flag.NewFlagSet("defectl", flag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	dir := fs.StringP("conf", "c", "", "")
	_ = fs.Parse(args)
	return *dir
}

func parse(args []string, stderr io.Writer) (conf config.Config, opts options, err error) {
	if conf, err = config.NewConfig(confDir(args)); err != nil {
		return
	}
	fs := flag.NewFlagSet("defectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.dir, "conf", "c", "", "Directory with defe.yaml")
	fs.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Program an in-memory register file and print the writes")
	fs.BoolVar(&opts.asJSON, "json", false, "Print the dry run writes as JSON")
	fs.IntVar(&opts.frames, "frames", 1, "Number of frames to start")
	fs.DurationVar(&opts.interval, "interval", 0, "Pause between frame starts, required with --frames above 1")
	fs.StringVar(&opts.preview, "preview", "", "Render a colour bar frame through the programmed registers into a PNG file")
	fs.BoolVar(&opts.noColor, "no-color", false, "Plain log output")
	conf.WithFlags(fs)
	if err = fs.Parse(args); err != nil {
		return
	}
	if opts.frames > 1 && opts.interval <= 0 {
		err = errNoInterval
	}
	return
}

func open(ctx context.Context, conf config.Config, opts options, log *logger.Logger) (*sink, error) {
	if opts.dryRun {
		return &sink{Sink: regio.NewMem(regs.Size), close: func() error { return nil }}, nil
	}
	if conf.Agent.Remote != "" {
		r, err := regio.Dial(ctx, conf.Agent.Remote)
		if err != nil {
			return nil, err
		}
		log.Info().Msgf("Programming through %v", conf.Agent.Remote)
		return &sink{Sink: r, close: r.Close}, nil
	}

	path := conf.Device.Lock
	if path == "" {
		path = dos.LockPath(conf.Device.Path)
	}
	lock, err := dos.NewFileLock(path)
	if err != nil {
		return nil, err
	}
	if err = lock.TryLock(); err != nil {
		return nil, err
	}
	base, size, err := conf.Device.Region()
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	m, err := regio.OpenMMIO(conf.Device.Path, base, size)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	log.Info().Msgf("Mapped %v at %#x", conf.Device.Path, base)
	return &sink{Sink: m, close: func() error {
		return errors.Join(m.Close(), lock.Unlock())
	}}, nil
}

func dump(w io.Writer, writes []regio.Write, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(writes)
	}
	for _, wr := range writes {
		if _, err := fmt.Fprintf(w, "0x%03x = 0x%08x\n", wr.Offset, wr.Value); err != nil {
			return err
		}
	}
	return nil
}

func writePreview(path string, r defe.RegisterReader, in defe.Geometry) error {
	s, err := preview.ReadSettings(r)
	if err != nil {
		return err
	}
	img, err := preview.Render(preview.Bars(int(in.Width), int(in.Height)), s)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	conf, opts, err := parse(args, stderr)
	if err != nil {
		return err
	}
	format, in, out, err := conf.Pipeline.Frames()
	if err != nil {
		return err
	}
	luma, chroma, withBuffers, err := conf.Pipeline.BufferAddrs()
	if err != nil {
		return err
	}

	log := logger.NewConsoleWriter(stderr, conf.Debug, "defectl", opts.noColor)
	log.Debug().Msgf("version: %v", Version)

	s, err := open(ctx, conf, opts, log)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.close()) }()

	p := defe.New(s, defe.WithLogger(log))
	if err = p.Configure(format, in, out); err != nil {
		return err
	}
	log.Info().Msgf("Configured %v %v -> %v %v", format, in, out, defe.FormatARGB8888)

	if withBuffers {
		if err = p.SetBuffers(luma, chroma); err != nil {
			return err
		}
		for i := 0; i < opts.frames; i++ {
			if i > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(opts.interval):
				}
				// the hardware is done with a frame by now
				p.FrameDone()
			}
			if err = p.StartFrame(); err != nil {
				return err
			}
		}
		log.Info().Msgf("Started %v frame(s)", opts.frames)
	} else {
		log.Warn().Msg("No buffer addresses, frames not started")
	}

	if opts.preview != "" {
		if err = writePreview(opts.preview, s, in); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		log.Info().Msgf("Preview saved to %v", opts.preview)
	}

	if mem, ok := s.Sink.(*regio.Mem); ok {
		return dump(stdout, mem.Writes(), opts.asJSON)
	}
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-dos.ExpectTermination()
		cancel()
	}()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintf(os.Stderr, "defectl: %v\n", err)
		}
		cancel()
		os.Exit(1)
	}
	cancel()
}
