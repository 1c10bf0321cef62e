package config

import "github.com/spf13/pflag"

type Monitoring struct {
	Port             int    `default:"6601"`
	URLPrefix        string `default:""`
	MetricEnabled    bool   `json:"metric_enabled"`
	ProfilingEnabled bool   `json:"profiling_enabled"`
}

func (c *Monitoring) IsEnabled() bool { return c.MetricEnabled || c.ProfilingEnabled }

func (c *Monitoring) WithFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.Port, "monitoring.port", c.Port, "Monitoring server port")
	fs.BoolVar(&c.MetricEnabled, "monitoring.metrics", c.MetricEnabled, "Serve Prometheus metrics")
	fs.BoolVar(&c.ProfilingEnabled, "monitoring.pprof", c.ProfilingEnabled, "Serve pprof")
}
