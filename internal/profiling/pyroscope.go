package profiling

import (
	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/grafana/pyroscope-go"
)

// Profiler wraps the Pyroscope client. A nil *Profiler is valid and does
// nothing, which is what Start returns when profiling is disabled.
type Profiler struct {
	p *pyroscope.Profiler
}

// Start begins pushing CPU, heap and goroutine profiles to the configured
// Pyroscope server.
func Start(cfg *config.Configuration, log *logger.Logger) (*Profiler, error) {
	if !cfg.Profiling.Enabled {
		return nil, nil
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "devicedesk." + string(cfg.Deployment.Mode),
		ServerAddress:   cfg.Profiling.ServerAddress,
		AuthToken:       cfg.Profiling.AuthToken,
		Tags:            map[string]string{"mode": string(cfg.Deployment.Mode)},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, err
	}
	log.Infow("pyroscope profiling started", "server", cfg.Profiling.ServerAddress)
	return &Profiler{p: p}, nil
}

func (p *Profiler) Stop() error {
	if p == nil || p.p == nil {
		return nil
	}
	return p.p.Stop()
}
