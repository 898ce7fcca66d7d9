package orchestrator

import (
	"context"

	"github.com/snapetech/fbplayer/internal/logging"
	"github.com/snapetech/fbplayer/internal/metrics"
)

// metricsReg bundles a running metrics listener's collectors so Run's
// fps callback can update them without the listener goroutine needing
// a reference back into the scheduler.
type metricsReg struct {
	collectors *metrics.Collectors
}

// startMetrics starts the debug /metrics HTTP listener in the
// background and returns the collectors to update. The listener's own
// failure (after a successful bind) is logged, not propagated, since
// it is opt-in diagnostic tooling, not load-bearing for playback.
func startMetrics(ctx context.Context, addr string) *metricsReg {
	collectors, reg := metrics.New()
	go func() {
		if err := metrics.Serve(ctx, addr, reg); err != nil && ctx.Err() == nil {
			logging.Errorf("orchestrator: metrics listener: %v", err)
		}
	}()
	return &metricsReg{collectors: collectors}
}
