package profiler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// DefaultUpdateInterval is how much frame time is accumulated between reports, in seconds.
const DefaultUpdateInterval = 0.5

// Profiler accumulates frame times and reports the average frame time and FPS at a fixed interval.
// The report is a title-bar string, and the same numbers are logged at debug level with memory stats.
type Profiler struct {
	baseTitle      string
	updateInterval float32
	totalTime      float32
	frameCount     int
	memStats       runtime.MemStats
}

// NewProfiler creates a new Profiler reporting every DefaultUpdateInterval seconds.
//
// Parameters:
//   - baseTitle: the text placed before the frame statistics in the report
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(baseTitle string) *Profiler {
	return &Profiler{
		baseTitle:      baseTitle,
		updateInterval: DefaultUpdateInterval,
	}
}

// Tick records one frame of the given duration. Once more than the update interval has been
// accumulated, the average is reported and the accumulators reset.
//
// Parameters:
//   - frameTime: the duration of the frame in seconds
//
// Returns:
//   - string: the report "<title> - Frame Time: X.XXms, FPS: N" when one is due
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick(frameTime float32) (string, bool) {
	p.totalTime += frameTime
	p.frameCount++
	if p.totalTime <= p.updateInterval {
		return "", false
	}

	avg := p.totalTime / float32(p.frameCount)
	fps := int(1/avg + 0.5)
	title := fmt.Sprintf("%s - Frame Time: %.2fms, FPS: %d", p.baseTitle, avg*1000, fps)

	logger := common.Logger()
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		runtime.ReadMemStats(&p.memStats)
		logger.Debug("frame stats",
			"frame_ms", avg*1000,
			"fps", fps,
			"heap_mb", float64(p.memStats.Alloc)/1024/1024,
			"gc", p.memStats.NumGC,
		)
	}

	p.totalTime = 0
	p.frameCount = 0
	return title, true
}
