// Package telemetry records per-frame timing and population samples and
// writes them out as CSV with a summary for offline analysis.
package telemetry

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// FrameSample is one recorded frame.
type FrameSample struct {
	Frame       int     `csv:"frame"`
	UpdateUS    int64   `csv:"update_us"`
	RenderUS    int64   `csv:"render_us"`
	ActiveCount int     `csv:"active_count"`
	FPS         float64 `csv:"fps"`
	Formation   string  `csv:"formation"`
}

// Summary aggregates a run.
type Summary struct {
	Frames int

	UpdateMeanUS   float64
	UpdateStddevUS float64
	UpdateP95US    float64

	RenderMeanUS   float64
	RenderStddevUS float64
	RenderP95US    float64

	MeanActive float64
	MeanFPS    float64
}

// Collector accumulates samples in memory. A nil Collector discards
// everything, so callers can leave telemetry unwired.
type Collector struct {
	samples []FrameSample
}

// NewCollector creates a collector with room for about a minute of
// frames before the first regrow.
func NewCollector() *Collector {
	return &Collector{samples: make([]FrameSample, 0, 2048)}
}

// Record appends one frame sample.
func (c *Collector) Record(s FrameSample) {
	if c == nil {
		return
	}
	s.Frame = len(c.samples)
	c.samples = append(c.samples, s)
}

// Len returns the number of recorded samples.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.samples)
}

// Samples returns the recorded samples. The slice is owned by the
// collector.
func (c *Collector) Samples() []FrameSample {
	if c == nil {
		return nil
	}
	return c.samples
}

// Summarize computes run statistics over all recorded frames.
func (c *Collector) Summarize() Summary {
	if c == nil || len(c.samples) == 0 {
		return Summary{}
	}

	n := len(c.samples)
	update := make([]float64, n)
	render := make([]float64, n)
	active := make([]float64, n)
	fps := make([]float64, n)
	for i, s := range c.samples {
		update[i] = float64(s.UpdateUS)
		render[i] = float64(s.RenderUS)
		active[i] = float64(s.ActiveCount)
		fps[i] = s.FPS
	}

	sum := Summary{Frames: n}
	sum.UpdateMeanUS, sum.UpdateStddevUS = stat.MeanStdDev(update, nil)
	sum.RenderMeanUS, sum.RenderStddevUS = stat.MeanStdDev(render, nil)
	sum.MeanActive = stat.Mean(active, nil)
	sum.MeanFPS = stat.Mean(fps, nil)

	// Quantile wants sorted input.
	sort.Float64s(update)
	sort.Float64s(render)
	sum.UpdateP95US = stat.Quantile(0.95, stat.Empirical, update, nil)
	sum.RenderP95US = stat.Quantile(0.95, stat.Empirical, render, nil)
	return sum
}

// WriteCSV dumps all samples to frames.csv under dir, creating the
// directory if needed.
func (c *Collector) WriteCSV(dir string) error {
	if c == nil || len(c.samples) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating telemetry directory")
	}

	path := filepath.Join(dir, "frames.csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	if err := gocsv.Marshal(c.samples, f); err != nil {
		return errors.Wrap(err, "writing frame samples")
	}
	return nil
}
