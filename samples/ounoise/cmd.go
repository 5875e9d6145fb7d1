// Package main generates Ornstein-Uhlenbeck noise with custom parameters
// and renders the traces and their distribution to an image.
package main

import (
	"context"
	"flag"

	"github.com/edaniels/golog"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/safehri/hrgym/human"
)

var logger = golog.NewDevelopmentLogger("ounoise")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	alpha := flag.Float64("alpha", 1, "rubber band parameter")
	mu := flag.Float64("mu", 0, "mean value of the distribution")
	sigma := flag.Float64("sigma", 1, "standard deviation of the distribution")
	dt := flag.Float64("dt", 0.01, "time delta between samples")
	steps := flag.Int("steps", 1000, "number of samples per trace")
	traces := flag.Int("traces", 5, "number of traces to draw")
	seed := flag.Int64("seed", 0, "random seed of the first trace")
	tracesOut := flag.String("traces-out", "ou_traces.png", "traces image file")
	histOut := flag.String("hist-out", "ou_hist.png", "histogram image file")
	flag.Parse()

	process := human.NewReparameterizedOUProcess(*traces, *alpha, *mu, *sigma, *seed)

	samples := make([][]float64, *traces)
	for i := range samples {
		samples[i] = make([]float64, *steps)
	}
	for step := 0; step < *steps; step++ {
		values := process.Step(*dt)
		for i := range samples {
			samples[i][step] = values[i]
		}
	}

	if err := plotTraces(samples, *dt, *tracesOut); err != nil {
		return err
	}
	if err := plotHistogram(samples, *histOut); err != nil {
		return err
	}

	flat := make([]float64, 0, (*traces)*(*steps))
	for _, trace := range samples {
		flat = append(flat, trace...)
	}
	logger.Infow("noise generated",
		"mean", stat.Mean(flat, nil),
		"stddev", stat.StdDev(flat, nil),
		"traces", *tracesOut,
		"histogram", *histOut,
	)
	return nil
}

func plotTraces(samples [][]float64, dt float64, path string) error {
	p := plot.New()
	p.Title.Text = "Ornstein-Uhlenbeck noise"
	p.X.Label.Text = "t [s]"
	p.Y.Label.Text = "y"

	for _, trace := range samples {
		points := make(plotter.XYs, len(trace))
		for i, y := range trace {
			points[i].X = float64(i) * dt
			points[i].Y = y
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return err
		}
		p.Add(line)
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func plotHistogram(samples [][]float64, path string) error {
	p := plot.New()
	p.Title.Text = "Sample distribution"
	p.X.Label.Text = "y"

	flat := make(plotter.Values, 0, len(samples)*len(samples[0]))
	for _, trace := range samples {
		for _, y := range trace {
			flat = append(flat, y)
		}
	}
	hist, err := plotter.NewHist(flat, 50)
	if err != nil {
		return err
	}
	hist.Normalize(1)
	p.Add(hist)
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
