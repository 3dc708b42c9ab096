package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dudk/patch"
	"github.com/dudk/patch/config"
	"github.com/dudk/patch/log"
	"github.com/dudk/patch/metric"
	"github.com/dudk/patch/mixer"
	"github.com/dudk/patch/nodes"
	"github.com/dudk/patch/progress"
	"github.com/dudk/patch/signal"
	"github.com/dudk/patch/wav"
)

type renderOptions struct {
	out         string
	frequencies []float64
	length      int
	sampleRate  int
	gain        float64
	bitDepth    int
	metrics     bool
}

var render renderOptions

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render mixed sine tones into wav file",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return render.run(c, log.GetLogger())
	},
}

func init() {
	fs := renderCmd.Flags()
	fs.StringVar(&render.out, "out", "", "output wav file (required)")
	fs.Float64SliceVar(&render.frequencies, "frequency", []float64{440}, "frequencies of mixed tones")
	fs.IntVar(&render.length, "length", 44100, "length in samples")
	fs.IntVar(&render.sampleRate, "sample-rate", 44100, "sample rate")
	fs.Float64Var(&render.gain, "gain", 0.5, "gain of mixed signal")
	fs.IntVar(&render.bitDepth, "bit-depth", 16, "bit depth of wav file")
	fs.BoolVar(&render.metrics, "metrics", false, "print counters after render")
	rootCmd.AddCommand(renderCmd)
}

func (opts renderOptions) validate() error {
	var message string
	if opts.out == "" {
		message = message + "missing --out required flag\n"
	}
	if len(opts.frequencies) == 0 {
		message = message + "missing --frequency flag\n"
	}
	if opts.length <= 0 {
		message = message + "--length must be positive\n"
	}
	if message != "" {
		return errors.New(message)
	}
	return nil
}

// run renders and logs the result.
func (opts renderOptions) run(c config.Config, logger *logrus.Logger) error {
	_, err := opts.execute(c, logger)
	return err
}

// execute builds the graph: generators are mixed, amplified and recorded.
// Final progress of the render is returned.
func (opts renderOptions) execute(c config.Config, logger *logrus.Logger) (result progress.Progress, err error) {
	if err = opts.validate(); err != nil {
		return result, err
	}
	reg := prometheus.NewRegistry()
	m, err := metric.New(reg)
	if err != nil {
		return result, err
	}
	g := patch.New(patch.WithConfig(c), patch.WithLogger(logger), patch.WithMetric(m))

	mix := mixer.New(g)
	amp := nodes.NewAmplifier(g, opts.gain)
	recorder, err := wav.NewRecorder(g, signal.BitDepth(opts.bitDepth))
	if err != nil {
		return result, err
	}
	var calls []patch.Call
	var entries []patch.Receiver
	for _, f := range opts.frequencies {
		gen := nodes.NewGenerator(g, f, 0)
		if err := patch.Connect(gen.Signal, mix.AddInput); err != nil {
			return result, err
		}
		calls = append(calls,
			patch.Call{Target: gen.SetSampleRate, Args: []interface{}{opts.sampleRate}},
			patch.Call{Target: gen.SetLength, Args: []interface{}{opts.length}},
		)
		entries = append(entries, gen.SetSampleRate, gen.SetLength)
	}
	if err := patch.Connect(mix.Output, amp.SetInput); err != nil {
		return result, err
	}
	if err := patch.Connect(amp.Output, recorder.SetSignal); err != nil {
		return result, err
	}
	if err := recorder.SetPath.Set(opts.out); err != nil {
		return result, err
	}

	indicator, err := progress.Outputs(g, "rendering", entries...)
	if err != nil {
		return result, err
	}
	defer indicator.Destroy()
	display := patch.NewInput(g.Node("Display"), "Show", func(p progress.Progress) error {
		logger.WithField("done", p.Done).WithField("total", p.Total).Debug(p.Message)
		return nil
	})
	if err := patch.Connect(indicator.AsTuple, display); err != nil {
		return result, err
	}

	if err := patch.SetMultipleValues(calls, indicator); err != nil {
		return result, err
	}
	if err := recorder.Save.Fire(); err != nil {
		return result, err
	}
	total, done, message := indicator.Tuple()
	result = progress.Progress{Total: total, Done: done, Message: message}
	logger.Info(fmt.Sprintf("rendered %s: %d%% done", opts.out, indicator.Percentage()))

	if opts.metrics {
		families, err := reg.Gather()
		if err != nil {
			return result, err
		}
		for _, family := range families {
			for _, counter := range family.GetMetric() {
				logger.WithField("node", counter.GetLabel()[0].GetValue()).
					Info(fmt.Sprintf("%s %v", family.GetName(), counter.GetCounter().GetValue()))
			}
		}
	}
	return result, nil
}
