// Package mixer provides a node which mixes any number of signals.
package mixer

import (
	"errors"

	"github.com/dudk/patch"
	"github.com/dudk/patch/multiinput"
	"github.com/dudk/patch/signal"
)

// ErrSampleRate is returned when mixed signals have different sample rates.
var ErrSampleRate = errors.New("signals have different sample rates")

// Mixer sums up signals and averages them. Signals can be of different
// length, every sample is averaged over the signals that have it.
type Mixer struct {
	Node *patch.Node

	Output   patch.Output
	AddInput patch.MultiInput

	inputs multiinput.Store[signal.Signal]
}

// New declares mixer in graph.
func New(g *patch.Graph) *Mixer {
	m := &Mixer{Node: g.Node("Mixer")}
	m.Output = patch.NewOutput(m.Node, "Output", m.mix)
	m.AddInput = patch.NewMultiInput(m.Node, "AddInput", m.add, m.inputs.Remove,
		patch.ReplaceWith(m.inputs.Replace),
		patch.Observe(m.Output),
	)
	return m
}

func (m *Mixer) add(s signal.Signal) (int, error) {
	return m.inputs.Add(s), nil
}

// mix returns mixed signal.
func (m *Mixer) mix() (signal.Signal, error) {
	inputs := m.inputs.Data()
	if len(inputs) == 0 {
		return signal.Signal{}, nil
	}
	var numChannels, size int
	sampleRate := inputs[0].SampleRate
	for _, in := range inputs {
		if in.SampleRate != sampleRate {
			return signal.Signal{}, ErrSampleRate
		}
		if in.Data.NumChannels() > numChannels {
			numChannels = in.Data.NumChannels()
		}
		if in.Data.Size() > size {
			size = in.Data.Size()
		}
	}

	var sum, signals float64
	result := signal.EmptyFloat64(numChannels, size)
	for nc := range result {
		for i := range result[nc] {
			sum, signals = 0, 0
			// shorter signals are not taken into account
			for _, in := range inputs {
				if nc < in.Data.NumChannels() && i < len(in.Data[nc]) {
					sum += in.Data[nc][i]
					signals++
				}
			}
			if signals > 0 {
				result[nc][i] = sum / signals
			}
		}
	}
	return signal.Signal{Data: result, SampleRate: sampleRate}, nil
}
