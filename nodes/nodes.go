// Package nodes provides basic DSP nodes for patch graphs.
package nodes

import (
	"errors"
	"fmt"
	"math"

	"github.com/dudk/patch"
	"github.com/dudk/patch/signal"
)

const defaultSampleRate = 44100

// ErrInvalidParameter is returned when a parameter value is out of range.
var ErrInvalidParameter = errors.New("invalid parameter")

// Generator produces a mono sine signal.
type Generator struct {
	Node *patch.Node

	Signal        patch.Output
	SetFrequency  patch.Input
	SetSampleRate patch.Input
	SetLength     patch.Input

	frequency  float64
	sampleRate int
	length     int
}

// NewGenerator declares generator in graph.
func NewGenerator(g *patch.Graph, frequency float64, length int) *Generator {
	gen := &Generator{
		Node:       g.Node("Generator"),
		frequency:  frequency,
		sampleRate: defaultSampleRate,
		length:     length,
	}
	gen.Signal = patch.NewOutput(gen.Node, "Signal", gen.signal)
	gen.SetFrequency = patch.NewInput(gen.Node, "SetFrequency", func(f float64) error {
		gen.frequency = f
		return nil
	}, patch.Accept(patch.TypeOf[float64](), patch.TypeOf[int]()), patch.Observe(gen.Signal))
	gen.SetSampleRate = patch.NewInput(gen.Node, "SetSampleRate", func(sr int) error {
		if sr <= 0 {
			return fmt.Errorf("sample rate %d: %w", sr, ErrInvalidParameter)
		}
		gen.sampleRate = sr
		return nil
	}, patch.Observe(gen.Signal))
	gen.SetLength = patch.NewInput(gen.Node, "SetLength", func(l int) error {
		if l < 0 {
			return fmt.Errorf("length %d: %w", l, ErrInvalidParameter)
		}
		gen.length = l
		return nil
	}, patch.Observe(gen.Signal))
	return gen
}

func (gen *Generator) signal() (signal.Signal, error) {
	if gen.length < 0 {
		return signal.Signal{}, fmt.Errorf("length %d: %w", gen.length, ErrInvalidParameter)
	}
	data := signal.EmptyFloat64(1, gen.length)
	step := 2 * math.Pi * gen.frequency / float64(gen.sampleRate)
	for i := range data[0] {
		data[0][i] = math.Sin(step * float64(i))
	}
	return signal.Signal{Data: data, SampleRate: gen.sampleRate}, nil
}

// Amplifier multiplies signal by gain.
type Amplifier struct {
	Node *patch.Node

	Output   patch.Output
	SetInput patch.Input
	SetGain  patch.Input

	input signal.Signal
	gain  float64
}

// NewAmplifier declares amplifier in graph.
func NewAmplifier(g *patch.Graph, gain float64) *Amplifier {
	a := &Amplifier{
		Node: g.Node("Amplifier"),
		gain: gain,
	}
	a.Output = patch.NewOutput(a.Node, "Output", a.output)
	a.SetInput = patch.NewInput(a.Node, "SetInput", func(s signal.Signal) error {
		a.input = s
		return nil
	}, patch.Observe(a.Output))
	a.SetGain = patch.NewInput(a.Node, "SetGain", func(gain float64) error {
		a.gain = gain
		return nil
	}, patch.Accept(patch.TypeOf[float64](), patch.TypeOf[int]()), patch.Observe(a.Output))
	return a
}

func (a *Amplifier) output() (signal.Signal, error) {
	result := signal.EmptyFloat64(a.input.Data.NumChannels(), a.input.Data.Size())
	for c := range a.input.Data {
		for i, v := range a.input.Data[c] {
			result[c][i] = v * a.gain
		}
	}
	return signal.Signal{Data: result, SampleRate: a.input.SampleRate}, nil
}
