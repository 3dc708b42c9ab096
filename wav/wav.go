// Package wav provides nodes which load and save wav files.
package wav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/dudk/patch"
	"github.com/dudk/patch/signal"
)

const pcmFormat = 1

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")
	// ErrInvalidFile is returned when file is not a valid wav file.
	ErrInvalidFile = errors.New("wav is not valid")
)

func supported(bitDepth signal.BitDepth) bool {
	switch bitDepth {
	case signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
		return true
	}
	return false
}

// Loader reads signal from wav file. File is read when the signal is
// requested, empty signal is returned if path is not set.
type Loader struct {
	Node *patch.Node

	Signal  patch.Output
	SetPath patch.Input

	path string
}

// NewLoader declares loader in graph.
func NewLoader(g *patch.Graph) *Loader {
	l := &Loader{Node: g.Node("WavLoader")}
	l.Signal = patch.NewOutput(l.Node, "Signal", l.load)
	l.SetPath = patch.NewInput(l.Node, "SetPath", func(path string) error {
		l.path = path
		return nil
	}, patch.Observe(l.Signal))
	return l
}

func (l *Loader) load() (signal.Signal, error) {
	if l.path == "" {
		return signal.Signal{}, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		return signal.Signal{}, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return signal.Signal{}, fmt.Errorf("%s: %w", l.path, ErrInvalidFile)
	}
	if !supported(signal.BitDepth(decoder.BitDepth)) {
		return signal.Signal{}, ErrUnsupportedBitDepth
	}
	b, err := decoder.FullPCMBuffer()
	if err != nil {
		return signal.Signal{}, err
	}
	b.SourceBitDepth = int(decoder.BitDepth)
	return signal.FromIntBuffer(b), nil
}

// Recorder saves signal to wav file when Save is fired.
type Recorder struct {
	Node *patch.Node

	SetSignal patch.Input
	SetPath   patch.Input
	Save      patch.Trigger

	bitDepth signal.BitDepth
	path     string
	signal   signal.Signal
}

// NewRecorder declares recorder in graph.
func NewRecorder(g *patch.Graph, bitDepth signal.BitDepth) (*Recorder, error) {
	if !supported(bitDepth) {
		return nil, ErrUnsupportedBitDepth
	}
	r := &Recorder{
		Node:     g.Node("WavRecorder"),
		bitDepth: bitDepth,
	}
	r.SetSignal = patch.NewInput(r.Node, "SetSignal", func(s signal.Signal) error {
		r.signal = s
		return nil
	})
	r.SetPath = patch.NewInput(r.Node, "SetPath", func(path string) error {
		r.path = path
		return nil
	})
	r.Save = patch.NewTrigger(r.Node, "Save", r.save)
	return r, nil
}

func (r *Recorder) save() (err error) {
	if r.path == "" || r.signal.Data.NumChannels() == 0 {
		return nil
	}
	f, err := os.Create(r.path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	e := wav.NewEncoder(f, r.signal.SampleRate, int(r.bitDepth), r.signal.Data.NumChannels(), pcmFormat)
	if err := e.Write(r.signal.AsIntBuffer(r.bitDepth)); err != nil {
		return err
	}
	return e.Close()
}
