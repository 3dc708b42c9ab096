// Package signal provides the value type passed between DSP nodes. It
// allows to:
//	- keep non-interleaved float signals with their sample rate
//	- convert signals from and to interleaved int data of any bit depth
package signal

import (
	"math"
	"time"

	"github.com/go-audio/audio"
)

// Float64 is a non-interleaved float64 signal.
type Float64 [][]float64

// Signal is a float signal with its sample rate.
type Signal struct {
	Data       Float64
	SampleRate int
}

// BitDepth contains values required for int-to-float and backward conversion.
type BitDepth int

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// max returns the maximum absolute int value for bit depth.
func (bitDepth BitDepth) max() int {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// DurationOf returns time duration of samples for this sample rate.
func DurationOf(sampleRate int, samples int) time.Duration {
	if sampleRate == 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// Duration returns time duration of signal.
func (s Signal) Duration() time.Duration {
	return DurationOf(s.SampleRate, s.Data.Size())
}

// AsIntBuffer converts signal to interleaved int buffer.
func (s Signal) AsIntBuffer(bitDepth BitDepth) *audio.IntBuffer {
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: s.Data.NumChannels(),
			SampleRate:  s.SampleRate,
		},
		Data:           s.Data.AsInterInt(bitDepth),
		SourceBitDepth: int(bitDepth),
	}
}

// FromIntBuffer converts interleaved int buffer to signal.
func FromIntBuffer(b *audio.IntBuffer) Signal {
	if b == nil || b.Format == nil {
		return Signal{}
	}
	return Signal{
		Data:       FromInterInt(b.Data, b.Format.NumChannels, BitDepth(b.SourceBitDepth)),
		SampleRate: b.Format.SampleRate,
	}
}

// FromInterInt converts interleaved int data to float64 signal. Missing
// samples of the last frame are zero.
func FromInterInt(data []int, numChannels int, bitDepth BitDepth) Float64 {
	if data == nil || numChannels == 0 {
		return nil
	}
	size := int(math.Ceil(float64(len(data)) / float64(numChannels)))
	max := float64(bitDepth.max())
	floats := EmptyFloat64(numChannels, size)
	for i := range data {
		floats[i%numChannels][i/numChannels] = float64(data[i]) / max
	}
	return floats
}

// AsInterInt converts float64 signal to interleaved int. Values are
// clipped to [-1, 1].
func (floats Float64) AsInterInt(bitDepth BitDepth) []int {
	numChannels := floats.NumChannels()
	if numChannels == 0 {
		return nil
	}
	max := float64(bitDepth.max())
	size := floats.Size()
	ints := make([]int, size*numChannels)
	for c := range floats {
		for i := 0; i < size && i < len(floats[c]); i++ {
			ints[i*numChannels+c] = int(math.Max(-1, math.Min(1, floats[c][i])) * max)
		}
	}
	return ints
}

// EmptyFloat64 returns an empty signal of specified dimentions.
func EmptyFloat64(numChannels int, size int) Float64 {
	result := make([][]float64, numChannels)
	for i := range result {
		result[i] = make([]float64, size)
	}
	return result
}

// NumChannels returns number of channels in this signal.
func (floats Float64) NumChannels() int {
	return len(floats)
}

// Size returns number of samples in single channel.
func (floats Float64) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Slice creates a new copy of signal from start position with defined
// length. If signal doesn't have enough samples, shorter signal is returned.
// Nil is returned if start is out of range.
func (floats Float64) Slice(start int, length int) Float64 {
	if floats == nil || start >= floats.Size() || start < 0 {
		return nil
	}
	end := start + length
	if end > floats.Size() {
		end = floats.Size()
	}
	result := make([][]float64, floats.NumChannels())
	for i := range floats {
		result[i] = append(result[i], floats[i][start:end]...)
	}
	return result
}
