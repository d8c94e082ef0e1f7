// Package audio provides the beep cue fired on frames where the
// interpreter's sound timer is running.
//
// Cues are PCM in the format ebiten's audio package plays directly:
// 16-bit little-endian stereo at SampleRate.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/zurustar/oito/pkg/fileutil"
)

// SampleRate is the output sample rate.
const SampleRate = 44100

// Default beep tone.
const (
	DefaultToneFrequency = 440
	DefaultToneDuration  = 50 * time.Millisecond
	defaultToneAmplitude = 0.25
)

var (
	// ErrCueNotFound is returned when the cue file does not exist.
	ErrCueNotFound = errors.New("cue file not found")

	// ErrUnsupportedFormat is returned for files that are neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("unsupported cue format")

	// ErrInvalidCue is returned when a cue file cannot be decoded.
	ErrInvalidCue = errors.New("invalid cue file")
)

// Tone generates a square wave of the given frequency and duration.
func Tone(freq float64, d time.Duration) []byte {
	n := int(d.Seconds() * SampleRate)
	samples := make([]float32, n)
	if freq <= 0 {
		return EncodePCM(samples)
	}
	period := SampleRate / freq
	for i := range samples {
		if math.Mod(float64(i), period) < period/2 {
			samples[i] = defaultToneAmplitude
		} else {
			samples[i] = -defaultToneAmplitude
		}
	}
	return EncodePCM(samples)
}

// LoadCue reads a .wav or .mp3 file and converts it to playable PCM.
// Only the first channel of a multi-channel file is used.
func LoadCue(path string) ([]byte, error) {
	if !fileutil.HasExtension(path, ".wav", ".mp3") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	resolved, err := fileutil.ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCueNotFound, path)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open cue: %w", err)
	}
	return decodeCue(resolved, data)
}

// LoadCueFS is LoadCue for a file inside fsys, such as the embedded assets.
func LoadCueFS(fsys fs.FS, name string) ([]byte, error) {
	if !fileutil.HasExtension(name, ".wav", ".mp3") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCueNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cue: %w", err)
	}
	return decodeCue(name, data)
}

func decodeCue(name string, data []byte) ([]byte, error) {
	var samples []float32
	var rate int
	var err error
	if fileutil.HasExtension(name, ".wav") {
		samples, rate, err = decodeWAV(bytes.NewReader(data))
	} else {
		samples, rate, err = decodeMP3(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCue, name, err)
	}
	return EncodePCM(Resample(samples, rate, SampleRate)), nil
}

// Resample converts mono samples between rates with linear interpolation.
func Resample(samples []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 || len(samples) == 0 {
		return samples
	}
	n := int(int64(len(samples)) * int64(to) / int64(from))
	out := make([]float32, n)
	step := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j+1 >= len(samples) {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}

// EncodePCM encodes mono samples in [-1, 1] as 16-bit little-endian stereo.
// Out-of-range samples are clipped.
func EncodePCM(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		s = max(-1, min(1, s))
		v := int16(s * math.MaxInt16)
		lo, hi := byte(v), byte(uint16(v)>>8)
		out[i*4] = lo
		out[i*4+1] = hi
		out[i*4+2] = lo
		out[i*4+3] = hi
	}
	return out
}
