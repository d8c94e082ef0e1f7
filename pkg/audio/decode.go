package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// decodeWAV returns the first channel of a PCM WAV file, normalised to [-1, 1].
func decodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w", err)
	}
	chans := int(dec.NumChans)
	if chans < 1 {
		return nil, 0, errors.New("wav: no channels")
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}
	if depth < 8 || depth > 32 {
		return nil, 0, fmt.Errorf("wav: unsupported bit depth %d", depth)
	}

	// 8ビットWAVは符号なし
	offset, scale := 0.0, float64(int64(1)<<(depth-1))
	if depth == 8 {
		offset = 128
	}

	floatBuf := buf.AsFloat32Buffer()
	out := make([]float32, 0, len(floatBuf.Data)/chans)
	for i := 0; i < len(floatBuf.Data); i += chans {
		out = append(out, float32((float64(floatBuf.Data[i])-offset)/scale))
	}
	return out, int(dec.SampleRate), nil
}

// decodeMP3 returns the left channel of an MP3 stream, normalised to [-1, 1].
// go-mp3 always yields 16-bit little-endian stereo.
func decodeMP3(r io.Reader) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: %w", err)
	}

	var out []float32
	chunk := make([]byte, 4096)
	for {
		n, err := io.ReadFull(dec, chunk)
		for i := 0; i+1 < n; i += 4 {
			v := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
			out = append(out, float32(v)/32768)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("mp3: %w", err)
		}
	}
	return out, dec.SampleRate(), nil
}
