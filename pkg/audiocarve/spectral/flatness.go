package spectral

import (
	"encoding/binary"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FrameSize is the FFT length used for flatness estimates.
const FrameSize = 4096

const powerFloor = 1e-20

// Hann returns a Hann window of length n.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// PowerSpectrum returns |X[k]|^2 for the positive-frequency bins of frame
// after applying window.
func PowerSpectrum(frame, window []float64) []float64 {
	buf := make([]float64, len(frame))
	for i := range frame {
		buf[i] = frame[i] * window[i]
	}
	spectrum := fft.FFTReal(buf)

	half := len(spectrum) / 2
	power := make([]float64, half)
	for k := 0; k < half; k++ {
		m := cmplx.Abs(spectrum[k])
		power[k] = m * m
	}
	return power
}

// Flatness is the ratio of the geometric to the arithmetic mean of the power
// spectrum, averaged over consecutive FrameSize frames. Pure tones approach 0
// and white noise sits around 0.5. Returns 0 when fewer than FrameSize
// samples are supplied or the signal is silent.
func Flatness(samples []float64) float64 {
	frames := len(samples) / FrameSize
	if frames == 0 {
		return 0
	}
	window := Hann(FrameSize)

	var total float64
	counted := 0
	for f := 0; f < frames; f++ {
		power := PowerSpectrum(samples[f*FrameSize:(f+1)*FrameSize], window)

		var logSum, sum float64
		// skip the DC bin
		for _, p := range power[1:] {
			sum += p
			logSum += math.Log(p + powerFloor)
		}
		n := float64(len(power) - 1)
		arith := sum / n
		if arith <= powerFloor {
			continue
		}
		total += math.Exp(logSum/n) / arith
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// BlockSamples decodes the first channel of interleaved 16-bit little-endian
// PCM in block and scales it to [-1, 1].
func BlockSamples(block []byte, channels int) []float64 {
	if channels < 1 {
		channels = 1
	}
	frameSize := 2 * channels
	const scale = 1.0 / 32768.0

	out := make([]float64, 0, len(block)/frameSize)
	for i := 0; i+2 <= len(block); i += frameSize {
		out = append(out, float64(int16(binary.LittleEndian.Uint16(block[i:i+2])))*scale)
	}
	return out
}
