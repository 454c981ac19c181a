package classify

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Class is the verdict for a single block of the image.
type Class int

const (
	Empty Class = iota
	Silence
	Noise
	Audio
)

func (c Class) String() string {
	switch c {
	case Empty:
		return "empty"
	case Silence:
		return "silence"
	case Noise:
		return "noise"
	case Audio:
		return "audio"
	default:
		return "unknown"
	}
}

// ParseClass maps a class name back to its value.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "empty":
		return Empty, nil
	case "silence":
		return Silence, nil
	case "noise":
		return Noise, nil
	case "audio":
		return Audio, nil
	}
	return Empty, fmt.Errorf("unknown block class %q", s)
}

// Tunables
const (
	MinBlockBytes = 1000
	MinSamples    = 100

	// Samples are read from the first MaxSampleBytes of a block, one every
	// SampleStride bytes (the left channel of 16-bit stereo frames).
	MaxSampleBytes = 40000
	SampleStride   = 4
	MaxSamples     = MaxSampleBytes / SampleStride

	EmptyZeroRatio   = 0.99
	SilenceZeroRatio = 0.90

	SilenceVariance = 1000.0
	AudioVariance   = 10000.0
	AudioSmoothness = 0.3
	NoiseSmoothness = 0.2
)

// Result holds the class of a block together with the statistics that produced it.
type Result struct {
	Class      Class
	Score      float64 // smoothness for sample-based verdicts, zero ratio for silence by zeros
	ZeroRatio  float64
	Variance   float64
	Smoothness float64
	Samples    int
}

// Classify decides whether block looks like empty space, digital silence, white
// noise or real 16-bit PCM audio.
func Classify(block []byte) Result {
	if len(block) < MinBlockBytes {
		return Result{Class: Empty}
	}

	zeroRatio := ZeroRatio(block)
	if zeroRatio > EmptyZeroRatio {
		return Result{Class: Empty, ZeroRatio: zeroRatio}
	}
	if zeroRatio > SilenceZeroRatio {
		return Result{Class: Silence, Score: zeroRatio, ZeroRatio: zeroRatio}
	}

	samples := Samples(block)
	res := Result{ZeroRatio: zeroRatio, Samples: len(samples)}
	if len(samples) < MinSamples {
		res.Class = Empty
		return res
	}

	st := computeStats(samples)
	res.Variance = st.variance
	if st.peak == 0 {
		res.Class = Silence
		return res
	}

	smoothness := 1.0 - st.avgDiff/(st.peak*2)
	res.Smoothness = smoothness
	res.Score = smoothness

	switch {
	case st.variance < SilenceVariance:
		res.Class = Silence
	case smoothness > AudioSmoothness && st.variance > AudioVariance:
		res.Class = Audio
	case smoothness < NoiseSmoothness:
		res.Class = Noise
	default:
		// neither smooth nor rough enough to call; treat as audio
		res.Class = Audio
	}
	return res
}

// ZeroRatio returns the share of 0x00 bytes in block.
func ZeroRatio(block []byte) float64 {
	if len(block) == 0 {
		return 0
	}
	zeros := 0
	for _, b := range block {
		if b == 0 {
			zeros++
		}
	}
	return float64(zeros) / float64(len(block))
}

// Samples decodes up to MaxSamples signed little-endian 16-bit values, taking
// the first sample of every 4-byte frame.
func Samples(block []byte) []int16 {
	limit := len(block)
	if limit > MaxSampleBytes {
		limit = MaxSampleBytes
	}
	out := make([]int16, 0, limit/SampleStride+1)
	for i := 0; i+2 <= limit; i += SampleStride {
		out = append(out, int16(binary.LittleEndian.Uint16(block[i:i+2])))
	}
	return out
}

type stats struct {
	variance float64
	avgDiff  float64
	peak     float64
}

func computeStats(samples []int16) stats {
	n := float64(len(samples))

	var sum float64
	peak := 0.0
	for _, s := range samples {
		v := float64(s)
		sum += v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	mean := sum / n

	var sq float64
	for _, s := range samples {
		d := float64(s) - mean
		sq += d * d
	}

	var diffs float64
	for i := 1; i < len(samples); i++ {
		diffs += math.Abs(float64(samples[i]) - float64(samples[i-1]))
	}
	avgDiff := 0.0
	if len(samples) > 1 {
		avgDiff = diffs / float64(len(samples)-1)
	}

	return stats{
		variance: sq / n,
		avgDiff:  avgDiff,
		peak:     peak,
	}
}
