package classify

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"
)

const testBlockSize = 1024 * 1024

// sineBlock builds an interleaved 16-bit stereo block holding a sine tone.
func sineBlock(size int, freq, amplitude float64) []byte {
	const sampleRate = 48000.0
	block := make([]byte, size)
	frames := size / 4
	for i := 0; i < frames; i++ {
		v := int16(amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
		binary.LittleEndian.PutUint16(block[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(block[i*4+2:], uint16(v))
	}
	return block
}

func randomBlock(size int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	block := make([]byte, size)
	r.Read(block)
	return block
}

func TestClassifyAllZeroBlock(t *testing.T) {
	res := Classify(make([]byte, testBlockSize))
	if res.Class != Empty {
		t.Fatalf("Expected empty, got %s", res.Class)
	}
	if res.Score != 0 {
		t.Errorf("Expected score 0, got %f", res.Score)
	}
}

func TestClassifyShortBlock(t *testing.T) {
	block := sineBlock(MinBlockBytes-1, 440, 10000)
	if res := Classify(block); res.Class != Empty {
		t.Errorf("Expected empty for a %d byte block, got %s", len(block), res.Class)
	}
}

func TestClassifyMostlyZeroBlock(t *testing.T) {
	block := make([]byte, testBlockSize)
	// 5% non-zero bytes puts the zero ratio at 0.95
	nonZero := testBlockSize / 20
	for i := 0; i < nonZero; i++ {
		block[i] = 0x55
	}

	res := Classify(block)
	if res.Class != Silence {
		t.Fatalf("Expected silence, got %s", res.Class)
	}
	if math.Abs(res.Score-0.95) > 0.001 {
		t.Errorf("Expected score ~0.95, got %f", res.Score)
	}
}

func TestClassifyNearlyEmptyBlock(t *testing.T) {
	block := make([]byte, testBlockSize)
	for i := 0; i < testBlockSize/200; i++ {
		block[i*7] = 0x01
	}
	if res := Classify(block); res.Class != Empty {
		t.Errorf("Expected empty above %.2f zero ratio, got %s (ratio %.4f)", EmptyZeroRatio, res.Class, res.ZeroRatio)
	}
}

func TestClassifySineBlock(t *testing.T) {
	res := Classify(sineBlock(testBlockSize, 440, 10000))
	if res.Class != Audio {
		t.Fatalf("Expected audio, got %s (variance %.0f, smoothness %.3f)", res.Class, res.Variance, res.Smoothness)
	}
	if res.Smoothness < 0.9 {
		t.Errorf("Expected high smoothness for a sine, got %.3f", res.Smoothness)
	}
	if res.Samples != MaxSamples {
		t.Errorf("Expected %d samples, got %d", MaxSamples, res.Samples)
	}
}

func TestClassifyQuietSignalIsSilence(t *testing.T) {
	// amplitude 20 gives a variance of ~200, below the silence threshold
	res := Classify(sineBlock(testBlockSize, 440, 20))
	if res.Class != Silence {
		t.Errorf("Expected silence, got %s (variance %.1f)", res.Class, res.Variance)
	}
}

func TestClassifyRandomBlockTendsAwayFromAudio(t *testing.T) {
	random := Classify(randomBlock(testBlockSize, 42))
	sine := Classify(sineBlock(testBlockSize, 440, 10000))

	if random.Smoothness >= sine.Smoothness {
		t.Errorf("Expected random smoothness %.3f below sine smoothness %.3f", random.Smoothness, sine.Smoothness)
	}
	if random.Smoothness > 0.8 {
		t.Errorf("Expected low smoothness for random data, got %.3f", random.Smoothness)
	}
	t.Logf("random block: class=%s smoothness=%.3f variance=%.0f", random.Class, random.Smoothness, random.Variance)
}

func TestClassifyAlternatingExtremesIsNoise(t *testing.T) {
	block := make([]byte, testBlockSize)
	for i := 0; i+4 <= len(block); i += 4 {
		v := int16(32767)
		if (i/4)%2 == 1 {
			v = -32767
		}
		binary.LittleEndian.PutUint16(block[i:], uint16(v))
	}

	res := Classify(block)
	if res.Class != Noise {
		t.Errorf("Expected noise, got %s (smoothness %.3f)", res.Class, res.Smoothness)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	block := randomBlock(testBlockSize, 7)
	first := Classify(block)
	for i := 0; i < 3; i++ {
		if got := Classify(block); got != first {
			t.Fatalf("Classify returned %+v, then %+v", first, got)
		}
	}
}

func TestSamples(t *testing.T) {
	// two frames: left=256, right=-1, left=32767, right=0
	data := []byte{0x00, 0x01, 0xFF, 0xFF, 0xFF, 0x7F, 0x00, 0x00}
	samples := Samples(data)
	if len(samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(samples))
	}
	if samples[0] != 256 || samples[1] != 32767 {
		t.Errorf("Unexpected samples %v", samples)
	}

	if got := len(Samples(make([]byte, testBlockSize))); got != MaxSamples {
		t.Errorf("Expected sample window capped at %d, got %d", MaxSamples, got)
	}
}

func TestZeroRatio(t *testing.T) {
	if r := ZeroRatio([]byte{0, 1, 0, 1}); r != 0.5 {
		t.Errorf("Expected 0.5, got %f", r)
	}
	if r := ZeroRatio(nil); r != 0 {
		t.Errorf("Expected 0 for empty input, got %f", r)
	}
}

func TestParseClass(t *testing.T) {
	for _, c := range []Class{Empty, Silence, Noise, Audio} {
		got, err := ParseClass(c.String())
		if err != nil {
			t.Fatalf("ParseClass(%q) failed: %v", c.String(), err)
		}
		if got != c {
			t.Errorf("Expected %s, got %s", c, got)
		}
	}
	if _, err := ParseClass("music"); err == nil {
		t.Error("Expected error for unknown class")
	}
}
