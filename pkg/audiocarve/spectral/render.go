package spectral

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/eligwz/spectrogram"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Image dimensions of rendered spectrograms. The height is also the number
// of frequency bins.
const (
	ImageWidth  = 2048
	ImageHeight = 512
)

// ReadMono decodes up to maxSeconds of a 16-bit PCM WAV, averaging all
// channels into one and normalising to [-1, 1].
func ReadMono(wavPath string, maxSeconds int) ([]float64, int, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", wavPath)
	}
	if decoder.BitDepth != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d: only 16-bit supported", decoder.BitDepth)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, 0, fmt.Errorf("locating PCM data: %w", err)
	}

	chans := int(decoder.NumChans)
	rate := int(decoder.SampleRate)
	frames := decoder.PCMSize / (chans * 2)
	if maxSeconds > 0 && frames > maxSeconds*rate {
		frames = maxSeconds * rate
	}
	if frames == 0 {
		return nil, rate, errors.New("no samples in WAV file")
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: chans,
			SampleRate:  rate,
		},
		Data:           make([]int, frames*chans),
		SourceBitDepth: int(decoder.BitDepth),
	}
	n, err := decoder.PCMBuffer(buf)
	if err != nil {
		return nil, 0, fmt.Errorf("reading samples: %w", err)
	}

	const scale = 1.0 / 32768.0
	mono := make([]float64, n/chans)
	for i := range mono {
		var sum float64
		for c := 0; c < chans; c++ {
			sum += float64(buf.Data[i*chans+c])
		}
		mono[i] = sum / float64(chans) * scale
	}
	return mono, rate, nil
}

// RenderPNG draws a spectrogram of the first maxSeconds of wavPath to pngPath.
func RenderPNG(wavPath, pngPath string, maxSeconds int) error {
	samples, rate, err := ReadMono(wavPath, maxSeconds)
	if err != nil {
		return err
	}

	// the renderer reads a full FFT window past the start of the last column;
	// short runs are padded to a second so the image is not all smear
	pad := 2 * ImageHeight
	if len(samples) < rate {
		pad += rate - len(samples)
	}
	samples = append(samples, make([]float64, pad)...)

	img := spectrogram.NewImage128(image.Rect(0, 0, ImageWidth, ImageHeight))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT, linear magnitude
	spectrogram.Drawfft(
		img,
		samples,
		uint32(rate),
		uint32(ImageHeight),
		false,
		false,
		true,
		false,
	)

	if err := spectrogram.SavePng(img, pngPath); err != nil {
		return fmt.Errorf("saving spectrogram %s: %w", pngPath, err)
	}
	return nil
}
