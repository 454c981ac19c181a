package wavfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// Info summarises a WAV file as seen by a standard decoder.
type Info struct {
	RIFFSize   uint32
	DataSize   int64
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// Format returns the PCM layout reported by the decoder.
func (i *Info) Format() Format {
	return Format{SampleRate: i.SampleRate, Channels: i.Channels, BitDepth: i.BitDepth}
}

// Inspect opens path with the go-audio decoder to confirm it is a playable
// PCM WAV and reports its header fields.
func Inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := riff.New(f)
	if err := p.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("parsing RIFF headers: %w", err)
	}
	if string(p.Format[:]) != "WAVE" {
		return nil, errors.New("not a WAV/RIFF file")
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding %s: %w", path, err)
	}

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("invalid WAV file: %w", err)
		}
		return nil, errors.New("invalid WAV file")
	}
	if d.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("unsupported WAV audio format: %d", d.WavAudioFormat)
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locating data chunk: %w", err)
	}

	info := &Info{
		RIFFSize:   p.Size,
		DataSize:   int64(d.PCMSize),
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	if d.AvgBytesPerSec > 0 {
		info.Duration = time.Duration(float64(info.DataSize) / float64(d.AvgBytesPerSec) * float64(time.Second))
	}
	return info, nil
}
