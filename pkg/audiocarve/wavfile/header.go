package wavfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the size of a canonical PCM WAV header.
const HeaderSize = 44

const (
	fmtChunkSize = 16
	formatPCM    = 1
)

// ErrTooLarge is returned when the PCM payload does not fit a 32-bit RIFF size.
var ErrTooLarge = errors.New("pcm data too large for a RIFF container")

// Format describes the fixed PCM layout written into the header.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// BlockAlign is the size in bytes of one frame (all channels).
func (f Format) BlockAlign() int {
	return f.Channels * f.BitDepth / 8
}

// ByteRate is the number of bytes per second of audio.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d-bit, %d ch", f.SampleRate, f.BitDepth, f.Channels)
}

// Header is the 44-byte RIFF/WAVE/fmt/data layout.
type Header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // data size + 36
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

// NewHeader builds the header for dataSize bytes of PCM in format f.
func NewHeader(f Format, dataSize int64) (Header, error) {
	if dataSize < 0 || dataSize > math.MaxUint32-36 {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, dataSize)
	}
	return Header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(dataSize) + 36,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: fmtChunkSize,
		AudioFormat:   formatPCM,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.ByteRate()),
		BlockAlign:    uint16(f.BlockAlign()),
		BitsPerSample: uint16(f.BitDepth),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataSize),
	}, nil
}

// WriteHeader writes the canonical header for dataSize bytes of PCM to w.
func WriteHeader(w io.Writer, f Format, dataSize int64) error {
	h, err := NewHeader(f, dataSize)
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}
	return nil
}

// ParseHeader reads a canonical header from r and checks its chunk IDs.
func ParseHeader(r io.Reader) (*Header, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("reading WAV header: %w", err)
	}

	var h Header
	if err := binary.Read(bytes.NewReader(raw[:]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("decoding WAV header: %w", err)
	}

	switch {
	case string(h.ChunkID[:]) != "RIFF":
		return nil, errors.New("invalid WAV file: missing RIFF header")
	case string(h.Format[:]) != "WAVE":
		return nil, errors.New("invalid WAV file: missing WAVE format")
	case string(h.Subchunk1ID[:]) != "fmt ":
		return nil, errors.New("invalid WAV file: missing fmt chunk")
	case string(h.Subchunk2ID[:]) != "data":
		return nil, errors.New("invalid WAV file: missing data chunk")
	}
	return &h, nil
}

// PCMFormat returns the format fields stored in the header.
func (h *Header) PCMFormat() Format {
	return Format{
		SampleRate: int(h.SampleRate),
		Channels:   int(h.NumChannels),
		BitDepth:   int(h.BitsPerSample),
	}
}
