package wavfile

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/himanishpuri/AudioCarve/pkg/utils"
)

// WrapRaw writes wavPath as a canonical header for f followed by the bytes
// of rawPath. The file is assembled under a temporary name and renamed
// into place.
func WrapRaw(rawPath, wavPath string, f Format) (int64, error) {
	in, err := os.Open(rawPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", rawPath, err)
	}

	tmpPath := wavPath + ".tmp"
	defer os.Remove(tmpPath)

	out, err := os.Create(tmpPath)
	if err != nil {
		return 0, err
	}

	n, err := writeWAV(out, in, f, info.Size())
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %s: %w", tmpPath, cerr)
	}
	if err != nil {
		return 0, err
	}

	if err := utils.MoveFile(tmpPath, wavPath); err != nil {
		return 0, err
	}
	return n, nil
}

// Encode writes a complete WAV stream for dataSize bytes read from pcm.
func Encode(w io.Writer, pcm io.Reader, f Format, dataSize int64) (int64, error) {
	return writeWAV(w, pcm, f, dataSize)
}

func writeWAV(w io.Writer, pcm io.Reader, f Format, dataSize int64) (int64, error) {
	bw := bufio.NewWriterSize(w, 1<<20)
	if err := WriteHeader(bw, f, dataSize); err != nil {
		return 0, err
	}

	copied, err := io.CopyN(bw, pcm, dataSize)
	if err != nil {
		return 0, fmt.Errorf("copying pcm data (%d of %d bytes): %w", copied, dataSize, err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("flushing WAV data: %w", err)
	}
	return HeaderSize + copied, nil
}
