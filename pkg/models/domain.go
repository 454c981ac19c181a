package models

import "time"

// ClassCounts tallies how many blocks fell into each class during a scan.
type ClassCounts struct {
	Empty   int64
	Silence int64
	Noise   int64
	Audio   int64
}

// Total returns the number of blocks counted.
func (c ClassCounts) Total() int64 {
	return c.Empty + c.Silence + c.Noise + c.Audio
}

// Scan is one pass over a disk image.
type Scan struct {
	ID            string // UUID of the scan
	ImagePath     string
	ImageSize     int64
	BlockSize     int
	BlocksScanned int64
	Counts        ClassCounts
	RunCount      int
	StartedAt     time.Time
	FinishedAt    time.Time // zero while the scan is running
}

// Run is an extracted stretch of audio blocks and the files written for it.
type Run struct {
	ScanID          string
	Ordinal         int   // 1-based position in the scan
	StartBlock      int64 // inclusive
	EndBlock        int64 // inclusive
	Offset          int64 // byte offset in the image
	Size            int64 // bytes written to the raw file
	RawPath         string
	WavPath         string
	SpectrogramPath string  // empty when not rendered
	Score           float64 // smoothness of the first block
	Flatness        float64 // spectral flatness of the first block
}
