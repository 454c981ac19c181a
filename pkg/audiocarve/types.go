package audiocarve

import (
	"errors"

	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/runs"
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/storage"
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/wavfile"
	"github.com/himanishpuri/AudioCarve/pkg/models"
)

// ErrImageNotFound is returned when the input image does not exist.
var ErrImageNotFound = errors.New("image file not found")

// ErrScanNotFound is returned when the catalog has no scan with the given id.
var ErrScanNotFound = storage.ErrScanNotFound

// DetectedRun is an audio run plus diagnostics taken from its first block.
type DetectedRun struct {
	runs.Run
	Score    float64 // smoothness
	Flatness float64 // spectral flatness
}

// Analysis is the outcome of the classification pass.
type Analysis struct {
	ImagePath     string
	ImageSize     int64
	BlockSize     int
	BlocksScanned int64
	Counts        models.ClassCounts
	Runs          []DetectedRun
}

// Artifact describes the files written for one run.
type Artifact struct {
	Ordinal         int
	Run             DetectedRun
	RawPath         string
	WavPath         string
	SpectrogramPath string
	Size            int64
	WAV             *wavfile.Info // nil if the written file failed verification
}

// Report is the result of a full scan.
type Report struct {
	ScanID    string // empty when no catalog is configured
	Analysis  *Analysis
	Artifacts []Artifact
}
