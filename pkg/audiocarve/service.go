package audiocarve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/classify"
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/runs"
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/spectral"
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/wavfile"
	"github.com/himanishpuri/AudioCarve/pkg/logger"
	"github.com/himanishpuri/AudioCarve/pkg/models"
	"github.com/himanishpuri/AudioCarve/pkg/utils"
)

const mib = 1024 * 1024

var rule = strings.Repeat("=", 60)

// carveService is the default implementation of the Service interface.
type carveService struct {
	catalog Catalog
	log     Logger
	out     io.Writer
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.normalize()

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var catalog Catalog
	var err error
	switch {
	case cfg.Catalog != nil:
		catalog = cfg.Catalog
	case cfg.DBPath != "":
		catalog, err = NewSQLiteCatalog(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
	default:
		catalog = nopCatalog{}
	}

	return &carveService{
		catalog: catalog,
		log:     cfg.Logger,
		out:     cfg.Output,
		config:  cfg,
	}, nil
}

// Scan classifies every block of the image, extracts the audio runs and
// records the outcome in the catalog.
func (s *carveService) Scan(ctx context.Context) (*Report, error) {
	analysis, err := s.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	imagePath := analysis.ImagePath
	if abs, err := filepath.Abs(imagePath); err == nil {
		imagePath = abs
	}
	scanID, err := s.catalog.CreateScan(imagePath, analysis.ImageSize, analysis.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("failed to register scan: %w", err)
	}

	artifacts, err := s.Extract(ctx, analysis)
	if err != nil {
		return nil, err
	}

	for _, a := range artifacts {
		rec := models.Run{
			ScanID:          scanID,
			Ordinal:         a.Ordinal,
			StartBlock:      a.Run.Start,
			EndBlock:        a.Run.End,
			Offset:          a.Run.Offset(analysis.BlockSize),
			Size:            a.Size,
			RawPath:         a.RawPath,
			WavPath:         a.WavPath,
			SpectrogramPath: a.SpectrogramPath,
			Score:           a.Run.Score,
			Flatness:        a.Run.Flatness,
		}
		if err := s.catalog.AddRun(rec); err != nil {
			return nil, fmt.Errorf("failed to record run %d: %w", a.Ordinal, err)
		}
	}

	if err := s.catalog.FinishScan(scanID, analysis.BlocksScanned, analysis.Counts, len(artifacts)); err != nil {
		return nil, fmt.Errorf("failed to finish scan: %w", err)
	}
	if scanID != "" {
		s.log.Infof("Recorded scan %s with %d runs", scanID, len(artifacts))
	}

	return &Report{
		ScanID:    scanID,
		Analysis:  analysis,
		Artifacts: artifacts,
	}, nil
}

// Analyze reads the image block by block and tracks runs of audio blocks.
func (s *carveService) Analyze(ctx context.Context) (*Analysis, error) {
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	path := s.config.ImagePath
	info, err := os.Stat(path)
	if err != nil {
		if utils.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not an image", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	blockSize := s.config.BlockSize
	size := info.Size()
	totalBlocks := (size + int64(blockSize) - 1) / int64(blockSize)

	fmt.Fprintf(s.out, "File: %s\n", path)
	fmt.Fprintf(s.out, "Size: %s (%d bytes)\n", humanize.IBytes(uint64(size)), size)
	fmt.Fprintf(s.out, "Blocks to analyze: %d\n", totalBlocks)
	fmt.Fprintln(s.out, strings.Repeat("-", 60))
	s.log.Infof("Scanning %s: %d blocks of %d bytes", path, totalBlocks, blockSize)

	analysis := &Analysis{
		ImagePath: path,
		ImageSize: size,
		BlockSize: blockSize,
	}
	tracker := runs.NewTracker()
	buf := make([]byte, blockSize)

	// diagnostics of the block that opened each run, in run order
	var openers []DetectedRun

	var index int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, readErr := io.ReadFull(f, buf)
		if n == 0 {
			if readErr == nil || errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading block %d: %w", index, readErr)
		}
		if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("reading block %d: %w", index, readErr)
		}

		block := buf[:n]
		res := classify.Classify(block)
		countClass(&analysis.Counts, res.Class)
		position := float64(index*int64(blockSize)) / mib

		switch tracker.Observe(index, res.Class) {
		case runs.EventOpened:
			flatness := spectral.Flatness(spectral.BlockSamples(block, s.config.Channels))
			openers = append(openers, DetectedRun{Score: res.Score, Flatness: flatness})
			fmt.Fprintf(s.out, "[%6.0f MB] ▶ AUDIO FOUND (score: %.2f)\n", position, res.Score)
			s.log.Debugf("Block %d opens a run: smoothness=%.3f variance=%.0f flatness=%.4f",
				index, res.Smoothness, res.Variance, flatness)
		case runs.EventClosed:
			fmt.Fprintf(s.out, "[%6.0f MB] ◼ End of audio\n", position)
		}

		if res.Class != classify.Audio && index%int64(s.config.ProgressEvery) == 0 {
			fmt.Fprintf(s.out, "[%6.0f MB] ... %s\r", position, res.Class)
		}

		index++
		if readErr != nil {
			// short final block
			break
		}
	}

	detected := tracker.Finish(index)
	analysis.BlocksScanned = index
	analysis.Runs = make([]DetectedRun, len(detected))
	for i, r := range detected {
		analysis.Runs[i] = openers[i]
		analysis.Runs[i].Run = r
	}

	s.log.Infof("Scanned %d blocks: %d empty, %d silence, %d noise, %d audio",
		analysis.Counts.Total(), analysis.Counts.Empty, analysis.Counts.Silence, analysis.Counts.Noise, analysis.Counts.Audio)
	return analysis, nil
}

func countClass(c *models.ClassCounts, class classify.Class) {
	switch class {
	case classify.Empty:
		c.Empty++
	case classify.Silence:
		c.Silence++
	case classify.Noise:
		c.Noise++
	case classify.Audio:
		c.Audio++
	}
}

// Extract copies each detected run to a raw file and wraps it as a WAV.
func (s *carveService) Extract(ctx context.Context, analysis *Analysis) ([]Artifact, error) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, rule)
	fmt.Fprintf(s.out, "FOUND %d AUDIO RUNS:\n", len(analysis.Runs))
	fmt.Fprintln(s.out, rule)

	// catalog rows must stay valid from any working directory
	outDir, err := filepath.Abs(s.config.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}
	if err := utils.MakeDir(outDir); err != nil {
		return nil, err
	}

	if len(analysis.Runs) == 0 {
		return nil, nil
	}

	img, err := os.Open(analysis.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer img.Close()

	format := s.config.Format()
	blockSize := analysis.BlockSize
	artifacts := make([]Artifact, 0, len(analysis.Runs))

	for i, run := range analysis.Runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ordinal := i + 1
		startMB := float64(run.Offset(blockSize)) / mib
		endMB := float64((run.End+1)*int64(blockSize)) / mib
		fmt.Fprintf(s.out, "\nRun %d: %.0f MB - %.0f MB (%.0f MB)\n", ordinal, startMB, endMB, endMB-startMB)

		rawPath := filepath.Join(outDir, fmt.Sprintf("audio_block_%03d_%.0fMB.raw", ordinal, startMB))
		written, err := copyRange(img, rawPath, run.Offset(blockSize), run.Length(blockSize))
		if err != nil {
			return nil, fmt.Errorf("extracting run %d: %w", ordinal, err)
		}
		fmt.Fprintf(s.out, "   Saved: %s\n", rawPath)

		wavPath := utils.ReplaceExt(rawPath, ".wav")
		if _, err := wavfile.WrapRaw(rawPath, wavPath, format); err != nil {
			return nil, fmt.Errorf("writing WAV for run %d: %w", ordinal, err)
		}
		fmt.Fprintf(s.out, "   WAV: %s\n", wavPath)

		artifact := Artifact{
			Ordinal: ordinal,
			Run:     run,
			RawPath: rawPath,
			WavPath: wavPath,
			Size:    written,
		}

		if info, err := wavfile.Inspect(wavPath); err != nil {
			s.log.Warnf("WAV verification failed for %s: %v", wavPath, err)
		} else {
			artifact.WAV = info
			s.log.Debugf("Verified %s: %s, %v", filepath.Base(wavPath), info.Format(), info.Duration)
		}

		if s.config.Spectrograms {
			pngPath := utils.ReplaceExt(rawPath, ".png")
			if err := spectral.RenderPNG(wavPath, pngPath, s.config.SpectrogramSeconds); err != nil {
				s.log.Warnf("Spectrogram for run %d failed: %v", ordinal, err)
			} else {
				artifact.SpectrogramPath = pngPath
				fmt.Fprintf(s.out, "   Spectrogram: %s\n", pngPath)
			}
		}

		artifacts = append(artifacts, artifact)
	}

	s.log.Infof("Extracted %d runs to %s", len(artifacts), outDir)
	return artifacts, nil
}

// copyRange writes up to length bytes of img starting at offset to dst. It
// stops early at end of image.
func copyRange(img io.ReaderAt, dst string, offset, length int64) (int64, error) {
	tmpPath := dst + ".tmp"
	defer os.Remove(tmpPath)

	out, err := os.Create(tmpPath)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, io.NewSectionReader(img, offset, length))
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("copying %d bytes at offset %d: %w", length, offset, err)
	}

	if err := utils.MoveFile(tmpPath, dst); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *carveService) ListScans() ([]models.Scan, error) {
	return s.catalog.ListScans()
}

func (s *carveService) ListRuns(scanID string) ([]models.Run, error) {
	return s.catalog.ListRuns(scanID)
}

// DeleteScan removes a scan and its runs from the catalog. Extracted files
// are left on disk.
func (s *carveService) DeleteScan(scanID string) error {
	return s.catalog.DeleteScan(scanID)
}

// Close releases all resources held by the service.
func (s *carveService) Close() error {
	return s.catalog.Close()
}
