package audiocarve

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/wavfile"
	"github.com/himanishpuri/AudioCarve/pkg/utils"
)

// Defaults match a Behringer X Air 16 recording: 48 kHz, 16-bit, stereo.
const (
	DefaultBlockSize          = 1024 * 1024
	DefaultSampleRate         = 48000
	DefaultBitDepth           = 16
	DefaultChannels           = 2
	DefaultProgressEvery      = 100
	DefaultSpectrogramSeconds = 30
	DefaultOutputDir          = "~/Desktop/recovered_audio"
)

// MinBlockSize is the smallest block the classifier can say anything about.
const MinBlockSize = 1000

type Config struct {
	ImagePath          string
	OutputDir          string
	BlockSize          int
	SampleRate         int
	BitDepth           int
	Channels           int
	ProgressEvery      int
	DBPath             string
	Spectrograms       bool
	SpectrogramSeconds int
	Logger             Logger
	Catalog            Catalog
	Output             io.Writer
}

type Option func(*Config)

func WithImagePath(path string) Option {
	return func(c *Config) {
		c.ImagePath = path
	}
}

func WithOutputDir(dir string) Option {
	return func(c *Config) {
		c.OutputDir = dir
	}
}

func WithBlockSize(size int) Option {
	return func(c *Config) {
		c.BlockSize = size
	}
}

// WithFormat sets the PCM layout assumed for extracted audio.
func WithFormat(sampleRate, bitDepth, channels int) Option {
	return func(c *Config) {
		c.SampleRate = sampleRate
		c.BitDepth = bitDepth
		c.Channels = channels
	}
}

func WithProgressEvery(blocks int) Option {
	return func(c *Config) {
		c.ProgressEvery = blocks
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithSpectrograms(enabled bool, seconds int) Option {
	return func(c *Config) {
		c.Spectrograms = enabled
		if seconds > 0 {
			c.SpectrogramSeconds = seconds
		}
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithCatalog(catalog Catalog) Option {
	return func(c *Config) {
		c.Catalog = catalog
	}
}

// WithOutput redirects the scan's progress report, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(c *Config) {
		c.Output = w
	}
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir:          DefaultOutputDir,
		BlockSize:          DefaultBlockSize,
		SampleRate:         DefaultSampleRate,
		BitDepth:           DefaultBitDepth,
		Channels:           DefaultChannels,
		ProgressEvery:      DefaultProgressEvery,
		SpectrogramSeconds: DefaultSpectrogramSeconds,
		Output:             os.Stdout,
	}
}

// Format returns the WAV layout derived from the configuration.
func (c *Config) Format() wavfile.Format {
	return wavfile.Format{
		SampleRate: c.SampleRate,
		Channels:   c.Channels,
		BitDepth:   c.BitDepth,
	}
}

// Validate checks the configuration before a scan starts.
func (c *Config) Validate() error {
	if c.ImagePath == "" {
		return errors.New("image path is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.BlockSize < MinBlockSize {
		return fmt.Errorf("block size must be at least %d bytes, got %d", MinBlockSize, c.BlockSize)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth: %d (only 16-bit is supported)", c.BitDepth)
	}
	if c.Channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %d", c.Channels)
	}
	if c.ProgressEvery < 1 {
		return fmt.Errorf("progress interval must be at least 1 block, got %d", c.ProgressEvery)
	}
	return nil
}

func (c *Config) normalize() {
	c.OutputDir = utils.ExpandHome(c.OutputDir)
	if c.Output == nil {
		c.Output = io.Discard
	}
	if c.SpectrogramSeconds <= 0 {
		c.SpectrogramSeconds = DefaultSpectrogramSeconds
	}
}
