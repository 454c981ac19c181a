package audiocarve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML form of Config. Zero values leave the
// corresponding setting untouched.
type FileConfig struct {
	Image  string `yaml:"image"`
	Output string `yaml:"output_dir"`
	DBPath string `yaml:"db_path"`

	Scan struct {
		BlockSize     int `yaml:"block_size"`
		ProgressEvery int `yaml:"progress_every"`
	} `yaml:"scan"`

	Audio struct {
		SampleRate int `yaml:"sample_rate"`
		BitDepth   int `yaml:"bit_depth"`
		Channels   int `yaml:"channels"`
	} `yaml:"audio"`

	Spectrogram struct {
		Enabled bool `yaml:"enabled"`
		Seconds int  `yaml:"seconds"`
	} `yaml:"spectrogram"`
}

// LoadFile reads a YAML configuration file and returns the options it sets.
func LoadFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc.Options(), nil
}

// Options converts the non-zero fields of fc into options.
func (fc *FileConfig) Options() []Option {
	var opts []Option
	if fc.Image != "" {
		opts = append(opts, WithImagePath(fc.Image))
	}
	if fc.Output != "" {
		opts = append(opts, WithOutputDir(fc.Output))
	}
	if fc.DBPath != "" {
		opts = append(opts, WithDBPath(fc.DBPath))
	}
	if fc.Scan.BlockSize != 0 {
		opts = append(opts, WithBlockSize(fc.Scan.BlockSize))
	}
	if fc.Scan.ProgressEvery != 0 {
		opts = append(opts, WithProgressEvery(fc.Scan.ProgressEvery))
	}
	if a := fc.Audio; a.SampleRate != 0 || a.BitDepth != 0 || a.Channels != 0 {
		opts = append(opts, func(c *Config) {
			if a.SampleRate != 0 {
				c.SampleRate = a.SampleRate
			}
			if a.BitDepth != 0 {
				c.BitDepth = a.BitDepth
			}
			if a.Channels != 0 {
				c.Channels = a.Channels
			}
		})
	}
	if fc.Spectrogram.Enabled {
		opts = append(opts, WithSpectrograms(true, fc.Spectrogram.Seconds))
	}
	return opts
}
