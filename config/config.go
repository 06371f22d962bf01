// Package config holds the run settings of a rescue, populated from command
// line flags, an optional config file and the environment through viper.
package config

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Supported aligners.
const (
	STAR    = "star"
	Subread = "subread"
)

// ErrPairedEnd is returned when two read files are given. Only single-end
// reads can be rescued.
var ErrPairedEnd = errors.New("paired-end read recovery not supported")

// Config is the root-level settings struct.
type Config struct {
	Aligner          string   `mapstructure:"aligner"`
	Input            []string `mapstructure:"input"`
	GenomeFiles      []string `mapstructure:"genome-file"`
	GenomeIndex      string   `mapstructure:"genome-index"`
	Annotation       string   `mapstructure:"annotation"`
	BuilderExtraArgs string   `mapstructure:"builder-extra-args"`
	AlignerExtraArgs string   `mapstructure:"aligner-extra-args"`
	OutputDir        string   `mapstructure:"output-dir"`
	Prefix           string   `mapstructure:"prefix"`
	BamOutput        bool     `mapstructure:"bam"`
	Threads          int      `mapstructure:"threads"`
	QueueBuffer      int      `mapstructure:"queue-buffer"`
	LogLevel         string   `mapstructure:"loglevel"`

	// consensus
	ConsensusThreshold float64 `mapstructure:"consensus-threshold"`
	MinAnchors         int     `mapstructure:"min-anchors"`

	// rescue
	BlastIdentity int    `mapstructure:"blast-perc-identity"`
	BlastCoverage int    `mapstructure:"blast-perc-query-coverage"`
	Flank         int    `mapstructure:"flank"`
	RepeatDB      string `mapstructure:"repeat-db"`

	// pseudo-reference layout
	BinSize        int `mapstructure:"bin-size"`
	ReadsPerContig int `mapstructure:"reads-per-contig"`

	// precomputed alignments
	SourceAlignFile string `mapstructure:"source-align-file"`
	NewAlignFile    string `mapstructure:"new-align-file"`
}

// NewConfig returns a Config with the default settings.
func NewConfig() *Config {
	return &Config{
		OutputDir:          ".",
		Threads:            4,
		QueueBuffer:        1000,
		LogLevel:           "info",
		ConsensusThreshold: 0.6,
		MinAnchors:         1,
		BlastIdentity:      84,
		BlastCoverage:      65,
		Flank:              100,
		BinSize:            500,
		ReadsPerContig:     1000,
	}
}

// FromViper returns a Config populated from the viper settings on top of the
// defaults.
func FromViper(v *viper.Viper) (*Config, error) {
	c := NewConfig()
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	c.Aligner = strings.ToLower(c.Aligner)
	c.GenomeFiles = splitList(c.GenomeFiles)
	return c, nil
}

// splitList flattens comma separated entries.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}

// Validate checks the settings before any work starts.
func (c *Config) Validate() error {
	if c.Aligner != STAR && c.Aligner != Subread {
		return errors.Errorf("unsupported aligner %q (STAR|Subread)", c.Aligner)
	}
	if len(c.Input) > 2 {
		return errors.Errorf("input takes at most 2 arguments, got %d", len(c.Input))
	}
	if len(c.Input) == 2 {
		return ErrPairedEnd
	}
	if len(c.Input) == 0 && c.SourceAlignFile == "" {
		return errors.New("no input reads or source alignment file")
	}
	if len(c.GenomeFiles) == 0 {
		return errors.New("no genome file specified")
	}
	if c.ConsensusThreshold <= 0 || c.ConsensusThreshold > 1 {
		return errors.Errorf("consensus threshold must be in (0,1], got %v", c.ConsensusThreshold)
	}
	if c.Threads < 1 {
		return errors.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	if c.BinSize <= 0 || c.ReadsPerContig <= 0 {
		return errors.New("bin size and reads per contig must be positive")
	}
	if c.Flank < 0 {
		return errors.Errorf("flank must not be negative, got %d", c.Flank)
	}
	if c.MinAnchors < 1 {
		c.MinAnchors = 1
	}
	if c.QueueBuffer < 1 {
		c.QueueBuffer = 1
	}
	return nil
}

// OutputPrefix returns the path prefix of every output file.
func (c *Config) OutputPrefix() string {
	return filepath.Join(c.OutputDir, c.prefix())
}

// DataDir is where intermediate second pass files go.
func (c *Config) DataDir() string {
	return filepath.Join(c.OutputDir, "rescue_data")
}

// TmpDir holds the per-task scopes of the rescue phase.
func (c *Config) TmpDir() string {
	return filepath.Join(c.OutputDir, "rescue_tmp")
}

func (c *Config) prefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	name := "scavenger"
	if len(c.Input) > 0 {
		name = strings.Split(c.Input[0], ",")[0]
	} else if c.SourceAlignFile != "" {
		name = c.SourceAlignFile
	}
	name = filepath.Base(name)
	for _, ext := range []string{".gz", ".fastq", ".fq", ".bam", ".sam"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
