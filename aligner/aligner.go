package aligner

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/guigolab/scavenger/config"
	"github.com/pkg/errors"
)

// IndexOptions describe an index build.
type IndexOptions struct {
	GenomeFiles []string
	Annotation  string
	// Prefix is the path prefix of the index directory.
	Prefix    string
	Threads   int
	ExtraArgs []string
}

// AlignOptions describe an alignment run.
type AlignOptions struct {
	Index string
	// Input holds the read files of a single-end library.
	Input []string
	// Prefix is the path prefix of the output files.
	Prefix    string
	Threads   int
	ExtraArgs []string
	BAM       bool
}

// Aligner is a short read aligner and its index builder.
type Aligner interface {
	Name() string
	// Executables lists the programs that must be in PATH.
	Executables() []string
	// BuildIndex returns the index location to pass to Align.
	BuildIndex(opts IndexOptions) (string, error)
	// Align returns the path of the alignment file.
	Align(opts AlignOptions) (string, error)
	// PseudoArgs returns the extra index and alignment arguments for a
	// pseudo-reference of length bases over n contigs.
	PseudoArgs(length, n int) (index, align []string)
	// LocalArgs returns the extra index and alignment arguments for a genome
	// slice of length bases. Scratch directories go under dir.
	LocalArgs(length int, dir string) (index, align []string)
}

// New returns the named aligner.
func New(name string, r *Runner) (Aligner, error) {
	switch strings.ToLower(name) {
	case config.STAR:
		return &star{r}, nil
	case config.Subread:
		return &subread{r}, nil
	}
	return nil, errors.Errorf("unsupported aligner %q (STAR|Subread)", name)
}

type star struct {
	*Runner
}

func (s *star) Name() string { return "STAR" }

func (s *star) Executables() []string { return []string{"STAR"} }

func (s *star) PseudoArgs(length, n int) (index, align []string) {
	return PseudoIndexArgs(length, n), PseudoAlignArgs(n)
}

func (s *star) LocalArgs(length int, dir string) (index, align []string) {
	index = []string{
		"--genomeSAindexNbases", strconv.Itoa(SAindexNbases(length)),
		"--outTmpDir", filepath.Join(dir, "star_index_tmp"),
	}
	align = []string{"--outTmpDir", filepath.Join(dir, "star_align_tmp")}
	return index, align
}

func (s *star) BuildIndex(opts IndexOptions) (string, error) {
	dir := opts.Prefix + "_star"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create index directory %s", dir)
	}
	args := []string{
		"--runThreadN", strconv.Itoa(opts.Threads),
		"--runMode", "genomeGenerate",
		"--genomeDir", dir,
		"--genomeFastaFiles",
	}
	args = append(args, opts.GenomeFiles...)
	if opts.Annotation != "" {
		args = append(args, "--sjdbGTFfile", opts.Annotation)
	}
	args = append(args, opts.ExtraArgs...)
	if err := s.Run("STAR", "STAR", args, filepath.Join(dir, "Genome")); err != nil {
		return "", err
	}
	return dir, nil
}

func (s *star) Align(opts AlignOptions) (string, error) {
	output := opts.Prefix + ".Aligned.out.sam"
	if opts.BAM {
		output = opts.Prefix + ".Aligned.out.bam"
	}
	args := []string{"--runThreadN", strconv.Itoa(opts.Threads)}
	args = append(args, opts.ExtraArgs...)
	args = append(args,
		"--genomeDir", opts.Index,
		"--readFilesIn", strings.Join(opts.Input, ","),
		"--outFileNamePrefix", opts.Prefix+".",
	)
	if len(opts.Input) > 0 && strings.HasSuffix(opts.Input[0], "gz") {
		args = append(args, "--readFilesCommand", "zcat")
	}
	if opts.BAM {
		args = append(args, "--outSAMtype", "BAM", "Unsorted")
	}
	args = append(args, "--outSAMunmapped", "Within", "KeepPairs")
	if err := s.Run("STAR", "STAR", args, output); err != nil {
		return "", err
	}
	return output, nil
}

type subread struct {
	*Runner
}

func (s *subread) Name() string { return "Subread" }

func (s *subread) Executables() []string {
	return []string{"subread-align", "subread-buildindex"}
}

func (s *subread) PseudoArgs(length, n int) (index, align []string) {
	return nil, nil
}

func (s *subread) LocalArgs(length int, dir string) (index, align []string) {
	return nil, nil
}

func (s *subread) BuildIndex(opts IndexOptions) (string, error) {
	dir := opts.Prefix + "_subread"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create index directory %s", dir)
	}
	index := filepath.Join(dir, "genome")
	args := append([]string{"-o", index}, opts.ExtraArgs...)
	args = append(args, opts.GenomeFiles...)
	if err := s.Run("Subread-Build", "subread-buildindex", args, index+".00.b.tab"); err != nil {
		return "", err
	}
	return index, nil
}

func (s *subread) Align(opts AlignOptions) (string, error) {
	output := opts.Prefix + ".sam"
	if opts.BAM {
		output = opts.Prefix + ".bam"
	}
	args := []string{"-T", strconv.Itoa(opts.Threads), "-t", "0"}
	args = append(args, opts.ExtraArgs...)
	args = append(args,
		"-i", opts.Index,
		"-r", strings.Join(opts.Input, ","),
		"-o", output,
	)
	if !opts.BAM {
		args = append(args, "--SAMoutput")
	}
	if err := s.Run("Subread", "subread-align", args, output); err != nil {
		return "", err
	}
	return output, nil
}
