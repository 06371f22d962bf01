// Package scavenger rescues unmapped reads of a single-end RNA-seq alignment by
// locating them through the mapped reads that share their neighbourhood, and
// realigning them against the genome around that locus.
package scavenger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guigolab/scavenger/aligner"
	"github.com/guigolab/scavenger/anchor"
	"github.com/guigolab/scavenger/assemble"
	"github.com/guigolab/scavenger/classify"
	"github.com/guigolab/scavenger/config"
	"github.com/guigolab/scavenger/consensus"
	"github.com/guigolab/scavenger/pseudoref"
	"github.com/guigolab/scavenger/readinfo"
	"github.com/guigolab/scavenger/rescue"
	"github.com/guigolab/scavenger/sam"
	"github.com/guigolab/scavenger/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Pipeline is the context of one rescue run.
type Pipeline struct {
	Config *config.Config
	Log    log.FieldLogger
	// CommandLine is recorded in the program line of the output header.
	CommandLine string

	runner  *aligner.Runner
	aligner aligner.Aligner
	blast   *aligner.Blast
}

// NewPipeline validates cfg and returns a Pipeline running external tools
// through exec. A nil exec runs them with os/exec.
func NewPipeline(cfg *config.Config, exec aligner.Executor, logger log.FieldLogger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := aligner.NewRunner(exec, logger)
	a, err := aligner.New(cfg.Aligner, r)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Config:  cfg,
		Log:     logger,
		runner:  r,
		aligner: a,
		blast:   aligner.NewBlast(r),
	}, nil
}

func (p *Pipeline) prefix() string {
	return p.Config.OutputPrefix()
}

func (p *Pipeline) dataFile(name string) string {
	return filepath.Join(p.Config.DataDir(), filepath.Base(p.prefix())+name)
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// Run executes every phase and returns the run summary. Tool failures inside
// the rescue phase are reported as failed reads; any other error aborts the
// run.
func (p *Pipeline) Run() (*stats.Summary, error) {
	cfg := p.Config
	for _, dir := range []string{cfg.OutputDir, cfg.DataDir(), cfg.TmpDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "cannot create %s", dir)
		}
	}
	if err := p.runner.Check(append(p.aligner.Executables(), p.blast.Executables()...)...); err != nil {
		return nil, err
	}

	source, err := p.source()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	p.Log.Infof("Classifying reads of %s", source)
	res, err := classify.File(source)
	if err != nil {
		return nil, err
	}
	summary := stats.NewSummary()
	summary.Total = res.Counts.Total
	summary.Mapped = res.Counts.Mapped
	summary.Unmapped = res.Counts.Unmapped
	summary.UniqueUnmapped = len(res.Groups)
	p.Log.Infof("Total number of input reads: %s", comma(summary.Total))
	p.Log.Infof("Total number of mapped reads: %s", comma(summary.Mapped))
	p.Log.Infof("Total number of unmapped reads: %s", comma(summary.Unmapped))
	p.Log.Infof("Total number of unique seqs of unmapped reads: %s", comma(summary.UniqueUnmapped))
	p.Log.Infof("Classification done in %v", time.Since(start))

	var results []rescue.Result
	if len(res.Groups) > 0 {
		results, err = p.rescue(source, res, summary)
		if err != nil {
			return nil, err
		}
	}

	a, err := assemble.Assemble(results, res.ByRepresentative())
	if err != nil {
		return nil, err
	}
	summary.RescuedUnique = a.Unique
	summary.RescuedAll = len(a.Rescued)
	summary.Failed = len(a.Failed)
	summary.NH = a.NH
	summary.Finalize()

	p.Log.Infof("Total unmapped aligned with mapped: %s", comma(summary.Anchored))
	p.Log.Infof("Total unique can map: %s (%v%%)", comma(summary.RescuedUnique), summary.UniqueRescueRate)
	p.Log.Infof("Total all can map: %s (%v%%)", comma(summary.RescuedAll), summary.AllRescueRate)
	p.Log.Infof("Percentage of source mappability: %v", summary.SourceMappability)
	p.Log.Infof("Total number of mapped reads after rescue: %s", comma(summary.Mapped+summary.RescuedAll))
	p.Log.Infof("Percentage of new mappability: %v", summary.NewMappability)

	if len(a.Failed) > 0 {
		failed := p.prefix() + "_failed.txt"
		if err := a.WriteFailed(failed); err != nil {
			return nil, err
		}
		p.Log.Warnf("%d out of the %d reads failed to be rescued due to failure in tool", len(a.Failed), summary.Anchored)
		p.Log.Warnf("These reads' query names and sequences are stored in %s", failed)
	}

	if err := p.write(source, a); err != nil {
		return nil, err
	}
	if err := writeSummary(p.prefix()+"_summary.json", summary); err != nil {
		return nil, err
	}
	p.Log.Info("Rescue mission finished!")
	return summary, nil
}

// source returns the first pass alignment, running the aligner when none was
// given.
func (p *Pipeline) source() (string, error) {
	cfg := p.Config
	if cfg.SourceAlignFile != "" {
		return cfg.SourceAlignFile, nil
	}
	start := time.Now()
	p.Log.Info("Source execution...")
	index := cfg.GenomeIndex
	if index == "" {
		var err error
		index, err = p.aligner.BuildIndex(aligner.IndexOptions{
			GenomeFiles: cfg.GenomeFiles,
			Annotation:  cfg.Annotation,
			Prefix:      p.prefix(),
			Threads:     cfg.Threads,
			ExtraArgs:   aligner.SplitArgs(cfg.BuilderExtraArgs),
		})
		if err != nil {
			return "", err
		}
	}
	out, err := p.aligner.Align(aligner.AlignOptions{
		Index:     index,
		Input:     cfg.Input,
		Prefix:    p.prefix(),
		Threads:   cfg.Threads,
		ExtraArgs: aligner.SplitArgs(cfg.AlignerExtraArgs),
		BAM:       cfg.BamOutput,
	})
	if err != nil {
		return "", err
	}
	p.Log.Infof("Completed source execution in %v", time.Since(start))
	return out, nil
}

// secondPass aligns the uniquely mapped reads to the pseudo-reference. The
// pseudo-reference index and the read subset are prepared concurrently.
func (p *Pipeline) secondPass(source string, ref *pseudoref.Reference, res *classify.Result) (string, error) {
	cfg := p.Config
	if cfg.NewAlignFile != "" {
		return cfg.NewAlignFile, nil
	}
	start := time.Now()
	p.Log.Info("Running follow-up execution for rescuing...")

	var (
		wg       sync.WaitGroup
		index    string
		indexErr error
		subset   = p.dataFile("_mapped.fq")
		nreads   int
		readsErr error
	)
	indexArgs, alignArgs := p.aligner.PseudoArgs(ref.Length(), ref.Contigs())
	wg.Add(2)
	go func() {
		defer wg.Done()
		fasta := p.dataFile("_unmapped.fa")
		if indexErr = ref.WriteFile(fasta); indexErr != nil {
			return
		}
		index, indexErr = p.aligner.BuildIndex(aligner.IndexOptions{
			GenomeFiles: []string{fasta},
			Prefix:      p.dataFile("_unmapped"),
			Threads:     cfg.Threads,
			ExtraArgs:   indexArgs,
		})
	}()
	go func() {
		defer wg.Done()
		if len(cfg.Input) > 0 {
			nreads, readsErr = pseudoref.WriteSubset(cfg.Input, res.Mapped, subset)
		} else {
			nreads, readsErr = pseudoref.WriteAlignedSubset(source, res.Mapped, subset)
		}
	}()
	wg.Wait()
	if indexErr != nil {
		return "", errors.Wrap(indexErr, "cannot build the pseudo-reference index")
	}
	if readsErr != nil {
		return "", errors.Wrap(readsErr, "cannot write the mapped reads")
	}
	p.Log.Infof("Wrote %s uniquely mapped reads to %s", comma(nreads), subset)

	out, err := p.aligner.Align(aligner.AlignOptions{
		Index:     index,
		Input:     []string{subset},
		Prefix:    p.dataFile("_mapped"),
		Threads:   cfg.Threads,
		ExtraArgs: alignArgs,
		BAM:       true,
	})
	if err != nil {
		return "", err
	}
	p.Log.Infof("Completed follow-up execution in %v", time.Since(start))
	return out, nil
}

// rescue runs the phases from the second pass to the realignment of the
// unmapped representatives.
func (p *Pipeline) rescue(source string, res *classify.Result, summary *stats.Summary) ([]rescue.Result, error) {
	cfg := p.Config
	ref, err := pseudoref.New(res.Sequences(), pseudoref.Layout{BinSize: cfg.BinSize, ReadsPerContig: cfg.ReadsPerContig})
	if err != nil {
		return nil, err
	}
	newAlign, err := p.secondPass(source, ref, res)
	if err != nil {
		return nil, err
	}

	anchors, err := anchor.File(newAlign, ref, res.Groups)
	if err != nil {
		return nil, err
	}
	summary.Anchored = len(anchors.ByRepresentative)
	p.Log.WithField("rejected", anchors.Rejected).Infof("Found anchors for %s unmapped representatives", comma(summary.Anchored))

	info, err := readinfo.File(source, anchors.Mapped, anchors.ByRepresentative)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	p.Log.Info("Finding consensus loci...")
	voter := consensus.NewVoter(cfg.ConsensusThreshold, cfg.MinAnchors, info.Mapped)
	targets, cs := consensus.Run(anchors.ByRepresentative, voter, cfg.Threads, cfg.QueueBuffer, p.Log)
	summary.Consensus = cs
	for _, t := range targets {
		summary.Passed += len(t.Reads)
	}
	p.Log.Infof("%s representatives passed consensus at %s loci in %v", comma(summary.Passed), comma(len(targets)), time.Since(start))

	if cfg.RepeatDB != "" {
		filtered, err := rescue.FilterRepeats(p.blast, cfg.RepeatDB, targets, info.Unmapped, cfg.TmpDir(), p.prefix()+"_filtered_ids.txt")
		if err != nil {
			return nil, err
		}
		targets = rescue.Prune(targets, filtered)
		summary.Filtered = len(filtered)
		p.Log.Infof("Filtered %s representatives matching %s", comma(summary.Filtered), cfg.RepeatDB)
	}

	h, err := sam.ReadHeader(source)
	if err != nil {
		return nil, err
	}
	start = time.Now()
	p.Log.Info("Rescuing reads...")
	engine := &rescue.Engine{
		Aligner:  p.aligner,
		Blast:    p.blast,
		TmpDir:   cfg.TmpDir(),
		Identity: cfg.BlastIdentity,
		Coverage: cfg.BlastCoverage,
		Log:      p.Log,
	}
	results, rs, err := engine.Run(cfg.GenomeFiles, h.Refs(), targets, info.Unmapped, cfg.Flank, cfg.Threads, cfg.QueueBuffer)
	if err != nil {
		return nil, err
	}
	summary.Rescue = rs
	p.Log.Infof("Completed rescuing reads in %v", time.Since(start))
	return results, nil
}
