package scavenger

import (
	"time"

	"github.com/guigolab/scavenger/assemble"
	"github.com/guigolab/scavenger/sam"
	"github.com/guigolab/scavenger/stats"
	"github.com/guigolab/scavenger/utils"
	"github.com/pkg/errors"
)

// write merges the rescued alignments into the source alignment, and writes
// the rescued alignments alone to a BAM file.
func (p *Pipeline) write(source string, a *assemble.Assembly) error {
	h, err := sam.ReadHeader(source)
	if err != nil {
		return err
	}
	h, err = assemble.Header(h, Version(), p.CommandLine)
	if err != nil {
		return err
	}

	name := p.prefix() + "_rescued.sam"
	if p.Config.BamOutput {
		name = p.prefix() + "_rescued.bam"
	}
	start := time.Now()
	p.Log.Infof("Writing new alignment file (%s)...", name)
	out, err := sam.NewWriter(name, h, p.Config.BamOutput, p.Config.Threads)
	if err != nil {
		return err
	}
	only, err := sam.NewWriter(p.prefix()+"_rescued_only.bam", h, true, p.Config.Threads)
	if err != nil {
		out.Close()
		return err
	}
	err = a.Merge(source, out, only)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if cerr := only.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	p.Log.Infof("Completed writing new alignment file in %v", time.Since(start))
	return nil
}

func writeSummary(path string, s *stats.Summary) error {
	out, err := utils.NewOutput(path)
	if err != nil {
		return err
	}
	if err := utils.OutputJSON(out, s); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return out.Close()
}
