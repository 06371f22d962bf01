// Package rescue realigns unmapped representatives against the genome slice
// around their consensus locus.
package rescue

import (
	"os"
	"path/filepath"
	"sort"

	hts "github.com/biogo/hts/sam"
	"github.com/google/uuid"
	"github.com/guigolab/scavenger/aligner"
	"github.com/guigolab/scavenger/consensus"
	"github.com/guigolab/scavenger/queue"
	"github.com/guigolab/scavenger/readinfo"
	"github.com/guigolab/scavenger/sam"
	"github.com/guigolab/scavenger/seqio"
	"github.com/guigolab/scavenger/stats"
	"github.com/guigolab/scavenger/utils"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Engine holds the collaborators shared by the rescue workers.
type Engine struct {
	Aligner aligner.Aligner
	Blast   *aligner.Blast
	// TmpDir is the parent of the per-task scratch directories.
	TmpDir   string
	Identity int
	Coverage int
	Log      log.FieldLogger
}

type worker struct {
	*Engine
	log   log.FieldLogger
	stats *stats.RescueStats
}

func (w *worker) Process(t Task, emit func(Result)) {
	w.stats.Tasks++
	w.stats.Reads += uint64(len(t.Reads))
	if t.Spliced {
		w.stats.SplicedTasks++
	}
	recs, err := w.rescue(t)
	if err != nil {
		w.log.WithFields(log.Fields{
			"ref":   t.Ref.Name(),
			"start": t.Start,
			"end":   t.End,
			"reads": len(t.Reads),
		}).Warnf("Rescue task failed: %v", err)
		w.stats.FailedTasks++
		w.stats.FailedReads += uint64(len(t.Reads))
		for _, r := range t.Reads {
			emit(Failed{Name: r.Name, Seq: r.Seq})
		}
		return
	}
	w.stats.Alignments += uint64(len(recs))
	for _, r := range recs {
		emit(Rescued{r})
	}
}

// rescue aligns the reads of t inside a scratch directory removed on return.
func (w *worker) rescue(t Task) ([]*sam.Record, error) {
	dir := filepath.Join(w.TmpDir, uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "cannot create task directory %s", dir)
	}
	defer os.RemoveAll(dir)

	genome := filepath.Join(dir, "genome.fa")
	if err := writeFasta(genome, func(fw *seqio.FastaWriter) error {
		return fw.Write(t.Ref.Name(), t.Slice)
	}); err != nil {
		return nil, err
	}

	var output string
	if t.Spliced {
		reads := filepath.Join(dir, "reads.fq")
		if err := writeFastq(reads, t.Reads); err != nil {
			return nil, err
		}
		indexArgs, alignArgs := w.Aligner.LocalArgs(len(t.Slice), dir)
		prefix := filepath.Join(dir, "local")
		index, err := w.Aligner.BuildIndex(aligner.IndexOptions{
			GenomeFiles: []string{genome},
			Prefix:      prefix,
			Threads:     1,
			ExtraArgs:   indexArgs,
		})
		if err != nil {
			return nil, err
		}
		output, err = w.Aligner.Align(aligner.AlignOptions{
			Index:     index,
			Input:     []string{reads},
			Prefix:    prefix,
			Threads:   1,
			ExtraArgs: alignArgs,
		})
		if err != nil {
			return nil, err
		}
	} else {
		reads := filepath.Join(dir, "reads.fa")
		if err := writeFasta(reads, func(fw *seqio.FastaWriter) error {
			for _, r := range t.Reads {
				if err := fw.Write(r.Name, r.Seq); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return nil, err
		}
		output = filepath.Join(dir, "local.sam")
		if err := w.Blast.Align(reads, genome, output, w.Identity, w.Coverage); err != nil {
			return nil, err
		}
	}
	if !utils.NonEmpty(output) {
		return nil, nil
	}

	byName := make(map[string]Read, len(t.Reads))
	for _, r := range t.Reads {
		byName[r.Name] = r
	}
	var recs []*sam.Record
	_, err := sam.Scan(output, func(r *sam.Record) error {
		if r.IsUnmapped() || !r.IsPrimary() {
			return nil
		}
		read, ok := byName[r.Name]
		if !ok {
			return nil
		}
		rec, ok := translate(r, t, read)
		if !ok {
			w.stats.QualMismatches++
			w.log.WithFields(log.Fields{
				"read":  r.Name,
				"cigar": r.Cigar.String(),
				"qual":  len(read.Qual),
			}).Debug("Read qualities do not match the aligned sequence, leaving them unset")
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// translate moves a local alignment onto the first pass reference and
// restores the qualities of the read. It reports false when the qualities
// could not be restored.
func translate(r *sam.Record, t Task, read Read) (*sam.Record, bool) {
	c := r.Clone()
	c.Ref = t.Ref
	c.Pos += t.Offset
	c.MateRef = nil
	c.MatePos = -1
	c.TempLen = 0
	var ok bool
	c.Qual, ok = restoreQual(read.Qual, c)
	return c, ok
}

// restoreQual returns the phred qualities of the aligned part of the read,
// given its phred+33 qualities in sequencing orientation. When their length
// does not match the record sequence the qualities are missing and ok is
// false.
func restoreQual(qual string, r *sam.Record) (q []byte, ok bool) {
	q = []byte(qual)
	if r.IsReverse() {
		for i, j := 0, len(q)-1; i < j; i, j = i+1, j-1 {
			q[i], q[j] = q[j], q[i]
		}
	}
	head, tail := r.HardClips()
	if head+tail <= len(q) {
		q = q[head : len(q)-tail]
	}
	if len(q) != r.Seq.Length {
		q = make([]byte, r.Seq.Length)
		for i := range q {
			q[i] = 0xff
		}
		return q, false
	}
	for i := range q {
		q[i] -= 33
	}
	return q, true
}

func writeFasta(path string, fn func(*seqio.FastaWriter) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	if err := fn(seqio.NewFastaWriter(f)); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

func writeFastq(path string, reads []Read) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	fw := seqio.NewFastqWriter(f)
	for _, r := range reads {
		if err := fw.Write(r.Name, r.Seq, r.Qual); err != nil {
			f.Close()
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return f.Close()
}

// Run builds the tasks of targets from the genome files and processes them
// on threads workers. Results are sorted by read name. A returned error means
// the tasks could not be built; task failures are reported as Failed results.
func (e *Engine) Run(genomeFiles []string, refs []*hts.Reference, targets []*consensus.Target, reads map[string]readinfo.UnmappedRead, flank, threads, buffer int) ([]Result, *stats.RescueStats, error) {
	if threads < 1 {
		threads = 1
	}
	if err := os.MkdirAll(e.TmpDir, 0755); err != nil {
		return nil, nil, errors.Wrapf(err, "cannot create %s", e.TmpDir)
	}
	workers := make([]*stats.RescueStats, threads)
	var feedErr error
	results := queue.Run(threads, buffer, func(id int) queue.Worker[Task, Result] {
		logger := e.Log.WithField("worker", id)
		logger.Debug("Starting rescue worker")
		workers[id] = stats.NewRescueStats()
		return &worker{Engine: e, log: logger, stats: workers[id]}
	}, func(put func(Task)) {
		feedErr = Tasks(genomeFiles, refs, targets, reads, flank, put)
	})

	var out []Result
	for r := range results {
		out = append(out, r)
	}
	if feedErr != nil {
		return nil, nil, errors.Wrap(feedErr, "cannot build rescue tasks")
	}

	st := stats.NewRescueStats()
	st.Merge(stats.Collect(workers))
	st.Finalize()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Read() < out[j].Read() })
	return out, st, nil
}
