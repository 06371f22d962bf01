package rescue

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/guigolab/scavenger/aligner"
	"github.com/guigolab/scavenger/consensus"
	"github.com/guigolab/scavenger/readinfo"
	"github.com/guigolab/scavenger/sam"
	"github.com/guigolab/scavenger/seqio"
	"github.com/guigolab/scavenger/utils"
	"github.com/pkg/errors"
)

// FilterRepeats searches the reads of targets against the repeat database db
// and returns the names with a hit. The names are also written, one per
// line, to output. Scratch files go in dir.
func FilterRepeats(b *aligner.Blast, db string, targets []*consensus.Target, reads map[string]readinfo.UnmappedRead, dir, output string) (map[string]struct{}, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "cannot create %s", dir)
	}
	query := filepath.Join(dir, "repeat_query.fa")
	hits := filepath.Join(dir, "repeat_hits.sam")
	defer os.Remove(query)
	defer os.Remove(hits)

	if err := writeFasta(query, func(fw *seqio.FastaWriter) error {
		for _, t := range targets {
			for _, name := range t.Reads {
				if r, ok := reads[name]; ok {
					if err := fw.Write(name, r.Seq); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if err := b.SearchRepeats(db, query, hits); err != nil {
		return nil, errors.Wrap(err, "repeat search failed")
	}

	filtered := make(map[string]struct{})
	if utils.NonEmpty(hits) {
		if _, err := sam.Scan(hits, func(r *sam.Record) error {
			if !r.IsUnmapped() {
				filtered[r.Name] = struct{}{}
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(filtered))
	for n := range filtered {
		names = append(names, n)
	}
	sort.Strings(names)
	out, err := utils.NewOutput(output)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		out.WriteString(n)
		out.WriteByte('\n')
	}
	if err := out.Close(); err != nil {
		return nil, errors.Wrapf(err, "writing %s", output)
	}
	return filtered, nil
}

// Prune removes the filtered reads from targets and drops targets left
// without reads.
func Prune(targets []*consensus.Target, filtered map[string]struct{}) []*consensus.Target {
	if len(filtered) == 0 {
		return targets
	}
	var out []*consensus.Target
	for _, t := range targets {
		var keep []string
		for _, name := range t.Reads {
			if _, ok := filtered[name]; !ok {
				keep = append(keep, name)
			}
		}
		if len(keep) > 0 {
			out = append(out, &consensus.Target{Locus: t.Locus, Reads: keep})
		}
	}
	return out
}
