package anchor

import (
	"bytes"
	"io"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/guigolab/scavenger/classify"
	"github.com/guigolab/scavenger/pseudoref"
	scsam "github.com/guigolab/scavenger/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, e *Extractor, lines string) error {
	sr, err := sam.NewReader(bytes.NewReader([]byte(
		"@SQ\tSN:ART_CHR_0\tLN:20\n@SQ\tSN:ART_CHR_1\tLN:20\n" + lines)))
	require.NoError(t, err)
	for {
		r, err := sr.Read()
		if err == io.EOF {
			return nil
		}
		require.NoError(t, err)
		if err := e.Add(scsam.NewRecord(r)); err != nil {
			return err
		}
	}
}

func TestExtract(t *testing.T) {
	seqs := []string{"AAAA", "CCCC", "GGGG"}
	ref, err := pseudoref.New(seqs, pseudoref.Layout{BinSize: 10, ReadsPerContig: 2})
	require.NoError(t, err)
	groups := map[string]*classify.Group{
		"AAAA": {Seq: "AAAA", Names: []string{"u1", "u2"}},
		"CCCC": {Seq: "CCCC", Names: []string{"u3"}},
		"GGGG": {Seq: "GGGG", Names: []string{"u5", "u4"}},
	}

	e := New(ref, groups)
	err = extract(t, e, ""+
		// bin 0 of contig 0: AAAA
		"m1\t0\tART_CHR_0\t1\t255\t4M\t*\t0\t0\tAAAA\tIIII\n"+
		"m2\t16\tART_CHR_0\t3\t255\t2S3M\t*\t0\t0\tAAAAA\tIIIII\n"+
		// bin 1 of contig 0: CCCC, also reached by a secondary hit of m1
		"m1\t256\tART_CHR_0\t11\t255\t4M\t*\t0\t0\tCCCC\tIIII\n"+
		// contig 1 bin 0: GGGG
		"m3\t0\tART_CHR_1\t2\t255\t4M\t*\t0\t0\tGGGG\tIIII\n"+
		// crosses the bin 0/1 junction
		"m4\t0\tART_CHR_0\t8\t255\t6M\t*\t0\t0\tAAANNN\tIIIIII\n"+
		// a single aligned position
		"m5\t0\tART_CHR_0\t2\t255\t1M3S\t*\t0\t0\tAAAA\tIIII\n"+
		"m6\t4\t*\t0\t0\t*\t*\t0\t0\tAAAA\tIIII\n")
	require.NoError(t, err)

	a := e.Anchors()
	assert.Equal(t, map[string][]string{
		"u2": {"m1", "m2"},
		"u3": {"m1"},
		"u4": {"m3"},
	}, a.ByRepresentative)
	assert.Equal(t, map[string]struct{}{"m1": {}, "m2": {}, "m3": {}}, a.Mapped)
	assert.Equal(t, 2, a.Rejected)

	err = extract(t, New(ref, groups), "m7\t0\tART_CHR_1\t12\t255\t4M\t*\t0\t0\tGGGG\tIIII\n")
	assert.Error(t, err, "bin 1 of contig 1 holds no sequence")
}
