package seqio

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriters(t *testing.T) {
	var buf bytes.Buffer
	fq := NewFastqWriter(&buf)
	require.NoError(t, fq.Write("r1", "ACGT", "IIII"))
	require.NoError(t, fq.Write("r2", "TT", "#!"))
	assert.Equal(t, "@r1\nACGT\n+\nIIII\n@r2\nTT\n+\n#!\n", buf.String())

	buf.Reset()
	fa := NewFastaWriter(&buf)
	require.NoError(t, fa.Write("0", "NNACGT"))
	assert.Equal(t, ">0\nNNACGT\n", buf.String())
}

func TestEach(t *testing.T) {
	dir, err := ioutil.TempDir("", "seqio")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	fasta := filepath.Join(dir, "genome.fa")
	require.NoError(t, ioutil.WriteFile(fasta, []byte(">chr1 first\nACGT\nACGT\n>chr2\nGGGG\n"), 0644))
	fastq := filepath.Join(dir, "reads.fq")
	require.NoError(t, ioutil.WriteFile(fastq, []byte("@r1 extra\nACGT\n+\nIIII\n"), 0644))

	var ids, seqs, quals []string
	err = Each([]string{fasta, fastq}, func(r *Record) error {
		ids = append(ids, r.ID)
		seqs = append(seqs, string(r.Seq))
		quals = append(quals, string(r.Qual))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1", "chr2", "r1"}, ids)
	assert.Equal(t, []string{"ACGTACGT", "GGGG", "ACGT"}, seqs)
	assert.Equal(t, []string{"", "", "IIII"}, quals)

	err = Each([]string{filepath.Join(dir, "missing.fa")}, func(*Record) error { return nil })
	assert.Error(t, err)
}
