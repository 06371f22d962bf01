package pseudoref

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinMappingIsBijective(t *testing.T) {
	var seqs []string
	for i := 0; i < 2503; i++ {
		seqs = append(seqs, fmt.Sprintf("ACGT%06dT", i*7919%10007))
	}
	sort.Strings(seqs)
	ref, err := New(seqs, Layout{BinSize: 500, ReadsPerContig: 1000})
	require.NoError(t, err)
	assert.Equal(t, 3, ref.Contigs())
	assert.Equal(t, 2503*500, ref.Length())

	seen := make(map[string]bool)
	for i, s := range seqs {
		contig, bin := ref.Locate(i)
		assert.Equal(t, i, ref.Index(contig, bin))
		got, ok := ref.Lookup(contig, bin)
		require.True(t, ok)
		assert.Equal(t, s, got)
		assert.False(t, seen[got])
		seen[got] = true
	}
	_, ok := ref.Lookup(2, 503)
	assert.False(t, ok)
	_, ok = ref.Lookup(0, 1000)
	assert.False(t, ok)
}

func TestWrite(t *testing.T) {
	ref, err := New([]string{"AAC", "AGT", "CCCC"}, Layout{BinSize: 5, ReadsPerContig: 2})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, ref.Write(&buf))
	assert.Equal(t, ">ART_CHR_0\nAACNNAGTNN\n>ART_CHR_1\nCCCCN\n", buf.String())

	empty, err := New(nil, Layout{BinSize: 5, ReadsPerContig: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, empty.Contigs())

	_, err = New([]string{"ACGTAC"}, Layout{BinSize: 5, ReadsPerContig: 2})
	assert.Error(t, err)
}

func TestContigIndex(t *testing.T) {
	for _, i := range []int{0, 1, 42} {
		n, err := ContigIndex(ContigName(i))
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	_, err := ContigIndex("chr1")
	assert.Error(t, err)
}

func TestSubsets(t *testing.T) {
	dir, err := ioutil.TempDir("", "pseudoref")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "reads.fq")
	require.NoError(t, ioutil.WriteFile(input, []byte(
		"@m1 1:N:0\nACGT\n+\nIIII\n@u1\nTTTT\n+\n####\n@m2\nGGCA\n+\nABCD\n"), 0644))
	names := map[string]struct{}{"m1": {}, "m2": {}}

	output := filepath.Join(dir, "mapped.fq")
	n, err := WriteSubset([]string{input}, names, output)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	b, err := ioutil.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "@m1\nACGT\n+\nIIII\n@m2\nGGCA\n+\nABCD\n", string(b))

	alignment := filepath.Join(dir, "source.sam")
	require.NoError(t, ioutil.WriteFile(alignment, []byte(strings.Join([]string{
		"@SQ\tSN:chr1\tLN:1000",
		"m1\t0\tchr1\t10\t255\t4M\t*\t0\t0\tACGT\tIIII\tNH:i:1",
		"m2\t16\tchr1\t20\t255\t4M\t*\t0\t0\tTGCC\tDCBA\tNH:i:1",
		"m2\t256\tchr1\t40\t255\t4M\t*\t0\t0\tTGCC\tDCBA\tNH:i:1",
		"u1\t4\t*\t0\t0\t*\t*\t0\t0\tTTTT\t####",
	}, "\n")+"\n"), 0644))
	n, err = WriteAlignedSubset(alignment, names, output)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	b, err = ioutil.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "@m1\nACGT\n+\nIIII\n@m2\nGGCA\n+\nABCD\n", string(b))
}
