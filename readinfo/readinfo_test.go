package readinfo

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bases(n int) string {
	return strings.Repeat("A", n) + "\t" + strings.Repeat("I", n)
}

func TestFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "readinfo")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "source.sam")
	require.NoError(t, ioutil.WriteFile(path, []byte(strings.Join([]string{
		"@SQ\tSN:chr1\tLN:10000",
		"@SQ\tSN:chr2\tLN:10000",
		"m1\t0\tchr1\t101\t255\t50M\t*\t0\t0\t" + bases(50) + "\tNH:i:1",
		"m2\t16\tchr2\t201\t60\t10M100N10M\t*\t0\t0\t" + bases(20) + "\tNH:i:1",
		"m2\t256\tchr1\t501\t0\t20M\t*\t0\t0\t" + bases(20) + "\tNH:i:1",
		"m3\t0\tchr1\t301\t255\t20M\t*\t0\t0\t" + bases(20) + "\tNH:i:1",
		"u1\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\tII#!",
		"u2\t4\t*\t0\t0\t*\t*\t0\t0\tTTTT\tIIII",
	}, "\n")+"\n"), 0644))

	info, err := File(path,
		map[string]struct{}{"m1": {}, "m2": {}},
		map[string][]string{"u1": {"m1", "m2"}},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]MappedLocus{
		"m1": {Ref: 0, Start: 100, End: 150, MapQ: 255, Spliced: false},
		"m2": {Ref: 1, Start: 200, End: 320, MapQ: 60, Spliced: true},
	}, info.Mapped)
	assert.Equal(t, map[string]UnmappedRead{"u1": {Seq: "ACGT", Qual: "II#!"}}, info.Unmapped)
}
