package scavenger

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/guigolab/scavenger/config"
	"github.com/guigolab/scavenger/sam"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rescuable = "TTTTGGGGCC"
	failing   = "CCCCAAAATT"
	quals     = "IIIIIIIIII"
)

var sourceSAM = "@SQ\tSN:chr1\tLN:400\n" +
	"m1\t0\tchr1\t101\t255\t10M\t*\t0\t0\tACGTACGTAC\t" + quals + "\tNH:i:1\n" +
	"m2\t0\tchr1\t101\t255\t10M\t*\t0\t0\tACGTACGTAC\t" + quals + "\tNH:i:1\n" +
	"m3\t16\tchr1\t101\t255\t10M\t*\t0\t0\tACGTACGTAC\t" + quals + "\tNH:i:1\n" +
	"m4\t0\tchr1\t301\t255\t10M\t*\t0\t0\tACGTACGTAC\t" + quals + "\tNH:i:1\n" +
	"u1\t4\t*\t0\t0\t*\t*\t0\t0\t" + rescuable + "\t" + quals + "\n" +
	"u2\t4\t*\t0\t0\t*\t*\t0\t0\t" + rescuable + "\t" + quals + "\n" +
	"u3\t4\t*\t0\t0\t*\t*\t0\t0\t" + failing + "\t" + quals + "\n"

// second pass: the sorted pseudo-reference holds failing in bin 0 and
// rescuable in bin 1 of ART_CHR_0.
var secondPassSAM = "@SQ\tSN:ART_CHR_0\tLN:1000\n" +
	"m1\t0\tART_CHR_0\t511\t255\t10M\t*\t0\t0\tACGTACGTAC\t" + quals + "\n" +
	"m2\t0\tART_CHR_0\t511\t255\t10M\t*\t0\t0\tACGTACGTAC\t" + quals + "\n" +
	"m3\t0\tART_CHR_0\t512\t255\t9M\t*\t0\t0\tACGTACGTA\tIIIIIIIII\n" +
	"m4\t0\tART_CHR_0\t11\t255\t10M\t*\t0\t0\tACGTACGTAC\t" + quals + "\n"

type fakeTools struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTools) LookPath(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func (f *fakeTools) Run(name string, args []string, stdout, stderr io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	switch {
	case name == "STAR" && argAfter(args, "--runMode") == "genomeGenerate":
		return ioutil.WriteFile(filepath.Join(argAfter(args, "--genomeDir"), "Genome"), []byte("x"), 0644)
	case name == "STAR":
		return ioutil.WriteFile(argAfter(args, "--outFileNamePrefix")+"Aligned.out.bam", []byte(secondPassSAM), 0644)
	}
	q, err := ioutil.ReadFile(argAfter(args, "-query"))
	if err != nil {
		return err
	}
	if strings.Contains(string(q), failing) {
		return errors.New("exit status 1")
	}
	name = strings.TrimPrefix(strings.SplitN(string(q), "\n", 2)[0], ">")
	hit := "@SQ\tSN:chr1\tLN:210\n" + name + "\t0\tchr1\t101\t60\t10M\t*\t0\t0\t" + rescuable + "\t*\n"
	return ioutil.WriteFile(argAfter(args, "-out"), []byte(hit), 0644)
}

func TestPipeline(t *testing.T) {
	dir, err := ioutil.TempDir("", "scavenger")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	source := filepath.Join(dir, "source.sam")
	require.NoError(t, ioutil.WriteFile(source, []byte(sourceSAM), 0644))
	genome := filepath.Join(dir, "genome.fa")
	require.NoError(t, ioutil.WriteFile(genome, []byte(">chr1\n"+strings.Repeat("ACGT", 100)+"\n"), 0644))

	cfg := config.NewConfig()
	cfg.Aligner = config.STAR
	cfg.SourceAlignFile = source
	cfg.GenomeFiles = []string{genome}
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Prefix = "sample"
	cfg.Threads = 2

	logger, _ := test.NewNullLogger()
	tools := &fakeTools{}
	p, err := NewPipeline(cfg, tools, logger)
	require.NoError(t, err)
	s, err := p.Run()
	require.NoError(t, err)

	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 4, s.Mapped)
	assert.Equal(t, 3, s.Unmapped)
	assert.Equal(t, 2, s.UniqueUnmapped)
	assert.Equal(t, 2, s.Anchored)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.RescuedUnique)
	assert.Equal(t, 2, s.RescuedAll)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 0, s.StillUnmapped)
	assert.Equal(t, uint64(2), s.Rescue.Tasks)
	assert.Equal(t, uint64(1), s.Rescue.FailedTasks)

	prefix := filepath.Join(cfg.OutputDir, "sample")
	mapped := make(map[string]int)
	var names []string
	_, err = sam.Scan(prefix+"_rescued.sam", func(r *sam.Record) error {
		names = append(names, r.Name)
		if !r.IsUnmapped() {
			mapped[r.Name] = r.Pos
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "u3", "u1", "u2"}, names)
	assert.Equal(t, 100, mapped["u1"])
	assert.Equal(t, 100, mapped["u2"])

	h, err := sam.ReadHeader(prefix + "_rescued_only.bam")
	require.NoError(t, err)
	require.Len(t, h.Progs(), 1)

	b, err := ioutil.ReadFile(prefix + "_failed.txt")
	require.NoError(t, err)
	assert.Equal(t, "u3\t"+failing+"\n", string(b))

	f, err := os.Open(prefix + "_summary.json")
	require.NoError(t, err)
	defer f.Close()
	var report map[string]interface{}
	require.NoError(t, json.NewDecoder(bufio.NewReader(f)).Decode(&report))
	assert.Equal(t, float64(2), report["rescuedAll"])

	left, err := ioutil.ReadDir(cfg.TmpDir())
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPipelineRejectsPairedEnd(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Aligner = config.STAR
	cfg.Input = []string{"r1.fq", "r2.fq"}
	cfg.GenomeFiles = []string{"genome.fa"}
	logger, _ := test.NewNullLogger()
	_, err := NewPipeline(cfg, &fakeTools{}, logger)
	assert.Equal(t, config.ErrPairedEnd, err)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", Version())
	assert.Equal(t, "0.1.2", formatVersion(0, 1, 2))
}
