package aligner

import (
	"math"
	"strconv"

	"github.com/guigolab/scavenger/utils"
)

// PseudoIndexArgs returns the STAR index parameters for a pseudo-reference of
// length bases split over n contigs.
func PseudoIndexArgs(length, n int) []string {
	if length < 1 || n < 1 {
		return nil
	}
	binBits := utils.Min(18, int(math.Log2(float64(length)/float64(n))))
	saBases := utils.Min(14, int(math.Log2(float64(length))/2)-1)
	return []string{
		"--genomeChrBinNbits", strconv.Itoa(binBits),
		"--genomeSAindexNbases", strconv.Itoa(saBases),
	}
}

// PseudoAlignArgs returns the STAR alignment parameters against a
// pseudo-reference of n contigs.
func PseudoAlignArgs(n int) []string {
	return []string{
		"--outFilterMultimapNmax", strconv.Itoa(n),
		"--alignIntronMax", "1",
		"--seedSearchStartLmax", "30",
	}
}

// SAindexNbases returns the STAR suffix array index size for a genome slice
// of the given length.
func SAindexNbases(length int) int {
	if length <= 1000 {
		return 1
	}
	return utils.Min(14, int(math.RoundToEven(math.Log2(float64(length))/2-1)))
}
