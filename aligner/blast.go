package aligner

import "strconv"

const blastOutFmt = "17 SQ SR"

// Blast runs blastn with SAM output.
type Blast struct {
	*Runner
}

func NewBlast(r *Runner) *Blast {
	return &Blast{r}
}

func (b *Blast) Executables() []string { return []string{"blastn"} }

// Align aligns the reads of the query FASTA to the subject FASTA with
// megablast, writing SAM records to output.
func (b *Blast) Align(query, subject, output string, identity, coverage int) error {
	args := []string{
		"-query", query,
		"-subject", subject,
		"-task", "megablast",
		"-perc_identity", strconv.Itoa(identity),
		"-qcov_hsp_perc", strconv.Itoa(coverage),
		"-outfmt", blastOutFmt,
		"-out", output,
		"-parse_deflines",
	}
	return b.Run("blastn", "blastn", args, "")
}

// SearchRepeats aligns the query FASTA to a repeat database, writing SAM
// records to output.
func (b *Blast) SearchRepeats(db, query, output string) error {
	args := []string{
		"-db", db,
		"-query", query,
		"-task", "megablast",
		"-perc_identity", "90",
		"-qcov_hsp_perc", "80",
		"-outfmt", blastOutFmt,
		"-out", output,
		"-parse_deflines",
		"-evalue", "0.00001",
	}
	return b.Run("blastn", "blastn", args, "")
}
