package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/guigolab/scavenger"
	"github.com/guigolab/scavenger/config"
	"github.com/guigolab/scavenger/utils"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func run(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	logger, closer, err := scavenger.NewLogger(cfg.OutputPrefix(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.WithFields(log.Fields{
		"version":   version,
		"commit":    commit,
		"buildTime": date,
	}).Infof("Running %s", cmd.Use)
	logger.Infof("Using %v out of %v logical CPUs", cfg.Threads, runtime.NumCPU())
	if f := v.ConfigFileUsed(); f != "" {
		logger.Infof("Using config file %s", f)
	}

	p, err := scavenger.NewPipeline(cfg, nil, logger)
	if err != nil {
		return err
	}
	p.CommandLine = strings.Join(os.Args, " ")
	if _, err := p.Run(); err != nil {
		logger.Error(err)
		return err
	}
	return nil
}

func setScavengerFlags(c *cobra.Command) {
	d := config.NewConfig()
	f := c.Flags()
	f.StringP("aligner", "A", "", "aligner used for the source alignment (STAR|Subread) (required)")
	f.StringSliceP("input", "i", nil, "input FASTQ file of single-end reads")
	f.StringSliceP("genome-file", "G", nil, "genome FASTA file(s) (required)")
	f.StringP("genome-index", "g", "", "pre-built genome index used by the aligner")
	f.StringP("annotation", "a", "", "annotation file used by the index builder")
	f.String("builder-extra-args", "", "extra arguments passed to the index builder")
	f.String("aligner-extra-args", "", "extra arguments passed to the aligner")
	f.StringP("output-dir", "o", d.OutputDir, "output directory")
	f.StringP("prefix", "p", "", "output file prefix (default: input file name)")
	f.Bool("bam", false, "write the rescued alignment as BAM")
	f.IntP("threads", "t", d.Threads, "number of worker threads")
	f.Int("queue-buffer", d.QueueBuffer, "number of buffered tasks per phase")
	f.String("loglevel", d.LogLevel, "logging level")
	f.Float64P("consensus-threshold", "c", d.ConsensusThreshold, "fraction of anchors that must agree on a locus")
	f.Int("min-anchors", d.MinAnchors, "minimum number of anchors of an accepted locus")
	f.Int("blast-perc-identity", d.BlastIdentity, "minimum percent identity of a blastn rescue")
	f.Int("blast-perc-query-coverage", d.BlastCoverage, "minimum percent query coverage of a blastn rescue")
	f.Int("flank", d.Flank, "bases added on each side of a consensus locus")
	f.StringP("repeat-db", "r", "", "blast database of repeats to filter out before rescue")
	f.Int("bin-size", d.BinSize, "pseudo-reference bin size")
	f.Int("reads-per-contig", d.ReadsPerContig, "pseudo-reference bins per contig")
	f.String("source-align-file", "", "existing source alignment file, skips the source execution")
	f.String("new-align-file", "", "existing alignment against the pseudo-reference")
	f.MarkHidden("new-align-file")
	f.String("config", "", "YAML config file")

	c.SetVersionTemplate(`{{with .Name}}{{printf "== %s ==\n" .}}{{end}}{{printf "%s\n" .Version}}`)
}

func buildVersion(version, commit, date string) string {
	var result = fmt.Sprintf("version: %s", version)
	if commit != "" {
		result = fmt.Sprintf("%s\ncommit: %s", result, commit)
	}
	if date != "" {
		result = fmt.Sprintf("%s\nbuilt at: %s", result, date)
	}
	return result
}

// newViper binds the flags of c, the SCAVENGER_* environment and the
// optional config file.
func newViper(c *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(c.Flags()); err != nil {
		return nil, err
	}
	v.SetEnvPrefix("SCAVENGER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if f, _ := c.Flags().GetString("config"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "scavenger",
		Short:        "Unmapped read rescue",
		Long:         "scavenger - rescue unmapped reads of a single-end alignment using the mapped reads around them",
		Version:      buildVersion(version, commit, date),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			return run(cmd, v)
		},
	}
	setScavengerFlags(rootCmd)
	return rootCmd
}

func main() {
	utils.Check(newRootCmd().Execute())
}
