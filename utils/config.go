package utils

import (
	"encoding/json"
	"os"
)

type Config struct {

	// The name of the file containing one read id per line.  May
	// be gzip (.gz) or snappy (.sz) compressed.
	ReadIdFileName string

	// The name of the fastq (or id<tab>seq text) file containing
	// the reads.
	ReadFileName string

	// Output file for the training read ids.
	TrainFileName string

	// Output file for the evaluation read ids.
	EvalFileName string

	// The fraction of read ids assigned to the training set.
	// Must be strictly between 0 and 1.
	TrainFrac float64

	// Seed for the random number generator used to draw the
	// training set.
	Seed int64

	// If true, duplicate read ids are collapsed (first occurrence
	// kept) before the training draw.
	DedupIds bool

	// The file containing the ids of the reads to keep (or
	// exclude, see InvertMatch) when subsetting.
	KeepIdFileName string

	// If true, subsetting keeps the reads that are not in the id
	// set.
	InvertMatch bool

	// If true, reads with a previously seen sequence are dropped
	// during subsetting.
	DedupReads bool

	// Output file for the subsetted reads.  Compression is chosen
	// from the extension (.gz or .sz).
	OutFileName string

	// The size of the Bloom filter in bits.  If zero, no Bloom
	// prefilter is used for id membership.
	BloomSize uint64

	// The number of hash functions to use in the Bloom filter.
	NumHash int

	// Location of the leveldb database mapping read ids to sample
	// names.
	SampleDbPath string

	// Sample name -> file of read ids belonging to that sample.
	SampleIdFiles map[string]string

	// Output file for the per-sample read count table.
	SummaryFileName string

	// The fasta file to split into loci.
	FastaFileName string

	// The GFF3 file providing the locus coordinates.
	GffFileName string

	// The directory to write the per-locus fasta files to.
	OutDir string

	// The GFF feature types to split on, e.g. ["gene"].
	FeatureTypes []string

	// The minimum length of intergenic regions to output.
	MinIgrLen int

	// The maximum length of intergenic regions to output.  Set to
	// 0 to disable IGR output entirely, and to a negative value
	// for no upper bound.
	MaxIgrLen int

	// If true, overlapping features are not merged.
	NoMerge bool

	// The VCF file to annotate with filters.
	VcfFileName string

	// Output file for the annotated VCF.
	VcfOutFileName string

	// Minimum kmer coverage on the called allele.  Zero disables.
	MinCovg float64

	// Maximum kmer coverage on the called allele.  Zero disables.
	MaxCovg float64

	// Minimum percentage (0-50) of the called allele's coverage
	// that each strand must carry.  Zero disables.
	MinStrandBias int

	// Maximum fraction of kmers covering the called allele with
	// coverage gaps.  Zero disables.
	MaxGaps float64

	// Minimum genotype confidence score.  Zero disables.
	MinGtConf float64

	// If false, filter tags are appended to an existing FILTER
	// value instead of replacing it.
	OverwriteFilter bool

	// The truth VCF for the concordance tally.
	AVcfFileName string

	// The query VCF for the concordance tally.
	BVcfFileName string

	// BED file of positions excluded from the concordance tally.
	MaskFileName string

	// If true, records failing filters are classified separately
	// rather than compared.
	ApplyFilter bool

	// Output file for the concordance outcome table.
	ConcordFileName string

	// Use this location to place log and temporary files.  If
	// blank, logs go to stderr.
	TempDir string
}

func ReadConfig(filename string) *Config {
	fid, err := os.Open(filename)
	if err != nil {
		panic(err)
	}
	defer fid.Close()
	dec := json.NewDecoder(fid)
	config := new(Config)
	err = dec.Decode(config)
	if err != nil {
		panic(err)
	}

	return config
}
