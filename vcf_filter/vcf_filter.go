// Annotate the FILTER field of a pandora VCF.  Each record is
// tested against coverage, strand bias, gaps and genotype
// confidence thresholds on the called allele (the reference allele
// for null calls), and tagged with the identifiers of the filters
// it fails, or PASS.

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/brentp/vcfgo"

	"github.com/kerrimalone/head-to-head-pipeline/utils"
)

// Filter tag identifiers, matching the pandora conventions.
const (
	tagLowCovg    = "ld"
	tagHighCovg   = "hd"
	tagStrandBias = "sb"
	tagHighGaps   = "hg"
	tagLowGtConf  = "lgc"
	tagPass       = "PASS"
)

var (
	config *utils.Config

	logger *log.Logger
)

// metrics holds the per-call values the filters are tested against.
type metrics struct {
	fwdCovg float64
	revCovg float64
	gaps    float64
	gtConf  float64
}

func (m metrics) covg() float64 {
	return m.fwdCovg + m.revCovg
}

// strandRatio is the fraction of the allele's coverage carried by
// its weaker strand.  An uncovered allele counts as balanced.
func (m metrics) strandRatio() float64 {
	if m.covg() == 0 {
		return 1.0
	}
	lo := m.fwdCovg
	if m.revCovg < lo {
		lo = m.revCovg
	}
	return lo / m.covg()
}

type assessor struct {
	minCovg       float64
	maxCovg       float64
	minStrandBias float64
	maxGaps       float64
	minGtConf     float64
}

func newAssessor(config *utils.Config) (*assessor, error) {
	if config.MinCovg != 0 && config.MaxCovg != 0 && config.MinCovg > config.MaxCovg {
		return nil, fmt.Errorf("minimum covg is more than maximum covg: %.1f > %.1f",
			config.MinCovg, config.MaxCovg)
	}
	return &assessor{
		minCovg:       config.MinCovg,
		maxCovg:       config.MaxCovg,
		minStrandBias: float64(config.MinStrandBias) / 100,
		maxGaps:       config.MaxGaps,
		minGtConf:     config.MinGtConf,
	}, nil
}

// status returns the ;-joined tags of the filters m fails, or PASS.
func (a *assessor) status(m metrics) string {
	var tags []string

	if a.minCovg != 0 && m.covg() < a.minCovg {
		tags = append(tags, tagLowCovg)
	}
	if a.maxCovg != 0 && m.covg() > a.maxCovg {
		tags = append(tags, tagHighCovg)
	}
	if a.minGtConf != 0 && m.gtConf < a.minGtConf {
		tags = append(tags, tagLowGtConf)
	}
	if a.minStrandBias != 0 && m.strandRatio() < a.minStrandBias {
		tags = append(tags, tagStrandBias)
	}
	if a.maxGaps != 0 && m.gaps > a.maxGaps {
		tags = append(tags, tagHighGaps)
	}

	if len(tags) == 0 {
		return tagPass
	}
	return strings.Join(tags, ";")
}

func (a *assessor) addHeaderFilters(hdr *vcfgo.Header) {
	if a.minCovg > 0 {
		hdr.Filters[tagLowCovg] = fmt.Sprintf(
			"Kmer coverage on called allele less than %g", a.minCovg)
	}
	if a.maxCovg > 0 {
		hdr.Filters[tagHighCovg] = fmt.Sprintf(
			"Kmer coverage on called allele more than %g", a.maxCovg)
	}
	if a.minGtConf > 0 {
		hdr.Filters[tagLowGtConf] = fmt.Sprintf(
			"Genotype confidence score less than %g", a.minGtConf)
	}
	if a.minStrandBias > 0 {
		hdr.Filters[tagStrandBias] = fmt.Sprintf(
			"A strand on the called allele has less than %.2f%% of the covg for that allele",
			a.minStrandBias*100)
	}
	if a.maxGaps > 0 {
		hdr.Filters[tagHighGaps] = fmt.Sprintf(
			"Fraction of kmers covering allele with coverage gaps is greater than %g", a.maxGaps)
	}
}

// mergeFilter combines an existing FILTER value with the new status.
// Empty, missing, and PASS filters are replaced outright; anything
// else keeps its tags and gets the new failing tags appended.
func mergeFilter(existing, status string, overwrite bool) string {
	if overwrite || existing == "" || existing == "." || existing == tagPass || status == tagPass {
		return status
	}
	return strings.TrimRight(existing, ";") + ";" + status
}

// calledAlleleIndex returns the index into the per-allele FORMAT
// arrays for the called allele: 0 for null and homozygous reference
// calls, the alt index plus one otherwise.  Heterozygous calls are
// not expected from pandora.
func calledAlleleIndex(gt []int) (int, error) {
	a1, a2 := -1, -1
	if len(gt) > 0 {
		a1 = gt[0]
	}
	if len(gt) > 1 {
		a2 = gt[1]
	}

	if a1 == -1 && a2 == -1 {
		return 0, nil
	}
	if a1 != -1 && a2 != -1 && a1 != a2 {
		return 0, fmt.Errorf("het genotype is unexpected: %v", gt)
	}

	hi := a1
	if a2 > hi {
		hi = a2
	}
	if hi <= 0 {
		return 0, nil
	}
	return hi, nil
}

// formatValue extracts the idx-th value of a comma-separated
// per-allele FORMAT field.
func formatValue(fields map[string]string, key string, idx int) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("FORMAT field %s missing", key)
	}
	vals := strings.Split(raw, ",")
	if idx >= len(vals) {
		return 0, fmt.Errorf("FORMAT field %s has %d values, want index %d", key, len(vals), idx)
	}
	return strconv.ParseFloat(vals[idx], 64)
}

func variantMetrics(v *vcfgo.Variant) (metrics, error) {
	var m metrics

	if len(v.Samples) == 0 || v.Samples[0] == nil {
		return m, fmt.Errorf("record at %s:%d has no sample call", v.Chromosome, v.Pos)
	}
	sample := v.Samples[0]

	idx, err := calledAlleleIndex(sample.GT)
	if err != nil {
		return m, err
	}

	if m.fwdCovg, err = formatValue(sample.Fields, "MEAN_FWD_COVG", idx); err != nil {
		return m, err
	}
	if m.revCovg, err = formatValue(sample.Fields, "MEAN_REV_COVG", idx); err != nil {
		return m, err
	}
	if m.gaps, err = formatValue(sample.Fields, "GAPS", idx); err != nil {
		return m, err
	}
	if m.gtConf, err = formatValue(sample.Fields, "GT_CONF", 0); err != nil {
		return m, err
	}

	return m, nil
}

func run() {

	assess, err := newAssessor(config)
	if err != nil {
		logger.Print(err)
		panic(err)
	}

	fid, err := os.Open(config.VcfFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer fid.Close()

	rdr, err := vcfgo.NewReader(fid, false)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	assess.addHeaderFilters(rdr.Header)

	out, err := os.Create(config.VcfOutFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer out.Close()

	wtr, err := vcfgo.NewWriter(out, rdr.Header)
	if err != nil {
		logger.Print(err)
		panic(err)
	}

	stats := make(map[string]int)
	logger.Print("Filtering variants...")
	for {
		v := rdr.Read()
		if v == nil {
			break
		}

		m, err := variantMetrics(v)
		if err != nil {
			logger.Print(err)
			panic(err)
		}
		status := assess.status(m)

		v.Filter = mergeFilter(v.Filter, status, config.OverwriteFilter)

		wtr.WriteVariant(v)

		for _, tag := range strings.Split(status, ";") {
			stats[tag]++
		}
	}

	logger.Print("FILTER STATISTICS")
	logger.Print("=================")
	for tag, count := range stats {
		logger.Printf("Filter: %s\tCount: %d", tag, count)
	}
}

func main() {
	if len(os.Args) != 2 {
		panic("vcf_filter: wrong number of arguments")
	}

	config = utils.ReadConfig(os.Args[1])
	logger = utils.NewLogger(config, "vcf_filter")

	run()
	logger.Print("Done")
}
