// Tally genotype concordance between two VCFs called on the same
// positions.  The first VCF is treated as truth and the second as
// query; every shared site is classified into one outcome
// (TrueRef, FalseAlt, Masked, ...) and the outcome counts are
// written as a table.

package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/brentp/vcfgo"

	"github.com/kerrimalone/head-to-head-pipeline/utils"
)

var (
	config *utils.Config

	logger *log.Logger
)

type classification int

const (
	classNull classification = iota
	classRef
	classHet
	classAlt
)

func (c classification) String() string {
	switch c {
	case classNull:
		return "Null"
	case classRef:
		return "Ref"
	case classHet:
		return "Het"
	default:
		return "Alt"
	}
}

// Site outcomes.
const (
	outMasked         = "Masked"
	outBothFailFilter = "BothFailFilter"
	outAFailFilter    = "AFailFilter"
	outBFailFilter    = "BFailFilter"
	outNull           = "Null"
	outFalseNull      = "FalseNull"
	outHet            = "Het"
	outTrueRef        = "TrueRef"
	outFalseRef       = "FalseRef"
	outFalseAlt       = "FalseAlt"
	outTrueAlt        = "TrueAlt"
	outDiffAlt        = "DiffAlt"
)

// site is the part of a VCF record the classifier looks at.
type site struct {
	pos    int
	filter string
	gt     []int
	alt    []string
}

// alleles returns the genotype as an ordered pair, padding missing
// calls with -1.
func (s site) alleles() (int, int) {
	a1, a2 := -1, -1
	if len(s.gt) > 0 {
		a1 = s.gt[0]
	}
	if len(s.gt) > 1 {
		a2 = s.gt[1]
	}
	return a1, a2
}

func (s site) classify() classification {
	a1, a2 := s.alleles()
	switch {
	case a1 == -1 && a2 == -1:
		return classNull
	case a1 != -1 && a2 != -1 && a1 != a2:
		return classHet
	case a1 > 0 || a2 > 0:
		return classAlt
	default:
		return classRef
	}
}

// altAllele returns the called alternate allele string, or "" when
// the call does not name a valid alternate.
func (s site) altAllele() string {
	a1, a2 := s.alleles()
	hi := a1
	if a2 > hi {
		hi = a2
	}
	if hi < 1 || hi > len(s.alt) {
		return ""
	}
	return s.alt[hi-1]
}

func (s site) failsFilter() bool {
	return s.filter != "" && s.filter != "." && s.filter != "PASS"
}

// classify determines the joint outcome for a truth/query pair at
// one position.  mask holds the 1-based positions excluded from
// comparison.
func classify(a, b site, mask map[int]bool, applyFilter bool) (classification, classification, string, error) {
	if a.pos != b.pos {
		return 0, 0, "", fmt.Errorf("positions do not match: %d vs %d", a.pos, b.pos)
	}

	ac, bc := a.classify(), b.classify()

	switch {
	case mask[a.pos]:
		return ac, bc, outMasked, nil
	case applyFilter && a.failsFilter() && b.failsFilter():
		return ac, bc, outBothFailFilter, nil
	case applyFilter && a.failsFilter():
		return ac, bc, outAFailFilter, nil
	case applyFilter && b.failsFilter():
		return ac, bc, outBFailFilter, nil
	case ac == classNull:
		return ac, bc, outNull, nil
	case bc == classNull:
		return ac, bc, outFalseNull, nil
	case ac == classHet || bc == classHet:
		return ac, bc, outHet, nil
	case ac == classRef && bc == classRef:
		return ac, bc, outTrueRef, nil
	case ac == classAlt && bc == classRef:
		return ac, bc, outFalseRef, nil
	case ac == classRef && bc == classAlt:
		return ac, bc, outFalseAlt, nil
	case a.altAllele() == b.altAllele():
		return ac, bc, outTrueAlt, nil
	default:
		return ac, bc, outDiffAlt, nil
	}
}

// readMask loads the 1-based positions covered by a BED file.  The
// pipeline's genomes are single-contig, so the contig column is not
// consulted.
func readMask(fname string) (map[int]bool, error) {
	if fname == "" {
		return nil, nil
	}

	fid, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	mask := make(map[int]bool)
	scanner := bufio.NewScanner(fid)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		toks := strings.Fields(line)
		if len(toks) < 3 {
			return nil, fmt.Errorf("malformed BED line: %q", line)
		}
		start, err := strconv.Atoi(toks[1])
		if err != nil {
			return nil, err
		}
		end, err := strconv.Atoi(toks[2])
		if err != nil {
			return nil, err
		}
		for p := start + 1; p <= end; p++ {
			mask[p] = true
		}
	}

	return mask, scanner.Err()
}

func siteFromVariant(v *vcfgo.Variant) site {
	s := site{
		pos:    int(v.Pos),
		filter: v.Filter,
		alt:    v.Alternate,
	}
	if len(v.Samples) > 0 && v.Samples[0] != nil {
		s.gt = v.Samples[0].GT
	}
	return s
}

func openVcf(fname string) (*vcfgo.Reader, func()) {
	fid, err := os.Open(fname)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	rdr, err := vcfgo.NewReader(fid, false)
	if err != nil {
		fid.Close()
		logger.Print(err)
		panic(err)
	}
	return rdr, func() { fid.Close() }
}

func run() {

	mask, err := readMask(config.MaskFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}

	ra, closeA := openVcf(config.AVcfFileName)
	defer closeA()
	rb, closeB := openVcf(config.BVcfFileName)
	defer closeB()

	counts := make(map[string]int)
	var n int
	for {
		va := ra.Read()
		vb := rb.Read()
		if va == nil && vb == nil {
			break
		}
		if va == nil || vb == nil {
			err := fmt.Errorf("the two VCFs have different numbers of records")
			logger.Print(err)
			panic(err)
		}

		_, _, outcome, err := classify(siteFromVariant(va), siteFromVariant(vb), mask, config.ApplyFilter)
		if err != nil {
			logger.Print(err)
			panic(err)
		}
		counts[outcome]++
		n++
	}

	out, err := os.Create(config.ConcordFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "%s\t%d\n", outcome, counts[outcome])
	}

	logger.Printf("Classified %d sites", n)
}

func main() {
	if len(os.Args) != 2 {
		panic("vcf_concordance: wrong number of arguments")
	}

	config = utils.ReadConfig(os.Args[1])
	logger = utils.NewLogger(config, "vcf_concordance")

	run()
	logger.Print("Done")
}
