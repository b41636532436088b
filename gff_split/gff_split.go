// Split a fasta file into per-locus files based on a GFF3 file.
// The coordinates of each feature with a requested type are cut out
// of the fasta file, along with the intergenic regions between
// them.  A loci-info.csv manifest describing every output file is
// written to the output directory.

package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/kerrimalone/head-to-head-pipeline/utils"
)

var (
	config *utils.Config

	logger *log.Logger
)

// An interval is 0-based half-open over its contig.
type interval struct {
	start int
	end   int
	name  string
}

// mergeIntervals merges overlapping intervals, joining their names
// with "+".  Adjacent intervals are left separate.  The input is
// not modified.
func mergeIntervals(ivs []interval) []interval {
	if len(ivs) == 0 {
		return nil
	}

	sorted := make([]interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	merged := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.start < last.end {
			if iv.end > last.end {
				last.end = iv.end
			}
			last.name = last.name + "+" + iv.name
			continue
		}
		merged = append(merged, iv)
	}

	return merged
}

// complement returns the gaps between ivs over [0, length), named
// after their neighbors: left+IGR:start-end+right, with NA standing
// in for a missing neighbor.  ivs must be sorted by start but may
// overlap (unmerged features); an interval nested inside covered
// ground contributes no gap and does not rewind the sweep.
func complement(ivs []interval, length int) []interval {
	var gaps []interval

	left := "NA"
	pos := 0
	for _, iv := range ivs {
		if iv.start > pos {
			gaps = append(gaps, igr(pos, iv.start, left, iv.name))
		}
		if iv.end > pos {
			left = iv.name
			pos = iv.end
		}
	}
	if pos < length {
		gaps = append(gaps, igr(pos, length, left, "NA"))
	}

	return gaps
}

func igr(start, end int, left, right string) interval {
	name := fmt.Sprintf("%s+IGR:%d-%d+%s", left, start+1, end, right)
	return interval{start: start, end: end, name: name}
}

func indexFasta(fname string) (map[string]*linear.Seq, []string) {
	fid, err := os.Open(fname)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer fid.Close()

	index := make(map[string]*linear.Seq)
	var contigs []string

	sc := seqio.NewScanner(fasta.NewReader(fid, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		if _, ok := index[s.ID]; ok {
			err := fmt.Errorf("contig %s occurs multiple times in the fasta file", s.ID)
			logger.Print(err)
			panic(err)
		}
		index[s.ID] = s
		contigs = append(contigs, s.ID)
	}
	if err := sc.Error(); err != nil {
		logger.Print(err)
		panic(err)
	}

	return index, contigs
}

// A gffFeature is one data line of a GFF3 file.  Coordinates are
// kept as in the file: 1-based, end inclusive.
type gffFeature struct {
	seqid      string
	ftype      string
	start      int
	end        int
	attributes map[string]string
}

func parseGffLine(line string) (gffFeature, error) {
	var ft gffFeature

	fields := strings.Split(line, "\t")
	if len(fields) != 9 {
		return ft, fmt.Errorf("expected 9 tab-separated fields, got %d: %q", len(fields), line)
	}

	start, err := strconv.Atoi(fields[3])
	if err != nil {
		return ft, err
	}
	end, err := strconv.Atoi(fields[4])
	if err != nil {
		return ft, err
	}

	attributes := make(map[string]string)
	for _, kv := range strings.Split(fields[8], ";") {
		toks := strings.SplitN(kv, "=", 2)
		if len(toks) == 2 {
			attributes[toks[0]] = toks[1]
		}
	}

	ft.seqid = fields[0]
	ft.ftype = fields[2]
	ft.start = start
	ft.end = end
	ft.attributes = attributes
	return ft, nil
}

// featureName returns the Name attribute of the feature, falling
// back to ID and then to a positional name.
func featureName(ft gffFeature) string {
	if name := ft.attributes["Name"]; name != "" {
		return name
	}
	if name := ft.attributes["ID"]; name != "" {
		return name
	}
	name := fmt.Sprintf("%s;%d-%d", ft.ftype, ft.start, ft.end)
	logger.Printf("Can't find a Name or ID for feature at %s:%d-%d. Using %s",
		ft.seqid, ft.start, ft.end, name)
	return name
}

func readFeatures(fname string) map[string][]interval {
	fid, err := os.Open(fname)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer fid.Close()

	types := config.FeatureTypes
	if len(types) == 0 {
		types = []string{"gene"}
	}
	wanted := make(map[string]bool)
	for _, t := range types {
		wanted[t] = true
	}

	features := make(map[string][]interval)
	scanner := bufio.NewScanner(fid)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ft, err := parseGffLine(line)
		if err != nil {
			logger.Print(err)
			panic(err)
		}
		if !wanted[ft.ftype] {
			continue
		}
		features[ft.seqid] = append(features[ft.seqid], interval{
			start: ft.start - 1,
			end:   ft.end,
			name:  featureName(ft),
		})
	}
	if err := scanner.Err(); err != nil {
		logger.Print(err)
		panic(err)
	}

	return features
}

// writeLocus cuts iv out of the contig sequence and writes it as a
// single-record fasta file.
func writeLocus(dir string, iv interval, contig *linear.Seq) string {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Print(err)
		panic(err)
	}

	fpath := path.Join(dir, iv.name+".fa")
	if _, err := os.Stat(fpath); err == nil {
		err = fmt.Errorf("a file already exists for %s at %s", iv.name, fpath)
		logger.Print(err)
		panic(err)
	}

	sub := linear.NewSeq(iv.name, contig.Seq[iv.start:iv.end], alphabet.DNA)
	sub.Desc = fmt.Sprintf("contig=%s|start=%d|end=%d", contig.ID, iv.start+1, iv.end)

	fid, err := os.Create(fpath)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer fid.Close()

	w := fasta.NewWriter(fid, 80)
	if _, err := w.Write(sub); err != nil {
		logger.Print(err)
		panic(err)
	}

	return fpath
}

func manifestRow(fpath, kind string, iv interval, contig string) []string {
	parts := []string{contig, filepath.Base(filepath.Dir(fpath)), filepath.Base(fpath)}
	return []string{
		path.Join(parts...),
		kind,
		strconv.Itoa(iv.start + 1),
		strconv.Itoa(iv.end),
		iv.name,
		contig,
	}
}

func run() {

	logger.Print("Indexing fasta file...")
	index, contigs := indexFasta(config.FastaFileName)
	logger.Printf("%d contig(s) indexed in the input file", len(index))

	logger.Print("Reading features...")
	features := readFeatures(config.GffFileName)

	if !config.NoMerge {
		for contig := range features {
			features[contig] = mergeIntervals(features[contig])
		}
	} else {
		for contig := range features {
			sort.Slice(features[contig], func(i, j int) bool {
				return features[contig][i].start < features[contig][j].start
			})
		}
	}
	for contig, ivs := range features {
		logger.Printf("Found %d feature(s) for %s", len(ivs), contig)
	}

	if err := os.MkdirAll(config.OutDir, 0755); err != nil {
		logger.Print(err)
		panic(err)
	}
	mpath := path.Join(config.OutDir, "loci-info.csv")
	mfid, err := os.Create(mpath)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer mfid.Close()
	manifest := csv.NewWriter(mfid)
	defer manifest.Flush()
	manifest.Write([]string{"filename", "type", "start", "end", "name", "contig"})

	for _, contig := range contigs {
		seq := index[contig]

		for _, iv := range features[contig] {
			dir := path.Join(config.OutDir, contig, "features")
			fpath := writeLocus(dir, iv, seq)
			manifest.Write(manifestRow(fpath, "feature", iv, contig))
		}

		if config.MaxIgrLen == 0 {
			continue
		}
		for _, iv := range complement(features[contig], seq.Len()) {
			n := iv.end - iv.start
			if n < config.MinIgrLen {
				continue
			}
			if config.MaxIgrLen > 0 && n > config.MaxIgrLen {
				continue
			}
			dir := path.Join(config.OutDir, contig, "igrs")
			fpath := writeLocus(dir, iv, seq)
			manifest.Write(manifestRow(fpath, "igr", iv, contig))
		}
	}

	manifest.Flush()
	if err := manifest.Error(); err != nil {
		logger.Print(err)
		panic(err)
	}
	logger.Printf("File mapping written to %s", mpath)
}

func main() {
	if len(os.Args) != 2 {
		panic("gff_split: wrong number of arguments")
	}

	config = utils.ReadConfig(os.Args[1])
	logger = utils.NewLogger(config, "gff_split")

	run()
	logger.Print("Done")
}
